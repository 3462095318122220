package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogicalName(t *testing.T) {
	assert.Equal(t, "foo", LogicalName("foo.xml"))
	assert.Equal(t, "dir.v1/foo", LogicalName("dir.v1/foo"))
	assert.Equal(t, "a/b", LogicalName("a/b.tar"))
	assert.Equal(t, "a/b.tar", LogicalName("a/b.tar.gz"))
}

func TestLinkMap_SetReplacesBothDirections(t *testing.T) {
	m, shadowed := NewLinkMap([]string{"foo.xml", "foo.json", "bar.txt"})
	assert.Equal(t, []string{"foo.json"}, shadowed)
	assert.Equal(t, 2, m.Len())

	m.Set("foo", "foo.asset")
	p, _ := m.Resolve("foo")
	assert.Equal(t, "foo.asset", p)
	_, ok := m.Logical("foo.xml")
	assert.False(t, ok)

	m.Set("baz", "bar.txt")
	_, ok = m.Resolve("bar")
	assert.False(t, ok)
	assert.Equal(t, []string{"baz", "foo"}, m.Names())
}
