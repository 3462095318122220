package capability

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable_TransitiveClosure(t *testing.T) {
	table := NewTable(
		Link{Sub: TagOf[blob](), Super: TagOf[io.Reader]()},
		Link{Sub: TagOf[io.Reader](), Super: TagOf[any]()},
		Link{Sub: TagOf[*blob](), Super: TagOf[blob]()},
	)

	assert.True(t, table.Assignable(TagOf[io.Reader](), TagOf[*blob]()))
	assert.True(t, table.Assignable(TagOf[blob](), TagOf[*blob]()))
	assert.False(t, table.Assignable(TagOf[*blob](), TagOf[blob]()))
	assert.True(t, table.Assignable(Any, TagOf[int]()))
	assert.False(t, table.Assignable(TagOf[int](), Any))
	assert.False(t, table.Assignable(TagOf[int](), Tag{}))
}

func TestTable_CyclesTerminate(t *testing.T) {
	a, b := TagOf[int](), TagOf[string]()
	table := NewTable(Link{Sub: a, Super: b}, Link{Sub: b, Super: a})

	assert.Equal(t, []Tag{b, Any}, table.Supertypes(a))
	assert.True(t, table.Assignable(a, b))
}

func TestTable_NilTableMatchesExactOnly(t *testing.T) {
	var table *Table
	assert.True(t, table.Assignable(TagOf[int](), TagOf[int]()))
	assert.False(t, table.Assignable(TagOf[io.Reader](), TagOf[blob]()))
	assert.Equal(t, []Tag{Any}, table.Supertypes(TagOf[int]()))
}

func TestTag_KeyUsesImportPath(t *testing.T) {
	assert.Equal(t, "github.com/conduit-lang/assets/internal/capability.blob", TagOf[blob]().Key())
	assert.Equal(t, "*github.com/conduit-lang/assets/internal/capability.blob", TagOf[*blob]().Key())
	assert.Equal(t, "*capability.blob", TagOf[*blob]().String())
	assert.True(t, TagOfValue(nil).IsZero())
	assert.Equal(t, TagOf[*blob](), TagOfValue(&blob{}))
}
