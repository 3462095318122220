package source

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/assets/internal/capability"
	"github.com/conduit-lang/assets/internal/codec"
)

func newMemFile(t *testing.T, files map[string]string) (*File, afero.Fs) {
	t.Helper()
	fsys := afero.NewBasePathFs(afero.NewMemMapFs(), "/assets")
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fsys, name, []byte(content), 0o644))
	}
	return NewFile(fsys, codec.DefaultReaders(), codec.DefaultWriters()), fsys
}

func TestFile_ReadAsset(t *testing.T) {
	src, _ := newMemFile(t, map[string]string{
		"config.xml": `<config><port>8080</port></config>`,
		"readme.txt": "hello",
	})

	v, err := src.ReadAsset("config.xml", codec.XMLDocTag)
	require.NoError(t, err)
	doc := v.(*etree.Document)
	assert.Equal(t, "8080", doc.FindElement("//port").Text())

	v, err = src.ReadAsset("readme.txt", codec.TextTag)
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
}

func TestFile_MissingAndUnsupportedAreNotFound(t *testing.T) {
	src, _ := newMemFile(t, map[string]string{"readme.txt": "hello"})

	_, err := src.ReadAsset("nope.txt", codec.TextTag)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = src.ReadAsset("readme.txt", capability.TagOf[int]())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFile_DecodeFailurePropagates(t *testing.T) {
	src, _ := newMemFile(t, map[string]string{"broken.png": "not a png"})

	_, err := src.ReadAsset("broken.png", codec.ImageTag)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFile_WriteCreatesAndTruncates(t *testing.T) {
	src, fsys := newMemFile(t, map[string]string{"notes/today.txt": "a much longer original body"})

	require.NoError(t, src.WriteAsset("short", "notes/today.txt", codec.TextTag))
	require.NoError(t, src.WriteAsset("new", "fresh/dir/file.txt", codec.TextTag))

	data, err := afero.ReadFile(fsys, "notes/today.txt")
	require.NoError(t, err)
	assert.Equal(t, "short", string(data))

	v, err := src.ReadAsset("fresh/dir/file.txt", codec.TextTag)
	require.NoError(t, err)
	assert.Equal(t, "new", v)
}

func TestFile_WriteUnsupported(t *testing.T) {
	src, _ := newMemFile(t, nil)
	err := src.WriteAsset(42, "n.txt", capability.TagOf[int]())
	assert.ErrorIs(t, err, codec.ErrUnsupportedType)
}

func TestFile_List(t *testing.T) {
	src, _ := newMemFile(t, map[string]string{
		"a.xml":          "<a/>",
		"docs/b.xml":     "<b/>",
		"docs/c.txt":     "c",
		"docs/sub/d.xml": "<d/>",
	})

	all, err := src.List("")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.xml", "docs/b.xml", "docs/c.txt", "docs/sub/d.xml"}, all)

	xml, err := src.List("**/*.xml")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.xml", "docs/b.xml", "docs/sub/d.xml"}, xml)

	_, err = src.List("[")
	assert.Error(t, err)
}
