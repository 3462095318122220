package source

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/conduit-lang/assets/internal/archive"
	"github.com/conduit-lang/assets/internal/capability"
	"github.com/conduit-lang/assets/internal/codec"
)

type panicReader struct{}

func (panicReader) Capability() capability.Descriptor {
	return capability.NewDescriptor("Panics", codec.TextTag)
}

func (panicReader) Read(io.Reader, capability.Tag) (any, error) {
	panic("decoder exploded")
}

type failingArchive struct{ archive.Archive }

func (failingArchive) EntryNames() ([]string, error) { return nil, errors.New("unreachable") }

func newArchiveSource(t *testing.T, entries map[string]string, opts ...Option) (*Archive, *archive.Memory) {
	t.Helper()
	mem := archive.NewMemory()
	for name, content := range entries {
		mem.Put(name, []byte(content))
	}
	src, err := NewArchive(mem, codec.DefaultReaders(), codec.DefaultWriters(), opts...)
	require.NoError(t, err)
	return src, mem
}

func TestArchive_LinksStripExtensions(t *testing.T) {
	src, _ := newArchiveSource(t, map[string]string{
		"config.xml":     "<config/>",
		"ui/title.txt":   "Welcome",
		"ui/title.ascii": "shadowed",
	})

	entry, ok := src.Links().Resolve("ui/title")
	require.True(t, ok)
	assert.Equal(t, "ui/title.ascii", entry, "sorted entry list: first name wins")

	v, err := src.ReadAsset("ui/title", codec.TextTag)
	require.NoError(t, err)
	assert.Equal(t, "shadowed", v)

	names, err := src.List("")
	require.NoError(t, err)
	assert.Equal(t, []string{"config", "ui/title"}, names)
}

func TestArchive_RoundTrip(t *testing.T) {
	src, mem := newArchiveSource(t, nil)

	require.NoError(t, src.WriteAsset("hello archive", "foo", codec.TextTag))

	_, ok := mem.Bytes("foo.asset")
	assert.True(t, ok, "physical entry must be foo.asset")

	v, err := src.ReadAsset("foo", codec.TextTag)
	require.NoError(t, err)
	assert.Equal(t, "hello archive", v)

	logical, ok := src.Links().Logical("foo.asset")
	require.True(t, ok)
	assert.Equal(t, "foo", logical)
}

func TestArchive_WriteTruncatesExistingEntry(t *testing.T) {
	src, mem := newArchiveSource(t, map[string]string{"foo.asset": "a long previous body"})

	require.NoError(t, src.WriteAsset("tiny", "foo", codec.TextTag))

	data, _ := mem.Bytes("foo.asset")
	assert.Equal(t, "tiny", string(data))
}

func TestArchive_WriteRelinksToAssetEntry(t *testing.T) {
	src, mem := newArchiveSource(t, map[string]string{"doc.xml": "<old/>"})

	require.NoError(t, src.WriteAsset("replacement", "doc", codec.TextTag))

	entry, _ := src.Links().Resolve("doc")
	assert.Equal(t, "doc.asset", entry)
	_, stillThere := mem.Bytes("doc.xml")
	assert.True(t, stillThere)
}

func TestArchive_ReadFailuresAreSwallowed(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	src, _ := newArchiveSource(t, map[string]string{"broken.png": "not a png"}, WithLogger(zap.New(core)))

	_, err := src.ReadAsset("broken", codec.ImageTag)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, logs.FilterMessage("archive read failed").Len())

	_, err = src.ReadAsset("missing", codec.TextTag)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = src.ReadAsset("broken", capability.TagOf[int]())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArchive_ReadPanicIsRecovered(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	mem := archive.NewMemory()
	mem.Put("boom.txt", []byte("x"))

	readers := codec.NewReaders("Readers", codec.Supertypes(), panicReader{})
	src, err := NewArchive(mem, readers, codec.DefaultWriters(), WithLogger(zap.New(core)))
	require.NoError(t, err)

	_, err = src.ReadAsset("boom", codec.TextTag)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, logs.FilterMessage("archive read panicked").Len())
}

func TestArchive_ListFailure(t *testing.T) {
	_, err := NewArchive(failingArchive{}, codec.DefaultReaders(), codec.DefaultWriters())
	assert.Error(t, err)
}

func TestArchive_WriteUnsupportedLeavesArchiveUntouched(t *testing.T) {
	src, mem := newArchiveSource(t, nil)

	err := src.WriteAsset(42, "n", capability.TagOf[int]())
	assert.ErrorIs(t, err, codec.ErrUnsupportedType)

	names, _ := mem.EntryNames()
	assert.Empty(t, names)
	_, ok := src.Links().Resolve("n")
	assert.False(t, ok)
}
