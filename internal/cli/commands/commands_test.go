package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"

	"github.com/conduit-lang/assets/internal/assets"
	"github.com/conduit-lang/assets/internal/cli/config"
)

// execute runs assetctl with args in dir and returns its stdout.
func execute(t *testing.T, ctx context.Context, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(oldWd) })
	return dir
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "assetctl", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, expected := range []string{"version", "get", "put", "list", "serve", "types"} {
		assert.Contains(t, names, expected)
	}

	for _, flag := range []string{"config", "source", "root", "log-level"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersionCommand(t *testing.T) {
	Version = "1.0.0-test"
	t.Cleanup(func() { Version = "dev" })

	out, err := execute(t, context.Background(), "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "assetctl version: 1.0.0-test")
	assert.Contains(t, out, "Go version: ")
}

func TestPutGetListFileSource(t *testing.T) {
	dir := inTempDir(t)
	input := filepath.Join(dir, "hello.txt")
	require.NoError(t, os.WriteFile(input, []byte("hello world"), 0o644))

	out, err := execute(t, context.Background(), "", "--root", "store", "put", "notes/hello.txt", "--from", input)
	require.NoError(t, err)
	assert.Contains(t, out, "Stored notes/hello.txt (text)")

	out, err = execute(t, context.Background(), "name: demo\n", "--root", "store", "put", "app.yml", "--type", "yaml")
	require.NoError(t, err)

	out, err = execute(t, context.Background(), "", "--root", "store", "get", "notes/hello.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello world", out)

	out, err = execute(t, context.Background(), "", "--root", "store", "get", "app.yml", "-t", "yaml")
	require.NoError(t, err)
	assert.Equal(t, "name: demo\n", out)

	target := filepath.Join(dir, "copy.txt")
	_, err = execute(t, context.Background(), "", "--root", "store", "get", "notes/hello.txt", "-o", target)
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	out, err = execute(t, context.Background(), "", "--root", "store", "list")
	require.NoError(t, err)
	assert.Equal(t, "app.yml\nnotes/hello.txt\n", out)

	out, err = execute(t, context.Background(), "", "--root", "store", "list", "**/*.txt")
	require.NoError(t, err)
	assert.Equal(t, "notes/hello.txt\n", out)
}

func TestArchiveSourceFromConfigFile(t *testing.T) {
	dir := inTempDir(t)
	configContent := "source:\n  kind: archive\narchive:\n  backend: sqlite\n  dsn: " + filepath.Join(dir, "assets.db") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets.yml"), []byte(configContent), 0o644))

	_, err := execute(t, context.Background(), "hi from sqlite", "put", "greeting")
	require.NoError(t, err)

	out, err := execute(t, context.Background(), "", "get", "greeting")
	require.NoError(t, err)
	assert.Equal(t, "hi from sqlite", out)

	out, err = execute(t, context.Background(), "", "list")
	require.NoError(t, err)
	assert.Equal(t, "greeting\n", out)

	// The file source ignores the archive.
	_, err = execute(t, context.Background(), "", "--source", "file", "--root", dir, "get", "greeting")
	assert.True(t, assets.IsAssetNotFound(err))
}

func TestExplicitConfigFlag(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("source:\n  root: "+filepath.Join(dir, "elsewhere")+"\n"), 0o644))

	_, err := execute(t, context.Background(), "x", "--config", path, "put", "a.txt")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "elsewhere", "a.txt"))
	assert.NoError(t, err)

	_, err = execute(t, context.Background(), "", "--config", filepath.Join(dir, "missing.yml"), "list")
	assert.Error(t, err)
}

func TestCommandErrors(t *testing.T) {
	inTempDir(t)

	_, err := execute(t, context.Background(), "", "get", "x", "--type", "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type")

	_, err = execute(t, context.Background(), "", "--root", ".", "get", "missing.txt")
	assert.True(t, assets.IsAssetNotFound(err))

	_, err = execute(t, context.Background(), "", "--source", "ftp", "list")
	assert.Error(t, err)

	_, err = execute(t, context.Background(), "", "get")
	assert.Error(t, err)

	_, err = execute(t, context.Background(), "<broken", "--root", ".", "put", "img", "--type", "image")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode input")
}

func TestServeStopsWhenContextEnds(t *testing.T) {
	inTempDir(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := execute(t, ctx, "", "--root", ".", "serve", "--host", "127.0.0.1", "--port", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Serving file assets on http://127.0.0.1:0")
}

func TestTypesCommand(t *testing.T) {
	out, err := execute(t, context.Background(), "", "types")
	require.NoError(t, err)
	assert.Contains(t, out, "KIND")
	assert.Contains(t, out, "READER")
	assert.Contains(t, out, "Text")
	assert.Contains(t, out, "XML Document")
	for _, kind := range []string{"image", "stream", "text", "xml", "xmlpull", "xpath", "yaml"} {
		assert.Contains(t, out, kind)
	}
}

func TestGetSuggestsCloseNames(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.xml"), []byte("<a/>"), 0o644))

	cmd := NewRootCommand()
	var stderr bytes.Buffer
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--root", dir, "get", "confg.xml", "--type", "xml"})

	err := cmd.ExecuteContext(context.Background())
	assert.True(t, assets.IsAssetNotFound(err))
	assert.Contains(t, stderr.String(), "ASSET NOT FOUND: confg.xml")
	assert.Contains(t, stderr.String(), "Did you mean: config.xml?")
}

func TestGetDecodeFailureIsNotReportedMissing(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logo.png"), []byte("not a png"), 0o644))

	cmd := NewRootCommand()
	var stderr bytes.Buffer
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--root", dir, "get", "logo.png", "--type", "image"})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.False(t, assets.IsAssetNotFound(err))
	assert.NotContains(t, stderr.String(), "ASSET NOT FOUND")
}

type failingCloser struct {
	bytes.Buffer
	err error
}

func (f *failingCloser) Close() error { return f.err }

func TestWriteAndCloseReportsCloseError(t *testing.T) {
	diskFull := errors.New("disk full")
	write := func(w io.Writer) error {
		_, err := io.WriteString(w, "payload")
		return err
	}

	out := &failingCloser{err: diskFull}
	err := writeAndClose(out, "out.txt", write)
	assert.ErrorIs(t, err, diskFull)
	assert.Contains(t, err.Error(), "out.txt")
	assert.Equal(t, "payload", out.String())

	// A write failure wins over the close failure.
	writeErr := errors.New("encode failed")
	err = writeAndClose(&failingCloser{err: diskFull}, "out.txt", func(io.Writer) error { return writeErr })
	assert.ErrorIs(t, err, writeErr)
	assert.NotErrorIs(t, err, diskFull)

	assert.NoError(t, writeAndClose(&failingCloser{}, "out.txt", write))
}

func TestReleaseStackDisposesCache(t *testing.T) {
	cfg := &config.Config{
		Source: config.SourceConfig{Kind: "file", Root: t.TempDir()},
		Log:    config.LogConfig{Level: "error"},
	}
	stack, _, err := buildStack(cfg)
	require.NoError(t, err)
	require.NoError(t, stack.Cache.Load("held", "value"))

	require.NoError(t, releaseStack(stack, zap.NewNop())(context.Background()))
	assert.True(t, stack.Cache.Disposed())
	assert.Equal(t, 0, stack.Cache.Stats().Entries)

	// The deferred close in serve is then a no-op.
	assert.NoError(t, stack.Close())
}
