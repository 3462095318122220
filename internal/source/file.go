package source

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/conduit-lang/assets/internal/capability"
	"github.com/conduit-lang/assets/internal/codec"
)

// File serves assets from plain files. The asset name is the slash-separated
// path of the file relative to the filesystem root, extension included.
type File struct {
	fs     afero.Fs
	reader codec.Reader
	writer codec.Writer
	logger *zap.Logger
}

// NewFile creates a file source over fsys.
func NewFile(fsys afero.Fs, reader codec.Reader, writer codec.Writer, opts ...Option) *File {
	o := buildOptions(opts)
	return &File{fs: fsys, reader: reader, writer: writer, logger: o.logger}
}

// NewDirectory creates a file source rooted at dir on the OS filesystem.
// Names cannot escape dir.
func NewDirectory(dir string, reader codec.Reader, writer codec.Writer, opts ...Option) *File {
	return NewFile(afero.NewBasePathFs(afero.NewOsFs(), dir), reader, writer, opts...)
}

func (s *File) ReadAsset(name string, tag capability.Tag) (any, error) {
	if !s.reader.Capability().Supports(tag) {
		return nil, ErrNotFound
	}

	f, err := s.fs.Open(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("source: open %s: %w", name, err)
	}
	defer f.Close()

	v, err := s.reader.Read(f, tag)
	if errors.Is(err, codec.ErrUnsupportedType) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("source: decode %s: %w", name, err)
	}
	return v, nil
}

func (s *File) WriteAsset(v any, name string, tag capability.Tag) error {
	var buf bytes.Buffer
	if err := s.writer.Write(&buf, v, tag); err != nil {
		return fmt.Errorf("source: encode %s: %w", name, err)
	}

	p := s.path(name)
	if dir := filepath.Dir(p); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("source: create directory for %s: %w", name, err)
		}
	}
	if err := afero.WriteFile(s.fs, p, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("source: write %s: %w", name, err)
	}

	s.logger.Debug("asset written", zap.String("name", name), zap.Stringer("type", tag), zap.Int("bytes", buf.Len()))
	return nil
}

// List walks the filesystem and returns slash-separated file names.
func (s *File) List(pattern string) ([]string, error) {
	var names []string
	err := afero.Walk(s.fs, ".", func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		names = append(names, filepath.ToSlash(p))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("source: list: %w", err)
	}
	sort.Strings(names)
	return filterNames(names, pattern)
}

func (s *File) path(name string) string {
	return filepath.FromSlash(path.Clean(name))
}
