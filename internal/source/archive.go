package source

import (
	"bytes"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/conduit-lang/assets/internal/archive"
	"github.com/conduit-lang/assets/internal/capability"
	"github.com/conduit-lang/assets/internal/codec"
)

// LinkSuffix is appended to a logical name to form the entry name on write.
const LinkSuffix = ".asset"

// Archive serves assets from archive entries addressed through a LinkMap.
//
// Unlike the other sources, Archive never reports read failures: any error
// or panic while opening or decoding an entry is logged and reported as
// ErrNotFound.
type Archive struct {
	archive archive.Archive
	reader  codec.Reader
	writer  codec.Writer
	links   *LinkMap
	logger  *zap.Logger
}

// NewArchive lists the archive once to build the link map.
func NewArchive(a archive.Archive, reader codec.Reader, writer codec.Writer, opts ...Option) (*Archive, error) {
	o := buildOptions(opts)

	names, err := a.EntryNames()
	if err != nil {
		return nil, fmt.Errorf("source: list archive: %w", err)
	}

	links, shadowed := NewLinkMap(names)
	for _, name := range shadowed {
		o.logger.Warn("archive entry shadowed by another with the same logical name", zap.String("entry", name))
	}

	return &Archive{
		archive: a,
		reader:  reader,
		writer:  writer,
		links:   links,
		logger:  o.logger,
	}, nil
}

// Links exposes the link map.
func (s *Archive) Links() *LinkMap { return s.links }

func (s *Archive) ReadAsset(name string, tag capability.Tag) (v any, err error) {
	entryName, ok := s.links.Resolve(name)
	if !ok {
		return nil, ErrNotFound
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("archive read panicked",
				zap.String("name", name), zap.String("entry", entryName), zap.Any("panic", r))
			v, err = nil, ErrNotFound
		}
	}()

	v, err = s.readEntry(entryName, tag)
	if err != nil {
		s.logger.Warn("archive read failed",
			zap.String("name", name), zap.String("entry", entryName), zap.Error(err))
		return nil, ErrNotFound
	}
	return v, nil
}

func (s *Archive) readEntry(entryName string, tag capability.Tag) (any, error) {
	entry, err := s.archive.Open(entryName)
	if err != nil {
		return nil, err
	}
	defer entry.Close()

	return s.reader.Read(entry, tag)
}

func (s *Archive) WriteAsset(v any, name string, tag capability.Tag) error {
	var buf bytes.Buffer
	if err := s.writer.Write(&buf, v, tag); err != nil {
		return fmt.Errorf("source: encode %s: %w", name, err)
	}

	entryName := name + LinkSuffix
	entry, err := s.archive.Open(entryName)
	if errors.Is(err, archive.ErrEntryNotFound) {
		entry, err = s.archive.Create(entryName)
	}
	if err != nil {
		return fmt.Errorf("source: open entry %s: %w", entryName, err)
	}

	n, err := entry.Write(buf.Bytes())
	if err == nil {
		err = entry.Truncate(int64(n))
	}
	if cerr := entry.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("source: write entry %s: %w", entryName, err)
	}

	s.links.Set(name, entryName)
	s.logger.Debug("asset written",
		zap.String("name", name), zap.String("entry", entryName), zap.Stringer("type", tag), zap.Int("bytes", n))
	return nil
}

// List returns the logical names matching pattern.
func (s *Archive) List(pattern string) ([]string, error) {
	return filterNames(s.links.Names(), pattern)
}
