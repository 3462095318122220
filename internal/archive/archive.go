// Package archive abstracts a container of named binary entries that can be
// listed, opened for read/write, and created. Backends keep entries in
// memory, in an SQL "sqlar" table, or in a Redis hash.
package archive

import (
	"errors"
	"io"
	"os"
)

// ErrEntryNotFound is returned by Open when no entry has the given name.
var ErrEntryNotFound = errors.New("archive: entry not found")

// Archive is a container of named entries.
type Archive interface {
	// EntryNames lists every entry, sorted.
	EntryNames() ([]string, error)

	// Open returns the existing entry name positioned at offset 0.
	Open(name string) (Entry, error)

	// Create adds an empty entry name, replacing any existing content.
	Create(name string) (Entry, error)
}

// Entry is an open archive entry. Changes are persisted on Close.
type Entry interface {
	io.ReadWriteSeeker
	io.Closer

	// Name returns the entry's physical name.
	Name() string

	// Truncate changes the entry length to size.
	Truncate(size int64) error
}

// bufferedEntry holds an entry's content in memory and hands it to commit on
// Close if anything changed.
type bufferedEntry struct {
	name   string
	data   []byte
	pos    int64
	dirty  bool
	closed bool
	commit func(data []byte) error
}

func newBufferedEntry(name string, data []byte, commit func([]byte) error) *bufferedEntry {
	return &bufferedEntry{name: name, data: data, commit: commit}
}

func (e *bufferedEntry) Name() string { return e.name }

func (e *bufferedEntry) Read(p []byte) (int, error) {
	if e.closed {
		return 0, os.ErrClosed
	}
	if e.pos >= int64(len(e.data)) {
		return 0, io.EOF
	}
	n := copy(p, e.data[e.pos:])
	e.pos += int64(n)
	return n, nil
}

func (e *bufferedEntry) Write(p []byte) (int, error) {
	if e.closed {
		return 0, os.ErrClosed
	}
	end := e.pos + int64(len(p))
	if end > int64(len(e.data)) {
		grown := make([]byte, end)
		copy(grown, e.data)
		e.data = grown
	}
	copy(e.data[e.pos:], p)
	e.pos = end
	e.dirty = true
	return len(p), nil
}

func (e *bufferedEntry) Seek(offset int64, whence int) (int64, error) {
	if e.closed {
		return 0, os.ErrClosed
	}
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = e.pos + offset
	case io.SeekEnd:
		abs = int64(len(e.data)) + offset
	default:
		return 0, errors.New("archive: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("archive: negative position")
	}
	e.pos = abs
	return abs, nil
}

func (e *bufferedEntry) Truncate(size int64) error {
	if e.closed {
		return os.ErrClosed
	}
	if size < 0 {
		return errors.New("archive: negative size")
	}
	if size <= int64(len(e.data)) {
		e.data = e.data[:size]
	} else {
		grown := make([]byte, size)
		copy(grown, e.data)
		e.data = grown
	}
	e.dirty = true
	return nil
}

func (e *bufferedEntry) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if !e.dirty {
		return nil
	}
	return e.commit(e.data)
}
