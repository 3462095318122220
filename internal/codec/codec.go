// Package codec defines asset readers and writers and ships the built-in
// text, stream, XML, YAML and image codecs.
package codec

import (
	"errors"
	"fmt"
	"io"

	"github.com/conduit-lang/assets/internal/capability"
)

// ErrUnsupportedType is returned when no codec handles the requested tag.
var ErrUnsupportedType = errors.New("codec: unsupported type")

// Reader decodes a value of a declared type from a stream.
type Reader interface {
	capability.Capable

	// Read decodes src into a value assignable to tag. It returns
	// ErrUnsupportedType when tag is outside the reader's declared set.
	Read(src io.Reader, tag capability.Tag) (any, error)
}

// Writer encodes a value of a declared type to a stream.
type Writer interface {
	capability.Capable

	// Write encodes v to dst as tag. It returns ErrUnsupportedType when tag
	// is outside the writer's declared set or v is not of that type.
	Write(dst io.Writer, v any, tag capability.Tag) error
}

// Readers is a registry of readers that is itself a Reader: Read resolves
// the first reader supporting the tag and delegates to it once.
type Readers struct {
	reg *capability.Registry[Reader]
}

// NewReaders creates a reader registry over table and adds readers in order.
func NewReaders(name string, table *capability.Table, readers ...Reader) *Readers {
	r := &Readers{reg: capability.New[Reader](name, table)}
	for _, rd := range readers {
		r.reg.Add(rd)
	}
	return r
}

// Capability returns the union of all registered readers.
func (r *Readers) Capability() capability.Descriptor { return r.reg.Descriptor() }

// Add registers rd. It returns false if rd is already present.
func (r *Readers) Add(rd Reader) bool { return r.reg.Add(rd) }

// Remove unregisters rd.
func (r *Readers) Remove(rd Reader) bool { return r.reg.Remove(rd) }

// Resolve returns the reader chosen for tag.
func (r *Readers) Resolve(tag capability.Tag) (Reader, bool) { return r.reg.Resolve(tag) }

// Len returns the number of registered readers.
func (r *Readers) Len() int { return r.reg.Len() }

// Read decodes src with the reader resolved for tag. A failure inside that
// reader is returned as is; no other reader is tried.
func (r *Readers) Read(src io.Reader, tag capability.Tag) (any, error) {
	rd, ok := r.reg.Resolve(tag)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, tag)
	}
	return rd.Read(src, tag)
}

// Writers is the encoding counterpart of Readers.
type Writers struct {
	reg *capability.Registry[Writer]
}

// NewWriters creates a writer registry over table and adds writers in order.
func NewWriters(name string, table *capability.Table, writers ...Writer) *Writers {
	w := &Writers{reg: capability.New[Writer](name, table)}
	for _, wr := range writers {
		w.reg.Add(wr)
	}
	return w
}

// Capability returns the union of all registered writers.
func (w *Writers) Capability() capability.Descriptor { return w.reg.Descriptor() }

// Add registers wr. It returns false if wr is already present.
func (w *Writers) Add(wr Writer) bool { return w.reg.Add(wr) }

// Remove unregisters wr.
func (w *Writers) Remove(wr Writer) bool { return w.reg.Remove(wr) }

// Resolve returns the writer chosen for tag.
func (w *Writers) Resolve(tag capability.Tag) (Writer, bool) { return w.reg.Resolve(tag) }

// Len returns the number of registered writers.
func (w *Writers) Len() int { return w.reg.Len() }

// Write encodes v with the writer resolved for tag.
func (w *Writers) Write(dst io.Writer, v any, tag capability.Tag) error {
	wr, ok := w.reg.Resolve(tag)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, tag)
	}
	return wr.Write(dst, v, tag)
}

// DefaultReaders returns a registry holding every built-in reader over the
// built-in supertype table.
func DefaultReaders() *Readers {
	return NewReaders("Default Readers", Supertypes(),
		NewText(), NewStreamCodec(), NewXML(), NewYAML(), NewImage())
}

// DefaultWriters returns a registry holding every built-in writer over the
// built-in supertype table.
func DefaultWriters() *Writers {
	return NewWriters("Default Writers", Supertypes(),
		NewText(), NewStreamCodec(), NewXML(), NewYAML(), NewImage())
}

func unsupported(name string, tag capability.Tag) error {
	return fmt.Errorf("%w: %s codec cannot handle %s", ErrUnsupportedType, name, tag)
}
