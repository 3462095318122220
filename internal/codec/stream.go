package codec

import (
	"bytes"
	"io"
	"os"
	"sync/atomic"

	"github.com/conduit-lang/assets/internal/capability"
)

// Stream is an in-memory copy of an asset's bytes. It must be closed when no
// longer needed; the asset cache does that for streams it holds.
type Stream struct {
	r      *bytes.Reader
	closed atomic.Bool
}

// NewStream wraps data. The slice is not copied.
func NewStream(data []byte) *Stream {
	return &Stream{r: bytes.NewReader(data)}
}

func (s *Stream) Read(p []byte) (int, error) {
	if s.closed.Load() {
		return 0, os.ErrClosed
	}
	return s.r.Read(p)
}

func (s *Stream) ReadAt(p []byte, off int64) (int, error) {
	if s.closed.Load() {
		return 0, os.ErrClosed
	}
	return s.r.ReadAt(p, off)
}

func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	if s.closed.Load() {
		return 0, os.ErrClosed
	}
	return s.r.Seek(offset, whence)
}

// WriteTo copies the unread remainder to w.
func (s *Stream) WriteTo(w io.Writer) (int64, error) {
	if s.closed.Load() {
		return 0, os.ErrClosed
	}
	return s.r.WriteTo(w)
}

// Size returns the total length of the underlying data.
func (s *Stream) Size() int64 { return s.r.Size() }

// Close releases the stream. Closing twice is harmless.
func (s *Stream) Close() error {
	s.closed.Store(true)
	return nil
}

// Closed reports whether Close has been called.
func (s *Stream) Closed() bool { return s.closed.Load() }

// StreamCodec copies raw bytes in and out of a Stream.
type StreamCodec struct {
	desc capability.Descriptor
}

// NewStreamCodec creates a raw stream codec.
func NewStreamCodec() *StreamCodec {
	return &StreamCodec{desc: capability.NewDescriptor("Stream", StreamTag)}
}

// Capability implements capability.Capable.
func (c *StreamCodec) Capability() capability.Descriptor { return c.desc }

// Read buffers src into a new Stream positioned at the start.
func (c *StreamCodec) Read(src io.Reader, tag capability.Tag) (any, error) {
	if _, ok := pick(tag, StreamTag); !ok {
		return nil, unsupported(c.desc.Name(), tag)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, src); err != nil {
		return nil, err
	}
	return NewStream(buf.Bytes()), nil
}

// Write copies any io.Reader to dst.
func (c *StreamCodec) Write(dst io.Writer, v any, tag capability.Tag) error {
	src, ok := v.(io.Reader)
	if _, match := pick(tag, StreamTag); !match || !ok {
		return unsupported(c.desc.Name(), tag)
	}
	_, err := io.Copy(dst, src)
	return err
}
