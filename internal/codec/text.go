package codec

import (
	"io"

	"github.com/conduit-lang/assets/internal/capability"
)

// Text reads and writes plain strings.
type Text struct {
	desc capability.Descriptor
}

// NewText creates a text codec.
func NewText() *Text {
	return &Text{desc: capability.NewDescriptor("Text", TextTag)}
}

// Capability implements capability.Capable.
func (t *Text) Capability() capability.Descriptor { return t.desc }

// Read returns the whole stream as a string.
func (t *Text) Read(src io.Reader, tag capability.Tag) (any, error) {
	if _, ok := pick(tag, TextTag); !ok {
		return nil, unsupported(t.desc.Name(), tag)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Write writes v, which must be a string.
func (t *Text) Write(dst io.Writer, v any, tag capability.Tag) error {
	s, ok := v.(string)
	if _, match := pick(tag, TextTag); !match || !ok {
		return unsupported(t.desc.Name(), tag)
	}
	_, err := io.WriteString(dst, s)
	return err
}
