package codec

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/assets/internal/capability"
)

// YAML reads and writes *yaml.Node documents, preserving comments and key
// order.
type YAML struct {
	desc capability.Descriptor
}

// NewYAML creates a YAML codec.
func NewYAML() *YAML {
	return &YAML{desc: capability.NewDescriptor("YAML Document", YAMLTag)}
}

// Capability implements capability.Capable.
func (y *YAML) Capability() capability.Descriptor { return y.desc }

func (y *YAML) Read(src io.Reader, tag capability.Tag) (any, error) {
	if _, ok := pick(tag, YAMLTag); !ok {
		return nil, unsupported(y.desc.Name(), tag)
	}
	var node yaml.Node
	if err := yaml.NewDecoder(src).Decode(&node); err != nil && err != io.EOF {
		return nil, err
	}
	return &node, nil
}

func (y *YAML) Write(dst io.Writer, v any, tag capability.Tag) error {
	node, ok := v.(*yaml.Node)
	if _, match := pick(tag, YAMLTag); !match || !ok {
		return unsupported(y.desc.Name(), tag)
	}
	enc := yaml.NewEncoder(dst)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return err
	}
	return enc.Close()
}
