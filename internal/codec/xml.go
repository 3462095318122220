package codec

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"

	"github.com/antchfx/xmlquery"
	"github.com/beevik/etree"

	"github.com/conduit-lang/assets/internal/capability"
)

// XML decodes documents into one of three representations, chosen by the
// requested tag:
//
//   - *xml.Decoder: a pull reader over an in-memory copy of the document
//   - *etree.Document: a mutable element tree
//   - *xmlquery.Node: a read-only tree navigable with XPath
type XML struct {
	desc capability.Descriptor
}

// NewXML creates an XML codec.
func NewXML() *XML {
	return &XML{desc: capability.NewDescriptor("XML Document", XMLPullTag, XMLDocTag, XMLNodeTag)}
}

// Capability implements capability.Capable.
func (x *XML) Capability() capability.Descriptor { return x.desc }

func (x *XML) Read(src io.Reader, tag capability.Tag) (any, error) {
	produced, ok := pick(tag, XMLPullTag, XMLDocTag, XMLNodeTag)
	if !ok {
		return nil, unsupported(x.desc.Name(), tag)
	}

	switch produced {
	case XMLPullTag:
		// The source stream is closed once Read returns.
		data, err := io.ReadAll(src)
		if err != nil {
			return nil, err
		}
		return xml.NewDecoder(bytes.NewReader(data)), nil
	case XMLDocTag:
		doc := etree.NewDocument()
		if _, err := doc.ReadFrom(src); err != nil {
			return nil, err
		}
		return doc, nil
	default:
		return xmlquery.Parse(src)
	}
}

func (x *XML) Write(dst io.Writer, v any, tag capability.Tag) error {
	if _, ok := pick(tag, XMLPullTag, XMLDocTag, XMLNodeTag); !ok {
		return unsupported(x.desc.Name(), tag)
	}

	switch doc := v.(type) {
	case *xml.Decoder:
		return copyTokens(xml.NewEncoder(dst), doc)
	case *etree.Document:
		_, err := doc.WriteTo(dst)
		return err
	case *xmlquery.Node:
		_, err := io.WriteString(dst, doc.OutputXML(true))
		return err
	default:
		return unsupported(x.desc.Name(), capability.TagOfValue(v))
	}
}

// copyTokens drains dec into enc. The decoder is consumed.
func copyTokens(enc *xml.Encoder, dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if err := enc.EncodeToken(xml.CopyToken(tok)); err != nil {
			return err
		}
	}
	return enc.Flush()
}
