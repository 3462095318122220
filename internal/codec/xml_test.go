package codec

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/antchfx/xmlquery"
	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/assets/internal/capability"
)

const sampleXML = `<config><server port="8080">main</server></config>`

func TestXML_ReadRepresentations(t *testing.T) {
	c := NewXML()

	v, err := c.Read(strings.NewReader(sampleXML), XMLDocTag)
	require.NoError(t, err)
	doc, ok := v.(*etree.Document)
	require.True(t, ok)
	assert.Equal(t, "8080", doc.FindElement("//server").SelectAttrValue("port", ""))

	v, err = c.Read(strings.NewReader(sampleXML), XMLNodeTag)
	require.NoError(t, err)
	node, ok := v.(*xmlquery.Node)
	require.True(t, ok)
	assert.Equal(t, "main", xmlquery.FindOne(node, "//server").InnerText())

	v, err = c.Read(strings.NewReader(sampleXML), XMLPullTag)
	require.NoError(t, err)
	dec, ok := v.(*xml.Decoder)
	require.True(t, ok)
	tok, err := dec.Token()
	require.NoError(t, err)
	assert.Equal(t, "config", tok.(xml.StartElement).Name.Local)
}

func TestXML_AnyPicksFirstRepresentation(t *testing.T) {
	v, err := NewXML().Read(strings.NewReader(sampleXML), capability.Any)
	require.NoError(t, err)
	assert.IsType(t, &xml.Decoder{}, v)
}

func TestXML_WriteDocument(t *testing.T) {
	c := NewXML()
	doc := etree.NewDocument()
	doc.CreateElement("config").CreateElement("server").SetText("main")

	var buf bytes.Buffer
	require.NoError(t, c.Write(&buf, doc, XMLDocTag))
	assert.Equal(t, "<config><server>main</server></config>", buf.String())
}

func TestXML_WriteDecoderCopiesTokens(t *testing.T) {
	c := NewXML()
	dec := xml.NewDecoder(strings.NewReader(sampleXML))

	var buf bytes.Buffer
	require.NoError(t, c.Write(&buf, dec, XMLPullTag))
	assert.Equal(t, sampleXML, buf.String())
}

func TestXML_WriteNode(t *testing.T) {
	c := NewXML()
	node, err := xmlquery.Parse(strings.NewReader(sampleXML))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.Write(&buf, node, XMLNodeTag))
	assert.Contains(t, buf.String(), `<server port="8080">main</server>`)
}

func TestXML_RejectsForeignValues(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, NewXML().Write(&buf, "text", XMLDocTag), ErrUnsupportedType)
	assert.ErrorIs(t, NewXML().Write(&buf, etree.NewDocument(), TextTag), ErrUnsupportedType)
}
