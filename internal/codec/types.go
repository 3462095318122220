package codec

import (
	"encoding/xml"
	"io"
	"sort"
	"sync"

	"github.com/antchfx/xmlquery"
	"github.com/beevik/etree"
	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/assets/internal/capability"
)

// Tags of the values produced by the built-in codecs.
var (
	TextTag       = capability.TagOf[string]()
	StreamTag     = capability.TagOf[*Stream]()
	XMLPullTag    = capability.TagOf[*xml.Decoder]()
	XMLDocTag     = capability.TagOf[*etree.Document]()
	XMLNodeTag    = capability.TagOf[*xmlquery.Node]()
	YAMLTag       = capability.TagOf[*yaml.Node]()
	ImageTag      = capability.TagOf[*Image]()
	readerTag     = capability.TagOf[io.Reader]()
	closerTag     = capability.TagOf[io.Closer]()
	writerToTag   = capability.TagOf[io.WriterTo]()
	seekerTag     = capability.TagOf[io.Seeker]()
	readCloserTag = capability.TagOf[io.ReadCloser]()
	readSeekerTag = capability.TagOf[io.ReadSeeker]()
)

var supertypes = sync.OnceValue(func() *capability.Table {
	link := func(sub, super capability.Tag) capability.Link {
		return capability.Link{Sub: sub, Super: super}
	}
	return capability.NewTable(
		link(StreamTag, capability.TagOf[io.ReadSeekCloser]()),
		link(capability.TagOf[io.ReadSeekCloser](), readSeekerTag),
		link(capability.TagOf[io.ReadSeekCloser](), readCloserTag),
		link(readSeekerTag, readerTag),
		link(readSeekerTag, seekerTag),
		link(readCloserTag, readerTag),
		link(readCloserTag, closerTag),
		link(StreamTag, capability.TagOf[io.ReaderAt]()),
		link(StreamTag, writerToTag),
		link(XMLDocTag, writerToTag),
	)
})

// Supertypes returns the table describing how built-in value types may be
// requested through the interfaces they implement.
func Supertypes() *capability.Table {
	return supertypes()
}

var kinds = map[string]capability.Tag{
	"text":    TextTag,
	"stream":  StreamTag,
	"xml":     XMLDocTag,
	"xmlpull": XMLPullTag,
	"xpath":   XMLNodeTag,
	"yaml":    YAMLTag,
	"image":   ImageTag,
}

// KindTag maps a short kind name used on the command line and over HTTP to
// its tag.
func KindTag(kind string) (capability.Tag, bool) {
	tag, ok := kinds[kind]
	return tag, ok
}

// Kinds lists the known kind names in sorted order.
func Kinds() []string {
	out := make([]string, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// pick returns the first produced tag that satisfies a request for tag.
func pick(tag capability.Tag, produced ...capability.Tag) (capability.Tag, bool) {
	for _, p := range produced {
		if Supertypes().Assignable(tag, p) {
			return p, true
		}
	}
	return capability.Tag{}, false
}
