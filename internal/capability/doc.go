// Package capability provides the type-dispatch machinery shared by asset
// readers and writers.
//
// # Overview
//
// Every codec carries a Descriptor: a display name plus the set of Go types
// (Tags) it can decode or encode. A Registry indexes a population of codecs
// by those tags so that "which codec handles T" is a single map lookup.
//
// # Assignability
//
// A request for a tag may be served by a codec declaring a subtype of it.
// Subtyping is not discovered through reflection; it comes from an explicit
// Table of Sub/Super links that is closed once at construction:
//
//	table := capability.NewTable(
//		capability.Link{Sub: capability.TagOf[*codec.Stream](), Super: capability.TagOf[io.Reader]()},
//	)
//	readers := capability.New[codec.Reader]("Readers", table)
//	readers.Add(codec.NewStreamCodec())
//	r, ok := readers.Resolve(capability.TagOf[io.Reader]())
//
// When two codecs declare the same tag the one added first wins. The
// conflict is not reported.
package capability
