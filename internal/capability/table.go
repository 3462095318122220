package capability

// Link declares that values of Sub may be requested as Super.
type Link struct {
	Sub   Tag
	Super Tag
}

// Table is a closed supertype table. It is built once from explicit links
// and answers assignability questions without consulting reflection.
//
// The closure of every tag is computed at construction, so Assignable is a
// map lookup. Any is implicitly a supertype of every tag.
type Table struct {
	supers map[Tag][]Tag
	index  map[Tag]map[Tag]struct{}
}

// NewTable builds a table from the given links and closes it transitively.
// Cycles are tolerated; a tag is never listed as its own supertype.
func NewTable(links ...Link) *Table {
	direct := make(map[Tag][]Tag)
	for _, l := range links {
		if l.Sub.IsZero() || l.Super.IsZero() || l.Sub == l.Super {
			continue
		}
		direct[l.Sub] = append(direct[l.Sub], l.Super)
	}

	t := &Table{
		supers: make(map[Tag][]Tag, len(direct)),
		index:  make(map[Tag]map[Tag]struct{}, len(direct)),
	}

	for sub := range direct {
		seen := map[Tag]struct{}{sub: {}}
		var closure []Tag
		stack := append([]Tag(nil), direct[sub]...)
		for len(stack) > 0 {
			next := stack[0]
			stack = stack[1:]
			if _, ok := seen[next]; ok {
				continue
			}
			seen[next] = struct{}{}
			closure = append(closure, next)
			stack = append(stack, direct[next]...)
		}
		delete(seen, sub)
		t.supers[sub] = closure
		t.index[sub] = seen
	}

	return t
}

// Supertypes returns every tag that a value of tag may be requested as,
// excluding tag itself, in breadth-first declaration order. Any is always
// last unless tag is Any.
func (t *Table) Supertypes(tag Tag) []Tag {
	var out []Tag
	if t != nil {
		for _, s := range t.supers[tag] {
			if s != Any {
				out = append(out, s)
			}
		}
	}
	if tag != Any && !tag.IsZero() {
		out = append(out, Any)
	}
	return out
}

// Assignable reports whether a value whose tag is actual satisfies a request
// for requested.
func (t *Table) Assignable(requested, actual Tag) bool {
	if requested == actual {
		return !actual.IsZero()
	}
	if requested == Any {
		return !actual.IsZero()
	}
	if t == nil {
		return false
	}
	_, ok := t.index[actual][requested]
	return ok
}
