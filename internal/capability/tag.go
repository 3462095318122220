package capability

import (
	"reflect"
)

// Tag identifies a Go type for codec registration and cache lookup.
// Two tags are equal only when they name the exact same type.
type Tag struct {
	rt reflect.Type
}

// Any is the tag of the empty interface. Every tag is assignable to it.
var Any = TagOf[any]()

// TagOf returns the tag for the static type T.
func TagOf[T any]() Tag {
	return Tag{rt: reflect.TypeOf((*T)(nil)).Elem()}
}

// TagOfValue returns the tag for the dynamic type of v.
// A nil interface yields the zero Tag.
func TagOfValue(v any) Tag {
	if v == nil {
		return Tag{}
	}
	return Tag{rt: reflect.TypeOf(v)}
}

// IsZero reports whether t was never assigned a type.
func (t Tag) IsZero() bool {
	return t.rt == nil
}

// String returns the Go spelling of the type, e.g. "*etree.Document".
func (t Tag) String() string {
	if t.rt == nil {
		return "<nil>"
	}
	return t.rt.String()
}

// Key returns a string that is unique per type, using full import paths
// where String would use the short package name.
func (t Tag) Key() string {
	if t.rt == nil {
		return ""
	}
	return typeKey(t.rt)
}

func typeKey(rt reflect.Type) string {
	if rt.Name() != "" && rt.PkgPath() != "" {
		return rt.PkgPath() + "." + rt.Name()
	}

	switch rt.Kind() {
	case reflect.Pointer:
		return "*" + typeKey(rt.Elem())
	case reflect.Slice:
		return "[]" + typeKey(rt.Elem())
	case reflect.Map:
		return "map[" + typeKey(rt.Key()) + "]" + typeKey(rt.Elem())
	default:
		return rt.String()
	}
}
