package pack

import (
	"reflect"
	"strconv"
	"strings"
)

// Built-in wire type names. The set is fixed; ResolveName falls back to
// this closed table for names that were never registered, never to code
// evaluation (prd001-pack-core R5.3).
const (
	nameStr     = "str"
	nameInt     = "int"
	nameFloat   = "float"
	nameBool    = "bool"
	nameNone    = "NoneType"
	nameTuple   = "tuple"
	nameRange   = "range"
	nameBytes   = "bytes"
	nameComplex = "complex"
	nameDict    = "dict"
	nameList    = "list"
	nameSet     = "set"
)

// Tuple is the immutable-sequence built-in. Tuples are packed as a single
// table entry and rebuilt eagerly in one step on unpack, so a tuple cannot
// close a reference cycle onto itself.
type Tuple []any

// Set is the unordered-collection built-in. Elements must be comparable.
type Set map[any]struct{}

// NewSet returns a Set containing the given items.
func NewSet(items ...any) Set {
	s := make(Set, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

// Has reports whether item is in the set.
func (s Set) Has(item any) bool {
	_, ok := s[item]
	return ok
}

// Add inserts item into the set.
func (s Set) Add(item any) {
	s[item] = struct{}{}
}

// Range is the integer-interval built-in, mirroring the range wire type.
type Range struct {
	Start int
	Stop  int
	Step  int
}

// builtinTypes is the closed fallback table used by ResolveName for type
// reference tokens naming built-ins.
var builtinTypes = map[string]reflect.Type{
	nameStr:     reflect.TypeOf(""),
	nameInt:     reflect.TypeOf(int64(0)),
	nameFloat:   reflect.TypeOf(float64(0)),
	nameBool:    reflect.TypeOf(false),
	nameTuple:   reflect.TypeOf(Tuple(nil)),
	nameRange:   reflect.TypeOf(Range{}),
	nameBytes:   reflect.TypeOf([]byte(nil)),
	nameComplex: reflect.TypeOf(complex128(0)),
	nameDict:    reflect.TypeOf(map[any]any(nil)),
	nameList:    reflect.TypeOf([]any(nil)),
	nameSet:     reflect.TypeOf(Set(nil)),
}

// builtinNameOf returns the wire name for a built-in type, or "" when rt is
// not a built-in.
func builtinNameOf(rt reflect.Type) string {
	if rt == nil {
		return nameNone
	}
	switch rt {
	case builtinTypes[nameTuple]:
		return nameTuple
	case builtinTypes[nameSet]:
		return nameSet
	case builtinTypes[nameRange]:
		return nameRange
	case builtinTypes[nameBytes]:
		return nameBytes
	}
	switch rt.Kind() {
	case reflect.String:
		return nameStr
	case reflect.Bool:
		return nameBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return nameInt
	case reflect.Float32, reflect.Float64:
		return nameFloat
	case reflect.Complex64, reflect.Complex128:
		return nameComplex
	case reflect.Map:
		return nameDict
	case reflect.Slice, reflect.Array:
		return nameList
	}
	return ""
}

// bytesToText encodes a byte string as JSON-safe text using one code point
// per byte, the documented lossless byte<->text convention.
func bytesToText(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}

// textToBytes inverts bytesToText.
func textToBytes(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		out = append(out, byte(r))
	}
	return out
}

// complexToText renders a complex value in the form ParseComplex accepts.
func complexToText(c complex128) string {
	return strconv.FormatComplex(c, 'g', -1, 128)
}

// textToComplex parses a complex wire value.
func textToComplex(s string) (complex128, error) {
	return strconv.ParseComplex(s, 128)
}
