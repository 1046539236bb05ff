package pack

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mesh-intelligence/knapsack/pkg/ident"
)

// metaTimestampFormat matches the timestamp layout written into envelope
// meta by PackMeta.
const metaTimestampFormat = "2006-01-02_150405"

// Packer holds the session state for one Pack call: the reference table
// under construction and the identity-to-token map that deduplicates shared
// objects and breaks cycles. A Packer is created per call and discarded on
// return, success or failure, so no session ever bleeds into the next
// (prd001-pack-core R3.4).
type Packer struct {
	table  map[string]*Entry
	seen   map[identKey]string
	nextID int
}

// identKey identifies a distinct in-memory object. Containers expose an
// identity token; plain pointers, maps, and slices fall back to their
// reflect pointer paired with the concrete type so equal addresses of
// different types never collide.
type identKey struct {
	tag uint64
	ptr uintptr
	rt  reflect.Type
}

// Pack serializes root into an Envelope with empty meta.
func Pack(root any) (*Envelope, error) {
	return PackMeta(root, nil, false)
}

// PackMeta serializes root and attaches free-form meta, optionally stamped
// with the pack time.
func PackMeta(root any, meta map[string]any, includeTimestamp bool) (*Envelope, error) {
	p := &Packer{
		table: make(map[string]*Entry),
		seen:  make(map[identKey]string),
	}

	head, err := p.packValue(root, false)
	if err != nil {
		return nil, err
	}

	m := make(map[string]any, len(meta)+1)
	for k, v := range meta {
		m[k] = v
	}
	if includeTimestamp {
		m["timestamp"] = time.Now().Format(metaTimestampFormat)
	}

	return &Envelope{Table: p.table, Meta: m, Head: head}, nil
}

// PackMember packs a nested value on behalf of a type's Pack handler.
func (p *Packer) PackMember(v any) (any, error) {
	return p.packValue(v, false)
}

// PackKey packs a value destined for a mapping key. The result always
// renders as a string on the wire: non-string keys are boxed through the
// reference table so their original type survives the round trip.
func (p *Packer) PackKey(v any) (any, error) {
	return p.packValue(v, true)
}

// next issues the next session-scoped reference id.
func (p *Packer) next() string {
	p.nextID++
	return objectToken(p.nextID)
}

// box inserts a single-value table entry and returns its token.
func (p *Packer) box(typeName string, data any) string {
	tok := p.next()
	p.table[tok] = &Entry{Type: typeName, Data: data}
	return tok
}

// tokenFor returns the reference token for obj, reporting whether the
// object was already assigned one in this session. Value-kind objects have
// no stable identity and always receive a fresh token.
func (p *Packer) tokenFor(obj any, rv reflect.Value) (string, bool) {
	key, stable := p.identityOf(obj, rv)
	if stable {
		if tok, ok := p.seen[key]; ok {
			return tok, true
		}
	}
	tok := p.next()
	if stable {
		p.seen[key] = tok
	}
	return tok, false
}

// identityOf computes the dedup key for obj and whether one exists.
func (p *Packer) identityOf(obj any, rv reflect.Value) (identKey, bool) {
	if id, ok := obj.(ident.Identifiable); ok {
		return identKey{tag: id.Identity()}, true
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return identKey{ptr: rv.Pointer(), rt: rv.Type()}, true
	case reflect.Slice:
		// Zero-length slices can share the runtime's zero-size
		// allocation, so their data pointer is not an identity.
		if rv.Len() == 0 {
			return identKey{}, false
		}
		return identKey{ptr: rv.Pointer(), rt: rv.Type()}, true
	}
	return identKey{}, false
}

// packValue converts one value to its packed form: primitives pass through
// unchanged, everything else becomes a reference token backed by a table
// entry. The entry is inserted before recursing into children, so a child
// referencing its own ancestor resolves to the in-progress token instead of
// looping (prd001-pack-core R4.4).
func (p *Packer) packValue(obj any, forceString bool) (any, error) {
	if obj == nil {
		if forceString {
			return p.box(nameNone, nil), nil
		}
		return nil, nil
	}

	switch v := obj.(type) {
	case string:
		if isToken(v) {
			// The escaping rule: literal text starting with the reference
			// prefix must be boxed or unpack would chase it as a token.
			return p.box(nameStr, v), nil
		}
		return v, nil
	case bool:
		if forceString {
			return p.box(nameBool, v), nil
		}
		return v, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		if forceString {
			return p.box(nameInt, v), nil
		}
		return v, nil
	case float32, float64:
		if forceString {
			return p.box(nameFloat, v), nil
		}
		return v, nil
	case reflect.Type:
		// A bare type packs as a type reference with no table entry.
		name, err := NameOf(v)
		if err != nil {
			return nil, err
		}
		return typeToken(name), nil
	case complex64:
		return p.box(nameComplex, complexToText(complex128(v))), nil
	case complex128:
		return p.box(nameComplex, complexToText(v)), nil
	case Range:
		return p.box(nameRange, map[string]any{
			"start": v.Start,
			"stop":  v.Stop,
			"step":  v.Step,
		}), nil
	case []byte:
		tok, existing := p.tokenFor(obj, reflect.ValueOf(obj))
		if existing {
			return tok, nil
		}
		p.table[tok] = &Entry{Type: nameBytes, Data: bytesToText(v)}
		return tok, nil
	case Tuple:
		return p.packTuple(v)
	case Set:
		return p.packSet(v)
	}

	rv := reflect.ValueOf(obj)

	if e, ok := lookupByType(rv.Type()); ok {
		return p.packRegistered(obj, rv, e)
	}

	switch rv.Kind() {
	case reflect.Map:
		return p.packMap(obj, rv)
	case reflect.Slice, reflect.Array:
		return p.packSlice(obj, rv)
	}

	return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, obj)
}

func (p *Packer) packRegistered(obj any, rv reflect.Value, e *handlerEntry) (any, error) {
	tok, existing := p.tokenFor(obj, rv)
	if existing {
		return tok, nil
	}
	ent := &Entry{Type: e.name}
	p.table[tok] = ent

	fields, err := e.h.Pack(p, obj)
	if err != nil {
		return nil, err
	}
	ent.Data = fields
	return tok, nil
}

func (p *Packer) packTuple(t Tuple) (any, error) {
	tok, existing := p.tokenFor(t, reflect.ValueOf(t))
	if existing {
		return tok, nil
	}
	ent := &Entry{Type: nameTuple}
	p.table[tok] = ent

	items := make([]any, len(t))
	for i, x := range t {
		packed, err := p.packValue(x, false)
		if err != nil {
			return nil, err
		}
		items[i] = packed
	}
	ent.Data = items
	return tok, nil
}

func (p *Packer) packSet(s Set) (any, error) {
	tok, existing := p.tokenFor(s, reflect.ValueOf(s))
	if existing {
		return tok, nil
	}
	ent := &Entry{Type: nameSet}
	p.table[tok] = ent

	items := make([]any, 0, len(s))
	for x := range s {
		packed, err := p.packValue(x, false)
		if err != nil {
			return nil, err
		}
		items = append(items, packed)
	}
	ent.Data = items
	return tok, nil
}

func (p *Packer) packMap(obj any, rv reflect.Value) (any, error) {
	tok, existing := p.tokenFor(obj, rv)
	if existing {
		return tok, nil
	}
	ent := &Entry{Type: nameDict}
	p.table[tok] = ent

	data := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k, err := p.packValue(iter.Key().Interface(), true)
		if err != nil {
			return nil, err
		}
		v, err := p.packValue(iter.Value().Interface(), false)
		if err != nil {
			return nil, err
		}
		data[k.(string)] = v
	}
	ent.Data = data
	return tok, nil
}

func (p *Packer) packSlice(obj any, rv reflect.Value) (any, error) {
	tok, existing := p.tokenFor(obj, rv)
	if existing {
		return tok, nil
	}
	ent := &Entry{Type: nameList}
	p.table[tok] = ent

	items := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		packed, err := p.packValue(rv.Index(i).Interface(), false)
		if err != nil {
			return nil, err
		}
		items[i] = packed
	}
	ent.Data = items
	return tok, nil
}
