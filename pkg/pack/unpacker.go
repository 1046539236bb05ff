package pack

import (
	"fmt"
)

// Unpacker holds the session state for one Unpack call: a working copy of
// the envelope's reference table, drained as entries resolve, and the
// object table accumulating finished instances by token. Presence in the
// object table is what makes a cycle resolve to the ancestor's in-progress
// instance instead of recursing forever. Like the Packer, an Unpacker is
// created per call and discarded on return.
type Unpacker struct {
	working map[string]*Entry
	objects map[string]any
}

// Unpack reconstructs the object graph stored in env.
func Unpack(env *Envelope) (any, error) {
	obj, _, err := UnpackMeta(env)
	return obj, err
}

// UnpackMeta reconstructs the object graph and returns the envelope meta
// alongside it.
func UnpackMeta(env *Envelope) (any, map[string]any, error) {
	if env == nil || env.Table == nil {
		return nil, nil, fmt.Errorf("%w: missing reference table", ErrMalformedData)
	}

	u := &Unpacker{
		working: make(map[string]*Entry, len(env.Table)),
		objects: make(map[string]any),
	}
	for tok, ent := range env.Table {
		if ent == nil {
			return nil, nil, fmt.Errorf("%w: nil entry for %q", ErrMalformedData, tok)
		}
		u.working[tok] = ent
	}

	obj, err := u.unpackValue(env.Head)
	if err != nil {
		return nil, nil, err
	}
	return obj, env.Meta, nil
}

// UnpackMember resolves a nested packed value on behalf of a type's Unpack
// handler.
func (u *Unpacker) UnpackMember(v any) (any, error) {
	return u.unpackValue(v)
}

// unpackValue resolves one packed value: non-tokens pass through as
// primitives, type references resolve through the registry, and object
// references resolve through the two-phase create-then-populate protocol.
func (u *Unpacker) unpackValue(v any) (any, error) {
	s, ok := v.(string)
	if !ok || !isToken(s) {
		return v, nil
	}

	if isTypeToken(s) {
		return ResolveName(typeTokenName(s))
	}

	if obj, done := u.objects[s]; done {
		return obj, nil
	}

	ent, ok := u.working[s]
	if !ok {
		return nil, fmt.Errorf("%w: unresolved reference %q", ErrMalformedData, s)
	}

	switch ent.Type {
	case nameStr, nameInt, nameFloat, nameBool, nameNone:
		// Boxed primitive: escaped text or a typed mapping key.
		delete(u.working, s)
		u.objects[s] = ent.Data
		return ent.Data, nil
	case nameTuple:
		return u.unpackTuple(s, ent)
	case nameList:
		return u.unpackList(s, ent)
	case nameDict:
		return u.unpackDict(s, ent)
	case nameSet:
		return u.unpackSet(s, ent)
	case nameBytes:
		return u.finish(s, func() (any, error) {
			text, ok := ent.Data.(string)
			if !ok {
				return nil, fmt.Errorf("%w: bytes entry %q", ErrMalformedData, s)
			}
			return textToBytes(text), nil
		})
	case nameComplex:
		return u.finish(s, func() (any, error) {
			text, ok := ent.Data.(string)
			if !ok {
				return nil, fmt.Errorf("%w: complex entry %q", ErrMalformedData, s)
			}
			c, err := textToComplex(text)
			if err != nil {
				return nil, fmt.Errorf("%w: complex entry %q: %v", ErrMalformedData, s, err)
			}
			return c, nil
		})
	case nameRange:
		return u.finish(s, func() (any, error) {
			fields, ok := ent.Data.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: range entry %q", ErrMalformedData, s)
			}
			r := Range{}
			var err error
			if r.Start, err = intField(fields, "start"); err != nil {
				return nil, fmt.Errorf("%w: range entry %q", ErrMalformedData, s)
			}
			if r.Stop, err = intField(fields, "stop"); err != nil {
				return nil, fmt.Errorf("%w: range entry %q", ErrMalformedData, s)
			}
			if r.Step, err = intField(fields, "step"); err != nil {
				return nil, fmt.Errorf("%w: range entry %q", ErrMalformedData, s)
			}
			return r, nil
		})
	}

	return u.unpackRegistered(s, ent)
}

// finish resolves an entry with no child references: build the value, then
// move the token from the working table to the object table.
func (u *Unpacker) finish(tok string, build func() (any, error)) (any, error) {
	obj, err := build()
	if err != nil {
		return nil, err
	}
	delete(u.working, tok)
	u.objects[tok] = obj
	return obj, nil
}

// unpackTuple builds an immutable composite eagerly and completely in one
// step; a tuple therefore cannot participate in a reference cycle back to
// itself.
func (u *Unpacker) unpackTuple(tok string, ent *Entry) (any, error) {
	items, ok := ent.Data.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: tuple entry %q", ErrMalformedData, tok)
	}
	delete(u.working, tok)

	t := make(Tuple, len(items))
	for i, x := range items {
		v, err := u.unpackValue(x)
		if err != nil {
			return nil, err
		}
		t[i] = v
	}
	u.objects[tok] = t
	return t, nil
}

// unpackList allocates the slice at its final length before resolving
// elements, so a self-reference aliases the same backing array.
func (u *Unpacker) unpackList(tok string, ent *Entry) (any, error) {
	items, ok := ent.Data.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: list entry %q", ErrMalformedData, tok)
	}
	delete(u.working, tok)

	s := make([]any, len(items))
	u.objects[tok] = s
	for i, x := range items {
		v, err := u.unpackValue(x)
		if err != nil {
			return nil, err
		}
		s[i] = v
	}
	return s, nil
}

// unpackDict creates the mapping first and populates it afterwards, so
// nested self-references resolve to the identity-stable instance. Keys may
// unbox to non-strings, so the native mapping built-in is map[any]any.
func (u *Unpacker) unpackDict(tok string, ent *Entry) (any, error) {
	data, ok := ent.Data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: dict entry %q", ErrMalformedData, tok)
	}
	delete(u.working, tok)

	m := make(map[any]any, len(data))
	u.objects[tok] = m
	for k, x := range data {
		key, err := u.unpackValue(k)
		if err != nil {
			return nil, err
		}
		val, err := u.unpackValue(x)
		if err != nil {
			return nil, err
		}
		m[key] = val
	}
	return m, nil
}

func (u *Unpacker) unpackSet(tok string, ent *Entry) (any, error) {
	items, ok := ent.Data.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: set entry %q", ErrMalformedData, tok)
	}
	delete(u.working, tok)

	set := make(Set, len(items))
	u.objects[tok] = set
	for _, x := range items {
		v, err := u.unpackValue(x)
		if err != nil {
			return nil, err
		}
		set[v] = struct{}{}
	}
	return set, nil
}

// unpackRegistered runs the two-phase protocol for a registered type:
// create a bare instance, publish it in the object table, then populate it
// in place so nested references back to this instance resolve correctly.
func (u *Unpacker) unpackRegistered(tok string, ent *Entry) (any, error) {
	e, ok := lookupByName(ent.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, ent.Type)
	}
	fields, ok := ent.Data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: entry %q for type %q", ErrMalformedData, tok, ent.Type)
	}

	obj, err := e.h.Create(fields)
	if err != nil {
		return nil, err
	}
	delete(u.working, tok)
	u.objects[tok] = obj

	if err := e.h.Unpack(u, obj, fields); err != nil {
		return nil, err
	}
	return obj, nil
}

// intField reads an integer out of packed fields, tolerating the numeric
// types JSON decoding produces.
func intField(fields map[string]any, key string) (int, error) {
	v, ok := fields[key]
	if !ok {
		return 0, fmt.Errorf("missing field %q", key)
	}
	return toInt(v)
}

// toInt coerces the numeric representations a packed value can carry.
func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	}
	return 0, fmt.Errorf("not an integer: %T", v)
}
