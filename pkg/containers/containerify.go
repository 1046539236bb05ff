package containers

import (
	"reflect"

	"github.com/mesh-intelligence/knapsack/pkg/pack"
)

// Containerify deep-converts plain Go collections into their transactional
// counterparts: maps become Dicts, slices become Lists, and pack.Set values
// become Sets. pack.Tuple values are left as tuples but converted element
// by element. Shared and cyclic references are preserved, so converting a
// self-referential structure terminates and keeps the aliasing.
func Containerify(value any) any {
	return containerify(value, map[seenKey]any{})
}

// seenKey identifies a visited collection. Slices sharing a backing array
// are distinct unless their lengths match too; maps use length -1.
type seenKey struct {
	ptr uintptr
	n   int
}

func containerify(value any, seen map[seenKey]any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case *Dict, *List, *Set, *Deque, *Stack, *Heap, *NDArray:
		return v
	case pack.Tuple:
		out := make(pack.Tuple, len(v))
		for i, item := range v {
			out[i] = containerify(item, seen)
		}
		return out
	case pack.Set:
		s := NewSet()
		for item := range v {
			s.Add(containerify(item, seen))
		}
		return s
	case map[string]any:
		return containerifyMap(reflect.ValueOf(v), seen)
	case map[any]any:
		return containerifyMap(reflect.ValueOf(v), seen)
	case []any:
		return containerifySlice(reflect.ValueOf(v), seen)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map:
		return containerifyMap(rv, seen)
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return value
		}
		return containerifySlice(rv, seen)
	}
	return value
}

func containerifyMap(rv reflect.Value, seen map[seenKey]any) any {
	if rv.IsNil() {
		return NewDict()
	}
	key := seenKey{ptr: rv.Pointer(), n: -1}
	if done, ok := seen[key]; ok {
		return done
	}
	d := NewDict()
	seen[key] = d
	iter := rv.MapRange()
	for iter.Next() {
		d.Set(iter.Key().Interface(), containerify(iter.Value().Interface(), seen))
	}
	return d
}

func containerifySlice(rv reflect.Value, seen map[seenKey]any) any {
	key := seenKey{ptr: rv.Pointer(), n: rv.Len()}
	if rv.Len() > 0 {
		if done, ok := seen[key]; ok {
			return done
		}
	}
	l := NewList()
	if rv.Len() > 0 {
		seen[key] = l
	}
	for i := 0; i < rv.Len(); i++ {
		l.Append(containerify(rv.Index(i).Interface(), seen))
	}
	return l
}
