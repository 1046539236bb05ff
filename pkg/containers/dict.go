package containers

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/knapsack/pkg/ident"
	"github.com/mesh-intelligence/knapsack/pkg/pack"
	"github.com/mesh-intelligence/knapsack/pkg/tx"
)

// orderedMap is the structural state of a Dict: insertion order plus the
// key-to-value index. Keys must be comparable.
type orderedMap struct {
	order []any
	items map[any]any
}

func newOrderedMap() *orderedMap {
	return &orderedMap{items: make(map[any]any)}
}

// copyShallow duplicates the structure without copying element values.
func (m *orderedMap) copyShallow() *orderedMap {
	c := &orderedMap{
		order: append([]any(nil), m.order...),
		items: make(map[any]any, len(m.items)),
	}
	for k, v := range m.items {
		c.items[k] = v
	}
	return c
}

func (m *orderedMap) set(key, value any) {
	if _, ok := m.items[key]; !ok {
		m.order = append(m.order, key)
	}
	m.items[key] = value
}

func (m *orderedMap) delete(key any) bool {
	if _, ok := m.items[key]; !ok {
		return false
	}
	delete(m.items, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// Dict is an insertion-ordered mapping with transactional state. Keys may
// be any comparable value; non-string keys round-trip through packing with
// their type intact.
// Implements: prd003-containers R1.
type Dict struct {
	ident.Tag
	data     *orderedMap
	shadow   *orderedMap
	printing bool
}

// NewDict returns an empty Dict.
func NewDict() *Dict {
	return &Dict{Tag: ident.New(), data: newOrderedMap()}
}

// DictOf builds a Dict from alternating key, value arguments.
func DictOf(pairs ...any) *Dict {
	d := NewDict()
	for i := 0; i+1 < len(pairs); i += 2 {
		d.Set(pairs[i], pairs[i+1])
	}
	return d
}

func (d *Dict) ensure() {
	if d.data == nil {
		d.data = newOrderedMap()
	}
}

// Set inserts or replaces the value for key, appending new keys to the
// iteration order.
func (d *Dict) Set(key, value any) {
	d.ensure()
	d.data.set(key, value)
}

// Get returns the value for key and whether it was present.
func (d *Dict) Get(key any) (any, bool) {
	d.ensure()
	v, ok := d.data.items[key]
	return v, ok
}

// GetDefault returns the value for key, or fallback when absent.
func (d *Dict) GetDefault(key, fallback any) any {
	if v, ok := d.Get(key); ok {
		return v
	}
	return fallback
}

// Delete removes key, reporting whether it was present.
func (d *Dict) Delete(key any) bool {
	d.ensure()
	return d.data.delete(key)
}

// Has reports whether key is present.
func (d *Dict) Has(key any) bool {
	_, ok := d.Get(key)
	return ok
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	d.ensure()
	return len(d.data.order)
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []any {
	d.ensure()
	return append([]any(nil), d.data.order...)
}

// Values returns the values in insertion order.
func (d *Dict) Values() []any {
	d.ensure()
	out := make([]any, 0, len(d.data.order))
	for _, k := range d.data.order {
		out = append(out, d.data.items[k])
	}
	return out
}

// Items returns key/value pairs in insertion order.
func (d *Dict) Items() [][2]any {
	d.ensure()
	out := make([][2]any, 0, len(d.data.order))
	for _, k := range d.data.order {
		out = append(out, [2]any{k, d.data.items[k]})
	}
	return out
}

// Clear removes all entries.
func (d *Dict) Clear() {
	d.data = newOrderedMap()
}

// Copy returns a structural copy sharing element values, including the
// shadow when a transaction is open.
func (d *Dict) Copy() *Dict {
	d.ensure()
	c := &Dict{Tag: ident.New(), data: d.data.copyShallow()}
	if d.shadow != nil {
		c.shadow = d.shadow.copyShallow()
	}
	return c
}

// InTransaction reports whether a transaction is open.
func (d *Dict) InTransaction() bool {
	return d.shadow != nil
}

// Begin opens a transaction: the current structure becomes the shadow, a
// shallow copy becomes the live state, and the transaction propagates to
// transactional values. No-op when already in a transaction.
func (d *Dict) Begin() {
	if d.InTransaction() {
		return
	}
	d.ensure()
	d.shadow = d.data
	d.data = d.data.copyShallow()

	for _, k := range d.data.order {
		tx.Begin(d.data.items[k])
	}
}

// Commit closes the transaction, keeping the live state. No-op when idle.
func (d *Dict) Commit() {
	if !d.InTransaction() {
		return
	}
	d.shadow = nil
	for _, k := range d.data.order {
		tx.Commit(d.data.items[k])
	}
}

// Abort closes the transaction, restoring the shadow. Children of the
// restored state are aborted afterwards, so their own shadows unwind to
// the same rollback point.
func (d *Dict) Abort() {
	if !d.InTransaction() {
		return
	}
	d.data = d.shadow
	d.shadow = nil
	for _, k := range d.data.order {
		tx.Abort(d.data.items[k])
	}
}

// String renders the dict as t{k: v, ...}. Self-referential structures
// short-circuit to t{...} instead of recursing.
func (d *Dict) String() string {
	if d.printing {
		return "t{...}"
	}
	d.printing = true
	defer func() { d.printing = false }()

	d.ensure()
	var sb strings.Builder
	sb.WriteString("t{")
	for i, k := range d.data.order {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%v: %v", k, d.data.items[k])
	}
	sb.WriteString("}")
	return sb.String()
}

// packPairs serializes one ordered structure into _pairs/_order style
// fields under the given key names.
func packPairs(p *pack.Packer, m *orderedMap, fields map[string]any, pairsKey, orderKey string) error {
	pairs := make(map[string]any, len(m.order))
	order := make([]any, 0, len(m.order))
	for _, k := range m.order {
		pk, err := p.PackKey(k)
		if err != nil {
			return err
		}
		pv, err := p.PackMember(m.items[k])
		if err != nil {
			return err
		}
		ks := pk.(string)
		pairs[ks] = pv
		order = append(order, ks)
	}
	fields[pairsKey] = pairs
	fields[orderKey] = order
	return nil
}

// unpackPairs rebuilds an ordered structure from _pairs/_order fields.
func unpackPairs(u *pack.Unpacker, fields map[string]any, pairsKey, orderKey string) (*orderedMap, error) {
	order, ok := fields[orderKey].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: dict fields missing %q", pack.ErrMalformedData, orderKey)
	}
	pairs, ok := fields[pairsKey].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: dict fields missing %q", pack.ErrMalformedData, pairsKey)
	}

	m := newOrderedMap()
	for _, pk := range order {
		ks, ok := pk.(string)
		if !ok {
			return nil, fmt.Errorf("%w: dict key order entry %v", pack.ErrMalformedData, pk)
		}
		key, err := u.UnpackMember(ks)
		if err != nil {
			return nil, err
		}
		val, err := u.UnpackMember(pairs[ks])
		if err != nil {
			return nil, err
		}
		m.set(key, val)
	}
	return m, nil
}

func init() {
	pack.MustRegister((*Dict)(nil), pack.Handlers{
		Pack: func(p *pack.Packer, obj any) (map[string]any, error) {
			d := obj.(*Dict)
			d.ensure()
			fields := make(map[string]any)
			if err := packPairs(p, d.data, fields, "_pairs", "_order"); err != nil {
				return nil, err
			}
			if d.InTransaction() {
				if err := packPairs(p, d.shadow, fields, "_shadow_pairs", "_shadow_order"); err != nil {
					return nil, err
				}
			}
			return fields, nil
		},
		Create: func(fields map[string]any) (any, error) {
			return NewDict(), nil
		},
		Unpack: func(u *pack.Unpacker, obj any, fields map[string]any) error {
			d := obj.(*Dict)
			data, err := unpackPairs(u, fields, "_pairs", "_order")
			if err != nil {
				return err
			}
			d.data = data
			if _, ok := fields["_shadow_pairs"]; ok {
				shadow, err := unpackPairs(u, fields, "_shadow_pairs", "_shadow_order")
				if err != nil {
					return err
				}
				d.shadow = shadow
			}
			return nil
		},
	})
}
