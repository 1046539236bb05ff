package containers

import (
	"github.com/mesh-intelligence/knapsack/pkg/ident"
	"github.com/mesh-intelligence/knapsack/pkg/pack"
	"github.com/mesh-intelligence/knapsack/pkg/tx"
)

// Deque is a transactional double-ended queue.
// Implements: prd003-containers R4.
type Deque struct {
	ident.Tag
	data   []any
	shadow []any
}

// NewDeque returns an empty Deque.
func NewDeque(items ...any) *Deque {
	d := &Deque{Tag: ident.New(), data: make([]any, 0, len(items))}
	d.data = append(d.data, items...)
	return d
}

func (d *Deque) ensure() {
	if d.data == nil {
		d.data = make([]any, 0)
	}
}

// Append adds item at the right end.
func (d *Deque) Append(item any) {
	d.ensure()
	d.data = append(d.data, item)
}

// AppendLeft adds item at the left end.
func (d *Deque) AppendLeft(item any) {
	d.ensure()
	d.data = append([]any{item}, d.data...)
}

// Extend appends items at the right end in order.
func (d *Deque) Extend(items []any) {
	d.ensure()
	d.data = append(d.data, items...)
}

// ExtendLeft prepends items one by one, so they end up reversed at the
// left end, matching deque extendleft semantics.
func (d *Deque) ExtendLeft(items []any) {
	for _, it := range items {
		d.AppendLeft(it)
	}
}

// Pop removes and returns the rightmost element.
func (d *Deque) Pop() (any, bool) {
	d.ensure()
	if len(d.data) == 0 {
		return nil, false
	}
	item := d.data[len(d.data)-1]
	d.data = d.data[:len(d.data)-1]
	return item, true
}

// PopLeft removes and returns the leftmost element.
func (d *Deque) PopLeft() (any, bool) {
	d.ensure()
	if len(d.data) == 0 {
		return nil, false
	}
	item := d.data[0]
	d.data = append(d.data[:0:0], d.data[1:]...)
	return item, true
}

// Get returns the element at index i from the left.
func (d *Deque) Get(i int) (any, bool) {
	d.ensure()
	if i < 0 || i >= len(d.data) {
		return nil, false
	}
	return d.data[i], true
}

// Set replaces the element at position i. Reports false when i is out of
// range.
func (d *Deque) Set(i int, item any) bool {
	d.ensure()
	if i < 0 || i >= len(d.data) {
		return false
	}
	d.data[i] = item
	return true
}

// Len returns the number of elements.
func (d *Deque) Len() int {
	return len(d.data)
}

// Items returns a copy of the elements left to right.
func (d *Deque) Items() []any {
	d.ensure()
	return append([]any(nil), d.data...)
}

// Clear removes all elements.
func (d *Deque) Clear() {
	d.data = make([]any, 0)
}

// Rotate moves n elements from the right end to the left end (negative n
// rotates the other way).
func (d *Deque) Rotate(n int) {
	d.ensure()
	size := len(d.data)
	if size == 0 {
		return
	}
	n %= size
	if n < 0 {
		n += size
	}
	if n == 0 {
		return
	}
	d.data = append(append([]any(nil), d.data[size-n:]...), d.data[:size-n]...)
}

// Copy returns a structural copy sharing element values.
func (d *Deque) Copy() *Deque {
	d.ensure()
	c := &Deque{Tag: ident.New(), data: append(make([]any, 0, len(d.data)), d.data...)}
	if d.shadow != nil {
		c.shadow = append(make([]any, 0, len(d.shadow)), d.shadow...)
	}
	return c
}

// InTransaction reports whether a transaction is open.
func (d *Deque) InTransaction() bool {
	return d.shadow != nil
}

// Begin opens a transaction; no-op when one is already open.
func (d *Deque) Begin() {
	if d.InTransaction() {
		return
	}
	d.ensure()
	d.shadow = d.data
	d.data = append(make([]any, 0, len(d.shadow)), d.shadow...)

	for _, child := range d.data {
		tx.Begin(child)
	}
}

// Commit closes the transaction, keeping the live state.
func (d *Deque) Commit() {
	if !d.InTransaction() {
		return
	}
	d.shadow = nil
	for _, child := range d.data {
		tx.Commit(child)
	}
}

// Abort closes the transaction, restoring the shadow and aborting the
// restored elements.
func (d *Deque) Abort() {
	if !d.InTransaction() {
		return
	}
	d.data = d.shadow
	d.shadow = nil
	for _, child := range d.data {
		tx.Abort(child)
	}
}

// dequePack and dequeUnpack are shared with Stack, which carries the same
// structural state.
func dequePack(p *pack.Packer, data, shadow []any, inTx bool) (map[string]any, error) {
	fields := make(map[string]any)
	entries, err := packSeq(p, data)
	if err != nil {
		return nil, err
	}
	fields["_entries"] = entries
	if inTx {
		sh, err := packSeq(p, shadow)
		if err != nil {
			return nil, err
		}
		fields["_shadow"] = sh
	}
	return fields, nil
}

func dequeUnpack(u *pack.Unpacker, fields map[string]any) (data, shadow []any, err error) {
	data, err = unpackSeq(u, fields["_entries"])
	if err != nil {
		return nil, nil, err
	}
	if raw, ok := fields["_shadow"]; ok {
		shadow, err = unpackSeq(u, raw)
		if err != nil {
			return nil, nil, err
		}
	}
	return data, shadow, nil
}

func init() {
	pack.MustRegister((*Deque)(nil), pack.Handlers{
		Pack: func(p *pack.Packer, obj any) (map[string]any, error) {
			d := obj.(*Deque)
			d.ensure()
			return dequePack(p, d.data, d.shadow, d.InTransaction())
		},
		Create: func(fields map[string]any) (any, error) {
			return NewDeque(), nil
		},
		Unpack: func(u *pack.Unpacker, obj any, fields map[string]any) error {
			d := obj.(*Deque)
			data, shadow, err := dequeUnpack(u, fields)
			if err != nil {
				return err
			}
			d.data = data
			d.shadow = shadow
			return nil
		},
	})
}
