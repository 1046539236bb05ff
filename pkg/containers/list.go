package containers

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/knapsack/pkg/ident"
	"github.com/mesh-intelligence/knapsack/pkg/pack"
	"github.com/mesh-intelligence/knapsack/pkg/tx"
)

// List is a transactional sequence.
// Implements: prd003-containers R2.
type List struct {
	ident.Tag
	data     []any
	shadow   []any
	printing bool
}

// NewList returns an empty List.
func NewList() *List {
	return &List{Tag: ident.New(), data: make([]any, 0)}
}

// ListOf builds a List from the given items.
func ListOf(items ...any) *List {
	l := NewList()
	l.Extend(items)
	return l
}

// The live slice is kept non-nil so that a nil shadow always means "no
// transaction open".
func (l *List) ensure() {
	if l.data == nil {
		l.data = make([]any, 0)
	}
}

// Append adds item at the end.
func (l *List) Append(item any) {
	l.ensure()
	l.data = append(l.data, item)
}

// Extend appends every item in items.
func (l *List) Extend(items []any) {
	l.ensure()
	l.data = append(l.data, items...)
}

// Insert places item at index i, shifting later elements right.
func (l *List) Insert(i int, item any) {
	l.ensure()
	if i < 0 {
		i = 0
	}
	if i >= len(l.data) {
		l.data = append(l.data, item)
		return
	}
	l.data = append(l.data[:i], append([]any{item}, l.data[i:]...)...)
}

// Get returns the element at index i.
func (l *List) Get(i int) (any, bool) {
	l.ensure()
	if i < 0 || i >= len(l.data) {
		return nil, false
	}
	return l.data[i], true
}

// Set replaces the element at index i.
func (l *List) Set(i int, item any) bool {
	l.ensure()
	if i < 0 || i >= len(l.data) {
		return false
	}
	l.data[i] = item
	return true
}

// Pop removes and returns the last element.
func (l *List) Pop() (any, bool) {
	l.ensure()
	if len(l.data) == 0 {
		return nil, false
	}
	item := l.data[len(l.data)-1]
	l.data = l.data[:len(l.data)-1]
	return item, true
}

// Remove deletes the first element equal to item, reporting success.
func (l *List) Remove(item any) bool {
	l.ensure()
	for i, x := range l.data {
		if x == item {
			l.data = append(l.data[:i], l.data[i+1:]...)
			return true
		}
	}
	return false
}

// Index returns the position of the first element equal to item, or -1.
func (l *List) Index(item any) int {
	l.ensure()
	for i, x := range l.data {
		if x == item {
			return i
		}
	}
	return -1
}

// Has reports whether item is present.
func (l *List) Has(item any) bool {
	return l.Index(item) >= 0
}

// Len returns the number of elements.
func (l *List) Len() int {
	return len(l.data)
}

// Items returns a copy of the elements in order.
func (l *List) Items() []any {
	l.ensure()
	return append([]any(nil), l.data...)
}

// Clear removes all elements.
func (l *List) Clear() {
	l.data = make([]any, 0)
}

// Reverse reverses the elements in place.
func (l *List) Reverse() {
	l.ensure()
	for i, j := 0, len(l.data)-1; i < j; i, j = i+1, j-1 {
		l.data[i], l.data[j] = l.data[j], l.data[i]
	}
}

// Copy returns a structural copy sharing element values.
func (l *List) Copy() *List {
	l.ensure()
	c := &List{Tag: ident.New(), data: append(make([]any, 0, len(l.data)), l.data...)}
	if l.shadow != nil {
		c.shadow = append(make([]any, 0, len(l.shadow)), l.shadow...)
	}
	return c
}

// InTransaction reports whether a transaction is open.
func (l *List) InTransaction() bool {
	return l.shadow != nil
}

// Begin opens a transaction; no-op when one is already open.
func (l *List) Begin() {
	if l.InTransaction() {
		return
	}
	l.ensure()
	l.shadow = l.data
	l.data = append(make([]any, 0, len(l.shadow)), l.shadow...)

	for _, child := range l.data {
		tx.Begin(child)
	}
}

// Commit closes the transaction, keeping the live state.
func (l *List) Commit() {
	if !l.InTransaction() {
		return
	}
	l.shadow = nil
	for _, child := range l.data {
		tx.Commit(child)
	}
}

// Abort closes the transaction, restoring the pre-transaction elements and
// aborting each of them in turn.
func (l *List) Abort() {
	if !l.InTransaction() {
		return
	}
	l.data = l.shadow
	l.shadow = nil
	for _, child := range l.data {
		tx.Abort(child)
	}
}

// String renders the list as t[...], short-circuiting self-references.
func (l *List) String() string {
	if l.printing {
		return "t[...]"
	}
	l.printing = true
	defer func() { l.printing = false }()

	l.ensure()
	parts := make([]string, len(l.data))
	for i, x := range l.data {
		parts[i] = fmt.Sprintf("%v", x)
	}
	return "t[" + strings.Join(parts, ", ") + "]"
}

// packSeq serializes a plain element sequence.
func packSeq(p *pack.Packer, items []any) ([]any, error) {
	out := make([]any, len(items))
	for i, x := range items {
		packed, err := p.PackMember(x)
		if err != nil {
			return nil, err
		}
		out[i] = packed
	}
	return out, nil
}

// unpackSeq rebuilds a plain element sequence.
func unpackSeq(u *pack.Unpacker, field any) ([]any, error) {
	items, ok := field.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: sequence field %v", pack.ErrMalformedData, field)
	}
	out := make([]any, len(items))
	for i, x := range items {
		v, err := u.UnpackMember(x)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func init() {
	pack.MustRegister((*List)(nil), pack.Handlers{
		Pack: func(p *pack.Packer, obj any) (map[string]any, error) {
			l := obj.(*List)
			l.ensure()
			fields := make(map[string]any)
			entries, err := packSeq(p, l.data)
			if err != nil {
				return nil, err
			}
			fields["_entries"] = entries
			if l.InTransaction() {
				shadow, err := packSeq(p, l.shadow)
				if err != nil {
					return nil, err
				}
				fields["_shadow"] = shadow
			}
			return fields, nil
		},
		Create: func(fields map[string]any) (any, error) {
			return NewList(), nil
		},
		Unpack: func(u *pack.Unpacker, obj any, fields map[string]any) error {
			l := obj.(*List)
			entries, err := unpackSeq(u, fields["_entries"])
			if err != nil {
				return err
			}
			l.data = entries
			if raw, ok := fields["_shadow"]; ok {
				shadow, err := unpackSeq(u, raw)
				if err != nil {
					return err
				}
				l.shadow = shadow
			}
			return nil
		},
	})
}
