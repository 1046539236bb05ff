package containers

import (
	"container/heap"

	"github.com/mesh-intelligence/knapsack/pkg/ident"
	"github.com/mesh-intelligence/knapsack/pkg/pack"
	"github.com/mesh-intelligence/knapsack/pkg/tx"
)

// heapCore adapts the element slice and ordering function to
// container/heap.
type heapCore struct {
	items []any
	less  func(a, b any) bool
}

func (h *heapCore) Len() int           { return len(h.items) }
func (h *heapCore) Less(i, j int) bool { return h.less(h.items[i], h.items[j]) }
func (h *heapCore) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *heapCore) Push(x any) {
	h.items = append(h.items, x)
}

func (h *heapCore) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}

// defaultLess orders numbers before strings, numbers numerically, and
// strings lexicographically. Other element types need NewHeapFunc.
func defaultLess(a, b any) bool {
	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)
	if aNum && bNum {
		return af < bf
	}
	if aNum != bNum {
		return aNum
	}
	as, aStr := a.(string)
	bs, bStr := b.(string)
	if aStr && bStr {
		return as < bs
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

// Heap is a transactional priority queue. Unordered for adding and
// removing; Drain yields elements in priority order.
//
// A custom ordering function supplied through NewHeapFunc is not
// serialized: a heap built that way unpacks with the default ordering.
// Implements: prd003-containers R6.
type Heap struct {
	ident.Tag
	core   heapCore
	shadow []any
}

// NewHeap returns an empty Heap with the default number/string ordering.
func NewHeap(items ...any) *Heap {
	h := &Heap{Tag: ident.New(), core: heapCore{items: append(make([]any, 0, len(items)), items...), less: defaultLess}}
	heap.Init(&h.core)
	return h
}

// NewHeapFunc returns an empty Heap ordered by less.
func NewHeapFunc(less func(a, b any) bool) *Heap {
	return &Heap{Tag: ident.New(), core: heapCore{items: make([]any, 0), less: less}}
}

func (h *Heap) ensure() {
	if h.core.items == nil {
		h.core.items = make([]any, 0)
	}
	if h.core.less == nil {
		h.core.less = defaultLess
	}
}

// Push adds items to the heap.
func (h *Heap) Push(items ...any) {
	h.ensure()
	for _, it := range items {
		heap.Push(&h.core, it)
	}
}

// Pop removes and returns the smallest element.
func (h *Heap) Pop() (any, bool) {
	h.ensure()
	if len(h.core.items) == 0 {
		return nil, false
	}
	return heap.Pop(&h.core), true
}

// PopN removes and returns up to n smallest elements in order.
func (h *Heap) PopN(n int) []any {
	out := make([]any, 0, n)
	for i := 0; i < n; i++ {
		item, ok := h.Pop()
		if !ok {
			break
		}
		out = append(out, item)
	}
	return out
}

// Replace pops the smallest element and pushes item in one operation.
// Reports false and leaves the heap unchanged when it is empty.
func (h *Heap) Replace(item any) (any, bool) {
	h.ensure()
	if len(h.core.items) == 0 {
		return nil, false
	}
	old := h.core.items[0]
	h.core.items[0] = item
	heap.Fix(&h.core, 0)
	return old, true
}

// PushPop pushes item, then pops the smallest element.
func (h *Heap) PushPop(item any) any {
	h.ensure()
	if len(h.core.items) > 0 && h.core.less(h.core.items[0], item) {
		item, h.core.items[0] = h.core.items[0], item
		heap.Fix(&h.core, 0)
	}
	return item
}

// Len returns the number of elements.
func (h *Heap) Len() int {
	return len(h.core.items)
}

// Drain pops every element from a copy of the heap, returning them in
// priority order. The heap itself is left unchanged.
func (h *Heap) Drain() []any {
	c := h.Copy()
	out := make([]any, 0, c.Len())
	for {
		item, ok := c.Pop()
		if !ok {
			return out
		}
		out = append(out, item)
	}
}

// Copy returns a structural copy sharing element values.
func (h *Heap) Copy() *Heap {
	h.ensure()
	c := &Heap{Tag: ident.New(), core: heapCore{
		items: append(make([]any, 0, len(h.core.items)), h.core.items...),
		less:  h.core.less,
	}}
	if h.shadow != nil {
		c.shadow = append(make([]any, 0, len(h.shadow)), h.shadow...)
	}
	return c
}

// InTransaction reports whether a transaction is open.
func (h *Heap) InTransaction() bool {
	return h.shadow != nil
}

// Begin opens a transaction; no-op when one is already open.
func (h *Heap) Begin() {
	if h.InTransaction() {
		return
	}
	h.ensure()
	h.shadow = h.core.items
	h.core.items = append(make([]any, 0, len(h.shadow)), h.shadow...)

	for _, child := range h.core.items {
		tx.Begin(child)
	}
}

// Commit closes the transaction, keeping the live state.
func (h *Heap) Commit() {
	if !h.InTransaction() {
		return
	}
	h.shadow = nil
	for _, child := range h.core.items {
		tx.Commit(child)
	}
}

// Abort closes the transaction, restoring the shadow and aborting the
// restored elements.
func (h *Heap) Abort() {
	if !h.InTransaction() {
		return
	}
	h.core.items = h.shadow
	h.shadow = nil
	for _, child := range h.core.items {
		tx.Abort(child)
	}
}

func init() {
	pack.MustRegister((*Heap)(nil), pack.Handlers{
		Pack: func(p *pack.Packer, obj any) (map[string]any, error) {
			h := obj.(*Heap)
			h.ensure()
			return dequePack(p, h.core.items, h.shadow, h.InTransaction())
		},
		Create: func(fields map[string]any) (any, error) {
			return NewHeap(), nil
		},
		Unpack: func(u *pack.Unpacker, obj any, fields map[string]any) error {
			h := obj.(*Heap)
			data, shadow, err := dequeUnpack(u, fields)
			if err != nil {
				return err
			}
			h.core.items = data
			h.shadow = shadow
			heap.Init(&h.core)
			return nil
		},
	})
}
