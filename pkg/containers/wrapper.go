package containers

import (
	"github.com/mesh-intelligence/knapsack/pkg/ident"
	"github.com/mesh-intelligence/knapsack/pkg/tx"
)

// Wrapper makes an arbitrary value transactional by snapshotting it with a
// caller-supplied copy function. It is an in-memory adapter only and is not
// registered with the pack engine; serialize the wrapped value directly.
// Implements: prd003-containers R8.
type Wrapper struct {
	ident.Tag
	value  any
	shadow any
	inTx   bool
	copier func(any) any

	// transactionable members of value that must follow its lifecycle
	children []any
}

// Wrap returns a Wrapper around value. copier produces the snapshot taken
// on Begin; nil means the value itself is kept, which only makes sense for
// values replaced wholesale through SetValue rather than mutated in place.
func Wrap(value any, copier func(any) any) *Wrapper {
	return &Wrapper{Tag: ident.New(), value: value, copier: copier}
}

// Value returns the current wrapped value.
func (w *Wrapper) Value() any {
	return w.value
}

// SetValue replaces the wrapped value.
func (w *Wrapper) SetValue(value any) {
	w.value = value
}

// Track adds a transactional member of the wrapped value so that Begin,
// Commit, and Abort propagate to it.
func (w *Wrapper) Track(children ...any) {
	w.children = append(w.children, children...)
}

// InTransaction reports whether a transaction is open.
func (w *Wrapper) InTransaction() bool {
	return w.inTx
}

// Begin opens a transaction; no-op when one is already open.
func (w *Wrapper) Begin() {
	if w.inTx {
		return
	}
	if w.copier != nil {
		w.shadow = w.copier(w.value)
	} else {
		w.shadow = w.value
	}
	w.inTx = true
	for _, child := range w.children {
		tx.Begin(child)
	}
}

// Commit closes the transaction, keeping the live value.
func (w *Wrapper) Commit() {
	if !w.inTx {
		return
	}
	w.shadow = nil
	w.inTx = false
	for _, child := range w.children {
		tx.Commit(child)
	}
}

// Abort closes the transaction, restoring the snapshot.
func (w *Wrapper) Abort() {
	if !w.inTx {
		return
	}
	w.value = w.shadow
	w.shadow = nil
	w.inTx = false
	for _, child := range w.children {
		tx.Abort(child)
	}
}
