// Package tx defines the transactional capability contract shared by all
// mutable containers. A transaction snapshots a container's structural
// state on Begin and either discards the snapshot (Commit) or restores it
// (Abort), propagating recursively through transactional children.
// Implements: prd002-transactions R1, R2, R3.
package tx

// Transactionable is the capability contract for transactional state.
//
// State machine per instance: Idle and InTransaction. Begin moves Idle to
// InTransaction by capturing a shallow copy of live state as the shadow;
// Commit discards the shadow; Abort restores live state from the shadow.
// All three are no-ops when called in the other state: Begin inside an open
// transaction does not commit or merge it, and Commit/Abort while idle
// return without effect.
//
// The shallow copy captures the container's own structural data (keys,
// slots, ordering) but never deep-copies element values. Elements that are
// themselves Transactionable roll back through the recursive Begin/Commit/
// Abort calls, so two containers sharing a mutable child both observe that
// child's rollback.
type Transactionable interface {
	Begin()
	InTransaction() bool
	Commit()
	Abort()
}

// Begin starts a transaction on v if it is Transactionable. Used by
// composite containers to propagate Begin to children of any type.
func Begin(v any) {
	if t, ok := v.(Transactionable); ok {
		t.Begin()
	}
}

// Commit commits a transaction on v if it is Transactionable.
func Commit(v any) {
	if t, ok := v.(Transactionable); ok {
		t.Commit()
	}
}

// Abort rolls back a transaction on v if it is Transactionable.
func Abort(v any) {
	if t, ok := v.(Transactionable); ok {
		t.Abort()
	}
}

// In reports whether v is Transactionable and currently inside an open
// transaction.
func In(v any) bool {
	if t, ok := v.(Transactionable); ok {
		return t.InTransaction()
	}
	return false
}
