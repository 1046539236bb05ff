// Package ident provides opaque identity tokens for mutable containers.
// Containers embed a Tag so the pack engine can key its reference table on
// in-memory identity rather than structural equality, and so two containers
// can be compared for sameness while remaining mutable.
// Implements: prd001-pack-core R6 (identity tokens).
package ident

import "sync/atomic"

// counter issues process-unique identity values. Zero is reserved so that
// an unset Tag is distinguishable from an assigned one.
var counter atomic.Uint64

// Identifiable is implemented by values that carry an identity token.
type Identifiable interface {
	// Identity returns the token assigned at construction. The token is
	// unique within the process and never reused.
	Identity() uint64
}

// Tag is an embeddable identity token. Construct with New; the zero Tag
// lazily assigns itself on first use so copied-in containers built without
// a constructor still get a stable identity.
type Tag struct {
	id uint64
}

// New returns a Tag with a fresh identity value.
func New() Tag {
	return Tag{id: counter.Add(1)}
}

// Identity returns the token value, assigning one on first call if the Tag
// was zero-constructed.
func (t *Tag) Identity() uint64 {
	if t.id == 0 {
		t.id = counter.Add(1)
	}
	return t.id
}

// Same reports whether a and b carry the same identity token.
func Same(a, b Identifiable) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Identity() == b.Identity()
}
