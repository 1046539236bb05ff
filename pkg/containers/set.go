package containers

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/knapsack/pkg/ident"
	"github.com/mesh-intelligence/knapsack/pkg/pack"
	"github.com/mesh-intelligence/knapsack/pkg/tx"
)

// orderedSet keeps members in insertion order for deterministic iteration
// and packing.
type orderedSet struct {
	order   []any
	members map[any]struct{}
}

func newOrderedSet() *orderedSet {
	return &orderedSet{members: make(map[any]struct{})}
}

func (s *orderedSet) copyShallow() *orderedSet {
	c := &orderedSet{
		order:   append([]any(nil), s.order...),
		members: make(map[any]struct{}, len(s.members)),
	}
	for k := range s.members {
		c.members[k] = struct{}{}
	}
	return c
}

func (s *orderedSet) add(item any) {
	if _, ok := s.members[item]; ok {
		return
	}
	s.members[item] = struct{}{}
	s.order = append(s.order, item)
}

func (s *orderedSet) remove(item any) bool {
	if _, ok := s.members[item]; !ok {
		return false
	}
	delete(s.members, item)
	for i, x := range s.order {
		if x == item {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Set is a transactional insertion-ordered set. Members must be
// comparable; containers qualify because they are pointers.
// Implements: prd003-containers R3.
type Set struct {
	ident.Tag
	data   *orderedSet
	shadow *orderedSet
}

// NewSet returns an empty Set.
func NewSet(items ...any) *Set {
	s := &Set{Tag: ident.New(), data: newOrderedSet()}
	for _, it := range items {
		s.data.add(it)
	}
	return s
}

func (s *Set) ensure() {
	if s.data == nil {
		s.data = newOrderedSet()
	}
}

// Add inserts item; duplicates are ignored.
func (s *Set) Add(item any) {
	s.ensure()
	s.data.add(item)
}

// Update inserts every item in items.
func (s *Set) Update(items []any) {
	for _, it := range items {
		s.Add(it)
	}
}

// Remove deletes item, reporting whether it was a member.
func (s *Set) Remove(item any) bool {
	s.ensure()
	return s.data.remove(item)
}

// Discard deletes item if present; absent members are not an error.
func (s *Set) Discard(item any) {
	s.Remove(item)
}

// Has reports membership.
func (s *Set) Has(item any) bool {
	s.ensure()
	_, ok := s.data.members[item]
	return ok
}

// Len returns the number of members.
func (s *Set) Len() int {
	s.ensure()
	return len(s.data.order)
}

// Pop removes and returns the most recently inserted member.
func (s *Set) Pop() (any, bool) {
	s.ensure()
	if len(s.data.order) == 0 {
		return nil, false
	}
	item := s.data.order[len(s.data.order)-1]
	s.data.remove(item)
	return item, true
}

// Items returns the members in insertion order.
func (s *Set) Items() []any {
	s.ensure()
	return append([]any(nil), s.data.order...)
}

// Clear removes all members.
func (s *Set) Clear() {
	s.data = newOrderedSet()
}

// Copy returns a structural copy sharing member values.
func (s *Set) Copy() *Set {
	s.ensure()
	c := &Set{Tag: ident.New(), data: s.data.copyShallow()}
	if s.shadow != nil {
		c.shadow = s.shadow.copyShallow()
	}
	return c
}

// Union returns a new Set with the members of both sets.
func (s *Set) Union(other *Set) *Set {
	out := s.Copy()
	out.Update(other.Items())
	return out
}

// Intersect returns a new Set with the members present in both sets.
func (s *Set) Intersect(other *Set) *Set {
	out := NewSet()
	for _, x := range s.Items() {
		if other.Has(x) {
			out.Add(x)
		}
	}
	return out
}

// Difference returns a new Set with the members of s absent from other.
func (s *Set) Difference(other *Set) *Set {
	out := NewSet()
	for _, x := range s.Items() {
		if !other.Has(x) {
			out.Add(x)
		}
	}
	return out
}

// IsSubset reports whether every member of s is in other.
func (s *Set) IsSubset(other *Set) bool {
	for _, x := range s.Items() {
		if !other.Has(x) {
			return false
		}
	}
	return true
}

// InTransaction reports whether a transaction is open.
func (s *Set) InTransaction() bool {
	return s.shadow != nil
}

// Begin opens a transaction; no-op when one is already open.
func (s *Set) Begin() {
	if s.InTransaction() {
		return
	}
	s.ensure()
	s.shadow = s.data
	s.data = s.data.copyShallow()

	for _, child := range s.data.order {
		tx.Begin(child)
	}
}

// Commit closes the transaction, keeping the live state.
func (s *Set) Commit() {
	if !s.InTransaction() {
		return
	}
	s.shadow = nil
	for _, child := range s.data.order {
		tx.Commit(child)
	}
}

// Abort closes the transaction, restoring the shadow and aborting the
// restored members.
func (s *Set) Abort() {
	if !s.InTransaction() {
		return
	}
	s.data = s.shadow
	s.shadow = nil
	for _, child := range s.data.order {
		tx.Abort(child)
	}
}

// String renders the set as t{...}.
func (s *Set) String() string {
	s.ensure()
	parts := make([]string, len(s.data.order))
	for i, x := range s.data.order {
		parts[i] = fmt.Sprintf("%v", x)
	}
	return "t{" + strings.Join(parts, ", ") + "}"
}

func init() {
	pack.MustRegister((*Set)(nil), pack.Handlers{
		Pack: func(p *pack.Packer, obj any) (map[string]any, error) {
			s := obj.(*Set)
			s.ensure()
			fields := make(map[string]any)
			elements, err := packSeq(p, s.data.order)
			if err != nil {
				return nil, err
			}
			fields["_elements"] = elements
			if s.InTransaction() {
				shadow, err := packSeq(p, s.shadow.order)
				if err != nil {
					return nil, err
				}
				fields["_shadow"] = shadow
			}
			return fields, nil
		},
		Create: func(fields map[string]any) (any, error) {
			return NewSet(), nil
		},
		Unpack: func(u *pack.Unpacker, obj any, fields map[string]any) error {
			s := obj.(*Set)
			elements, err := unpackSeq(u, fields["_elements"])
			if err != nil {
				return err
			}
			s.data = newOrderedSet()
			for _, x := range elements {
				s.data.add(x)
			}
			if raw, ok := fields["_shadow"]; ok {
				shadow, err := unpackSeq(u, raw)
				if err != nil {
					return err
				}
				s.shadow = newOrderedSet()
				for _, x := range shadow {
					s.shadow.add(x)
				}
			}
			return nil
		},
	})
}
