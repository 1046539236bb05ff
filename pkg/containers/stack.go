package containers

import (
	"github.com/mesh-intelligence/knapsack/pkg/ident"
	"github.com/mesh-intelligence/knapsack/pkg/pack"
)

// Stack is a LIFO facade over the deque structure: the top of the stack is
// the left end.
// Implements: prd003-containers R5.
type Stack struct {
	Deque
}

// NewStack returns an empty Stack.
func NewStack(items ...any) *Stack {
	s := &Stack{}
	s.Tag = ident.New()
	s.data = append(make([]any, 0, len(items)), items...)
	return s
}

// Push places item on top of the stack.
func (s *Stack) Push(item any) {
	s.AppendLeft(item)
}

// PushAll pushes items so the first item of the argument ends up on top.
func (s *Stack) PushAll(items []any) {
	for i := len(items) - 1; i >= 0; i-- {
		s.Push(items[i])
	}
}

// Pop removes and returns the top element.
func (s *Stack) Pop() (any, bool) {
	return s.PopLeft()
}

// PopEnd removes and returns the bottom element.
func (s *Stack) PopEnd() (any, bool) {
	return s.Deque.Pop()
}

// Peek returns the element n positions below the top without removing it.
func (s *Stack) Peek(n int) (any, bool) {
	return s.Get(n)
}

// Copy returns a structural copy sharing element values.
func (s *Stack) Copy() *Stack {
	c := &Stack{}
	c.Tag = ident.New()
	c.data = append(make([]any, 0, len(s.data)), s.data...)
	if s.shadow != nil {
		c.shadow = append(make([]any, 0, len(s.shadow)), s.shadow...)
	}
	return c
}

func init() {
	pack.MustRegister((*Stack)(nil), pack.Handlers{
		Pack: func(p *pack.Packer, obj any) (map[string]any, error) {
			s := obj.(*Stack)
			s.ensure()
			return dequePack(p, s.data, s.shadow, s.InTransaction())
		},
		Create: func(fields map[string]any) (any, error) {
			return NewStack(), nil
		},
		Unpack: func(u *pack.Unpacker, obj any, fields map[string]any) error {
			s := obj.(*Stack)
			data, shadow, err := dequeUnpack(u, fields)
			if err != nil {
				return err
			}
			s.data = data
			s.shadow = shadow
			return nil
		},
	})
}
