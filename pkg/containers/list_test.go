package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListBasics(t *testing.T) {
	l := ListOf("a", "b", "c")

	assert.Equal(t, 3, l.Len())
	v, ok := l.Get(1)
	require.True(t, ok)
	assert.Equal(t, "b", v)

	_, ok = l.Get(-1)
	assert.False(t, ok)
	_, ok = l.Get(3)
	assert.False(t, ok)

	l.Insert(1, "x")
	assert.Equal(t, []any{"a", "x", "b", "c"}, l.Items())

	popped, ok := l.Pop()
	require.True(t, ok)
	assert.Equal(t, "c", popped)

	assert.True(t, l.Remove("x"))
	assert.False(t, l.Remove("x"))
	assert.Equal(t, 1, l.Index("b"))
	assert.Equal(t, -1, l.Index("gone"))

	l.Reverse()
	assert.Equal(t, []any{"b", "a"}, l.Items())
}

func TestListTransaction(t *testing.T) {
	l := ListOf(1, 2)

	l.Begin()
	l.Append(3)
	l.Set(0, 100)
	l.Commit()
	assert.Equal(t, []any{100, 2, 3}, l.Items())

	l.Begin()
	l.Clear()
	require.Equal(t, 0, l.Len())
	l.Abort()
	assert.Equal(t, []any{100, 2, 3}, l.Items())
}

func TestListNestedTransaction(t *testing.T) {
	child := ListOf("c1")
	parent := ListOf(child)

	parent.Begin()
	child.Append("c2")
	parent.Abort()

	// the child visible after abort is the restored one, rolled back too
	restored, ok := parent.Get(0)
	require.True(t, ok)
	assert.Same(t, child, restored)
	assert.Equal(t, []any{"c1"}, child.Items())
}

func TestListCopyIsIndependent(t *testing.T) {
	l := ListOf(1, 2)
	c := l.Copy()
	c.Append(3)

	assert.Equal(t, 2, l.Len())
	assert.Equal(t, 3, c.Len())
	assert.NotEqual(t, l.Identity(), c.Identity())
}
