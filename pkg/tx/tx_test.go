package tx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// counter records lifecycle calls for verifying helper dispatch.
type counter struct {
	begins  int
	commits int
	aborts  int
	open    bool
}

func (c *counter) Begin() {
	if c.open {
		return
	}
	c.open = true
	c.begins++
}

func (c *counter) InTransaction() bool { return c.open }

func (c *counter) Commit() {
	if !c.open {
		return
	}
	c.open = false
	c.commits++
}

func (c *counter) Abort() {
	if !c.open {
		return
	}
	c.open = false
	c.aborts++
}

func TestHelpersDispatch(t *testing.T) {
	c := &counter{}

	Begin(c)
	assert.True(t, In(c))
	assert.Equal(t, 1, c.begins)

	Commit(c)
	assert.False(t, In(c))
	assert.Equal(t, 1, c.commits)

	Begin(c)
	Abort(c)
	assert.Equal(t, 1, c.aborts)
}

func TestHelpersIgnoreNonTransactionable(t *testing.T) {
	// plain values silently pass through
	Begin("string")
	Commit(42)
	Abort(nil)
	assert.False(t, In("string"))
	assert.False(t, In(nil))
}

func TestBeginIsIdempotentWhileOpen(t *testing.T) {
	c := &counter{}
	Begin(c)
	Begin(c)
	assert.Equal(t, 1, c.begins)

	Commit(c)
	Commit(c)
	assert.Equal(t, 1, c.commits)
}
