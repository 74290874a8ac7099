package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRUEvictsOldest(t *testing.T) {
	c := New[string, int](2)
	c.Add("a", 1)
	c.Add("b", 2)
	_, _ = c.Get("a") // a becomes MRU
	c.Add("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "b should be evicted")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Len())
}

func TestGetOrAddComputesOnce(t *testing.T) {
	c := New[string, string](4)
	calls := 0
	fn := func() string { calls++; return "v" }

	assert.Equal(t, "v", c.GetOrAdd("k", fn))
	assert.Equal(t, "v", c.GetOrAdd("k", fn))
	assert.Equal(t, 1, calls)
}

func TestNewPanicsOnZeroCapacity(t *testing.T) {
	assert.Panics(t, func() { New[int, int](0) })
}
