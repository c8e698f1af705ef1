package versatiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type weighted10 struct{ id int }

func (w weighted10) SizeBytes() int { return 10 }

func TestLimitedCacheGetMiss(t *testing.T) {
	c := NewLimitedCache[string, weighted10](100)
	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestLimitedCacheAddAndGet(t *testing.T) {
	c := NewLimitedCache[string, weighted10](100)
	c.Add("a", weighted10{id: 1})
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v.id)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 10, c.TotalBytes())
}

func TestLimitedCacheEvictsLeastRecentlyTouched(t *testing.T) {
	c := NewLimitedCache[string, weighted10](20)
	c.Add("a", weighted10{id: 1})
	c.Add("b", weighted10{id: 2})
	// both fit exactly at capacity 20
	assert.Equal(t, 2, c.Len())

	c.Add("c", weighted10{id: 3}) // forces eviction of "a", the least recently touched
	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestLimitedCacheTouchOnGetProtectsFromEviction(t *testing.T) {
	c := NewLimitedCache[string, weighted10](20)
	c.Add("a", weighted10{id: 1})
	c.Add("b", weighted10{id: 2})
	c.Get("a") // touch a, making b the least recently used

	c.Add("c", weighted10{id: 3})
	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
}

func TestLimitedCacheReplaceUpdatesWeight(t *testing.T) {
	c := NewLimitedCache[string, weighted10](100)
	c.Add("a", weighted10{id: 1})
	c.Add("a", weighted10{id: 2})
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 10, c.TotalBytes())
	v, _ := c.Get("a")
	assert.Equal(t, 2, v.id)
}

func TestLimitedCacheNeverExceedsCapacityInvariant(t *testing.T) {
	c := NewLimitedCache[int, weighted10](35)
	for i := 0; i < 10; i++ {
		c.Add(i, weighted10{id: i})
		assert.LessOrEqual(t, c.TotalBytes(), 35)
	}
}
