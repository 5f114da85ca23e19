package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryGetPut(t *testing.T) {
	c := NewMemory(10)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Put("a", "one")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "one", v)

	// Last writer wins.
	c.Put("a", "two")
	v, _ = c.Get("a")
	assert.Equal(t, "two", v)
}

func TestMemoryBounded(t *testing.T) {
	c := NewMemory(3)
	for i := 0; i < 10; i++ {
		c.Put(fmt.Sprintf("k%d", i), i)
	}
	assert.LessOrEqual(t, c.Len(), 3)
}

func TestMemoryConcurrent(t *testing.T) {
	c := NewMemory(100)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("k%d", j%50)
				c.Put(key, n)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()
}

func TestNoopAlwaysMisses(t *testing.T) {
	var c Cache = Noop{}
	c.Put("a", "one")
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestFromProvider(t *testing.T) {
	assert.IsType(t, Noop{}, FromProvider(nil, "x"))

	p := NewMemoryProvider(10)
	c1 := FromProvider(p, "docs")
	c2 := FromProvider(p, "docs")
	c1.Put("a", 1)
	v, ok := c2.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}
