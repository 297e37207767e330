package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"moneta/internal/log"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache(size int, ttl time.Duration) (*LRUCache[string], *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](size, ttl)
	c.now = clock.Now
	return c, clock
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, 0)
	c.Set("a", "1")
	c.Set("b", "2")
	_, _ = c.Get("a")
	c.Set("c", "3")

	_, okA := c.Get("a")
	_, okB := c.Get("b")
	_, okC := c.Get("c")
	assert.True(t, okA)
	assert.False(t, okB, "b was least recently used")
	assert.True(t, okC)
	assert.Equal(t, 2, c.Size())
}

func TestLRUExpiry(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)
	c.Set("a", "1")

	clock.Advance(30 * time.Second)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	clock.Advance(31 * time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Zero(t, c.Size())
}

func TestLRUZeroTTLNeverExpires(t *testing.T) {
	c, clock := newTestCache(10, 0)
	c.Set("a", "1")
	clock.Advance(24 * time.Hour)
	_, ok := c.Get("a")
	assert.True(t, ok)
	assert.Zero(t, c.CleanExpired())
}

func TestLRUCleanExpired(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)
	c.Set("a", "1")
	clock.Advance(45 * time.Second)
	c.Set("b", "2")
	clock.Advance(30 * time.Second)

	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 1, c.Size())
	_, ok := c.Get("b")
	assert.True(t, ok)
}

func TestLRUGetOrComputeAndStats(t *testing.T) {
	c, _ := newTestCache(10, 0)
	calls := 0
	compute := func() string { calls++; return "v" }

	v, hit := c.GetOrCompute("k", compute)
	assert.Equal(t, "v", v)
	assert.False(t, hit)
	v, hit = c.GetOrCompute("k", compute)
	assert.Equal(t, "v", v)
	assert.True(t, hit)
	assert.Equal(t, 1, calls)

	assert.Equal(t, Stats{Hits: 1, Misses: 1, Size: 1}, c.Stats())
}

func TestLRUDeleteAndOverwrite(t *testing.T) {
	c, _ := newTestCache(10, 0)
	c.Set("a", "1")
	c.Set("a", "2")
	v, _ := c.Get("a")
	assert.Equal(t, "2", v)
	assert.Equal(t, 1, c.Size())

	c.Delete("a")
	c.Delete("missing")
	assert.Zero(t, c.Size())
}

func TestManagerCleansRegisteredCaches(t *testing.T) {
	c, clock := newTestCache(10, time.Second)
	c.Set("a", "1")
	clock.Advance(2 * time.Second)

	m := NewManager(log.Discard())
	m.Register(c)
	assert.Equal(t, 1, m.CleanNow())

	m.StartCleanup(time.Millisecond)
	m.StartCleanup(time.Millisecond)
	m.Stop()
	m.Stop()
}

func TestManagerStopWithoutStart(t *testing.T) {
	m := NewManager(log.Discard())
	m.Stop()
}

func TestLRUConcurrentAccess(t *testing.T) {
	c := NewLRUCache[int](16, time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := string(rune('a' + (i+j)%20))
				c.Set(key, j)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Size(), 16)
}
