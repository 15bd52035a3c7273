// Package throttle provides in-memory, time-windowed counters and the login
// throttling and request rate limiting built on top of them. All state is
// process-local; with multiple replicas the thresholds apply per replica.
package throttle

import (
	"sync"
	"sync/atomic"
	"time"
)

// sweepInterval bounds how often an Increment call may scan for dead entries.
const sweepInterval = 5 * time.Minute

// CounterCache is a concurrent map of key -> counter where each entry expires
// a fixed window after its last write. An expired entry reads as 0 and resets
// on its next write, so memory stays bounded without a sweeper goroutine at
// the cost of approximating a true sliding window.
type CounterCache struct {
	window    time.Duration
	entries   sync.Map // string -> *counterEntry
	lastSweep atomic.Int64

	// now is swapped out in tests.
	now func() time.Time
}

type counterEntry struct {
	mu      sync.Mutex
	count   int64
	writeAt time.Time
}

// NewCounterCache returns a cache whose entries expire window after their
// last write.
func NewCounterCache(window time.Duration) *CounterCache {
	c := &CounterCache{window: window, now: time.Now}
	c.lastSweep.Store(c.now().UnixNano())
	return c
}

// Increment adds one to the counter for key and returns the new count.
// Increments for the same key are linearizable; contention is per key, there
// is no cache-wide lock.
func (c *CounterCache) Increment(key string) int64 {
	v, _ := c.entries.LoadOrStore(key, &counterEntry{})
	e := v.(*counterEntry)

	now := c.now()
	e.mu.Lock()
	if !e.writeAt.IsZero() && now.Sub(e.writeAt) >= c.window {
		e.count = 0
	}
	e.count++
	e.writeAt = now
	count := e.count
	e.mu.Unlock()

	c.maybeSweep(now)
	return count
}

// Peek returns the current count for key, or 0 when the key is absent or its
// window has elapsed. Reading never refreshes the expiry.
func (c *CounterCache) Peek(key string) int64 {
	v, ok := c.entries.Load(key)
	if !ok {
		return 0
	}
	e := v.(*counterEntry)

	now := c.now()
	e.mu.Lock()
	defer e.mu.Unlock()
	if now.Sub(e.writeAt) >= c.window {
		return 0
	}
	return e.count
}

// maybeSweep drops expired entries so keys seen once don't accumulate
// forever. At most one caller sweeps per interval.
func (c *CounterCache) maybeSweep(now time.Time) {
	last := c.lastSweep.Load()
	if now.UnixNano()-last < sweepInterval.Nanoseconds() {
		return
	}
	if !c.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}

	c.entries.Range(func(key, value any) bool {
		e := value.(*counterEntry)
		e.mu.Lock()
		expired := now.Sub(e.writeAt) >= c.window
		e.mu.Unlock()
		if expired {
			c.entries.Delete(key)
		}
		return true
	})
}
