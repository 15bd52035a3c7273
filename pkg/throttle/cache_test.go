package throttle_test

import (
	"sync"
	"testing"
	"time"

	"github.com/plshark/userauth/pkg/throttle"
	"github.com/stretchr/testify/require"
)

func TestCounterCache(t *testing.T) {
	t.Run("increment returns running count per key", func(t *testing.T) {
		cache := throttle.NewCounterCache(time.Minute)

		require.EqualValues(t, 1, cache.Increment("alice"))
		require.EqualValues(t, 2, cache.Increment("alice"))
		require.EqualValues(t, 1, cache.Increment("bob"))
		require.EqualValues(t, 3, cache.Increment("alice"))
	})

	t.Run("peek returns zero for unknown key", func(t *testing.T) {
		cache := throttle.NewCounterCache(time.Minute)
		require.EqualValues(t, 0, cache.Peek("nobody"))
	})

	t.Run("peek does not count", func(t *testing.T) {
		cache := throttle.NewCounterCache(time.Minute)
		cache.Increment("alice")

		require.EqualValues(t, 1, cache.Peek("alice"))
		require.EqualValues(t, 1, cache.Peek("alice"))
		require.EqualValues(t, 2, cache.Increment("alice"))
	})

	t.Run("counter expires after window", func(t *testing.T) {
		cache := throttle.NewCounterCache(50 * time.Millisecond)

		cache.Increment("alice")
		cache.Increment("alice")
		require.EqualValues(t, 2, cache.Peek("alice"))

		time.Sleep(60 * time.Millisecond)
		require.EqualValues(t, 0, cache.Peek("alice"))

		// Next write starts a fresh count.
		require.EqualValues(t, 1, cache.Increment("alice"))
	})

	t.Run("writes extend the window", func(t *testing.T) {
		cache := throttle.NewCounterCache(80 * time.Millisecond)

		cache.Increment("alice")
		time.Sleep(50 * time.Millisecond)
		cache.Increment("alice")
		time.Sleep(50 * time.Millisecond)

		// 100ms after the first write but only 50ms after the last.
		require.EqualValues(t, 2, cache.Peek("alice"))
	})

	t.Run("concurrent increments on one key lose nothing", func(t *testing.T) {
		cache := throttle.NewCounterCache(time.Minute)

		const goroutines = 16
		const perGoroutine = 200

		var wg sync.WaitGroup
		for range goroutines {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range perGoroutine {
					cache.Increment("shared")
				}
			}()
		}
		wg.Wait()

		require.EqualValues(t, goroutines*perGoroutine, cache.Peek("shared"))
	})
}
