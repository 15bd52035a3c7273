package throttle_test

import (
	"testing"
	"time"

	"github.com/plshark/userauth/pkg/throttle"
	"github.com/stretchr/testify/require"
)

func TestRequestLimiter(t *testing.T) {
	t.Run("admits up to the cap then rejects", func(t *testing.T) {
		limiter := throttle.NewRequestLimiter(3, time.Minute)

		require.True(t, limiter.Admit("10.0.0.1"))
		require.True(t, limiter.Admit("10.0.0.1"))
		require.True(t, limiter.Admit("10.0.0.1"))
		require.False(t, limiter.Admit("10.0.0.1"))
		require.False(t, limiter.Admit("10.0.0.1"))
	})

	t.Run("limits are per client IP", func(t *testing.T) {
		limiter := throttle.NewRequestLimiter(1, time.Minute)

		require.True(t, limiter.Admit("10.0.0.1"))
		require.False(t, limiter.Admit("10.0.0.1"))
		require.True(t, limiter.Admit("10.0.0.2"))
	})

	t.Run("window expiry admits again", func(t *testing.T) {
		limiter := throttle.NewRequestLimiter(1, 50*time.Millisecond)

		require.True(t, limiter.Admit("10.0.0.1"))
		require.False(t, limiter.Admit("10.0.0.1"))

		time.Sleep(60 * time.Millisecond)
		require.True(t, limiter.Admit("10.0.0.1"))
	})
}
