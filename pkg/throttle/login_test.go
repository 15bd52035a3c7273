package throttle_test

import (
	"testing"
	"time"

	"github.com/plshark/userauth/pkg/throttle"
	"github.com/stretchr/testify/require"
)

func TestLoginThrottle(t *testing.T) {
	t.Run("blocks only past the maximum", func(t *testing.T) {
		lt := throttle.NewLoginThrottle(5, time.Minute)

		for range 5 {
			lt.OnLoginFailed("alice", "10.0.0.1")
		}
		require.False(t, lt.IsUsernameBlocked("alice"), "5 failures with max 5 is still allowed")
		require.False(t, lt.IsIPBlocked("10.0.0.1"))

		lt.OnLoginFailed("alice", "10.0.0.1")
		require.True(t, lt.IsUsernameBlocked("alice"), "6th failure crosses the limit")
		require.True(t, lt.IsIPBlocked("10.0.0.1"))
	})

	t.Run("username and IP are tracked independently", func(t *testing.T) {
		lt := throttle.NewLoginThrottle(2, time.Minute)

		// Same username from many IPs.
		lt.OnLoginFailed("alice", "10.0.0.1")
		lt.OnLoginFailed("alice", "10.0.0.2")
		lt.OnLoginFailed("alice", "10.0.0.3")

		require.True(t, lt.IsUsernameBlocked("alice"))
		require.False(t, lt.IsIPBlocked("10.0.0.1"))
		require.False(t, lt.IsIPBlocked("10.0.0.3"))

		// Other usernames are unaffected.
		require.False(t, lt.IsUsernameBlocked("bob"))
	})

	t.Run("block clears when the window expires", func(t *testing.T) {
		lt := throttle.NewLoginThrottle(1, 50*time.Millisecond)

		lt.OnLoginFailed("alice", "10.0.0.1")
		lt.OnLoginFailed("alice", "10.0.0.1")
		require.True(t, lt.IsUsernameBlocked("alice"))

		time.Sleep(60 * time.Millisecond)
		require.False(t, lt.IsUsernameBlocked("alice"))
		require.False(t, lt.IsIPBlocked("10.0.0.1"))
	})

	t.Run("checking does not extend a block", func(t *testing.T) {
		lt := throttle.NewLoginThrottle(0, 50*time.Millisecond)

		lt.OnLoginFailed("alice", "10.0.0.1")
		require.True(t, lt.IsUsernameBlocked("alice"))

		// Repeated checks during the window must not refresh it.
		for range 5 {
			time.Sleep(15 * time.Millisecond)
			lt.IsUsernameBlocked("alice")
		}
		require.False(t, lt.IsUsernameBlocked("alice"))
	})
}
