package cryptox_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/plshark/userauth/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestHasher(t *testing.T) {
	hasher := cryptox.NewHasher("test-pepper")

	t.Run("hash verifies against the original password", func(t *testing.T) {
		hash, err := hasher.Hash("correct horse battery staple")
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(hash, "$argon2id$"), "hash should be PHC-encoded")

		require.NoError(t, hasher.Verify("correct horse battery staple", hash))
	})

	t.Run("wrong password fails", func(t *testing.T) {
		hash, err := hasher.Hash("password1")
		require.NoError(t, err)

		err = hasher.Verify("password2", hash)
		require.ErrorIs(t, err, cryptox.ErrPasswordMismatch)
	})

	t.Run("same password hashes differently each time", func(t *testing.T) {
		a, err := hasher.Hash("password1")
		require.NoError(t, err)
		b, err := hasher.Hash("password1")
		require.NoError(t, err)
		require.NotEqual(t, a, b, "salts must differ")
	})

	t.Run("different pepper fails verification", func(t *testing.T) {
		hash, err := hasher.Hash("password1")
		require.NoError(t, err)

		other := cryptox.NewHasher("other-pepper")
		require.Error(t, other.Verify("password1", hash))
	})

	t.Run("malformed hash fails", func(t *testing.T) {
		require.Error(t, hasher.Verify("password1", "not-a-hash"))
		require.Error(t, hasher.Verify("password1", ""))
	})
}

func TestLoadOrGeneratePepper(t *testing.T) {
	t.Run("generates once and reloads the same value", func(t *testing.T) {
		pepperFile := filepath.Join(t.TempDir(), "pepper")

		first, err := cryptox.LoadOrGeneratePepper(pepperFile)
		require.NoError(t, err)
		require.NotEmpty(t, first)

		second, err := cryptox.LoadOrGeneratePepper(pepperFile)
		require.NoError(t, err)
		require.Equal(t, first, second)
	})

	t.Run("reads an existing pepper file", func(t *testing.T) {
		pepperFile := filepath.Join(t.TempDir(), "pepper")
		require.NoError(t, os.WriteFile(pepperFile, []byte("pre-seeded"), 0o600))

		pepper, err := cryptox.LoadOrGeneratePepper(pepperFile)
		require.NoError(t, err)
		require.Equal(t, "pre-seeded", pepper)
	})
}
