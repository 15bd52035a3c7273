package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters.
const (
	hashMemory      = 19 * 1024 // KiB
	hashIterations  = 2
	hashParallelism = 1
	hashKeyLength   = 32
	hashSaltLength  = 16
)

var ErrPasswordMismatch = errors.New("cryptox: password does not match")

// Hasher hashes and verifies passwords using Argon2id in PHC string format.
// An optional pepper is appended to every password before hashing.
//
// Argon2id is deliberately expensive, so concurrent hashing is capped at the
// number of CPUs to keep a burst of logins from starving request handling.
type Hasher struct {
	pepper string
	slots  chan struct{}
}

// NewHasher returns a Hasher with the given pepper. An empty pepper is valid.
func NewHasher(pepper string) *Hasher {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		n = 1
	}
	return &Hasher{
		pepper: pepper,
		slots:  make(chan struct{}, n),
	}
}

// Hash generates a PHC-format Argon2id hash string including salt and parameters.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, hashSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	h.slots <- struct{}{}
	hash := argon2.IDKey(
		[]byte(password+h.pepper),
		salt,
		hashIterations,
		hashMemory,
		hashParallelism,
		hashKeyLength,
	)
	<-h.slots

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		hashMemory,
		hashIterations,
		hashParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// Verify compares a plaintext password against a PHC-style Argon2id hash.
// Returns ErrPasswordMismatch when the password does not match.
func (h *Hasher) Verify(password, encodedHash string) error {
	// PHC format: $argon2id$v=19$m=X,t=Y,p=Z$salt$hash
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return errors.New("cryptox: invalid hash format: expected 6 parts")
	}
	if parts[1] != "argon2id" {
		return errors.New("cryptox: invalid hash format: not argon2id")
	}
	if parts[2] != "v=19" {
		return errors.New("cryptox: invalid hash format: wrong version")
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return fmt.Errorf("cryptox: invalid hash format: parse parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("cryptox: invalid hash format: decode salt: %w", err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("cryptox: invalid hash format: decode hash: %w", err)
	}

	h.slots <- struct{}{}
	computed := argon2.IDKey(
		[]byte(password+h.pepper),
		salt,
		iters,
		mem,
		par,
		uint32(len(expected)), // #nosec G115 - hash lengths are tiny
	)
	<-h.slots

	if subtle.ConstantTimeCompare(computed, expected) == 1 {
		return nil
	}
	return ErrPasswordMismatch
}
