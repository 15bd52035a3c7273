// Package store defines the data access interfaces implemented by concrete
// drivers.
package store

import (
	"context"
	"errors"

	"github.com/plshark/userauth/internal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite) implement
// this. Sub-repositories are exposed as methods so transactional and
// non-transactional access share the same repo code.
type Store interface {
	Users() Users
	AuthSettings() AuthSettings

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back when fn returns
	// an error and committing otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByUsername is used during login and user lookups.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// ListUsernames returns every username, ordered.
	ListUsernames(ctx context.Context) ([]string, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the username is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, username, newHash string) error

	// DeleteUser cascades to user_auth_settings (per schema).
	DeleteUser(ctx context.Context, username string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type AuthSettings interface {
	// GetForUser returns the token policy for a user. ErrNotFound means no
	// row is stored and the defaults apply.
	GetForUser(ctx context.Context, username string) (domain.UserAuthSettings, error)

	// UpsertForUser replaces the token policy for a user.
	UpsertForUser(ctx context.Context, username string, s domain.UserAuthSettings) error
}
