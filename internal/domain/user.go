// Package domain holds the core types shared by the store, services and HTTP
// layer.
package domain

import (
	"time"

	"github.com/plshark/userauth/pkg/idx"
)

// User is a stored account. PasswordHash is the PHC-encoded argon2id hash and
// never leaves the service.
type User struct {
	ID           idx.ID
	Username     string
	PasswordHash string
	Authorities  []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccountCredentials is a login request. Instances are verified and dropped;
// they are never persisted and never logged.
type AccountCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// PasswordChange carries the current and replacement passwords for a password
// update. The current password is re-verified before anything changes.
type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AuthenticatedUser is a verified identity, as returned by token validation.
type AuthenticatedUser struct {
	Username    string   `json:"username"`
	Authorities []string `json:"authorities"`
}
