package service

import (
	"context"
	"log/slog"

	"github.com/plshark/userauth/internal/domain"
	"github.com/plshark/userauth/internal/store"
	"github.com/plshark/userauth/pkg/cryptox"
	"github.com/plshark/userauth/pkg/idx"
	"github.com/plshark/userauth/pkg/slogx"
)

// AuthorityUsersAdmin grants access to the user management endpoints.
const AuthorityUsersAdmin = "users-admin"

// BootstrapService seeds an empty directory with one admin user so the
// management API is reachable on first boot.
type BootstrapService struct {
	Store  store.Store
	Hasher *cryptox.Hasher
}

// EnsureAdminUser creates the admin account when the directory is empty.
// Re-running it against a populated directory is a no-op, so restarts are
// safe.
func (s *BootstrapService) EnsureAdminUser(ctx context.Context, username, password string) error {
	l := slogx.FromContext(ctx)

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		empty, err := tx.Users().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			return nil
		}

		user := domain.User{
			ID:           idx.New(),
			Username:     username,
			PasswordHash: hash,
			Authorities:  []string{AuthorityUsersAdmin},
		}
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}

		l.Info("created bootstrap admin user", slog.String("username", username))
		return nil
	})
}
