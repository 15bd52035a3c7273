package service

import (
	"context"
	"errors"

	"github.com/plshark/userauth/internal/domain"
	"github.com/plshark/userauth/internal/store"
	"github.com/plshark/userauth/pkg/cryptox"
	"github.com/plshark/userauth/pkg/idx"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUserExists    = errors.New("username already taken")
	ErrWrongPassword = errors.New("current password does not match")
)

// UserService manages accounts. Password hashes stay inside the service; the
// HTTP layer only ever sees usernames and authorities.
type UserService struct {
	Store  store.Store
	Hasher *cryptox.Hasher
}

// CreateUser hashes the password and inserts the account.
func (s *UserService) CreateUser(ctx context.Context, username, password string, authorities []string) (domain.User, error) {
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New(),
		Username:     username,
		PasswordHash: hash,
		Authorities:  authorities,
	}
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUserExists
		}
		return domain.User{}, err
	}
	return user, nil
}

// GetUser fetches an account by username.
func (s *UserService) GetUser(ctx context.Context, username string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return user, err
}

// ListUsernames returns every username, ordered.
func (s *UserService) ListUsernames(ctx context.Context) ([]string, error) {
	return s.Store.Users().ListUsernames(ctx)
}

// DeleteUser removes an account and its settings.
func (s *UserService) DeleteUser(ctx context.Context, username string) error {
	err := s.Store.Users().DeleteUser(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

// ChangePassword re-verifies the current password before storing the new
// hash. Lookup and update run in one transaction so a concurrent change
// cannot slip between them.
func (s *UserService) ChangePassword(ctx context.Context, username string, change domain.PasswordChange) error {
	newHash, err := s.Hasher.Hash(change.NewPassword)
	if err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetUserByUsername(ctx, username)
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		if err := s.Hasher.Verify(change.CurrentPassword, user.PasswordHash); err != nil {
			return ErrWrongPassword
		}

		return tx.Users().UpdatePasswordHash(ctx, username, newHash)
	})
}
