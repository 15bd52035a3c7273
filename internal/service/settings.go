package service

import (
	"context"
	"errors"

	"github.com/plshark/userauth/internal/domain"
	"github.com/plshark/userauth/internal/store"
)

// UserAuthSettingsService reads and writes per-user token policy.
type UserAuthSettingsService struct {
	Settings store.AuthSettings
}

// GetForUser returns the user's token policy, falling back to the defaults
// when nothing is stored.
func (s *UserAuthSettingsService) GetForUser(ctx context.Context, username string) (domain.UserAuthSettings, error) {
	settings, err := s.Settings.GetForUser(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return domain.DefaultUserAuthSettings(), nil
	}
	if err != nil {
		return domain.UserAuthSettings{}, err
	}
	return settings, nil
}

// UpdateForUser replaces the user's token policy.
func (s *UserAuthSettingsService) UpdateForUser(ctx context.Context, username string, settings domain.UserAuthSettings) error {
	return s.Settings.UpsertForUser(ctx, username, settings)
}
