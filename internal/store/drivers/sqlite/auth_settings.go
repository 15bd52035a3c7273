package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/plshark/userauth/internal/domain"
)

type authSettingsRepo struct {
	db dbtx
}

func (r *authSettingsRepo) GetForUser(ctx context.Context, username string) (domain.UserAuthSettings, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT refresh_token_enabled, access_token_ttl_ms, refresh_token_ttl_ms
		FROM user_auth_settings WHERE username = ?`, username)

	var (
		s          domain.UserAuthSettings
		accessTTL  sql.NullInt64
		refreshTTL sql.NullInt64
	)
	if err := row.Scan(&s.RefreshTokenEnabled, &accessTTL, &refreshTTL); err != nil {
		return domain.UserAuthSettings{}, mapNotFound(err)
	}

	s.AccessTokenTTL = mapNullMillis(accessTTL)
	s.RefreshTokenTTL = mapNullMillis(refreshTTL)
	return s, nil
}

func (r *authSettingsRepo) UpsertForUser(ctx context.Context, username string, s domain.UserAuthSettings) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_auth_settings
			(username, refresh_token_enabled, access_token_ttl_ms, refresh_token_ttl_ms, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (username) DO UPDATE SET
			refresh_token_enabled = excluded.refresh_token_enabled,
			access_token_ttl_ms = excluded.access_token_ttl_ms,
			refresh_token_ttl_ms = excluded.refresh_token_ttl_ms,
			updated_at = excluded.updated_at`,
		username, s.RefreshTokenEnabled,
		mapMillisNull(s.AccessTokenTTL), mapMillisNull(s.RefreshTokenTTL),
		now, now)
	return err
}

func mapNullMillis(n sql.NullInt64) *time.Duration {
	if !n.Valid {
		return nil
	}
	d := time.Duration(n.Int64) * time.Millisecond
	return &d
}

func mapMillisNull(d *time.Duration) sql.NullInt64 {
	if d == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: d.Milliseconds(), Valid: true}
}
