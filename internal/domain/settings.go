package domain

import "time"

// UserAuthSettings controls per-user token policy. Nil durations mean the
// service-wide default applies.
type UserAuthSettings struct {
	RefreshTokenEnabled bool
	AccessTokenTTL      *time.Duration
	RefreshTokenTTL     *time.Duration
}

// DefaultUserAuthSettings applies to users with no stored settings row:
// refreshing enabled, service-wide TTLs.
func DefaultUserAuthSettings() UserAuthSettings {
	return UserAuthSettings{RefreshTokenEnabled: true}
}
