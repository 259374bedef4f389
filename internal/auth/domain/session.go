package domain

import "time"

// Session is one login. The refresh token id is fixed for the life of the
// session; the access token id changes on every refresh. A revoked session
// is kept as a tombstone and never matches a lookup again.
type Session struct {
	ID               string
	Username         string
	Roles            []string // snapshot at login, reused on refresh
	AccessTokenID    string
	RefreshTokenID   string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	Revoked          bool
	RevokedAt        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// RefreshExpired reports whether the refresh token has passed its expiry.
func (s Session) RefreshExpired(now time.Time) bool {
	return now.After(s.RefreshExpiresAt)
}
