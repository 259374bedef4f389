package jwtx

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Default token lifetimes, overridable through IssuerConfig.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// TokenType tells access tokens apart from refresh tokens. It travels in the
// "type" claim and selects which session id a token is checked against.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Valid reports whether t is one of the known token types.
func (t TokenType) Valid() bool {
	return t == TokenTypeAccess || t == TokenTypeRefresh
}

// Claims are the claims carried by every token we mint. The subject is the
// username and the id (jti) is the revocation lookup key.
type Claims struct {
	jwt.RegisteredClaims

	// Type is "access" or "refresh".
	Type TokenType `json:"type"`

	// Roles is a snapshot taken at issuance; later role changes do not
	// affect tokens already handed out.
	Roles []string `json:"roles,omitempty"`
}

// NewClaims builds claims of the given type with a fresh jti.
func NewClaims(typ TokenType, subject, issuer string, roles []string, ttl time.Duration, now time.Time) Claims {
	now = now.UTC()
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Type:  typ,
		Roles: slices.Clone(roles),
	}
}

// NewJTI returns a random UUIDv4 for the "jti" claim.
func NewJTI() string {
	return uuid.NewString()
}

// ExpiresAtTime returns the exp claim, or the zero time if unset.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.UTC()
}

// HasRole reports whether role is in the roles snapshot.
func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateType ensures the token is of the wanted type.
func (c *Claims) ValidateType(want TokenType) error {
	if !c.Type.Valid() {
		return ErrUnknownType
	}
	if c.Type != want {
		return ErrWrongType
	}
	return nil
}
