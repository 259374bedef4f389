package jwtx

import (
	"errors"
	"fmt"
	"time"
)

// IssuerConfig wires an Issuer.
type IssuerConfig struct {
	Signer   Signer
	Verifier Verifier

	// Issuer is written to the iss claim.
	Issuer string

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now overrides the clock, used by tests.
	Now func() time.Time
}

// SignedToken is a signed token string together with the claims it carries.
// Callers need the claims to record the token id and expiry.
type SignedToken struct {
	Token  string
	Claims Claims
}

// ID returns the token's jti.
func (t SignedToken) ID() string { return t.Claims.ID }

// ExpiresAt returns the token's exp claim.
func (t SignedToken) ExpiresAt() time.Time { return t.Claims.ExpiresAtTime() }

// TokenPair is what a successful login hands back.
type TokenPair struct {
	Access  SignedToken
	Refresh SignedToken
}

// Issuer mints and parses access and refresh tokens.
type Issuer struct {
	signer   Signer
	verifier Verifier
	issuer   string

	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewIssuer validates cfg and applies default TTLs.
func NewIssuer(cfg IssuerConfig) (*Issuer, error) {
	if cfg.Signer == nil || cfg.Verifier == nil {
		return nil, errors.New("jwtx: issuer needs a signer and a verifier")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTokenTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTokenTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Issuer{
		signer:     cfg.Signer,
		verifier:   cfg.Verifier,
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        cfg.Now,
	}, nil
}

// AccessTTL returns the configured access token lifetime.
func (i *Issuer) AccessTTL() time.Duration { return i.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

// IssuePair mints an access and a refresh token for username, each with its
// own jti.
func (i *Issuer) IssuePair(username string, roles []string) (TokenPair, error) {
	now := i.now()

	access, err := i.issue(NewClaims(TokenTypeAccess, username, i.issuer, roles, i.accessTTL, now))
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := i.issue(NewClaims(TokenTypeRefresh, username, i.issuer, roles, i.refreshTTL, now))
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{Access: access, Refresh: refresh}, nil
}

// IssueAccess mints only an access token, used when rotating.
func (i *Issuer) IssueAccess(username string, roles []string) (SignedToken, error) {
	return i.issue(NewClaims(TokenTypeAccess, username, i.issuer, roles, i.accessTTL, i.now()))
}

// Parse verifies token and returns its claims. See Verifier for the errors.
func (i *Issuer) Parse(token string) (Claims, error) {
	return i.verifier.Verify(token)
}

func (i *Issuer) issue(claims Claims) (SignedToken, error) {
	signed, err := i.signer.Sign(claims)
	if err != nil {
		return SignedToken{}, fmt.Errorf("jwtx: issue %s token: %w", claims.Type, err)
	}
	return SignedToken{Token: signed, Claims: claims}, nil
}
