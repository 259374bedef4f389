package jwtx

import (
	"errors"
	"time"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// VerifyOptions captures common expectations used by verifiers.
type VerifyOptions struct {
	// Issuer the token must have (claims.iss). Empty means "don't care".
	Issuer string

	// Leeway allows small clock skew when validating exp/nbf.
	Leeway time.Duration

	// Now overrides the clock, used by tests.
	Now func() time.Time
}

var (
	// ErrExpired and ErrInvalidToken are the two outcomes callers act on:
	// an expired token gets a different response from a bad one.
	ErrExpired      = errors.New("jwtx: token expired")
	ErrInvalidToken = errors.New("jwtx: invalid token")

	// Finer causes, all of which also match ErrInvalidToken.
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrUnknownType = errors.New("jwtx: unknown token type")
	ErrWrongType   = errors.New("jwtx: wrong token type")
	ErrWeakKey     = errors.New("jwtx: signing key too short")
)
