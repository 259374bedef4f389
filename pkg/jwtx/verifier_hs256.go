package jwtx

import (
	"errors"
	"fmt"
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// HS256Verifier validates JWTs signed with HS256 by the matching signer.
type HS256Verifier struct {
	key  []byte
	opts VerifyOptions
}

// NewVerifierHS256 creates a verifier for the shared secret key.
func NewVerifierHS256(key []byte, opts VerifyOptions) (*HS256Verifier, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	return &HS256Verifier{key: slices.Clone(key), opts: opts}, nil
}

// Verify validates the signature, expiry and issuer of tokenStr and returns
// its claims. Expired tokens fail with ErrExpired, everything else with
// ErrInvalidToken.
func (v *HS256Verifier) Verify(tokenStr string) (Claims, error) {
	popts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(v.opts.Leeway),
	}
	if v.opts.Issuer != "" {
		popts = append(popts, jwt.WithIssuer(v.opts.Issuer))
	}
	if v.opts.Now != nil {
		popts = append(popts, jwt.WithTimeFunc(v.opts.Now))
	}

	var claims Claims
	_, err := jwt.NewParser(popts...).ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, ErrIssuer)
	default:
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !claims.Type.Valid() {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, ErrUnknownType)
	}
	if claims.ID == "" || claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing jti or sub", ErrInvalidToken)
	}

	return claims, nil
}
