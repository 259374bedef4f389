package jwtx

import (
	"fmt"
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// HS256Signer implements the Signer interface using HMAC-SHA256 with a
// process-wide shared secret.
type HS256Signer struct {
	key []byte
}

func newHS256Signer(key []byte) (*HS256Signer, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	return &HS256Signer{key: slices.Clone(key)}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

func checkKey(key []byte) error {
	if len(key) < MinKeyLength {
		return fmt.Errorf("%w: got %d bytes, need at least %d", ErrWeakKey, len(key), MinKeyLength)
	}
	return nil
}
