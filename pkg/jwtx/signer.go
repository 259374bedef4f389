package jwtx

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// MinKeyLength is the shortest HMAC key we accept, matching the SHA-256
// output size.
const MinKeyLength = 32

// NewSignerHS256 creates an HS256 signer from a shared secret.
func NewSignerHS256(key []byte) (Signer, error) {
	return newHS256Signer(key)
}
