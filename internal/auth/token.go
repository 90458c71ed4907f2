package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// TokenSize is the number of random bytes in a session token (256 bits).
const TokenSize = 32

// TokenGenerator mints opaque bearer tokens.
type TokenGenerator func() (string, error)

// NewToken returns a cryptographically random, URL-safe session token.
func NewToken() (string, error) {
	b := make([]byte, TokenSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("auth: failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
