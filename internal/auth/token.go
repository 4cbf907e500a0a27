package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// tokenLength is the byte length of the random session token
// (32 bytes = 64 hex chars).
const tokenLength = 32

// newToken creates a cryptographically random opaque bearer token.
func newToken() (string, error) {
	b := make([]byte, tokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
