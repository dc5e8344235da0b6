package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateOpaqueToken returns a url-safe random string with byteLength
// bytes of entropy. Session and refresh secrets use 32 bytes (256 bits).
func GenerateOpaqueToken(byteLength int) (string, error) {
	if byteLength <= 0 {
		byteLength = 32
	}
	b := make([]byte, byteLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token entropy: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
