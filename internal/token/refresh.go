package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

const (
	refreshValueBytes = 32
	familyPrefix      = "JTI"
)

// NewRefreshValue returns an opaque refresh token with 256 bits of entropy.
func NewRefreshValue() (string, error) {
	b := make([]byte, refreshValueBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashRefreshValue returns the digest under which a refresh token is stored.
func HashRefreshValue(value string) []byte {
	h := sha256.Sum256([]byte(value))
	return h[:]
}

// NewFamilyID returns a fresh token family identifier.
func NewFamilyID() string {
	return familyPrefix + uuid.NewString()
}
