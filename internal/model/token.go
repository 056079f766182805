package model

import (
	"time"

	"github.com/google/uuid"
)

// AccessClaims is the identity carried by an access token.
type AccessClaims struct {
	UserID    uuid.UUID
	Username  string
	Role      string
	FamilyID  string
	ExpiresAt time.Time
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenCodec encodes and decodes signed access tokens.
type TokenCodec interface {
	Encode(claims AccessClaims) (string, error)
	// Decode verifies the signature only. Expired tokens decode successfully.
	Decode(token string) (AccessClaims, error)
}
