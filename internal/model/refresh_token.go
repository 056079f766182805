package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RefreshTokenStore persists refresh tokens and their families.
type RefreshTokenStore interface {
	FindByTokenValue(ctx context.Context, value string) (RefreshToken, error)
	Insert(ctx context.Context, token RefreshToken) error
	MarkInvalid(ctx context.Context, id uuid.UUID) error
	MarkFamilyInvalid(ctx context.Context, userID uuid.UUID, familyID string) error
	// Rotate invalidates currentID and inserts next in one transaction.
	// It returns ErrTokenAlreadyRotated when currentID was no longer valid.
	Rotate(ctx context.Context, currentID uuid.UUID, next RefreshToken) error
	PurgeInvalid(ctx context.Context, before time.Time, limit int, archive ArchiveFunc) (int, error)
}

// ArchiveFunc receives purged rows before the purge is committed.
// Returning an error aborts the purge.
type ArchiveFunc func(ctx context.Context, tokens []RefreshToken) error

// RefreshToken is a persisted refresh token row. The plaintext value is
// never stored, only its SHA-256 hash.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	FamilyID  string
	TokenHash []byte
	IsValid   bool
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the token is past its expiry at now.
func (t RefreshToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
