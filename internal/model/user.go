package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultRole is assigned to users registered without an explicit role.
const DefaultRole = "customer"

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, user User) (User, error)
}

// CredentialStore verifies passwords and resolves roles.
type CredentialStore interface {
	VerifyPassword(ctx context.Context, username, password string) (User, error)
	RolesOf(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// User represents a stored user with authentication material.
type User struct {
	ID           uuid.UUID
	Username     string
	Name         string
	PasswordHash []byte
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RegisterParams contains parameters to register a user.
type RegisterParams struct {
	Username string
	Name     string
	Password string
	Role     string
}
