package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/villa-auth/internal/logger"
	"github.com/dtroode/villa-auth/internal/model"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 72
	maxUsernameLength = 64
)

var _ model.CredentialStore = (*Credentials)(nil)

// Credentials verifies passwords against bcrypt hashes held in the user store.
type Credentials struct {
	users     model.UserStore
	cost      int
	dummyHash []byte
	logger    *logger.Logger
}

// NewCredentials creates a credential store. Cost is the bcrypt cost used
// for new hashes.
func NewCredentials(users model.UserStore, cost int, logger *logger.Logger) (*Credentials, error) {
	// compared against when the user does not exist so both failures take the same time
	dummy, err := bcrypt.GenerateFromPassword([]byte("villa-auth-dummy-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	return &Credentials{
		users:     users,
		cost:      cost,
		dummyHash: dummy,
		logger:    logger,
	}, nil
}

// VerifyPassword returns the user when the password matches. Unknown users
// and wrong passwords both yield ErrInvalidCredentials.
func (c *Credentials) VerifyPassword(ctx context.Context, username, password string) (model.User, error) {
	user, err := c.users.GetByUsername(ctx, username)
	if errors.Is(err, model.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(c.dummyHash, []byte(password))
		return model.User{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by username: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return model.User{}, model.ErrInvalidCredentials
	}

	return user, nil
}

// RolesOf returns the roles of a user.
func (c *Credentials) RolesOf(ctx context.Context, userID uuid.UUID) ([]string, error) {
	user, err := c.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	if user.Role == "" {
		return nil, nil
	}
	return []string{user.Role}, nil
}

// Register validates params, hashes the password and stores a new user.
func (c *Credentials) Register(ctx context.Context, params model.RegisterParams) (model.User, error) {
	username := strings.TrimSpace(params.Username)
	if err := validateRegistration(username, params.Password); err != nil {
		return model.User{}, err
	}

	_, err := c.users.GetByUsername(ctx, username)
	if err == nil {
		return model.User{}, model.ErrUsernameTaken
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.User{}, fmt.Errorf("failed to get user by username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), c.cost)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	role := strings.TrimSpace(params.Role)
	if role == "" {
		role = model.DefaultRole
	}

	now := time.Now()
	user, err := c.users.Create(ctx, model.User{
		ID:           uuid.New(),
		Username:     username,
		Name:         strings.TrimSpace(params.Name),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, model.ErrUsernameTaken) {
			return model.User{}, err
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	c.logger.Info("Credentials: user registered",
		"user_id", user.ID.String(),
		"role", user.Role)

	return user, nil
}

func validateRegistration(username, password string) error {
	switch {
	case username == "":
		return fmt.Errorf("%w: username is required", model.ErrInvalidInput)
	case len(username) > maxUsernameLength:
		return fmt.Errorf("%w: username is too long", model.ErrInvalidInput)
	case len(password) < minPasswordLength:
		return fmt.Errorf("%w: password must be at least %d characters", model.ErrInvalidInput, minPasswordLength)
	case len(password) > maxPasswordLength:
		return fmt.Errorf("%w: password must be at most %d bytes", model.ErrInvalidInput, maxPasswordLength)
	}
	return nil
}
