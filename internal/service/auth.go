package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/villa-auth/internal/logger"
	"github.com/dtroode/villa-auth/internal/model"
)

// CredentialService is a credential store that can also register users.
type CredentialService interface {
	model.CredentialStore
	Register(ctx context.Context, params model.RegisterParams) (model.User, error)
}

// TokenIssuer starts new token families.
type TokenIssuer interface {
	Issue(ctx context.Context, userID uuid.UUID, username, role string) (model.TokenPair, error)
}

type Auth struct {
	credentials CredentialService
	tokens      TokenIssuer
	limiter     model.LoginLimiter
	reporter    model.SecurityReporter
	logger      *logger.Logger
}

// NewAuth creates the login and registration service. limiter and reporter may be nil.
func NewAuth(
	credentials CredentialService,
	tokens TokenIssuer,
	limiter model.LoginLimiter,
	reporter model.SecurityReporter,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		credentials: credentials,
		tokens:      tokens,
		limiter:     limiter,
		reporter:    reporter,
		logger:      logger,
	}
}

func (a *Auth) Register(ctx context.Context, params model.RegisterParams) (model.User, error) {
	a.logger.Debug("Auth service: starting user registration",
		"username", params.Username)

	user, err := a.credentials.Register(ctx, params)
	if err != nil {
		if errors.Is(err, model.ErrUsernameTaken) || errors.Is(err, model.ErrInvalidInput) {
			a.logger.Info("Auth service: registration rejected",
				"username", params.Username,
				"reason", err.Error())
			return model.User{}, err
		}
		a.logger.Error("Auth service: failed to register user",
			"username", params.Username,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to register user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and issues a new token pair.
func (a *Auth) Login(ctx context.Context, username, password, clientIP string) (model.TokenPair, error) {
	a.logger.Debug("Auth service: starting user login",
		"username", username)

	if err := a.checkLimiter(ctx, username, clientIP); err != nil {
		return model.TokenPair{}, err
	}

	user, err := a.credentials.VerifyPassword(ctx, username, password)
	if errors.Is(err, model.ErrInvalidCredentials) {
		a.logger.Info("Auth service: invalid credentials",
			"username", username)
		a.recordFailure(ctx, username, clientIP)
		return model.TokenPair{}, model.ErrInvalidCredentials
	}
	if err != nil {
		a.logger.Error("Auth service: failed to verify password",
			"username", username,
			"error", err.Error())
		return model.TokenPair{}, fmt.Errorf("failed to verify password: %w", err)
	}

	if a.limiter != nil {
		if err := a.limiter.Reset(ctx, username, clientIP); err != nil {
			a.logger.Warn("Auth service: failed to reset login limiter",
				"username", username,
				"error", err.Error())
		}
	}

	pair, err := a.tokens.Issue(ctx, user.ID, user.Username, user.Role)
	if err != nil {
		a.logger.Error("Auth service: failed to issue token",
			"user_id", user.ID.String(),
			"error", err.Error())
		return model.TokenPair{}, fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.Info("Auth service: login completed successfully",
		"user_id", user.ID.String())

	return pair, nil
}

func (a *Auth) checkLimiter(ctx context.Context, username, clientIP string) error {
	if a.limiter == nil {
		return nil
	}

	err := a.limiter.Check(ctx, username, clientIP)
	if errors.Is(err, model.ErrTooManyAttempts) {
		a.logger.Warn("Auth service: login throttled",
			"username", username,
			"ip", clientIP)
		if a.reporter != nil {
			a.reporter.Report(ctx, model.EventLoginThrottled, uuid.Nil, "")
		}
		return model.ErrTooManyAttempts
	}
	if err != nil {
		a.logger.Warn("Auth service: login limiter unavailable",
			"error", err.Error())
	}
	return nil
}

func (a *Auth) recordFailure(ctx context.Context, username, clientIP string) {
	if a.limiter == nil {
		return
	}
	if err := a.limiter.Fail(ctx, username, clientIP); err != nil {
		a.logger.Warn("Auth service: failed to record login failure",
			"username", username,
			"error", err.Error())
	}
}
