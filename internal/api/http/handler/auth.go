package handler

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/dtroode/villa-auth/internal/logger"
	"github.com/dtroode/villa-auth/internal/model"
)

// AuthService defines user registration and login operations.
type AuthService interface {
	Register(ctx context.Context, params model.RegisterParams) (model.User, error)
	Login(ctx context.Context, username, password, clientIP string) (model.TokenPair, error)
}

// TokenService defines token refresh and revoke operations.
type TokenService interface {
	Refresh(ctx context.Context, accessToken, refreshToken string) (model.TokenPair, error)
	Revoke(ctx context.Context, accessToken, refreshToken string) error
}

// Auth handles the /auth endpoints.
type Auth struct {
	authService  AuthService
	tokenService TokenService
	logger       *logger.Logger
}

func NewAuth(authService AuthService, tokenService TokenService, logger *logger.Logger) *Auth {
	return &Auth{
		authService:  authService,
		tokenService: tokenService,
		logger:       logger,
	}
}

// Register creates a user account.
func (h *Auth) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return handleError(c, fmt.Errorf("%w: invalid request body", model.ErrInvalidInput))
	}

	h.logger.Debug("Auth handler: processing registration request",
		"username", req.Username)

	user, err := h.authService.Register(c.UserContext(), model.RegisterParams{
		Username: req.Username,
		Name:     req.Name,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return handleError(c, err)
	}

	h.logger.Info("Auth handler: registration completed",
		"user_id", user.ID.String())

	return c.Status(fiber.StatusCreated).JSON(userResponse{
		ID:       user.ID.String(),
		Username: user.Username,
		Name:     user.Name,
		Role:     user.Role,
	})
}

// Login exchanges credentials for a new token pair.
func (h *Auth) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return handleError(c, fmt.Errorf("%w: invalid request body", model.ErrInvalidInput))
	}
	if req.Username == "" || req.Password == "" {
		return handleError(c, fmt.Errorf("%w: username and password are required", model.ErrInvalidInput))
	}

	pair, err := h.authService.Login(c.UserContext(), req.Username, req.Password, c.IP())
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(pair)
}

// Refresh rotates the presented refresh token.
func (h *Auth) Refresh(c *fiber.Ctx) error {
	h.logger.Debug("Auth handler: processing token refresh request")

	req, err := parseTokenPair(c)
	if err != nil {
		return handleError(c, err)
	}

	pair, err := h.tokenService.Refresh(c.UserContext(), req.AccessToken, req.RefreshToken)
	if err != nil {
		h.logger.Info("Auth handler: token refresh rejected",
			"error", err.Error())
		return handleError(c, err)
	}

	return c.JSON(pair)
}

// Revoke ends the token family of the presented pair.
func (h *Auth) Revoke(c *fiber.Ctx) error {
	h.logger.Debug("Auth handler: processing token revoke request")

	req, err := parseTokenPair(c)
	if err != nil {
		return handleError(c, err)
	}

	if err := h.tokenService.Revoke(c.UserContext(), req.AccessToken, req.RefreshToken); err != nil {
		h.logger.Info("Auth handler: token revoke rejected",
			"error", err.Error())
		return handleError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func parseTokenPair(c *fiber.Ctx) (tokenPairRequest, error) {
	var req tokenPairRequest
	if err := c.BodyParser(&req); err != nil {
		return tokenPairRequest{}, fmt.Errorf("%w: invalid request body", model.ErrInvalidInput)
	}
	if req.AccessToken == "" || req.RefreshToken == "" {
		return tokenPairRequest{}, fmt.Errorf("%w: access_token and refresh_token are required", model.ErrInvalidInput)
	}
	return req, nil
}
