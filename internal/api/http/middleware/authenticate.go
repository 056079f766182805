package middleware

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/dtroode/villa-auth/internal/logger"
	"github.com/dtroode/villa-auth/internal/model"
	"github.com/dtroode/villa-auth/internal/token"
)

const tokenLocalsKey = "user"

// AuthenticateConfig holds the access token verification settings.
type AuthenticateConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

// Authenticate verifies bearer access tokens and puts their claims on the
// request context.
type Authenticate struct {
	cfg            AuthenticateConfig
	codec          *token.JWT
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewAuthenticate(cfg AuthenticateConfig, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{
		cfg:            cfg,
		codec:          token.NewJWT(cfg.Secret, cfg.Issuer, cfg.Audience),
		contextManager: contextManager,
		logger:         logger,
	}
}

// Handler returns the fiber middleware.
func (a *Authenticate) Handler() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(a.cfg.Secret)},
		Claims:         &token.Claims{},
		ContextKey:     tokenLocalsKey,
		SuccessHandler: a.onSuccess,
		ErrorHandler:   a.onError,
	})
}

func (a *Authenticate) onSuccess(c *fiber.Ctx) error {
	parsed, ok := c.Locals(tokenLocalsKey).(*jwt.Token)
	if !ok {
		return a.onError(c, model.ErrInvalidToken)
	}
	claims, ok := parsed.Claims.(*token.Claims)
	if !ok {
		return a.onError(c, model.ErrInvalidToken)
	}

	access, err := a.codec.Verify(claims)
	if err != nil {
		return a.onError(c, err)
	}

	c.SetUserContext(a.contextManager.SetClaimsToContext(c.UserContext(), access))
	return c.Next()
}

func (a *Authenticate) onError(c *fiber.Ctx, err error) error {
	a.logger.Debug("Authenticate middleware: rejected access token",
		"path", c.Path(),
		"error", err.Error())

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   true,
		"message": "unauthorized: invalid or expired token",
	})
}
