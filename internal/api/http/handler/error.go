package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dtroode/villa-auth/internal/model"
)

func handleError(c *fiber.Ctx, err error) error {
	code, message := statusOf(err)
	return c.Status(code).JSON(errorResponse{Error: true, Message: message})
}

func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, "invalid username or password"
	case errors.Is(err, model.ErrTokenReuseDetected):
		return fiber.StatusUnauthorized, "refresh token reuse detected"
	case errors.Is(err, model.ErrExpired):
		return fiber.StatusUnauthorized, "refresh token expired"
	case errors.Is(err, model.ErrInvalidToken):
		return fiber.StatusUnauthorized, "invalid token"
	case errors.Is(err, model.ErrUsernameTaken):
		return fiber.StatusConflict, "username already exists"
	case errors.Is(err, model.ErrTooManyAttempts):
		return fiber.StatusTooManyRequests, "too many login attempts"
	case errors.Is(err, model.ErrInvalidInput):
		return fiber.StatusBadRequest, err.Error()
	default:
		return fiber.StatusInternalServerError, "internal server error"
	}
}
