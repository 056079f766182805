package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dtroode/villa-auth/internal/logger"
)

// Logging logs every HTTP request after it completes.
type Logging struct {
	logger *logger.Logger
}

func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// Handle logs method, path, status and duration for each request.
func (l *Logging) Handle(c *fiber.Ctx) error {
	start := time.Now()

	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}

	args := []any{
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
	}

	switch {
	case status >= fiber.StatusInternalServerError:
		if err != nil {
			args = append(args, "error", err.Error())
		}
		l.logger.Error("HTTP request failed", args...)
	default:
		l.logger.Info("HTTP request completed", args...)
	}

	return err
}
