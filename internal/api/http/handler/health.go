package handler

import "github.com/gofiber/fiber/v2"

// HealthChecker reports the last observed dependency status.
type HealthChecker interface {
	Healthy() bool
}

type Health struct {
	checker HealthChecker
}

func NewHealth(checker HealthChecker) *Health {
	return &Health{checker: checker}
}

func (h *Health) Check(c *fiber.Ctx) error {
	if !h.checker.Healthy() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(healthResponse{Status: "unavailable"})
	}
	return c.JSON(healthResponse{Status: "ok"})
}
