package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dtroode/villa-auth/internal/model"
)

// User serves endpoints for the authenticated caller.
type User struct {
	contextManager model.ContextManager
}

func NewUser(contextManager model.ContextManager) *User {
	return &User{contextManager: contextManager}
}

// Me echoes the verified access token claims.
func (h *User) Me(c *fiber.Ctx) error {
	claims, ok := h.contextManager.GetClaimsFromContext(c.UserContext())
	if !ok {
		return handleError(c, model.ErrInvalidToken)
	}

	return c.JSON(meResponse{
		ID:       claims.UserID.String(),
		Username: claims.Username,
		Role:     claims.Role,
		FamilyID: claims.FamilyID,
	})
}
