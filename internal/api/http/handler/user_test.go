package handler

import (
	"encoding/json"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpctx "github.com/dtroode/villa-auth/internal/api/http/context"
	"github.com/dtroode/villa-auth/internal/mocks"
	"github.com/dtroode/villa-auth/internal/model"
)

func TestUser_Me(t *testing.T) {
	t.Parallel()

	ctxMgr := httpctx.NewManager()
	claims := model.AccessClaims{UserID: uuid.New(), Username: "alice", Role: "admin", FamilyID: "JTIf"}

	app := fiber.New()
	app.Get("/me", func(c *fiber.Ctx) error {
		c.SetUserContext(ctxMgr.SetClaimsToContext(c.UserContext(), claims))
		return c.Next()
	}, NewUser(ctxMgr).Me)

	resp, body := doJSON(t, app, fiber.MethodGet, "/me", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out meResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, meResponse{ID: claims.UserID.String(), Username: "alice", Role: "admin", FamilyID: "JTIf"}, out)
}

func TestUser_Me_NoClaims(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Get("/me", NewUser(httpctx.NewManager()).Me)

	resp, _ := doJSON(t, app, fiber.MethodGet, "/me", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestHealth_Check(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		healthy  bool
		wantCode int
		wantBody string
	}{
		{name: "healthy", healthy: true, wantCode: fiber.StatusOK, wantBody: `{"status":"ok"}`},
		{name: "unhealthy", healthy: false, wantCode: fiber.StatusServiceUnavailable, wantBody: `{"status":"unavailable"}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			checker := mocks.NewHealthChecker(t)
			checker.On("Healthy").Return(tt.healthy).Once()

			app := fiber.New()
			app.Get("/health", NewHealth(checker).Check)

			resp, body := doJSON(t, app, fiber.MethodGet, "/health", nil)
			assert.Equal(t, tt.wantCode, resp.StatusCode)
			assert.JSONEq(t, tt.wantBody, string(body))
		})
	}
}
