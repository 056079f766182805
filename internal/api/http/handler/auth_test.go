package handler

import (
	"encoding/json"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/villa-auth/internal/mocks"
	"github.com/dtroode/villa-auth/internal/model"
	"github.com/dtroode/villa-auth/internal/testutil"
)

func newAuthApp(t *testing.T) (*fiber.App, *mocks.AuthService, *mocks.TokenService) {
	t.Helper()

	authSvc := mocks.NewAuthService(t)
	tokenSvc := mocks.NewTokenService(t)
	h := NewAuth(authSvc, tokenSvc, testutil.MakeNoopLogger())

	app := fiber.New()
	app.Post("/register", h.Register)
	app.Post("/login", h.Login)
	app.Post("/refresh", h.Refresh)
	app.Post("/revoke", h.Revoke)
	return app, authSvc, tokenSvc
}

func TestAuth_Register(t *testing.T) {
	t.Parallel()

	app, authSvc, _ := newAuthApp(t)
	id := uuid.New()
	params := model.RegisterParams{Username: "alice", Name: "Alice", Password: "secret", Role: "admin"}
	authSvc.On("Register", mock.Anything, params).
		Return(model.User{ID: id, Username: "alice", Name: "Alice", Role: "admin"}, nil).Once()

	resp, body := doJSON(t, app, fiber.MethodPost, "/register", registerRequest{
		Username: "alice", Name: "Alice", Password: "secret", Role: "admin",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var out userResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, userResponse{ID: id.String(), Username: "alice", Name: "Alice", Role: "admin"}, out)
	assert.NotContains(t, string(body), "password")
}

func TestAuth_Register_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     interface{}
		svcErr   error
		wantCode int
	}{
		{name: "malformed body", body: "{", wantCode: fiber.StatusBadRequest},
		{name: "taken", body: registerRequest{Username: "alice", Password: "secret"}, svcErr: model.ErrUsernameTaken, wantCode: fiber.StatusConflict},
		{name: "invalid", body: registerRequest{Username: "alice", Password: "1"}, svcErr: model.ErrInvalidInput, wantCode: fiber.StatusBadRequest},
		{name: "internal", body: registerRequest{Username: "alice", Password: "secret"}, svcErr: assert.AnError, wantCode: fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, authSvc, _ := newAuthApp(t)
			if tt.svcErr != nil {
				authSvc.On("Register", mock.Anything, mock.Anything).Return(model.User{}, tt.svcErr).Once()
			}

			resp, body := doJSON(t, app, fiber.MethodPost, "/register", tt.body)
			assert.Equal(t, tt.wantCode, resp.StatusCode)
			assert.True(t, decodeError(t, body).Error)
		})
	}
}

func TestAuth_Login(t *testing.T) {
	t.Parallel()

	app, authSvc, _ := newAuthApp(t)
	pair := model.TokenPair{AccessToken: "access", RefreshToken: "refresh"}
	authSvc.On("Login", mock.Anything, "alice", "secret", mock.AnythingOfType("string")).Return(pair, nil).Once()

	resp, body := doJSON(t, app, fiber.MethodPost, "/login", loginRequest{Username: "alice", Password: "secret"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"access_token":"access","refresh_token":"refresh"}`, string(body))
}

func TestAuth_Login_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     interface{}
		svcErr   error
		wantCode int
	}{
		{name: "missing password", body: loginRequest{Username: "alice"}, wantCode: fiber.StatusBadRequest},
		{name: "bad credentials", body: loginRequest{Username: "alice", Password: "x"}, svcErr: model.ErrInvalidCredentials, wantCode: fiber.StatusUnauthorized},
		{name: "throttled", body: loginRequest{Username: "alice", Password: "x"}, svcErr: model.ErrTooManyAttempts, wantCode: fiber.StatusTooManyRequests},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, authSvc, _ := newAuthApp(t)
			if tt.svcErr != nil {
				authSvc.On("Login", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(model.TokenPair{}, tt.svcErr).Once()
			}

			resp, _ := doJSON(t, app, fiber.MethodPost, "/login", tt.body)
			assert.Equal(t, tt.wantCode, resp.StatusCode)
		})
	}
}

func TestAuth_Refresh(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     interface{}
		pair     model.TokenPair
		svcErr   error
		noCall   bool
		wantCode int
		wantMsg  string
	}{
		{
			name:     "rotated",
			body:     tokenPairRequest{AccessToken: "a", RefreshToken: "r"},
			pair:     model.TokenPair{AccessToken: "a2", RefreshToken: "r2"},
			wantCode: fiber.StatusOK,
		},
		{
			name:     "missing refresh token",
			body:     tokenPairRequest{AccessToken: "a"},
			noCall:   true,
			wantCode: fiber.StatusBadRequest,
		},
		{
			name:     "reuse",
			body:     tokenPairRequest{AccessToken: "a", RefreshToken: "r"},
			svcErr:   model.ErrTokenReuseDetected,
			wantCode: fiber.StatusUnauthorized,
			wantMsg:  "refresh token reuse detected",
		},
		{
			name:     "expired",
			body:     tokenPairRequest{AccessToken: "a", RefreshToken: "r"},
			svcErr:   model.ErrExpired,
			wantCode: fiber.StatusUnauthorized,
			wantMsg:  "refresh token expired",
		},
		{
			name:     "store down",
			body:     tokenPairRequest{AccessToken: "a", RefreshToken: "r"},
			svcErr:   assert.AnError,
			wantCode: fiber.StatusInternalServerError,
			wantMsg:  "internal server error",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, _, tokenSvc := newAuthApp(t)
			if !tt.noCall {
				tokenSvc.On("Refresh", mock.Anything, "a", "r").Return(tt.pair, tt.svcErr).Once()
			}

			resp, body := doJSON(t, app, fiber.MethodPost, "/refresh", tt.body)
			require.Equal(t, tt.wantCode, resp.StatusCode)

			if tt.wantCode == fiber.StatusOK {
				var out model.TokenPair
				require.NoError(t, json.Unmarshal(body, &out))
				assert.Equal(t, tt.pair, out)
				return
			}
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, decodeError(t, body).Message)
			}
		})
	}
}

func TestAuth_Revoke(t *testing.T) {
	t.Parallel()

	t.Run("revoked", func(t *testing.T) {
		t.Parallel()

		app, _, tokenSvc := newAuthApp(t)
		tokenSvc.On("Revoke", mock.Anything, "a", "r").Return(nil).Once()

		resp, body := doJSON(t, app, fiber.MethodPost, "/revoke", tokenPairRequest{AccessToken: "a", RefreshToken: "r"})
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		assert.Empty(t, body)
	})

	t.Run("mismatch", func(t *testing.T) {
		t.Parallel()

		app, _, tokenSvc := newAuthApp(t)
		tokenSvc.On("Revoke", mock.Anything, "a", "r").Return(model.ErrInvalidToken).Once()

		resp, _ := doJSON(t, app, fiber.MethodPost, "/revoke", tokenPairRequest{AccessToken: "a", RefreshToken: "r"})
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		app, _, _ := newAuthApp(t)

		resp, _ := doJSON(t, app, fiber.MethodPost, "/revoke", "not json")
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}
