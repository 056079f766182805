package router

import (
	"errors"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/dtroode/villa-auth/internal/api/http/handler"
	"github.com/dtroode/villa-auth/internal/api/http/middleware"
	"github.com/dtroode/villa-auth/internal/logger"
	"github.com/dtroode/villa-auth/internal/model"
)

const bodyLimit = 64 * 1024

// Router builds the HTTP API.
type Router struct {
	authService    handler.AuthService
	tokenService   handler.TokenService
	healthChecker  handler.HealthChecker
	contextManager model.ContextManager
	authConfig     middleware.AuthenticateConfig
	logger         *logger.Logger
}

func New(
	authService handler.AuthService,
	tokenService handler.TokenService,
	healthChecker handler.HealthChecker,
	contextManager model.ContextManager,
	authConfig middleware.AuthenticateConfig,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		tokenService:   tokenService,
		healthChecker:  healthChecker,
		contextManager: contextManager,
		authConfig:     authConfig,
		logger:         logger,
	}
}

// Register creates the fiber app with middleware and all routes.
func (r *Router) Register() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "villa-auth",
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.NewLogging(r.logger).Handle)
	app.Use(tagRequest)

	api := app.Group("/api/v1")
	r.registerAuthRoutes(api)
	r.registerUserRoutes(api)
	api.Get("/health", handler.NewHealth(r.healthChecker).Check)

	return app
}

func (r *Router) registerAuthRoutes(api fiber.Router) {
	h := handler.NewAuth(r.authService, r.tokenService, r.logger)

	auth := api.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Post("/refresh", h.Refresh)
	auth.Post("/revoke", h.Revoke)
}

func (r *Router) registerUserRoutes(api fiber.Router) {
	authenticate := middleware.NewAuthenticate(r.authConfig, r.contextManager, r.logger)
	h := handler.NewUser(r.contextManager)

	api.Get("/users/me", authenticate.Handler(), h.Me)
}

// tagRequest copies the request id onto the sentry scope and exposes the
// request hub to services through the user context.
func tagRequest(c *fiber.Ctx) error {
	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.Scope().SetTag("request_id", c.GetRespHeader(fiber.HeaderXRequestID))
		c.SetUserContext(sentry.SetHubOnContext(c.UserContext(), hub))
	}
	return c.Next()
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		if code < fiber.StatusInternalServerError {
			message = fe.Message
		}
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
