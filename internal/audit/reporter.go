// Package audit reports token security events to the log and, when
// configured, to sentry.
package audit

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"

	"github.com/dtroode/villa-auth/internal/logger"
	"github.com/dtroode/villa-auth/internal/model"
)

var _ model.SecurityReporter = (*Reporter)(nil)

type Reporter struct {
	hub    *sentry.Hub
	logger *logger.Logger
}

// NewReporter creates a reporter. hub may be nil, in which case events are
// only logged.
func NewReporter(hub *sentry.Hub, logger *logger.Logger) *Reporter {
	return &Reporter{
		hub:    hub,
		logger: logger,
	}
}

func (r *Reporter) Report(ctx context.Context, event model.SecurityEvent, userID uuid.UUID, familyID string) {
	r.logger.Warn("Security event",
		"event", string(event),
		"user_id", userID.String(),
		"family_id", familyID)

	hub := r.hubFor(ctx)
	if hub == nil {
		return
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelWarning)
		scope.SetTag("security_event", string(event))
		if familyID != "" {
			scope.SetTag("family_id", familyID)
		}
		if userID != uuid.Nil {
			scope.SetUser(sentry.User{ID: userID.String()})
		}
		hub.CaptureMessage("security event: " + string(event))
	})
}

// hubFor prefers the request scoped hub set by the sentry fiber middleware.
func (r *Reporter) hubFor(ctx context.Context) *sentry.Hub {
	if r.hub == nil {
		return nil
	}
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		return hub
	}
	return r.hub
}
