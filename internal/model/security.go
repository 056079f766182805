package model

import (
	"context"

	"github.com/google/uuid"
)

// SecurityEvent names a security relevant occurrence in the token flow.
type SecurityEvent string

const (
	// EventTokenReuse is raised when an invalidated refresh token is presented.
	EventTokenReuse SecurityEvent = "refresh_token_reuse"
	// EventTokenMismatch is raised when access and refresh tokens disagree.
	EventTokenMismatch SecurityEvent = "token_mismatch"
	// EventRotationRace is raised when a concurrent rotation lost the race.
	EventRotationRace SecurityEvent = "rotation_race"
	// EventLoginThrottled is raised when the login limiter rejects an attempt.
	EventLoginThrottled SecurityEvent = "login_throttled"
)

// SecurityReporter records security events.
type SecurityReporter interface {
	Report(ctx context.Context, event SecurityEvent, userID uuid.UUID, familyID string)
}

// LoginLimiter throttles repeated failed logins.
type LoginLimiter interface {
	Check(ctx context.Context, username, ip string) error
	Fail(ctx context.Context, username, ip string) error
	Reset(ctx context.Context, username, ip string) error
}
