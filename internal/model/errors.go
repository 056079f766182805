package model

import "errors"

// ErrNotFound is returned by stores when a row does not exist.
var ErrNotFound = errors.New("not found")

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenReuseDetected = errors.New("refresh token reuse detected")
	ErrExpired            = errors.New("refresh token expired")
	ErrMalformedToken     = errors.New("malformed access token")
	// ErrTokenAlreadyRotated is returned by the store when a conditional
	// rotation finds the row already invalid.
	ErrTokenAlreadyRotated = errors.New("refresh token already rotated")
)

var (
	ErrUsernameTaken   = errors.New("username is already taken")
	ErrInvalidInput    = errors.New("invalid input")
	ErrTooManyAttempts = errors.New("too many login attempts")
)
