// Package ratelimit throttles repeated failed logins with fixed window
// counters kept in redis.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dtroode/villa-auth/internal/model"
)

// ErrUnavailable wraps redis failures. Callers treat it as "not throttled".
var ErrUnavailable = errors.New("login limiter unavailable")

var _ model.LoginLimiter = (*LoginLimiter)(nil)

type Config struct {
	MaxAttempts int
	Window      time.Duration
}

// LoginLimiter counts failed logins per username and per client IP.
type LoginLimiter struct {
	redis       redis.UniversalClient
	maxAttempts int
	window      time.Duration
}

func New(client redis.UniversalClient, cfg Config) *LoginLimiter {
	return &LoginLimiter{
		redis:       client,
		maxAttempts: cfg.MaxAttempts,
		window:      cfg.Window,
	}
}

// Check returns model.ErrTooManyAttempts once either counter has reached the limit.
func (l *LoginLimiter) Check(ctx context.Context, username, ip string) error {
	keys := l.keys(username, ip)

	values, err := l.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			continue
		}
		if n >= l.maxAttempts {
			return model.ErrTooManyAttempts
		}
	}

	return nil
}

// Fail records a failed attempt. The window starts at the first failure.
func (l *LoginLimiter) Fail(ctx context.Context, username, ip string) error {
	for _, key := range l.keys(username, ip) {
		count, err := l.redis.Incr(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		if count == 1 {
			if err := l.redis.Expire(ctx, key, l.window).Err(); err != nil {
				return fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
		}
	}

	return nil
}

// Reset clears both counters after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, username, ip string) error {
	if err := l.redis.Del(ctx, l.keys(username, ip)...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (l *LoginLimiter) keys(username, ip string) []string {
	keys := []string{userKey(username)}
	if ip != "" {
		keys = append(keys, ipKey(ip))
	}
	return keys
}

func userKey(username string) string {
	return "login:user:" + username
}

func ipKey(ip string) string {
	return "login:ip:" + ip
}
