package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dtroode/villa-auth/internal/logger"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health tracks database reachability and notifies subscribers on change.
type Health struct {
	pinger   Pinger
	logger   *logger.Logger
	interval time.Duration
	timeout  time.Duration

	healthy atomic.Bool
	mu      sync.Mutex
	subs    []func(healthy bool)
}

func NewHealth(pinger Pinger, interval time.Duration, logger *logger.Logger) *Health {
	timeout := interval / 2
	if timeout <= 0 {
		timeout = time.Second
	}
	return &Health{
		pinger:   pinger,
		logger:   logger,
		interval: interval,
		timeout:  timeout,
	}
}

// Subscribe registers fn to be called with every status change.
func (h *Health) Subscribe(fn func(healthy bool)) {
	h.mu.Lock()
	h.subs = append(h.subs, fn)
	h.mu.Unlock()

	fn(h.Healthy())
}

// Healthy returns the last observed status.
func (h *Health) Healthy() bool {
	return h.healthy.Load()
}

// Check pings once and updates the status.
func (h *Health) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	err := h.pinger.Ping(ctx)
	healthy := err == nil
	if err != nil {
		h.logger.Warn("Health: database ping failed", "error", err.Error())
	}

	if h.healthy.Swap(healthy) != healthy {
		h.logger.Info("Health: status changed", "healthy", healthy)
		h.mu.Lock()
		subs := append([]func(bool){}, h.subs...)
		h.mu.Unlock()
		for _, fn := range subs {
			fn(healthy)
		}
	}

	return healthy
}

// Run checks immediately and then every interval until ctx is done.
func (h *Health) Run(ctx context.Context) {
	h.Check(ctx)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}
