package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/villa-auth/internal/mocks"
	"github.com/dtroode/villa-auth/internal/testutil"
)

type statusRecorder struct {
	mu     sync.Mutex
	events []bool
}

func (r *statusRecorder) record(healthy bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, healthy)
}

func (r *statusRecorder) get() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.events...)
}

func TestHealth_Check(t *testing.T) {
	ctx := context.Background()
	pinger := mocks.NewPinger(t)
	h := NewHealth(pinger, time.Second, testutil.MakeNoopLogger())

	rec := &statusRecorder{}
	h.Subscribe(rec.record)
	assert.False(t, h.Healthy())

	pinger.On("Ping", mock.Anything).Return(nil).Twice()
	assert.True(t, h.Check(ctx))
	assert.True(t, h.Check(ctx))

	pinger.On("Ping", mock.Anything).Return(assert.AnError).Once()
	assert.False(t, h.Check(ctx))
	assert.False(t, h.Healthy())

	assert.Equal(t, []bool{false, true, false}, rec.get())
}

func TestHealth_CheckUsesTimeout(t *testing.T) {
	pinger := mocks.NewPinger(t)
	h := NewHealth(pinger, 20*time.Millisecond, testutil.MakeNoopLogger())

	pinger.On("Ping", mock.Anything).Return(func(ctx context.Context) error {
		deadline, ok := ctx.Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(10*time.Millisecond), deadline, 10*time.Millisecond)
		return nil
	}).Once()

	assert.True(t, h.Check(context.Background()))
}

func TestHealth_Run(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pinger := mocks.NewPinger(t)
	pinger.On("Ping", mock.Anything).Return(nil)

	h := NewHealth(pinger, 5*time.Millisecond, testutil.MakeNoopLogger())

	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, h.Healthy, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("health loop did not stop")
	}
}
