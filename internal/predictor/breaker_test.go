package predictor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VL13N/FullStackNexus-sub005/internal/utils"
)

func failing(context.Context) error { return errors.New("sidecar down") }

func succeeding(context.Context) error { return nil }

func TestBreakerOpensAfterThreshold(t *testing.T) {
	breaker := NewBreaker(BreakerConfig{FailureThreshold: 3, CoolDown: time.Minute}, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.Error(t, breaker.Execute(ctx, failing))
	}
	assert.Equal(t, BreakerOpen, breaker.State())

	// Open circuit rejects without calling through.
	called := false
	err := breaker.Execute(ctx, func(context.Context) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.True(t, utils.IsServiceUnavailable(err))
	assert.False(t, called)
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	breaker := NewBreaker(BreakerConfig{FailureThreshold: 1, SuccessThreshold: 1, CoolDown: time.Minute}, nil)
	ctx := context.Background()

	require.Error(t, breaker.Execute(ctx, failing))
	require.Equal(t, BreakerOpen, breaker.State())

	// Cooldown elapses: next call probes and closes on success.
	now := time.Now()
	breaker.now = func() time.Time { return now.Add(2 * time.Minute) }

	require.NoError(t, breaker.Execute(ctx, succeeding))
	assert.Equal(t, BreakerClosed, breaker.State())
}

func TestBreakerReopensOnFailedProbe(t *testing.T) {
	breaker := NewBreaker(BreakerConfig{FailureThreshold: 1, CoolDown: time.Minute}, nil)
	ctx := context.Background()

	require.Error(t, breaker.Execute(ctx, failing))
	require.Equal(t, BreakerOpen, breaker.State())

	now := time.Now()
	breaker.now = func() time.Time { return now.Add(2 * time.Minute) }

	require.Error(t, breaker.Execute(ctx, failing))
	assert.Equal(t, BreakerOpen, breaker.State())
}

func TestBreakerSuccessResetsFailures(t *testing.T) {
	breaker := NewBreaker(BreakerConfig{FailureThreshold: 2, CoolDown: time.Minute}, nil)
	ctx := context.Background()

	require.Error(t, breaker.Execute(ctx, failing))
	require.NoError(t, breaker.Execute(ctx, succeeding))
	require.Error(t, breaker.Execute(ctx, failing))

	// One failure after a success is still below the threshold.
	assert.Equal(t, BreakerClosed, breaker.State())
}
