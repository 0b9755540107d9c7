package resilience

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2,
	}
}

func TestDoValSucceedsFirstTry(t *testing.T) {
	calls := 0
	val, err := DoVal(context.Background(), fastConfig(), func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, 1, calls)
}

func TestDoValRetriesTransient(t *testing.T) {
	calls := 0
	val, err := DoVal(context.Background(), fastConfig(), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", fmt.Errorf("call upstream: %w", syscall.ECONNRESET)
		}
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", val)
	assert.Equal(t, 3, calls)
}

func TestDoValStopsOnNonTransient(t *testing.T) {
	calls := 0
	permanent := errors.New("invalid api key")
	_, err := DoVal(context.Background(), fastConfig(), func(ctx context.Context) (string, error) {
		calls++
		return "", permanent
	})
	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDoValExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := DoVal(context.Background(), fastConfig(), func(ctx context.Context) (string, error) {
		calls++
		return "", fmt.Errorf("dial: %w", syscall.ECONNREFUSED)
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoValStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	_, err := DoVal(ctx, fastConfig(), func(ctx context.Context) (string, error) {
		calls++
		cancel()
		return "", fmt.Errorf("dial: %w", syscall.ECONNRESET)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoValOnRetryCallback(t *testing.T) {
	cfg := fastConfig()
	var attempts []int
	cfg.OnRetry = func(attempt int, err error) {
		attempts = append(attempts, attempt)
	}

	calls := 0
	_, _ = DoVal(context.Background(), cfg, func(ctx context.Context) (string, error) {
		calls++
		return "", fmt.Errorf("dial: %w", syscall.ECONNRESET)
	})
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"conn reset", syscall.ECONNRESET, true},
		{"conn refused wrapped", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), true},
		{"string pattern", errors.New("read tcp: connection reset by peer"), true},
		{"dns", errors.New("lookup api.example.com: no such host"), true},
		{"permanent", errors.New("401 unauthorized"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestComputeBackoffCaps(t *testing.T) {
	cfg := applyDefaults(RetryConfig{InitialBackoff: time.Second, MaxBackoff: 2 * time.Second, Multiplier: 10})
	d := computeBackoff(5, cfg)
	assert.LessOrEqual(t, d, time.Duration(float64(cfg.MaxBackoff)*(1+cfg.JitterFraction)))
}
