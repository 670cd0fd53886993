package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "gematria-workers/internal/common/errors"
)

var fastRetry = &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{errors.New("dial tcp 127.0.0.1:26500: connect: connection refused"), true},
		{errors.New("rpc error: code = Unavailable desc = no healthy upstream"), true},
		{errors.New("context deadline exceeded"), true},
		{errors.New("lookup zeebe: no such host"), true},
		{errors.New("NOT_FOUND: process not deployed"), false},
		{errors.New("permission denied"), false},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetry, "ping", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_GivesUpWithBrokerUnavailable(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetry, "topology", func(context.Context) error {
		calls++
		return errors.New("connection refused")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)

	stdErr := apperrors.AsStandardError(err)
	assert.Equal(t, apperrors.ErrCodeBrokerUnavailable, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestRetry_PermanentErrorIsNotRetried(t *testing.T) {
	calls := 0
	permanent := errors.New("invalid credentials")
	err := Retry(context.Background(), fastRetry, "ping", func(context.Context) error {
		calls++
		return permanent
	})
	assert.Same(t, permanent, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	slow := &RetryConfig{MaxRetries: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}

	calls := 0
	err := Retry(ctx, slow, "ping", func(context.Context) error {
		calls++
		cancel()
		return errors.New("connection reset by peer")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
