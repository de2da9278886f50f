package errors

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetryConfig(), func(context.Context) error {
		calls++
		if calls < 3 {
			return &TransientError{Err: fmt.Errorf("flaky"), StatusCode: 503}
		}
		return nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := &PermanentError{Err: fmt.Errorf("bad request"), StatusCode: 400}
	err := Retry(context.Background(), fastRetryConfig(), func(context.Context) error {
		calls++
		return permanent
	}, nil)

	assert.ErrorIs(t, err, permanent.Err)
	assert.Equal(t, 1, calls)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetryConfig(), func(context.Context) error {
		calls++
		return &TransientError{Err: fmt.Errorf("still down")}
	}, nil)

	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, fastRetryConfig(), func(context.Context) error {
		return &TransientError{Err: fmt.Errorf("never reached twice")}
	}, nil)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsTransientClassification(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(fmt.Errorf("plain error")))
	assert.True(t, IsTransient(&TransientError{Err: fmt.Errorf("x")}))
	assert.False(t, IsTransient(&PermanentError{Err: fmt.Errorf("x"), StatusCode: 404}))
	assert.True(t, IsTransient(fmt.Errorf("dial tcp: connection refused")))
	assert.True(t, IsTransient(&TransientError{Err: fmt.Errorf("x"), StatusCode: 429}))
}
