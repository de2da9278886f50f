package ratelimit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterEnforcesWindowLimit(t *testing.T) {
	store := NewMemoryStore()
	limiter := NewLimiter(store)
	ctx := context.Background()

	for i := 1; i <= 60; i++ {
		allowed, remaining := limiter.Check(ctx, "k", 60, time.Minute)
		assert.True(t, allowed, "request %d should be allowed", i)
		assert.Equal(t, 60-i, remaining)
	}

	allowed, remaining := limiter.Check(ctx, "k", 60, time.Minute)
	assert.False(t, allowed, "61st request in the window must be rejected")
	assert.Equal(t, 0, remaining)
}

func TestLimiterResetsAfterWindow(t *testing.T) {
	store := NewMemoryStore()
	current := time.Unix(1000, 0)
	store.SetClock(func() time.Time { return current })
	limiter := NewLimiter(store)
	ctx := context.Background()

	for i := 0; i < 61; i++ {
		limiter.Check(ctx, "k", 60, time.Minute)
	}
	allowed, _ := limiter.Check(ctx, "k", 60, time.Minute)
	assert.False(t, allowed)

	current = current.Add(61 * time.Second)

	allowed, remaining := limiter.Check(ctx, "k", 60, time.Minute)
	assert.True(t, allowed, "counter should reset once the window elapses")
	assert.Equal(t, 59, remaining)
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewLimiter(NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		limiter.Check(ctx, "a", 2, time.Minute)
	}
	allowed, _ := limiter.Check(ctx, "a", 2, time.Minute)
	assert.False(t, allowed)

	allowed, _ = limiter.Check(ctx, "b", 2, time.Minute)
	assert.True(t, allowed)
}

type failingStore struct{}

func (failingStore) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("store down")
}

func TestLimiterFailsOpenOnStoreError(t *testing.T) {
	limiter := NewLimiter(failingStore{})

	allowed, remaining := limiter.Check(context.Background(), "k", 10, time.Minute)
	assert.True(t, allowed)
	assert.Equal(t, 10, remaining)
}

func TestHTTPKeyHashesBearerTokens(t *testing.T) {
	key := HTTPKey("Bearer super-secret-token", "203.0.113.9")

	assert.True(t, strings.HasPrefix(key, "http:user:"))
	assert.NotContains(t, key, "super-secret-token")
	assert.Len(t, strings.TrimPrefix(key, "http:user:"), 16)

	// Stable per token, distinct across tokens.
	assert.Equal(t, key, HTTPKey("Bearer super-secret-token", "198.51.100.1"))
	assert.NotEqual(t, key, HTTPKey("Bearer other-token", "203.0.113.9"))
}

func TestHTTPKeyFallsBackToIP(t *testing.T) {
	assert.Equal(t, "http:ip:203.0.113.9", HTTPKey("", "203.0.113.9"))
	assert.Equal(t, "http:ip:unknown", HTTPKey("", ""))
	// Non-bearer auth schemes also fall back to IP.
	assert.Equal(t, "http:ip:203.0.113.9", HTTPKey("Basic dXNlcjpwYXNz", "203.0.113.9"))
}

func TestWSKey(t *testing.T) {
	assert.Equal(t, "ws:user:u-42", WSKey("u-42"))
}
