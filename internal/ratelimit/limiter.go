// Package ratelimit provides windowed request throttling keyed by client
// identity, backed by a shared counting store so limits hold across multiple
// server instances.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"atlas/internal/logging"
)

// Store counts requests per key. Incr must atomically increment the key's
// counter and arrange for it to expire one window after the first increment.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Limiter gates requests against a Store.
type Limiter struct {
	store  Store
	logger logging.Logger
}

func NewLimiter(store Store) *Limiter {
	return &Limiter{
		store:  store,
		logger: logging.NewComponentLogger("ratelimit"),
	}
}

// Check records one request for key and reports whether it is within limit,
// along with the remaining budget for the current window. Store failures fail
// open: a broken counter store must not take the API down with it.
func (l *Limiter) Check(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, remaining int) {
	count, err := l.store.Incr(ctx, key, window)
	if err != nil {
		l.logger.Warn("counter store unavailable, allowing %s: %v", key, err)
		return true, limit
	}

	remaining = limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return count <= int64(limit), remaining
}

// HTTPKey derives the rate-limit identity for an HTTP request. Bearer
// credentials are hashed so the store never sees raw tokens; anonymous
// requests fall back to the client IP.
func HTTPKey(authorizationHeader, clientIP string) string {
	if authorizationHeader != "" && len(authorizationHeader) > 7 && authorizationHeader[:7] == "Bearer " {
		sum := sha256.Sum256([]byte(authorizationHeader))
		return "http:user:" + hex.EncodeToString(sum[:])[:16]
	}
	if clientIP == "" {
		clientIP = "unknown"
	}
	return "http:ip:" + clientIP
}

// WSKey derives the rate-limit identity for WebSocket messages from the
// authenticated user id.
func WSKey(userID string) string {
	return "ws:user:" + userID
}
