package http

import (
	stdhttp "net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"atlas/internal/ratelimit"
)

// rateLimitMiddleware gates every HTTP request against the shared limiter.
// Health and documentation paths are exempt, and WebSocket upgrades pass
// through untouched: each inbound WS message is charged individually by the
// socket handler instead.
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	excluded := make(map[string]struct{}, len(s.cfg.RateLimit.ExcludedPaths))
	for _, path := range s.cfg.RateLimit.ExcludedPaths {
		excluded[path] = struct{}{}
	}

	limit := s.cfg.RateLimit.HTTPLimit
	window := s.cfg.RateLimit.HTTPWindow

	return func(c *gin.Context) {
		if _, skip := excluded[c.Request.URL.Path]; skip {
			c.Next()
			return
		}
		if c.Request.URL.Path == "/ws" {
			c.Next()
			return
		}

		key := ratelimit.HTTPKey(c.GetHeader("Authorization"), c.ClientIP())
		allowed, remaining := s.limiter.Check(c.Request.Context(), key, limit, window)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			s.metrics.ObserveRateLimitRejection("http")
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.AbortWithStatusJSON(stdhttp.StatusTooManyRequests, gin.H{
				"detail": "Rate limit exceeded. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
