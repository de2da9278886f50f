package http

import (
	stdhttp "net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"atlas/internal/ratelimit"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Origins are enforced by the CORS layer for the browser case; native
	// clients carry no Origin header at all.
	CheckOrigin: func(*stdhttp.Request) bool { return true },
}

type wsInbound struct {
	Message string `json:"message"`
}

type wsOutbound struct {
	Type   string `json:"type"`
	Agent  string `json:"agent,omitempty"`
	Steps  int    `json:"steps,omitempty"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	// RetryAfter is seconds until the window resets, set on rate_limited.
	RetryAfter int `json:"retry_after_seconds,omitempty"`
}

// handleWebSocket upgrades the connection and serves chat turns. The upgrade
// itself is free; every inbound message is charged against the WS limiter so
// a chatty socket cannot starve the rest of the user's budget unnoticed.
func (s *Server) handleWebSocket(c *gin.Context) {
	userID := wsUserID(c)
	if userID == "" {
		c.JSON(stdhttp.StatusUnauthorized, gin.H{"detail": "authentication required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	supervisor, err := s.factory(userID)
	if err != nil {
		s.logger.Error("building supervisor for %s: %v", userID, err)
		_ = conn.WriteJSON(wsOutbound{Type: "error", Error: "internal_error"})
		return
	}

	key := ratelimit.WSKey(userID)
	limit := s.cfg.RateLimit.WSLimit
	window := s.cfg.RateLimit.WSWindow
	ctx := c.Request.Context()

	for {
		var inbound wsInbound
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("ws read error for %s: %v", userID, err)
			}
			return
		}
		if strings.TrimSpace(inbound.Message) == "" {
			if err := conn.WriteJSON(wsOutbound{Type: "error", Error: "empty_message"}); err != nil {
				return
			}
			continue
		}

		allowed, _ := s.limiter.Check(ctx, key, limit, window)
		if !allowed {
			s.metrics.ObserveRateLimitRejection("ws")
			if err := conn.WriteJSON(wsOutbound{
				Type:       "error",
				Error:      "rate_limited",
				RetryAfter: int(window.Seconds()),
			}); err != nil {
				return
			}
			continue
		}

		outcome, err := supervisor.Run(ctx, inbound.Message)
		if err != nil {
			s.logger.Error("ws chat run failed for %s: %v", userID, err)
			if err := conn.WriteJSON(wsOutbound{Type: "error", Error: "agent_failed"}); err != nil {
				return
			}
			continue
		}

		if err := conn.WriteJSON(wsOutbound{
			Type:   "response",
			Agent:  outcome.Agent,
			Steps:  outcome.Steps,
			Result: outcome.FinalResult,
		}); err != nil {
			return
		}
	}
}

// wsUserID authenticates the socket from the Authorization header or, for
// browser clients that cannot set headers on the upgrade, a token query
// parameter. Returns "" when neither is present.
func wsUserID(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return identityFromRequest(auth, "")
	}
	if token := c.Query("token"); token != "" {
		return identityFromRequest("Bearer "+token, "")
	}
	return ""
}
