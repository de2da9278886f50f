// Package http exposes the chat API over REST and WebSocket, with per-client
// rate limiting in front of every conversational endpoint.
package http

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	stdhttp "net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"atlas/internal/agents"
	"atlas/internal/config"
	"atlas/internal/logging"
	"atlas/internal/ratelimit"
)

// SupervisorFactory builds (or retrieves) the agent supervisor serving one
// user. The dependency-injection root decides how user-scoped services and
// caches are assembled.
type SupervisorFactory func(userID string) (*agents.Supervisor, error)

// Deps carries everything the server needs. All fields are required except
// Logger, which defaults to the component logger.
type Deps struct {
	Config      config.Config
	Limiter     *ratelimit.Limiter
	Supervisors SupervisorFactory
	Metrics     *Metrics
	Logger      logging.Logger
}

// Server is the HTTP front of the platform.
type Server struct {
	cfg     config.Config
	limiter *ratelimit.Limiter
	factory SupervisorFactory
	metrics *Metrics
	logger  logging.Logger
	httpSrv *stdhttp.Server
}

func NewServer(deps Deps) (*Server, error) {
	if deps.Limiter == nil {
		return nil, fmt.Errorf("limiter is required")
	}
	if deps.Supervisors == nil {
		return nil, fmt.Errorf("supervisor factory is required")
	}
	if deps.Metrics == nil {
		return nil, fmt.Errorf("metrics are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewComponentLogger("server")
	}
	return &Server{
		cfg:     deps.Config,
		limiter: deps.Limiter,
		factory: deps.Supervisors,
		metrics: deps.Metrics,
		logger:  logger,
	}, nil
}

// Router assembles the gin engine with all middleware and routes.
func (s *Server) Router() *gin.Engine {
	if s.cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogMiddleware())
	router.Use(s.corsMiddleware())
	router.Use(s.rateLimitMiddleware())

	router.GET("/health", s.handleHealth)
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	router.POST("/api/chat", s.handleChat)
	router.GET("/ws", s.handleWebSocket)

	return router
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &stdhttp.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening on %s", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return s.httpSrv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(stdhttp.StatusOK, gin.H{"status": "ok"})
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

type chatResponse struct {
	Agent  string `json:"agent"`
	Steps  int    `json:"steps"`
	Result any    `json:"result"`
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(stdhttp.StatusBadRequest, gin.H{"detail": "message is required"})
		return
	}

	userID := identityFromRequest(c.GetHeader("Authorization"), c.ClientIP())
	supervisor, err := s.factory(userID)
	if err != nil {
		s.logger.Error("building supervisor for %s: %v", userID, err)
		c.JSON(stdhttp.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}

	outcome, err := supervisor.Run(c.Request.Context(), req.Message)
	if err != nil {
		s.logger.Error("chat run failed for %s: %v", userID, err)
		c.JSON(stdhttp.StatusInternalServerError, gin.H{"detail": "agent execution failed"})
		return
	}

	c.JSON(stdhttp.StatusOK, chatResponse{
		Agent:  outcome.Agent,
		Steps:  outcome.Steps,
		Result: outcome.FinalResult,
	})
}

// identityFromRequest derives a stable per-user identity. Bearer credentials
// are hashed so the identity never embeds a raw token; anonymous clients are
// identified by IP.
func identityFromRequest(authorizationHeader, clientIP string) string {
	if strings.HasPrefix(authorizationHeader, "Bearer ") {
		sum := sha256.Sum256([]byte(authorizationHeader))
		return hex.EncodeToString(sum[:])[:16]
	}
	if clientIP == "" {
		clientIP = "unknown"
	}
	return "ip:" + clientIP
}
