package http

import (
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas/internal/agents"
	"atlas/internal/config"
	"atlas/internal/google"
	"atlas/internal/llm"
	"atlas/internal/logging"
	"atlas/internal/mailcache"
	"atlas/internal/ratelimit"
)

const oneStepPlan = `[{"step_id": 1, "description": "note the request", "tool": "not_a_registered_tool", "expected_output": "a note", "dependencies": []}]`

func testConfig() config.Config {
	return config.Config{
		Port:        8080,
		Environment: "test",
		RateLimit: config.RateLimitConfig{
			HTTPLimit:     60,
			HTTPWindow:    60 * time.Second,
			WSLimit:       10,
			WSWindow:      60 * time.Second,
			ExcludedPaths: []string{"/docs", "/openapi.json", "/health"},
		},
		Cache: config.CacheConfig{MaxEntriesPerUser: 100, MaxUsers: 100},
	}
}

func newTestServer(t *testing.T, cfg config.Config, client llm.Client) (*Server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mailReg := mailcache.NewRegistry(cfg.Cache.MaxUsers, cfg.Cache.MaxEntriesPerUser)
	factory := func(userID string) (*agents.Supervisor, error) {
		return agents.NewSupervisor(client,
			agents.GmailAgent(google.NewFakeGmail(), mailReg.ForUser(userID)),
			agents.DriveAgent(google.NewFakeDrive()),
			agents.CalendarAgent(google.NewFakeCalendar()),
			agents.TasksAgent(google.NewFakeTasks()),
		)
	}

	srv, err := NewServer(Deps{
		Config:      cfg,
		Limiter:     ratelimit.NewLimiter(ratelimit.NewMemoryStore()),
		Supervisors: factory,
		Metrics:     NewMetrics(mailReg),
		Logger:      logging.Nop(),
	})
	require.NoError(t, err)
	return srv, srv.Router()
}

func TestHealthNeverConsumesRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.HTTPLimit = 1
	client := &llm.MockClient{Responses: []string{"gmail", oneStepPlan}}
	_, router := newTestServer(t, cfg, client)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Remaining"))
	}

	// The budget of one request is still fully available.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	assert.Equal(t, stdhttp.StatusOK, rec.Code)
}

func TestRateLimitRejectsOverLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.HTTPLimit = 2
	client := &llm.MockClient{Responses: []string{"gmail", oneStepPlan}}
	_, router := newTestServer(t, cfg, client)

	do := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{"message":"hi"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer user-token")
		router.ServeHTTP(rec, req)
		return rec
	}

	first := do()
	require.Equal(t, stdhttp.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	second := do()
	require.Equal(t, stdhttp.StatusOK, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))

	third := do()
	assert.Equal(t, stdhttp.StatusTooManyRequests, third.Code)
	assert.Equal(t, "60", third.Header().Get("Retry-After"))
	assert.Equal(t, "0", third.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, third.Body.String(), "Rate limit exceeded")
}

func TestRateLimitKeysClientsSeparately(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.HTTPLimit = 1
	client := &llm.MockClient{Responses: []string{"gmail", oneStepPlan}}
	_, router := newTestServer(t, cfg, client)

	do := func(token string) int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{"message":"hi"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, stdhttp.StatusOK, do("alice"))
	require.Equal(t, stdhttp.StatusTooManyRequests, do("alice"))
	assert.Equal(t, stdhttp.StatusOK, do("bob"))
}

func TestChatReturnsAgentOutcome(t *testing.T) {
	client := &llm.MockClient{Responses: []string{"gmail", oneStepPlan}}
	_, router := newTestServer(t, testConfig(), client)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{"message":"note this down"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	require.Equal(t, stdhttp.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"agent":"gmail"`)
	assert.Contains(t, body, `"steps":1`)
	// Single-step plans surface the raw step result; the unregistered tool
	// fell back to the descriptive placeholder.
	assert.Contains(t, body, "Executed: note the request")
}

func TestChatRequiresMessage(t *testing.T) {
	client := &llm.MockClient{Responses: []string{"gmail", oneStepPlan}}
	_, router := newTestServer(t, testConfig(), client)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
}

func TestMetricsEndpointServes(t *testing.T) {
	client := &llm.MockClient{Responses: []string{"gmail", oneStepPlan}}
	_, router := newTestServer(t, testConfig(), client)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "atlas_mailcache_users")
}

func TestWebSocketRequiresAuth(t *testing.T) {
	client := &llm.MockClient{Responses: []string{"gmail", oneStepPlan}}
	_, router := newTestServer(t, testConfig(), client)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/ws", nil))
	assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)
}

func TestWebSocketRateLimitsPerMessage(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.WSLimit = 1
	client := &llm.MockClient{Responses: []string{"gmail", oneStepPlan}}
	_, router := newTestServer(t, cfg, client)

	ts := httptest.NewServer(router)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?token=alice"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(wsInbound{Message: "first turn"}))
	var first wsOutbound
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "response", first.Type)
	assert.Equal(t, "gmail", first.Agent)

	require.NoError(t, conn.WriteJSON(wsInbound{Message: "second turn"}))
	var second wsOutbound
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, "error", second.Type)
	assert.Equal(t, "rate_limited", second.Error)
	assert.Equal(t, 60, second.RetryAfter)
}
