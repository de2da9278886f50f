// Command atlas-server runs the Workspace assistant API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"atlas/internal/agents"
	"atlas/internal/config"
	atlaserrors "atlas/internal/errors"
	"atlas/internal/google"
	"atlas/internal/llm"
	"atlas/internal/logging"
	"atlas/internal/mailcache"
	"atlas/internal/ratelimit"
	server "atlas/internal/server/http"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "atlas-server",
		Short:   "Google Workspace assistant API server",
		Version: version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context())
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(viper.New())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger := logging.NewComponentLogger("main")
	logger.Info("starting atlas-server %s (env=%s)", version, cfg.Environment)

	store, cleanup, err := buildStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	retryCfg := atlaserrors.DefaultRetryConfig()
	if cfg.LLM.MaxRetries > 0 {
		retryCfg.MaxAttempts = cfg.LLM.MaxRetries
	}
	client := llm.WrapWithRetry(
		llm.NewOpenAIClient(cfg.LLM.Model, llm.Config{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Timeout: cfg.LLM.TimeoutSeconds,
		}),
		retryCfg,
	)

	mailReg := mailcache.NewRegistry(cfg.Cache.MaxUsers, cfg.Cache.MaxEntriesPerUser)

	// Workspace service construction is the integration seam: swap the fakes
	// for real API-backed clients once per-user OAuth credentials are plumbed
	// through. The Gmail throttle applies either way.
	factory := func(userID string) (*agents.Supervisor, error) {
		gmail := google.ThrottleGmail(google.NewFakeGmail())
		return agents.NewSupervisor(client,
			agents.GmailAgent(gmail, mailReg.ForUser(userID)),
			agents.DriveAgent(google.NewFakeDrive()),
			agents.CalendarAgent(google.NewFakeCalendar()),
			agents.TasksAgent(google.NewFakeTasks()),
		)
	}

	srv, err := server.NewServer(server.Deps{
		Config:      cfg,
		Limiter:     ratelimit.NewLimiter(store),
		Supervisors: factory,
		Metrics:     server.NewMetrics(mailReg),
	})
	if err != nil {
		return err
	}

	return srv.Start(ctx)
}

// buildStore picks the rate-limit counting store. Redis keeps limits correct
// across replicas; the memory store is for single-node and local runs.
func buildStore(ctx context.Context, cfg config.Config, logger logging.Logger) (ratelimit.Store, func(), error) {
	if !cfg.Redis.Enabled {
		logger.Info("rate limiting with in-process store")
		return ratelimit.NewMemoryStore(), func() {}, nil
	}

	store := ratelimit.NewRedisStore(ratelimit.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("redis unreachable at %s: %w", cfg.Redis.Addr, err)
	}
	logger.Info("rate limiting with redis at %s", cfg.Redis.Addr)
	return store, func() { _ = store.Close() }, nil
}
