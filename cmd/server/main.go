package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pscheid92/affinity/internal/adapter/httpserver"
	"github.com/pscheid92/affinity/internal/adapter/memory"
	"github.com/pscheid92/affinity/internal/adapter/metrics"
	"github.com/pscheid92/affinity/internal/adapter/redis"
	"github.com/pscheid92/affinity/internal/app"
	"github.com/pscheid92/affinity/internal/character"
	"github.com/pscheid92/affinity/internal/domain"
	"github.com/pscheid92/affinity/internal/engine"
	"github.com/pscheid92/affinity/internal/platform/config"
	"github.com/pscheid92/affinity/internal/platform/logging"
	"github.com/pscheid92/affinity/internal/platform/version"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// slog is not configured yet
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// setupProfile loads the character profile. A broken profile file is not fatal: the engine
// runs keyword-only and marks every result as profile-unavailable.
func setupProfile(cfg *config.Config) *character.CompiledProfile {
	if cfg.ProfilePath == "" {
		profile := character.DefaultProfile()
		slog.Info("Using built-in character profile", "profile", profile.Name)
		return profile
	}

	profile, err := character.Load(cfg.ProfilePath)
	if err != nil {
		slog.Warn("Character profile unavailable, continuing keyword-only", "path", cfg.ProfilePath, "error", err)
		return nil
	}
	slog.Info("Loaded character profile", "profile", profile.Name, "path", cfg.ProfilePath)
	return profile
}

type storeSetup struct {
	store   domain.SessionStore
	sweeper *app.Sweeper
	close   func()
}

func setupStore(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, clock clockwork.Clock) storeSetup {
	if !cfg.UsesRedis() {
		slog.Info("REDIS_URL not set, keeping sessions in memory")
		store := memory.NewStore(clock, cfg.SessionTTL)
		return storeSetup{
			store:   store,
			sweeper: app.NewSweeper(store, clock, cfg.SweepInterval),
			close:   func() {},
		}
	}

	client, err := redis.NewClient(ctx, cfg.RedisURL, metrics.NewRedisMetrics(reg), clock)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return storeSetup{
		store: redis.NewSessionStore(client, cfg.SessionTTL),
		close: func() { _ = client.Close() },
	}
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()
	logging.InitLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.Get().Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()

	stores := setupStore(ctx, cfg, reg, clock)
	defer stores.close()

	profile := setupProfile(cfg)
	eng := engine.New(profile, engine.DefaultOptions(), metrics.NewEngineMetrics(reg))

	appSvc := app.NewService(stores.store, eng, clock, app.Settings{
		WindowSize:       cfg.WindowSize,
		DefaultAffection: cfg.DefaultAffection,
	})

	if stores.sweeper != nil {
		go stores.sweeper.Run(ctx)
	}

	srv := httpserver.NewServer(cfg, appSvc,
		httpserver.Observability{Registry: reg, HTTPMetrics: metrics.NewHTTPMetrics(reg)},
		[]httpserver.HealthCheck{{Name: "session_store", Check: stores.store.Ping}},
		clock,
	)

	serverErr := make(chan error, 1)
	go func() { serverErr <- srv.Start() }()

	select {
	case err := <-serverErr:
		if err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
		return
	case <-ctx.Done():
	}

	slog.Info("Shutdown signal received, cleaning up...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
	slog.Info("Server stopped")
}
