// Package httpserver exposes the session service over a JSON HTTP API.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pscheid92/affinity/internal/adapter/metrics"
	"github.com/pscheid92/affinity/internal/app"
	"github.com/pscheid92/affinity/internal/domain"
	"github.com/pscheid92/affinity/internal/platform/config"
)

type sessionService interface {
	CreateSession(ctx context.Context) (*domain.Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	ProcessMessage(ctx context.Context, id uuid.UUID, text string) (*app.TurnOutcome, error)
	RecordReply(ctx context.Context, id uuid.UUID, text string) (*domain.Session, error)
	ResetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
	Analyze(text string, window domain.Window, state domain.AffectionState) *app.TurnOutcome
}

// Observability groups the optional metrics collaborators. A nil Registry disables /metrics.
type Observability struct {
	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTPMetrics
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	sessions      sessionService
	observability Observability
	healthChecks  []HealthCheck

	clock     clockwork.Clock
	startTime time.Time
}

func NewServer(cfg *config.Config, sessions sessionService, obs Observability, healthChecks []HealthCheck, clock clockwork.Clock) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:          e,
		config:        cfg,
		sessions:      sessions,
		observability: obs,
		healthChecks:  healthChecks,
		clock:         clock,
		startTime:     clock.Now(),
	}

	srv.registerRoutes()

	return srv
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
