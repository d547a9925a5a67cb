package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pscheid92/affinity/internal/adapter/metrics"
	"github.com/pscheid92/affinity/internal/app"
	"github.com/pscheid92/affinity/internal/domain"
	"github.com/pscheid92/affinity/internal/platform/config"
)

var errNotImplemented = errors.New("not implemented")

type mockSessionService struct {
	createFn  func(ctx context.Context) (*domain.Session, error)
	getFn     func(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	messageFn func(ctx context.Context, id uuid.UUID, text string) (*app.TurnOutcome, error)
	replyFn   func(ctx context.Context, id uuid.UUID, text string) (*domain.Session, error)
	resetFn   func(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	deleteFn  func(ctx context.Context, id uuid.UUID) error
	analyzeFn func(text string, window domain.Window, state domain.AffectionState) *app.TurnOutcome
}

func (m *mockSessionService) CreateSession(ctx context.Context) (*domain.Session, error) {
	if m.createFn != nil {
		return m.createFn(ctx)
	}
	return nil, errNotImplemented
}

func (m *mockSessionService) GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, domain.ErrSessionNotFound
}

func (m *mockSessionService) ProcessMessage(ctx context.Context, id uuid.UUID, text string) (*app.TurnOutcome, error) {
	if m.messageFn != nil {
		return m.messageFn(ctx, id, text)
	}
	return nil, errNotImplemented
}

func (m *mockSessionService) RecordReply(ctx context.Context, id uuid.UUID, text string) (*domain.Session, error) {
	if m.replyFn != nil {
		return m.replyFn(ctx, id, text)
	}
	return nil, errNotImplemented
}

func (m *mockSessionService) ResetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	if m.resetFn != nil {
		return m.resetFn(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *mockSessionService) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return errNotImplemented
}

func (m *mockSessionService) Analyze(text string, window domain.Window, state domain.AffectionState) *app.TurnOutcome {
	if m.analyzeFn != nil {
		return m.analyzeFn(text, window, state)
	}
	return &app.TurnOutcome{}
}

// --- Test server ---

type testServerOption func(*testServerParams)

type testServerParams struct {
	config       *config.Config
	healthChecks []HealthCheck
	obs          Observability
	clock        clockwork.Clock
}

func withHealthChecks(checks ...HealthCheck) testServerOption {
	return func(p *testServerParams) { p.healthChecks = checks }
}

func withConfig(fn func(*config.Config)) testServerOption {
	return func(p *testServerParams) { fn(p.config) }
}

func withMetrics(reg *prometheus.Registry) testServerOption {
	return func(p *testServerParams) {
		p.obs = Observability{Registry: reg, HTTPMetrics: metrics.NewHTTPMetrics(reg)}
	}
}

func withClock(clock clockwork.Clock) testServerOption {
	return func(p *testServerParams) { p.clock = clock }
}

func newTestServer(t *testing.T, svc sessionService, opts ...testServerOption) *Server {
	t.Helper()
	p := &testServerParams{
		config: &config.Config{
			Port:             "0",
			DefaultAffection: 15,
			RateLimitRPS:     1000,
			RateLimitBurst:   1000,
		},
		clock: clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return NewServer(p.config, svc, p.obs, p.healthChecks, p.clock)
}

// do sends a request through the full router, middleware included.
func do(srv *Server, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}
