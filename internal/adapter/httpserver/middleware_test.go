package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/pscheid92/affinity/internal/adapter/metrics"
	"github.com/pscheid92/affinity/internal/platform/correlation"
	apperrors "github.com/pscheid92/affinity/internal/platform/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runErrorMiddleware(t *testing.T, m *metrics.HTTPMetrics, handler echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/test", nil), rec)

	require.NoError(t, ErrorHandlingMiddleware(m)(handler)(c))
	return rec
}

func TestErrorHandlingMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   apperrors.ErrorType
		wantMsg    string
	}{
		{"validation", apperrors.Validation("invalid input"), http.StatusBadRequest, apperrors.TypeValidation, "invalid input"},
		{"not found", apperrors.NotFound("session not found"), http.StatusNotFound, apperrors.TypeNotFound, "session not found"},
		{"conflict", apperrors.Conflict("busy"), http.StatusConflict, apperrors.TypeConflict, "busy"},
		{"unavailable", apperrors.Unavailable("store down", errors.New("x")), http.StatusServiceUnavailable, apperrors.TypeUnavailable, "store down"},
		{"untyped", errors.New("standard error"), http.StatusInternalServerError, apperrors.TypeInternal, "internal server error"},
		{"echo bad request", echo.NewHTTPError(http.StatusBadRequest, "bad json"), http.StatusBadRequest, apperrors.TypeValidation, "bad json"},
		{"echo too large", echo.ErrStatusRequestEntityTooLarge, http.StatusRequestEntityTooLarge, apperrors.TypeValidation, "Request Entity Too Large"},
		{"echo not found", echo.ErrNotFound, http.StatusNotFound, apperrors.TypeNotFound, "Not Found"},
		{"echo method", echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed, apperrors.TypeValidation, "Method Not Allowed"},
		{"echo internal", echo.NewHTTPError(http.StatusInternalServerError), http.StatusInternalServerError, apperrors.TypeInternal, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			m := metrics.NewHTTPMetrics(reg)

			rec := runErrorMiddleware(t, m, func(c echo.Context) error { return tt.err })

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp apperrors.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantType, resp.Type)
			assert.Equal(t, tt.wantMsg, resp.Error)
			assert.Equal(t, float64(1), testutil.ToFloat64(m.ErrorsTotal.WithLabelValues(string(tt.wantType))))
		})
	}
}

func TestErrorHandlingMiddleware_NoError(t *testing.T) {
	rec := runErrorMiddleware(t, nil, func(c echo.Context) error {
		return c.String(http.StatusOK, "success")
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", rec.Body.String())
}

func TestErrorHandlingMiddleware_Fields(t *testing.T) {
	rec := runErrorMiddleware(t, nil, func(c echo.Context) error {
		return apperrors.NotFound("session not found").WithField("session_id", "abc")
	})

	assert.JSONEq(t, `{"error":"session not found","type":"not_found","fields":{"session_id":"abc"}}`, rec.Body.String())
}

func TestErrorHandlingMiddleware_CommittedResponse(t *testing.T) {
	rec := runErrorMiddleware(t, nil, func(c echo.Context) error {
		_ = c.String(http.StatusAccepted, "partial")
		return errors.New("late failure")
	})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
}

func TestCorrelationMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"mints when missing", "", false},
		{"adopts valid id", "client-req-42", true},
		{"replaces unsafe id", "bad id\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.incoming != "" {
				req.Header.Set(correlation.Header, tt.incoming)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var seen string
			err := correlationMiddleware(func(c echo.Context) error {
				seen, _ = correlation.ID(c.Request().Context())
				return nil
			})(c)

			require.NoError(t, err)
			require.NotEmpty(t, seen)
			assert.Equal(t, seen, rec.Header().Get(correlation.Header))
			if tt.keep {
				assert.Equal(t, tt.incoming, seen)
			} else {
				assert.NotEqual(t, tt.incoming, seen)
			}
		})
	}
}

func TestRouter_SecurityHeaders(t *testing.T) {
	srv := newTestServer(t, &mockSessionService{})

	rec := do(srv, http.MethodGet, "/health/live", "")

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get(correlation.Header))
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	srv := newTestServer(t, &mockSessionService{}, withMetrics(reg))

	_ = do(srv, http.MethodGet, "/api/sessions/not-a-uuid", "")
	rec := do(srv, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `affinity_http_requests_total{method="GET",route="/api/sessions/:id",status_code="400"} 1`)
	assert.Contains(t, body, `affinity_http_errors_total{type="validation"} 1`)
}

func TestRouter_NoMetricsWithoutRegistry(t *testing.T) {
	srv := newTestServer(t, &mockSessionService{})

	rec := do(srv, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
