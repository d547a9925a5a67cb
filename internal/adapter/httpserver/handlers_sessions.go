package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/affinity/internal/affection"
	"github.com/pscheid92/affinity/internal/domain"
	"github.com/pscheid92/affinity/internal/platform/correlation"
	apperrors "github.com/pscheid92/affinity/internal/platform/errors"
	"github.com/sony/gobreaker"
)

const (
	maxTextRunes     = 4000
	maxAnalyzeWindow = 100
)

type textRequest struct {
	Text string `json:"text"`
}

type analyzeRequest struct {
	Text              string        `json:"text"`
	Window            domain.Window `json:"window"`
	Affection         *int          `json:"affection"`
	PreviousAffection *int          `json:"previous_affection"`
}

func (s *Server) registerSessionRoutes() {
	api := s.echo.Group("/api", newRateLimiter(s.config.RateLimitRPS, s.config.RateLimitBurst, s.observability.HTTPMetrics))

	api.POST("/sessions", s.handleCreateSession)
	api.GET("/sessions/:id", s.handleGetSession)
	api.DELETE("/sessions/:id", s.handleDeleteSession)
	api.POST("/sessions/:id/messages", s.handleMessage)
	api.POST("/sessions/:id/replies", s.handleReply)
	api.POST("/sessions/:id/reset", s.handleReset)
	api.POST("/analyze", s.handleAnalyze)
}

func (s *Server) handleCreateSession(c echo.Context) error {
	session, err := s.sessions.CreateSession(c.Request().Context())
	if err != nil {
		return serviceError("failed to create session", err)
	}
	return writeJSON(c, http.StatusCreated, session)
}

func (s *Server) handleGetSession(c echo.Context) error {
	ctx, id, err := sessionContext(c)
	if err != nil {
		return err
	}

	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return serviceError("failed to load session", err).WithField("session_id", id.String())
	}
	return writeJSON(c, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(c echo.Context) error {
	ctx, id, err := sessionContext(c)
	if err != nil {
		return err
	}

	if err := s.sessions.DeleteSession(ctx, id); err != nil {
		return serviceError("failed to delete session", err).WithField("session_id", id.String())
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleMessage(c echo.Context) error {
	ctx, id, err := sessionContext(c)
	if err != nil {
		return err
	}

	var req textRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := validateText(req.Text, true); err != nil {
		return err
	}

	outcome, err := s.sessions.ProcessMessage(ctx, id, req.Text)
	if err != nil {
		return serviceError("failed to process message", err).WithField("session_id", id.String())
	}
	return writeJSON(c, http.StatusOK, outcome)
}

func (s *Server) handleReply(c echo.Context) error {
	ctx, id, err := sessionContext(c)
	if err != nil {
		return err
	}

	var req textRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := validateText(req.Text, false); err != nil {
		return err
	}

	session, err := s.sessions.RecordReply(ctx, id, req.Text)
	if err != nil {
		return serviceError("failed to record reply", err).WithField("session_id", id.String())
	}
	return writeJSON(c, http.StatusOK, session)
}

func (s *Server) handleReset(c echo.Context) error {
	ctx, id, err := sessionContext(c)
	if err != nil {
		return err
	}

	session, err := s.sessions.ResetSession(ctx, id)
	if err != nil {
		return serviceError("failed to reset session", err).WithField("session_id", id.String())
	}
	return writeJSON(c, http.StatusOK, session)
}

// handleAnalyze runs one stateless turn against a caller-supplied window.
func (s *Server) handleAnalyze(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := validateText(req.Text, true); err != nil {
		return err
	}
	if len(req.Window) > maxAnalyzeWindow {
		return apperrors.Validation(fmt.Sprintf("window must not exceed %d turns", maxAnalyzeWindow)).
			WithField("turns", len(req.Window))
	}

	value := s.config.DefaultAffection
	if req.Affection != nil {
		value = *req.Affection
	}
	previous := value
	if req.PreviousAffection != nil {
		previous = *req.PreviousAffection
	}
	state := affection.Restore(value, previous)

	return writeJSON(c, http.StatusOK, s.sessions.Analyze(req.Text, req.Window, state))
}

// sessionContext parses the :id parameter and tags the request context with it.
func sessionContext(c echo.Context) (context.Context, uuid.UUID, error) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, uuid.Nil, apperrors.Validation("invalid session ID").WithField("session_id", raw)
	}

	ctx := correlation.WithSession(c.Request().Context(), id.String())
	c.SetRequest(c.Request().WithContext(ctx))
	return ctx, id, nil
}

// validateText bounds message size. Blank user messages are allowed and analysed as empty
// input; blank replies are not.
func validateText(text string, allowBlank bool) error {
	if !allowBlank && strings.TrimSpace(text) == "" {
		return apperrors.Validation("text must not be empty")
	}
	if n := utf8.RuneCountInString(text); n > maxTextRunes {
		return apperrors.Validation(fmt.Sprintf("text must not exceed %d characters", maxTextRunes)).
			WithField("length", n)
	}
	return nil
}

func serviceError(message string, err error) *apperrors.Error {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return apperrors.NotFound("session not found")
	case errors.Is(err, domain.ErrEmptyMessage):
		return apperrors.Validation("text must not be empty")
	case errors.Is(err, domain.ErrSessionConflict):
		return apperrors.Conflict("session was modified concurrently, retry the request")
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return apperrors.Unavailable("session store unavailable", err)
	default:
		return apperrors.Internal(message, err)
	}
}

func writeJSON(c echo.Context, status int, body any) error {
	if err := c.JSON(status, body); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
