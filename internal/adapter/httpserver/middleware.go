package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/affinity/internal/adapter/metrics"
	"github.com/pscheid92/affinity/internal/platform/correlation"
	apperrors "github.com/pscheid92/affinity/internal/platform/errors"
)

// correlationMiddleware adopts a well-formed incoming correlation ID or mints one, and echoes
// it in the response.
func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := correlation.Sanitize(c.Request().Header.Get(correlation.Header))
		if id == "" {
			id = correlation.NewID()
		}
		c.Response().Header().Set(correlation.Header, id)

		ctx := correlation.WithID(c.Request().Context(), id)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// ErrorHandlingMiddleware renders every handler error as a typed JSON error. m may be nil.
func ErrorHandlingMiddleware(m *metrics.HTTPMetrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			typed := apperrors.From(err)
			status := typed.HTTPStatus()
			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				typed = fromHTTPError(httpErr)
				status = httpErr.Code
			}

			if m != nil {
				m.ErrorsTotal.WithLabelValues(string(typed.Type)).Inc()
			}
			logError(c, typed, status)

			if c.Response().Committed {
				return nil
			}
			if err := c.JSON(status, typed.ToResponse()); err != nil {
				return fmt.Errorf("failed to write error response: %w", err)
			}
			return nil
		}
	}
}

func logError(c echo.Context, err *apperrors.Error, status int) {
	ctx := c.Request().Context()
	attrs := []any{
		"error_type", err.Type,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", status,
	}
	for k, v := range err.Fields {
		attrs = append(attrs, k, v)
	}
	if err.Cause != nil {
		attrs = append(attrs, "cause", err.Cause)
	}

	switch err.Type {
	case apperrors.TypeValidation, apperrors.TypeNotFound:
		slog.InfoContext(ctx, "Request rejected", attrs...)
	case apperrors.TypeConflict, apperrors.TypeUnavailable:
		slog.WarnContext(ctx, "Request failed", attrs...)
	default:
		slog.ErrorContext(ctx, "Internal error", attrs...)
	}
}

// fromHTTPError maps echo's own errors (routing, binding, body limit) onto typed errors.
// The caller keeps echo's status code.
func fromHTTPError(httpErr *echo.HTTPError) *apperrors.Error {
	message := http.StatusText(httpErr.Code)
	if msg, ok := httpErr.Message.(string); ok && msg != "" {
		message = msg
	}

	var t apperrors.ErrorType
	switch {
	case httpErr.Code == http.StatusNotFound:
		t = apperrors.TypeNotFound
	case httpErr.Code == http.StatusConflict:
		t = apperrors.TypeConflict
	case httpErr.Code == http.StatusServiceUnavailable:
		t = apperrors.TypeUnavailable
	case httpErr.Code >= 400 && httpErr.Code < 500:
		t = apperrors.TypeValidation
	default:
		t = apperrors.TypeInternal
	}

	return &apperrors.Error{Type: t, Message: message, Cause: httpErr.Internal}
}
