package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("redis down")

	tests := []struct {
		name   string
		err    *Error
		typ    ErrorType
		status int
	}{
		{"validation", Validation("bad input"), TypeValidation, http.StatusBadRequest},
		{"not found", NotFound("no session"), TypeNotFound, http.StatusNotFound},
		{"conflict", Conflict("busy"), TypeConflict, http.StatusConflict},
		{"unavailable", Unavailable("store down", cause), TypeUnavailable, http.StatusServiceUnavailable},
		{"internal", Internal("boom", cause), TypeInternal, http.StatusInternalServerError},
		{"unknown type", &Error{Type: "weird", Message: "x"}, "weird", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.err.Type)
			assert.Equal(t, tt.status, tt.err.HTTPStatus())
			assert.Contains(t, tt.err.Error(), string(tt.typ))
		})
	}
}

func TestError_MessageIncludesCause(t *testing.T) {
	err := Internal("failed to save session", errors.New("connection refused"))

	assert.Equal(t, "internal: failed to save session: connection refused", err.Error())
	assert.Equal(t, "not_found: no session", NotFound("no session").Error())
}

func TestError_Unwrap(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := fmt.Errorf("outer: %w", Unavailable("store down", sentinel))

	assert.ErrorIs(t, err, sentinel)
}

func TestError_WithField(t *testing.T) {
	err := NotFound("session not found").WithField("session_id", "abc").WithField("attempt", 2)

	assert.Equal(t, map[string]any{"session_id": "abc", "attempt": 2}, err.Fields)
}

func TestError_ToResponseHidesCause(t *testing.T) {
	err := Internal("failed to save session", errors.New("secret dsn")).WithField("session_id", "abc")

	resp := err.ToResponse()
	assert.Equal(t, "failed to save session", resp.Error)
	assert.Equal(t, TypeInternal, resp.Type)
	assert.Equal(t, "abc", resp.Fields["session_id"])
	assert.NotContains(t, fmt.Sprint(resp), "secret dsn")
}

func TestFrom(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, From(nil))
	})

	t.Run("typed error passes through", func(t *testing.T) {
		typed := Validation("bad")
		assert.Same(t, typed, From(fmt.Errorf("wrapped: %w", typed)))
	})

	t.Run("untyped error becomes internal", func(t *testing.T) {
		cause := errors.New("boom")
		got := From(cause)
		require.NotNil(t, got)
		assert.Equal(t, TypeInternal, got.Type)
		assert.ErrorIs(t, got, cause)
	})
}
