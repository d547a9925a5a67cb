package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/affinity/internal/adapter/memory"
	"github.com/pscheid92/affinity/internal/app"
	"github.com/pscheid92/affinity/internal/character"
	"github.com/pscheid92/affinity/internal/domain"
	"github.com/pscheid92/affinity/internal/engine"
	"github.com/pscheid92/affinity/internal/platform/config"
	"github.com/pscheid92/affinity/internal/platform/correlation"
	apperrors "github.com/pscheid92/affinity/internal/platform/errors"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServiceServer(t *testing.T) *Server {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	store := memory.NewStore(clock, time.Hour)
	eng := engine.New(character.DefaultProfile(), engine.DefaultOptions(), nil)
	svc := app.NewService(store, eng, clock, app.Settings{WindowSize: 10, DefaultAffection: 15})
	return newTestServer(t, svc, withClock(clock))
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v))
	return v
}

func createSession(t *testing.T, srv *Server) domain.Session {
	t.Helper()
	rec := do(srv, http.MethodPost, "/api/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[domain.Session](t, rec.Body.Bytes())
}

func TestSessionLifecycle(t *testing.T) {
	srv := newServiceServer(t)

	session := createSession(t, srv)
	assert.Equal(t, 15, session.Affection.Value)
	path := "/api/sessions/" + session.ID.String()

	rec := do(srv, http.MethodPost, path+"/messages", `{"text":"ありがとう"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	outcome := decode[app.TurnOutcome](t, rec.Body.Bytes())
	assert.Greater(t, outcome.Output.Result.Score, 0.0)
	assert.Greater(t, outcome.Session.Affection.Value, 15)
	assert.Equal(t, outcome.Session.Affection.Value, outcome.Facts.Affection)

	rec = do(srv, http.MethodPost, path+"/replies", `{"text":"べ、別にあんたのためじゃないんだからね"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	replied := decode[domain.Session](t, rec.Body.Bytes())
	require.Len(t, replied.Window, 2)
	assert.Equal(t, domain.RoleCharacter, replied.Window[1].Utterance.Role)
	assert.Nil(t, replied.Window[1].Result)

	rec = do(srv, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[domain.Session](t, rec.Body.Bytes()).Window, 2)

	rec = do(srv, http.MethodPost, path+"/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	reset := decode[domain.Session](t, rec.Body.Bytes())
	assert.Empty(t, reset.Window)
	assert.Equal(t, 15, reset.Affection.Value)

	rec = do(srv, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(srv, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleMessage_TsundereFarewell(t *testing.T) {
	srv := newServiceServer(t)
	session := createSession(t, srv)

	rec := do(srv, http.MethodPost, "/api/sessions/"+session.ID.String()+"/messages", `{"text":"じゃあな"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	outcome := decode[app.TurnOutcome](t, rec.Body.Bytes())
	assert.True(t, outcome.Output.Result.Farewell.IsFarewell)
	assert.False(t, outcome.Output.Result.Farewell.IsConversationEnd)
	assert.Equal(t, domain.InterpretationTsundereFarewell, outcome.Facts.Interpretation)
	assert.GreaterOrEqual(t, outcome.Output.Result.AffectionDelta, 0)
}

func TestHandleMessage_BlankTextIsNeutral(t *testing.T) {
	srv := newServiceServer(t)
	session := createSession(t, srv)

	rec := do(srv, http.MethodPost, "/api/sessions/"+session.ID.String()+"/messages", `{"text":"   "}`)
	require.Equal(t, http.StatusOK, rec.Code)

	outcome := decode[app.TurnOutcome](t, rec.Body.Bytes())
	assert.Equal(t, 0, outcome.Output.Result.AffectionDelta)
	assert.Equal(t, 15, outcome.Session.Affection.Value)
}

func TestHandleAnalyze(t *testing.T) {
	srv := newServiceServer(t)

	rec := do(srv, http.MethodPost, "/api/analyze", `{"text":"大好き","affection":50}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	outcome := decode[app.TurnOutcome](t, rec.Body.Bytes())
	assert.Nil(t, outcome.Session)
	assert.Greater(t, outcome.Output.Affection.Value, 50)
}

func TestHandleAnalyze_AffectionState(t *testing.T) {
	tests := []struct {
		name string
		body string
		want domain.AffectionState
	}{
		{"defaults", `{"text":"hi"}`, domain.AffectionState{Value: 42, PreviousValue: 42, Stage: domain.StageCautious}},
		{"value only", `{"text":"hi","affection":70}`, domain.AffectionState{Value: 70, PreviousValue: 70, Stage: domain.StageWarm}},
		{"with previous value", `{"text":"hi","affection":30,"previous_affection":24}`, domain.AffectionState{Value: 30, PreviousValue: 24, Stage: domain.StageCautious}},
		{"clamped", `{"text":"hi","affection":130,"previous_affection":-5}`, domain.AffectionState{Value: 100, PreviousValue: 0, Stage: domain.StageClose}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got domain.AffectionState
			srv := newTestServer(t, &mockSessionService{
				analyzeFn: func(text string, window domain.Window, state domain.AffectionState) *app.TurnOutcome {
					got = state
					return &app.TurnOutcome{}
				},
			}, withConfig(func(c *config.Config) { c.DefaultAffection = 42 }))

			rec := do(srv, http.MethodPost, "/api/analyze", tt.body)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandleAnalyze_PreviousAffectionDampsMomentum(t *testing.T) {
	srv := newServiceServer(t)

	steady := decode[app.TurnOutcome](t, do(srv, http.MethodPost, "/api/analyze",
		`{"text":"大好き","affection":50}`).Body.Bytes())
	rising := decode[app.TurnOutcome](t, do(srv, http.MethodPost, "/api/analyze",
		`{"text":"大好き","affection":50,"previous_affection":44}`).Body.Bytes())

	assert.Equal(t, steady.Output.Result.AffectionDelta, rising.Output.Result.AffectionDelta)
	assert.Less(t, rising.Output.Affection.Value, steady.Output.Affection.Value)
	assert.Equal(t, 50, rising.Output.Affection.PreviousValue)
}

func TestHandleAnalyze_WindowTooLong(t *testing.T) {
	srv := newTestServer(t, &mockSessionService{})

	turns := make([]string, maxAnalyzeWindow+1)
	for i := range turns {
		turns[i] = fmt.Sprintf(`{"utterance":{"text":"t","role":"user","index":%d}}`, i)
	}
	body := `{"text":"hi","window":[` + strings.Join(turns, ",") + `]}`

	rec := do(srv, http.MethodPost, "/api/analyze", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "window must not exceed")
}

func TestSessionHandlers_Errors(t *testing.T) {
	id := uuid.New()
	path := "/api/sessions/" + id.String()

	tests := []struct {
		name       string
		svc        *mockSessionService
		method     string
		target     string
		body       string
		wantStatus int
		wantType   apperrors.ErrorType
	}{
		{
			name:       "invalid id",
			svc:        &mockSessionService{},
			method:     http.MethodGet,
			target:     "/api/sessions/not-a-uuid",
			wantStatus: http.StatusBadRequest,
			wantType:   apperrors.TypeValidation,
		},
		{
			name:       "unknown session",
			svc:        &mockSessionService{},
			method:     http.MethodGet,
			target:     path,
			wantStatus: http.StatusNotFound,
			wantType:   apperrors.TypeNotFound,
		},
		{
			name: "delete unknown session",
			svc: &mockSessionService{deleteFn: func(context.Context, uuid.UUID) error {
				return fmt.Errorf("delete: %w", domain.ErrSessionNotFound)
			}},
			method:     http.MethodDelete,
			target:     path,
			wantStatus: http.StatusNotFound,
			wantType:   apperrors.TypeNotFound,
		},
		{
			name:       "blank reply",
			svc:        &mockSessionService{},
			method:     http.MethodPost,
			target:     path + "/replies",
			body:       `{"text":"  "}`,
			wantStatus: http.StatusBadRequest,
			wantType:   apperrors.TypeValidation,
		},
		{
			name:       "text too long",
			svc:        &mockSessionService{},
			method:     http.MethodPost,
			target:     path + "/messages",
			body:       `{"text":"` + strings.Repeat("あ", maxTextRunes+1) + `"}`,
			wantStatus: http.StatusBadRequest,
			wantType:   apperrors.TypeValidation,
		},
		{
			name:       "malformed json",
			svc:        &mockSessionService{},
			method:     http.MethodPost,
			target:     path + "/messages",
			body:       `{"text":`,
			wantStatus: http.StatusBadRequest,
			wantType:   apperrors.TypeValidation,
		},
		{
			name: "store breaker open",
			svc: &mockSessionService{messageFn: func(context.Context, uuid.UUID, string) (*app.TurnOutcome, error) {
				return nil, fmt.Errorf("get session failed: %w", gobreaker.ErrOpenState)
			}},
			method:     http.MethodPost,
			target:     path + "/messages",
			body:       `{"text":"hi"}`,
			wantStatus: http.StatusServiceUnavailable,
			wantType:   apperrors.TypeUnavailable,
		},
		{
			name: "concurrent write",
			svc: &mockSessionService{messageFn: func(context.Context, uuid.UUID, string) (*app.TurnOutcome, error) {
				return nil, fmt.Errorf("failed to update session: %w", domain.ErrSessionConflict)
			}},
			method:     http.MethodPost,
			target:     path + "/messages",
			body:       `{"text":"hi"}`,
			wantStatus: http.StatusConflict,
			wantType:   apperrors.TypeConflict,
		},
		{
			name: "store failure",
			svc: &mockSessionService{resetFn: func(context.Context, uuid.UUID) (*domain.Session, error) {
				return nil, fmt.Errorf("save session failed: boom")
			}},
			method:     http.MethodPost,
			target:     path + "/reset",
			wantStatus: http.StatusInternalServerError,
			wantType:   apperrors.TypeInternal,
		},
		{
			name:       "create failure",
			svc:        &mockSessionService{},
			method:     http.MethodPost,
			target:     "/api/sessions",
			wantStatus: http.StatusInternalServerError,
			wantType:   apperrors.TypeInternal,
		},
		{
			name:       "unknown route",
			svc:        &mockSessionService{},
			method:     http.MethodGet,
			target:     "/api/nope",
			wantStatus: http.StatusNotFound,
			wantType:   apperrors.TypeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.svc)

			rec := do(srv, tt.method, tt.target, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decode[apperrors.Response](t, rec.Body.Bytes())
			assert.Equal(t, tt.wantType, resp.Type)
			assert.NotContains(t, rec.Body.String(), "boom")
		})
	}
}

func TestSessionHandlers_TagSessionInContext(t *testing.T) {
	id := uuid.New()
	var tagged string
	srv := newTestServer(t, &mockSessionService{
		getFn: func(ctx context.Context, got uuid.UUID) (*domain.Session, error) {
			tagged, _ = correlation.Session(ctx)
			return &domain.Session{ID: got}, nil
		},
	})

	rec := do(srv, http.MethodGet, "/api/sessions/"+id.String(), "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id.String(), tagged)
}
