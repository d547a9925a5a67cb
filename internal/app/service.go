package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/affinity/internal/affection"
	"github.com/pscheid92/affinity/internal/domain"
	"github.com/pscheid92/affinity/internal/engine"
	"github.com/pscheid92/affinity/internal/platform/retry"
	"golang.org/x/sync/singleflight"
)

// conflictPolicy bounds how often a turn is recomputed after losing a write race to
// another replica.
var conflictPolicy = retry.Policy{
	MaxAttempts:    4,
	InitialBackoff: 5 * time.Millisecond,
	MaxBackoff:     50 * time.Millisecond,
	OnRetry: func(attempt int, err error, backoff time.Duration) {
		slog.Debug("Session changed concurrently, retrying", "attempt", attempt, "backoff", backoff.String())
	},
}

func classifyConflict(err error) retry.Action {
	if errors.Is(err, domain.ErrSessionConflict) {
		return retry.Retry
	}
	return retry.Stop
}

// Settings are the session-level knobs of the service.
type Settings struct {
	WindowSize       int
	DefaultAffection int
}

// TurnOutcome is the result of a processed user turn.
type TurnOutcome struct {
	Session *domain.Session    `json:"session,omitempty"`
	Output  engine.Output      `json:"output"`
	Facts   engine.PromptFacts `json:"facts"`
}

// Service is the application layer. It is the only component that owns session state;
// the engine below it is stateless.
type Service struct {
	store    domain.SessionStore
	engine   *engine.Engine
	clock    clockwork.Clock
	settings Settings
	locks    *keyedMutex
	loads    singleflight.Group
}

func NewService(store domain.SessionStore, eng *engine.Engine, clock clockwork.Clock, settings Settings) *Service {
	return &Service{
		store:    store,
		engine:   eng,
		clock:    clock,
		settings: settings,
		locks:    newKeyedMutex(),
	}
}

// CreateSession starts a session with the default affection and an empty window.
func (s *Service) CreateSession(ctx context.Context) (*domain.Session, error) {
	now := s.clock.Now()
	session := &domain.Session{
		ID:        uuid.New(),
		Affection: affection.New(s.settings.DefaultAffection),
		Window:    domain.Window{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save new session: %w", err)
	}
	slog.InfoContext(ctx, "Session created", "session_id", session.ID.String(), "affection", session.Affection.Value)
	return session, nil
}

// GetSession loads a session. Concurrent loads of the same session are collapsed into one
// store read; callers must treat the result as read-only.
func (s *Service) GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	v, err, _ := s.loads.Do(id.String(), func() (any, error) {
		// The load is shared, so one caller going away must not fail the others.
		return s.store.Get(context.WithoutCancel(ctx), id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Session), nil
}

// ProcessMessage analyses a user message, updates the session's affection and window and saves it.
func (s *Service) ProcessMessage(ctx context.Context, id uuid.UUID, text string) (*TurnOutcome, error) {
	var out engine.Output
	session, err := s.update(ctx, id, func(session *domain.Session) error {
		out = s.engine.Process(engine.Input{
			Text:      text,
			Window:    session.Window,
			Affection: session.Affection,
		})
		result := out.Result
		s.append(session, domain.RoleUser, text, &result)
		session.Affection = out.Affection
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "Message processed",
		"session_id", id.String(),
		"score", out.Result.Score,
		"delta", out.Result.AffectionDelta,
		"affection", out.Affection.Value,
		"stage", out.Affection.Stage)
	if out.Transition.Changed {
		slog.InfoContext(ctx, "Relationship stage changed",
			"session_id", id.String(),
			"from", out.Transition.From,
			"to", out.Transition.To)
	}

	return &TurnOutcome{Session: session, Output: out, Facts: engine.Facts(out)}, nil
}

// RecordReply appends the character's reply to the window. Replies are never analysed.
func (s *Service) RecordReply(ctx context.Context, id uuid.UUID, text string) (*domain.Session, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyMessage
	}
	return s.update(ctx, id, func(session *domain.Session) error {
		s.append(session, domain.RoleCharacter, text, nil)
		return nil
	})
}

// ResetSession clears the window and restores the default affection.
func (s *Service) ResetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	session, err := s.update(ctx, id, func(session *domain.Session) error {
		session.Window = domain.Window{}
		session.Affection = affection.New(s.settings.DefaultAffection)
		session.UpdatedAt = s.clock.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Session reset", "session_id", id.String())
	return session, nil
}

// update runs a read-modify-write on one session. The keyed mutex serializes writers in
// this process; the store's version check catches writers on other replicas, in which
// case mutate runs again on the fresh session.
func (s *Service) update(ctx context.Context, id uuid.UUID, mutate func(*domain.Session) error) (*domain.Session, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	session, err := retry.Do(ctx, conflictPolicy, classifyConflict, func() (*domain.Session, error) {
		session, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := mutate(session); err != nil {
			return nil, err
		}
		if err := s.store.Save(ctx, session); err != nil {
			return nil, err
		}
		return session, nil
	})
	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, domain.ErrSessionNotFound):
		return nil, err
	default:
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
}

// DeleteSession removes a session.
func (s *Service) DeleteSession(ctx context.Context, id uuid.UUID) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	return s.store.Delete(ctx, id)
}

// Analyze processes a turn without any session: the caller supplies window and affection.
func (s *Service) Analyze(text string, window domain.Window, state domain.AffectionState) *TurnOutcome {
	out := s.engine.Process(engine.Input{
		Text:      text,
		Window:    window.Truncate(s.settings.WindowSize),
		Affection: affection.Restore(state.Value, state.PreviousValue),
	})
	return &TurnOutcome{Output: out, Facts: engine.Facts(out)}
}

func (s *Service) append(session *domain.Session, role domain.Role, text string, result *domain.FusedResult) {
	now := s.clock.Now()
	session.Window = append(session.Window, domain.Turn{
		Utterance: domain.Utterance{Text: text, Role: role, Index: session.Window.NextIndex()},
		Result:    result,
		At:        now,
	})
	session.Window = session.Window.Truncate(s.settings.WindowSize)
	session.UpdatedAt = now
}
