package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is the unit the persistence collaborator stores. Version counts successful
// saves and guards against lost updates between replicas.
type Session struct {
	ID        uuid.UUID      `json:"id"`
	Affection AffectionState `json:"affection"`
	Window    Window         `json:"window"`
	Version   int64          `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// SessionStore abstracts durable session storage.
//
// Save is a compare-and-set: it succeeds only if the stored version still equals
// session.Version (zero for a session that does not exist yet), and then increments
// session.Version. A lost race returns ErrSessionConflict; a session that vanished
// since it was read returns ErrSessionNotFound.
type SessionStore interface {
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id uuid.UUID) error
	Ping(ctx context.Context) error
}

// SessionSweeper is implemented by stores that expire sessions themselves rather than
// relying on the backend's TTL.
type SessionSweeper interface {
	Sweep(ctx context.Context) (int, error)
}
