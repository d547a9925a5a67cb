package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/affinity/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

func sessionKey(id uuid.UUID) string {
	return keyPrefix + id.String()
}

// SessionStore implements domain.SessionStore. Expiry is left to Redis; writes are
// optimistic and safe across replicas.
type SessionStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

var _ domain.SessionStore = (*SessionStore)(nil)

func NewSessionStore(rdb *goredis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func (s *SessionStore) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	data, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session failed: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session failed: %w", err)
	}
	return &session, nil
}

// Save writes session under WATCH, so a concurrent write from another replica aborts the
// transaction instead of being overwritten.
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	key := sessionKey(session.ID)
	next := *session
	next.Version++
	data, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("encode session failed: %w", err)
	}

	err = s.rdb.Watch(ctx, func(tx *goredis.Tx) error {
		stored, exists, err := storedVersion(ctx, tx, key)
		if err != nil {
			return err
		}
		switch {
		case !exists && session.Version > 0:
			return domain.ErrSessionNotFound
		case exists && stored != session.Version:
			return domain.ErrSessionConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		session.Version = next.Version
		return nil
	case errors.Is(err, goredis.TxFailedErr):
		return domain.ErrSessionConflict
	case errors.Is(err, domain.ErrSessionConflict), errors.Is(err, domain.ErrSessionNotFound):
		return err
	default:
		return fmt.Errorf("save session failed: %w", err)
	}
}

func storedVersion(ctx context.Context, tx *goredis.Tx, key string) (int64, bool, error) {
	data, err := tx.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	var stored struct {
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(data, &stored); err != nil {
		return 0, false, fmt.Errorf("decode session failed: %w", err)
	}
	return stored.Version, true, nil
}

func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.rdb.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("delete session failed: %w", err)
	}
	if n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
