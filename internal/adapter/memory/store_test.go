package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/affinity/internal/affection"
	"github.com/pscheid92/affinity/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTTL = time.Hour

func newTestStore() (*Store, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return NewStore(clock, testTTL), clock
}

func newSession(clock clockwork.Clock) *domain.Session {
	now := clock.Now()
	return &domain.Session{
		ID:        uuid.New(),
		Affection: affection.New(15),
		Window: domain.Window{
			{Utterance: domain.Utterance{Text: "hello", Role: domain.RoleUser}, At: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	store, clock := newTestStore()
	ctx := context.Background()
	session := newSession(clock)

	require.NoError(t, store.Save(ctx, session))

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session, got)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store, clock := newTestStore()
	ctx := context.Background()
	session := newSession(clock)
	require.NoError(t, store.Save(ctx, session))

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	got.Affection.Value = 99
	got.Window[0].Utterance.Text = "changed"

	again, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, again.Affection.Value)
	assert.Equal(t, "hello", again.Window[0].Utterance.Text)
}

func TestStore_GetMissing(t *testing.T) {
	store, _ := newTestStore()

	_, err := store.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStore_Expiry(t *testing.T) {
	store, clock := newTestStore()
	ctx := context.Background()
	session := newSession(clock)
	require.NoError(t, store.Save(ctx, session))

	clock.Advance(testTTL - time.Second)
	_, err := store.Get(ctx, session.ID)
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = store.Get(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStore_SaveRefreshesExpiry(t *testing.T) {
	store, clock := newTestStore()
	ctx := context.Background()
	session := newSession(clock)
	require.NoError(t, store.Save(ctx, session))

	clock.Advance(testTTL / 2)
	require.NoError(t, store.Save(ctx, session))
	clock.Advance(testTTL / 2)

	_, err := store.Get(ctx, session.ID)
	assert.NoError(t, err)
}

func TestStore_ZeroTTLNeverExpires(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewStore(clock, 0)
	ctx := context.Background()
	session := newSession(clock)
	require.NoError(t, store.Save(ctx, session))

	clock.Advance(365 * 24 * time.Hour)

	_, err := store.Get(ctx, session.ID)
	assert.NoError(t, err)
}

func TestStore_Delete(t *testing.T) {
	store, clock := newTestStore()
	ctx := context.Background()
	session := newSession(clock)
	require.NoError(t, store.Save(ctx, session))

	require.NoError(t, store.Delete(ctx, session.ID))
	assert.ErrorIs(t, store.Delete(ctx, session.ID), domain.ErrSessionNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestStore_DeleteExpired(t *testing.T) {
	store, clock := newTestStore()
	ctx := context.Background()
	session := newSession(clock)
	require.NoError(t, store.Save(ctx, session))

	clock.Advance(testTTL)

	assert.ErrorIs(t, store.Delete(ctx, session.ID), domain.ErrSessionNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestStore_Sweep(t *testing.T) {
	store, clock := newTestStore()
	ctx := context.Background()

	old := newSession(clock)
	require.NoError(t, store.Save(ctx, old))
	clock.Advance(testTTL / 2)
	fresh := newSession(clock)
	require.NoError(t, store.Save(ctx, fresh))
	clock.Advance(testTTL / 2)

	removed, err := store.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())

	_, err = store.Get(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestStore_SweepCancelled(t *testing.T) {
	store, clock := newTestStore()
	require.NoError(t, store.Save(context.Background(), newSession(clock)))
	clock.Advance(testTTL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	removed, err := store.Sweep(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, removed)
}

func TestStore_Ping(t *testing.T) {
	store, _ := newTestStore()
	assert.NoError(t, store.Ping(context.Background()))
}

func TestStore_StaleWriteConflicts(t *testing.T) {
	store, clock := newTestStore()
	ctx := context.Background()
	session := newSession(clock)
	require.NoError(t, store.Save(ctx, session))
	assert.Equal(t, int64(1), session.Version)

	first, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	second, err := store.Get(ctx, session.ID)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, first))
	assert.ErrorIs(t, store.Save(ctx, second), domain.ErrSessionConflict)

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
}

func TestStore_SaveExpiredSessionIsNotFound(t *testing.T) {
	store, clock := newTestStore()
	ctx := context.Background()
	session := newSession(clock)
	require.NoError(t, store.Save(ctx, session))

	clock.Advance(testTTL)

	assert.ErrorIs(t, store.Save(ctx, session), domain.ErrSessionNotFound)
}
