package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapStore() *mapStore { return &mapStore{data: map[string][]byte{}} }

func (m *mapStore) Put(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mapStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (m *mapStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func TestAdminSessionsLifecycle(t *testing.T) {
	ctx := context.Background()
	sessions := NewAdminSessions(newMapStore(), time.Hour)

	sid, err := sessions.Create(ctx, uuid.New())
	require.NoError(t, err)

	active, err := sessions.AdminSessionActive(ctx, sid)
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, sessions.Revoke(ctx, sid))
	active, err = sessions.AdminSessionActive(ctx, sid)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestOAuthStatesSingleUse(t *testing.T) {
	ctx := context.Background()
	states := NewOAuthStates(newMapStore(), time.Minute)
	user := uuid.New()

	state, err := states.Issue(ctx, user, "google")
	require.NoError(t, err)

	_, err = states.Consume(ctx, state, "outlook")
	assert.ErrorIs(t, err, ErrNotFound, "provider mismatch")

	state, _ = states.Issue(ctx, user, "google")
	got, err := states.Consume(ctx, state, "google")
	require.NoError(t, err)
	assert.Equal(t, user, got)

	_, err = states.Consume(ctx, state, "google")
	assert.ErrorIs(t, err, ErrNotFound)
}
