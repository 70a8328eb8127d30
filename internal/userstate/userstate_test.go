package userstate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vensus137/coreness-go/internal/cache"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	c := cache.New(cache.WithCleanupInterval(time.Hour))
	t.Cleanup(c.Shutdown)
	return New(c, WithDefaultTTL(time.Hour))
}

func TestManager_SetGet(t *testing.T) {
	m := newManager(t)
	require.NoError(t, m.Set(context.Background(), "t1", "b1", "u1", "awaiting_name", map[string]any{"x": 1}, time.Minute))

	st, ok := m.Get(context.Background(), "t1", "b1", "u1")
	require.True(t, ok)
	assert.Equal(t, "awaiting_name", st.StateType)
}

func TestManager_HasActive(t *testing.T) {
	m := newManager(t)
	require.NoError(t, m.Set(context.Background(), "t1", "b1", "u1", "awaiting_name", nil, time.Minute))

	assert.True(t, m.HasActive(context.Background(), "t1", "b1", "u1", "awaiting_name"))
	assert.False(t, m.HasActive(context.Background(), "t1", "b1", "u1", "other_state"))
	assert.False(t, m.HasActive(context.Background(), "t1", "b1", "nobody", "awaiting_name"))
}

func TestManager_ExpiredStateClearedBeforeExposed(t *testing.T) {
	m := newManager(t)
	require.NoError(t, m.Set(context.Background(), "t1", "b1", "u1", "awaiting_name", map[string]any{"secret": true}, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	st, ok := m.Get(context.Background(), "t1", "b1", "u1")
	assert.False(t, ok)
	assert.Nil(t, st.StateData, "expired state_data must never be exposed")

	_, ok = m.Get(context.Background(), "t1", "b1", "u1")
	assert.False(t, ok, "state must stay cleared after the lazy cleanup ran")
}

func TestManager_Clear(t *testing.T) {
	m := newManager(t)
	require.NoError(t, m.Set(context.Background(), "t1", "b1", "u1", "awaiting_name", nil, time.Minute))
	require.NoError(t, m.Clear(context.Background(), "t1", "b1", "u1"))

	_, ok := m.Get(context.Background(), "t1", "b1", "u1")
	assert.False(t, ok)
}
