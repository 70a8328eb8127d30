// Package userstate manages per-user state with TTL (spec.md §3
// UserState): the `text.state` trigger tier (§4.1) checks this for an
// active, non-expired state whose state_type equals the trigger key.
//
// Reads clear an expired record before returning, confirming spec.md's
// Open Question "whether state_data from an expired user-state is
// exposed before lazy cleanup completes" as no (grounded on the
// original's user_manager.py, see SPEC_FULL.md §5/§6).
package userstate

import (
	"context"
	"fmt"
	"time"

	"github.com/vensus137/coreness-go/internal/cache"
	"github.com/vensus137/coreness-go/internal/repository"
	"github.com/vensus137/coreness-go/pkg/errors"
)

// State is one user's active state record.
type State struct {
	StateType string
	StateData any
	ExpiresAt *time.Time // nil means no expiry
}

// expired reports whether the state is past its TTL at t.
func (s State) expired(t time.Time) bool {
	return s.ExpiresAt != nil && !t.Before(*s.ExpiresAt)
}

// Manager is the process-local state store. It uses internal/cache for
// the hot path and an optional repository.UserStateRepository for
// cross-process durability -- state written here survives a restart
// only when a repository is configured.
type Manager struct {
	cache      *cache.Cache
	repo       repository.UserStateRepository
	defaultTTL time.Duration
}

// Option configures a Manager.
type Option func(*Manager)

// WithRepository attaches durable storage consulted on a cache miss.
func WithRepository(repo repository.UserStateRepository) Option {
	return func(m *Manager) { m.repo = repo }
}

// WithDefaultTTL sets the TTL applied when Set is called with ttl<=0.
func WithDefaultTTL(d time.Duration) Option {
	return func(m *Manager) { m.defaultTTL = d }
}

// New builds a Manager backed by c for the hot path.
func New(c *cache.Cache, opts ...Option) *Manager {
	m := &Manager{cache: c, defaultTTL: 600 * time.Second}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func key(tenantID, botID, userID string) string {
	return fmt.Sprintf("userstate:%s:%s:%s", tenantID, botID, userID)
}

// Get returns the user's active state, clearing it first if expired.
// ok is false when no state exists or it was expired and just cleared.
func (m *Manager) Get(ctx context.Context, tenantID, botID, userID string) (State, bool) {
	k := key(tenantID, botID, userID)
	if v, hit := m.cache.Get(k); hit {
		st, _ := v.(State)
		if st.expired(time.Now()) {
			m.clear(ctx, tenantID, botID, userID)
			return State{}, false
		}
		return st, true
	}

	if m.repo == nil {
		return State{}, false
	}
	row, err := m.repo.GetUserState(ctx, tenantID, botID, userID)
	if err != nil || row == nil {
		return State{}, false
	}
	st := State{StateType: row.State, StateData: row.Data, ExpiresAt: row.ExpiresAt}
	if st.expired(time.Now()) {
		m.clear(ctx, tenantID, botID, userID)
		return State{}, false
	}
	m.cache.Set(k, st, ttlUntil(st.ExpiresAt, m.defaultTTL))
	return st, true
}

// Set stores a user's state. ttl<=0 uses the manager's default TTL; a
// zero ExpiresAt on the resulting State means "permanent" only when
// the default TTL is also configured as zero, matching the cache's own
// Set semantics (spec.md §4.5).
func (m *Manager) Set(ctx context.Context, tenantID, botID, userID, stateType string, data any, ttl time.Duration) error {
	const op = "userstate.Manager.Set"
	effective := ttl
	if effective <= 0 {
		effective = m.defaultTTL
	}
	var expiresAt *time.Time
	if effective > 0 {
		t := time.Now().Add(effective)
		expiresAt = &t
	}
	st := State{StateType: stateType, StateData: data, ExpiresAt: expiresAt}
	m.cache.Set(key(tenantID, botID, userID), st, effective)

	if m.repo != nil {
		if err := m.repo.SetUserState(ctx, tenantID, botID, userID, stateType, data, expiresAt); err != nil {
			return errors.Wrap(err, op, "durable user state write failed")
		}
	}
	return nil
}

// Clear removes a user's state immediately.
func (m *Manager) Clear(ctx context.Context, tenantID, botID, userID string) error {
	return m.clear(ctx, tenantID, botID, userID)
}

func (m *Manager) clear(ctx context.Context, tenantID, botID, userID string) error {
	m.cache.Delete(key(tenantID, botID, userID))
	if m.repo != nil {
		return m.repo.ClearUserState(ctx, tenantID, botID, userID)
	}
	return nil
}

// HasActive reports whether the user currently holds a non-expired
// state whose StateType equals stateType -- the exact predicate the
// `text.state` trigger tier (spec.md §4.1 row 2) evaluates.
func (m *Manager) HasActive(ctx context.Context, tenantID, botID, userID, stateType string) bool {
	st, ok := m.Get(ctx, tenantID, botID, userID)
	return ok && st.StateType == stateType
}

func ttlUntil(expiresAt *time.Time, fallback time.Duration) time.Duration {
	if expiresAt == nil {
		return 0
	}
	d := time.Until(*expiresAt)
	if d <= 0 {
		return time.Nanosecond
	}
	return d
}
