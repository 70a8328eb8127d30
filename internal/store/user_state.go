// user_state.go — per-user durable state table backing internal/userstate
// when a caller opts into cross-process state instead of the in-memory
// TTL map. Grounded on user_manager.py's save/get/clear contract.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vensus137/coreness-go/internal/repository"
)

// UserStateStore persists the user_states table.
type UserStateStore struct{ BaseStore }

// NewUserStateStore wraps a pool.
func NewUserStateStore(pool *pgxpool.Pool) *UserStateStore {
	return &UserStateStore{NewBaseStore(pool)}
}

// GetUserState loads one user's state row, or nil if absent.
func (s *UserStateStore) GetUserState(ctx context.Context, tenantID, botID, userID string) (*UserStateRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT tenant_id, bot_id, user_id, state, state_data, expires_at, updated_at
		   FROM user_states WHERE tenant_id = $1 AND bot_id = $2 AND user_id = $3`,
		tenantID, botID, userID)
	if err != nil {
		return nil, err
	}
	return collectOne[UserStateRow](rows)
}

// SetUserState upserts a user's state. An empty state clears the row,
// mirroring user_manager.py's set_user_state treating "" the same as None.
func (s *UserStateStore) SetUserState(ctx context.Context, tenantID, botID, userID, state string, data any, expiresAt *time.Time) error {
	if state == "" {
		return s.ClearUserState(ctx, tenantID, botID, userID)
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_states (tenant_id, bot_id, user_id, state, state_data, expires_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now())
		 ON CONFLICT (tenant_id, bot_id, user_id) DO UPDATE
		   SET state = EXCLUDED.state,
		       state_data = EXCLUDED.state_data,
		       expires_at = EXCLUDED.expires_at,
		       updated_at = now()`,
		tenantID, botID, userID, state, mustMarshalJSON(data), expiresAt)
	return err
}

// ClearUserState deletes a user's state row.
func (s *UserStateStore) ClearUserState(ctx context.Context, tenantID, botID, userID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM user_states WHERE tenant_id = $1 AND bot_id = $2 AND user_id = $3`,
		tenantID, botID, userID)
	return err
}

var _ repository.UserStateRepository = (*userStateRepositoryAdapter)(nil)

// AsRepository adapts the store to repository.UserStateRepository.
func (s *UserStateStore) AsRepository() repository.UserStateRepository {
	return userStateRepositoryAdapter{s}
}

type userStateRepositoryAdapter struct{ s *UserStateStore }

func (a userStateRepositoryAdapter) GetUserState(ctx context.Context, tenantID, botID, userID string) (*repository.UserState, error) {
	row, err := a.s.GetUserState(ctx, tenantID, botID, userID)
	if err != nil || row == nil {
		return nil, err
	}
	return &repository.UserState{State: row.State, Data: row.StateData, ExpiresAt: row.ExpiresAt}, nil
}

func (a userStateRepositoryAdapter) SetUserState(ctx context.Context, tenantID, botID, userID, state string, data any, expiresAt *time.Time) error {
	return a.s.SetUserState(ctx, tenantID, botID, userID, state, data, expiresAt)
}

func (a userStateRepositoryAdapter) ClearUserState(ctx context.Context, tenantID, botID, userID string) error {
	return a.s.ClearUserState(ctx, tenantID, botID, userID)
}
