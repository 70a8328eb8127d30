// tenant_bot.go — tenant/bot directory tables backing internal/tenant's
// §4.6 two-level tenant→bot-id→bot-record cache.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vensus137/coreness-go/internal/repository"
)

// TenantStore persists tenant directory rows.
type TenantStore struct{ BaseStore }

// NewTenantStore wraps a pool.
func NewTenantStore(pool *pgxpool.Pool) *TenantStore {
	return &TenantStore{NewBaseStore(pool)}
}

// GetTenant loads one tenant row by ID, or nil if absent.
func (s *TenantStore) GetTenant(ctx context.Context, tenantID string) (*TenantRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT tenant_id, name, active, config, created_at, updated_at
		   FROM tenants WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return nil, err
	}
	return collectOne[TenantRow](rows)
}

// GetTenantConfig loads tenant config, excluding system columns "id"
// and "processed_at" and any field whose DB value is null, per §4.6's
// "config overlay" contract.
func (s *TenantStore) GetTenantConfig(ctx context.Context, tenantID string) (map[string]any, error) {
	row, err := s.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	raw, _ := row.Config.(map[string]any)
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == "id" || k == "processed_at" || v == nil {
			continue
		}
		out[k] = v
	}
	return out, nil
}

// ListTenantIDs loads every active tenant's ID, for the scheduler's
// cron-entry sweep (scheduler.TenantLister).
func (s *TenantStore) ListTenantIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT tenant_id FROM tenants WHERE active = true`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

var _ repository.TenantRepository = (*tenantRepositoryAdapter)(nil)

// AsRepository adapts the store to repository.TenantRepository.
func (s *TenantStore) AsRepository() repository.TenantRepository {
	return tenantRepositoryAdapter{s}
}

type tenantRepositoryAdapter struct{ s *TenantStore }

func (a tenantRepositoryAdapter) GetTenant(ctx context.Context, tenantID string) (*repository.Tenant, error) {
	row, err := a.s.GetTenant(ctx, tenantID)
	if err != nil || row == nil {
		return nil, err
	}
	cfg, _ := row.Config.(map[string]any)
	return &repository.Tenant{TenantID: row.TenantID, Name: row.Name, Active: row.Active, Config: cfg}, nil
}

func (a tenantRepositoryAdapter) GetTenantConfig(ctx context.Context, tenantID string) (map[string]any, error) {
	return a.s.GetTenantConfig(ctx, tenantID)
}

// BotStore persists bot directory rows.
type BotStore struct{ BaseStore }

// NewBotStore wraps a pool.
func NewBotStore(pool *pgxpool.Pool) *BotStore {
	return &BotStore{NewBaseStore(pool)}
}

// GetBotByTenantID loads the active bot row for a tenant, or nil.
func (s *BotStore) GetBotByTenantID(ctx context.Context, tenantID string) (*BotRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT bot_id, tenant_id, vendor, token, active, config, created_at, updated_at
		   FROM bots WHERE tenant_id = $1 AND active = true LIMIT 1`, tenantID)
	if err != nil {
		return nil, err
	}
	return collectOne[BotRow](rows)
}

// GetBot loads one bot row by ID, or nil if absent.
func (s *BotStore) GetBot(ctx context.Context, botID string) (*BotRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT bot_id, tenant_id, vendor, token, active, config, created_at, updated_at
		   FROM bots WHERE bot_id = $1`, botID)
	if err != nil {
		return nil, err
	}
	return collectOne[BotRow](rows)
}

var _ repository.BotRepository = (*botRepositoryAdapter)(nil)

// AsRepository adapts the store to repository.BotRepository.
func (s *BotStore) AsRepository() repository.BotRepository {
	return botRepositoryAdapter{s}
}

type botRepositoryAdapter struct{ s *BotStore }

func (a botRepositoryAdapter) GetBotByTenantID(ctx context.Context, tenantID string) (*repository.Bot, error) {
	row, err := a.s.GetBotByTenantID(ctx, tenantID)
	return toRepositoryBot(row), err
}

func (a botRepositoryAdapter) GetBot(ctx context.Context, botID string) (*repository.Bot, error) {
	row, err := a.s.GetBot(ctx, botID)
	return toRepositoryBot(row), err
}

func toRepositoryBot(row *BotRow) *repository.Bot {
	if row == nil {
		return nil
	}
	cfg, _ := row.Config.(map[string]any)
	return &repository.Bot{
		BotID: row.BotID, TenantID: row.TenantID, Vendor: row.Vendor,
		Token: row.Token, Active: row.Active, Config: cfg,
	}
}
