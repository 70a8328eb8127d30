// Package repository declares the persistence-layer contracts the rest
// of the platform depends on, without depending on how they're
// satisfied. spec.md reduces the database repository layer to "method
// signatures the core consumes" — this package is exactly that
// boundary; internal/store provides the pgx-backed implementations
// that satisfy it (each store type exposes an AsRepository adapter).
package repository

import (
	"context"
	"time"
)

// Tenant is a tenant directory record.
type Tenant struct {
	TenantID string
	Name     string
	Active   bool
	Config   map[string]any
}

// Bot is a bot directory record scoped to a tenant.
type Bot struct {
	BotID    string
	TenantID string
	Vendor   string
	Token    string
	Active   bool
	Config   map[string]any
}

// UserState is one user's durable state record.
type UserState struct {
	State     string
	Data      any
	ExpiresAt *time.Time
}

// TenantRepository persists and retrieves tenant directory records.
type TenantRepository interface {
	GetTenant(ctx context.Context, tenantID string) (*Tenant, error)
	GetTenantConfig(ctx context.Context, tenantID string) (map[string]any, error)
}

// BotRepository persists and retrieves bot directory records.
type BotRepository interface {
	GetBotByTenantID(ctx context.Context, tenantID string) (*Bot, error)
	GetBot(ctx context.Context, botID string) (*Bot, error)
}

// UserStateRepository persists per-user state durably, backing
// internal/userstate when a caller opts into cross-process state
// instead of the in-memory TTL map.
type UserStateRepository interface {
	GetUserState(ctx context.Context, tenantID, botID, userID string) (*UserState, error)
	SetUserState(ctx context.Context, tenantID, botID, userID, state string, data any, expiresAt *time.Time) error
	ClearUserState(ctx context.Context, tenantID, botID, userID string) error
}
