// Package store provides the pgx-backed persistence layer: tenant/bot
// directory rows, the per-tenant config overlay, and per-user durable
// state. It also declares the row shapes of a scenario-index snapshot
// table and a pending-task table; no store in this package reads or
// writes those two.
package store

import (
	"errors"
	"time"
)

// ========================================
// Sentinel errors (store layer)
// ========================================

var (
	// ErrInvalidKey flags an empty or malformed lookup key.
	ErrInvalidKey = errors.New("invalid store key")

	// ErrReadOnlyViolation flags a query attempting to write.
	ErrReadOnlyViolation = errors.New("read-only violation: write keyword detected")
)

// ========================================
// Tenant / Bot directory — tables tenants, bots
// ========================================

// TenantRow is a tenant directory row (internal/tenant's persistence shape).
type TenantRow struct {
	TenantID  string    `db:"tenant_id" json:"tenant_id"`
	Name      string    `db:"name" json:"name"`
	Active    bool      `db:"active" json:"active"`
	Config    any       `db:"config" json:"config"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// BotRow is a bot directory row scoped to a tenant.
type BotRow struct {
	BotID     string    `db:"bot_id" json:"bot_id"`
	TenantID  string    `db:"tenant_id" json:"tenant_id"`
	Vendor    string    `db:"vendor" json:"vendor"` // "telegram", "github", ...
	Token     string    `db:"token" json:"token"`
	Active    bool      `db:"active" json:"active"`
	Config    any       `db:"config" json:"config"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ========================================
// User state — table user_states (§3 UserState)
// ========================================

// UserStateRow backs internal/userstate's Get/Set when a caller opts into
// durable (cross-process) state instead of the in-memory TTL map.
type UserStateRow struct {
	TenantID  string     `db:"tenant_id" json:"tenant_id"`
	BotID     string     `db:"bot_id" json:"bot_id"`
	UserID    string     `db:"user_id" json:"user_id"`
	State     string     `db:"state" json:"state"`
	StateData any        `db:"state_data" json:"state_data"`
	ExpiresAt *time.Time `db:"expires_at" json:"expires_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// ========================================
// Scenario cache fallback — table scenario_cache_entries
// ========================================

// ScenarioCacheRow is the row shape of a persisted scenario/trigger
// index snapshot (not the §5 in-memory cache itself). No store in this
// package reads or writes it.
type ScenarioCacheRow struct {
	TenantID  string    `db:"tenant_id" json:"tenant_id"`
	IndexJSON []byte    `db:"index_json" json:"index_json"`
	BuiltAt   time.Time `db:"built_at" json:"built_at"`
}

// ========================================
// Task queue fallback — table queue_pending_tasks
// ========================================

// BusPendingRow is the row shape of a task that could not be delivered
// to its in-process queue. No store in this package reads or writes it,
// and nothing replays these rows.
type BusPendingRow struct {
	ID        int64     `db:"id" json:"id"`
	Queue     string    `db:"queue" json:"queue"`
	TaskID    string    `db:"task_id" json:"task_id"`
	Payload   []byte    `db:"payload" json:"payload"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Attempts  int       `db:"attempts" json:"attempts"`
}

// ========================================
// System logs — table system_logs (mirrors pkg/logger.LogEntry)
// ========================================

// SystemLogRow is a read-path projection of the system_logs table the
// DBHandler writes asynchronously.
type SystemLogRow struct {
	ID         int       `db:"id" json:"id"`
	Ts         time.Time `db:"ts" json:"ts"`
	Level      string    `db:"level" json:"level"`
	Logger     string    `db:"logger" json:"logger"`
	Message    string    `db:"message" json:"message"`
	Raw        string    `db:"raw" json:"raw"`
	Source     string    `db:"source" json:"source"`
	Component  string    `db:"component" json:"component"`
	TenantID   string    `db:"tenant_id" json:"tenant_id"`
	BotID      string    `db:"bot_id" json:"bot_id"`
	TraceID    string    `db:"trace_id" json:"trace_id"`
	EventType  string    `db:"event_type" json:"event_type"`
	ToolName   string    `db:"tool_name" json:"tool_name"`
	DurationMS *int      `db:"duration_ms" json:"duration_ms"`
	Extra      any       `db:"extra" json:"extra"`
}
