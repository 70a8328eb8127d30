// Package tenant resolves tenant_id -> bot_id -> bot_record with
// caching, keeps a separate per-tenant config overlay, and records
// per-tenant last-success/last-failure metadata (spec.md §4.6).
//
// It sits on top of internal/cache for the TTL/key-pattern machinery
// and internal/repository for persistence, never internal/store
// directly, so a fake repository can stand in for tests.
package tenant

import (
	"context"
	"fmt"
	"time"

	"github.com/vensus137/coreness-go/internal/cache"
	"github.com/vensus137/coreness-go/internal/repository"
	"github.com/vensus137/coreness-go/pkg/errors"
	"github.com/vensus137/coreness-go/pkg/logger"
)

// Meta is the per-tenant last-success/last-failure record cached at
// "tenant:{id}:meta".
type Meta struct {
	LastUpdatedAt time.Time `json:"last_updated_at"`
	LastFailedAt  time.Time `json:"last_failed_at,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
}

// Directory is the tenant/bot directory cache.
type Directory struct {
	cache   *cache.Cache
	tenants repository.TenantRepository
	bots    repository.BotRepository
}

// New builds a Directory backed by c for caching and repo for the
// DB-on-miss path.
func New(c *cache.Cache, tenants repository.TenantRepository, bots repository.BotRepository) *Directory {
	return &Directory{cache: c, tenants: tenants, bots: bots}
}

func botIDKey(tenantID string) string { return fmt.Sprintf("tenant:%s:bot_id", tenantID) }
func botKey(botID string) string      { return fmt.Sprintf("bot:%s", botID) }
func metaKey(tenantID string) string  { return fmt.Sprintf("tenant:%s:meta", tenantID) }
func configKey(tenantID string) string { return fmt.Sprintf("tenant:%s:config", tenantID) }

// GetBotByTenantID resolves the structured bot record for a tenant,
// going DB->cache on miss for both the tenant->bot_id mapping and the
// bot record itself. Always emits the bot_id field on the result.
func (d *Directory) GetBotByTenantID(ctx context.Context, tenantID string) (*repository.Bot, error) {
	const op = "tenant.Directory.GetBotByTenantID"

	var botID string
	if v, ok := d.cache.Get(botIDKey(tenantID)); ok {
		botID, _ = v.(string)
	}
	if botID == "" {
		bot, err := d.bots.GetBotByTenantID(ctx, tenantID)
		if err != nil {
			d.recordFailure(tenantID, err)
			return nil, errors.Wrap(err, op, "db lookup of bot by tenant failed")
		}
		if bot == nil {
			return nil, errors.WithCode(op, errors.CodeNotFound, "no active bot for tenant "+tenantID)
		}
		d.cache.Set(botIDKey(tenantID), bot.BotID, 0)
		d.cache.Set(botKey(bot.BotID), bot, 0)
		d.recordSuccess(tenantID)
		bot.TenantID = tenantID
		return bot, nil
	}

	if v, ok := d.cache.Get(botKey(botID)); ok {
		if bot, ok := v.(*repository.Bot); ok {
			return bot, nil
		}
	}

	bot, err := d.bots.GetBot(ctx, botID)
	if err != nil {
		d.recordFailure(tenantID, err)
		return nil, errors.Wrap(err, op, "db lookup of bot record failed")
	}
	if bot == nil {
		return nil, errors.WithCode(op, errors.CodeNotFound, "bot "+botID+" not found")
	}
	d.cache.Set(botKey(botID), bot, 0)
	d.recordSuccess(tenantID)
	return bot, nil
}

// GetBotByID resolves a bot record directly by bot_id, for callers
// (the webhook ingress) that only have a bot_id on hand -- e.g. from a
// secret-token lookup -- and need the tenant_id it belongs to.
func (d *Directory) GetBotByID(ctx context.Context, botID string) (*repository.Bot, error) {
	const op = "tenant.Directory.GetBotByID"

	if v, ok := d.cache.Get(botKey(botID)); ok {
		if bot, ok := v.(*repository.Bot); ok {
			return bot, nil
		}
	}
	bot, err := d.bots.GetBot(ctx, botID)
	if err != nil {
		return nil, errors.Wrap(err, op, "db lookup of bot record failed")
	}
	if bot == nil {
		return nil, errors.WithCode(op, errors.CodeNotFound, "bot "+botID+" not found")
	}
	d.cache.Set(botKey(botID), bot, 0)
	return bot, nil
}

// InvalidateBotCache deletes only the tenant->bot_id mapping, not the
// cached bot record itself.
func (d *Directory) InvalidateBotCache(tenantID string) {
	d.cache.Delete(botIDKey(tenantID))
}

// UpdateTenantConfigCache forces a DB reread into tenant:{id}:config.
func (d *Directory) UpdateTenantConfigCache(ctx context.Context, tenantID string) (map[string]any, error) {
	const op = "tenant.Directory.UpdateTenantConfigCache"
	cfg, err := d.tenants.GetTenantConfig(ctx, tenantID)
	if err != nil {
		d.recordFailure(tenantID, err)
		return nil, errors.Wrap(err, op, "db reread of tenant config failed")
	}
	d.cache.Set(configKey(tenantID), cfg, 0)
	d.recordSuccess(tenantID)
	return cfg, nil
}

// GetTenantConfig returns the cached config overlay, loading it on
// first access.
func (d *Directory) GetTenantConfig(ctx context.Context, tenantID string) (map[string]any, error) {
	if v, ok := d.cache.Get(configKey(tenantID)); ok {
		cfg, _ := v.(map[string]any)
		return cfg, nil
	}
	return d.UpdateTenantConfigCache(ctx, tenantID)
}

// GetMeta returns the cached per-tenant success/failure metadata, if any.
func (d *Directory) GetMeta(tenantID string) (Meta, bool) {
	v, ok := d.cache.Get(metaKey(tenantID))
	if !ok {
		return Meta{}, false
	}
	m, ok := v.(Meta)
	return m, ok
}

func (d *Directory) recordSuccess(tenantID string) {
	d.cache.Set(metaKey(tenantID), Meta{LastUpdatedAt: time.Now().UTC()}, 0)
}

func (d *Directory) recordFailure(tenantID string, err error) {
	m, _ := d.GetMeta(tenantID)
	m.LastFailedAt = time.Now().UTC()
	m.LastError = err.Error()
	d.cache.Set(metaKey(tenantID), m, 0)
	logger.Warnw("tenant directory lookup failed", "tenant_id", tenantID, logger.FieldError, err)
}
