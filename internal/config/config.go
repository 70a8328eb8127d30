// Package config loads the platform's global configuration.
//
// Every field declares its environment-variable mapping via struct tag:
//
//	`env:"VAR_NAME" default:"value" min:"0"`
//
// Load() fills the struct by reflection (see pkg/util.LoadFromEnv), so a
// new tunable only needs a new field, never a new assignment line.
package config

import (
	"github.com/vensus137/coreness-go/pkg/util"
)

// Config holds every environment-tunable setting, one field per variable.
type Config struct {
	// HTTP / webhook ingress (§6)
	HTTPAddr            string `env:"HTTP_ADDR" default:":8080"`
	HTTPShutdownTimeout  int    `env:"HTTP_SHUTDOWN_TIMEOUT_SEC" default:"10" min:"1"`
	GinMode              string `env:"GIN_MODE" default:"release"`
	TrustedProxies       string `env:"TRUSTED_PROXIES" default:""`
	WebhookSecretTTLSec  int    `env:"WEBHOOK_SECRET_TTL_SEC" default:"300" min:"1"`

	// PostgreSQL
	PostgresConnStr        string `env:"POSTGRES_CONNECTION_STRING"`
	PostgresSchema         string `env:"POSTGRES_SCHEMA" default:"public"`
	PostgresPoolMinSize    int    `env:"POSTGRES_POOL_MIN_SIZE" default:"1" min:"1"`
	PostgresPoolMaxSize    int    `env:"POSTGRES_POOL_MAX_SIZE" default:"10" min:"1"`
	PostgresPoolTimeoutSec int    `env:"POSTGRES_POOL_TIMEOUT_SEC" default:"10" min:"1"`

	// Task queue (§4.4)
	TaskQueueDepth           int `env:"TASK_QUEUE_DEPTH" default:"256" min:"1"`
	TaskQueueShutdownTimeout int `env:"TASK_QUEUE_SHUTDOWN_TIMEOUT_SEC" default:"30" min:"1"`

	// Cache manager (§4.5)
	CacheDefaultTTLSec        int `env:"CACHE_DEFAULT_TTL_SEC" default:"300" min:"1"`
	CacheCleanupIntervalSec   int `env:"CACHE_CLEANUP_INTERVAL_SEC" default:"60" min:"1"`
	CacheCleanupSampleSize    int `env:"CACHE_CLEANUP_SAMPLE_SIZE" default:"20" min:"1"`
	CacheCleanupExpiredThresh float64 `env:"CACHE_CLEANUP_EXPIRED_THRESHOLD" default:"0.25" min:"0"`

	// Tenant/bot directory cache
	TenantDirCacheTTLSec int `env:"TENANT_DIR_CACHE_TTL_SEC" default:"120" min:"1"`

	// User state (§3 UserState)
	UserStateDefaultTTLSec int `env:"USER_STATE_DEFAULT_TTL_SEC" default:"600" min:"1"`

	// Scheduler (supplement, cron-driven scheduled events)
	SchedulerEnabled bool `env:"SCHEDULER_ENABLED" default:"true"`

	// Ops feed (supplement, websocket tap)
	OpsFeedEnabled    bool `env:"OPSFEED_ENABLED" default:"true"`
	OpsFeedBufferSize int  `env:"OPSFEED_BUFFER_SIZE" default:"256" min:"1"`

	// Chat vendor (interface-only collaborator, §2)
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`

	// Webhook ingress auth (§6)
	GithubWebhookSecret string `env:"GITHUB_WEBHOOK_SECRET"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" default:"INFO"`
	LogEnv   string `env:"LOG_ENV" default:"production"`

	// Scenario/trigger/settings file locations (§6, loader)
	ScenarioDir string `env:"SCENARIO_DIR" default:"./scenarios"`
	TriggerDir  string `env:"TRIGGER_DIR" default:"./triggers"`
	SettingsFile string `env:"SETTINGS_FILE" default:"./settings.yaml"`
}

// Load reads configuration from the environment via reflection.
func Load() *Config {
	var cfg Config
	util.LoadFromEnv(&cfg)
	return &cfg
}
