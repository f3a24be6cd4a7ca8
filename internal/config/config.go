// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import "time"

// Config holds all application configuration loaded from environment variables.
// This struct uses github.com/caarlos0/env for automatic environment variable parsing.
type Config struct {
	// ============================================================
	// Bot configuration (REQUIRED)
	// ============================================================
	BotToken string `env:"BOT_TOKEN,required,notEmpty"`
	AdminID  int64  `env:"ADMIN_ID,required,notEmpty"`
	CoachURL string `env:"COACH_URL" envDefault:"https://t.me/wip_sxiueohd?start=msk_sk8cool"`

	// SendRatePerSec caps outbound Bot API calls.
	SendRatePerSec float64 `env:"SEND_RATE_PER_SEC" envDefault:"25"`

	// ============================================================
	// Server configuration
	// ============================================================
	GRPCPort    int    `env:"GRPC_PORT" envDefault:"6565"`
	MetricsPort int    `env:"METRICS_PORT" envDefault:"8080"`
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8000"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"sk8school-bot"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// ============================================================
	// School configuration
	// ============================================================
	Timezone    string `env:"TIMEZONE" envDefault:"Europe/Moscow"`
	CatalogPath string `env:"CATALOG_PATH" envDefault:"config/catalog.yaml"`

	// ============================================================
	// Storage configuration
	// ============================================================
	StoreBackend string `env:"STORE_BACKEND" envDefault:"file"`
	DataDir      string `env:"DATA_DIR" envDefault:"."`
	DatabaseURL  string `env:"DATABASE_URL"`

	RedisHost         string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort         string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword     string `env:"REDIS_PASSWORD"`
	RedisDB           int    `env:"REDIS_DB" envDefault:"0"`
	RedisMaxRetries   int    `env:"REDIS_MAX_RETRIES" envDefault:"5"`
	RedisRetryDelayMs int    `env:"REDIS_RETRY_DELAY_MS" envDefault:"1000"`

	// ============================================================
	// Reminders and maintenance
	// ============================================================
	ReminderBackend     string        `env:"REMINDER_BACKEND" envDefault:"timer"`
	ReminderLead        time.Duration `env:"REMINDER_LEAD" envDefault:"2h"`
	ReminderConcurrency int           `env:"REMINDER_CONCURRENCY" envDefault:"2"`
	RetentionDays       int           `env:"RETENTION_DAYS" envDefault:"30"`
	MaintenanceSchedule string        `env:"MAINTENANCE_SCHEDULE" envDefault:"@daily"`

	// ============================================================
	// Telemetry configuration
	// ============================================================
	OtelEnabled    bool   `env:"OTEL_ENABLED" envDefault:"false"`
	ZipkinEndpoint string `env:"ZIPKIN_ENDPOINT"`
}

const (
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"

	ReminderTimer = "timer"
	ReminderAsynq = "asynq"
)

// RedisAddr returns host:port of the Redis server.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// Retention is how long finished bookings are kept.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// Location resolves TIMEZONE. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
