// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Load reads configuration from environment variables.
// It attempts to load from .env file first (for local development),
// then parses environment variables into the Config struct.
func Load() (*Config, error) {
	// In production environment variables are injected directly
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("no .env file loaded: %v", err)
	} else {
		logrus.Infof("loaded environment variables from .env file")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}

	return cfg, nil
}

// Validate performs custom validation on the configuration.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.AdminID <= 0 {
		return fmt.Errorf("invalid ADMIN_ID: %d (must be positive)", c.AdminID)
	}

	for name, port := range map[string]int{
		"GRPC_PORT":    c.GRPCPort,
		"METRICS_PORT": c.MetricsPort,
		"HTTP_PORT":    c.HTTPPort,
	} {
		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid %s: %d (must be 1-65535)", name, port)
		}
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}

	switch c.StoreBackend {
	case StoreFile, StoreRedis:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q (must be file, redis or postgres)", c.StoreBackend)
	}

	switch c.ReminderBackend {
	case ReminderTimer, ReminderAsynq:
	default:
		return fmt.Errorf("invalid REMINDER_BACKEND %q (must be timer or asynq)", c.ReminderBackend)
	}

	if c.ReminderLead <= 0 {
		return fmt.Errorf("invalid REMINDER_LEAD: %s (must be positive)", c.ReminderLead)
	}
	if c.RetentionDays < 1 {
		return fmt.Errorf("invalid RETENTION_DAYS: %d (must be at least 1)", c.RetentionDays)
	}
	if c.SendRatePerSec < 0 {
		return fmt.Errorf("invalid SEND_RATE_PER_SEC: %v", c.SendRatePerSec)
	}

	return nil
}
