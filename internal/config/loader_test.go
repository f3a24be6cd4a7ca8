package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_ID", "42")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.AdminID != 42 {
		t.Errorf("AdminID = %d, want 42", cfg.AdminID)
	}
	if cfg.StoreBackend != StoreFile {
		t.Errorf("StoreBackend = %q, want %q", cfg.StoreBackend, StoreFile)
	}
	if cfg.ReminderBackend != ReminderTimer {
		t.Errorf("ReminderBackend = %q, want %q", cfg.ReminderBackend, ReminderTimer)
	}
	if cfg.ReminderLead != 2*time.Hour {
		t.Errorf("ReminderLead = %v, want 2h", cfg.ReminderLead)
	}
	if cfg.Retention() != 30*24*time.Hour {
		t.Errorf("Retention() = %v", cfg.Retention())
	}
	if cfg.SendRatePerSec != 25 {
		t.Errorf("SendRatePerSec = %v, want 25", cfg.SendRatePerSec)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("ADMIN_ID", "42")

	if _, err := Load(); err == nil {
		t.Error("expected error for empty BOT_TOKEN")
	}
}

func TestLoad_InvalidAdminID(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_ID", "coach")

	if _, err := Load(); err == nil {
		t.Error("expected error for non-numeric ADMIN_ID")
	}
}

func validConfig() *Config {
	return &Config{
		BotToken:        "123:abc",
		AdminID:         42,
		GRPCPort:        6565,
		MetricsPort:     8080,
		HTTPPort:        8000,
		Timezone:        "Europe/Moscow",
		StoreBackend:    StoreFile,
		ReminderBackend: ReminderTimer,
		ReminderLead:    2 * time.Hour,
		RetentionDays:   30,
		SendRatePerSec:  25,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "zero admin", mutate: func(c *Config) { c.AdminID = 0 }, wantErr: true},
		{name: "negative admin", mutate: func(c *Config) { c.AdminID = -5 }, wantErr: true},
		{name: "empty token", mutate: func(c *Config) { c.BotToken = "" }, wantErr: true},
		{name: "bad grpc port", mutate: func(c *Config) { c.GRPCPort = 70000 }, wantErr: true},
		{name: "bad http port", mutate: func(c *Config) { c.HTTPPort = 0 }, wantErr: true},
		{name: "bad timezone", mutate: func(c *Config) { c.Timezone = "Mars/Olympus" }, wantErr: true},
		{name: "unknown store", mutate: func(c *Config) { c.StoreBackend = "s3" }, wantErr: true},
		{name: "postgres without dsn", mutate: func(c *Config) { c.StoreBackend = StorePostgres }, wantErr: true},
		{name: "postgres with dsn", mutate: func(c *Config) {
			c.StoreBackend = StorePostgres
			c.DatabaseURL = "postgres://localhost/sk8"
		}},
		{name: "redis store", mutate: func(c *Config) { c.StoreBackend = StoreRedis }},
		{name: "asynq reminders", mutate: func(c *Config) { c.ReminderBackend = ReminderAsynq }},
		{name: "unknown reminders", mutate: func(c *Config) { c.ReminderBackend = "cron" }, wantErr: true},
		{name: "zero lead", mutate: func(c *Config) { c.ReminderLead = 0 }, wantErr: true},
		{name: "zero retention", mutate: func(c *Config) { c.RetentionDays = 0 }, wantErr: true},
		{name: "negative rate", mutate: func(c *Config) { c.SendRatePerSec = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLocation(t *testing.T) {
	c := validConfig()
	if got := c.Location().String(); got != "Europe/Moscow" {
		t.Errorf("Location() = %s", got)
	}
	if got := c.RedisAddr(); got != ":" {
		t.Errorf("RedisAddr() = %q", got)
	}
}
