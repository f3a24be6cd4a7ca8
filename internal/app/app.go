// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package app

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/msksk8cool/sk8school-bot/internal/bootstrap"
	"github.com/msksk8cool/sk8school-bot/internal/config"
	"github.com/msksk8cool/sk8school-bot/internal/server"
	"github.com/msksk8cool/sk8school-bot/pkg/approval"
	"github.com/msksk8cool/sk8school-bot/pkg/booking"
	"github.com/msksk8cool/sk8school-bot/pkg/catalog"
	"github.com/msksk8cool/sk8school-bot/pkg/channel"
	"github.com/msksk8cool/sk8school-bot/pkg/flow"
	"github.com/msksk8cool/sk8school-bot/pkg/handler"
	"github.com/msksk8cool/sk8school-bot/pkg/maintenance"
	"github.com/msksk8cool/sk8school-bot/pkg/progress"
	"github.com/msksk8cool/sk8school-bot/pkg/store"
	"github.com/sirupsen/logrus"
)

// App holds all application dependencies and manages the application lifecycle.
type App struct {
	cfg *config.Config

	telegram    *channel.Telegram
	bot         *handler.Bot
	backend     store.Backend
	redisClient *redis.Client
	reminders   *bootstrap.Reminders
	maintenance *maintenance.Runner

	grpcServer        *server.GRPCServer
	metricsServer     *server.MetricsServer
	httpServer        *server.HTTPServer
	shutdownTelemetry func(context.Context) error
}

// New creates and initializes a new application instance.
//
// Components are initialized in dependency order:
//  1. Catalog and achievement engine
//  2. Record store
//  3. Chat channel
//  4. Bookings, progress, reminders and the approval gate
//  5. Booking flow and update router
//  6. Maintenance sweeps
//  7. Servers (gRPC health, metrics, admin API)
//  8. Telemetry
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logrus.Info("initializing application...")

	app := &App{cfg: cfg}
	loc := cfg.Location()

	cat, err := catalog.LoadConfig(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog from %s: %w", cfg.CatalogPath, err)
	}
	logrus.Infof("loaded catalog with %d parks", len(cat.Parks))

	engine, err := bootstrap.InitAchievementEngine(cat)
	if err != nil {
		return nil, fmt.Errorf("failed to init achievement engine: %w", err)
	}

	app.backend, app.redisClient, err = bootstrap.InitStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	app.telegram, err = channel.NewTelegram(channel.TelegramConfig{
		Token:         cfg.BotToken,
		RatePerSecond: cfg.SendRatePerSec,
		Debug:         cfg.Environment == "dev" && cfg.LogLevel == "debug",
	})
	if err != nil {
		app.closeStore()
		return nil, fmt.Errorf("failed to init telegram: %w", err)
	}

	bookings := booking.NewRepository(app.backend, booking.RepositoryConfig{Location: loc})
	tracker := progress.NewTracker(app.backend, engine, progress.TrackerConfig{
		Tiers:    cat.Tiers,
		Location: loc,
	})
	app.reminders = bootstrap.InitReminders(cfg, app.telegram)

	gate := approval.NewGate(approval.Config{
		AdminID:  cfg.AdminID,
		Catalog:  cat,
		Location: loc,
	}, app.telegram, bookings, tracker, app.reminders.Service)

	machine := flow.NewMachine(flow.Config{Catalog: cat, Location: loc}, gate)
	app.bot = handler.NewBot(handler.Config{
		CoachURL: cfg.CoachURL,
		Location: loc,
	}, app.telegram, machine, gate, tracker)

	app.maintenance, err = maintenance.New(maintenance.Config{
		Schedule:  cfg.MaintenanceSchedule,
		Retention: cfg.Retention(),
	}, bookings)
	if err != nil {
		app.closeStore()
		return nil, fmt.Errorf("failed to init maintenance: %w", err)
	}

	health := store.NewHealthChecker(app.backend)

	app.grpcServer = server.NewGRPCServer(cfg.GRPCPort, health)
	if err := app.grpcServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup gRPC server: %w", err)
	}

	app.metricsServer = server.NewMetricsServer(cfg.MetricsPort, "/metrics")
	if err := app.metricsServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup metrics server: %w", err)
	}

	app.httpServer = server.NewHTTPServer(cfg.HTTPPort, server.NewRouter(bookings, tracker, health))

	if cfg.OtelEnabled {
		shutdownTelemetry, err := server.SetupTelemetry(ctx, cfg.ServiceName, cfg.Environment, 0, cfg.ZipkinEndpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to setup telemetry: %w", err)
		}
		app.shutdownTelemetry = shutdownTelemetry
	}

	logrus.Info("application initialized successfully")

	return app, nil
}

// closeStore closes the record store and the Redis client it was built on.
func (a *App) closeStore() {
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			logrus.Errorf("store close error: %v", err)
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			logrus.Errorf("Redis close error: %v", err)
		}
	}
}
