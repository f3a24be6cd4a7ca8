// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// Run starts the poller, the servers and the background workers, and
// blocks until a shutdown signal is received or one of them fails.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer stop()
		return a.telegram.Poll(gctx, a.bot.Handle)
	})
	g.Go(a.grpcServer.Serve)
	g.Go(a.metricsServer.Serve)
	g.Go(a.httpServer.Serve)
	g.Go(func() error { return a.grpcServer.WatchHealth(gctx) })
	g.Go(func() error { return a.reminders.Run(gctx) })
	g.Go(func() error { return a.maintenance.Run(gctx) })

	// Servers only return once shut down, so stop them when the group ends.
	g.Go(func() error {
		<-gctx.Done()
		logrus.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.stopServers(shutdownCtx)
		return nil
	})

	logrus.Info("application started successfully")

	err := g.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.Shutdown(shutdownCtx)

	return err
}

func (a *App) stopServers(ctx context.Context) {
	if err := a.grpcServer.Shutdown(ctx); err != nil {
		logrus.Errorf("gRPC server shutdown error: %v", err)
	}
	if err := a.metricsServer.Shutdown(ctx); err != nil {
		logrus.Errorf("metrics server shutdown error: %v", err)
	}
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logrus.Errorf("admin API shutdown error: %v", err)
	}
}

// Shutdown releases what the servers and workers leave behind.
//
// Components are closed in reverse dependency order:
//  1. Reminder scheduler (pending timers, asynq client)
//  2. Record store and Redis
//  3. Telemetry flush
//
// Shutdown errors are logged and do not stop the sequence.
func (a *App) Shutdown(ctx context.Context) {
	logrus.Info("shutting down application...")

	if a.reminders != nil {
		if err := a.reminders.Close(); err != nil {
			logrus.Errorf("reminder scheduler close error: %v", err)
		}
	}

	a.closeStore()

	if a.shutdownTelemetry != nil {
		if err := a.shutdownTelemetry(ctx); err != nil {
			logrus.Errorf("telemetry shutdown error: %v", err)
		}
	}

	logrus.Info("application shutdown complete")
}
