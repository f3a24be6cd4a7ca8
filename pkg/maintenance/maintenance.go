package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/msksk8cool/sk8school-bot/pkg/metrics"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	DefaultSchedule  = "@daily"
	DefaultRetention = 30 * 24 * time.Hour

	sweepRetention  = "retention"
	sweepCompletion = "completion"
)

// Bookings is the part of the booking repository the sweeps touch.
type Bookings interface {
	DeleteOlderThan(ctx context.Context, age time.Duration) (int, error)
	CompletePast(ctx context.Context) (int, error)
}

// Config configures the sweep schedule.
type Config struct {
	// Schedule is a cron spec; descriptors such as @daily are accepted.
	Schedule  string
	Retention time.Duration
}

// Runner runs the retention and completion sweeps on a cron schedule.
type Runner struct {
	cfg      Config
	bookings Bookings
	cron     *cron.Cron
}

// New creates a sweep runner. It fails on an invalid schedule.
func New(cfg Config, bookings Bookings) (*Runner, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultRetention
	}

	logger := cron.PrintfLogger(logrus.StandardLogger())
	r := &Runner{
		cfg:      cfg,
		bookings: bookings,
		cron: cron.New(cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		)),
	}

	if _, err := r.cron.AddFunc(cfg.Schedule, func() {
		if err := r.RunOnce(context.Background()); err != nil {
			logrus.Errorf("maintenance sweep failed: %v", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid maintenance schedule %q: %w", cfg.Schedule, err)
	}

	return r, nil
}

// RunOnce runs the completion sweep, then the retention sweep. A failing
// sweep does not stop the other one.
func (r *Runner) RunOnce(ctx context.Context) error {
	completed, errComplete := r.bookings.CompletePast(ctx)
	if errComplete != nil {
		errComplete = fmt.Errorf("completion sweep: %w", errComplete)
	} else {
		metrics.MaintenanceRemovedTotal.WithLabelValues(sweepCompletion).Add(float64(completed))
	}

	removed, errRetain := r.bookings.DeleteOlderThan(ctx, r.cfg.Retention)
	if errRetain != nil {
		errRetain = fmt.Errorf("retention sweep: %w", errRetain)
	} else {
		metrics.MaintenanceRemovedTotal.WithLabelValues(sweepRetention).Add(float64(removed))
	}

	logrus.Infof("maintenance sweep done: %d completed, %d removed", completed, removed)
	return errors.Join(errComplete, errRetain)
}

// Run starts the schedule and blocks until ctx is done, then waits for a
// running sweep to finish.
func (r *Runner) Run(ctx context.Context) error {
	r.cron.Start()
	logrus.Infof("maintenance scheduled (%s, retention %s)", r.cfg.Schedule, r.cfg.Retention)

	<-ctx.Done()

	logrus.Info("stopping maintenance scheduler...")
	<-r.cron.Stop().Done()
	logrus.Info("maintenance scheduler stopped")
	return nil
}
