package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/msksk8cool/sk8school-bot/pkg/booking"
	"github.com/msksk8cool/sk8school-bot/pkg/channel"
	"github.com/msksk8cool/sk8school-bot/pkg/metrics"
	"github.com/sirupsen/logrus"
)

var errNoScheduler = errors.New("reminder scheduler is not configured")

// DefaultLead is how long before the session start a reminder fires.
const DefaultLead = 2 * time.Hour

// Config configures a Service.
type Config struct {
	AdminID  int64
	Lead     time.Duration
	Location *time.Location
	Now      func() time.Time
}

// Service schedules session reminders and delivers them when they fire.
type Service struct {
	cfg       Config
	ch        channel.Channel
	scheduler Scheduler
}

// NewService creates a reminder service. Attach a scheduler with
// SetScheduler before calling Schedule.
func NewService(cfg Config, ch channel.Channel) *Service {
	if cfg.Lead <= 0 {
		cfg.Lead = DefaultLead
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{cfg: cfg, ch: ch}
}

// SetScheduler attaches the backend that arms jobs.
func (s *Service) SetScheduler(scheduler Scheduler) {
	s.scheduler = scheduler
}

// Schedule arms a reminder Lead before the session start. It returns false
// without error when the fire time is not in the future.
func (s *Service) Schedule(ctx context.Context, job Job) (bool, error) {
	if s.scheduler == nil {
		return false, errNoScheduler
	}

	start, err := booking.ParseSlot(job.Date, job.Time, s.cfg.Location)
	if err != nil {
		metrics.RemindersTotal.WithLabelValues("invalid").Inc()
		return false, err
	}

	fireAt := start.Add(-s.cfg.Lead)
	if !fireAt.After(s.cfg.Now()) {
		logrus.Warnf("reminder %s not scheduled: fire time %s is in the past", job.Key(), fireAt.Format(time.RFC3339))
		metrics.RemindersTotal.WithLabelValues("dropped").Inc()
		return false, nil
	}

	if err := s.scheduler.Arm(ctx, job.Key(), fireAt, job); err != nil {
		return false, fmt.Errorf("failed to arm reminder %s: %w", job.Key(), err)
	}

	logrus.Infof("reminder %s scheduled at %s for session %s %s", job.Key(), fireAt.Format(time.RFC3339), job.Date, job.Time)
	metrics.RemindersTotal.WithLabelValues("scheduled").Inc()
	return true, nil
}

// Cancel removes a scheduled reminder. Unknown keys are ignored.
func (s *Service) Cancel(ctx context.Context, userID int64, date, clock string) error {
	if s.scheduler == nil {
		return nil
	}

	key := Key(userID, date, clock)
	if err := s.scheduler.Cancel(ctx, key); err != nil {
		return fmt.Errorf("failed to cancel reminder %s: %w", key, err)
	}

	logrus.Infof("reminder %s cancelled", key)
	return nil
}

// Deliver sends the reminder to the student and the admin. Send failures
// are logged and not retried.
func (s *Service) Deliver(ctx context.Context, job Job) {
	result := "fired"

	if _, err := s.ch.Send(ctx, job.UserID, userMessage(job)); err != nil {
		logrus.Errorf("failed to send reminder %s to user: %v", job.Key(), err)
		result = "failed"
	}

	if _, err := s.ch.Send(ctx, s.cfg.AdminID, adminMessage(job)); err != nil {
		logrus.Errorf("failed to send reminder %s to admin: %v", job.Key(), err)
		result = "failed"
	}

	logrus.Infof("reminder %s delivered for session at %s", job.Key(), job.Time)
	metrics.RemindersTotal.WithLabelValues(result).Inc()
}
