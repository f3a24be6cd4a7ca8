package bootstrap

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
	"github.com/msksk8cool/sk8school-bot/internal/config"
	"github.com/msksk8cool/sk8school-bot/pkg/channel"
	"github.com/msksk8cool/sk8school-bot/pkg/reminder"
	"github.com/sirupsen/logrus"
)

// Reminders bundles the reminder service with the scheduler backend behind it.
type Reminders struct {
	Service *reminder.Service

	timer  *reminder.TimerScheduler
	asynq  *reminder.AsynqScheduler
	worker *asynq.Server
	mux    *asynq.ServeMux
}

// InitReminders builds the reminder service on the backend selected by
// REMINDER_BACKEND. The asynq backend keeps pending reminders in Redis so
// they survive restarts.
func InitReminders(cfg *config.Config, ch channel.Channel) *Reminders {
	svc := reminder.NewService(reminder.Config{
		AdminID:  cfg.AdminID,
		Lead:     cfg.ReminderLead,
		Location: cfg.Location(),
	}, ch)

	r := &Reminders{Service: svc}

	if cfg.ReminderBackend == config.ReminderAsynq {
		opt := asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}
		r.asynq = reminder.NewAsynqScheduler(opt)
		r.worker, r.mux = reminder.NewWorker(opt, cfg.ReminderConcurrency, svc.Deliver)
		svc.SetScheduler(r.asynq)
		logrus.Infof("using asynq reminders on %s", cfg.RedisAddr())
		return r
	}

	r.timer = reminder.NewTimerScheduler(svc.Deliver)
	svc.SetScheduler(r.timer)
	logrus.Info("using in-process reminder timers")
	return r
}

// Run processes queued reminders until ctx is done. With the timer backend
// there is no worker and Run only waits.
func (r *Reminders) Run(ctx context.Context) error {
	if r.worker == nil {
		<-ctx.Done()
		return nil
	}

	if err := r.worker.Start(r.mux); err != nil {
		return err
	}
	<-ctx.Done()
	r.worker.Shutdown()
	return nil
}

// Close releases the scheduler. Timers that have not fired are dropped.
func (r *Reminders) Close() error {
	if r.timer != nil {
		if n := r.timer.Pending(); n > 0 {
			logrus.Warnf("dropping %d pending reminder timers", n)
		}
		r.timer.Stop()
	}
	var err error
	if r.asynq != nil {
		err = errors.Join(err, r.asynq.Close())
	}
	return err
}
