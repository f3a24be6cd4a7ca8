package approval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/msksk8cool/sk8school-bot/pkg/booking"
	"github.com/msksk8cool/sk8school-bot/pkg/catalog"
	"github.com/msksk8cool/sk8school-bot/pkg/channel"
	"github.com/msksk8cool/sk8school-bot/pkg/flow"
	"github.com/msksk8cool/sk8school-bot/pkg/metrics"
	"github.com/msksk8cool/sk8school-bot/pkg/progress"
	"github.com/msksk8cool/sk8school-bot/pkg/reminder"
	"github.com/sirupsen/logrus"
)

// ErrUnauthorized is returned when someone other than the admin decides on a booking.
var ErrUnauthorized = errors.New("actor is not the admin")

// Bookings is the part of the booking repository the gate needs.
type Bookings interface {
	Add(ctx context.Context, req booking.Request) (*booking.Booking, error)
	FindBySlot(ctx context.Context, userID int64, parkID, date, clock string) (*booking.Booking, error)
	Confirm(ctx context.Context, id string) (*booking.Booking, error)
	Reject(ctx context.Context, id, reason string) (*booking.Booking, error)
}

// Progress records confirmed sessions.
type Progress interface {
	AddSession(ctx context.Context, in progress.SessionInput) (*progress.Result, error)
	UserProgress(ctx context.Context, userID int64) (*progress.Summary, bool)
}

// Reminders arms session reminders.
type Reminders interface {
	Schedule(ctx context.Context, job reminder.Job) (bool, error)
}

// Config configures a Gate.
type Config struct {
	AdminID  int64
	Catalog  *catalog.Catalog
	Location *time.Location
	Now      func() time.Time
}

// Gate forwards booking requests to the admin and applies the admin's decisions.
type Gate struct {
	cfg       Config
	ch        channel.Channel
	bookings  Bookings
	progress  Progress
	reminders Reminders
}

// NewGate creates an approval gate.
func NewGate(cfg Config, ch channel.Channel, bookings Bookings, tracker Progress, reminders Reminders) *Gate {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Gate{
		cfg:       cfg,
		ch:        ch,
		bookings:  bookings,
		progress:  tracker,
		reminders: reminders,
	}
}

// IsAdmin reports whether actor is the school admin.
func (g *Gate) IsAdmin(actor channel.Actor) bool {
	return actor.ID == g.cfg.AdminID
}

// Submit stores a pending booking for sel and asks the admin to decide on it.
// A failed admin notification is logged; the booking stays pending.
func (g *Gate) Submit(ctx context.Context, actor channel.Actor, sel flow.Selection) (string, error) {
	park, ok := g.cfg.Catalog.Park(sel.ParkID)
	if !ok {
		park = g.cfg.Catalog.ParkOrDefault(sel.ParkID)
		logrus.Warnf("unknown park %q in selection of user %d, using %s", sel.ParkID, actor.ID, park.ID)
	}

	b, err := g.bookings.Add(ctx, booking.Request{
		UserID:    actor.ID,
		UserName:  actor.FirstName,
		Username:  actor.Username,
		ParkID:    park.ID,
		ParkName:  park.Name,
		Date:      sel.Date,
		Time:      sel.Time,
		Equipment: sel.Equipment,
	})
	if err != nil {
		return "", fmt.Errorf("failed to store booking request: %w", err)
	}
	metrics.BookingsSubmittedTotal.Inc()

	dateDisplay := sel.DateDisplay
	if dateDisplay == "" {
		dateDisplay = b.Date
	}

	if _, err := g.ch.Send(ctx, g.cfg.AdminID, requestMessage(g.cfg.Catalog, actor, b, dateDisplay)); err != nil {
		logrus.Errorf("failed to notify admin about booking %s: %v", b.ID, err)
	}

	return b.ID, nil
}

// deny tells a non-admin they cannot decide and records the attempt.
func (g *Gate) deny(ctx context.Context, actor channel.Actor, msg channel.MessageRef) error {
	logrus.Warnf("user %d tried to decide on a booking without permission", actor.ID)
	metrics.BookingDecisionsTotal.WithLabelValues("unauthorized").Inc()

	if err := g.ch.Edit(ctx, msg, channel.Message{Text: noPermissionText}); err != nil {
		logrus.Errorf("failed to show permission notice to user %d: %v", actor.ID, err)
	}
	return ErrUnauthorized
}

// lookup finds the booking a decision token points at. A nil booking with a
// nil error means the admin was already told there is nothing to do.
func (g *Gate) lookup(ctx context.Context, ref flow.DecisionRef, msg channel.MessageRef) (*booking.Booking, error) {
	b, err := g.bookings.FindBySlot(ctx, ref.UserID, ref.ParkID, ref.Date, ref.Time)
	if errors.Is(err, booking.ErrNotFound) {
		logrus.Warnf("no booking for user %d at %s %s %s", ref.UserID, ref.ParkID, ref.Date, ref.Time)
		metrics.BookingDecisionsTotal.WithLabelValues("not_found").Inc()
		g.edit(ctx, msg, notFoundMessage(ref))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up booking: %w", err)
	}

	if b.Status != booking.StatusPending {
		logrus.Infof("booking %s already %s", b.ID, b.Status)
		metrics.BookingDecisionsTotal.WithLabelValues("duplicate").Inc()
		g.edit(ctx, msg, alreadyDecidedMessage(b))
		return nil, nil
	}

	return b, nil
}

func (g *Gate) edit(ctx context.Context, ref channel.MessageRef, msg channel.Message) {
	if err := g.ch.Edit(ctx, ref, msg); err != nil {
		logrus.Errorf("failed to update admin message: %v", err)
	}
}

// Approve confirms the booking behind ref, then notifies the student, arms
// the reminder and records progress. Follow-up failures are logged only.
func (g *Gate) Approve(ctx context.Context, actor channel.Actor, ref flow.DecisionRef, msg channel.MessageRef) ([]StepResult, error) {
	if !g.IsAdmin(actor) {
		return nil, g.deny(ctx, actor, msg)
	}

	pending, err := g.lookup(ctx, ref, msg)
	if err != nil || pending == nil {
		return nil, err
	}

	b, err := g.bookings.Confirm(ctx, pending.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm booking %s: %w", pending.ID, err)
	}
	metrics.BookingDecisionsTotal.WithLabelValues("approved").Inc()
	logrus.Infof("booking %s approved", b.ID)

	park := g.cfg.Catalog.ParkOrDefault(b.ParkID)
	var result *progress.Result

	steps := []step{
		{name: "update_admin_message", run: func(ctx context.Context) error {
			return g.ch.Edit(ctx, msg, approvedAdminMessage(b, g.cfg.Now().In(g.cfg.Location)))
		}},
		{name: "notify_user", run: func(ctx context.Context) error {
			_, err := g.ch.Send(ctx, b.UserID, approvedUserMessage(park))
			return err
		}},
		{name: "schedule_reminder", run: func(ctx context.Context) error {
			_, err := g.reminders.Schedule(ctx, reminder.Job{
				UserID:   b.UserID,
				UserName: b.UserName,
				Username: b.Username,
				ParkName: park.Name,
				ParkLink: park.MapURL,
				Date:     b.Date,
				Time:     b.Time,
			})
			return err
		}},
		{name: "record_progress", run: func(ctx context.Context) error {
			var err error
			result, err = g.progress.AddSession(ctx, progress.SessionInput{
				UserID:   b.UserID,
				UserName: b.UserName,
				Username: b.Username,
				Park:     park.Name,
				Date:     b.Date,
				Time:     b.Time,
			})
			return err
		}},
		{name: "announce_achievements", run: func(ctx context.Context) error {
			if result == nil || len(result.NewAchievements) == 0 {
				return nil
			}
			_, err := g.ch.Send(ctx, b.UserID, channel.Message{Text: progress.FormatUnlocks(result.NewAchievements)})
			return err
		}},
		{name: "send_progress", run: func(ctx context.Context) error {
			summary, _ := g.progress.UserProgress(ctx, b.UserID)
			_, err := g.ch.Send(ctx, b.UserID, channel.Message{Text: progress.FormatProgress(summary)})
			return err
		}},
	}

	return runSteps(ctx, b.ID, steps), nil
}

// Reject declines the booking behind ref with reason, or the default reason
// when empty, and tells the student.
func (g *Gate) Reject(ctx context.Context, actor channel.Actor, ref flow.DecisionRef, msg channel.MessageRef, reason string) ([]StepResult, error) {
	if !g.IsAdmin(actor) {
		return nil, g.deny(ctx, actor, msg)
	}

	pending, err := g.lookup(ctx, ref, msg)
	if err != nil || pending == nil {
		return nil, err
	}

	if reason == "" {
		reason = defaultRejectText
	}

	b, err := g.bookings.Reject(ctx, pending.ID, reason)
	if err != nil {
		return nil, fmt.Errorf("failed to reject booking %s: %w", pending.ID, err)
	}
	metrics.BookingDecisionsTotal.WithLabelValues("rejected").Inc()
	logrus.Infof("booking %s rejected: %s", b.ID, reason)

	steps := []step{
		{name: "update_admin_message", run: func(ctx context.Context) error {
			return g.ch.Edit(ctx, msg, rejectedAdminMessage(b, g.cfg.Now().In(g.cfg.Location)))
		}},
		{name: "notify_user", run: func(ctx context.Context) error {
			_, err := g.ch.Send(ctx, b.UserID, rejectedUserMessage())
			return err
		}},
	}

	return runSteps(ctx, b.ID, steps), nil
}
