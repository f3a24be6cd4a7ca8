package booking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/msksk8cool/sk8school-bot/pkg/store"
	"github.com/sirupsen/logrus"
)

// DocumentName is the store collection holding all bookings.
const DocumentName = "bookings"

// RepositoryConfig tunes time handling for a Repository.
type RepositoryConfig struct {
	// Now returns the current instant. Defaults to time.Now.
	Now func() time.Time
	// Location is the school's timezone for session dates. Defaults to time.Local.
	Location *time.Location
}

// Repository keeps the bookings collection.
type Repository struct {
	doc *store.Document[Booking]
	now func() time.Time
	loc *time.Location
}

// NewRepository creates a booking repository over a store backend.
func NewRepository(backend store.Backend, cfg RepositoryConfig) *Repository {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	return &Repository{
		doc: store.NewDocument[Booking](backend, DocumentName),
		now: cfg.Now,
		loc: cfg.Location,
	}
}

func newID(now time.Time, userID int64) string {
	return fmt.Sprintf("booking_%s_%d_%s", now.Format("20060102_150405"), userID, uuid.NewString()[:8])
}

// Add stores a new pending booking and returns it.
func (r *Repository) Add(ctx context.Context, req Request) (*Booking, error) {
	now := r.now()
	b := Booking{
		ID:        newID(now, req.UserID),
		UserID:    req.UserID,
		UserName:  req.UserName,
		Username:  req.Username,
		Status:    StatusPending,
		CreatedAt: now,
		ParkID:    req.ParkID,
		ParkName:  req.ParkName,
		Date:      req.Date,
		Time:      req.Time,
		Equipment: req.Equipment,
	}
	if b.Equipment == "" {
		b.Equipment = EquipmentNone
	}

	err := r.doc.Mutate(ctx, func(items map[string]Booking) (bool, error) {
		items[b.ID] = b
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add booking: %w", err)
	}

	logrus.Infof("added booking %s for user %d at %s %s %s", b.ID, b.UserID, b.ParkID, b.Date, b.Time)
	return &b, nil
}

// Get returns a booking by id.
func (r *Repository) Get(ctx context.Context, id string) (*Booking, error) {
	var (
		b  Booking
		ok bool
	)
	r.doc.Read(ctx, func(items map[string]Booking) {
		b, ok = items[id]
	})
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

// FindBySlot returns the booking a user made for a park, date and time.
// The newest pending booking wins; otherwise the newest booking of any status.
func (r *Repository) FindBySlot(ctx context.Context, userID int64, parkID, date, clock string) (*Booking, error) {
	var pending, latest *Booking
	r.doc.Read(ctx, func(items map[string]Booking) {
		for _, b := range items {
			if b.UserID != userID || b.ParkID != parkID || b.Date != date || b.Time != clock {
				continue
			}
			b := b
			if latest == nil || b.CreatedAt.After(latest.CreatedAt) {
				latest = &b
			}
			if b.Status == StatusPending && (pending == nil || b.CreatedAt.After(pending.CreatedAt)) {
				pending = &b
			}
		}
	})

	if pending != nil {
		return pending, nil
	}
	if latest != nil {
		return latest, nil
	}
	return nil, ErrNotFound
}

// transition moves a booking to next, applying set to stamp extra fields.
func (r *Repository) transition(ctx context.Context, id string, next Status, set func(b *Booking, now time.Time)) (*Booking, error) {
	var out Booking
	err := r.doc.Mutate(ctx, func(items map[string]Booking) (bool, error) {
		b, ok := items[id]
		if !ok {
			return false, ErrNotFound
		}
		if !b.Status.CanTransitionTo(next) {
			return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, next)
		}

		b.Status = next
		set(&b, r.now())
		items[id] = b
		out = b
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	logrus.Infof("booking %s is now %s", id, next)
	return &out, nil
}

// Confirm moves a pending booking to confirmed.
func (r *Repository) Confirm(ctx context.Context, id string) (*Booking, error) {
	return r.transition(ctx, id, StatusConfirmed, func(b *Booking, now time.Time) {
		b.ConfirmedAt = &now
	})
}

// Reject moves a pending booking to rejected with a reason.
func (r *Repository) Reject(ctx context.Context, id, reason string) (*Booking, error) {
	return r.transition(ctx, id, StatusRejected, func(b *Booking, now time.Time) {
		b.RejectedAt = &now
		b.RejectionReason = reason
	})
}

// Complete moves a confirmed booking to completed.
func (r *Repository) Complete(ctx context.Context, id string) (*Booking, error) {
	return r.transition(ctx, id, StatusCompleted, func(b *Booking, now time.Time) {
		b.CompletedAt = &now
	})
}

// list returns the bookings matching keep, oldest first.
func (r *Repository) list(ctx context.Context, keep func(b *Booking) bool) []Booking {
	var out []Booking
	r.doc.Read(ctx, func(items map[string]Booking) {
		for _, b := range items {
			if keep(&b) {
				out = append(out, b)
			}
		}
	})

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// ForUser returns all bookings of a user.
func (r *Repository) ForUser(ctx context.Context, userID int64) []Booking {
	return r.list(ctx, func(b *Booking) bool { return b.UserID == userID })
}

// Pending returns all bookings awaiting a decision.
func (r *Repository) Pending(ctx context.Context) []Booking {
	return r.list(ctx, func(b *Booking) bool { return b.Status == StatusPending })
}

// Upcoming returns confirmed bookings starting between now and now+within.
// Bookings with an unparsable slot are skipped.
func (r *Repository) Upcoming(ctx context.Context, within time.Duration) []Booking {
	now := r.now()
	until := now.Add(within)

	return r.list(ctx, func(b *Booking) bool {
		if b.Status != StatusConfirmed {
			return false
		}
		start, err := b.StartTime(r.loc)
		if err != nil {
			return false
		}
		return !start.Before(now) && !start.After(until)
	})
}

// DeleteOlderThan removes every booking created more than age ago, whatever its status.
func (r *Repository) DeleteOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := r.now().Add(-age)
	removed := 0

	err := r.doc.Mutate(ctx, func(items map[string]Booking) (bool, error) {
		for id, b := range items {
			if b.CreatedAt.Before(cutoff) {
				delete(items, id)
				removed++
			}
		}
		return removed > 0, nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete old bookings: %w", err)
	}

	if removed > 0 {
		logrus.Infof("deleted %d bookings created before %s", removed, cutoff.Format(time.RFC3339))
	}
	return removed, nil
}

// CompletePast marks confirmed bookings whose session has started as completed.
func (r *Repository) CompletePast(ctx context.Context) (int, error) {
	now := r.now()
	completed := 0

	err := r.doc.Mutate(ctx, func(items map[string]Booking) (bool, error) {
		for id, b := range items {
			if b.Status != StatusConfirmed {
				continue
			}
			start, err := b.StartTime(r.loc)
			if err != nil {
				logrus.Warnf("booking %s has an invalid slot: %v", id, err)
				continue
			}
			if start.After(now) {
				continue
			}
			stamp := now
			b.Status = StatusCompleted
			b.CompletedAt = &stamp
			items[id] = b
			completed++
		}
		return completed > 0, nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to complete past bookings: %w", err)
	}

	return completed, nil
}

// Statistics counts bookings per status.
func (r *Repository) Statistics(ctx context.Context) Stats {
	var s Stats
	r.doc.Read(ctx, func(items map[string]Booking) {
		s.Total = len(items)
		for _, b := range items {
			switch b.Status {
			case StatusPending:
				s.Pending++
			case StatusConfirmed:
				s.Confirmed++
			case StatusRejected:
				s.Rejected++
			case StatusCompleted:
				s.Completed++
			}
		}
	})
	return s
}
