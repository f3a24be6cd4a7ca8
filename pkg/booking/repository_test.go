package booking

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/msksk8cool/sk8school-bot/pkg/store"
)

type clock struct {
	t time.Time
}

func (c *clock) Now() time.Time { return c.t }

func newTestRepository(t *testing.T) (*Repository, *clock) {
	backend, err := store.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend() error = %v", err)
	}
	c := &clock{t: time.Date(2025, 6, 12, 10, 0, 0, 0, time.UTC)}
	return NewRepository(backend, RepositoryConfig{Now: c.Now, Location: time.UTC}), c
}

func testRequest() Request {
	return Request{
		UserID:    777,
		UserName:  "Ivan",
		Username:  "@ivan",
		ParkID:    "park2",
		ParkName:  "Парк Горького",
		Date:      "2025-06-13",
		Time:      "20:00",
		Equipment: EquipmentBoth,
	}
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusRejected, false},
		{StatusRejected, StatusConfirmed, false},
		{StatusCompleted, StatusPending, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestRepository_Add(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	b, err := repo.Add(ctx, testRequest())
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if !regexp.MustCompile(`^booking_20250612_100000_777_[0-9a-f]{8}$`).MatchString(b.ID) {
		t.Errorf("unexpected id format: %s", b.ID)
	}
	if b.Status != StatusPending {
		t.Errorf("Status = %s, want pending", b.Status)
	}

	second, _ := repo.Add(ctx, testRequest())
	if second.ID == b.ID {
		t.Error("ids created within the same second must differ")
	}

	got, err := repo.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ParkName != "Парк Горького" || got.Equipment != EquipmentBoth {
		t.Errorf("Get() = %+v", got)
	}
}

func TestRepository_Lifecycle(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	b, _ := repo.Add(ctx, testRequest())

	confirmed, err := repo.Confirm(ctx, b.ID)
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if confirmed.Status != StatusConfirmed || confirmed.ConfirmedAt == nil {
		t.Errorf("Confirm() = %+v", confirmed)
	}

	if _, err := repo.Reject(ctx, b.ID, "late"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Reject() after confirm error = %v, want ErrInvalidTransition", err)
	}

	completed, err := repo.Complete(ctx, b.ID)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if completed.CompletedAt == nil {
		t.Error("CompletedAt should be set")
	}

	if _, err := repo.Confirm(ctx, "booking_missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Confirm() unknown error = %v, want ErrNotFound", err)
	}
}

func TestRepository_Reject(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	b, _ := repo.Add(ctx, testRequest())
	rejected, err := repo.Reject(ctx, b.ID, "Отклонено тренером")
	if err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if rejected.RejectionReason != "Отклонено тренером" || rejected.RejectedAt == nil {
		t.Errorf("Reject() = %+v", rejected)
	}

	if _, err := repo.Complete(ctx, b.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("rejected is terminal, got %v", err)
	}
}

func TestRepository_FindBySlot_PrefersNewestPending(t *testing.T) {
	repo, c := newTestRepository(t)
	ctx := context.Background()

	first, _ := repo.Add(ctx, testRequest())
	repo.Reject(ctx, first.ID, "")

	c.t = c.t.Add(time.Minute)
	second, _ := repo.Add(ctx, testRequest())

	c.t = c.t.Add(time.Minute)
	third, _ := repo.Add(ctx, testRequest())
	repo.Confirm(ctx, third.ID)

	got, err := repo.FindBySlot(ctx, 777, "park2", "2025-06-13", "20:00")
	if err != nil {
		t.Fatalf("FindBySlot() error = %v", err)
	}
	if got.ID != second.ID {
		t.Errorf("FindBySlot() = %s, want pending %s", got.ID, second.ID)
	}

	if _, err := repo.FindBySlot(ctx, 777, "park1", "2025-06-13", "20:00"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindBySlot() other park error = %v", err)
	}
}

func TestRepository_Queries(t *testing.T) {
	repo, c := newTestRepository(t)
	ctx := context.Background()

	soon := testRequest()
	soon.Date, soon.Time = "2025-06-12", "12:00"
	later := testRequest()
	later.Date, later.Time = "2025-06-14", "18:00"
	other := testRequest()
	other.UserID = 1

	a, _ := repo.Add(ctx, soon)
	c.t = c.t.Add(time.Second)
	b, _ := repo.Add(ctx, later)
	c.t = c.t.Add(time.Second)
	repo.Add(ctx, other)

	repo.Confirm(ctx, a.ID)
	repo.Confirm(ctx, b.ID)

	if got := repo.ForUser(ctx, 777); len(got) != 2 || got[0].ID != a.ID {
		t.Errorf("ForUser() = %+v", got)
	}
	if got := repo.Pending(ctx); len(got) != 1 || got[0].UserID != 1 {
		t.Errorf("Pending() = %+v", got)
	}
	if got := repo.Upcoming(ctx, 2*time.Hour); len(got) != 1 || got[0].ID != a.ID {
		t.Errorf("Upcoming(2h) = %+v", got)
	}

	stats := repo.Statistics(ctx)
	want := Stats{Total: 3, Pending: 1, Confirmed: 2}
	if stats != want {
		t.Errorf("Statistics() = %+v, want %+v", stats, want)
	}
}

func TestRepository_CompletePast(t *testing.T) {
	repo, c := newTestRepository(t)
	ctx := context.Background()

	past := testRequest()
	past.Date, past.Time = "2025-06-12", "12:00"
	future := testRequest()

	a, _ := repo.Add(ctx, past)
	b, _ := repo.Add(ctx, future)
	repo.Confirm(ctx, a.ID)
	repo.Confirm(ctx, b.ID)

	c.t = time.Date(2025, 6, 12, 13, 0, 0, 0, time.UTC)
	n, err := repo.CompletePast(ctx)
	if err != nil {
		t.Fatalf("CompletePast() error = %v", err)
	}
	if n != 1 {
		t.Errorf("CompletePast() = %d, want 1", n)
	}

	got, _ := repo.Get(ctx, a.ID)
	if got.Status != StatusCompleted {
		t.Errorf("past booking status = %s", got.Status)
	}
	got, _ = repo.Get(ctx, b.ID)
	if got.Status != StatusConfirmed {
		t.Errorf("future booking status = %s", got.Status)
	}
}

func TestRepository_DeleteOlderThan(t *testing.T) {
	repo, c := newTestRepository(t)
	ctx := context.Background()

	old, _ := repo.Add(ctx, testRequest())
	repo.Confirm(ctx, old.ID)

	c.t = c.t.Add(20 * 24 * time.Hour)
	fresh, _ := repo.Add(ctx, testRequest())

	c.t = c.t.Add(15 * 24 * time.Hour)
	n, err := repo.DeleteOlderThan(ctx, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("DeleteOlderThan() error = %v", err)
	}
	if n != 1 {
		t.Errorf("DeleteOlderThan() = %d, want 1", n)
	}
	if _, err := repo.Get(ctx, old.ID); !errors.Is(err, ErrNotFound) {
		t.Error("old booking should be removed regardless of status")
	}
	if _, err := repo.Get(ctx, fresh.ID); err != nil {
		t.Error("fresh booking should remain")
	}
}
