package maintenance

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeBookings struct {
	order       []string
	age         time.Duration
	completeErr error
	deleteErr   error
}

func (f *fakeBookings) DeleteOlderThan(ctx context.Context, age time.Duration) (int, error) {
	f.order = append(f.order, sweepRetention)
	f.age = age
	return 2, f.deleteErr
}

func (f *fakeBookings) CompletePast(ctx context.Context) (int, error) {
	f.order = append(f.order, sweepCompletion)
	return 1, f.completeErr
}

func TestNew_InvalidSchedule(t *testing.T) {
	if _, err := New(Config{Schedule: "every now and then"}, &fakeBookings{}); err == nil {
		t.Error("expected error for invalid schedule")
	}
}

func TestRunOnce(t *testing.T) {
	b := &fakeBookings{}
	r, err := New(Config{Retention: 48 * time.Hour}, b)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := r.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if len(b.order) != 2 || b.order[0] != sweepCompletion || b.order[1] != sweepRetention {
		t.Errorf("sweep order = %v", b.order)
	}
	if b.age != 48*time.Hour {
		t.Errorf("retention = %v", b.age)
	}
}

func TestRunOnce_DefaultsAndErrors(t *testing.T) {
	b := &fakeBookings{completeErr: errors.New("disk full")}
	r, err := New(Config{}, b)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	err = r.RunOnce(context.Background())
	if err == nil {
		t.Fatal("expected completion error")
	}
	if len(b.order) != 2 {
		t.Errorf("retention sweep should run after a failed completion sweep, order = %v", b.order)
	}
	if b.age != DefaultRetention {
		t.Errorf("retention = %v, want %v", b.age, DefaultRetention)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	r, err := New(Config{Schedule: "@every 1h"}, &fakeBookings{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
