package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrInPast is returned by a Scheduler asked to arm a job whose fire time has passed.
var ErrInPast = errors.New("reminder time is in the past")

// Job is the snapshot a reminder is rendered from. It is taken when the
// booking is confirmed and never refreshed.
type Job struct {
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name"`
	Username string `json:"username"`
	ParkName string `json:"park_name"`
	ParkLink string `json:"park_link"`
	Date     string `json:"date"`
	Time     string `json:"time"`
}

// Key returns the scheduler key of the job.
func (j Job) Key() string {
	return Key(j.UserID, j.Date, j.Time)
}

// Key builds the scheduler key for a user's session slot.
func Key(userID int64, date, clock string) string {
	return fmt.Sprintf("reminder_%d_%s_%s", userID, date, clock)
}

// Handler delivers a fired reminder.
type Handler func(ctx context.Context, job Job)

// Scheduler arms and cancels one-shot jobs by key. Arming an existing key
// replaces the earlier job; cancelling an unknown key is not an error.
type Scheduler interface {
	Arm(ctx context.Context, key string, fireAt time.Time, job Job) error
	Cancel(ctx context.Context, key string) error
}
