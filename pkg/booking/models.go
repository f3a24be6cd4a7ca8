package booking

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// CanTransitionTo reports whether the booking may move from s to next.
// Rejected and completed are terminal.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusRejected
	case StatusConfirmed:
		return next == StatusCompleted
	}
	return false
}

// Equipment is the gear a student asked to rent.
type Equipment string

const (
	EquipmentNone       Equipment = "none"
	EquipmentProtection Equipment = "protection"
	EquipmentSkateboard Equipment = "skateboard"
	EquipmentBoth       Equipment = "both"
)

// Label returns the text shown in summaries. Unknown values read as own gear.
func (e Equipment) Label() string {
	switch e {
	case EquipmentProtection:
		return "🛡️ Защита"
	case EquipmentSkateboard:
		return "🛹 Скейтборд"
	case EquipmentBoth:
		return "🛡️🛹 Защита + Скейтборд"
	}
	return "✨ У меня всё есть"
}

// ParseEquipment maps a menu token suffix to an Equipment value.
func ParseEquipment(s string) (Equipment, bool) {
	switch Equipment(s) {
	case EquipmentNone, EquipmentProtection, EquipmentSkateboard, EquipmentBoth:
		return Equipment(s), true
	}
	return "", false
}

// Booking is a single session request and its approval state.
type Booking struct {
	ID       string `json:"id"`
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name"`
	Username string `json:"username"`
	Status   Status `json:"status"`

	CreatedAt       time.Time  `json:"created_at"`
	ConfirmedAt     *time.Time `json:"confirmed_at"`
	RejectedAt      *time.Time `json:"rejected_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`

	ParkID    string    `json:"park_id"`
	ParkName  string    `json:"park_name"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Equipment Equipment `json:"equipment"`
}

// Request carries the fields needed to create a pending booking.
type Request struct {
	UserID    int64
	UserName  string
	Username  string
	ParkID    string
	ParkName  string
	Date      string
	Time      string
	Equipment Equipment
}

// Stats is the count of bookings per status.
type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Rejected  int `json:"rejected"`
	Completed int `json:"completed"`
}

// DateLayout and TimeLayout are the wire formats of Booking.Date and Booking.Time.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// StartTime parses the session start in loc.
func (b *Booking) StartTime(loc *time.Location) (time.Time, error) {
	return ParseSlot(b.Date, b.Time, loc)
}

// ParseSlot combines a YYYY-MM-DD date and an HH:MM time in loc.
func ParseSlot(date, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid slot %s %s: %w", date, clock, err)
	}
	return t, nil
}
