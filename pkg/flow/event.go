package flow

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/msksk8cool/sk8school-bot/pkg/booking"
)

// ErrUnknownToken is returned for callback tokens that do not decode to an event.
var ErrUnknownToken = errors.New("unknown menu token")

// EventKind names a user action.
type EventKind string

const (
	EventMainMenu        EventKind = "main_menu"
	EventStartBooking    EventKind = "training_info"
	EventSelectPark      EventKind = "select_park"
	EventViewPark        EventKind = "view_park"
	EventConfirmPark     EventKind = "confirm_park"
	EventChooseDate      EventKind = "choose_date"
	EventChoosePeriod    EventKind = "choose_period"
	EventChooseTime      EventKind = "choose_time"
	EventEquipmentYes    EventKind = "equipment_yes"
	EventEquipmentNo     EventKind = "equipment_no"
	EventChooseEquipment EventKind = "choose_equipment"
	EventFinalConfirm    EventKind = "final_confirm"
	EventCancel          EventKind = "booking_cancel"

	// Outside the booking conversation.
	EventAboutSchool  EventKind = "about_school"
	EventContactCoach EventKind = "contact_coach"
	EventMyProgress   EventKind = "my_progress"
	EventLeaderboard  EventKind = "leaderboard"
	EventAdminApprove EventKind = "admin_approve"
	EventAdminReject  EventKind = "admin_reject"
)

// Fixed tokens.
const (
	TokenMainMenu     = "main_menu"
	TokenTrainingInfo = "training_info"
	TokenSelectPark   = "select_park"
	TokenEquipmentYes = "equipment_yes"
	TokenEquipmentNo  = "equipment_no"
	TokenFinalConfirm = "final_confirm"
	TokenCancel       = "booking_cancel"
	TokenAboutSchool  = "about_school"
	TokenContactCoach = "contact_coach"
	TokenMyProgress   = "my_progress"
	TokenLeaderboard  = "leaderboard"
)

// MaxDaysAhead is how far ahead the date menu reaches.
const MaxDaysAhead = 7

// DecisionRef identifies the booking an admin decision applies to. The
// booking id is not used because callback tokens are size limited.
type DecisionRef struct {
	UserID int64
	ParkID string
	Date   string
	Time   string
}

func (r DecisionRef) suffix() string {
	return fmt.Sprintf("%d_%s_%s_%s", r.UserID, r.ParkID, r.Date, r.Time)
}

// Event is a decoded menu choice. Only the fields relevant to Kind are set.
type Event struct {
	Kind      EventKind
	ParkID    string
	DaysAhead int
	Period    string
	Time      string
	Equipment booking.Equipment
	Decision  DecisionRef
}

var fixedTokens = map[string]EventKind{
	TokenMainMenu:     EventMainMenu,
	TokenTrainingInfo: EventStartBooking,
	TokenSelectPark:   EventSelectPark,
	TokenEquipmentYes: EventEquipmentYes,
	TokenEquipmentNo:  EventEquipmentNo,
	TokenFinalConfirm: EventFinalConfirm,
	TokenCancel:       EventCancel,
	TokenAboutSchool:  EventAboutSchool,
	TokenContactCoach: EventContactCoach,
	TokenMyProgress:   EventMyProgress,
	TokenLeaderboard:  EventLeaderboard,
}

// DecodeToken parses a callback token into an Event.
func DecodeToken(token string) (Event, error) {
	if kind, ok := fixedTokens[token]; ok {
		return Event{Kind: kind}, nil
	}

	switch {
	case strings.HasPrefix(token, "admin_approve_"):
		ref, err := decodeDecision(strings.TrimPrefix(token, "admin_approve_"))
		if err != nil {
			return Event{}, fmt.Errorf("%w: %s", err, token)
		}
		return Event{Kind: EventAdminApprove, Decision: ref}, nil

	case strings.HasPrefix(token, "admin_reject_"):
		ref, err := decodeDecision(strings.TrimPrefix(token, "admin_reject_"))
		if err != nil {
			return Event{}, fmt.Errorf("%w: %s", err, token)
		}
		return Event{Kind: EventAdminReject, Decision: ref}, nil

	case strings.HasPrefix(token, "confirm_park_"):
		if id := strings.TrimPrefix(token, "confirm_park_"); id != "" {
			return Event{Kind: EventConfirmPark, ParkID: id}, nil
		}

	case strings.HasPrefix(token, "park_"):
		if id := strings.TrimPrefix(token, "park_"); id != "" {
			return Event{Kind: EventViewPark, ParkID: id}, nil
		}

	case strings.HasPrefix(token, "date_") && strings.HasSuffix(token, "_days"):
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(token, "date_"), "_days"))
		if err == nil && n >= 1 && n <= MaxDaysAhead {
			return Event{Kind: EventChooseDate, DaysAhead: n}, nil
		}

	case strings.HasPrefix(token, "period_"):
		if p := strings.TrimPrefix(token, "period_"); p != "" {
			return Event{Kind: EventChoosePeriod, Period: p}, nil
		}

	case strings.HasPrefix(token, "time_"):
		slot := strings.TrimPrefix(token, "time_")
		if _, err := time.Parse(booking.TimeLayout, slot); err == nil {
			return Event{Kind: EventChooseTime, Time: slot}, nil
		}

	case strings.HasPrefix(token, "equipment_"):
		eq, ok := booking.ParseEquipment(strings.TrimPrefix(token, "equipment_"))
		if ok && eq != booking.EquipmentNone {
			return Event{Kind: EventChooseEquipment, Equipment: eq}, nil
		}
	}

	return Event{}, fmt.Errorf("%w: %s", ErrUnknownToken, token)
}

func decodeDecision(s string) (DecisionRef, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 4 {
		return DecisionRef{}, ErrUnknownToken
	}

	uid, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return DecisionRef{}, ErrUnknownToken
	}

	return DecisionRef{UserID: uid, ParkID: parts[1], Date: parts[2], Time: parts[3]}, nil
}

// Token encoders.

func ViewParkToken(parkID string) string    { return "park_" + parkID }
func ConfirmParkToken(parkID string) string { return "confirm_park_" + parkID }
func DateToken(daysAhead int) string        { return fmt.Sprintf("date_%d_days", daysAhead) }
func PeriodToken(period string) string      { return "period_" + period }
func TimeToken(slot string) string          { return "time_" + slot }

func EquipmentToken(eq booking.Equipment) string {
	return "equipment_" + string(eq)
}

func ApproveToken(ref DecisionRef) string { return "admin_approve_" + ref.suffix() }
func RejectToken(ref DecisionRef) string  { return "admin_reject_" + ref.suffix() }
