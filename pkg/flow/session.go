package flow

import (
	"sync"

	"github.com/msksk8cool/sk8school-bot/pkg/booking"
)

// State is a step of the booking conversation.
type State string

const (
	StateStart           State = "start"
	StateParkViewed      State = "park_viewed"
	StateParkSelected    State = "park_selected"
	StateDateSelected    State = "date_selected"
	StatePeriodSelected  State = "period_selected"
	StateTimeSelected    State = "time_selected"
	StateEquipmentMenu   State = "equipment_menu"
	StateAwaitingConfirm State = "awaiting_final_confirm"
	StateSubmitted       State = "submitted"
	StateCancelled       State = "cancelled"
)

// Selection is the in-flight booking a user is assembling.
type Selection struct {
	ParkID      string
	ParkName    string
	Date        string
	DateDisplay string
	Period      string
	Time        string
	Equipment   booking.Equipment
}

// Placeholders shown when a step is reached without the earlier choices,
// for example after a restart.
const (
	placeholderPark = "Парк"
	placeholderDate = "Дата"
	placeholderTime = "Время"
)

func (s Selection) parkName() string {
	if s.ParkName == "" {
		return placeholderPark
	}
	return s.ParkName
}

func (s Selection) dateDisplay() string {
	if s.DateDisplay == "" {
		return placeholderDate
	}
	return s.DateDisplay
}

func (s Selection) timeSlot() string {
	if s.Time == "" {
		return placeholderTime
	}
	return s.Time
}

type session struct {
	state State
	sel   Selection
}

// sessions is the per-user conversation map. The mutex guards the map only;
// concurrent updates from one user are last-write-wins.
type sessions struct {
	mu sync.Mutex
	m  map[int64]session
}

func newSessions() *sessions {
	return &sessions{m: make(map[int64]session)}
}

func (s *sessions) get(userID int64) session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.m[userID]; ok {
		return sess
	}
	return session{state: StateStart}
}

func (s *sessions) put(userID int64, sess session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m[userID] = sess
}

func (s *sessions) drop(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.m, userID)
}
