package progress

import (
	"time"

	"github.com/msksk8cool/sk8school-bot/pkg/achievement"
	"github.com/msksk8cool/sk8school-bot/pkg/catalog"
)

// Session is one confirmed training.
type Session struct {
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Park      string    `json:"park"`
	Timestamp time.Time `json:"timestamp"`
}

// Record is a student's progress document, keyed by user id in the store.
type Record struct {
	UserName      string    `json:"user_name"`
	Username      string    `json:"username"`
	Sessions      []Session `json:"sessions"`
	Achievements  []string  `json:"achievements"`
	Level         string    `json:"level"`
	TotalSessions int       `json:"total_sessions"`
	FirstSession  string    `json:"first_session,omitempty"`
	LastSession   string    `json:"last_session,omitempty"`
}

// SessionInput describes a confirmed session to record.
type SessionInput struct {
	UserID   int64
	UserName string
	Username string
	Park     string
	Date     string
	Time     string
}

// Result is what AddSession reports back.
type Result struct {
	NewAchievements []achievement.Unlock
	Level           catalog.Tier
	Total           int
}

// Summary is the read model behind the progress screen.
type Summary struct {
	UserName          string
	Username          string
	Tier              catalog.Tier
	Next              *catalog.Tier
	Percent           float64
	Total             int
	Achievements      []achievement.Unlock
	AchievementsTotal int
	FirstSession      string
	LastSession       string
	Recent            []Session
}

// Entry is one leaderboard row.
type Entry struct {
	UserID       int64  `json:"user_id"`
	UserName     string `json:"user_name"`
	Username     string `json:"username"`
	Total        int    `json:"total_sessions"`
	Level        string `json:"level"`
	Achievements int    `json:"achievements_count"`
}
