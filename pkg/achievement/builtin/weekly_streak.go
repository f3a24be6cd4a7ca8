package builtin

import (
	"context"
	"sort"
	"time"

	"github.com/msksk8cool/sk8school-bot/pkg/achievement"
)

const (
	// WeeklyStreakRuleType unlocks after training in consecutive calendar weeks.
	WeeklyStreakRuleType = "weekly_streak"

	DefaultWeeklyStreakWeeks = 3
)

// WeeklyStreakRule is satisfied when the most recent weeks with sessions
// form a run of consecutive Monday-based calendar weeks of the required length.
type WeeklyStreakRule struct {
	config achievement.RuleConfig
	weeks  int
}

// NewWeeklyStreakRule creates a new weekly streak rule.
func NewWeeklyStreakRule(config achievement.RuleConfig) *WeeklyStreakRule {
	return &WeeklyStreakRule{
		config: config,
		weeks:  config.GetInt("weeks", DefaultWeeklyStreakWeeks),
	}
}

// ID returns the achievement identifier.
func (r *WeeklyStreakRule) ID() string {
	return r.config.ID
}

// Name returns the achievement display name.
func (r *WeeklyStreakRule) Name() string {
	return r.config.Name
}

// Config returns the rule configuration.
func (r *WeeklyStreakRule) Config() achievement.RuleConfig {
	return r.config
}

// Evaluate groups sessions by week start and walks back from the latest week.
func (r *WeeklyStreakRule) Evaluate(ctx context.Context, h achievement.History) (bool, error) {
	if r.weeks <= 0 || h.Count() < r.weeks {
		return false, nil
	}

	seen := make(map[time.Time]bool)
	var starts []time.Time
	for _, d := range h.Dates {
		ws := weekStart(d)
		if !seen[ws] {
			seen[ws] = true
			starts = append(starts, ws)
		}
	}
	if len(starts) < r.weeks {
		return false, nil
	}

	sort.Slice(starts, func(i, j int) bool { return starts[i].After(starts[j]) })

	for i := 1; i < r.weeks; i++ {
		if !starts[i].AddDate(0, 0, 7).Equal(starts[i-1]) {
			return false, nil
		}
	}

	return true, nil
}

// weekStart returns midnight of the Monday of d's week, in d's location.
func weekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	y, m, day := d.Date()
	return time.Date(y, m, day-offset, 0, 0, 0, 0, d.Location())
}
