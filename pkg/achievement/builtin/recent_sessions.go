package builtin

import (
	"context"
	"time"

	"github.com/msksk8cool/sk8school-bot/pkg/achievement"
	"github.com/sirupsen/logrus"
)

const (
	// RecentSessionsRuleType unlocks when the latest sessions all fall inside a trailing window.
	RecentSessionsRuleType = "recent_sessions"

	DefaultRecentSessionsCount = 3
	DefaultRecentSessionsDays  = 7
)

// RecentSessionsRule is satisfied when the last count sessions are dated no
// earlier than days before the evaluation instant.
type RecentSessionsRule struct {
	config achievement.RuleConfig
	count  int
	window time.Duration
}

// NewRecentSessionsRule creates a new trailing-window rule.
func NewRecentSessionsRule(config achievement.RuleConfig) *RecentSessionsRule {
	count := config.GetInt("count", DefaultRecentSessionsCount)
	days := config.GetInt("days", DefaultRecentSessionsDays)

	logrus.Debugf("creating recent sessions rule %s with count=%d days=%d", config.ID, count, days)

	return &RecentSessionsRule{
		config: config,
		count:  count,
		window: time.Duration(days) * 24 * time.Hour,
	}
}

// ID returns the achievement identifier.
func (r *RecentSessionsRule) ID() string {
	return r.config.ID
}

// Name returns the achievement display name.
func (r *RecentSessionsRule) Name() string {
	return r.config.Name
}

// Config returns the rule configuration.
func (r *RecentSessionsRule) Config() achievement.RuleConfig {
	return r.config
}

// Evaluate checks the most recent sessions against the trailing window.
func (r *RecentSessionsRule) Evaluate(ctx context.Context, h achievement.History) (bool, error) {
	if r.count <= 0 || h.Count() < r.count {
		return false, nil
	}

	since := h.Now.Add(-r.window)
	for _, d := range h.Dates[len(h.Dates)-r.count:] {
		if d.Before(since) {
			return false, nil
		}
	}

	return true, nil
}
