package builtin

import (
	"context"

	"github.com/msksk8cool/sk8school-bot/pkg/achievement"
)

const (
	// SessionCountRuleType unlocks once the total number of sessions reaches a minimum.
	SessionCountRuleType = "session_count"

	// DefaultSessionCountMin is the default minimum number of sessions.
	DefaultSessionCountMin = 1
)

// SessionCountRule is satisfied when the history holds at least min sessions.
type SessionCountRule struct {
	config achievement.RuleConfig
	min    int
}

// NewSessionCountRule creates a new session count rule.
func NewSessionCountRule(config achievement.RuleConfig) *SessionCountRule {
	return &SessionCountRule{
		config: config,
		min:    config.GetInt("min", DefaultSessionCountMin),
	}
}

// ID returns the achievement identifier.
func (r *SessionCountRule) ID() string {
	return r.config.ID
}

// Name returns the achievement display name.
func (r *SessionCountRule) Name() string {
	return r.config.Name
}

// Config returns the rule configuration.
func (r *SessionCountRule) Config() achievement.RuleConfig {
	return r.config
}

// Evaluate checks the session total against the minimum.
func (r *SessionCountRule) Evaluate(ctx context.Context, h achievement.History) (bool, error) {
	return h.Count() >= r.min, nil
}
