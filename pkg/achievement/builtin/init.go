package builtin

import (
	"github.com/msksk8cool/sk8school-bot/pkg/achievement"
)

// RegisterRuleTypes registers all built-in achievement rule types with the factory.
func RegisterRuleTypes() {
	achievement.RegisterRuleType(SessionCountRuleType, func(config achievement.RuleConfig) (achievement.Rule, error) {
		return NewSessionCountRule(config), nil
	})

	achievement.RegisterRuleType(RecentSessionsRuleType, func(config achievement.RuleConfig) (achievement.Rule, error) {
		return NewRecentSessionsRule(config), nil
	})

	achievement.RegisterRuleType(WeeklyStreakRuleType, func(config achievement.RuleConfig) (achievement.Rule, error) {
		return NewWeeklyStreakRule(config), nil
	})
}
