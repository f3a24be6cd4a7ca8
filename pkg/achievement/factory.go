package achievement

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// RuleFactory is a function that creates a rule from a configuration.
type RuleFactory func(config RuleConfig) (Rule, error)

var (
	factoriesMu sync.RWMutex
	// factories stores registered rule factories by type
	factories = make(map[string]RuleFactory)
)

// RegisterRuleType registers a factory function for a rule type.
// This allows the builtin package to register its types without creating import cycles.
func RegisterRuleType(ruleType string, factory RuleFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	factories[ruleType] = factory
	logrus.Debugf("registered achievement rule type: %s", ruleType)
}

// IsRegisteredType reports whether a factory exists for the rule type.
func IsRegisteredType(ruleType string) bool {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	_, ok := factories[ruleType]
	return ok
}

// CreateRule creates a rule instance based on the configuration.
// Returns nil without error for disabled rules, and an error if the rule type is unknown.
func CreateRule(config RuleConfig) (Rule, error) {
	if !config.Enabled {
		logrus.Infof("skipping disabled achievement: %s", config.ID)
		return nil, nil
	}

	factoriesMu.RLock()
	factory, exists := factories[config.Type]
	factoriesMu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("unknown achievement rule type: %s", config.Type)
	}

	logrus.Debugf("creating achievement: id=%s, type=%s", config.ID, config.Type)
	return factory(config)
}

// RegisterRules creates rules from configs and registers them with the registry.
// The first creation error aborts registration.
func RegisterRules(registry *Registry, configs []RuleConfig) error {
	for _, config := range configs {
		rule, err := CreateRule(config)
		if err != nil {
			return fmt.Errorf("failed to create achievement %s: %w", config.ID, err)
		}
		if rule == nil {
			continue
		}

		if err := registry.Register(rule); err != nil {
			return fmt.Errorf("failed to register achievement %s: %w", rule.ID(), err)
		}
	}

	logrus.Infof("registered %d achievements", registry.Count())
	return nil
}
