package achievement

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Engine evaluates a session history against the registered achievement rules.
type Engine struct {
	registry *Registry
}

// NewEngine creates a new achievement evaluation engine.
func NewEngine(registry *Registry) *Engine {
	return &Engine{
		registry: registry,
	}
}

// Evaluate checks every rule not in unlocked and returns the ones the history
// now satisfies, in registration order. unlocked is not modified.
func (e *Engine) Evaluate(ctx context.Context, h History, unlocked []string) []Unlock {
	have := make(map[string]bool, len(unlocked))
	for _, id := range unlocked {
		have[id] = true
	}

	var earned []Unlock
	for _, rule := range e.registry.GetAll() {
		if have[rule.ID()] {
			continue
		}

		ok, err := rule.Evaluate(ctx, h)
		if err != nil {
			logrus.Errorf("achievement %s evaluation failed for user %s: %v", rule.ID(), h.UserID, err)
			// Continue evaluating other rules even if one fails
			continue
		}

		if ok {
			logrus.Infof("achievement %s unlocked for user %s", rule.ID(), h.UserID)
			earned = append(earned, NewUnlock(rule))
			have[rule.ID()] = true
		}
	}

	return earned
}

// Describe resolves achievement ids to their display metadata, skipping unknown ids.
func (e *Engine) Describe(ids []string) []Unlock {
	out := make([]Unlock, 0, len(ids))
	for _, id := range ids {
		if rule := e.registry.Get(id); rule != nil {
			out = append(out, NewUnlock(rule))
		}
	}
	return out
}

// Total returns the number of achievements that can be earned.
func (e *Engine) Total() int {
	return e.registry.Count()
}

// GetRegistry returns the rule registry used by this engine.
func (e *Engine) GetRegistry() *Registry {
	return e.registry
}
