package achievement

import (
	"fmt"
	"sync"
)

// Registry manages the achievement rules in declaration order.
// It provides thread-safe registration and lookup of rules.
type Registry struct {
	rules map[string]Rule
	order []string
	mu    sync.RWMutex
}

// NewRegistry creates a new empty rule registry.
func NewRegistry() *Registry {
	return &Registry{
		rules: make(map[string]Rule),
	}
}

// Register adds a rule to the registry.
// Returns an error if a rule with the same ID already exists.
func (r *Registry) Register(rule Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rules[rule.ID()]; exists {
		return fmt.Errorf("achievement %s already registered", rule.ID())
	}

	r.rules[rule.ID()] = rule
	r.order = append(r.order, rule.ID())
	return nil
}

// Get returns a rule by ID.
// Returns nil if the rule doesn't exist.
func (r *Registry) Get(id string) Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.rules[id]
}

// GetAll returns all registered rules in registration order.
func (r *Registry) GetAll() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rules := make([]Rule, 0, len(r.order))
	for _, id := range r.order {
		rules = append(rules, r.rules[id])
	}

	return rules
}

// Count returns the number of registered rules.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rules)
}
