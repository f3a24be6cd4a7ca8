package achievement

import (
	"context"
	"time"
)

// Rule decides whether an achievement is earned for a session history.
// Rules are registered in a Registry and evaluated by the Engine.
type Rule interface {
	// ID returns the achievement identifier.
	ID() string

	// Name returns the display name shown to the user.
	Name() string

	// Evaluate reports whether the history satisfies the rule.
	// Returns error only for unexpected failures, not for a negative result.
	Evaluate(ctx context.Context, h History) (bool, error)

	// Config returns the rule's configuration.
	Config() RuleConfig
}

// History is the input every rule is evaluated against.
type History struct {
	UserID string
	// Dates holds the calendar day of every session in the order they were recorded.
	Dates []time.Time
	// Now is the evaluation instant; time-window rules measure against it.
	Now time.Time
}

// Count returns the number of sessions in the history.
func (h History) Count() int {
	return len(h.Dates)
}

// Unlock is an achievement newly earned during an evaluation.
type Unlock struct {
	ID          string
	Name        string
	Description string
	Icon        string
}

// NewUnlock builds an Unlock from a rule's configuration.
func NewUnlock(r Rule) Unlock {
	cfg := r.Config()
	return Unlock{
		ID:          r.ID(),
		Name:        r.Name(),
		Description: cfg.Description,
		Icon:        cfg.Icon,
	}
}
