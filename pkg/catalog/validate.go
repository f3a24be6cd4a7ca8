package catalog

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks field constraints and the cross references between sections.
func (c *Catalog) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("catalog field validation failed: %w", err)
	}

	parkIDs := make(map[string]bool)
	for _, p := range c.Parks {
		if parkIDs[p.ID] {
			return fmt.Errorf("duplicate park ID: %s", p.ID)
		}
		parkIDs[p.ID] = true
	}

	slots := make(map[string]bool)
	for _, s := range c.TimeSlots {
		if slots[s] {
			return fmt.Errorf("duplicate time slot: %s", s)
		}
		slots[s] = true
	}

	periodIDs := make(map[string]bool)
	for _, p := range c.Periods {
		if periodIDs[p.ID] {
			return fmt.Errorf("duplicate period ID: %s", p.ID)
		}
		periodIDs[p.ID] = true

		for _, t := range p.Times {
			if !slots[t] {
				return fmt.Errorf("period %s references unknown time slot: %s", p.ID, t)
			}
		}
	}

	if err := validateTiers(c.Tiers); err != nil {
		return err
	}

	achievementIDs := make(map[string]bool)
	for _, a := range c.Achievements {
		if achievementIDs[a.ID] {
			return fmt.Errorf("duplicate achievement ID: %s", a.ID)
		}
		achievementIDs[a.ID] = true
	}

	return nil
}

// validateTiers requires the tiers to start at zero and to be contiguous and
// non-overlapping once sorted by their lower bound.
func validateTiers(tiers []Tier) error {
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })

	if sorted[0].Min != 0 {
		return fmt.Errorf("tier %s must start at 0 sessions, starts at %d", sorted[0].ID, sorted[0].Min)
	}

	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if cur.Min != prev.Max+1 {
			return fmt.Errorf("tiers %s and %s are not contiguous (%d..%d then %d..%d)",
				prev.ID, cur.ID, prev.Min, prev.Max, cur.Min, cur.Max)
		}
	}

	return nil
}
