package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Catalog holds the school's static offer: parks, bookable time slots,
// day periods, progress tiers and the achievement definitions.
type Catalog struct {
	Parks        []Park              `yaml:"parks" validate:"required,min=1,dive"`
	TimeSlots    []string            `yaml:"time_slots" validate:"required,min=1,dive,datetime=15:04"`
	Periods      []Period            `yaml:"periods" validate:"required,min=1,dive"`
	Tiers        []Tier              `yaml:"tiers" validate:"required,min=1,dive"`
	Achievements []AchievementConfig `yaml:"achievements" validate:"dive"`
	Price        int                 `yaml:"price" validate:"gte=0"`
	Duration     string              `yaml:"duration" validate:"required"`
}

// Park is a training location.
type Park struct {
	ID     string `yaml:"id" validate:"required,alphanum"`
	Name   string `yaml:"name" validate:"required"`
	MapURL string `yaml:"map_url" validate:"required,url"`
}

// Period groups time slots into a bucket shown as one menu entry ("day", "evening").
type Period struct {
	ID    string   `yaml:"id" validate:"required,alpha"`
	Name  string   `yaml:"name" validate:"required"`
	Emoji string   `yaml:"emoji"`
	Times []string `yaml:"times" validate:"required,min=1"`
}

// Tier is a band of cumulative session counts, both ends inclusive.
type Tier struct {
	ID   string `yaml:"id" validate:"required"`
	Name string `yaml:"name" validate:"required"`
	Min  int    `yaml:"min" validate:"gte=0"`
	Max  int    `yaml:"max" validate:"gtefield=Min"`
}

// AchievementConfig declares one unlockable achievement backed by a registered rule type.
type AchievementConfig struct {
	ID          string                 `yaml:"id" validate:"required"`
	Type        string                 `yaml:"type" validate:"required"`
	Name        string                 `yaml:"name" validate:"required"`
	Description string                 `yaml:"description"`
	Icon        string                 `yaml:"icon"`
	Enabled     *bool                  `yaml:"enabled,omitempty"`
	Parameters  map[string]interface{} `yaml:"parameters,omitempty"`
}

// IsEnabled reports whether the achievement is active. Achievements are on unless disabled explicitly.
func (a AchievementConfig) IsEnabled() bool {
	return a.Enabled == nil || *a.Enabled
}

// LoadConfig loads the catalog from a YAML file.
// Supports environment variable expansion in the form ${VAR_NAME} or ${VAR_NAME:default}.
// A missing file yields the built-in catalog.
func LoadConfig(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logrus.Warnf("catalog file %s not found, using built-in catalog", path)
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	expanded := expandEnvVars(string(data))

	var cat Catalog
	if err := yaml.Unmarshal([]byte(expanded), &cat); err != nil {
		return nil, fmt.Errorf("failed to parse YAML catalog: %w", err)
	}

	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	return &cat, nil
}

// Park returns the park with the given id.
func (c *Catalog) Park(id string) (Park, bool) {
	for _, p := range c.Parks {
		if p.ID == id {
			return p, true
		}
	}
	return Park{}, false
}

// ParkOrDefault returns the park with the given id, or the first park when
// the id is unknown.
func (c *Catalog) ParkOrDefault(id string) Park {
	if p, ok := c.Park(id); ok {
		return p
	}
	return c.Parks[0]
}

// Period returns the day period with the given id.
func (c *Catalog) Period(id string) (Period, bool) {
	for _, p := range c.Periods {
		if p.ID == id {
			return p, true
		}
	}
	return Period{}, false
}

// HasTimeSlot reports whether slot is one of the bookable time slots.
func (c *Catalog) HasTimeSlot(slot string) bool {
	for _, s := range c.TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		parts := strings.SplitN(key, ":", 2)
		varName := parts[0]
		defaultValue := ""
		if len(parts) == 2 {
			defaultValue = parts[1]
		}

		value := os.Getenv(varName)
		if value == "" {
			return defaultValue
		}
		return value
	})
}
