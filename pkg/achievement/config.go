package achievement

// RuleConfig is the base configuration for all achievement rules.
// This is typically loaded from the catalog YAML.
type RuleConfig struct {
	ID          string                 `yaml:"id" json:"id"`
	Name        string                 `yaml:"name" json:"name"`
	Type        string                 `yaml:"type" json:"type"` // e.g., "session_count"
	Description string                 `yaml:"description" json:"description"`
	Icon        string                 `yaml:"icon" json:"icon"`
	Enabled     bool                   `yaml:"enabled" json:"enabled"`
	Parameters  map[string]interface{} `yaml:"parameters" json:"parameters"`
}

// GetInt retrieves an integer value from parameters with a default.
// YAML decodes integers as int, JSON as float64; both are accepted.
func (c *RuleConfig) GetInt(key string, defaultValue int) int {
	switch v := c.Parameters[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return defaultValue
}

// GetString retrieves a string value from parameters with a default.
func (c *RuleConfig) GetString(key string, defaultValue string) string {
	if val, ok := c.Parameters[key]; ok {
		if strVal, ok := val.(string); ok {
			return strVal
		}
	}
	return defaultValue
}
