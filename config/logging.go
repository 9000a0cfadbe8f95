package config

import "fmt"

// LoggingConfig defines settings for the episode trace store.
type LoggingConfig struct {
	// Backend selects the trace store type; only "jsonl" is supported.
	Backend string `json:"backend"`
	// Path is the file location of the trace store. Empty disables
	// tracing.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
}

// Validate checks mandatory fields.
func (c LoggingConfig) Validate() error {
	if c.Backend != "jsonl" {
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	return nil
}
