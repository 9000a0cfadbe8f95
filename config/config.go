package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/fleetsim/core/metrics"
	"github.com/kilianp07/fleetsim/core/sim"
	"github.com/kilianp07/fleetsim/infra/telemetry"
)

// Config is the top-level service configuration.
type Config struct {
	// Scenario is the path of the instance description file.
	Scenario string `json:"scenario"`
	// Output receives the episode results; the extension selects the
	// format (.json or .csv). Empty disables export.
	Output    string           `json:"output"`
	Sim       sim.Config       `json:"sim"`
	Logging   LoggingConfig    `json:"logging"`
	Metrics   metrics.Config   `json:"metrics"`
	Telemetry telemetry.Config `json:"telemetry"`
}

// Load reads the configuration file (YAML or JSON by extension) and applies
// FS_-prefixed environment overrides, "__" standing in for the key
// separator.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("FS_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "fs_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Sim.SetDefaults()
	cfg.Logging.SetDefaults()
	if cfg.Scenario == "" {
		return nil, fmt.Errorf("scenario file is required")
	}
	if err := cfg.Sim.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Telemetry.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}
}
