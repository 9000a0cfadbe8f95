package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validConfig = `
scenario: scenario.yaml
sim:
  episodes: 2
  max_ticks: 50
  seed: 42
metrics:
  prometheus_enabled: true
  prometheus_port: ":9090"
`

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", validConfig)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "scenario.yaml", cfg.Scenario)
	assert.Equal(t, 2, cfg.Sim.Episodes)
	assert.Equal(t, 50, cfg.Sim.MaxTicks)
	assert.Equal(t, int64(42), cfg.Sim.Seed)
	assert.True(t, cfg.Metrics.PrometheusEnabled)
	assert.Equal(t, "jsonl", cfg.Logging.Backend)
}

func TestLoadDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", "scenario: s.yaml\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Sim.Episodes)
	assert.Equal(t, 1000, cfg.Sim.MaxTicks)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeFile(t, "config.yaml", validConfig)
	t.Setenv("FS_SIM__EPISODES", "7")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Sim.Episodes)
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	path := writeFile(t, "config.toml", "scenario = 's'\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRequiresScenario(t *testing.T) {
	path := writeFile(t, "config.yaml", "sim:\n  episodes: 1\n")
	_, err := Load(path)
	assert.Error(t, err)
}
