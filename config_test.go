package phaser

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, Red, cfg.InitialPhase)
	assert.Equal(t, 4, cfg.CycleMin)
	assert.Equal(t, 6, cfg.CycleMax)
	assert.Equal(t, time.Second, cfg.CycleUnit)
	assert.Equal(t, time.Millisecond, cfg.ToggleDelay)
	assert.Equal(t, 2, cfg.GateIterations)
	assert.Equal(t, 8*time.Second+time.Millisecond, cfg.MinToggleInterval())
	assert.Equal(t, 12*time.Second+time.Millisecond, cfg.MaxToggleInterval())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"invalid phase", func(c *Config) { c.InitialPhase = Phase(7) }, "initial_phase"},
		{"negative min", func(c *Config) { c.CycleMin = -1 }, "cycle_min"},
		{"max below min", func(c *Config) { c.CycleMax = 3 }, "cycle_max"},
		{"zero range", func(c *Config) { c.CycleMin, c.CycleMax = 0, 0 }, "cycle_max"},
		{"zero unit", func(c *Config) { c.CycleUnit = 0 }, "cycle_unit"},
		{"negative delay", func(c *Config) { c.ToggleDelay = -time.Millisecond }, "toggle_delay"},
		{"zero gate", func(c *Config) { c.GateIterations = 0 }, "gate_iterations"},
		{"invalid order", func(c *Config) { c.QueueOrder = Order(5) }, "queue_order"},
		{"negative limit", func(c *Config) { c.QueueLimit = -2 }, "queue_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestParseConfig(t *testing.T) {
	data := []byte(`
name: main-street
initial_phase: green
cycle_min: 2
cycle_max: 3
cycle_unit: 250ms
toggle_delay: 2ms
gate_iterations: 1
queue_order: fifo
queue_limit: 16
seed: 42
`)

	cfg, err := ParseConfig(data)
	require.NoError(t, err)

	assert.Equal(t, "main-street", cfg.Name)
	assert.Equal(t, Green, cfg.InitialPhase)
	assert.Equal(t, 2, cfg.CycleMin)
	assert.Equal(t, 3, cfg.CycleMax)
	assert.Equal(t, 250*time.Millisecond, cfg.CycleUnit)
	assert.Equal(t, 2*time.Millisecond, cfg.ToggleDelay)
	assert.Equal(t, 1, cfg.GateIterations)
	assert.Equal(t, OrderFIFO, cfg.QueueOrder)
	assert.Equal(t, 16, cfg.QueueLimit)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, uint64(42), *cfg.Seed)
}

func TestParseConfig_KeepsDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("name: side-road\n"))
	require.NoError(t, err)

	assert.Equal(t, "side-road", cfg.Name)
	assert.Equal(t, DefaultConfig().CycleUnit, cfg.CycleUnit)
	assert.Equal(t, OrderLIFO, cfg.QueueOrder)
	assert.Nil(t, cfg.Seed)
}

func TestParseConfig_Errors(t *testing.T) {
	_, err := ParseConfig([]byte("initial_phase: amber\n"))
	assert.Error(t, err)

	_, err = ParseConfig([]byte("queue_order: random\n"))
	assert.Error(t, err)

	_, err = ParseConfig([]byte("cycle_min: 9\n"))
	assert.True(t, IsConfigurationError(err))
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "light.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: file-light\ncycle_unit: 1s\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "file-light", cfg.Name)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_MarshalYAML(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialPhase = Green
	cfg.QueueOrder = OrderFIFO

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "initial_phase: green")
	assert.Contains(t, string(data), "queue_order: fifo")

	decoded, err := ParseConfig(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, decoded)
}
