package phaser

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the timing and queue settings of a scheduler
type Config struct {
	// Name identifies the scheduler in logs and errors
	Name string `yaml:"name"`

	// InitialPhase is the phase before the first toggle
	InitialPhase Phase `yaml:"initial_phase"`

	// CycleMin and CycleMax bound the number of CycleUnits slept per loop
	// iteration. Both ends are inclusive.
	CycleMin  int           `yaml:"cycle_min"`
	CycleMax  int           `yaml:"cycle_max"`
	CycleUnit time.Duration `yaml:"cycle_unit"`

	// ToggleDelay is slept right before each toggle
	ToggleDelay time.Duration `yaml:"toggle_delay"`

	// GateIterations is the number of loop iterations between toggles.
	// Two iterations means each toggle waits for two random draws.
	GateIterations int `yaml:"gate_iterations"`

	QueueOrder Order `yaml:"queue_order"`
	QueueLimit int   `yaml:"queue_limit"`

	// Seed makes the random draws reproducible. Nil seeds from the clock.
	Seed *uint64 `yaml:"seed,omitempty"`
}

// DefaultConfig returns the standard traffic light timing: a random 4-6
// second draw per iteration and a toggle every second iteration.
func DefaultConfig() Config {
	return Config{
		Name:           "light",
		InitialPhase:   Red,
		CycleMin:       4,
		CycleMax:       6,
		CycleUnit:      time.Second,
		ToggleDelay:    time.Millisecond,
		GateIterations: 2,
		QueueOrder:     OrderLIFO,
	}
}

// Validate checks the configuration for invalid values
func (c Config) Validate() error {
	if !c.InitialPhase.Valid() {
		return NewConfigurationError("initial_phase", fmt.Sprintf("invalid phase %d", int(c.InitialPhase)))
	}
	if c.CycleMin < 0 {
		return NewConfigurationError("cycle_min", "must not be negative")
	}
	if c.CycleMax < c.CycleMin {
		return NewConfigurationError("cycle_max", fmt.Sprintf("%d is less than cycle_min %d", c.CycleMax, c.CycleMin))
	}
	if c.CycleMax < 1 {
		return NewConfigurationError("cycle_max", "must be at least 1")
	}
	if c.CycleUnit <= 0 {
		return NewConfigurationError("cycle_unit", "must be positive")
	}
	if c.ToggleDelay < 0 {
		return NewConfigurationError("toggle_delay", "must not be negative")
	}
	if c.GateIterations < 1 {
		return NewConfigurationError("gate_iterations", "must be at least 1")
	}
	if c.QueueOrder != OrderLIFO && c.QueueOrder != OrderFIFO {
		return NewConfigurationError("queue_order", fmt.Sprintf("invalid order %d", int(c.QueueOrder)))
	}
	if c.QueueLimit < 0 {
		return NewConfigurationError("queue_limit", "must not be negative")
	}
	return nil
}

// MinToggleInterval is the shortest possible time between two toggles
func (c Config) MinToggleInterval() time.Duration {
	return time.Duration(c.GateIterations*c.CycleMin)*c.CycleUnit + c.ToggleDelay
}

// MaxToggleInterval is the longest possible time between two toggles
func (c Config) MaxToggleInterval() time.Duration {
	return time.Duration(c.GateIterations*c.CycleMax)*c.CycleUnit + c.ToggleDelay
}

// ParseConfig decodes a YAML document on top of DefaultConfig
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a YAML configuration file
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// MarshalText implements encoding.TextMarshaler
func (o Order) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (o *Order) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "lifo", "":
		*o = OrderLIFO
	case "fifo":
		*o = OrderFIFO
	default:
		return NewConfigurationError("queue_order", fmt.Sprintf("unknown order %q", string(text)))
	}
	return nil
}
