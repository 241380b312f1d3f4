package intersection

import (
	"fmt"
	"os"

	"github.com/anggasct/phaser"
	"gopkg.in/yaml.v3"
)

// Plan describes the lights of an intersection
type Plan struct {
	Name   string
	Lights []phaser.Config
}

type planFile struct {
	Name   string      `yaml:"name"`
	Lights []yaml.Node `yaml:"lights"`
}

// ParsePlan decodes a YAML plan. Every light starts from
// phaser.DefaultConfig, so only overrides need to be listed.
func ParsePlan(data []byte) (Plan, error) {
	var file planFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Plan{}, fmt.Errorf("parse plan: %w", err)
	}

	plan := Plan{Name: file.Name, Lights: make([]phaser.Config, 0, len(file.Lights))}
	for i := range file.Lights {
		cfg := phaser.DefaultConfig()
		if err := file.Lights[i].Decode(&cfg); err != nil {
			return Plan{}, fmt.Errorf("parse plan light %d: %w", i, err)
		}
		plan.Lights = append(plan.Lights, cfg)
	}

	if err := plan.Validate(); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

// LoadPlan reads a YAML plan file
func LoadPlan(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("read plan %s: %w", path, err)
	}
	return ParsePlan(data)
}

// UniformPlan creates a plan of n lights sharing cfg. Each light gets its
// own seed derived from cfg.Seed when one is set.
func UniformPlan(name string, n int, cfg phaser.Config) Plan {
	plan := Plan{Name: name, Lights: make([]phaser.Config, 0, n)}
	for i := 0; i < n; i++ {
		light := cfg
		light.Name = fmt.Sprintf("%s-%d", cfg.Name, i+1)
		if cfg.Seed != nil {
			seed := *cfg.Seed + uint64(i)
			light.Seed = &seed
		}
		plan.Lights = append(plan.Lights, light)
	}
	return plan
}

// Validate checks every light and rejects duplicate names
func (p Plan) Validate() error {
	if len(p.Lights) == 0 {
		return phaser.NewConfigurationError("lights", "plan has no lights")
	}

	seen := make(map[string]bool, len(p.Lights))
	for _, cfg := range p.Lights {
		if cfg.Name == "" {
			return phaser.NewConfigurationError("lights.name", "light name must not be empty")
		}
		if seen[cfg.Name] {
			return phaser.NewConfigurationError("lights.name", fmt.Sprintf("duplicate light %q", cfg.Name))
		}
		seen[cfg.Name] = true

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("light %q: %w", cfg.Name, err)
		}
	}
	return nil
}
