// Package tuning holds the anti-detection behavior profiles. Each profile
// controls how quickly the bot moves its view and how long it waits before
// chat replies; higher levels trade responsiveness for a more human cadence.
package tuning

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

type Profile struct {
	MoveDelayMs          int     `yaml:"move_delay_ms"`
	LookSpeed            float64 `yaml:"look_speed"`
	ChatDelayMs          int     `yaml:"chat_delay_ms"`
	RandomMovementChance float64 `yaml:"random_movement_chance"`
}

// Defaults mirrors the profile table the dashboard was shipped with.
func Defaults() Tuning {
	return Tuning{
		Profiles: map[string]Profile{
			"minimal":  {MoveDelayMs: 50, LookSpeed: 0.8, ChatDelayMs: 300, RandomMovementChance: 0.05},
			"balanced": {MoveDelayMs: 150, LookSpeed: 0.5, ChatDelayMs: 1000, RandomMovementChance: 0.1},
			"careful":  {MoveDelayMs: 300, LookSpeed: 0.3, ChatDelayMs: 2000, RandomMovementChance: 0.15},
			"paranoid": {MoveDelayMs: 500, LookSpeed: 0.2, ChatDelayMs: 3000, RandomMovementChance: 0.2},
		},
	}
}

// Load reads tuning overrides from a yaml file. An empty path returns the
// built-in defaults.
func Load(path string) (Tuning, error) {
	t := Defaults()
	if strings.TrimSpace(path) == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	var override Tuning
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	for name, p := range override.Profiles {
		t.Profiles[name] = p
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	for name, p := range t.Profiles {
		if p.MoveDelayMs <= 0 {
			return fmt.Errorf("profile %s: move_delay_ms must be > 0", name)
		}
		if p.LookSpeed <= 0 || p.LookSpeed > 1 {
			return fmt.Errorf("profile %s: look_speed must be in (0,1]", name)
		}
		if p.ChatDelayMs < 0 {
			return fmt.Errorf("profile %s: chat_delay_ms must be >= 0", name)
		}
		if p.RandomMovementChance < 0 || p.RandomMovementChance > 1 {
			return fmt.Errorf("profile %s: random_movement_chance must be in [0,1]", name)
		}
	}
	for _, name := range []string{"minimal", "balanced", "careful", "paranoid"} {
		if _, ok := t.Profiles[name]; !ok {
			return fmt.Errorf("missing profile: %s", name)
		}
	}
	return nil
}

// Profile returns the profile for an anti-detection level, falling back to
// "balanced" for unknown levels.
func (t Tuning) Profile(level string) Profile {
	if p, ok := t.Profiles[level]; ok {
		return p
	}
	return t.Profiles["balanced"]
}
