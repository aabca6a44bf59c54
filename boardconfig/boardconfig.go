// Package boardconfig loads a keyer's parameter bundle from a YAML profile
// file, grounded on s53zo-GoCluster's config package (os.ReadFile + yaml.v3
// Unmarshal into a tagged struct, wrapped errors). The YAML shape mirrors
// element.Config field-for-field; Load validates through
// element.NewConfig so an invalid profile is rejected before it can ever
// reach a running FSM.
package boardconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kb9qrp/ironkeyer/element"
)

// Profile is the on-disk shape of a keyer configuration.
type Profile struct {
	Mode             string `yaml:"mode"`
	UnitMS           uint16 `yaml:"unit_ms"`
	DebounceMS       uint8  `yaml:"debounce_ms"`
	QueueCapacity    uint16 `yaml:"queue_capacity"`
	CharSpaceEnabled bool   `yaml:"char_space_enabled"`

	// Board-level setting, read by ToneHz rather than Load.
	ToneHz uint32 `yaml:"tone_hz"`
}

var modeByName = map[string]element.Mode{
	"mode_a":     element.ModeA,
	"mode_b":     element.ModeB,
	"superkeyer": element.SuperKeyer,
}

// Load reads and validates a keyer profile from filename, returning a
// ready-to-use element.Config.
func Load(filename string) (element.Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return element.Config{}, fmt.Errorf("boardconfig: read %s: %w", filename, err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return element.Config{}, fmt.Errorf("boardconfig: parse %s: %w", filename, err)
	}

	mode, ok := modeByName[p.Mode]
	if !ok {
		return element.Config{}, fmt.Errorf("boardconfig: %s: unknown mode %q", filename, p.Mode)
	}

	cfg, err := element.NewConfig(mode, p.UnitMS, p.DebounceMS, p.QueueCapacity, p.CharSpaceEnabled)
	if err != nil {
		return element.Config{}, fmt.Errorf("boardconfig: %s: %w", filename, err)
	}
	return cfg, nil
}

// ToneHz reads just the sidetone frequency from a profile, for callers
// assembling a hardware board rather than the core FSMs.
func ToneHz(filename string) (uint32, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return 0, fmt.Errorf("boardconfig: read %s: %w", filename, err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return 0, fmt.Errorf("boardconfig: parse %s: %w", filename, err)
	}
	if p.ToneHz == 0 {
		return 600, nil
	}
	return p.ToneHz, nil
}
