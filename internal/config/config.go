// Package config loads the engine's tunable constants from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fenwick-grid/whca/internal/reservation"
	"github.com/fenwick-grid/whca/internal/search"
)

// Engine holds every recognized configuration constant for the engine.
type Engine struct {
	// Window is the number of timesteps WHCA* plans per window.
	Window int32 `yaml:"window"`
	// ResetSpeed multiplies the forced-rewindow cadence.
	ResetSpeed int32 `yaml:"reset_speed"`
	// HeuristicWeightPercent scales RRA*'s internal heuristic; 100 keeps it
	// admissible.
	HeuristicWeightPercent int32 `yaml:"heuristic_weight_percentage"`
	// LaneBias nudges cost to encourage consistent passing sides; 0 disables it.
	LaneBias int32 `yaml:"lane_bias"`
	// TimeLength is the reservation table's modulus.
	TimeLength int64 `yaml:"time_length"`
	// NearEnough is the "close enough to destination" radius, in cells,
	// used by the Move activity's nudge-or-surrender decision.
	NearEnough float64 `yaml:"near_enough"`
}

// Default returns the engine's documented defaults.
func Default() Engine {
	return Engine{
		Window:                 8,
		ResetSpeed:             1,
		HeuristicWeightPercent: search.DefaultHeuristicWeightPercent,
		LaneBias:               1,
		TimeLength:             reservation.DefaultTimeLength,
		NearEnough:             1.5,
	}
}

// Load reads and decodes an Engine config from a YAML file at path,
// filling in any field the file omits with Default's value.
func Load(path string) (Engine, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return Engine{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return Engine{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}
