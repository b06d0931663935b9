package engine

import (
	"fmt"
	"time"

	"github.com/example/info_propagation_sim/decay"
)

// Tunables are the runtime-adjustable propagation parameters. Invalid values
// are rejected outright; the engine never clamps and never applies a partial
// update.
type Tunables struct {
	// SpeedMultiplier scales every packet's propagation speed.
	SpeedMultiplier float64 `json:"speedMultiplier"`
	// DegradationRate is the per-hop accuracy loss fraction in [0,1].
	DegradationRate float64 `json:"degradationRate"`
	// AccuracyFloor is the lowest accuracy decay can produce.
	AccuracyFloor float64 `json:"accuracyFloor"`
	// UnitsPerHop converts hop counts to world distance units.
	UnitsPerHop float64 `json:"unitsPerHop"`
	// MaxDistance is the propagation range cutoff in distance units.
	MaxDistance float64 `json:"maxDistance"`
	// SoftBudget is the per-propagation time target. Overruns are logged,
	// never enforced; zero disables the warning.
	SoftBudget time.Duration `json:"softBudget"`
}

// DefaultTunables returns the standard parameter set.
func DefaultTunables() Tunables {
	return Tunables{
		SpeedMultiplier: 1.0,
		DegradationRate: decay.DefaultDegradationRate,
		AccuracyFloor:   decay.DefaultAccuracyFloor,
		UnitsPerHop:     decay.DefaultUnitsPerHop,
		MaxDistance:     decay.DefaultMaxDistance,
		SoftBudget:      5 * time.Millisecond,
	}
}

// Validate checks every field and reports the first violation.
func (t Tunables) Validate() error {
	if t.SpeedMultiplier <= 0 {
		return fmt.Errorf("speed multiplier must be positive, got %f", t.SpeedMultiplier)
	}
	if t.DegradationRate < 0 || t.DegradationRate > 1 {
		return fmt.Errorf("degradation rate must be in [0,1], got %f", t.DegradationRate)
	}
	if t.AccuracyFloor < 0 || t.AccuracyFloor >= 1 {
		return fmt.Errorf("accuracy floor must be in [0,1), got %f", t.AccuracyFloor)
	}
	if t.UnitsPerHop <= 0 {
		return fmt.Errorf("units per hop must be positive, got %f", t.UnitsPerHop)
	}
	if t.MaxDistance <= 0 {
		return fmt.Errorf("max propagation distance must be positive, got %f", t.MaxDistance)
	}
	if t.SoftBudget < 0 {
		return fmt.Errorf("soft budget must not be negative, got %s", t.SoftBudget)
	}
	return nil
}
