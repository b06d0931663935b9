// Package decay holds the pure numeric model of information spread: how
// accuracy erodes over hops, how fast different information travels, and
// the distance/relevance cutoffs that terminate propagation branches.
// Every function is deterministic and free of engine state.
package decay

import (
	"math"

	"github.com/example/info_propagation_sim/core"
)

const (
	// DefaultAccuracyFloor is the lowest accuracy decay can produce; even
	// wildly distorted information keeps a kernel of truth.
	DefaultAccuracyFloor = 0.1

	// DefaultDegradationRate is the per-hop accuracy loss fraction.
	DefaultDegradationRate = 0.1

	// DefaultUnitsPerHop converts hop counts to world distance units.
	DefaultUnitsPerHop = 200.0

	// DefaultMaxDistance is the standard propagation range cutoff.
	DefaultMaxDistance = 2000.0

	// DefaultTypeWeightThreshold is the interest level a type weight must
	// exceed for delivery; weights equal to it are filtered out.
	DefaultTypeWeightThreshold = 0.1

	// HopsPerTierDrop is how many full hops cost one relevance tier.
	HopsPerTierDrop = 3
)

// DegradedAccuracy applies exponential per-hop decay with the default
// floor: max(floor, initial*(1-rate)^hops). At zero hops it returns the
// initial accuracy unchanged.
func DegradedAccuracy(initial float64, hops uint32, rate float64) float64 {
	return DegradedAccuracyFloor(initial, hops, rate, DefaultAccuracyFloor)
}

// DegradedAccuracyFloor is DegradedAccuracy with an explicit floor.
func DegradedAccuracyFloor(initial float64, hops uint32, rate, floor float64) float64 {
	if hops == 0 {
		return initial
	}
	decayed := initial * math.Pow(1-rate, float64(hops))
	if decayed < floor {
		return floor
	}
	return decayed
}

// PropagationSpeed returns how fast a packet travels, scaling the type's
// base speed by its severity. A severity-1.0 event moves twice as fast as
// a severity-0 event of the same type.
func PropagationSpeed(c Coefficients, t core.InformationType, severity float64) float64 {
	return c.Lookup(t).BaseSpeed * (1 + severity)
}

// EstimatedDistance converts a hop count to world distance units.
func EstimatedDistance(hops uint32, unitsPerHop float64) float64 {
	return float64(hops) * unitsPerHop
}

// PassesDistanceFilter reports whether a packet at the given hop count is
// still inside the propagation range. The bound is inclusive: a packet
// exactly at maxDistance still propagates.
func PassesDistanceFilter(hops uint32, unitsPerHop, maxDistance float64) bool {
	return EstimatedDistance(hops, unitsPerHop) <= maxDistance
}

// PassesTypeFilter reports whether a type weight clears the receiver's
// interest threshold. The bound is exclusive, unlike the distance filter:
// a weight exactly at the threshold is dropped.
func PassesTypeFilter(weight, threshold float64) bool {
	return weight > threshold
}

// RelevanceTier grades a packet for a receiver: the base relevance loses
// one tier per HopsPerTierDrop full hops (floored at low), then special
// interest restores one tier (capped at critical).
func RelevanceTier(base core.RelevanceTier, hops uint32, specialInterest bool) core.RelevanceTier {
	tier := (base - core.RelevanceTier(hops/HopsPerTierDrop)).Clamp()
	if specialInterest {
		tier = (tier + 1).Clamp()
	}
	return tier
}

// TravelDelayDays estimates how many days information needs to cover the
// accumulated traversal cost at the given speed.
func TravelDelayDays(cost, speed float64) float64 {
	if speed <= 0 {
		return cost
	}
	return cost / speed
}

// ProcessingDelayDays is how long a receiver sits on information of a tier
// before reacting: critical news is acted on the same day, background noise
// waits a week.
func ProcessingDelayDays(tier core.RelevanceTier) float64 {
	switch tier {
	case core.TierCritical:
		return 0
	case core.TierHigh:
		return 1
	case core.TierMedium:
		return 3
	default:
		return 7
	}
}
