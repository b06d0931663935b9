package decay

import "github.com/example/info_propagation_sim/core"

// Coefficient holds the per-type propagation factors. BaseSpeed scales how
// fast a packet of this type travels; Weight is the intrinsic interest of
// the type, compared against receiver thresholds by the type filter.
type Coefficient struct {
	BaseSpeed float64
	Weight    float64
}

// Coefficients is the per-type lookup table. Unknown types fall back to the
// zero-value defaults returned by Lookup.
type Coefficients map[core.InformationType]Coefficient

// DefaultCoefficients returns the standard table. Military information is
// the fastest class: at equal severity a military action outruns an
// economic crisis.
func DefaultCoefficients() Coefficients {
	return Coefficients{
		core.InfoMilitaryAction:    {BaseSpeed: 2.0, Weight: 1.0},
		core.InfoPlagueOutbreak:    {BaseSpeed: 1.7, Weight: 0.95},
		core.InfoRebellion:         {BaseSpeed: 1.8, Weight: 0.9},
		core.InfoSuccessionCrisis:  {BaseSpeed: 1.5, Weight: 0.85},
		core.InfoDiplomaticChange:  {BaseSpeed: 1.6, Weight: 0.8},
		core.InfoAllianceFormation: {BaseSpeed: 1.4, Weight: 0.7},
		core.InfoEconomicCrisis:    {BaseSpeed: 1.2, Weight: 0.6},
		core.InfoNaturalDisaster:   {BaseSpeed: 1.3, Weight: 0.55},
		core.InfoTradeDisruption:   {BaseSpeed: 1.1, Weight: 0.5},
		core.InfoReligiousEvent:    {BaseSpeed: 0.9, Weight: 0.45},
		core.InfoTechnologyAdvance: {BaseSpeed: 0.8, Weight: 0.4},
		core.InfoCulturalShift:     {BaseSpeed: 0.7, Weight: 0.3},
	}
}

// Lookup returns the coefficient for t, or a conservative default for
// types the table does not know.
func (c Coefficients) Lookup(t core.InformationType) Coefficient {
	if co, ok := c[t]; ok {
		return co
	}
	return Coefficient{BaseSpeed: 1.0, Weight: DefaultTypeWeightThreshold}
}

// TypeWeight returns the intrinsic weight of an information type.
func (c Coefficients) TypeWeight(t core.InformationType) float64 {
	return c.Lookup(t).Weight
}
