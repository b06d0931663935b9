package core

import "fmt"

// New packets always start at full accuracy and zero hops, with the source
// province as the first path entry.

// NewPacket builds a packet of an arbitrary type at its source province.
// Severity is clamped to [0,1].
func NewPacket(t InformationType, rel RelevanceTier, severity float64, source ProvinceID, originator EntityID) InformationPacket {
	return InformationPacket{
		Type:           t,
		BaseRelevance:  rel.Clamp(),
		Severity:       clampUnit(severity),
		Accuracy:       1.0,
		HopCount:       0,
		SourceProvince: source,
		Originator:     originator,
		Path:           []ProvinceID{source},
	}
}

// NewMilitaryAction derives a military packet from a troop movement.
// Severity scales with troop count; 50k troops or more is a full-severity
// event and anything above 40k is escalated to critical relevance.
func NewMilitaryAction(source ProvinceID, originator EntityID, troopCount float64) InformationPacket {
	severity := clampUnit(troopCount / 50000)
	rel := TierHigh
	if severity > 0.8 {
		rel = TierCritical
	}
	p := NewPacket(InfoMilitaryAction, rel, severity, source, originator)
	p.Description = fmt.Sprintf("military mobilization of %.0f troops", troopCount)
	p.SetPayload("troop_count", troopCount)
	return p
}

// NewEconomicCrisis derives an economic packet from a market shock measured
// as a fraction of provincial income lost.
func NewEconomicCrisis(source ProvinceID, originator EntityID, incomeLoss float64) InformationPacket {
	severity := clampUnit(incomeLoss)
	rel := TierMedium
	if severity > 0.5 {
		rel = TierHigh
	}
	p := NewPacket(InfoEconomicCrisis, rel, severity, source, originator)
	p.Description = fmt.Sprintf("economic crisis, %.0f%% income lost", incomeLoss*100)
	p.SetPayload("income_loss", incomeLoss)
	return p
}

// NewRebellion derives a rebellion packet from the rebel force size relative
// to the garrison holding the province.
func NewRebellion(source ProvinceID, originator EntityID, rebelStrength, garrison float64) InformationPacket {
	ratio := 1.0
	if garrison > 0 {
		ratio = rebelStrength / garrison
	}
	severity := clampUnit(ratio / 2)
	rel := TierHigh
	if severity > 0.75 {
		rel = TierCritical
	}
	p := NewPacket(InfoRebellion, rel, severity, source, originator)
	p.Description = fmt.Sprintf("rebellion of %.0f against garrison of %.0f", rebelStrength, garrison)
	p.SetPayload("rebel_strength", rebelStrength)
	p.SetPayload("garrison", garrison)
	return p
}

// NewDiplomaticChange derives a diplomatic packet. Severity is supplied by
// the diplomacy system (a declaration of war is 1.0, an embassy snub 0.1).
func NewDiplomaticChange(source ProvinceID, originator EntityID, severity float64) InformationPacket {
	rel := TierMedium
	if severity > 0.7 {
		rel = TierHigh
	}
	p := NewPacket(InfoDiplomaticChange, rel, severity, source, originator)
	p.Description = "diplomatic stance change"
	return p
}

// DefaultRelevance returns the baseline tier assigned to scenario events
// that do not specify one.
func DefaultRelevance(t InformationType) RelevanceTier {
	switch t {
	case InfoPlagueOutbreak:
		return TierCritical
	case InfoMilitaryAction, InfoEconomicCrisis, InfoSuccessionCrisis, InfoRebellion:
		return TierHigh
	case InfoDiplomaticChange, InfoTradeDisruption, InfoAllianceFormation, InfoNaturalDisaster:
		return TierMedium
	default:
		return TierLow
	}
}

var eventKinds = map[string]InformationType{
	"military_action":    InfoMilitaryAction,
	"diplomatic_change":  InfoDiplomaticChange,
	"economic_crisis":    InfoEconomicCrisis,
	"succession_crisis":  InfoSuccessionCrisis,
	"rebellion":          InfoRebellion,
	"technology_advance": InfoTechnologyAdvance,
	"religious_event":    InfoReligiousEvent,
	"trade_disruption":   InfoTradeDisruption,
	"alliance_formation": InfoAllianceFormation,
	"natural_disaster":   InfoNaturalDisaster,
	"plague_outbreak":    InfoPlagueOutbreak,
	"cultural_shift":     InfoCulturalShift,
}

// ParseInformationType maps a scenario/config label to a type. It accepts
// both the snake_case scenario form and the canonical constant value.
func ParseInformationType(s string) (InformationType, bool) {
	if t, ok := eventKinds[s]; ok {
		return t, true
	}
	if KnownInformationType(InformationType(s)) {
		return InformationType(s), true
	}
	return "", false
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
