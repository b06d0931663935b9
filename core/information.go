package core

// InformationType categorizes the event a packet describes.
type InformationType string

const (
	InfoMilitaryAction    InformationType = "MilitaryAction"
	InfoDiplomaticChange  InformationType = "DiplomaticChange"
	InfoEconomicCrisis    InformationType = "EconomicCrisis"
	InfoSuccessionCrisis  InformationType = "SuccessionCrisis"
	InfoRebellion         InformationType = "Rebellion"
	InfoTechnologyAdvance InformationType = "TechnologyAdvance"
	InfoReligiousEvent    InformationType = "ReligiousEvent"
	InfoTradeDisruption   InformationType = "TradeDisruption"
	InfoAllianceFormation InformationType = "AllianceFormation"
	InfoNaturalDisaster   InformationType = "NaturalDisaster"
	InfoPlagueOutbreak    InformationType = "PlagueOutbreak"
	InfoCulturalShift     InformationType = "CulturalShift"
)

// InformationTypes lists every known type in declaration order.
func InformationTypes() []InformationType {
	return []InformationType{
		InfoMilitaryAction,
		InfoDiplomaticChange,
		InfoEconomicCrisis,
		InfoSuccessionCrisis,
		InfoRebellion,
		InfoTechnologyAdvance,
		InfoReligiousEvent,
		InfoTradeDisruption,
		InfoAllianceFormation,
		InfoNaturalDisaster,
		InfoPlagueOutbreak,
		InfoCulturalShift,
	}
}

// KnownInformationType reports whether t is one of the declared types.
func KnownInformationType(t InformationType) bool {
	switch t {
	case InfoMilitaryAction, InfoDiplomaticChange, InfoEconomicCrisis,
		InfoSuccessionCrisis, InfoRebellion, InfoTechnologyAdvance,
		InfoReligiousEvent, InfoTradeDisruption, InfoAllianceFormation,
		InfoNaturalDisaster, InfoPlagueOutbreak, InfoCulturalShift:
		return true
	}
	return false
}

// RelevanceTier grades how much a receiver should care about a packet.
// Tiers are ordered: comparisons and arithmetic on them are meaningful.
type RelevanceTier int

const (
	TierLow RelevanceTier = iota
	TierMedium
	TierHigh
	TierCritical
)

var tierNames = [...]string{"low", "medium", "high", "critical"}

func (t RelevanceTier) String() string {
	if t < TierLow || t > TierCritical {
		return "unknown"
	}
	return tierNames[t]
}

// Clamp bounds the tier to the valid [TierLow, TierCritical] range.
func (t RelevanceTier) Clamp() RelevanceTier {
	if t < TierLow {
		return TierLow
	}
	if t > TierCritical {
		return TierCritical
	}
	return t
}

// Score converts a tier to the numeric weight used in relevance math.
func (t RelevanceTier) Score() float64 {
	switch t {
	case TierCritical:
		return 1.0
	case TierHigh:
		return 0.7
	case TierMedium:
		return 0.4
	default:
		return 0.2
	}
}

// ParseRelevanceTier maps a config/scenario label to a tier.
func ParseRelevanceTier(s string) (RelevanceTier, bool) {
	switch s {
	case "low":
		return TierLow, true
	case "medium":
		return TierMedium, true
	case "high":
		return TierHigh, true
	case "critical":
		return TierCritical, true
	}
	return TierLow, false
}
