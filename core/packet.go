package core

// InformationPacket is a discrete unit of information spreading through the
// province graph. Severity is fixed at creation; Accuracy is derived from
// HopCount alone and is recomputed by the propagation engine on every hop,
// never mutated directly by consumers.
type InformationPacket struct {
	Type          InformationType
	BaseRelevance RelevanceTier
	Severity      float64 // in [0,1], how consequential the event is
	Accuracy      float64 // in [0,1], starts at 1.0 and degrades per hop
	HopCount      uint32

	SourceProvince ProvinceID
	Originator     EntityID

	Description  string
	OccurredTick uint64

	// Payload carries numeric event data (troop counts, price deltas)
	// consumed by downstream AI. The engine never interprets it.
	Payload map[string]float64

	// Path records the provinces traversed so far, source first.
	// Each propagation branch owns its own copy.
	Path []ProvinceID
}

// Clone returns a deep copy safe for independent branch mutation.
func (p *InformationPacket) Clone() InformationPacket {
	out := *p
	out.Payload = ClonePayload(p.Payload)
	if len(p.Path) > 0 {
		out.Path = make([]ProvinceID, len(p.Path))
		copy(out.Path, p.Path)
	}
	return out
}

// SetPayload attaches a numeric value to the packet payload.
func (p *InformationPacket) SetPayload(key string, value float64) {
	if p == nil || key == "" {
		return
	}
	if p.Payload == nil {
		p.Payload = make(map[string]float64)
	}
	p.Payload[key] = value
}

// GetPayload returns the value for a payload key.
func (p *InformationPacket) GetPayload(key string) (float64, bool) {
	if p == nil || key == "" || p.Payload == nil {
		return 0, false
	}
	value, ok := p.Payload[key]
	return value, ok
}

// ClonePayload creates a shallow copy of a payload map.
func ClonePayload(src map[string]float64) map[string]float64 {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
