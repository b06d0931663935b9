package core

import "testing"

func TestNewPacketDefaults(t *testing.T) {
	p := NewPacket(InfoRebellion, TierHigh, 0.6, 42, 7)
	if p.Accuracy != 1.0 {
		t.Errorf("expected full accuracy at source, got %f", p.Accuracy)
	}
	if p.HopCount != 0 {
		t.Errorf("expected zero hops at source, got %d", p.HopCount)
	}
	if len(p.Path) != 1 || p.Path[0] != 42 {
		t.Errorf("expected path to start at source province, got %v", p.Path)
	}
	if p.SourceProvince != 42 || p.Originator != 7 {
		t.Errorf("source/originator not preserved: %+v", p)
	}
}

func TestNewPacketClampsSeverity(t *testing.T) {
	if p := NewPacket(InfoPlagueOutbreak, TierCritical, 1.7, 1, 1); p.Severity != 1.0 {
		t.Errorf("severity above range should clamp to 1, got %f", p.Severity)
	}
	if p := NewPacket(InfoPlagueOutbreak, TierCritical, -0.3, 1, 1); p.Severity != 0 {
		t.Errorf("severity below range should clamp to 0, got %f", p.Severity)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	p := NewPacket(InfoMilitaryAction, TierHigh, 0.5, 1, 2)
	p.SetPayload("troop_count", 1000)

	c := p.Clone()
	c.Path = append(c.Path, 9)
	c.SetPayload("troop_count", 2000)
	c.HopCount = 3

	if len(p.Path) != 1 {
		t.Errorf("clone mutation leaked into original path: %v", p.Path)
	}
	if v, _ := p.GetPayload("troop_count"); v != 1000 {
		t.Errorf("clone mutation leaked into original payload: %f", v)
	}
	if p.HopCount != 0 {
		t.Errorf("clone mutation leaked into original hop count: %d", p.HopCount)
	}
}

func TestPayloadNilSafety(t *testing.T) {
	var p *InformationPacket
	p.SetPayload("x", 1) // must not panic
	if _, ok := p.GetPayload("x"); ok {
		t.Error("nil packet should have no payload")
	}

	q := InformationPacket{}
	if _, ok := q.GetPayload("missing"); ok {
		t.Error("empty payload should report no value")
	}
}

func TestRelevanceTierOrdering(t *testing.T) {
	if !(TierLow < TierMedium && TierMedium < TierHigh && TierHigh < TierCritical) {
		t.Fatal("tier ordering broken")
	}
	if (TierCritical + 1).Clamp() != TierCritical {
		t.Error("clamp above critical failed")
	}
	if (TierLow - 1).Clamp() != TierLow {
		t.Error("clamp below low failed")
	}
}

func TestRelevanceTierScore(t *testing.T) {
	scores := map[RelevanceTier]float64{
		TierCritical: 1.0,
		TierHigh:     0.7,
		TierMedium:   0.4,
		TierLow:      0.2,
	}
	for tier, want := range scores {
		if got := tier.Score(); got != want {
			t.Errorf("tier %s: expected score %f, got %f", tier, want, got)
		}
	}
}

func TestParseRelevanceTier(t *testing.T) {
	if tier, ok := ParseRelevanceTier("critical"); !ok || tier != TierCritical {
		t.Errorf("parse critical failed: %v %v", tier, ok)
	}
	if _, ok := ParseRelevanceTier("extreme"); ok {
		t.Error("unknown label should not parse")
	}
}
