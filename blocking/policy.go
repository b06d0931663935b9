// Package blocking decides whether information may cross a province border.
// Decisions are pure functions of the edge and the injected diplomacy and
// sphere oracles; the package keeps no state of its own, so border changes
// in the owning systems take effect on the next crossing check.
package blocking

import "github.com/example/info_propagation_sim/core"

// Edge carries the context for one border-crossing decision.
type Edge struct {
	From, To *core.ProvinceNode
	Packet   *core.InformationPacket

	// OriginRealm is the realm that owned the packet's source province
	// when propagation started. Sphere crossings are judged against it,
	// not against the realm the packet last passed through.
	OriginRealm core.RealmID
}

// Policy decides whether information may cross a border. A blocked edge is
// not an error and not a drop: the packet may still reach the far side by
// another route.
type Policy interface {
	IsBlocked(edge Edge) bool
}

// PolicyFunc adapts a plain function to a Policy.
type PolicyFunc func(Edge) bool

func (f PolicyFunc) IsBlocked(e Edge) bool { return f(e) }

// Leaky is implemented by policies that let high-severity packets cross
// otherwise blocked borders at an accuracy cost. The pathfinder consults it
// only for edges IsBlocked already admitted.
type Leaky interface {
	// LeakPenalty returns the accuracy penalty for crossing this edge and
	// whether the crossing depends on the leak override at all.
	LeakPenalty(edge Edge) (float64, bool)
}

// DiplomacyOracle reports realm pairs whose shared borders are closed to
// information (war or hostile relations). Owned by the diplomacy system;
// read-only here.
type DiplomacyOracle interface {
	AreBlocked(a, b core.RealmID) bool
}

// SphereOracle maps realms to their sphere of influence. Realms outside any
// sphere report ok=false. Owned by the diplomacy system; read-only here.
type SphereOracle interface {
	SphereOf(realm core.RealmID) (core.SphereID, bool)
}

// LeakRule lets packets above a severity threshold cross diplomatically
// blocked borders, paying a fixed accuracy penalty on that edge. Disabled
// by default. Sphere blocking is never leak-exempt.
type LeakRule struct {
	Enabled         bool
	Threshold       float64 // severity must strictly exceed this
	AccuracyPenalty float64
}

// Option configures a policy at construction.
type Option func(*rulePolicy)

// WithLeak enables the severity-leak override.
func WithLeak(threshold, accuracyPenalty float64) Option {
	return func(p *rulePolicy) {
		p.leak = LeakRule{Enabled: true, Threshold: threshold, AccuracyPenalty: accuracyPenalty}
	}
}

type rulePolicy struct {
	diplomacy DiplomacyOracle
	spheres   SphereOracle
	leak      LeakRule
}

// NewPolicy composes the diplomatic and sphere rules over the given oracles.
// Nil oracles are replaced by permissive defaults (no wars, no spheres).
func NewPolicy(diplomacy DiplomacyOracle, spheres SphereOracle, opts ...Option) Policy {
	p := &rulePolicy{diplomacy: diplomacy, spheres: spheres}
	if p.diplomacy == nil {
		p.diplomacy = openDiplomacy{}
	}
	if p.spheres == nil {
		p.spheres = unalignedSpheres{}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *rulePolicy) IsBlocked(e Edge) bool {
	if e.From == nil || e.To == nil {
		return true
	}
	// Internal borders are always open regardless of the realm's wars.
	if e.From.Realm == e.To.Realm {
		return false
	}
	if p.diplomacyBlocks(e) && !p.leakApplies(e) {
		return true
	}
	return p.sphereBlocks(e)
}

// LeakPenalty implements Leaky.
func (p *rulePolicy) LeakPenalty(e Edge) (float64, bool) {
	if e.From == nil || e.To == nil || e.From.Realm == e.To.Realm {
		return 0, false
	}
	if p.diplomacyBlocks(e) && p.leakApplies(e) {
		return p.leak.AccuracyPenalty, true
	}
	return 0, false
}

func (p *rulePolicy) diplomacyBlocks(e Edge) bool {
	return p.diplomacy.AreBlocked(e.From.Realm, e.To.Realm)
}

func (p *rulePolicy) leakApplies(e Edge) bool {
	return p.leak.Enabled && e.Packet != nil && e.Packet.Severity > p.leak.Threshold
}

// sphereBlocks applies the sphere-of-influence rule: information does not
// cross into a sphere unless it stays within one sphere or originated in the
// destination sphere.
func (p *rulePolicy) sphereBlocks(e Edge) bool {
	toSphere, toAligned := p.spheres.SphereOf(e.To.Realm)
	if !toAligned {
		return false
	}
	if fromSphere, ok := p.spheres.SphereOf(e.From.Realm); ok && fromSphere == toSphere {
		return false
	}
	if originSphere, ok := p.spheres.SphereOf(e.OriginRealm); ok && originSphere == toSphere {
		return false
	}
	return true
}

type openDiplomacy struct{}

func (openDiplomacy) AreBlocked(_, _ core.RealmID) bool { return false }

type unalignedSpheres struct{}

func (unalignedSpheres) SphereOf(_ core.RealmID) (core.SphereID, bool) { return 0, false }
