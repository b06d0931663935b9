// Package interest tracks what each realm pays attention to: rival and
// allied originators, watched provinces, and per-realm interest thresholds.
// The registry is injected into the propagation engine; nothing here is a
// process-wide singleton, so tests and parallel worlds can hold independent
// registries.
package interest

import (
	"fmt"
	"sync"

	"github.com/example/info_propagation_sim/core"
	"github.com/example/info_propagation_sim/decay"
)

// Profile is the exported view of one realm's interests.
type Profile struct {
	Rivals        []core.EntityID
	Allies        []core.EntityID
	Watched       []core.ProvinceID
	MinTypeWeight float64 // 0 means the registry default applies
}

type profile struct {
	rivals        map[core.EntityID]struct{}
	allies        map[core.EntityID]struct{}
	watched       map[core.ProvinceID]struct{}
	minTypeWeight float64
}

// Registry holds per-realm interest profiles. Mutators are for world setup;
// during a propagation the engine only reads. Reads are lock-guarded because
// the ops surface snapshots profiles concurrently with the tick thread.
type Registry struct {
	mu               sync.RWMutex
	profiles         map[core.RealmID]*profile
	defaultThreshold float64
}

// NewRegistry creates a registry. A non-positive defaultThreshold falls back
// to the standard type-weight threshold.
func NewRegistry(defaultThreshold float64) *Registry {
	if defaultThreshold <= 0 {
		defaultThreshold = decay.DefaultTypeWeightThreshold
	}
	return &Registry{
		profiles:         make(map[core.RealmID]*profile),
		defaultThreshold: defaultThreshold,
	}
}

func (r *Registry) profileFor(realm core.RealmID) *profile {
	p, ok := r.profiles[realm]
	if !ok {
		p = &profile{
			rivals:  make(map[core.EntityID]struct{}),
			allies:  make(map[core.EntityID]struct{}),
			watched: make(map[core.ProvinceID]struct{}),
		}
		r.profiles[realm] = p
	}
	return p
}

// AddRival marks an originator as a rival of the realm.
func (r *Registry) AddRival(realm core.RealmID, originator core.EntityID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profileFor(realm).rivals[originator] = struct{}{}
}

// AddAlly marks an originator as an ally of the realm.
func (r *Registry) AddAlly(realm core.RealmID, originator core.EntityID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profileFor(realm).allies[originator] = struct{}{}
}

// WatchProvince registers a province the realm monitors closely.
func (r *Registry) WatchProvince(realm core.RealmID, province core.ProvinceID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profileFor(realm).watched[province] = struct{}{}
}

// SetMinTypeWeight overrides the type-weight threshold for one realm.
// The weight must be in [0,1).
func (r *Registry) SetMinTypeWeight(realm core.RealmID, weight float64) error {
	if weight < 0 || weight >= 1 {
		return fmt.Errorf("min type weight must be in [0,1), got %f", weight)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profileFor(realm).minTypeWeight = weight
	return nil
}

// ClearRealm drops a realm's profile entirely.
func (r *Registry) ClearRealm(realm core.RealmID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.profiles, realm)
}

// IsSpecialInterest reports whether a packet deserves the receiver's
// heightened attention: the originator is a known rival or ally, or the
// source province is on the realm's watch list.
func (r *Registry) IsSpecialInterest(receiver core.RealmID, originator core.EntityID, source core.ProvinceID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[receiver]
	if !ok {
		return false
	}
	if _, rival := p.rivals[originator]; rival {
		return true
	}
	if _, ally := p.allies[originator]; ally {
		return true
	}
	_, watched := p.watched[source]
	return watched
}

// MinTypeWeight returns the receiver's interest threshold, falling back to
// the registry default when the realm has no override.
func (r *Registry) MinTypeWeight(receiver core.RealmID) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.profiles[receiver]; ok && p.minTypeWeight > 0 {
		return p.minTypeWeight
	}
	return r.defaultThreshold
}

// ProfileOf returns a copy of a realm's profile for inspection.
func (r *Registry) ProfileOf(realm core.RealmID) (Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[realm]
	if !ok {
		return Profile{}, false
	}
	out := Profile{MinTypeWeight: p.minTypeWeight}
	for e := range p.rivals {
		out.Rivals = append(out.Rivals, e)
	}
	for e := range p.allies {
		out.Allies = append(out.Allies, e)
	}
	for pr := range p.watched {
		out.Watched = append(out.Watched, pr)
	}
	return out, true
}
