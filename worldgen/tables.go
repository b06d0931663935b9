package worldgen

import (
	"sync"

	"github.com/example/info_propagation_sim/core"
)

// DiplomacyTable is an in-memory diplomacy oracle: realm pairs at war or
// with hostile relations block information at their shared borders. The
// table is symmetric; DeclareWar(a, b) also blocks b -> a.
type DiplomacyTable struct {
	mu      sync.RWMutex
	blocked map[[2]core.RealmID]struct{}
}

// NewDiplomacyTable creates an empty table (everyone at peace).
func NewDiplomacyTable() *DiplomacyTable {
	return &DiplomacyTable{blocked: make(map[[2]core.RealmID]struct{})}
}

func pairKey(a, b core.RealmID) [2]core.RealmID {
	if a > b {
		a, b = b, a
	}
	return [2]core.RealmID{a, b}
}

// DeclareWar closes the border between two realms.
func (d *DiplomacyTable) DeclareWar(a, b core.RealmID) {
	d.setBlocked(a, b)
}

// SetHostile closes the border between two realms short of war.
func (d *DiplomacyTable) SetHostile(a, b core.RealmID) {
	d.setBlocked(a, b)
}

func (d *DiplomacyTable) setBlocked(a, b core.RealmID) {
	if a == b {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.blocked[pairKey(a, b)] = struct{}{}
}

// MakePeace reopens the border between two realms.
func (d *DiplomacyTable) MakePeace(a, b core.RealmID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.blocked, pairKey(a, b))
}

// AreBlocked implements blocking.DiplomacyOracle.
func (d *DiplomacyTable) AreBlocked(a, b core.RealmID) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.blocked[pairKey(a, b)]
	return ok
}

// SphereTable is an in-memory sphere-of-influence oracle.
type SphereTable struct {
	mu      sync.RWMutex
	spheres map[core.RealmID]core.SphereID
}

// NewSphereTable creates an empty table (every realm unaligned).
func NewSphereTable() *SphereTable {
	return &SphereTable{spheres: make(map[core.RealmID]core.SphereID)}
}

// Assign puts a realm into a sphere, replacing any previous alignment.
func (s *SphereTable) Assign(realm core.RealmID, sphere core.SphereID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spheres[realm] = sphere
}

// Remove makes a realm unaligned.
func (s *SphereTable) Remove(realm core.RealmID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.spheres, realm)
}

// SphereOf implements blocking.SphereOracle.
func (s *SphereTable) SphereOf(realm core.RealmID) (core.SphereID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.spheres[realm]
	return id, ok
}
