// Package scenario describes scripted simulation runs: a world, its initial
// diplomatic state and a timeline of information events, loaded from YAML.
package scenario

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/info_propagation_sim/core"
	"github.com/example/info_propagation_sim/interest"
	"github.com/example/info_propagation_sim/worldgen"
)

// Scenario is one scripted run. The world is either a preset name or an
// inline province/road list, never both.
type Scenario struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	World     string     `json:"world,omitempty" yaml:"world,omitempty"`
	Provinces []Province `json:"provinces,omitempty" yaml:"provinces,omitempty"`
	Roads     []Road     `json:"roads,omitempty" yaml:"roads,omitempty"`

	Ticks      int              `json:"ticks" yaml:"ticks"`
	Wars       []RealmPair      `json:"wars,omitempty" yaml:"wars,omitempty"`
	Spheres    []SphereGrant    `json:"spheres,omitempty" yaml:"spheres,omitempty"`
	Rivals     []RivalGrudge    `json:"rivals,omitempty" yaml:"rivals,omitempty"`
	Watches    []ProvinceWatch  `json:"watches,omitempty" yaml:"watches,omitempty"`
	Thresholds []RealmThreshold `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`

	Events []Event `json:"events,omitempty" yaml:"events,omitempty"`
}

// Province declares one inline province.
type Province struct {
	ID    core.ProvinceID `json:"id" yaml:"id"`
	Realm core.RealmID    `json:"realm" yaml:"realm"`
	Name  string          `json:"name,omitempty" yaml:"name,omitempty"`
}

// Road declares one inline bidirectional road. Cost defaults to 1.
type Road struct {
	From core.ProvinceID `json:"from" yaml:"from"`
	To   core.ProvinceID `json:"to" yaml:"to"`
	Cost float64         `json:"cost,omitempty" yaml:"cost,omitempty"`
}

// RealmPair declares a war between two realms at scenario start.
type RealmPair struct {
	A core.RealmID `json:"a" yaml:"a"`
	B core.RealmID `json:"b" yaml:"b"`
}

// SphereGrant places a realm into a sphere of influence.
type SphereGrant struct {
	Realm  core.RealmID  `json:"realm" yaml:"realm"`
	Sphere core.SphereID `json:"sphere" yaml:"sphere"`
}

// RivalGrudge marks an entity as a rival of a realm.
type RivalGrudge struct {
	Realm  core.RealmID  `json:"realm" yaml:"realm"`
	Entity core.EntityID `json:"entity" yaml:"entity"`
}

// ProvinceWatch marks a province as specially watched by a realm.
type ProvinceWatch struct {
	Realm    core.RealmID    `json:"realm" yaml:"realm"`
	Province core.ProvinceID `json:"province" yaml:"province"`
}

// RealmThreshold overrides a realm's minimum type weight.
type RealmThreshold struct {
	Realm         core.RealmID `json:"realm" yaml:"realm"`
	MinTypeWeight float64      `json:"min_type_weight" yaml:"min_type_weight"`
}

// Event is one scripted information injection.
type Event struct {
	Tick        int             `json:"tick" yaml:"tick"`
	Kind        string          `json:"kind" yaml:"kind"`
	Source      core.ProvinceID `json:"source" yaml:"source"`
	Originator  core.EntityID   `json:"originator" yaml:"originator"`
	Severity    float64         `json:"severity" yaml:"severity"`
	Relevance   string          `json:"relevance,omitempty" yaml:"relevance,omitempty"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
}

// Validate applies structural checks before a scenario is run.
func (s *Scenario) Validate() error {
	if s == nil {
		return errors.New("scenario is nil")
	}
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("scenario name is required")
	}
	if s.Ticks <= 0 {
		return fmt.Errorf("ticks must be positive, got %d", s.Ticks)
	}
	if s.World == "" && len(s.Provinces) == 0 {
		return errors.New("scenario needs a world preset or inline provinces")
	}
	if s.World != "" && len(s.Provinces) > 0 {
		return errors.New("world preset and inline provinces are mutually exclusive")
	}
	for i, e := range s.Events {
		if e.Tick < 0 || e.Tick >= s.Ticks {
			return fmt.Errorf("event[%d] tick %d outside run of %d ticks", i, e.Tick, s.Ticks)
		}
		if _, ok := core.ParseInformationType(e.Kind); !ok {
			return fmt.Errorf("event[%d] unknown kind %q", i, e.Kind)
		}
		if e.Severity < 0 || e.Severity > 1 {
			return fmt.Errorf("event[%d] severity must be within [0,1], got %.3f", i, e.Severity)
		}
		if e.Relevance != "" {
			if _, ok := core.ParseRelevanceTier(e.Relevance); !ok {
				return fmt.Errorf("event[%d] unknown relevance %q", i, e.Relevance)
			}
		}
		if e.Source == 0 {
			return fmt.Errorf("event[%d] source province is required", i)
		}
	}
	return nil
}

// BuildWorld materializes the scenario's world and overlays its diplomatic
// state, spheres and interest declarations.
func (s *Scenario) BuildWorld() (worldgen.World, error) {
	var w worldgen.World
	if s.World != "" {
		preset, ok := worldgen.GetWorldByName(s.World)
		if !ok {
			return worldgen.World{}, fmt.Errorf("unknown world preset %q", s.World)
		}
		w = preset.Build()
	} else {
		b := worldgen.NewBuilder()
		for _, p := range s.Provinces {
			b.AddProvince(p.ID, p.Realm, p.Name)
		}
		for _, r := range s.Roads {
			cost := r.Cost
			if cost <= 0 {
				cost = 1
			}
			b.AddRoad(r.From, r.To, cost)
		}
		g, err := b.Build()
		if err != nil {
			return worldgen.World{}, fmt.Errorf("build scenario world: %w", err)
		}
		w = worldgen.World{
			Graph:     g,
			Diplomacy: worldgen.NewDiplomacyTable(),
			Spheres:   worldgen.NewSphereTable(),
			Interest:  interest.NewRegistry(0),
		}
	}

	for _, war := range s.Wars {
		w.Diplomacy.DeclareWar(war.A, war.B)
	}
	for _, grant := range s.Spheres {
		w.Spheres.Assign(grant.Realm, grant.Sphere)
	}
	for _, grudge := range s.Rivals {
		w.Interest.AddRival(grudge.Realm, grudge.Entity)
	}
	for _, watch := range s.Watches {
		w.Interest.WatchProvince(watch.Realm, watch.Province)
	}
	for _, th := range s.Thresholds {
		if err := w.Interest.SetMinTypeWeight(th.Realm, th.MinTypeWeight); err != nil {
			return worldgen.World{}, fmt.Errorf("threshold for realm %d: %w", th.Realm, err)
		}
	}
	return w, nil
}

// Packet converts the event into an information packet ready to propagate.
func (e Event) Packet() (core.InformationPacket, error) {
	kind, ok := core.ParseInformationType(e.Kind)
	if !ok {
		return core.InformationPacket{}, fmt.Errorf("unknown event kind %q", e.Kind)
	}
	rel := core.DefaultRelevance(kind)
	if e.Relevance != "" {
		rel, ok = core.ParseRelevanceTier(e.Relevance)
		if !ok {
			return core.InformationPacket{}, fmt.Errorf("unknown relevance %q", e.Relevance)
		}
	}
	p := core.NewPacket(kind, rel, e.Severity, e.Source, e.Originator)
	p.Description = e.Description
	p.OccurredTick = uint64(e.Tick)
	return p, nil
}
