package worldgen

import (
	"github.com/example/info_propagation_sim/core"
	"github.com/example/info_propagation_sim/interest"
)

// World bundles a graph with the collaborator state a propagation engine
// needs around it. Every call to a preset's Build returns fresh, independent
// tables, so scenarios may mutate them freely.
type World struct {
	Graph     *core.ProvinceGraph
	Diplomacy *DiplomacyTable
	Spheres   *SphereTable
	Interest  *interest.Registry
}

// Preset is a named, self-contained world configuration.
type Preset struct {
	Name        string
	Description string
	Build       func() World
}

// Ruler returns the conventional originator entity for a realm's ruler in
// preset worlds.
func Ruler(realm core.RealmID) core.EntityID {
	return core.EntityID(realm) * 100
}

// GetPredefinedWorlds returns the built-in world presets.
func GetPredefinedWorlds() []Preset {
	return []Preset{
		{
			Name:        "border_duchies",
			Description: "Two realms at peace sharing one border crossing; realm 2 watches the border province.",
			Build:       buildBorderDuchies,
		},
		{
			Name:        "war_frontier",
			Description: "Two realms at war with a neutral third realm offering a detour around the closed border.",
			Build:       buildWarFrontier,
		},
		{
			Name:        "ring_of_three",
			Description: "Three single-province realms in a cycle; exercises cyclic propagation.",
			Build:       buildRingOfThree,
		},
		{
			Name:        "sphere_rivalry",
			Description: "Two spheres of influence and an unaligned realm on a four-province ring.",
			Build:       buildSphereRivalry,
		},
		{
			Name:        "grid_continent",
			Description: "A 5x4 grid continent split into three realm bands, with a picky eastern realm.",
			Build:       buildGridContinent,
		},
	}
}

// GetWorldByName finds a preset by name.
func GetWorldByName(name string) (Preset, bool) {
	for _, p := range GetPredefinedWorlds() {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

func buildBorderDuchies() World {
	b := NewBuilder()
	b.AddProvince(1, 1, "westmark").
		AddProvince(2, 1, "midlands").
		AddProvince(3, 1, "east gate").
		AddProvince(4, 2, "west gate").
		AddProvince(5, 2, "heartland").
		AddProvince(6, 2, "far coast")
	b.AddRoad(1, 2, 1).AddRoad(2, 3, 1).AddRoad(3, 4, 2).AddRoad(4, 5, 1).AddRoad(5, 6, 1)
	g, err := b.Build()
	if err != nil {
		panic(err)
	}

	reg := interest.NewRegistry(0)
	reg.WatchProvince(2, 3)
	reg.AddRival(1, Ruler(2))
	reg.AddRival(2, Ruler(1))

	return World{
		Graph:     g,
		Diplomacy: NewDiplomacyTable(),
		Spheres:   NewSphereTable(),
		Interest:  reg,
	}
}

func buildWarFrontier() World {
	b := NewBuilder()
	b.AddProvince(1, 1, "capital").
		AddProvince(2, 1, "crossroads").
		AddProvince(3, 1, "front").
		AddProvince(4, 2, "enemy front").
		AddProvince(5, 2, "enemy heart").
		AddProvince(6, 2, "enemy coast").
		AddProvince(7, 3, "neutral pass").
		AddProvince(8, 3, "neutral port")
	b.AddRoad(1, 2, 1).AddRoad(2, 3, 1).AddRoad(3, 4, 1).AddRoad(4, 5, 1).AddRoad(5, 6, 1)
	// The neutral detour is longer than the direct crossing.
	b.AddRoad(2, 7, 2).AddRoad(7, 8, 2).AddRoad(8, 5, 2)
	g, err := b.Build()
	if err != nil {
		panic(err)
	}

	dip := NewDiplomacyTable()
	dip.DeclareWar(1, 2)

	reg := interest.NewRegistry(0)
	reg.AddRival(1, Ruler(2))
	reg.AddRival(2, Ruler(1))
	reg.WatchProvince(3, 3)
	reg.WatchProvince(3, 4)

	return World{Graph: g, Diplomacy: dip, Spheres: NewSphereTable(), Interest: reg}
}

func buildRingOfThree() World {
	return World{
		Graph:     RingWorld(3, 3),
		Diplomacy: NewDiplomacyTable(),
		Spheres:   NewSphereTable(),
		Interest:  interest.NewRegistry(0),
	}
}

func buildSphereRivalry() World {
	b := NewBuilder()
	b.AddProvince(1, 1, "core north").
		AddProvince(2, 2, "core south").
		AddProvince(3, 3, "rival land").
		AddProvince(4, 4, "free city")
	b.AddRoad(1, 2, 1).AddRoad(2, 3, 1).AddRoad(3, 4, 1).AddRoad(4, 1, 1)
	g, err := b.Build()
	if err != nil {
		panic(err)
	}

	spheres := NewSphereTable()
	spheres.Assign(1, 10)
	spheres.Assign(2, 10)
	spheres.Assign(3, 20)

	reg := interest.NewRegistry(0)
	reg.AddRival(3, Ruler(1))
	reg.AddRival(1, Ruler(3))

	return World{Graph: g, Diplomacy: NewDiplomacyTable(), Spheres: spheres, Interest: reg}
}

func buildGridContinent() World {
	reg := interest.NewRegistry(0)
	// The eastern realm only reacts to weighty news.
	if err := reg.SetMinTypeWeight(3, 0.45); err != nil {
		panic(err)
	}
	reg.WatchProvince(1, 13)

	return World{
		Graph:     GridWorld(5, 4, 3),
		Diplomacy: NewDiplomacyTable(),
		Spheres:   NewSphereTable(),
		Interest:  reg,
	}
}
