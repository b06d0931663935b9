// Package worldgen builds province worlds for simulations, benchmarks, and
// tests: a small builder DSL, in-memory diplomacy and sphere tables, a set
// of named preset worlds, and parametric grid/ring generators.
package worldgen

import (
	"fmt"

	"github.com/example/info_propagation_sim/core"
)

// Builder accumulates provinces and roads and assembles a graph snapshot.
type Builder struct {
	nodes map[core.ProvinceID]*core.ProvinceNode
	order []core.ProvinceID
	roads []road
}

type road struct {
	a, b core.ProvinceID
	cost float64
}

// NewBuilder creates an empty world builder.
func NewBuilder() *Builder {
	return &Builder{nodes: make(map[core.ProvinceID]*core.ProvinceNode)}
}

// AddProvince declares a province. Redeclaring an ID overwrites its realm
// and name but keeps its roads.
func (b *Builder) AddProvince(id core.ProvinceID, realm core.RealmID, name string) *Builder {
	if n, ok := b.nodes[id]; ok {
		n.Realm = realm
		n.Name = name
		return b
	}
	b.nodes[id] = &core.ProvinceNode{ID: id, Realm: realm, Name: name}
	b.order = append(b.order, id)
	return b
}

// AddRoad connects two provinces in both directions at the given cost.
func (b *Builder) AddRoad(a, bID core.ProvinceID, cost float64) *Builder {
	b.roads = append(b.roads, road{a: a, b: bID, cost: cost})
	return b
}

// Build assembles the graph, rejecting roads that reference undeclared
// provinces or connect a province to itself.
func (b *Builder) Build() (*core.ProvinceGraph, error) {
	for _, r := range b.roads {
		if r.a == r.b {
			return nil, fmt.Errorf("road connects province %d to itself", r.a)
		}
		from, ok := b.nodes[r.a]
		if !ok {
			return nil, fmt.Errorf("road references undeclared province %d", r.a)
		}
		to, ok := b.nodes[r.b]
		if !ok {
			return nil, fmt.Errorf("road references undeclared province %d", r.b)
		}
		from.Neighbors = append(from.Neighbors, core.Adjacency{To: r.b, Cost: r.cost})
		to.Neighbors = append(to.Neighbors, core.Adjacency{To: r.a, Cost: r.cost})
	}

	nodes := make([]core.ProvinceNode, 0, len(b.order))
	for _, id := range b.order {
		nodes = append(nodes, *b.nodes[id])
	}
	// Roads were written into the shared node structs; reset so a second
	// Build does not double them.
	for _, id := range b.order {
		b.nodes[id].Neighbors = nil
	}
	return core.NewProvinceGraph(nodes), nil
}

// GridWorld generates a w by h grid of provinces with unit road costs,
// split into vertical realm bands. Province IDs start at 1 and grow
// row-major.
func GridWorld(w, h, realms int) *core.ProvinceGraph {
	if w < 1 || h < 1 {
		return core.NewProvinceGraph(nil)
	}
	if realms < 1 {
		realms = 1
	}
	b := NewBuilder()
	id := func(x, y int) core.ProvinceID { return core.ProvinceID(y*w + x + 1) }
	bandWidth := (w + realms - 1) / realms
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			realm := core.RealmID(x/bandWidth + 1)
			b.AddProvince(id(x, y), realm, fmt.Sprintf("p%d_%d", x, y))
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x+1 < w {
				b.AddRoad(id(x, y), id(x+1, y), 1)
			}
			if y+1 < h {
				b.AddRoad(id(x, y), id(x, y+1), 1)
			}
		}
	}
	g, err := b.Build()
	if err != nil {
		// Generated input; a failure here is a bug in the generator.
		panic(err)
	}
	return g
}

// RingWorld generates n provinces in a cycle with unit road costs, realms
// assigned round-robin.
func RingWorld(n, realms int) *core.ProvinceGraph {
	if n < 3 {
		n = 3
	}
	if realms < 1 {
		realms = 1
	}
	b := NewBuilder()
	for i := 0; i < n; i++ {
		b.AddProvince(core.ProvinceID(i+1), core.RealmID(i%realms+1), fmt.Sprintf("ring%d", i+1))
	}
	for i := 0; i < n; i++ {
		b.AddRoad(core.ProvinceID(i+1), core.ProvinceID((i+1)%n+1), 1)
	}
	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	return g
}
