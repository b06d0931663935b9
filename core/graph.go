package core

import "sort"

// Adjacency is a directed border crossing to a neighboring province.
type Adjacency struct {
	To   ProvinceID
	Cost float64 // traversal cost of the crossing, > 0
}

// ProvinceNode is one province in the world graph snapshot.
type ProvinceNode struct {
	ID        ProvinceID
	Realm     RealmID
	Name      string
	Neighbors []Adjacency
}

// ProvinceGraph is an immutable snapshot of the province topology.
// The engine reads it during a propagation and never writes to it;
// ownership and mutation stay with the world systems that built it.
type ProvinceGraph struct {
	provinces map[ProvinceID]*ProvinceNode
	ordered   []ProvinceID
}

// NewProvinceGraph copies nodes into a snapshot. Later entries with a
// duplicate ID replace earlier ones. Non-positive adjacency costs are
// normalized to 1.
func NewProvinceGraph(nodes []ProvinceNode) *ProvinceGraph {
	g := &ProvinceGraph{provinces: make(map[ProvinceID]*ProvinceNode, len(nodes))}
	for i := range nodes {
		n := nodes[i]
		n.Neighbors = append([]Adjacency(nil), n.Neighbors...)
		for j := range n.Neighbors {
			if n.Neighbors[j].Cost <= 0 {
				n.Neighbors[j].Cost = 1
			}
		}
		g.provinces[n.ID] = &n
	}
	g.ordered = make([]ProvinceID, 0, len(g.provinces))
	for id := range g.provinces {
		g.ordered = append(g.ordered, id)
	}
	sort.Slice(g.ordered, func(i, j int) bool { return g.ordered[i] < g.ordered[j] })
	return g
}

// Province looks up a node by ID.
func (g *ProvinceGraph) Province(id ProvinceID) (*ProvinceNode, bool) {
	if g == nil {
		return nil, false
	}
	n, ok := g.provinces[id]
	return n, ok
}

// Len returns the number of provinces in the snapshot.
func (g *ProvinceGraph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.provinces)
}

// ProvinceIDs returns all province IDs in ascending order.
func (g *ProvinceGraph) ProvinceIDs() []ProvinceID {
	if g == nil {
		return nil
	}
	return append([]ProvinceID(nil), g.ordered...)
}

// RealmOf returns the owning realm of a province.
func (g *ProvinceGraph) RealmOf(id ProvinceID) (RealmID, bool) {
	n, ok := g.Province(id)
	if !ok {
		return 0, false
	}
	return n.Realm, true
}

// GraphSource supplies the current topology snapshot. The engine pulls a
// fresh snapshot at the start of every propagation so border changes made
// between ticks are picked up without coordination.
type GraphSource interface {
	Snapshot() *ProvinceGraph
}

// GraphSourceFunc adapts a plain function to a GraphSource.
type GraphSourceFunc func() *ProvinceGraph

func (f GraphSourceFunc) Snapshot() *ProvinceGraph { return f() }
