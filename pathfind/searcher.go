// Package pathfind walks the province graph for the propagation engine. The
// broadcast search floods outward from the source in hop order; the targeted
// search settles provinces in cumulative-cost order. Both apply the same
// border-blocking and cutoff rules and report what they dropped; neither
// touches engine statistics directly.
package pathfind

import (
	"container/list"

	"github.com/example/info_propagation_sim/blocking"
	"github.com/example/info_propagation_sim/core"
	"github.com/example/info_propagation_sim/decay"
)

// Params is the per-call search context assembled by the engine.
type Params struct {
	Graph  *core.ProvinceGraph
	Policy blocking.Policy

	Coefficients    decay.Coefficients
	DegradationRate float64
	AccuracyFloor   float64
	UnitsPerHop     float64
	MaxDistance     float64
	SpeedMultiplier float64

	// Threshold returns the receiving realm's type-weight cutoff. Nil
	// means the default threshold for every realm.
	Threshold func(core.RealmID) float64

	// SpecialInterest reports heightened receiver attention, upgrading
	// the delivered relevance tier. Nil means never.
	SpecialInterest func(receiver core.RealmID, p *core.InformationPacket) bool
}

// Result collects the outcome of one search.
type Result struct {
	Deliveries []core.DeliveryEvent
	Drops      []core.DropEvent

	DroppedDistance   uint64
	DroppedIrrelevant uint64
	UnknownSource     bool
	Expanded          int
}

// branch is the state of one propagation front at a province.
type branch struct {
	province *core.ProvinceNode
	hops     uint32
	cost     float64
	penalty  float64 // accumulated leak accuracy penalty
	path     []core.ProvinceID
}

// Searcher runs searches with a fixed parameter set. Engines build one per
// propagation so mid-run tunable changes cannot tear a traversal.
type Searcher struct {
	Params
}

// Broadcast floods the packet outward from its source province, delivering
// to every reachable province that survives the blocking, distance, and
// relevance rules. The source province itself is not a receiver.
func (s *Searcher) Broadcast(packet core.InformationPacket) Result {
	var res Result
	src, ok := s.Graph.Province(packet.SourceProvince)
	if !ok {
		res.UnknownSource = true
		res.Drops = append(res.Drops, core.DropEvent{
			Reason:   core.DropUnknownSource,
			Province: packet.SourceProvince,
		})
		return res
	}

	queue := list.New()
	queue.PushBack(branch{province: src, path: []core.ProvinceID{src.ID}})
	visited := map[core.ProvinceID]bool{src.ID: true}

	for queue.Len() > 0 {
		cur := queue.Remove(queue.Front()).(branch)
		res.Expanded++
		for _, adj := range cur.province.Neighbors {
			if visited[adj.To] {
				continue
			}
			next, ok := s.Graph.Province(adj.To)
			if !ok {
				continue
			}
			nb, verdict := s.cross(cur, next, adj.Cost, src.Realm, &packet)
			switch verdict {
			case crossBlocked:
				// A blocked border is not a drop; the province may
				// still be reached around the blockage.
				continue
			case crossTooFar:
				visited[adj.To] = true
				res.DroppedDistance++
				res.Drops = append(res.Drops, core.DropEvent{
					Reason: core.DropDistance, Province: adj.To, HopCount: nb.hops,
				})
				continue
			case crossIrrelevant:
				visited[adj.To] = true
				res.DroppedIrrelevant++
				res.Drops = append(res.Drops, core.DropEvent{
					Reason: core.DropIrrelevant, Province: adj.To, HopCount: nb.hops,
				})
				continue
			}
			visited[adj.To] = true
			res.Deliveries = append(res.Deliveries, s.delivery(&packet, nb))
			queue.PushBack(nb)
		}
	}
	return res
}

// CheapestDelivery routes the packet to one target province along the
// cheapest open path by cumulative border cost, breaking ties in insertion
// order. Intermediate provinces act as couriers: only border blocking
// applies along the way, while the distance and relevance cutoffs are
// judged at the target. ok reports whether the packet was delivered.
func (s *Searcher) CheapestDelivery(packet core.InformationPacket, target core.ProvinceID) (core.DeliveryEvent, Result, bool) {
	var res Result
	src, found := s.Graph.Province(packet.SourceProvince)
	if !found {
		res.UnknownSource = true
		res.Drops = append(res.Drops, core.DropEvent{
			Reason:   core.DropUnknownSource,
			Province: packet.SourceProvince,
		})
		return core.DeliveryEvent{}, res, false
	}
	if _, found := s.Graph.Province(target); !found {
		return core.DeliveryEvent{}, res, false
	}
	if target == src.ID {
		// The source already holds the information.
		return core.DeliveryEvent{}, res, false
	}

	var open frontier
	open.push(branch{province: src, path: []core.ProvinceID{src.ID}})
	settled := make(map[core.ProvinceID]bool)

	for open.Len() > 0 {
		cur := open.pop()
		if settled[cur.province.ID] {
			continue
		}
		settled[cur.province.ID] = true
		res.Expanded++

		if cur.province.ID == target {
			if !decay.PassesDistanceFilter(cur.hops, s.UnitsPerHop, s.MaxDistance) {
				res.DroppedDistance++
				res.Drops = append(res.Drops, core.DropEvent{
					Reason: core.DropDistance, Province: target, HopCount: cur.hops,
				})
				return core.DeliveryEvent{}, res, false
			}
			weight := s.Coefficients.TypeWeight(packet.Type)
			if !decay.PassesTypeFilter(weight, s.threshold(cur.province.Realm)) {
				res.DroppedIrrelevant++
				res.Drops = append(res.Drops, core.DropEvent{
					Reason: core.DropIrrelevant, Province: target, HopCount: cur.hops,
				})
				return core.DeliveryEvent{}, res, false
			}
			ev := s.delivery(&packet, cur)
			res.Deliveries = append(res.Deliveries, ev)
			return ev, res, true
		}

		for _, adj := range cur.province.Neighbors {
			if settled[adj.To] {
				continue
			}
			next, ok := s.Graph.Province(adj.To)
			if !ok {
				continue
			}
			edge := blocking.Edge{From: cur.province, To: next, Packet: &packet, OriginRealm: src.Realm}
			if s.Policy.IsBlocked(edge) {
				continue
			}
			nb := branch{
				province: next,
				hops:     cur.hops + 1,
				cost:     cur.cost + adj.Cost,
				penalty:  cur.penalty + s.leakPenalty(edge),
				path:     appendPath(cur.path, adj.To),
			}
			open.push(nb)
		}
	}
	return core.DeliveryEvent{}, res, false
}

type crossVerdict int

const (
	crossOK crossVerdict = iota
	crossBlocked
	crossTooFar
	crossIrrelevant
)

// cross evaluates one border crossing in rule order: blocking first, then
// the hop-derived distance cutoff, then the receiver's relevance cutoff.
func (s *Searcher) cross(cur branch, next *core.ProvinceNode, cost float64, origin core.RealmID, packet *core.InformationPacket) (branch, crossVerdict) {
	edge := blocking.Edge{From: cur.province, To: next, Packet: packet, OriginRealm: origin}
	if s.Policy.IsBlocked(edge) {
		return branch{}, crossBlocked
	}
	nb := branch{
		province: next,
		hops:     cur.hops + 1,
		cost:     cur.cost + cost,
		penalty:  cur.penalty + s.leakPenalty(edge),
		path:     appendPath(cur.path, next.ID),
	}
	if !decay.PassesDistanceFilter(nb.hops, s.UnitsPerHop, s.MaxDistance) {
		return nb, crossTooFar
	}
	weight := s.Coefficients.TypeWeight(packet.Type)
	if !decay.PassesTypeFilter(weight, s.threshold(next.Realm)) {
		return nb, crossIrrelevant
	}
	return nb, crossOK
}

// delivery builds the per-receiver event: a branch-local packet snapshot
// with hop-adjusted accuracy, the graded relevance tier, and the estimated
// arrival delay for the path taken.
func (s *Searcher) delivery(packet *core.InformationPacket, b branch) core.DeliveryEvent {
	acc := s.accuracyAt(packet.Accuracy, b.hops, b.penalty)

	snap := packet.Clone()
	snap.HopCount = b.hops
	snap.Accuracy = acc
	snap.Path = appendPath(nil, b.path...)

	special := false
	if s.SpecialInterest != nil {
		special = s.SpecialInterest(b.province.Realm, packet)
	}
	tier := decay.RelevanceTier(packet.BaseRelevance, b.hops, special)

	speed := decay.PropagationSpeed(s.Coefficients, packet.Type, packet.Severity) * s.SpeedMultiplier
	return core.DeliveryEvent{
		Receiver:       b.province.ID,
		ReceiverRealm:  b.province.Realm,
		Packet:         snap,
		Relevance:      tier,
		HopCount:       b.hops,
		Accuracy:       acc,
		CumulativeCost: b.cost,
		DelayDays:      decay.TravelDelayDays(b.cost, speed) + decay.ProcessingDelayDays(tier),
	}
}

// accuracyAt recomputes accuracy from the hop count, then charges any leak
// penalties accumulated on the path, never dipping below the floor.
func (s *Searcher) accuracyAt(initial float64, hops uint32, penalty float64) float64 {
	acc := decay.DegradedAccuracyFloor(initial, hops, s.DegradationRate, s.AccuracyFloor)
	if penalty > 0 {
		acc -= penalty
		if acc < s.AccuracyFloor {
			acc = s.AccuracyFloor
		}
	}
	return acc
}

func (s *Searcher) threshold(realm core.RealmID) float64 {
	if s.Threshold != nil {
		return s.Threshold(realm)
	}
	return decay.DefaultTypeWeightThreshold
}

func (s *Searcher) leakPenalty(edge blocking.Edge) float64 {
	lk, ok := s.Policy.(blocking.Leaky)
	if !ok {
		return 0
	}
	pen, leaked := lk.LeakPenalty(edge)
	if !leaked {
		return 0
	}
	return pen
}

func appendPath(base []core.ProvinceID, ids ...core.ProvinceID) []core.ProvinceID {
	out := make([]core.ProvinceID, 0, len(base)+len(ids))
	out = append(out, base...)
	return append(out, ids...)
}
