// Package engine drives information propagation: it pulls a topology
// snapshot, walks it with the pathfinder under the current tunables, feeds
// the statistics tracker, and publishes delivery events to the registered
// sink. Propagation itself is strictly sequential; one goroutine owns
// StartPropagation and PropagateTo while statistics and tunables may be
// read or adjusted from others.
package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/info_propagation_sim/blocking"
	"github.com/example/info_propagation_sim/core"
	"github.com/example/info_propagation_sim/decay"
	"github.com/example/info_propagation_sim/hooks"
	"github.com/example/info_propagation_sim/interest"
	"github.com/example/info_propagation_sim/pathfind"
)

// ErrNoGraph is returned by New when no graph source is supplied.
var ErrNoGraph = errors.New("engine: graph source is required")

// Deps are the collaborators the engine reads. All of them stay owned by
// their home systems; the engine never mutates world state.
type Deps struct {
	// Graph supplies the topology snapshot, pulled fresh per propagation.
	Graph core.GraphSource
	// Policy decides border crossings. Nil means every border is open.
	Policy blocking.Policy
	// Interest grades receiver attention. Nil means no special interests
	// and default thresholds everywhere.
	Interest *interest.Registry
	// Sink receives delivery events. Nil disables publishing.
	Sink hooks.DeliverySink
}

// Option configures an engine at construction.
type Option func(*Engine)

// WithLogger routes engine logging to the given logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithTunables replaces the default parameter set.
func WithTunables(t Tunables) Option {
	return func(e *Engine) { e.tun = t }
}

// WithCoefficients replaces the per-type coefficient table.
func WithCoefficients(c decay.Coefficients) Option {
	return func(e *Engine) { e.coeff = c }
}

// Engine is the information propagation engine.
type Engine struct {
	deps  Deps
	log   zerolog.Logger
	coeff decay.Coefficients

	tunMu sync.RWMutex
	tun   Tunables

	stats *Tracker
}

// New validates the dependencies and builds an engine.
func New(deps Deps, opts ...Option) (*Engine, error) {
	if deps.Graph == nil {
		return nil, ErrNoGraph
	}
	if deps.Policy == nil {
		deps.Policy = blocking.NewPolicy(nil, nil)
	}
	if deps.Interest == nil {
		deps.Interest = interest.NewRegistry(0)
	}

	e := &Engine{
		deps:  deps,
		log:   zerolog.Nop(),
		coeff: decay.DefaultCoefficients(),
		tun:   DefaultTunables(),
		stats: NewTracker(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.tun.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// StartPropagation spreads the packet outward from its source province,
// delivering to every reachable province that the blocking policy and the
// distance/relevance cutoffs admit. Failures to deliver are statistics, not
// errors; an unknown source province aborts immediately and only counts.
func (e *Engine) StartPropagation(packet core.InformationPacket) {
	graph := e.deps.Graph.Snapshot()
	if _, ok := graph.Province(packet.SourceProvince); !ok {
		e.stats.RecordNoSource()
		e.log.Warn().
			Uint32("source_province", uint32(packet.SourceProvince)).
			Str("type", string(packet.Type)).
			Msg("propagation source not in graph")
		return
	}

	searcher := e.searcher(graph)
	start := time.Now()
	res := searcher.Broadcast(packet)
	elapsed := time.Since(start)

	e.stats.RecordRun(res.DroppedDistance, res.DroppedIrrelevant, elapsed)
	e.publish(packet, res, false, elapsed)
	e.checkBudget(elapsed, len(res.Deliveries), res.Expanded)

	e.log.Debug().
		Str("type", string(packet.Type)).
		Uint32("source_province", uint32(packet.SourceProvince)).
		Int("deliveries", len(res.Deliveries)).
		Uint64("dropped_distance", res.DroppedDistance).
		Uint64("dropped_irrelevant", res.DroppedIrrelevant).
		Dur("elapsed", elapsed).
		Msg("propagation complete")
}

// PropagateTo routes the packet to a single receiving province along the
// cheapest open path. ok reports whether the target accepted the packet.
func (e *Engine) PropagateTo(packet core.InformationPacket, target core.ProvinceID) (core.DeliveryEvent, bool) {
	graph := e.deps.Graph.Snapshot()
	if _, found := graph.Province(packet.SourceProvince); !found {
		e.stats.RecordNoSource()
		e.log.Warn().
			Uint32("source_province", uint32(packet.SourceProvince)).
			Str("type", string(packet.Type)).
			Msg("propagation source not in graph")
		return core.DeliveryEvent{}, false
	}
	if _, found := graph.Province(target); !found {
		e.log.Warn().
			Uint32("target_province", uint32(target)).
			Msg("propagation target not in graph")
		return core.DeliveryEvent{}, false
	}

	searcher := e.searcher(graph)
	start := time.Now()
	ev, res, ok := searcher.CheapestDelivery(packet, target)
	elapsed := time.Since(start)

	e.stats.RecordRun(res.DroppedDistance, res.DroppedIrrelevant, elapsed)
	e.publish(packet, res, true, elapsed)
	e.checkBudget(elapsed, len(res.Deliveries), res.Expanded)
	return ev, ok
}

// CalculateRelevance grades a packet for a receiving realm at the packet's
// current hop count. Pure with respect to engine state; usable outside a
// propagation run.
func (e *Engine) CalculateRelevance(packet core.InformationPacket, receiver core.RealmID) core.RelevanceTier {
	special := e.deps.Interest.IsSpecialInterest(receiver, packet.Originator, packet.SourceProvince)
	return decay.RelevanceTier(packet.BaseRelevance, packet.HopCount, special)
}

// SetPropagationSpeedMultiplier adjusts the global speed scale. Values that
// are not positive are rejected and the previous value stays in force.
func (e *Engine) SetPropagationSpeedMultiplier(v float64) error {
	return e.updateTunables(func(t *Tunables) { t.SpeedMultiplier = v })
}

// SetAccuracyDegradationRate adjusts the per-hop accuracy loss. Values
// outside [0,1] are rejected and the previous value stays in force.
func (e *Engine) SetAccuracyDegradationRate(v float64) error {
	return e.updateTunables(func(t *Tunables) { t.DegradationRate = v })
}

// SetMaxPropagationDistance adjusts the range cutoff. Values that are not
// positive are rejected and the previous value stays in force.
func (e *Engine) SetMaxPropagationDistance(v float64) error {
	return e.updateTunables(func(t *Tunables) { t.MaxDistance = v })
}

// updateTunables applies mutate to a copy, validates it, and swaps it in
// only when valid.
func (e *Engine) updateTunables(mutate func(*Tunables)) error {
	e.tunMu.Lock()
	defer e.tunMu.Unlock()
	next := e.tun
	mutate(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	e.tun = next
	return nil
}

// Tunables returns the current parameter set.
func (e *Engine) Tunables() Tunables {
	e.tunMu.RLock()
	defer e.tunMu.RUnlock()
	return e.tun
}

// GetStatistics returns a snapshot of the engine counters.
func (e *Engine) GetStatistics() Statistics {
	return e.stats.Snapshot()
}

// ResetStatistics zeroes every counter.
func (e *Engine) ResetStatistics() {
	e.stats.Reset()
}

// searcher assembles the per-call search context from the current tunables.
func (e *Engine) searcher(graph *core.ProvinceGraph) *pathfind.Searcher {
	tun := e.Tunables()
	return &pathfind.Searcher{Params: pathfind.Params{
		Graph:           graph,
		Policy:          e.deps.Policy,
		Coefficients:    e.coeff,
		DegradationRate: tun.DegradationRate,
		AccuracyFloor:   tun.AccuracyFloor,
		UnitsPerHop:     tun.UnitsPerHop,
		MaxDistance:     tun.MaxDistance,
		SpeedMultiplier: tun.SpeedMultiplier,
		Threshold:       e.deps.Interest.MinTypeWeight,
		SpecialInterest: func(receiver core.RealmID, p *core.InformationPacket) bool {
			return e.deps.Interest.IsSpecialInterest(receiver, p.Originator, p.SourceProvince)
		},
	}}
}

// publish fans the run's events out to the sink, if any. Delivery emission
// is fire-and-forget: consumer behavior never affects propagation.
func (e *Engine) publish(packet core.InformationPacket, res pathfind.Result, targeted bool, elapsed time.Duration) {
	if e.deps.Sink == nil {
		return
	}
	for _, d := range res.Deliveries {
		e.deps.Sink.EmitDelivery(d)
	}
	if ds, ok := e.deps.Sink.(hooks.DropSink); ok {
		for _, d := range res.Drops {
			ds.EmitDrop(d)
		}
	}
	if rs, ok := e.deps.Sink.(hooks.RunSink); ok {
		rs.EmitRun(hooks.RunTrace{
			Packet:     packet,
			Targeted:   targeted,
			Deliveries: len(res.Deliveries),
			Dropped:    res.DroppedDistance + res.DroppedIrrelevant,
			Elapsed:    elapsed,
		})
	}
}

// checkBudget logs traversals that blow the soft time budget. The budget is
// advisory; the run has already completed by the time it is checked.
func (e *Engine) checkBudget(elapsed time.Duration, deliveries, expanded int) {
	budget := e.Tunables().SoftBudget
	if budget <= 0 || elapsed <= budget {
		return
	}
	e.log.Warn().
		Dur("elapsed", elapsed).
		Dur("budget", budget).
		Int("deliveries", deliveries).
		Int("expanded", expanded).
		Msg("propagation exceeded soft time budget")
}
