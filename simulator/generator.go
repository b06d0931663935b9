package simulator

import (
	"fmt"
	"math/rand"

	"github.com/example/info_propagation_sim/core"
	"github.com/example/info_propagation_sim/scenario"
	"github.com/example/info_propagation_sim/worldgen"
)

// EventGenerator decides which information events enter the world at a tick.
type EventGenerator interface {
	// EventsAt returns the packets injected at the given tick, already
	// stamped with their origin tick.
	EventsAt(tick int) []core.InformationPacket

	// Reset restores the generator's initial state.
	Reset()
}

// Relative frequency of spontaneous event kinds, aligned with
// core.InformationTypes order. Battles and trade news dominate background
// chatter.
var kindWeights = []int{3, 2, 2, 1, 2, 1, 1, 2, 1, 1, 1, 1}

// ProbabilityGenerator injects at most one random event per tick with a
// fixed chance. The same seed always produces the same event stream.
type ProbabilityGenerator struct {
	EventChance float64

	graph     *core.ProvinceGraph
	provinces []core.ProvinceID
	kinds     []core.InformationType
	rng       *rand.Rand
	seed      int64
}

// NewProbabilityGenerator creates a seeded random event source over the
// graph's provinces.
func NewProbabilityGenerator(graph *core.ProvinceGraph, chance float64, seed int64) *ProbabilityGenerator {
	return &ProbabilityGenerator{
		EventChance: chance,
		graph:       graph,
		provinces:   graph.ProvinceIDs(),
		kinds:       core.InformationTypes(),
		rng:         rand.New(rand.NewSource(seed)),
		seed:        seed,
	}
}

func (pg *ProbabilityGenerator) EventsAt(tick int) []core.InformationPacket {
	if len(pg.provinces) == 0 || pg.rng.Float64() >= pg.EventChance {
		return nil
	}

	source := pg.provinces[pg.rng.Intn(len(pg.provinces))]
	kind := pg.kinds[weightedChoose(pg.rng, kindWeights)]
	severity := pg.rng.Float64()
	realm, _ := pg.graph.RealmOf(source)

	p := core.NewPacket(kind, core.DefaultRelevance(kind), severity, source, worldgen.Ruler(realm))
	p.OccurredTick = uint64(tick)
	return []core.InformationPacket{p}
}

func (pg *ProbabilityGenerator) Reset() {
	pg.rng = rand.New(rand.NewSource(pg.seed))
}

// ScheduleGenerator replays a scripted event timeline. Consumed ticks are
// removed so a schedule never fires twice within one run; Reset restores
// the full timeline.
type ScheduleGenerator struct {
	schedule map[int][]core.InformationPacket
	original map[int][]core.InformationPacket
}

// NewScheduleGenerator converts scenario events into a tick-keyed schedule.
func NewScheduleGenerator(events []scenario.Event) (*ScheduleGenerator, error) {
	original := make(map[int][]core.InformationPacket, len(events))
	for i, e := range events {
		p, err := e.Packet()
		if err != nil {
			return nil, fmt.Errorf("event[%d]: %w", i, err)
		}
		original[e.Tick] = append(original[e.Tick], p)
	}
	sg := &ScheduleGenerator{original: original}
	sg.Reset()
	return sg, nil
}

func (sg *ScheduleGenerator) EventsAt(tick int) []core.InformationPacket {
	due, ok := sg.schedule[tick]
	if !ok {
		return nil
	}
	delete(sg.schedule, tick)
	return due
}

func (sg *ScheduleGenerator) Reset() {
	sg.schedule = make(map[int][]core.InformationPacket, len(sg.original))
	for tick, packets := range sg.original {
		due := make([]core.InformationPacket, len(packets))
		copy(due, packets)
		sg.schedule[tick] = due
	}
}

// weightedChoose returns an index in [0,len(weights)) with probability
// proportional to weights.
func weightedChoose(rng *rand.Rand, weights []int) int {
	if len(weights) == 0 {
		return 0
	}
	var sum int
	for _, w := range weights {
		if w > 0 {
			sum += w
		}
	}
	if sum <= 0 {
		return rng.Intn(len(weights))
	}
	x := rng.Intn(sum)
	acc := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		acc += w
		if x < acc {
			return i
		}
	}
	return len(weights) - 1
}
