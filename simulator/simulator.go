// Package simulator drives the propagation engine tick by tick, feeding it
// events from scripted schedules and random background chatter.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/info_propagation_sim/engine"
	"github.com/example/info_propagation_sim/hooks"
)

// Deps are the collaborators a simulator drives.
type Deps struct {
	Engine     *engine.Engine
	Broker     *hooks.Broker
	Generators []EventGenerator
}

// Options tune the run loop.
type Options struct {
	// Ticks is the length of the run.
	Ticks int
	// StatsInterval is the number of ticks between throughput log lines.
	StatsInterval int
}

// Report summarizes a finished run.
type Report struct {
	Ticks           int               `json:"ticks"`
	PacketsInjected int               `json:"packetsInjected"`
	Deliveries      int               `json:"deliveries"`
	Dropped         int               `json:"dropped"`
	Elapsed         time.Duration     `json:"elapsed"`
	Engine          engine.Statistics `json:"engine"`
}

// Simulator owns the tick loop. Packets within a tick propagate strictly
// one after another; the engine never sees two searches at once.
type Simulator struct {
	engine     *engine.Engine
	generators []EventGenerator
	log        zerolog.Logger
	meter      *throughputMeter

	ticks      int
	current    int
	injected   int
	deliveries int
	dropped    int
}

// New validates the wiring and subscribes to the broker for delivery
// accounting.
func New(deps Deps, opts Options, logger zerolog.Logger) (*Simulator, error) {
	if deps.Engine == nil {
		return nil, errors.New("simulator requires an engine")
	}
	if opts.Ticks <= 0 {
		return nil, fmt.Errorf("ticks must be positive, got %d", opts.Ticks)
	}
	if opts.StatsInterval <= 0 {
		opts.StatsInterval = 10
	}

	s := &Simulator{
		engine:     deps.Engine,
		generators: deps.Generators,
		log:        logger,
		meter:      newThroughputMeter(logger, opts.StatsInterval),
		ticks:      opts.Ticks,
	}
	if deps.Broker != nil {
		deps.Broker.RegisterRun(func(tr hooks.RunTrace) {
			s.deliveries += tr.Deliveries
			s.dropped += int(tr.Dropped)
		})
	}
	return s, nil
}

// Run executes the remaining ticks, honoring ctx between ticks. A canceled
// run still returns the partial report.
func (s *Simulator) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	for s.current < s.ticks {
		select {
		case <-ctx.Done():
			return s.report(time.Since(start)), ctx.Err()
		default:
		}
		s.Step()
	}
	return s.report(time.Since(start)), nil
}

// Step advances the simulation by one tick.
func (s *Simulator) Step() {
	tick := s.current
	injected := 0
	for _, gen := range s.generators {
		for _, p := range gen.EventsAt(tick) {
			s.engine.StartPropagation(p)
			injected++
		}
	}
	s.injected += injected
	s.meter.record(injected)
	s.current++
}

// Tick returns the next tick to execute.
func (s *Simulator) Tick() int {
	return s.current
}

// Reset rewinds the simulation for another run over the same world.
func (s *Simulator) Reset() {
	s.current = 0
	s.injected = 0
	s.deliveries = 0
	s.dropped = 0
	s.engine.ResetStatistics()
	for _, gen := range s.generators {
		gen.Reset()
	}
}

// Report returns the summary for the ticks executed so far.
func (s *Simulator) Report() Report {
	return s.report(0)
}

func (s *Simulator) report(elapsed time.Duration) Report {
	return Report{
		Ticks:           s.current,
		PacketsInjected: s.injected,
		Deliveries:      s.deliveries,
		Dropped:         s.dropped,
		Elapsed:         elapsed,
		Engine:          s.engine.GetStatistics(),
	}
}

// throughputMeter logs tick throughput every interval ticks.
type throughputMeter struct {
	log      zerolog.Logger
	interval int
	ticks    int
	injected int
	last     time.Time
}

func newThroughputMeter(logger zerolog.Logger, interval int) *throughputMeter {
	return &throughputMeter{log: logger, interval: interval, last: time.Now()}
}

func (m *throughputMeter) record(injected int) {
	m.ticks++
	m.injected += injected
	if m.ticks < m.interval {
		return
	}
	elapsed := time.Since(m.last).Seconds()
	rate := float64(m.ticks)
	if elapsed > 0 {
		rate = rate / elapsed
	}
	m.log.Info().
		Float64("ticks_per_sec", rate).
		Int("events", m.injected).
		Msg("simulation throughput")
	m.ticks = 0
	m.injected = 0
	m.last = time.Now()
}
