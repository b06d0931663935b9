package engine

import (
	"sync"
	"time"
)

// Statistics is a point-in-time snapshot of the engine counters.
type Statistics struct {
	TotalPacketsPropagated   uint64  `json:"totalPacketsPropagated"`
	PacketsDroppedIrrelevant uint64  `json:"packetsDroppedIrrelevant"`
	PacketsDroppedDistance   uint64  `json:"packetsDroppedDistance"`
	PacketsDroppedNoSource   uint64  `json:"packetsDroppedNoSource"`
	TotalPathfindings        uint64  `json:"totalPathfindings"`
	AveragePathfindingTimeMs float64 `json:"averagePathfindingTimeMs"`
	MaxPathfindingTimeMs     float64 `json:"maxPathfindingTimeMs"`
}

// Tracker accumulates the engine counters. Propagation runs on a single
// goroutine, but the ops surface snapshots and resets concurrently, so every
// access goes through the mutex.
type Tracker struct {
	mu sync.Mutex

	propagated        uint64
	droppedIrrelevant uint64
	droppedDistance   uint64
	droppedNoSource   uint64

	pathfindings     uint64
	totalPathfinding time.Duration
	maxPathfinding   time.Duration
}

// NewTracker creates a zeroed tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// RecordRun accounts one completed traversal: the packet counts as
// propagated, its drops are added, and the elapsed time feeds the
// pathfinding aggregates.
func (t *Tracker) RecordRun(droppedDistance, droppedIrrelevant uint64, elapsed time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.propagated++
	t.droppedDistance += droppedDistance
	t.droppedIrrelevant += droppedIrrelevant
	t.recordTimingLocked(elapsed)
}

// RecordNoSource accounts a propagation rejected before traversal because
// the source province is unknown. No timing sample is taken.
func (t *Tracker) RecordNoSource() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.droppedNoSource++
}

func (t *Tracker) recordTimingLocked(elapsed time.Duration) {
	t.pathfindings++
	t.totalPathfinding += elapsed
	if elapsed > t.maxPathfinding {
		t.maxPathfinding = elapsed
	}
}

// Snapshot returns a copy of the counters with derived averages.
func (t *Tracker) Snapshot() Statistics {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Statistics{
		TotalPacketsPropagated:   t.propagated,
		PacketsDroppedIrrelevant: t.droppedIrrelevant,
		PacketsDroppedDistance:   t.droppedDistance,
		PacketsDroppedNoSource:   t.droppedNoSource,
		TotalPathfindings:        t.pathfindings,
		MaxPathfindingTimeMs:     durationMs(t.maxPathfinding),
	}
	if t.pathfindings > 0 {
		s.AveragePathfindingTimeMs = durationMs(t.totalPathfinding) / float64(t.pathfindings)
	}
	return s
}

// Reset zeroes every counter atomically.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.propagated = 0
	t.droppedIrrelevant = 0
	t.droppedDistance = 0
	t.droppedNoSource = 0
	t.pathfindings = 0
	t.totalPathfinding = 0
	t.maxPathfinding = 0
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
