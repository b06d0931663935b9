package engine

import (
	"testing"
	"time"
)

func TestTrackerAverages(t *testing.T) {
	tr := NewTracker()
	tr.RecordRun(1, 2, 2*time.Millisecond)
	tr.RecordRun(0, 0, 4*time.Millisecond)

	s := tr.Snapshot()
	if s.TotalPacketsPropagated != 2 || s.TotalPathfindings != 2 {
		t.Errorf("run counters wrong: %+v", s)
	}
	if s.PacketsDroppedDistance != 1 || s.PacketsDroppedIrrelevant != 2 {
		t.Errorf("drop counters wrong: %+v", s)
	}
	if s.AveragePathfindingTimeMs != 3 {
		t.Errorf("expected 3ms average, got %f", s.AveragePathfindingTimeMs)
	}
	if s.MaxPathfindingTimeMs != 4 {
		t.Errorf("expected 4ms max, got %f", s.MaxPathfindingTimeMs)
	}
}

func TestTrackerNoSourceSkipsTiming(t *testing.T) {
	tr := NewTracker()
	tr.RecordNoSource()
	tr.RecordNoSource()

	s := tr.Snapshot()
	if s.PacketsDroppedNoSource != 2 {
		t.Errorf("expected 2 no-source drops, got %+v", s)
	}
	if s.TotalPathfindings != 0 || s.AveragePathfindingTimeMs != 0 {
		t.Errorf("no-source must not contribute timing samples, got %+v", s)
	}
}

func TestTrackerReset(t *testing.T) {
	tr := NewTracker()
	tr.RecordRun(3, 4, time.Millisecond)
	tr.RecordNoSource()
	tr.Reset()

	if tr.Snapshot() != (Statistics{}) {
		t.Errorf("reset should zero the snapshot, got %+v", tr.Snapshot())
	}
}

func TestTrackerZeroSampleAverage(t *testing.T) {
	tr := NewTracker()
	if s := tr.Snapshot(); s.AveragePathfindingTimeMs != 0 {
		t.Errorf("empty tracker should average to zero, got %+v", s)
	}
}
