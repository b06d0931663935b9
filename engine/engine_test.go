package engine

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/info_propagation_sim/blocking"
	"github.com/example/info_propagation_sim/core"
	"github.com/example/info_propagation_sim/hooks"
	"github.com/example/info_propagation_sim/worldgen"
)

func newTestEngine(t *testing.T, w worldgen.World, opts ...Option) (*Engine, *hooks.Broker) {
	t.Helper()
	broker := hooks.NewBroker()
	eng, err := New(Deps{
		Graph:    core.GraphSourceFunc(func() *core.ProvinceGraph { return w.Graph }),
		Policy:   blocking.NewPolicy(w.Diplomacy, w.Spheres),
		Interest: w.Interest,
		Sink:     broker,
	}, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return eng, broker
}

func presetWorld(t *testing.T, name string) worldgen.World {
	t.Helper()
	preset, ok := worldgen.GetWorldByName(name)
	if !ok {
		t.Fatalf("preset %s missing", name)
	}
	return preset.Build()
}

func captureDeliveries(b *hooks.Broker) *[]core.DeliveryEvent {
	var got []core.DeliveryEvent
	b.RegisterDelivery(func(ev core.DeliveryEvent) { got = append(got, ev) })
	return &got
}

func TestStartPropagationAcrossPeacefulBorder(t *testing.T) {
	w := presetWorld(t, "border_duchies")
	eng, broker := newTestEngine(t, w)
	deliveries := captureDeliveries(broker)

	packet := core.NewPacket(core.InfoMilitaryAction, core.TierHigh, 0.6, 1, worldgen.Ruler(1))
	eng.StartPropagation(packet)

	if len(*deliveries) != 5 {
		t.Fatalf("expected deliveries to all 5 other provinces, got %d", len(*deliveries))
	}
	byID := map[core.ProvinceID]core.DeliveryEvent{}
	for _, d := range *deliveries {
		byID[d.Receiver] = d
	}
	if byID[2].HopCount != 1 || byID[6].HopCount != 5 {
		t.Errorf("hop counts wrong: %+v", byID)
	}
	// Province 4 sits 3 hops out: one tier lost, then restored because
	// realm 2 tracks realm 1's ruler as a rival.
	if byID[4].Relevance != core.TierHigh {
		t.Errorf("expected rival upgrade to high at province 4, got %s", byID[4].Relevance)
	}
	if byID[4].ReceiverRealm != 2 {
		t.Errorf("province 4 should belong to realm 2, got %d", byID[4].ReceiverRealm)
	}

	stats := eng.GetStatistics()
	if stats.TotalPacketsPropagated != 1 || stats.TotalPathfindings != 1 {
		t.Errorf("expected one propagated packet and one pathfinding, got %+v", stats)
	}
	if stats.PacketsDroppedDistance != 0 || stats.PacketsDroppedIrrelevant != 0 {
		t.Errorf("no drops expected, got %+v", stats)
	}
}

func TestWarClosesBorderWithoutDrops(t *testing.T) {
	w := presetWorld(t, "border_duchies")
	w.Diplomacy.DeclareWar(1, 2)
	eng, broker := newTestEngine(t, w)
	deliveries := captureDeliveries(broker)

	eng.StartPropagation(core.NewPacket(core.InfoRebellion, core.TierHigh, 0.7, 1, worldgen.Ruler(1)))

	for _, d := range *deliveries {
		if d.ReceiverRealm == 2 {
			t.Errorf("realm 2 must not receive across a war border, got %+v", d)
		}
	}
	if len(*deliveries) != 2 {
		t.Errorf("realm 1's own provinces should still receive, got %d deliveries", len(*deliveries))
	}

	stats := eng.GetStatistics()
	if stats.PacketsDroppedDistance != 0 || stats.PacketsDroppedIrrelevant != 0 {
		t.Errorf("blocking is not a drop, got %+v", stats)
	}
	if stats.TotalPacketsPropagated != 1 {
		t.Errorf("blocked propagation still counts as propagated, got %+v", stats)
	}
}

func TestWarDetourThroughNeutralRealm(t *testing.T) {
	w := presetWorld(t, "war_frontier")
	eng, broker := newTestEngine(t, w)
	deliveries := captureDeliveries(broker)

	eng.StartPropagation(core.NewPacket(core.InfoMilitaryAction, core.TierCritical, 0.9, 1, worldgen.Ruler(1)))

	byID := map[core.ProvinceID]core.DeliveryEvent{}
	for _, d := range *deliveries {
		byID[d.Receiver] = d
	}
	if len(byID) != 7 {
		t.Fatalf("expected all 7 other provinces via the neutral detour, got %d", len(byID))
	}
	if byID[5].HopCount != 4 {
		t.Errorf("enemy heart should arrive via the detour in 4 hops, got %d", byID[5].HopCount)
	}
	if byID[4].HopCount != 5 {
		t.Errorf("enemy front is reached from behind in 5 hops, got %d", byID[4].HopCount)
	}
}

func TestUnknownSourceFailsFast(t *testing.T) {
	w := presetWorld(t, "border_duchies")
	eng, broker := newTestEngine(t, w)
	deliveries := captureDeliveries(broker)

	eng.StartPropagation(core.NewPacket(core.InfoRebellion, core.TierHigh, 0.5, 99, 1))
	eng.StartPropagation(core.NewPacket(core.InfoRebellion, core.TierHigh, 0.5, 99, 1))

	stats := eng.GetStatistics()
	if stats.PacketsDroppedNoSource != 2 {
		t.Errorf("expected 2 unknown-source drops, got %+v", stats)
	}
	if stats.TotalPathfindings != 0 || stats.TotalPacketsPropagated != 0 {
		t.Errorf("unknown source must not traverse or sample timing, got %+v", stats)
	}
	if len(*deliveries) != 0 {
		t.Errorf("no deliveries expected, got %d", len(*deliveries))
	}
}

func TestDistanceCutoffOnRing(t *testing.T) {
	w := worldgen.World{
		Graph:     worldgen.RingWorld(30, 1),
		Diplomacy: worldgen.NewDiplomacyTable(),
		Spheres:   worldgen.NewSphereTable(),
		Interest:  nil,
	}
	broker := hooks.NewBroker()
	eng, err := New(Deps{
		Graph:  core.GraphSourceFunc(func() *core.ProvinceGraph { return w.Graph }),
		Policy: blocking.NewPolicy(w.Diplomacy, w.Spheres),
		Sink:   broker,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	deliveries := captureDeliveries(broker)
	var drops []core.DropEvent
	broker.RegisterDrop(func(ev core.DropEvent) { drops = append(drops, ev) })

	// Default range is 2000 units at 200 per hop: ten hops down each arm.
	eng.StartPropagation(core.NewPacket(core.InfoMilitaryAction, core.TierHigh, 0.5, 1, 7))

	if len(*deliveries) != 20 {
		t.Errorf("expected 20 reachable provinces, got %d", len(*deliveries))
	}
	stats := eng.GetStatistics()
	if stats.PacketsDroppedDistance != 2 {
		t.Errorf("both arms should drop once at hop 11, got %+v", stats)
	}
	if len(drops) != 2 || drops[0].Reason != core.DropDistance {
		t.Errorf("drop events should mirror the counter, got %+v", drops)
	}
}

func TestSetterValidation(t *testing.T) {
	w := presetWorld(t, "border_duchies")
	eng, _ := newTestEngine(t, w)

	before := eng.Tunables()
	if err := eng.SetPropagationSpeedMultiplier(0); err == nil {
		t.Error("zero speed multiplier should be rejected")
	}
	if err := eng.SetAccuracyDegradationRate(1.5); err == nil {
		t.Error("degradation rate above 1 should be rejected")
	}
	if err := eng.SetMaxPropagationDistance(-10); err == nil {
		t.Error("negative distance should be rejected")
	}
	if eng.Tunables() != before {
		t.Error("rejected updates must not change tunables")
	}

	if err := eng.SetMaxPropagationDistance(200); err != nil {
		t.Fatalf("valid distance rejected: %v", err)
	}
	if eng.Tunables().MaxDistance != 200 {
		t.Errorf("accepted update not applied: %+v", eng.Tunables())
	}
}

func TestShortenedRangeAppliesToNextRun(t *testing.T) {
	w := presetWorld(t, "border_duchies")
	eng, broker := newTestEngine(t, w)
	deliveries := captureDeliveries(broker)

	if err := eng.SetMaxPropagationDistance(200); err != nil {
		t.Fatalf("SetMaxPropagationDistance failed: %v", err)
	}
	eng.StartPropagation(core.NewPacket(core.InfoMilitaryAction, core.TierHigh, 0.5, 1, 7))

	if len(*deliveries) != 1 || (*deliveries)[0].Receiver != 2 {
		t.Errorf("one-hop range should reach only province 2, got %+v", *deliveries)
	}
	if eng.GetStatistics().PacketsDroppedDistance == 0 {
		t.Error("shortened range should record distance drops")
	}
}

func TestCalculateRelevance(t *testing.T) {
	w := presetWorld(t, "border_duchies")
	eng, _ := newTestEngine(t, w)

	packet := core.NewPacket(core.InfoMilitaryAction, core.TierMedium, 0.5, 4, worldgen.Ruler(2))
	if got := eng.CalculateRelevance(packet, 1); got != core.TierHigh {
		t.Errorf("rival originator should upgrade to high, got %s", got)
	}
	if got := eng.CalculateRelevance(packet, 2); got != core.TierMedium {
		t.Errorf("own realm has no special interest here, got %s", got)
	}

	packet.HopCount = 6
	if got := eng.CalculateRelevance(packet, 2); got != core.TierLow {
		t.Errorf("six hops should cost two tiers, got %s", got)
	}
}

func TestPropagateToUsesCheapestOpenPath(t *testing.T) {
	w := presetWorld(t, "war_frontier")
	eng, broker := newTestEngine(t, w)
	deliveries := captureDeliveries(broker)

	ev, ok := eng.PropagateTo(core.NewPacket(core.InfoMilitaryAction, core.TierCritical, 0.9, 1, worldgen.Ruler(1)), 5)
	if !ok {
		t.Fatal("expected targeted delivery")
	}
	if ev.CumulativeCost != 7 || ev.HopCount != 4 {
		t.Errorf("expected detour cost 7 over 4 hops, got %f/%d", ev.CumulativeCost, ev.HopCount)
	}
	if len(*deliveries) != 1 {
		t.Errorf("targeted delivery should publish exactly one event, got %d", len(*deliveries))
	}
	if eng.GetStatistics().TotalPathfindings != 1 {
		t.Errorf("targeted run should record one pathfinding, got %+v", eng.GetStatistics())
	}
}

func TestPropagateToDegenerateInputs(t *testing.T) {
	w := presetWorld(t, "border_duchies")
	eng, _ := newTestEngine(t, w)

	if _, ok := eng.PropagateTo(core.NewPacket(core.InfoRebellion, core.TierHigh, 0.5, 99, 1), 2); ok {
		t.Error("unknown source should not deliver")
	}
	if eng.GetStatistics().PacketsDroppedNoSource != 1 {
		t.Errorf("unknown source should count, got %+v", eng.GetStatistics())
	}

	if _, ok := eng.PropagateTo(core.NewPacket(core.InfoRebellion, core.TierHigh, 0.5, 1, 1), 99); ok {
		t.Error("unknown target should not deliver")
	}
	if eng.GetStatistics().TotalPathfindings != 0 {
		t.Errorf("degenerate inputs must not sample timing, got %+v", eng.GetStatistics())
	}
}

func TestResetStatistics(t *testing.T) {
	w := presetWorld(t, "border_duchies")
	eng, _ := newTestEngine(t, w)

	eng.StartPropagation(core.NewPacket(core.InfoMilitaryAction, core.TierHigh, 0.5, 1, 7))
	if eng.GetStatistics().TotalPacketsPropagated == 0 {
		t.Fatal("precondition failed: no counters recorded")
	}

	eng.ResetStatistics()
	if eng.GetStatistics() != (Statistics{}) {
		t.Errorf("reset should zero everything, got %+v", eng.GetStatistics())
	}
}

func TestRunTraceEmitted(t *testing.T) {
	w := presetWorld(t, "border_duchies")
	eng, broker := newTestEngine(t, w)
	var traces []hooks.RunTrace
	broker.RegisterRun(func(tr hooks.RunTrace) { traces = append(traces, tr) })

	eng.StartPropagation(core.NewPacket(core.InfoMilitaryAction, core.TierHigh, 0.5, 1, 7))

	if len(traces) != 1 {
		t.Fatalf("expected one run trace, got %d", len(traces))
	}
	if traces[0].Deliveries != 5 || traces[0].Targeted {
		t.Errorf("unexpected trace %+v", traces[0])
	}
}

func TestSoftBudgetOverrunLogged(t *testing.T) {
	w := presetWorld(t, "grid_continent")
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	tun := DefaultTunables()
	tun.SoftBudget = time.Nanosecond
	eng, _ := newTestEngine(t, w, WithLogger(logger), WithTunables(tun))

	eng.StartPropagation(core.NewPacket(core.InfoMilitaryAction, core.TierHigh, 0.5, 1, 7))

	if !strings.Contains(buf.String(), "exceeded soft time budget") {
		t.Errorf("expected budget warning in log, got %q", buf.String())
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Deps{}); !errors.Is(err, ErrNoGraph) {
		t.Errorf("missing graph should return ErrNoGraph, got %v", err)
	}

	g := worldgen.RingWorld(3, 1)
	bad := DefaultTunables()
	bad.DegradationRate = 2
	_, err := New(Deps{Graph: core.GraphSourceFunc(func() *core.ProvinceGraph { return g })}, WithTunables(bad))
	if err == nil {
		t.Error("invalid tunables should fail construction")
	}
}
