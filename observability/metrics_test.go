package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/info_propagation_sim/core"
	"github.com/example/info_propagation_sim/hooks"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordPropagation("broadcast", 4, 2*time.Millisecond)
	RecordDrop("distance")
	RecordHTTPRequest("GET", "/health", 200, 12*time.Millisecond)
}

func TestMetricsHooksWiring(t *testing.T) {
	desc, bundle := MetricsHooks()
	if desc.Name != "prometheus" || desc.Category != hooks.ConsumerCategoryInstrumentation {
		t.Errorf("unexpected descriptor %+v", desc)
	}

	broker := hooks.NewBroker()
	broker.RegisterBundle(desc, bundle)

	broker.EmitDrop(core.DropEvent{Reason: core.DropDistance, Province: 3, HopCount: 11})
	broker.EmitRun(hooks.RunTrace{Targeted: true, Deliveries: 1, Elapsed: time.Millisecond})

	found := false
	for _, d := range broker.ListConsumers(hooks.ConsumerCategoryInstrumentation) {
		if d.Name == "prometheus" {
			found = true
		}
	}
	if !found {
		t.Error("prometheus consumer missing from catalog")
	}
}

func TestTraceHooksLogDeliveries(t *testing.T) {
	var buf bytes.Buffer
	desc, bundle := TraceHooks(zerolog.New(&buf))
	if desc.Category != hooks.ConsumerCategoryTrace {
		t.Errorf("unexpected descriptor %+v", desc)
	}

	broker := hooks.NewBroker()
	broker.RegisterBundle(desc, bundle)
	broker.EmitDelivery(core.DeliveryEvent{
		Receiver:      4,
		ReceiverRealm: 2,
		Packet:        core.NewPacket(core.InfoRebellion, core.TierHigh, 0.7, 1, 9),
		Relevance:     core.TierHigh,
		HopCount:      3,
		Accuracy:      0.72,
	})

	out := buf.String()
	if !strings.Contains(out, "delivered") || !strings.Contains(out, "Rebellion") {
		t.Errorf("delivery not logged: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	if got := parseLevel("debug"); got != zerolog.DebugLevel {
		t.Errorf("expected debug, got %s", got)
	}
	if got := parseLevel("shouty"); got != zerolog.InfoLevel {
		t.Errorf("unknown level should fall back to info, got %s", got)
	}
	if got := parseLevel(""); got != zerolog.InfoLevel {
		t.Errorf("empty level should fall back to info, got %s", got)
	}
}

func TestInitLoggerHonorsEnvOverride(t *testing.T) {
	t.Setenv(EnvLogLevel, "warn")
	logger := InitLogger("propsim-test", "info")
	if logger.GetLevel() != zerolog.WarnLevel {
		t.Errorf("env override ignored, got %s", logger.GetLevel())
	}
}
