package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "propsim.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFullFile(t *testing.T) {
	path := writeConfig(t, `
[engine]
speed_multiplier = 2.0
degradation_rate = 0.2
accuracy_floor = 0.05
units_per_hop = 100.0
max_distance = 1000.0
soft_budget = "10ms"

[leak]
enabled = true
severity_threshold = 0.9
accuracy_penalty = 0.3

[ops]
addr = ":9999"
cors_origins = ["https://example.test"]

[log]
level = "debug"

[simulator]
world = "war_frontier"
ticks = 50
seed = 7
event_chance = 0.5
stats_interval = 5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Engine.SpeedMultiplier != 2.0 || cfg.Engine.SoftBudget != 10*time.Millisecond {
		t.Errorf("engine section not applied: %+v", cfg.Engine)
	}
	if !cfg.Leak.Enabled || cfg.Leak.Threshold != 0.9 {
		t.Errorf("leak section not applied: %+v", cfg.Leak)
	}
	want := OpsConfig{Addr: ":9999", CorsOrigins: []string{"https://example.test"}}
	if diff := cmp.Diff(want, cfg.Ops); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
	if cfg.Sim.World != "war_frontier" || cfg.Sim.Seed != 7 {
		t.Errorf("simulator section not applied: %+v", cfg.Sim)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
[engine]
degradation_rate = 0.0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	// Zero is a legal rate and must survive the overlay.
	if cfg.Engine.DegradationRate != 0 {
		t.Errorf("explicit zero rate lost: %+v", cfg.Engine)
	}
	def := Default()
	if cfg.Engine.MaxDistance != def.Engine.MaxDistance {
		t.Errorf("untouched engine field changed: %+v", cfg.Engine)
	}
	if cfg.Ops.Addr != def.Ops.Addr || cfg.Sim.Ticks != def.Sim.Ticks {
		t.Errorf("untouched sections changed: %+v", cfg)
	}
}

func TestLoadRejectsBadRanges(t *testing.T) {
	cases := map[string]string{
		"negative distance": "[engine]\nmax_distance = -1.0\n",
		"rate above one":    "[engine]\ndegradation_rate = 1.5\n",
		"bad budget":        "[engine]\nsoft_budget = \"fast\"\n",
		"bad leak":          "[leak]\nseverity_threshold = 2.0\n",
		"bad level":         "[log]\nlevel = \"shouty\"\n",
		"zero ticks":        "[simulator]\nticks = 0\n",
		"bad chance":        "[simulator]\nevent_chance = 1.5\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Error("expected rejection")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaultValidates(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}
