// Package config loads the propsim TOML configuration file. Loading starts
// from Default and overlays only the keys the file actually defines, so a
// partial file never zeroes a knob the user did not mention.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/example/info_propagation_sim/blocking"
	"github.com/example/info_propagation_sim/engine"
)

// Config carries every runtime knob for the engine, the simulator loop and
// the ops server.
type Config struct {
	Engine engine.Tunables
	Leak   blocking.LeakRule
	Ops    OpsConfig
	Log    LogConfig
	Sim    SimConfig
}

// OpsConfig configures the HTTP ops server.
type OpsConfig struct {
	Addr        string
	CorsOrigins []string
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level string
}

// SimConfig configures the tick loop.
type SimConfig struct {
	World         string
	Ticks         int
	Seed          int64
	EventChance   float64
	StatsInterval int
}

type fileConfig struct {
	Engine fileEngine `toml:"engine"`
	Leak   fileLeak   `toml:"leak"`
	Ops    fileOps    `toml:"ops"`
	Log    fileLog    `toml:"log"`
	Sim    fileSim    `toml:"simulator"`
}

type fileEngine struct {
	SpeedMultiplier float64 `toml:"speed_multiplier"`
	DegradationRate float64 `toml:"degradation_rate"`
	AccuracyFloor   float64 `toml:"accuracy_floor"`
	UnitsPerHop     float64 `toml:"units_per_hop"`
	MaxDistance     float64 `toml:"max_distance"`
	SoftBudget      string  `toml:"soft_budget"`
}

type fileLeak struct {
	Enabled         bool    `toml:"enabled"`
	Threshold       float64 `toml:"severity_threshold"`
	AccuracyPenalty float64 `toml:"accuracy_penalty"`
}

type fileOps struct {
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
}

type fileLog struct {
	Level string `toml:"level"`
}

type fileSim struct {
	World         string  `toml:"world"`
	Ticks         int     `toml:"ticks"`
	Seed          int64   `toml:"seed"`
	EventChance   float64 `toml:"event_chance"`
	StatsInterval int     `toml:"stats_interval"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Engine: engine.DefaultTunables(),
		Leak:   blocking.LeakRule{Enabled: false, Threshold: 0.8, AccuracyPenalty: 0.2},
		Ops:    OpsConfig{Addr: ":8090", CorsOrigins: []string{"*"}},
		Log:    LogConfig{Level: "info"},
		Sim: SimConfig{
			World:         "border_duchies",
			Ticks:         100,
			Seed:          1,
			EventChance:   0.3,
			StatsInterval: 10,
		},
	}
}

// Load reads path, overlays it onto Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}

	if meta.IsDefined("engine", "speed_multiplier") {
		cfg.Engine.SpeedMultiplier = raw.Engine.SpeedMultiplier
	}
	if meta.IsDefined("engine", "degradation_rate") {
		cfg.Engine.DegradationRate = raw.Engine.DegradationRate
	}
	if meta.IsDefined("engine", "accuracy_floor") {
		cfg.Engine.AccuracyFloor = raw.Engine.AccuracyFloor
	}
	if meta.IsDefined("engine", "units_per_hop") {
		cfg.Engine.UnitsPerHop = raw.Engine.UnitsPerHop
	}
	if meta.IsDefined("engine", "max_distance") {
		cfg.Engine.MaxDistance = raw.Engine.MaxDistance
	}
	if meta.IsDefined("engine", "soft_budget") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Engine.SoftBudget))
		if err != nil {
			return Config{}, fmt.Errorf("parse soft_budget: %w", err)
		}
		cfg.Engine.SoftBudget = d
	}

	if meta.IsDefined("leak", "enabled") {
		cfg.Leak.Enabled = raw.Leak.Enabled
	}
	if meta.IsDefined("leak", "severity_threshold") {
		cfg.Leak.Threshold = raw.Leak.Threshold
	}
	if meta.IsDefined("leak", "accuracy_penalty") {
		cfg.Leak.AccuracyPenalty = raw.Leak.AccuracyPenalty
	}

	if meta.IsDefined("ops", "addr") {
		cfg.Ops.Addr = strings.TrimSpace(raw.Ops.Addr)
	}
	if meta.IsDefined("ops", "cors_origins") {
		cfg.Ops.CorsOrigins = raw.Ops.CorsOrigins
	}

	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}

	if meta.IsDefined("simulator", "world") {
		cfg.Sim.World = strings.TrimSpace(raw.Sim.World)
	}
	if meta.IsDefined("simulator", "ticks") {
		cfg.Sim.Ticks = raw.Sim.Ticks
	}
	if meta.IsDefined("simulator", "seed") {
		cfg.Sim.Seed = raw.Sim.Seed
	}
	if meta.IsDefined("simulator", "event_chance") {
		cfg.Sim.EventChance = raw.Sim.EventChance
	}
	if meta.IsDefined("simulator", "stats_interval") {
		cfg.Sim.StatsInterval = raw.Sim.StatsInterval
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate applies range checks. Invalid values are rejected, never clamped.
func Validate(cfg Config) error {
	if err := cfg.Engine.Validate(); err != nil {
		return err
	}
	if cfg.Leak.Threshold < 0 || cfg.Leak.Threshold > 1 {
		return fmt.Errorf("leak severity_threshold must be within [0,1], got %.3f", cfg.Leak.Threshold)
	}
	if cfg.Leak.AccuracyPenalty < 0 || cfg.Leak.AccuracyPenalty >= 1 {
		return fmt.Errorf("leak accuracy_penalty must be within [0,1), got %.3f", cfg.Leak.AccuracyPenalty)
	}
	if strings.TrimSpace(cfg.Ops.Addr) == "" {
		return errors.New("ops addr must not be empty")
	}
	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log level %q: %w", cfg.Log.Level, err)
	}
	if strings.TrimSpace(cfg.Sim.World) == "" {
		return errors.New("simulator world must not be empty")
	}
	if cfg.Sim.Ticks <= 0 {
		return fmt.Errorf("simulator ticks must be positive, got %d", cfg.Sim.Ticks)
	}
	if cfg.Sim.EventChance < 0 || cfg.Sim.EventChance > 1 {
		return fmt.Errorf("simulator event_chance must be within [0,1], got %.3f", cfg.Sim.EventChance)
	}
	if cfg.Sim.StatsInterval <= 0 {
		return fmt.Errorf("simulator stats_interval must be positive, got %d", cfg.Sim.StatsInterval)
	}
	return nil
}
