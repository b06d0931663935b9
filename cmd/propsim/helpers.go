package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/example/info_propagation_sim/blocking"
	"github.com/example/info_propagation_sim/config"
	"github.com/example/info_propagation_sim/core"
	"github.com/example/info_propagation_sim/engine"
	"github.com/example/info_propagation_sim/hooks"
	"github.com/example/info_propagation_sim/observability"
	"github.com/example/info_propagation_sim/scenario"
	"github.com/example/info_propagation_sim/worldgen"
)

// loadConfig reads the TOML file when a path is given and falls back to the
// defaults otherwise.
func loadConfig(path string) (config.Config, error) {
	if strings.TrimSpace(path) == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// loadScenarioArg resolves a --scenario value: anything that looks like a
// file path is read from disk, everything else is looked up among the
// embedded presets.
func loadScenarioArg(arg string) (*scenario.Scenario, error) {
	if strings.ContainsAny(arg, `/\`) || strings.HasSuffix(arg, ".yaml") || strings.HasSuffix(arg, ".yml") {
		return scenario.LoadFile(arg)
	}
	return scenario.LoadPreset(arg)
}

// buildPresetWorld instantiates a named preset world.
func buildPresetWorld(name string) (worldgen.World, error) {
	preset, ok := worldgen.GetWorldByName(name)
	if !ok {
		return worldgen.World{}, fmt.Errorf("unknown world %q", name)
	}
	return preset.Build(), nil
}

// builtinConsumers returns the consumer registry every command starts from:
// the prometheus metrics bundle and the zerolog delivery trace, activated
// by name.
func builtinConsumers(broker *hooks.Broker, logger zerolog.Logger) (*hooks.Registry, error) {
	reg := hooks.NewRegistry(broker)

	metricsDesc, metricsBundle := observability.MetricsHooks()
	err := reg.RegisterGlobal(metricsDesc.Name, metricsDesc, func(b *hooks.Broker) error {
		b.RegisterBundle(metricsDesc, metricsBundle)
		return nil
	})
	if err != nil {
		return nil, err
	}

	traceDesc, traceBundle := observability.TraceHooks(logger)
	err = reg.RegisterGlobal(traceDesc.Name, traceDesc, func(b *hooks.Broker) error {
		b.RegisterBundle(traceDesc, traceBundle)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// buildEngine assembles an engine over the world using the configured
// tunables and leak rule.
func buildEngine(cfg config.Config, w worldgen.World, broker *hooks.Broker, logger zerolog.Logger) (*engine.Engine, error) {
	var policyOpts []blocking.Option
	if cfg.Leak.Enabled {
		policyOpts = append(policyOpts, blocking.WithLeak(cfg.Leak.Threshold, cfg.Leak.AccuracyPenalty))
	}
	return engine.New(engine.Deps{
		Graph:    core.GraphSourceFunc(func() *core.ProvinceGraph { return w.Graph }),
		Policy:   blocking.NewPolicy(w.Diplomacy, w.Spheres, policyOpts...),
		Interest: w.Interest,
		Sink:     broker,
	}, engine.WithLogger(logger), engine.WithTunables(cfg.Engine))
}
