package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/example/info_propagation_sim/core"
	"github.com/example/info_propagation_sim/hooks"
	"github.com/example/info_propagation_sim/observability"
	"github.com/example/info_propagation_sim/simulator"
	"github.com/example/info_propagation_sim/web"
	"github.com/example/info_propagation_sim/worldgen"
)

var serveFlags struct {
	config    string
	addr      string
	scenario  string
	tickEvery time.Duration
	trace     bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ops API while the simulation ticks in real time",
	Long: `Serve runs the simulation tick loop on a wall-clock cadence and exposes
the ops HTTP API next to it: statistics, runtime tunables, world topology,
manual packet injection, Prometheus metrics and a websocket stats stream.
Once the tick budget is exhausted the server keeps serving.`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.config, "config", "", "Path to a TOML config file (empty = built-in defaults)")
	f.StringVar(&serveFlags.addr, "addr", "", "Listen address override (empty = config value)")
	f.StringVar(&serveFlags.scenario, "scenario", "", "Scenario preset name or YAML file path (empty = random events)")
	f.DurationVar(&serveFlags.tickEvery, "tick-every", 500*time.Millisecond, "Wall-clock duration of one simulation tick")
	f.BoolVar(&serveFlags.trace, "trace", false, "Log every delivery and drop")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(serveFlags.config)
	if err != nil {
		return err
	}
	if serveFlags.addr != "" {
		cfg.Ops.Addr = serveFlags.addr
	}

	logger := observability.InitLogger("propsim", cfg.Log.Level)

	var (
		world worldgen.World
		gens  []simulator.EventGenerator
		ticks = cfg.Sim.Ticks
	)
	if serveFlags.scenario != "" {
		sc, err := loadScenarioArg(serveFlags.scenario)
		if err != nil {
			return err
		}
		world, err = sc.BuildWorld()
		if err != nil {
			return err
		}
		sched, err := simulator.NewScheduleGenerator(sc.Events)
		if err != nil {
			return err
		}
		gens = append(gens, sched)
		ticks = sc.Ticks
		logger.Info().Str("scenario", sc.Name).Int("events", len(sc.Events)).Msg("loaded scenario")
	} else {
		world, err = buildPresetWorld(cfg.Sim.World)
		if err != nil {
			return err
		}
		gens = append(gens, simulator.NewProbabilityGenerator(world.Graph, cfg.Sim.EventChance, cfg.Sim.Seed))
	}

	broker := hooks.NewBroker()
	consumers, err := builtinConsumers(broker, logger)
	if err != nil {
		return err
	}
	names := []string{"prometheus"}
	if serveFlags.trace {
		names = append(names, "trace")
	}
	if err := consumers.LoadGlobal(names); err != nil {
		return err
	}

	eng, err := buildEngine(cfg, world, broker, logger)
	if err != nil {
		return err
	}
	sim, err := simulator.New(simulator.Deps{
		Engine:     eng,
		Broker:     broker,
		Generators: gens,
	}, simulator.Options{Ticks: ticks, StatsInterval: cfg.Sim.StatsInterval}, logger)
	if err != nil {
		return err
	}
	srv, err := web.NewServer(web.Deps{
		Engine:  eng,
		Broker:  broker,
		Graph:   core.GraphSourceFunc(func() *core.ProvinceGraph { return world.Graph }),
		Version: version,
	}, cfg.Ops, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gCtx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(serveFlags.tickEvery)
		defer ticker.Stop()
		for sim.Tick() < ticks {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				sim.Step()
			}
		}
		logger.Info().Int("ticks", ticks).Msg("simulation finished; ops server keeps serving")
		<-gCtx.Done()
		return nil
	})

	logger.Info().
		Str("addr", cfg.Ops.Addr).
		Int("ticks", ticks).
		Dur("tick_every", serveFlags.tickEvery).
		Msg("propsim serving")

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	printReport(cmd.OutOrStdout(), sim.Report())
	return nil
}
