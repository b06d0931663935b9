package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/example/info_propagation_sim/hooks"
	"github.com/example/info_propagation_sim/observability"
	"github.com/example/info_propagation_sim/simulator"
	"github.com/example/info_propagation_sim/worldgen"
)

var runFlags struct {
	config   string
	scenario string
	world    string
	ticks    int
	seed     int64
	chance   float64
	interval int
	trace    bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a propagation simulation and print the resulting statistics",
	Long: `Run drives the tick loop to completion as fast as it can. Events come
either from a scenario's scripted timeline or from the seeded random
generator, and the final engine statistics are printed as a table.`,
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.config, "config", "", "Path to a TOML config file (empty = built-in defaults)")
	f.StringVar(&runFlags.scenario, "scenario", "", "Scenario preset name or YAML file path (empty = random events)")
	f.StringVar(&runFlags.world, "world", "", "World preset to run on (ignored when a scenario names its own)")
	f.IntVar(&runFlags.ticks, "ticks", 0, "Number of ticks to simulate (0 = config or scenario value)")
	f.Int64Var(&runFlags.seed, "seed", 0, "Random seed for event generation (0 = config value)")
	f.Float64Var(&runFlags.chance, "event-chance", -1, "Per-tick random event probability in [0,1] (-1 = config value)")
	f.IntVar(&runFlags.interval, "stats-interval", 0, "Ticks between throughput log lines (0 = config value)")
	f.BoolVar(&runFlags.trace, "trace", false, "Log every delivery and drop")
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(runFlags.config)
	if err != nil {
		return err
	}
	if runFlags.world != "" {
		cfg.Sim.World = runFlags.world
	}
	if runFlags.ticks > 0 {
		cfg.Sim.Ticks = runFlags.ticks
	}
	if runFlags.seed != 0 {
		cfg.Sim.Seed = runFlags.seed
	}
	if runFlags.chance >= 0 {
		cfg.Sim.EventChance = runFlags.chance
	}
	if runFlags.interval > 0 {
		cfg.Sim.StatsInterval = runFlags.interval
	}

	logger := observability.InitLogger("propsim", cfg.Log.Level)

	var (
		world worldgen.World
		gens  []simulator.EventGenerator
		ticks = cfg.Sim.Ticks
	)
	if runFlags.scenario != "" {
		sc, err := loadScenarioArg(runFlags.scenario)
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
		if !cmd.Flags().Changed("ticks") {
			ticks = sc.Ticks
		}
		// Random noise on top of the script only when asked for explicitly.
		if cmd.Flags().Changed("event-chance") && cfg.Sim.EventChance > 0 {
			gens = append(gens, simulator.NewProbabilityGenerator(world.Graph, cfg.Sim.EventChance, cfg.Sim.Seed))
		}
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
	if runFlags.trace {
		if err := consumers.LoadGlobal([]string{"trace"}); err != nil {
			return err
		}
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

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := sim.Run(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			return err
		}
		logger.Warn().Int("ticks", report.Ticks).Msg("run interrupted; reporting partial results")
	}

	printReport(cmd.OutOrStdout(), report)
	return nil
}

func printReport(out io.Writer, report simulator.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.SetTitle("propagation run")
	t.AppendHeader(table.Row{"metric", "value"})
	t.AppendRows([]table.Row{
		{"ticks", report.Ticks},
		{"events injected", report.PacketsInjected},
		{"deliveries", report.Deliveries},
		{"drops", report.Dropped},
		{"elapsed", report.Elapsed.Round(time.Millisecond)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"packets propagated", report.Engine.TotalPacketsPropagated},
		{"dropped: distance", report.Engine.PacketsDroppedDistance},
		{"dropped: irrelevant", report.Engine.PacketsDroppedIrrelevant},
		{"dropped: no source", report.Engine.PacketsDroppedNoSource},
		{"pathfinding runs", report.Engine.TotalPathfindings},
		{"avg pathfinding", fmt.Sprintf("%.3f ms", report.Engine.AveragePathfindingTimeMs)},
		{"max pathfinding", fmt.Sprintf("%.3f ms", report.Engine.MaxPathfindingTimeMs)},
	})
	t.Render()
}
