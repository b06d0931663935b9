package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/example/info_propagation_sim/blocking"
	"github.com/example/info_propagation_sim/core"
	"github.com/example/info_propagation_sim/engine"
	"github.com/example/info_propagation_sim/hooks"
	"github.com/example/info_propagation_sim/worldgen"
)

var benchFlags struct {
	packets    int
	iterations int
	fullRange  bool
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure propagation throughput on grid worlds",
	Long: `Bench floods generated grid worlds of increasing size with packets and
reports throughput and pathfinding latency per grid. Useful for checking
a tunables change against the soft time budget before deploying it.`,
	RunE: runBench,
}

func init() {
	f := benchCmd.Flags()
	f.IntVar(&benchFlags.packets, "packets", 500, "Propagations per iteration")
	f.IntVar(&benchFlags.iterations, "iterations", 3, "Iterations per grid size")
	f.BoolVar(&benchFlags.fullRange, "full-range", false, "Raise the distance cutoff so packets cover the whole grid")
}

type benchResult struct {
	side          int
	provinces     int
	packetsPerSec float64
	deliveries    uint64
	avgPathMs     float64
	maxPathMs     float64
}

func runBench(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	sides := []int{10, 20, 30}

	fmt.Fprintln(out, "=== Propagation Throughput Benchmark ===")
	fmt.Fprintf(out, "%d packets per iteration, %d iterations per grid\n\n", benchFlags.packets, benchFlags.iterations)

	results := make([]benchResult, 0, len(sides))
	for _, side := range sides {
		fmt.Fprintf(out, "running grid %dx%d...\n", side, side)
		res, err := runGridBench(side, benchFlags.packets, benchFlags.iterations, benchFlags.fullRange)
		if err != nil {
			return err
		}
		results = append(results, res)
	}
	fmt.Fprintln(out)

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"grid", "provinces", "packets/sec", "deliveries", "avg path", "max path"})
	for _, r := range results {
		t.AppendRow(table.Row{
			fmt.Sprintf("%dx%d", r.side, r.side),
			r.provinces,
			fmt.Sprintf("%.0f", r.packetsPerSec),
			r.deliveries,
			fmt.Sprintf("%.3f ms", r.avgPathMs),
			fmt.Sprintf("%.3f ms", r.maxPathMs),
		})
	}
	t.Render()
	return nil
}

// runGridBench floods a fresh grid world with copies of one packet and
// averages throughput over the requested iterations.
func runGridBench(side, packets, iterations int, fullRange bool) (benchResult, error) {
	graph := worldgen.GridWorld(side, side, 3)

	// StartPropagation runs sequentially here, so a plain counter is fine.
	var delivered uint64
	broker := hooks.NewBroker()
	broker.RegisterRun(func(tr hooks.RunTrace) { delivered += uint64(tr.Deliveries) })

	tun := engine.DefaultTunables()
	if fullRange {
		tun.MaxDistance = float64(side*side) * tun.UnitsPerHop
	}
	eng, err := engine.New(engine.Deps{
		Graph:  core.GraphSourceFunc(func() *core.ProvinceGraph { return graph }),
		Policy: blocking.NewPolicy(nil, nil),
		Sink:   broker,
	}, engine.WithTunables(tun))
	if err != nil {
		return benchResult{}, err
	}

	packet := core.NewPacket(core.InfoMilitaryAction, core.TierHigh, 0.5, 1, worldgen.Ruler(1))

	var elapsed time.Duration
	for it := 0; it < iterations; it++ {
		start := time.Now()
		for i := 0; i < packets; i++ {
			eng.StartPropagation(packet)
		}
		elapsed += time.Since(start)
	}

	stats := eng.GetStatistics()
	total := packets * iterations
	return benchResult{
		side:          side,
		provinces:     graph.Len(),
		packetsPerSec: float64(total) / elapsed.Seconds(),
		deliveries:    delivered,
		avgPathMs:     stats.AveragePathfindingTimeMs,
		maxPathMs:     stats.MaxPathfindingTimeMs,
	}, nil
}
