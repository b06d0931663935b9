package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/example/info_propagation_sim/scenario"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the embedded scenario presets",
	RunE:  runScenarios,
}

func runScenarios(cmd *cobra.Command, _ []string) error {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"name", "world", "ticks", "events", "description"})
	for _, name := range scenario.ListPresets() {
		sc, err := scenario.LoadPreset(name)
		if err != nil {
			return err
		}
		world := sc.World
		if world == "" {
			world = "inline"
		}
		t.AppendRow(table.Row{sc.Name, world, sc.Ticks, len(sc.Events), sc.Description})
	}
	t.Render()
	return nil
}
