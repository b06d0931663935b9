package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/example/info_propagation_sim/core"
	"github.com/example/info_propagation_sim/worldgen"
)

var worldsCmd = &cobra.Command{
	Use:   "worlds",
	Short: "List the built-in world presets",
	RunE:  runWorlds,
}

func runWorlds(cmd *cobra.Command, _ []string) error {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"name", "provinces", "realms", "description"})
	for _, preset := range worldgen.GetPredefinedWorlds() {
		w := preset.Build()
		realms := make(map[core.RealmID]struct{})
		for _, id := range w.Graph.ProvinceIDs() {
			if realm, ok := w.Graph.RealmOf(id); ok {
				realms[realm] = struct{}{}
			}
		}
		t.AppendRow(table.Row{preset.Name, w.Graph.Len(), len(realms), preset.Description})
	}
	t.Render()
	return nil
}
