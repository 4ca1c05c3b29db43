package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/procicity/pkg/builder"
	"github.com/dshills/procicity/pkg/rules"
	"github.com/dshills/procicity/pkg/simulation"
)

var autobuildCmd = &cobra.Command{
	Use:   "autobuild",
	Short: "Run the autonomous builder for --autobuild-days days",
	Long: `Autobuild loads --load (or generates from --seed/--size), then runs the
deterministic autonomous builder for --autobuild-days days: each day it lays
roads, zones, and parks according to its greedy placement rules, then steps
the simulator once. Prints a summary report and writes the result to --out.

Examples:
  citysim autobuild --seed 42 --size 80x60 --autobuild-days 60 --out city.save`,
	RunE: runAutobuild,
}

func init() {
	rootCmd.AddCommand(autobuildCmd)
}

func runAutobuild(cmd *cobra.Command, args []string) error {
	lw, err := loadOrGenerate()
	if err != nil {
		return err
	}
	if autobuildDays <= 0 {
		return fmt.Errorf("autobuild requires --autobuild-days > 0")
	}
	sim := simulation.New(lw.World, rules.Default(), lw.SimConfig)
	report, _ := builder.Run(lw.World, sim, builder.DefaultConfig(), autobuildDays)
	fmt.Printf("days=%d roads=%d upgraded=%d zones=%d parks=%d failed=%d\n",
		report.DaysSimulated, report.RoadsBuilt, report.RoadsUpgraded,
		report.ZonesBuilt, report.ParksBuilt, report.FailedBuilds)
	return saveIfRequested(lw)
}
