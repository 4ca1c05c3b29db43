package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/procicity/pkg/rules"
	"github.com/dshills/procicity/pkg/simulation"
)

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Advance a world by --days simulated days",
	Long: `Tick loads --load (or generates from --seed/--size if --load is unset),
advances the simulator --days whole days, prints the resulting Stats, and
writes the world to --out.

Examples:
  citysim tick --load city.save --days 7 --out city.save`,
	RunE: runTick,
}

func init() {
	rootCmd.AddCommand(tickCmd)
}

func runTick(cmd *cobra.Command, args []string) error {
	lw, err := loadOrGenerate()
	if err != nil {
		return err
	}
	sim := simulation.New(lw.World, rules.Default(), lw.SimConfig)
	var last = lw.World.Stats
	for i := 0; i < daysFlag; i++ {
		last = sim.StepOnce()
	}
	fmt.Printf("day=%d population=%d money=%d happiness=%.3f livability=%.3f\n",
		last.Day, last.Population, last.Money, last.Happiness, last.LivabilityScore)
	return saveIfRequested(lw)
}
