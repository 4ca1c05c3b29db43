package builder

import (
	"testing"

	"github.com/dshills/procicity/pkg/rules"
	"github.com/dshills/procicity/pkg/simulation"
	"github.com/dshills/procicity/pkg/world"
	"github.com/stretchr/testify/require"
)

func newSim(w *world.World) *simulation.Simulator {
	return simulation.New(w, rules.Default(), simulation.DefaultConfig())
}

func TestRun_BuildsRoadWhenNoneExist(t *testing.T) {
	w := world.New(10, 10, 1)
	w.Stats.Money = 1000
	sim := newSim(w)
	cfg := DefaultConfig()
	cfg.ZonesPerDay = 0
	cfg.ParksPerDay = 0
	cfg.RoadsPerDay = 0

	report, stats := Run(w, sim, cfg, 1)
	require.Equal(t, 1, report.DaysSimulated)
	require.Len(t, stats, 1)
	require.Greater(t, report.RoadsBuilt, 0)
}

func TestRun_RespectsMinMoneyReserve(t *testing.T) {
	w := world.New(6, 6, 2)
	w.Stats.Money = 0
	sim := newSim(w)
	cfg := DefaultConfig()
	cfg.MinMoneyReserve = 0
	cfg.ZonesPerDay = 0
	cfg.ParksPerDay = 0

	report, _ := Run(w, sim, cfg, 1)
	require.Greater(t, report.FailedBuilds, 0)
}

func TestRun_PlacesZonesNearRoad(t *testing.T) {
	w := world.New(8, 8, 3)
	for x := 0; x < 8; x++ {
		require.NoError(t, w.SetRoad(x, 4, true))
	}
	w.Stats.Money = 1000
	sim := newSim(w)
	cfg := DefaultConfig()
	cfg.RoadsPerDay = 0
	cfg.ParksPerDay = 0
	cfg.EnsureOutsideConnection = false

	report, _ := Run(w, sim, cfg, 1)
	require.Greater(t, report.ZonesBuilt, 0)
}

func TestRun_DeterministicAcrossIdenticalWorlds(t *testing.T) {
	build := func() *world.World {
		w := world.New(10, 10, 42)
		w.Stats.Money = 2000
		sim := newSim(w)
		cfg := DefaultConfig()
		Run(w, sim, cfg, 5)
		return w
	}
	w1 := build()
	w2 := build()
	require.Equal(t, world.Hash(w1, true), world.Hash(w2, true))
}
