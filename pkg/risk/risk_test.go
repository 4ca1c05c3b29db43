package risk

import (
	"testing"

	"github.com/dshills/procicity/pkg/rules"
	"github.com/dshills/procicity/pkg/world"
	"github.com/stretchr/testify/require"
)

func TestComputeFire_StationCoverageReducesRisk(t *testing.T) {
	w := world.New(10, 1, 1)
	for x := 0; x < 10; x++ {
		require.NoError(t, w.SetRoad(x, 0, true))
	}
	require.NoError(t, w.SetOverlay(0, 0, world.OverlayFireStation, 1))
	w2 := world.New(10, 1, 1)
	for x := 0; x < 10; x++ {
		require.NoError(t, w2.SetRoad(x, 0, true))
	}

	require.NoError(t, w.SetOverlay(5, 0, world.OverlayResidential, 1))
	require.NoError(t, w2.SetOverlay(5, 0, world.OverlayResidential, 1))
	w.Tiles[w.Index(5, 0)] = world.Tile{Terrain: world.Grass, Overlay: world.OverlayResidential, Occupants: 10}
	w2.Tiles[w2.Index(5, 0)] = world.Tile{Terrain: world.Grass, Overlay: world.OverlayResidential, Occupants: 10}

	withStation := ComputeFire(w, rules.Default(), DefaultFireConfig())
	withoutStation := ComputeFire(w2, rules.Default(), DefaultFireConfig())
	require.LessOrEqual(t, withStation[w.Index(5, 0)], withoutStation[w2.Index(5, 0)])
}

func TestComputeCrime_PoliceCoverageSuppresses(t *testing.T) {
	w := world.New(6, 1, 1)
	for x := 0; x < 6; x++ {
		require.NoError(t, w.SetRoad(x, 0, true))
	}
	require.NoError(t, w.SetOverlay(0, 0, world.OverlayPoliceStation, 1))
	require.NoError(t, w.SetOverlay(5, 0, world.OverlayResidential, 1))
	w.Tiles[w.Index(5, 0)] = world.Tile{Terrain: world.Grass, Overlay: world.OverlayResidential, Occupants: 20}

	field := ComputeCrime(w, rules.Default(), DefaultCrimeConfig(), nil, nil, nil, nil)
	require.GreaterOrEqual(t, field[w.Index(5, 0)], 0.0)
	require.LessOrEqual(t, field[w.Index(5, 0)], 1.0)

	w2 := world.New(6, 1, 1)
	for x := 0; x < 6; x++ {
		require.NoError(t, w2.SetRoad(x, 0, true))
	}
	w2.Tiles[w2.Index(5, 0)] = world.Tile{Terrain: world.Grass, Overlay: world.OverlayResidential, Occupants: 20}
	unpoliced := ComputeCrime(w2, rules.Default(), DefaultCrimeConfig(), nil, nil, nil, nil)
	require.Less(t, field[w.Index(5, 0)], unpoliced[w2.Index(5, 0)])
}

func TestComputeTrafficSafety_PenaltyBoundedByMax(t *testing.T) {
	w := world.New(5, 1, 1)
	for x := 0; x < 5; x++ {
		require.NoError(t, w.SetRoad(x, 0, true))
	}
	require.NoError(t, w.SetOverlay(0, 0, world.OverlayResidential, 1))

	flow := make([]int, 5)
	for i := range flow {
		flow[i] = 100000
	}
	cfg := DefaultTrafficSafetyConfig()
	_, penalty := ComputeTrafficSafety(w, rules.Default(), cfg, flow, nil)
	for _, p := range penalty {
		require.LessOrEqual(t, p, cfg.MaxHappinessPenalty)
	}
}
