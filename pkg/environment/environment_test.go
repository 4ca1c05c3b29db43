package environment

import (
	"testing"

	"github.com/dshills/procicity/pkg/world"
	"github.com/stretchr/testify/require"
)

func TestComputeAir_FieldStaysInUnitRange(t *testing.T) {
	w := world.New(10, 10, 1)
	require.NoError(t, w.SetOverlay(5, 5, world.OverlayIndustrial, 3))
	flow := make([]int, w.Width*w.Height)
	flow[w.Index(5, 5)] = 50

	res := ComputeAir(w, DefaultAirConfig(), flow, nil)
	for _, v := range res.Field {
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, 1.0)
	}
}

func TestComputeAir_ParkActsAsSink(t *testing.T) {
	w := world.New(6, 1, 1)
	require.NoError(t, w.SetOverlay(0, 0, world.OverlayIndustrial, 3))
	require.NoError(t, w.SetOverlay(5, 0, world.OverlayPark, 1))

	res := ComputeAir(w, DefaultAirConfig(), nil, nil)
	require.LessOrEqual(t, res.Field[w.Index(5, 0)], res.Field[w.Index(1, 0)]+0.5)
}

func TestComputeNoise_DecaysWithDistance(t *testing.T) {
	w := world.New(10, 1, 1)
	require.NoError(t, w.SetOverlay(0, 0, world.OverlayIndustrial, 3))

	field := ComputeNoise(w, DefaultNoiseConfig())
	require.Greater(t, field[w.Index(1, 0)], field[w.Index(8, 0)])
}

func TestComputeHeat_WaterIsCooler(t *testing.T) {
	w := world.New(4, 1, 1)
	require.NoError(t, w.SetOverlay(0, 0, world.OverlayIndustrial, 3))
	require.NoError(t, w.Set(3, 0, world.Tile{Terrain: world.Water}))

	field := ComputeHeat(w, DefaultHeatConfig())
	require.LessOrEqual(t, field[w.Index(3, 0)], field[w.Index(1, 0)])
}
