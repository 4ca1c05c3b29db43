package simulation

import (
	"testing"

	"github.com/dshills/procicity/pkg/rules"
	"github.com/dshills/procicity/pkg/world"
	"github.com/stretchr/testify/require"
)

func buildSmallCity(t *testing.T) *world.World {
	t.Helper()
	w := world.New(6, 6, 42)
	for x := 0; x < 6; x++ {
		require.NoError(t, w.SetRoad(x, 0, true))
	}
	require.NoError(t, w.SetOverlay(1, 1, world.OverlayResidential, 1))
	require.NoError(t, w.SetOverlay(3, 1, world.OverlayCommercial, 1))
	require.NoError(t, w.SetOverlay(5, 1, world.OverlayIndustrial, 1))
	return w
}

func TestStepOnce_NeverFailsAndAssemblesStats(t *testing.T) {
	w := buildSmallCity(t)
	sim := New(w, rules.Default(), DefaultConfig())

	stats := sim.StepOnce()
	require.Equal(t, 1, stats.Day)
	require.GreaterOrEqual(t, stats.Happiness, 0.0)
	require.LessOrEqual(t, stats.Happiness, 1.0)
	require.Equal(t, stats, w.Stats)
}

func TestUpdate_ProcessesFloorTicks(t *testing.T) {
	w := buildSmallCity(t)
	sim := New(w, rules.Default(), DefaultConfig())

	ticks, _ := sim.Update(1.3) // tickSeconds=0.5 => floor(1.3/0.5) == 2
	require.Equal(t, 2, ticks)
	require.InDelta(t, 0.3, sim.AccumulatedSeconds(), 1e-9)
}

func TestUpdateLimited_CapsTicksPerCall(t *testing.T) {
	w := buildSmallCity(t)
	sim := New(w, rules.Default(), DefaultConfig())

	ticks, _ := sim.UpdateLimited(10, 3, 100)
	require.Equal(t, 3, ticks)
}

func TestUpdateLimited_ClampsBacklog(t *testing.T) {
	w := buildSmallCity(t)
	sim := New(w, rules.Default(), DefaultConfig())

	_, _ = sim.UpdateLimited(1000, 0, 2) // backlog capped to 2 ticks worth of seconds
	require.LessOrEqual(t, sim.AccumulatedSeconds(), 1.0+1e-9)
}

func TestResetTimer_ZeroesAccumulatorWithoutTicking(t *testing.T) {
	w := buildSmallCity(t)
	sim := New(w, rules.Default(), DefaultConfig())
	sim.ResetTimer()
	require.Equal(t, 0.0, sim.AccumulatedSeconds())
	require.Equal(t, 0, sim.Day())
}

func TestStepOnce_DeterministicAcrossIdenticalWorlds(t *testing.T) {
	w1 := buildSmallCity(t)
	w2 := buildSmallCity(t)
	s1 := New(w1, rules.Default(), DefaultConfig())
	s2 := New(w2, rules.Default(), DefaultConfig())

	stats1 := s1.StepOnce()
	stats2 := s2.StepOnce()
	require.Equal(t, stats1, stats2)
	require.Equal(t, world.Hash(w1, true), world.Hash(w2, true))
}
