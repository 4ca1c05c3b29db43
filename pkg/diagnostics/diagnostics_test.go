package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dshills/procicity/pkg/noise"
	"github.com/dshills/procicity/pkg/pathfind"
	"github.com/dshills/procicity/pkg/roadgraph"
	"github.com/dshills/procicity/pkg/rules"
	"github.com/dshills/procicity/pkg/services"
	"github.com/dshills/procicity/pkg/simulation"
	"github.com/dshills/procicity/pkg/world"
)

func genWorld(w, h int, seed uint64) *world.World {
	return noise.GenerateWorld(w, h, seed, rules.Default(), noise.DefaultGenerateConfig())
}

func TestCheckDeterminism_PassesForIdenticalRuns(t *testing.T) {
	res := CheckDeterminism(24, 24, 7, rules.Default(), noise.DefaultGenerateConfig(), simulation.DefaultConfig(), 3)
	require.True(t, res.Satisfied)
}

func TestCheckTransformRoundTrip_PassesOnGeneratedWorld(t *testing.T) {
	w := genWorld(20, 16, 3)
	res := CheckTransformRoundTrip(w)
	require.True(t, res.Satisfied, res.Details)
}

func TestCheckMirrorInvolution_PassesForBothAxes(t *testing.T) {
	w := genWorld(18, 14, 5)
	require.True(t, CheckMirrorInvolution(w, "X").Satisfied)
	require.True(t, CheckMirrorInvolution(w, "Y").Satisfied)
}

func TestCheckMirrorInvolution_RejectsUnknownAxis(t *testing.T) {
	w := genWorld(4, 4, 1)
	res := CheckMirrorInvolution(w, "Z")
	require.False(t, res.Satisfied)
}

func TestCheckRoadMaskConsistency_PassesAfterGeneration(t *testing.T) {
	w := genWorld(24, 24, 11)
	res := CheckRoadMaskConsistency(w)
	require.True(t, res.Satisfied, res.Details)
}

func TestCheckRoadMaskConsistency_FailsOnHandCorruptedMask(t *testing.T) {
	w := world.New(4, 4, 1)
	require.NoError(t, w.SetRoad(1, 1, true))
	require.NoError(t, w.SetRoad(2, 1, true))
	// Corrupt the mask directly, bypassing SetRoad's repair.
	t1 := w.At(1, 1)
	t1.Variation = 0
	require.NoError(t, w.Set(1, 1, t1))

	res := CheckRoadMaskConsistency(w)
	require.False(t, res.Satisfied)
}

func TestCheckOutsideConnectionMonotonicity_PassesOnGeneratedWorld(t *testing.T) {
	w := genWorld(28, 28, 9)
	res := CheckOutsideConnectionMonotonicity(w, rules.Default(), services.DefaultWalkConfig())
	require.True(t, res.Satisfied, res.Details)
}

func TestCheckIsochroneTriangleInequality_PassesOnGeneratedWorld(t *testing.T) {
	w := genWorld(20, 20, 4)
	var sources []pathfind.Point
	for y := 0; y < w.Height && len(sources) < 2; y++ {
		for x := 0; x < w.Width && len(sources) < 2; x++ {
			if w.At(x, y).Overlay.String() == "road" {
				sources = append(sources, pathfind.Point{X: x, Y: y})
			}
		}
	}
	require.NotEmpty(t, sources)

	var extra pathfind.Point
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			if w.At(x, y).Overlay.String() == "road" {
				extra = pathfind.Point{X: x, Y: y}
			}
		}
	}

	res := CheckIsochroneTriangleInequality(w, rules.Default(), sources, extra)
	require.True(t, res.Satisfied, res.Details)
	require.Equal(t, 1.0, res.Score)
}

func TestCheckZoneAccessIdempotence_Passes(t *testing.T) {
	w := genWorld(20, 20, 6)
	mask := roadgraph.OutsideConnectionMask(w)
	res := CheckZoneAccessIdempotence(w, mask)
	require.True(t, res.Satisfied, res.Details)
}

func TestCheckSaturatingStats_PassesOnZeroValue(t *testing.T) {
	res := CheckSaturatingStats(world.Stats{})
	require.True(t, res.Satisfied)
}

func TestCheckSaturatingStats_FailsOutOfRange(t *testing.T) {
	res := CheckSaturatingStats(world.Stats{Happiness: 1.5})
	require.False(t, res.Satisfied)
}

func TestCheckSaturatingStats_FailsWhenAccessibleExceedsTotal(t *testing.T) {
	res := CheckSaturatingStats(world.Stats{JobsCapacityTotal: 10, JobsCapacityAccessible: 20})
	require.False(t, res.Satisfied)
}

func TestCheckSourceOrderIndependence_PassesWhenShuffled(t *testing.T) {
	w := genWorld(20, 20, 2)
	var sources []pathfind.Point
	for y := 0; y < w.Height && len(sources) < 4; y++ {
		for x := 0; x < w.Width && len(sources) < 4; x++ {
			if w.At(x, y).Overlay.String() == "road" {
				sources = append(sources, pathfind.Point{X: x, Y: y})
			}
		}
	}
	require.NotEmpty(t, sources)

	shuffled := make([]pathfind.Point, len(sources))
	for i, p := range sources {
		shuffled[len(sources)-1-i] = p
	}

	res := CheckSourceOrderIndependence(w, rules.Default(), sources, shuffled)
	require.True(t, res.Satisfied, res.Details)
}

func TestCheckSourceOrderIndependence_RejectsMismatchedLength(t *testing.T) {
	w := genWorld(8, 8, 1)
	res := CheckSourceOrderIndependence(w, rules.Default(), []pathfind.Point{{X: 0, Y: 0}}, nil)
	require.False(t, res.Satisfied)
}

func TestRun_AggregatesFailuresAndPasses(t *testing.T) {
	r := Run(pass("a", "ok"), fail("b", "broken"), pass("c", "ok"))
	require.False(t, r.Passed)
	require.Len(t, r.Results, 3)
	require.Len(t, r.Errors, 1)
}

func TestSummary_RendersStatus(t *testing.T) {
	r := Run(pass("a", "ok"))
	out := Summary(r)
	require.Contains(t, out, "PASSED")
	require.Contains(t, out, "a")
}
