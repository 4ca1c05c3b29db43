package livability

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompute_CleanQuietCoolTileScoresHigh(t *testing.T) {
	in := Inputs{
		Services:    []float64{1},
		Walkability: []float64{1},
		Air:         []float64{0},
		Noise:       []float64{0},
		Heat:        []float64{0},
	}
	out := Compute(1, in, DefaultWeights())
	require.InDelta(t, 1.0, out[0], 1e-9)
}

func TestCompute_HazardousTileScoresLow(t *testing.T) {
	in := Inputs{
		Services:    []float64{0},
		Walkability: []float64{0},
		Air:         []float64{1},
		Noise:       []float64{1},
		Heat:        []float64{1},
	}
	out := Compute(1, in, DefaultWeights())
	require.InDelta(t, 0.0, out[0], 1e-9)
}

func TestPriority_MonotoneInNeedAndOccupancy(t *testing.T) {
	liv := []float64{0.9, 0.1}
	pop := []float64{0.5, 0.5}
	out := Priority(liv, pop, DefaultPriorityConfig())
	require.Greater(t, out[1], out[0])
}

func TestPriority_ZeroOccupancyYieldsZeroPriority(t *testing.T) {
	liv := []float64{0.0}
	pop := []float64{0.0}
	out := Priority(liv, pop, DefaultPriorityConfig())
	require.Zero(t, out[0])
}
