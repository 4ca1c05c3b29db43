// Package livability computes the composite livability score and the
// priority field used to rank candidate interventions (L11, §4.12).
package livability

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Weights holds the five component weights folded into liv01. Hazard
// components (air, noise, heat) enter as their comfort complement
// (1 - hazard), power-curved by HazardComfortExponent, per §4.12.
type Weights struct {
	Services             float64
	Walkability          float64
	CleanAir             float64
	Quiet                float64
	Thermal              float64
	HazardComfortExponent float64
}

// DefaultWeights weights services 0.25, quiet 0.15 and the other three
// components 0.2 each, with a mild hazard comfort curve.
func DefaultWeights() Weights {
	return Weights{
		Services:              0.25,
		Walkability:           0.2,
		CleanAir:              0.2,
		Quiet:                 0.15,
		Thermal:               0.2,
		HazardComfortExponent: 1.3,
	}
}

// Inputs bundles the per-tile fields liv01 is a normalized weighted sum of.
// All slices must be the same length (w.Width*w.Height); a nil slice is
// treated as all-zero.
type Inputs struct {
	Services    []float64
	Walkability []float64
	Air         []float64 // pollution, hazard
	Noise       []float64 // hazard
	Heat        []float64 // hazard
}

// Compute returns liv01, the normalized weighted sum of services,
// walkability, and the power-curved comfort complements of air/noise/heat.
func Compute(n int, in Inputs, w Weights) []float64 {
	out := make([]float64, n)
	totalWeight := w.Services + w.Walkability + w.CleanAir + w.Quiet + w.Thermal
	if totalWeight <= 0 {
		return out
	}
	for i := 0; i < n; i++ {
		services := at(in.Services, i)
		walk := at(in.Walkability, i)
		cleanAir := comfort(at(in.Air, i), w.HazardComfortExponent)
		quiet := comfort(at(in.Noise, i), w.HazardComfortExponent)
		thermal := comfort(at(in.Heat, i), w.HazardComfortExponent)

		sum := services*w.Services + walk*w.Walkability + cleanAir*w.CleanAir + quiet*w.Quiet + thermal*w.Thermal
		out[i] = clamp01(sum / totalWeight)
	}
	return out
}

// comfort turns a [0,1] hazard value into its power-curved comfort
// complement: (1 - hazard)^exponent.
func comfort(hazard, exponent float64) float64 {
	base := clamp01(1 - hazard)
	if exponent <= 0 {
		return base
	}
	return math.Pow(base, exponent)
}

// PriorityConfig holds the two priority-field exponents from §4.12.
type PriorityConfig struct {
	NeedExponent float64
	OccupancyExponent float64
}

// DefaultPriorityConfig gives a balanced need/occupancy tradeoff.
func DefaultPriorityConfig() PriorityConfig {
	return PriorityConfig{NeedExponent: 1.0, OccupancyExponent: 1.0}
}

// Priority computes priority01 = (1-liv01)^needExp * pop01^occExp, the
// tooling-facing field used to rank candidate interventions (§4.12). pop01
// is per-tile occupancy normalized to [0,1] by the caller (e.g. occupants /
// tile capacity).
func Priority(liv01, pop01 []float64, cfg PriorityConfig) []float64 {
	n := len(liv01)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		need := math.Pow(clamp01(1-liv01[i]), cfg.NeedExponent)
		occ := math.Pow(clamp01(at(pop01, i)), cfg.OccupancyExponent)
		out[i] = clamp01(need * occ)
	}
	return out
}

// MeanLivability is a convenience scalar reduction used by pkg/simulation
// for the §6.5 stats, backed by gonum's summation rather than a hand-rolled
// accumulator loop.
func MeanLivability(liv01 []float64) float64 {
	if len(liv01) == 0 {
		return 0
	}
	return floats.Sum(liv01) / float64(len(liv01))
}

func at(s []float64, i int) float64 {
	if s == nil || i >= len(s) {
		return 0
	}
	return s[i]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
