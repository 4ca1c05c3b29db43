// Package services computes civic-facility accessibility (L8, §4.9): an
// E2SFCA two-step floating catchment score per service category, and the
// separate 5-category walkability score with smoothstep ideal/max falloff.
package services

import (
	"math"

	"github.com/dshills/procicity/pkg/isochrone"
	"github.com/dshills/procicity/pkg/rules"
	"github.com/dshills/procicity/pkg/world"
	"gonum.org/v1/gonum/floats"
)

// DecayBand is one segment of the 3-band piecewise distance decay used by
// the E2SFCA catchment weighting.
type DecayBand struct {
	CutFraction float64 // upper bound of this band, as a fraction of CatchmentRadiusSteps
	Weight      float64
}

// Config holds the E2SFCA tuning knobs (catchment radius, decay bands,
// target access for the satisfaction curve).
type Config struct {
	CatchmentRadiusSteps int
	DecayBands           []DecayBand
	TargetAccess         float64 // access value where satisfaction == 0.5
}

// DefaultConfig gives a conventional 3-band decay (near/mid/far) over a
// dozen-step catchment, matching the reference E2SFCA parameterization.
func DefaultConfig() Config {
	return Config{
		CatchmentRadiusSteps: 12,
		DecayBands: []DecayBand{
			{CutFraction: 0.34, Weight: 1.0},
			{CutFraction: 0.67, Weight: 0.5},
			{CutFraction: 1.0, Weight: 0.2},
		},
		TargetAccess: 1.0,
	}
}

// decayWeight returns the band weight for a step distance, or 0 beyond the
// catchment radius entirely.
func (c Config) decayWeight(steps, radius int) float64 {
	if radius <= 0 || steps > radius {
		return 0
	}
	frac := float64(steps) / float64(radius)
	for _, b := range c.DecayBands {
		if frac <= b.CutFraction {
			return b.Weight
		}
	}
	return 0
}

// CategoryAccess is the per-tile E2SFCA accessibility and derived
// satisfaction for one service category (school/hospital/police/fire).
type CategoryAccess struct {
	Access       []float64 // unbounded, demand-normalized supply ratio
	Satisfaction []float64 // [0,1], sat = 1 - exp(-access*k)
}

// Compute runs the two-step floating catchment for a single overlay
// category: step 1 sums demand-weighted supply ratio per facility, step 2
// redistributes each facility's ratio back across its catchment.
func Compute(w *world.World, table rules.Table, overlay world.Overlay, cfg Config) CategoryAccess {
	n := w.Width * w.Height
	out := CategoryAccess{Access: make([]float64, n), Satisfaction: make([]float64, n)}

	facilities := facilityTiles(w, overlay)
	if len(facilities) == 0 {
		return out
	}

	for _, f := range facilities {
		srcRoad := w.SourceRoad(f.x, f.y)
		if srcRoad < 0 {
			continue
		}
		field := isochrone.BuildRoadIsochroneField(w, table, []int{srcRoad},
			isochrone.RoadIsochroneConfig{WeightMode: isochrone.WeightSteps}, nil, nil)
		tileSteps := stepsField(w, field)

		supply := float64(world.Capacity(f.level, overlay))
		weightedDemand := 0.0
		reachable := make([]int, 0, 64)
		weights := make([]float64, 0, 64)
		for y := 0; y < w.Height; y++ {
			for x := 0; x < w.Width; x++ {
				t := w.At(x, y)
				if !t.Overlay.IsZone() {
					continue
				}
				idx := w.Index(x, y)
				steps := tileSteps[idx]
				if steps < 0 {
					continue
				}
				weight := cfg.decayWeight(steps, cfg.CatchmentRadiusSteps)
				if weight <= 0 {
					continue
				}
				demand := float64(t.Occupants)
				weightedDemand += demand * weight
				reachable = append(reachable, idx)
				weights = append(weights, weight)
			}
		}
		if weightedDemand <= 0 {
			continue
		}
		ratio := supply / weightedDemand
		for i, idx := range reachable {
			out.Access[idx] += ratio * weights[i]
		}
	}

	k := math.Ln2 / math.Max(cfg.TargetAccess, 1e-9)
	for i, a := range out.Access {
		out.Satisfaction[i] = 1 - math.Exp(-a*k)
	}
	return out
}

type facility struct {
	x, y  int
	level uint8
}

func facilityTiles(w *world.World, overlay world.Overlay) []facility {
	var out []facility
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			t := w.At(x, y)
			if t.Overlay == overlay {
				out = append(out, facility{x: x, y: y, level: t.Level})
			}
		}
	}
	return out
}

// WalkCategory is one of the five walkability categories (§4.9).
type WalkCategory int

const (
	WalkPark WalkCategory = iota
	WalkRetail
	WalkEducation
	WalkHealth
	WalkSafety
)

// WalkBudget gives the ideal/max step budget and aggregate weight for one
// walkability category; score falls off via smoothstep between ideal and
// max, reaching 0 at or beyond max.
type WalkBudget struct {
	IdealSteps int
	MaxSteps   int
	Weight     float64
	Enabled    bool
}

// WalkConfig configures all five categories; categories with Enabled=false
// are excluded from both the weighted sum and its normalization.
type WalkConfig struct {
	Budgets [5]WalkBudget
}

// DefaultWalkConfig mirrors a conventional five-minute-to-twenty-minute
// walk budget per category, all enabled.
func DefaultWalkConfig() WalkConfig {
	return WalkConfig{Budgets: [5]WalkBudget{
		WalkPark:      {IdealSteps: 4, MaxSteps: 12, Weight: 0.25, Enabled: true},
		WalkRetail:    {IdealSteps: 5, MaxSteps: 14, Weight: 0.25, Enabled: true},
		WalkEducation: {IdealSteps: 8, MaxSteps: 20, Weight: 0.2, Enabled: true},
		WalkHealth:    {IdealSteps: 8, MaxSteps: 22, Weight: 0.15, Enabled: true},
		WalkSafety:    {IdealSteps: 6, MaxSteps: 16, Weight: 0.15, Enabled: true},
	}}
}

func categoryOverlay(c WalkCategory) (world.Overlay, bool) {
	switch c {
	case WalkPark:
		return world.OverlayPark, true
	case WalkRetail:
		return world.OverlayCommercial, true
	case WalkEducation:
		return world.OverlaySchool, true
	case WalkHealth:
		return world.OverlayHospital, true
	case WalkSafety:
		return world.OverlayPoliceStation, true
	default:
		return world.OverlayNone, false
	}
}

// Walkability computes the per-tile, per-category smoothstep score and the
// overall weighted score. A tile's step count for a category is its own road
// step count from the nearest facility's access road or, off the road grid,
// the smallest among its cardinal road neighbors; water tiles are scored the
// same way as land.
func Walkability(w *world.World, table rules.Table, cfg WalkConfig, outsideMask []uint8, requireOutsideConnection bool) (perCategory [5][]float64, overall []float64) {
	n := w.Width * w.Height
	overall = make([]float64, n)
	var totalWeight float64

	for c := WalkPark; c <= WalkSafety; c++ {
		b := cfg.Budgets[c]
		perCategory[c] = make([]float64, n)
		if !b.Enabled {
			continue
		}
		overlay, ok := categoryOverlay(c)
		if !ok {
			continue
		}
		sources := facilitySourceRoads(w, overlay)
		var roadField isochrone.RoadIsochroneField
		if len(sources) > 0 {
			roadField = isochrone.BuildRoadIsochroneField(w, table, sources,
				isochrone.RoadIsochroneConfig{
					WeightMode:               isochrone.WeightSteps,
					RequireOutsideConnection: requireOutsideConnection,
				}, outsideMask, nil)
		} else {
			roadField = isochrone.RoadIsochroneField{Width: w.Width, Height: w.Height, Steps: make([]int, n), CostMilli: fill(n, -1)}
			for i := range roadField.Steps {
				roadField.Steps[i] = -1
			}
		}
		accessCfg := isochrone.DefaultTileAccessCostConfig()
		accessCfg.AccessStepCostMilli = 0
		steps := stepsField(w, roadField)
		for i, s := range steps {
			perCategory[c][i] = smoothstepFalloff(s, b.IdealSteps, b.MaxSteps)
		}
		totalWeight += b.Weight
	}

	if totalWeight <= 0 {
		return perCategory, overall
	}
	for i := 0; i < n; i++ {
		var sum float64
		for c := WalkPark; c <= WalkSafety; c++ {
			if cfg.Budgets[c].Enabled {
				sum += perCategory[c][i] * cfg.Budgets[c].Weight
			}
		}
		overall[i] = sum / totalWeight
	}
	return perCategory, overall
}

func facilitySourceRoads(w *world.World, overlay world.Overlay) []int {
	var out []int
	seen := make(map[int]bool)
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			if w.At(x, y).Overlay != overlay {
				continue
			}
			idx := w.SourceRoad(x, y)
			if idx < 0 || seen[idx] {
				continue
			}
			seen[idx] = true
			out = append(out, idx)
		}
	}
	return out
}

// stepsField maps a road-level step field onto every tile: a tile's score
// uses the minimum step count of any adjacent road tile's field value, or
// its own if it is itself a road.
func stepsField(w *world.World, roadField isochrone.RoadIsochroneField) []int {
	n := w.Width * w.Height
	out := make([]int, n)
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			idx := w.Index(x, y)
			t := w.At(x, y)
			if t.Overlay == world.OverlayRoad {
				out[idx] = roadField.Steps[idx]
				continue
			}
			best := -1
			for _, d := range world.CardinalOffsets {
				nx, ny := x+d[0], y+d[1]
				if !w.InBounds(nx, ny) {
					continue
				}
				ni := w.Index(nx, ny)
				if w.At(nx, ny).Overlay != world.OverlayRoad {
					continue
				}
				s := roadField.Steps[ni]
				if s < 0 {
					continue
				}
				if best < 0 || s < best {
					best = s
				}
			}
			out[idx] = best
		}
	}
	return out
}

// smoothstepFalloff returns 1 within idealSteps, smoothstep-eases to 0
// between idealSteps and maxSteps, and 0 beyond maxSteps or if unreachable.
func smoothstepFalloff(steps, ideal, max int) float64 {
	if steps < 0 {
		return 0
	}
	if steps <= ideal {
		return 1
	}
	if steps >= max || max <= ideal {
		return 0
	}
	t := float64(steps-ideal) / float64(max-ideal)
	t = clamp01(t)
	eased := t * t * (3 - 2*t)
	return 1 - eased
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

func fill(n int, v int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// MeanAccess is a small convenience used by pkg/simulation and pkg/optimize
// to reduce a CategoryAccess's satisfaction to one scalar without
// re-deriving the gonum call at every caller.
func MeanAccess(c CategoryAccess) float64 {
	if len(c.Satisfaction) == 0 {
		return 0
	}
	return floats.Sum(c.Satisfaction) / float64(len(c.Satisfaction))
}
