// Package optimize implements the greedy, deterministic park and service
// placement optimizers (L16, §4.17). Both iteratively pick the single best
// candidate, apply its effect, and repeat — never backtracking and never
// consulting wall time, so results are reproducible given the same world
// and rule table.
package optimize

import (
	"github.com/dshills/procicity/pkg/isochrone"
	"github.com/dshills/procicity/pkg/rules"
	"github.com/dshills/procicity/pkg/services"
	"github.com/dshills/procicity/pkg/world"
	"github.com/dshills/procicity/pkg/zoneaccess"
)

// ParkConfig configures the greedy park placement optimizer.
type ParkConfig struct {
	MaxParks           int
	TargetServiceLevel int // 0 disables the max(0, cost-target) scoring variant
}

// Point is a tile coordinate.
type Point struct{ X, Y int }

// PlaceParksTiles runs the greedy park optimizer: aggregate weighted zone
// demand onto each zone's access road via ZoneAccessMap, seed candidate
// sources from existing parks' access roads, then iteratively pick the
// road tile maximizing demand × distance-to-nearest-park (or
// max(0, cost-target) when TargetServiceLevel > 0), adding it as a new
// source each round. Candidates are buildable land tiles adjacent to a
// road. Returns the chosen (x,y) coordinates in pick order; callers apply
// the actual SetOverlay edits (this package never mutates the world).
func PlaceParksTiles(w *world.World, table rules.Table, cfg ParkConfig) []Point {
	demand := zoneDemandByAccessRoad(w)
	sources := existingParkAccessRoads(w)

	var picks []Point
	for i := 0; i < cfg.MaxParks; i++ {
		field := distanceField(w, table, sources)
		bestIdx, bestScore := -1, -1.0
		for y := 0; y < w.Height; y++ {
			for x := 0; x < w.Width; x++ {
				if !candidateForPark(w, x, y) {
					continue
				}
				idx := w.Index(x, y)
				road := w.SourceRoad(x, y)
				if road < 0 {
					continue
				}
				dist := field[road]
				if dist < 0 {
					continue
				}
				score := demand[road] * float64(dist)
				if cfg.TargetServiceLevel > 0 {
					score = maxF(0, float64(dist-cfg.TargetServiceLevel))
				}
				if score > bestScore || (score == bestScore && idx < flatOf(bestIdx, w)) {
					bestScore = score
					bestIdx = idx
				}
			}
		}
		if bestIdx < 0 {
			break
		}
		x, y := bestIdx%w.Width, bestIdx/w.Width
		picks = append(picks, Point{X: x, Y: y})
		if road := w.SourceRoad(x, y); road >= 0 {
			sources = append(sources, road)
		}
	}
	return picks
}

func flatOf(idx int, w *world.World) int {
	if idx < 0 {
		return w.Width * w.Height
	}
	return idx
}

func candidateForPark(w *world.World, x, y int) bool {
	t := w.At(x, y)
	if !t.IsEmptyLand() {
		return false
	}
	return w.SourceRoad(x, y) >= 0
}

// zoneDemandByAccessRoad sums occupants of every zone tile onto its access
// road's flat index, via the ZoneAccessMap.
func zoneDemandByAccessRoad(w *world.World) map[int]float64 {
	access := zoneaccess.Build(w, nil)
	demand := make(map[int]float64)
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			t := w.At(x, y)
			if !t.Overlay.IsZone() {
				continue
			}
			idx := w.Index(x, y)
			road := access.RoadIndex[idx]
			if road < 0 {
				continue
			}
			demand[road] += float64(t.Occupants) + 1
		}
	}
	return demand
}

func existingParkAccessRoads(w *world.World) []int {
	var out []int
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			if w.At(x, y).Overlay != world.OverlayPark {
				continue
			}
			if r := w.SourceRoad(x, y); r >= 0 {
				out = append(out, r)
			}
		}
	}
	return out
}

// distanceField returns, per road tile flat index, the step distance to
// the nearest source road (a park's access road), or -1 if unreachable;
// with no sources every road tile maps to 1. Non-road-adjacent demand never enters this map since
// zoneDemandByAccessRoad keys strictly by road index.
func distanceField(w *world.World, table rules.Table, sources []int) map[int]int {
	out := make(map[int]int)
	if len(sources) == 0 {
		// No park exists yet: every candidate is equally "infinitely far",
		// so the first pick is driven entirely by demand.
		for y := 0; y < w.Height; y++ {
			for x := 0; x < w.Width; x++ {
				if w.At(x, y).Overlay == world.OverlayRoad {
					out[w.Index(x, y)] = 1
				}
			}
		}
		return out
	}
	field := isochrone.BuildRoadIsochroneField(w, table, sources, isochrone.RoadIsochroneConfig{WeightMode: isochrone.WeightSteps}, nil, nil)
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			if w.At(x, y).Overlay == world.OverlayRoad {
				idx := w.Index(x, y)
				if field.Steps[idx] >= 0 {
					out[idx] = field.Steps[idx]
				} else {
					out[idx] = -1
				}
			}
		}
	}
	return out
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// ServiceConfig configures the greedy service facility optimizer.
type ServiceConfig struct {
	Overlay  world.Overlay
	MaxPicks int
	Access   services.Config
}

// PlaceServicesTiles runs the greedy service optimizer: enumerate candidate
// placements (buildable tiles adjacent to a road), compute each candidate's
// marginal gain in demand-weighted satisfaction via a local E2SFCA
// recomputation (by temporarily overlaying the candidate and recomputing
// services.Compute), pick the best, apply, repeat.
func PlaceServicesTiles(w *world.World, table rules.Table, cfg ServiceConfig) []Point {
	baseline := services.Compute(w, table, cfg.Overlay, cfg.Access)
	baselineScore := services.MeanAccess(baseline)

	working := w.Clone()
	var picks []Point
	for i := 0; i < cfg.MaxPicks; i++ {
		bestIdx, bestGain := -1, -1.0
		for y := 0; y < working.Height; y++ {
			for x := 0; x < working.Width; x++ {
				if !candidateForService(working, x, y) {
					continue
				}
				trial := working.Clone()
				_ = trial.SetOverlay(x, y, cfg.Overlay, 1)
				result := services.Compute(trial, table, cfg.Overlay, cfg.Access)
				gain := services.MeanAccess(result) - baselineScore
				idx := working.Index(x, y)
				if gain > bestGain {
					bestGain = gain
					bestIdx = idx
				}
			}
		}
		if bestIdx < 0 || bestGain <= 0 {
			break
		}
		x, y := bestIdx%working.Width, bestIdx/working.Width
		_ = working.SetOverlay(x, y, cfg.Overlay, 1)
		baseline = services.Compute(working, table, cfg.Overlay, cfg.Access)
		baselineScore = services.MeanAccess(baseline)
		picks = append(picks, Point{X: x, Y: y})
	}
	return picks
}

func candidateForService(w *world.World, x, y int) bool {
	t := w.At(x, y)
	if !t.IsEmptyLand() {
		return false
	}
	return w.SourceRoad(x, y) >= 0
}
