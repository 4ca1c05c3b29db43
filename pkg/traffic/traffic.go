// Package traffic assigns commute and goods flow onto the road grid (L7,
// §4.8): an all-or-nothing baseline assignment, or an optional
// congestion-aware incremental assignment using the BPR link-performance
// curve. Every output is a pure function of (world, config, rule table).
package traffic

import (
	"math"

	"github.com/dshills/procicity/pkg/pathfind"
	"github.com/dshills/procicity/pkg/roadgraph"
	"github.com/dshills/procicity/pkg/rules"
	"github.com/dshills/procicity/pkg/world"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Config mirrors the reference TrafficModelSettings (Sim.hpp): congestion
// routing is opt-in and bounded by a fixed pass count, never iterated to a
// fixed point (§9 "Congestion iterations vs. fixed point").
type Config struct {
	CongestionAwareRouting  bool
	CongestionIterations    int // >=1; 1 == classic all-or-nothing
	CongestionAlpha         float64
	CongestionBeta          float64
	CongestionCapacityScale float64
	CongestionRatioClamp    float64

	CapacityAwareJobs       bool
	JobAssignmentIterations int
	JobPenaltyBaseMilli     int
}

// DefaultConfig mirrors the reference defaults exactly.
func DefaultConfig() Config {
	return Config{
		CongestionAwareRouting:  false,
		CongestionIterations:    4,
		CongestionAlpha:         0.15,
		CongestionBeta:          4.0,
		CongestionCapacityScale: 1.0,
		CongestionRatioClamp:    3.0,

		CapacityAwareJobs:       false,
		JobAssignmentIterations: 6,
		JobPenaltyBaseMilli:     8000,
	}
}

// Result holds per-road-tile flow and the scalar summaries §3.2/§6.5 needs.
type Result struct {
	CommuteTraffic []int // per road tile, flat index
	GoodsTraffic   []int

	AvgCommuteMilli   int
	P95CommuteMilli   int
	TrafficCongestion float64 // [0,1]
	GoodsFlowTotal    int
	GoodsSatisfaction float64 // [0,1]
}

// Assign finds, for each residential access road, the travel-time cost to
// the nearest reachable job access road (commercial/industrial) over the
// travel-time-weighted road grid, and records the commute load of the
// adjacent residents on that residential access road only; the load is not
// spread along the route to the job. Goods flow counts one unit on each
// industrial producer's access road. allowed restricts traversal the same way
// as pkg/pathfind (nil = unrestricted; pass the outside-connection mask
// when requireOutsideConnection is set).
func Assign(w *world.World, table rules.Table, cfg Config, allowed []uint8) Result {
	n := w.Width * w.Height
	res := Result{
		CommuteTraffic: make([]int, n),
		GoodsTraffic:   make([]int, n),
	}

	residentialSources := accessRoadsFor(w, world.OverlayResidential)
	jobDestinations := append(accessRoadsFor(w, world.OverlayCommercial), accessRoadsFor(w, world.OverlayIndustrial)...)

	passes := cfg.CongestionIterations
	if passes < 1 {
		passes = 1
	}
	if !cfg.CongestionAwareRouting {
		passes = 1
	}

	extra := make(pathfind.ExtraCost, n)
	var commuteTimes []float64

	for pass := 1; pass <= passes; pass++ {
		if len(jobDestinations) == 0 || len(residentialSources) == 0 {
			break
		}
		field := pathfind.MultiSourceDijkstra(w, table, jobDestinations, extra, allowed)

		commuteTimes = commuteTimes[:0]
		for _, idx := range residentialSources {
			cost := field.Cost[idx]
			if cost < 0 {
				continue
			}
			load := occupantWeightAt(w, idx)
			// Pass k brings this road's assigned load up to k/passes of the demand.
			res.CommuteTraffic[idx] += load*pass/passes - load*(pass-1)/passes
			commuteTimes = append(commuteTimes, float64(cost))
		}

		if cfg.CongestionAwareRouting && pass < passes {
			recomputeBPR(w, table, cfg, res.CommuteTraffic, extra)
		}
	}

	res.GoodsTraffic, res.GoodsFlowTotal, res.GoodsSatisfaction = assignGoods(w, table, allowed)

	res.AvgCommuteMilli, res.P95CommuteMilli = summarize(commuteTimes)
	res.TrafficCongestion = congestionRatio(w, table, cfg, res.CommuteTraffic)
	return res
}

// accessRoadsFor returns the flat indices of every distinct "source road"
// (§4.4) adjacent to a tile carrying the given overlay.
func accessRoadsFor(w *world.World, overlay world.Overlay) []int {
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

// occupantWeightAt approximates commute demand at a source road by summing
// occupants on adjacent residential tiles.
func occupantWeightAt(w *world.World, roadIdx int) int {
	x, y := roadIdx%w.Width, roadIdx/w.Width
	total := 0
	for _, d := range world.CardinalOffsets {
		nx, ny := x+d[0], y+d[1]
		if !w.InBounds(nx, ny) {
			continue
		}
		t := w.At(nx, ny)
		if t.Overlay == world.OverlayResidential {
			total += int(t.Occupants)
		}
	}
	if total == 0 {
		total = 1
	}
	return total
}

func recomputeBPR(w *world.World, table rules.Table, cfg Config, flow []int, extra pathfind.ExtraCost) {
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			if !roadgraph.IsRoad(w, x, y) {
				continue
			}
			idx := w.Index(x, y)
			base, _ := roadgraph.EdgeCost(w, table, x, y)
			t := w.At(x, y)
			capacity := roadgraph.Capacity(table, t.RoadClass) * cfg.CongestionCapacityScale
			if capacity <= 0 {
				continue
			}
			ratio := float64(flow[idx]) / capacity
			if ratio > cfg.CongestionRatioClamp {
				ratio = cfg.CongestionRatioClamp
			}
			penalty := cfg.CongestionAlpha * math.Pow(ratio, cfg.CongestionBeta)
			extra[idx] = int(float64(base)*penalty + 0.5)
		}
	}
}

func congestionRatio(w *world.World, table rules.Table, cfg Config, flow []int) float64 {
	var loaded, capacitySum float64
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			if !roadgraph.IsRoad(w, x, y) {
				continue
			}
			idx := w.Index(x, y)
			t := w.At(x, y)
			c := roadgraph.Capacity(table, t.RoadClass) * cfg.CongestionCapacityScale
			if c <= 0 {
				continue
			}
			loaded += float64(flow[idx])
			capacitySum += c
		}
	}
	if capacitySum == 0 {
		return 0
	}
	return clamp01(loaded / capacitySum)
}

func assignGoods(w *world.World, table rules.Table, allowed []uint8) ([]int, int, float64) {
	n := w.Width * w.Height
	flow := make([]int, n)
	producers := accessRoadsFor(w, world.OverlayIndustrial)
	consumers := accessRoadsFor(w, world.OverlayCommercial)
	if len(producers) == 0 || len(consumers) == 0 {
		return flow, 0, 0
	}

	field := pathfind.MultiSourceDijkstra(w, table, toPoints(w, consumers), nil, allowed)
	total, satisfied := 0, 0
	for _, idx := range producers {
		flow[idx]++
		total++
		if field.Cost[idx] >= 0 {
			satisfied++
		}
	}
	satisfaction := 0.0
	if total > 0 {
		satisfaction = float64(satisfied) / float64(total)
	}
	return flow, int(floats.Sum(toFloats(flow))), satisfaction
}

func toPoints(w *world.World, indices []int) []pathfind.Point {
	out := make([]pathfind.Point, len(indices))
	for i, idx := range indices {
		out[i] = pathfind.Point{X: idx % w.Width, Y: idx / w.Width}
	}
	return out
}

func toFloats(in []int) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

// summarize returns the mean and 95th-percentile commute travel time in
// milli-steps, using gonum/stat's quantile over a sorted copy.
func summarize(times []float64) (avg, p95 int) {
	if len(times) == 0 {
		return 0, 0
	}
	sorted := append([]float64(nil), times...)
	floats.Sort(sorted)
	mean := stat.Mean(sorted, nil)
	q := stat.Quantile(0.95, stat.Empirical, sorted, nil)
	return int(mean + 0.5), int(q + 0.5)
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
