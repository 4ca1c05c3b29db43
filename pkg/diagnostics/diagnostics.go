// Package diagnostics implements the testable-property suite from §8:
// quantified invariants the engine must satisfy across its stochastic and
// structural operations (determinism, transform round-trips, road-mask
// consistency, accessibility monotonicity, isochrone triangle inequality,
// idempotence, saturating stats, and source-order independence). Each
// CheckXxx function runs one property and returns a Result; Report
// aggregates a suite of them the way a CI job or a `diagnose` CLI
// subcommand would.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/dshills/procicity/pkg/noise"
	"github.com/dshills/procicity/pkg/pathfind"
	"github.com/dshills/procicity/pkg/roadgraph"
	"github.com/dshills/procicity/pkg/rules"
	"github.com/dshills/procicity/pkg/services"
	"github.com/dshills/procicity/pkg/simulation"
	"github.com/dshills/procicity/pkg/transform"
	"github.com/dshills/procicity/pkg/world"
	"github.com/dshills/procicity/pkg/zoneaccess"
)

// Result is one property's outcome: Satisfied is the pass/fail verdict,
// Score is 1.0/0.0 for hard (boolean) properties or a continuous measure
// for soft ones (§8.6's triangle inequality is explicitly "soft").
type Result struct {
	Name      string
	Satisfied bool
	Score     float64
	Details   string
}

func pass(name, details string) Result { return Result{Name: name, Satisfied: true, Score: 1.0, Details: details} }
func fail(name, details string) Result { return Result{Name: name, Satisfied: false, Score: 0.0, Details: details} }

// Report aggregates a suite of Results into the overall pass/fail verdict
// plus one error line per failed check, as a CLI diagnostic run reports it.
type Report struct {
	Passed  bool
	Results []Result
	Errors  []string
}

// Run folds already computed Results, in the order given, into a Report;
// the overall Passed is false if any Result is unsatisfied.
func Run(results ...Result) Report {
	r := Report{Passed: true}
	for _, res := range results {
		r.Results = append(r.Results, res)
		if !res.Satisfied {
			r.Passed = false
			r.Errors = append(r.Errors, fmt.Sprintf("%s: %s", res.Name, res.Details))
		}
	}
	return r
}

// Summary renders a Report as a human-readable multi-line string, in the
// same "status, then per-check detail" shape as a validation report.
func Summary(r Report) string {
	var b strings.Builder
	if r.Passed {
		b.WriteString("Status: PASSED\n")
	} else {
		b.WriteString("Status: FAILED\n")
	}
	for _, res := range r.Results {
		status := "PASS"
		if !res.Satisfied {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "  [%s] %s (score %.3f): %s\n", status, res.Name, res.Score, res.Details)
	}
	return b.String()
}

// CheckDeterminism verifies §8.1: generating and running the same
// (width, height, seed, genCfg, simCfg) twice for days ticks yields an
// identical world hash (tiles plus Stats).
func CheckDeterminism(width, height int, seed uint64, table rules.Table, genCfg noise.GenerateConfig, simCfg simulation.Config, days int) Result {
	run := func() uint64 {
		w := noise.GenerateWorld(width, height, seed, table, genCfg)
		sim := simulation.New(w, table, simCfg)
		for i := 0; i < days; i++ {
			sim.StepOnce()
		}
		return world.Hash(w, true)
	}
	h1, h2 := run(), run()
	if h1 != h2 {
		return fail("determinism", fmt.Sprintf("hash diverged across identical runs: %x vs %x", h1, h2))
	}
	return pass("determinism", fmt.Sprintf("stable hash %x across two identical runs", h1))
}

// CheckTransformRoundTrip verifies §8.2: four successive 90° rotations
// return a world identical (tile content and masks) to the original.
func CheckTransformRoundTrip(w *world.World) Result {
	cur := w
	for i := 0; i < 4; i++ {
		cur = transform.Apply(cur, transform.Pipeline{Rotate: transform.Rotate90})
	}
	if cur.Width != w.Width || cur.Height != w.Height {
		return fail("transform-round-trip", fmt.Sprintf("dimensions changed: %dx%d -> %dx%d", w.Width, w.Height, cur.Width, cur.Height))
	}
	for i := range w.Tiles {
		if cur.Tiles[i] != w.Tiles[i] {
			return fail("transform-round-trip", fmt.Sprintf("tile %d mismatched after four 90-degree rotations", i))
		}
	}
	return pass("transform-round-trip", "four 90-degree rotations reproduced the original world")
}

// CheckMirrorInvolution verifies §8.3: mirroring an axis twice restores
// the original world.
func CheckMirrorInvolution(w *world.World, axis string) Result {
	mirrorX, mirrorY := axis == "X", axis == "Y"
	if !mirrorX && !mirrorY {
		return fail("mirror-involution", fmt.Sprintf("unknown axis %q, want X or Y", axis))
	}
	once := transform.Apply(w, transform.Pipeline{MirrorX: mirrorX, MirrorY: mirrorY})
	twice := transform.Apply(once, transform.Pipeline{MirrorX: mirrorX, MirrorY: mirrorY})
	for i := range w.Tiles {
		if twice.Tiles[i] != w.Tiles[i] {
			return fail("mirror-involution", fmt.Sprintf("tile %d mismatched after mirroring axis %s twice", i, axis))
		}
	}
	return pass("mirror-involution", fmt.Sprintf("mirroring axis %s twice restored the original world", axis))
}

// CheckRoadMaskConsistency verifies §8.4: every road tile's low-4-bit mask
// equals the set of its cardinal road neighbors, after whatever edits the
// caller has already applied to w.
func CheckRoadMaskConsistency(w *world.World) Result {
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			t := w.At(x, y)
			if t.Overlay != world.OverlayRoad {
				continue
			}
			var want uint8
			for i, d := range world.CardinalOffsets {
				nx, ny := x+d[0], y+d[1]
				if w.InBounds(nx, ny) && w.At(nx, ny).Overlay == world.OverlayRoad {
					want |= 1 << uint(i)
				}
			}
			if t.RoadMask() != want {
				return fail("road-mask-consistency", fmt.Sprintf("tile (%d,%d) mask=%04b, want %04b", x, y, t.RoadMask(), want))
			}
		}
	}
	return pass("road-mask-consistency", "every road tile's mask matches its cardinal road neighbors")
}

// CheckOutsideConnectionMonotonicity verifies §8.5: enabling
// requireOutsideConnection never *increases* any zone's walkability
// accessibility relative to leaving it disabled — cutting tiles off from
// the outside can only shrink the road subgraph services route over.
func CheckOutsideConnectionMonotonicity(w *world.World, table rules.Table, cfg services.WalkConfig) Result {
	outsideMask := roadgraph.OutsideConnectionMask(w)
	_, withoutReq := services.Walkability(w, table, cfg, outsideMask, false)
	_, withReq := services.Walkability(w, table, cfg, outsideMask, true)

	for i := range withReq {
		if withReq[i] > withoutReq[i]+1e-9 {
			return fail("outside-connection-monotonicity",
				fmt.Sprintf("tile %d: requiring outside connection raised accessibility (%.6f -> %.6f)", i, withoutReq[i], withReq[i]))
		}
	}
	return pass("outside-connection-monotonicity", "requiring outside connection never increased accessibility")
}

// CheckIsochroneTriangleInequality verifies §8.6 (explicitly a "soft"
// property): adding a source to a multi-source cost field can only
// decrease or preserve the cost at every tile, never increase it.
func CheckIsochroneTriangleInequality(w *world.World, table rules.Table, sources []pathfind.Point, extra pathfind.Point) Result {
	withoutExtra := pathfind.MultiSourceDijkstra(w, table, sources, nil, nil)
	withExtra := pathfind.MultiSourceDijkstra(w, table, append(append([]pathfind.Point{}, sources...), extra), nil, nil)

	violations := 0
	n := w.Width * w.Height
	for i := 0; i < n; i++ {
		c0, c1 := withoutExtra.Cost[i], withExtra.Cost[i]
		if c0 < 0 {
			continue // was already unreachable; adding a source cannot make it worse
		}
		if c1 < 0 || c1 > c0 {
			violations++
		}
	}
	score := 1.0 - float64(violations)/float64(max(n, 1))
	if violations > 0 {
		return Result{Name: "isochrone-triangle-inequality", Satisfied: false, Score: score,
			Details: fmt.Sprintf("%d of %d tiles got costlier after adding a source", violations, n)}
	}
	return Result{Name: "isochrone-triangle-inequality", Satisfied: true, Score: 1.0,
		Details: "adding a source never increased any tile's cost"}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// CheckZoneAccessIdempotence verifies §8.7: Build is a pure function of
// (world, mask) — calling it twice on unchanged inputs yields equal output.
func CheckZoneAccessIdempotence(w *world.World, outsideMask []uint8) Result {
	m1 := zoneaccess.Build(w, outsideMask)
	m2 := zoneaccess.Build(w, outsideMask)
	for idx := range m1.RoadIndex {
		if m1.RoadIndex[idx] != m2.RoadIndex[idx] {
			return fail("zone-access-idempotence", fmt.Sprintf("tile %d differed across two Build calls on unchanged inputs", idx))
		}
	}
	return pass("zone-access-idempotence", "Build returned identical output across two calls on unchanged inputs")
}

// CheckSaturatingStats verifies §8.8: every [0,1]-documented Stats field
// stays within range after a tick.
func CheckSaturatingStats(s world.Stats) Result {
	fields := map[string]float64{
		"Happiness":              s.Happiness,
		"TrafficCongestion":      s.TrafficCongestion,
		"GoodsSatisfaction":      s.GoodsSatisfaction,
		"ServicesSatisfaction":   s.ServicesSatisfaction,
		"WalkabilityScore":       s.WalkabilityScore,
		"ResidentAirExposure":    s.ResidentAirExposure,
		"ResidentHighAirExpFrac": s.ResidentHighAirExpFrac,
		"ResidentNoiseExposure":  s.ResidentNoiseExposure,
		"ResidentHeatExposure":   s.ResidentHeatExposure,
		"LivabilityScore":        s.LivabilityScore,
	}
	for name, v := range fields {
		if v < 0 || v > 1 {
			return fail("saturating-stats", fmt.Sprintf("%s = %.6f is outside [0,1]", name, v))
		}
	}
	if s.JobsCapacityAccessible > s.JobsCapacityTotal {
		return fail("saturating-stats", fmt.Sprintf("JobsCapacityAccessible (%d) exceeds JobsCapacityTotal (%d)", s.JobsCapacityAccessible, s.JobsCapacityTotal))
	}
	return pass("saturating-stats", "every bounded Stats field stayed within its documented range")
}

// CheckSourceOrderIndependence verifies §8.9: shuffling the order sources
// are added to a multi-source Dijkstra does not change the Cost field
// (only Owner may differ on exact ties).
func CheckSourceOrderIndependence(w *world.World, table rules.Table, sources []pathfind.Point, shuffled []pathfind.Point) Result {
	if len(sources) != len(shuffled) {
		return fail("source-order-independence", "shuffled source list has a different length than the original")
	}
	a := pathfind.MultiSourceDijkstra(w, table, sources, nil, nil)
	b := pathfind.MultiSourceDijkstra(w, table, shuffled, nil, nil)
	for i := range a.Cost {
		if a.Cost[i] != b.Cost[i] {
			return fail("source-order-independence", fmt.Sprintf("tile %d cost depended on source order (%d vs %d)", i, a.Cost[i], b.Cost[i]))
		}
	}
	return pass("source-order-independence", "cost field was identical regardless of source insertion order")
}
