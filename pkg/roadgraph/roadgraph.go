// Package roadgraph exposes the road network as a set of pure functions over
// a *world.World rather than a materialized graph — there is no adjacency
// list or node/edge allocation anywhere in this engine. pkg/pathfind calls
// straight into Neighbors and EdgeCost while walking the grid directly, per
// the road model's explicit "no cyclic object graph" design rule.
package roadgraph

import (
	"github.com/dshills/procicity/pkg/rules"
	"github.com/dshills/procicity/pkg/world"
)

// Neighbor describes one road-connected neighbor of a road tile, in the
// fixed N,E,S,W enumeration order every BFS/Dijkstra/A* walk in this engine
// must use for its tie-break rule.
type Neighbor struct {
	X, Y int
	Dir  world.Dir
}

// IsRoad reports whether (x,y) is an in-bounds road tile.
func IsRoad(w *world.World, x, y int) bool {
	return w.InBounds(x, y) && w.At(x, y).Overlay == world.OverlayRoad
}

// Neighbors returns the road-connected neighbors of the road tile at (x,y),
// in fixed N,E,S,W order, read directly off the tile's maintained adjacency
// mask rather than re-probing all four grid cells.
func Neighbors(w *world.World, x, y int) []Neighbor {
	t := w.At(x, y)
	if t.Overlay != world.OverlayRoad {
		return nil
	}
	mask := t.RoadMask()
	out := make([]Neighbor, 0, 4)
	for i, d := range world.CardinalOffsets {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		out = append(out, Neighbor{X: x + d[0], Y: y + d[1], Dir: world.Dir(i)})
	}
	return out
}

// EdgeCost returns the milli-step travel-time cost of entering the road
// tile at (x,y): the tile's own class travel time, with the bridge premium
// applied when the tile spans water. Cost depends only on the destination
// tile, matching the reference model where travel time is a property of
// the road segment entered, not of the traversal direction.
func EdgeCost(w *world.World, table rules.Table, x, y int) (cost int, ok bool) {
	t := w.At(x, y)
	if !w.InBounds(x, y) || t.Overlay != world.OverlayRoad {
		return 0, false
	}
	return table.TravelTime(t.RoadClass, t.IsBridge()), true
}

// CongestedEdgeCost applies an additional per-tile multiplier (>=1) on top
// of EdgeCost, used by pkg/traffic to fold BPR congestion into the same
// grid walk pathfind already performs.
func CongestedEdgeCost(w *world.World, table rules.Table, x, y int, congestionMultiplier float64) (cost int, ok bool) {
	base, ok := EdgeCost(w, table, x, y)
	if !ok {
		return 0, false
	}
	if congestionMultiplier < 1 {
		congestionMultiplier = 1
	}
	return int(float64(base)*congestionMultiplier + 0.5), true
}

// Capacity returns the reference throughput of a road tile's class, used as
// the denominator in the BPR v/c ratio.
func Capacity(table rules.Table, class rules.RoadClass) float64 {
	return table.RoadCapacity[class]
}

// OutsideConnectionMask computes, once per tick, which road tiles are
// reachable by road from any map-edge road tile (§4.4). The result is
// sized w.Width*w.Height; a nonzero entry means "outside connected". Built
// with a plain BFS (no weighting — only reachability matters), 4-neighbor
// order, so that the result needs no tie-break: it's a boolean flood, not
// a shortest-path search.
func OutsideConnectionMask(w *world.World) []uint8 {
	mask := make([]uint8, w.Width*w.Height)
	if w.Width <= 0 || w.Height <= 0 {
		return mask
	}

	var queue []int
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			if !onEdge(w, x, y) || !IsRoad(w, x, y) {
				continue
			}
			idx := w.Index(x, y)
			if mask[idx] == 0 {
				mask[idx] = 1
				queue = append(queue, idx)
			}
		}
	}

	for head := 0; head < len(queue); head++ {
		idx := queue[head]
		cx, cy := idx%w.Width, idx/w.Width
		for _, nb := range Neighbors(w, cx, cy) {
			ni := w.Index(nb.X, nb.Y)
			if mask[ni] != 0 {
				continue
			}
			mask[ni] = 1
			queue = append(queue, ni)
		}
	}
	return mask
}

func onEdge(w *world.World, x, y int) bool {
	return x == 0 || y == 0 || x == w.Width-1 || y == w.Height-1
}

// ClassifyBridges scans the grid and reports every road tile sitting on
// water so callers (worldgen, the autonomous builder) can verify the
// "bridges only where a road crosses water" invariant after a bulk edit.
func ClassifyBridges(w *world.World) []Neighbor {
	var bridges []Neighbor
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			t := w.At(x, y)
			if t.Overlay == world.OverlayRoad && t.Terrain == world.Water {
				bridges = append(bridges, Neighbor{X: x, Y: y})
			}
		}
	}
	return bridges
}
