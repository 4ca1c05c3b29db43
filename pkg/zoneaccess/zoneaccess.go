// Package zoneaccess builds the mapping from interior zone tiles to the
// access road that serves them (§4.6, §3.1 ZoneAccessMap). It is a pure
// function of (world, outside-connection mask): calling it twice on
// unchanged inputs yields an identical result (§8.7).
package zoneaccess

import "github.com/dshills/procicity/pkg/world"

// Map is the per-tile mapping from zone tile index to its access road
// index; -1 means unreachable (no road-adjacent tile in its component).
type Map struct {
	Width, Height int
	RoadIndex     []int
}

type boundarySource struct {
	zoneIdx, roadIdx int
}

// Build computes the ZoneAccessMap for w. outsideMask, if non-nil, must be
// sized w.Width*w.Height and restricts eligible boundary roads to those
// with a nonzero entry (the outside-connection mask, §4.4); pass nil to
// consider every road tile eligible.
func Build(w *world.World, outsideMask []uint8) Map {
	out := Map{Width: w.Width, Height: w.Height}
	n := w.Width * w.Height
	out.RoadIndex = make([]int, n)
	for i := range out.RoadIndex {
		out.RoadIndex[i] = -1
	}
	if w.Width <= 0 || w.Height <= 0 {
		return out
	}

	maskUsable := outsideMask != nil && len(outsideMask) == n
	visited := make([]bool, n)

	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			start := w.Index(x, y)
			if visited[start] {
				continue
			}
			t0 := w.At(x, y)
			if !t0.Overlay.IsZone() || t0.Terrain == world.Water {
				continue
			}
			overlay := t0.Overlay

			comp := floodComponent(w, visited, x, y, overlay)

			sources := boundarySources(w, comp, overlay, out.RoadIndex, maskUsable, outsideMask)
			if len(sources) == 0 {
				continue
			}
			sortSources(sources)
			propagateInward(w, out.RoadIndex, sources, overlay)
		}
	}
	return out
}

// floodComponent gathers the connected (4-neighborhood) same-overlay,
// non-water component containing (x,y), marking visited as it goes, and
// returns the member indices in BFS discovery order.
func floodComponent(w *world.World, visited []bool, x, y int, overlay world.Overlay) []int {
	start := w.Index(x, y)
	visited[start] = true
	queue := []int{start}
	comp := make([]int, 0, 16)

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		comp = append(comp, cur)
		cx, cy := cur%w.Width, cur/w.Width

		for _, d := range world.CardinalOffsets {
			nx, ny := cx+d[0], cy+d[1]
			if !w.InBounds(nx, ny) {
				continue
			}
			ni := w.Index(nx, ny)
			if visited[ni] {
				continue
			}
			nt := w.At(nx, ny)
			if nt.Terrain == world.Water || nt.Overlay != overlay {
				continue
			}
			visited[ni] = true
			queue = append(queue, ni)
		}
	}
	return comp
}

// boundarySources finds, for each component tile, its lowest-index
// adjacent road (N,E,S,W order for ties — lowest flat index wins
// regardless, since index order already reflects that), eligible under
// the outside mask when present, and records it directly into roadIndex.
func boundarySources(w *world.World, comp []int, overlay world.Overlay, roadIndex []int, maskUsable bool, mask []uint8) []boundarySource {
	var sources []boundarySource
	for _, zi := range comp {
		zx, zy := zi%w.Width, zi/w.Width
		bestRoad := -1
		for _, d := range world.CardinalOffsets {
			rx, ry := zx+d[0], zy+d[1]
			if !w.InBounds(rx, ry) {
				continue
			}
			if w.At(rx, ry).Overlay != world.OverlayRoad {
				continue
			}
			ridx := w.Index(rx, ry)
			if maskUsable && mask[ridx] == 0 {
				continue
			}
			if bestRoad < 0 || ridx < bestRoad {
				bestRoad = ridx
			}
		}
		if bestRoad >= 0 {
			roadIndex[zi] = bestRoad
			sources = append(sources, boundarySource{zoneIdx: zi, roadIdx: bestRoad})
		}
	}
	return sources
}

// sortSources orders boundary sources by (zoneIdx, roadIdx), the
// deterministic BFS seed order the original algorithm requires.
func sortSources(sources []boundarySource) {
	for i := 1; i < len(sources); i++ {
		for j := i; j > 0; j-- {
			a, b := sources[j-1], sources[j]
			if a.zoneIdx < b.zoneIdx || (a.zoneIdx == b.zoneIdx && a.roadIdx <= b.roadIdx) {
				break
			}
			sources[j-1], sources[j] = sources[j], sources[j-1]
		}
	}
}

// propagateInward BFS-propagates each source's access road to the rest of
// its component; a tile already assigned (by its own boundary detection
// or an earlier BFS layer) is never revisited.
func propagateInward(w *world.World, roadIndex []int, sources []boundarySource, overlay world.Overlay) {
	queue := make([]int, 0, len(sources))
	for _, s := range sources {
		queue = append(queue, s.zoneIdx)
	}

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		road := roadIndex[cur]
		if road < 0 {
			continue
		}
		cx, cy := cur%w.Width, cur/w.Width
		for _, d := range world.CardinalOffsets {
			nx, ny := cx+d[0], cy+d[1]
			if !w.InBounds(nx, ny) {
				continue
			}
			ni := w.Index(nx, ny)
			if roadIndex[ni] >= 0 {
				continue
			}
			nt := w.At(nx, ny)
			if nt.Terrain == world.Water || nt.Overlay != overlay {
				continue
			}
			roadIndex[ni] = road
			queue = append(queue, ni)
		}
	}
}
