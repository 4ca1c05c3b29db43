package world

import (
	"fmt"

	"github.com/dshills/procicity/pkg/rules"
)

// World is the owning container for the tile grid and the most recent Stats
// snapshot. It is created only by generation, load, or transform and is
// mutated only by the simulator tick, the autonomous builder, and explicit
// edit commands.
type World struct {
	Width, Height int
	Seed          uint64
	Tiles         []Tile
	Stats         Stats
}

// New allocates an empty world of the given dimensions. Every tile starts as
// Grass terrain with no overlay; callers generating a world then stamp
// height/terrain/overlays on top.
func New(width, height int, seed uint64) *World {
	if width <= 0 || height <= 0 {
		width, height = 0, 0
	}
	tiles := make([]Tile, width*height)
	for i := range tiles {
		tiles[i].Terrain = Grass
	}
	return &World{
		Width:  width,
		Height: height,
		Seed:   seed,
		Tiles:  tiles,
	}
}

// Index returns the row-major flat index for (x,y). Callers must check
// InBounds first; Index does not itself bounds-check.
func (w *World) Index(x, y int) int { return y*w.Width + x }

// InBounds reports whether (x,y) addresses a tile in the grid.
func (w *World) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < w.Width && y < w.Height
}

// At returns the tile at (x,y). Callers must check InBounds first; an
// out-of-bounds read returns the zero Tile.
func (w *World) At(x, y int) Tile {
	if !w.InBounds(x, y) {
		return Tile{}
	}
	return w.Tiles[w.Index(x, y)]
}

// AtIndex returns the tile at a precomputed row-major index.
func (w *World) AtIndex(idx int) Tile {
	if idx < 0 || idx >= len(w.Tiles) {
		return Tile{}
	}
	return w.Tiles[idx]
}

// Set overwrites the tile at (x,y) in place. Returns ErrOutOfBounds if the
// coordinate is invalid.
func (w *World) Set(x, y int, t Tile) error {
	if !w.InBounds(x, y) {
		return ErrOutOfBounds{x, y}
	}
	w.Tiles[w.Index(x, y)] = t
	return nil
}

// SetOverlay sets the overlay and its level (clamped to 1..3) on any
// non-water tile. Passing OverlayRoad delegates to SetRoad. Replacing an
// existing road repairs the road masks of this tile and its four neighbors,
// as SetRoad does.
func (w *World) SetOverlay(x, y int, overlay Overlay, level uint8) error {
	if !w.InBounds(x, y) {
		return ErrOutOfBounds{x, y}
	}
	if overlay == OverlayRoad {
		return w.SetRoad(x, y, true)
	}
	idx := w.Index(x, y)
	t := w.Tiles[idx]
	if t.Terrain == Water {
		return fmt.Errorf("world: overlay %s forbidden on water at (%d,%d)", overlay, x, y)
	}
	wasRoad := t.Overlay == OverlayRoad
	t.Overlay = overlay
	if level < 1 {
		level = 1
	}
	if level > 3 {
		level = 3
	}
	t.Level = level
	w.Tiles[idx] = t
	if wasRoad {
		w.fixRoadMask(x, y)
		for _, d := range CardinalOffsets {
			w.fixRoadMask(x+d[0], y+d[1])
		}
	}
	return nil
}

// SetRoad places or removes a road (bridges are permitted over water) and
// incrementally repairs the road adjacency mask for this tile and its four
// neighbors, per the L1 invariant that a road's mask must always match grid
// topology.
func (w *World) SetRoad(x, y int, present bool) error {
	if !w.InBounds(x, y) {
		return ErrOutOfBounds{x, y}
	}
	idx := w.Index(x, y)
	t := w.Tiles[idx]
	if present {
		t.Overlay = OverlayRoad
	} else {
		if t.Overlay == OverlayRoad {
			t.Overlay = OverlayNone
		}
	}
	w.Tiles[idx] = t

	w.fixRoadMask(x, y)
	for _, d := range CardinalOffsets {
		w.fixRoadMask(x+d[0], y+d[1])
	}
	return nil
}

// SetRoadClass upgrades or downgrades the road class of an existing road
// tile (Street/Avenue/Highway). A no-op on non-road tiles.
func (w *World) SetRoadClass(x, y int, class rules.RoadClass) error {
	if !w.InBounds(x, y) {
		return ErrOutOfBounds{x, y}
	}
	idx := w.Index(x, y)
	t := w.Tiles[idx]
	if t.Overlay != OverlayRoad {
		return fmt.Errorf("world: (%d,%d) is not a road tile", x, y)
	}
	t.RoadClass = class
	w.Tiles[idx] = t
	return nil
}

// fixRoadMask recomputes the low-4-bit mask for a single tile; on a tile
// that is not a road it clears any mask bits left over.
func (w *World) fixRoadMask(x, y int) {
	if !w.InBounds(x, y) {
		return
	}
	idx := w.Index(x, y)
	t := w.Tiles[idx]
	if t.Overlay != OverlayRoad {
		if t.RoadMask() != 0 {
			w.Tiles[idx] = t.withRoadMask(0)
		}
		return
	}
	var mask uint8
	for i, d := range CardinalOffsets {
		nx, ny := x+d[0], y+d[1]
		if w.InBounds(nx, ny) && w.At(nx, ny).Overlay == OverlayRoad {
			mask |= 1 << uint(i)
		}
	}
	w.Tiles[idx] = t.withRoadMask(mask)
}

// RecomputeRoadMasks rescans every tile and refreshes road adjacency masks.
// Required after any bulk edit (generation, transform, load) where adjacency
// could not be repaired incrementally.
func (w *World) RecomputeRoadMasks() {
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			w.fixRoadMask(x, y)
		}
	}
}

// IsBuildable reports whether (x,y) is in-bounds land that is not already a
// road.
func (w *World) IsBuildable(x, y int) bool {
	return w.InBounds(x, y) && w.At(x, y).IsBuildable()
}

// IsEmptyLand reports whether (x,y) is in-bounds dry land with no overlay.
func (w *World) IsEmptyLand(x, y int) bool {
	return w.InBounds(x, y) && w.At(x, y).IsEmptyLand()
}

// Capacity returns the occupant capacity for a zone/service tile via the
// shared rules table.
func Capacity(level uint8, overlay Overlay) int {
	return rules.Capacity(int(level), overlayRulesKind(overlay))
}

func overlayRulesKind(o Overlay) rules.OverlayKind {
	switch o {
	case OverlayResidential:
		return rules.Residential
	case OverlayCommercial:
		return rules.Commercial
	case OverlayIndustrial:
		return rules.Industrial
	case OverlaySchool:
		return rules.School
	case OverlayHospital:
		return rules.Hospital
	case OverlayPoliceStation:
		return rules.Police
	case OverlayFireStation:
		return rules.Fire
	default:
		return rules.NoneKind
	}
}

// SourceRoad returns the index of the first road tile adjacent to (x,y) in
// fixed N,E,S,W order, or -1 if none. Used wherever a facility needs its
// "source road" (§4.4).
func (w *World) SourceRoad(x, y int) int {
	for _, d := range CardinalOffsets {
		nx, ny := x+d[0], y+d[1]
		if w.InBounds(nx, ny) && w.At(nx, ny).Overlay == OverlayRoad {
			return w.Index(nx, ny)
		}
	}
	return -1
}

// CountNeighborOverlay counts how many of a tile's neighbors (4- or
// 8-connected) carry the given overlay. Adapted from the tile-grid counting
// helper used throughout the engine for mask and density computations.
func (w *World) CountNeighborOverlay(x, y int, overlay Overlay, includeDiagonal bool) int {
	count := 0
	for _, d := range CardinalOffsets {
		nx, ny := x+d[0], y+d[1]
		if w.InBounds(nx, ny) && w.At(nx, ny).Overlay == overlay {
			count++
		}
	}
	if includeDiagonal {
		for _, d := range DiagonalOffsets {
			nx, ny := x+d[0], y+d[1]
			if w.InBounds(nx, ny) && w.At(nx, ny).Overlay == overlay {
				count++
			}
		}
	}
	return count
}

// Clone returns a deep copy of the world (tiles and stats), used by the
// world transform pipeline and by tests that must compare before/after
// states.
func (w *World) Clone() *World {
	out := &World{
		Width:  w.Width,
		Height: w.Height,
		Seed:   w.Seed,
		Tiles:  make([]Tile, len(w.Tiles)),
		Stats:  w.Stats,
	}
	copy(out.Tiles, w.Tiles)
	return out
}
