// Package world holds the tile grid and world container that every other
// subsystem reads and, in the case of the simulator tick and the autonomous
// builder, writes.
package world

import (
	"fmt"

	"github.com/dshills/procicity/pkg/rules"
)

// Terrain is a 3-way classification derived from a height threshold during
// world generation.
type Terrain uint8

const (
	Water Terrain = iota
	Sand
	Grass
)

func (t Terrain) String() string {
	switch t {
	case Water:
		return "water"
	case Sand:
		return "sand"
	case Grass:
		return "grass"
	default:
		return "unknown"
	}
}

// Overlay is the closed set of things that can occupy a tile on top of its
// terrain.
type Overlay uint8

const (
	OverlayNone Overlay = iota
	OverlayRoad
	OverlayResidential
	OverlayCommercial
	OverlayIndustrial
	OverlayPark
	OverlaySchool
	OverlayHospital
	OverlayPoliceStation
	OverlayFireStation
)

func (o Overlay) String() string {
	switch o {
	case OverlayNone:
		return "none"
	case OverlayRoad:
		return "road"
	case OverlayResidential:
		return "residential"
	case OverlayCommercial:
		return "commercial"
	case OverlayIndustrial:
		return "industrial"
	case OverlayPark:
		return "park"
	case OverlaySchool:
		return "school"
	case OverlayHospital:
		return "hospital"
	case OverlayPoliceStation:
		return "police"
	case OverlayFireStation:
		return "fire"
	default:
		return "unknown"
	}
}

// IsZone reports whether the overlay is a residential/commercial/industrial
// zone — the three overlays that participate in ZoneAccessMap, growth, and
// commute/goods demand.
func (o Overlay) IsZone() bool {
	return o == OverlayResidential || o == OverlayCommercial || o == OverlayIndustrial
}

// IsService reports whether the overlay is a civic facility consumed by the
// E2SFCA services model.
func (o Overlay) IsService() bool {
	switch o {
	case OverlaySchool, OverlayHospital, OverlayPoliceStation, OverlayFireStation:
		return true
	default:
		return false
	}
}

// Neighbor bit masks for Tile.Variation's low nibble, in the fixed N,E,S,W
// enumeration order mandated by the routing tie-break rule.
const (
	MaskN uint8 = 1 << 0
	MaskE uint8 = 1 << 1
	MaskS uint8 = 1 << 2
	MaskW uint8 = 1 << 3
)

// Dir is a cardinal direction index into the fixed N,E,S,W order.
type Dir int

const (
	DirN Dir = iota
	DirE
	DirS
	DirW
)

// CardinalOffsets gives the (dx,dy) offsets for DirN..DirW, in the order
// every neighbor enumeration in this engine must use.
var CardinalOffsets = [4][2]int{
	{0, -1}, // N
	{1, 0},  // E
	{0, 1},  // S
	{-1, 0}, // W
}

// DiagonalOffsets gives NE,SE,SW,NW, used only where §3.3 calls for 8-way
// enumeration.
var DiagonalOffsets = [4][2]int{
	{1, -1}, // NE
	{1, 1},  // SE
	{-1, 1}, // SW
	{-1, -1},
}

// Tile is the fixed-size value type packed densely into World.Tiles.
type Tile struct {
	Terrain   Terrain
	Overlay   Overlay
	Level     uint8 // 1..3
	District  uint8 // 0..7
	Height    float32
	Variation uint8 // low 4 bits: road adjacency mask; high 4 bits: stable per-tile randomness
	Occupants uint8
	RoadClass rules.RoadClass // meaningful only when Overlay == OverlayRoad; zero value is Street
}

// IsBridge reports whether a road tile spans water, carrying the bridge
// travel-time premium for its class.
func (t Tile) IsBridge() bool { return t.Overlay == OverlayRoad && t.Terrain == Water }

// RoadMask returns the low-4-bit cardinal road-adjacency mask.
func (t Tile) RoadMask() uint8 { return t.Variation & 0x0F }

// RandomNibble returns the stable high-4-bit per-tile randomness seeded at
// generation time.
func (t Tile) RandomNibble() uint8 { return (t.Variation >> 4) & 0x0F }

func (t Tile) withRoadMask(mask uint8) Tile {
	t.Variation = (t.Variation &^ 0x0F) | (mask & 0x0F)
	return t
}

// IsBuildable reports whether new overlays may be placed on this tile: not
// water, and not already a road. World.SetOverlay does not consult it.
func (t Tile) IsBuildable() bool {
	return t.Terrain != Water && t.Overlay != OverlayRoad
}

// IsEmptyLand reports whether the tile is dry land with no overlay at all.
func (t Tile) IsEmptyLand() bool {
	return t.Terrain != Water && t.Overlay == OverlayNone
}

// Capacity returns the maximum Occupants this tile may hold, per the
// level/overlay capacity table in package rules.
func (t Tile) Capacity(capacityOf func(level uint8, overlay Overlay) int) int {
	return capacityOf(t.Level, t.Overlay)
}

// ErrOutOfBounds is returned by operations addressing a tile outside the grid.
type ErrOutOfBounds struct{ X, Y int }

func (e ErrOutOfBounds) Error() string {
	return fmt.Sprintf("world: (%d,%d) out of bounds", e.X, e.Y)
}
