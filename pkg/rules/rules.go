// Package rules holds the small set of plain constant tables the engine
// would otherwise scatter as magic numbers: per-overlay occupant capacity,
// road-class travel time, and bridge multipliers. Nothing here is a
// singleton — Table is a value, and Default() returns the citywide default;
// callers that want a variant load one explicitly with Load.
package rules

// OverlayKind mirrors world.Overlay without importing it, so this package
// stays a leaf dependency of world (avoiding an import cycle) while still
// giving every overlay a row in the capacity table.
type OverlayKind int

const (
	NoneKind OverlayKind = iota
	Residential
	Commercial
	Industrial
	School
	Hospital
	Police
	Fire
)

// RoadClass is the closed set of road tiers; class travel time is monotone
// Street > Avenue > Highway.
type RoadClass int

const (
	Street RoadClass = iota
	Avenue
	Highway
)

// Table is the full set of tunable rule constants. All fields have
// defaults; Table is passed explicitly down the call tree rather than read
// from a global.
type Table struct {
	// CapacityBase[kind][level-1] is occupant capacity for a zone/service tile.
	CapacityBase map[OverlayKind][3]int

	// TravelTimeMilli[class] is the travel time, in milli-steps, for a
	// street-grade road tile of that class. A reference street step is 1000.
	TravelTimeMilli map[RoadClass]int

	// BridgeTravelTimeMilli[class] is the travel time for the same class when
	// the road tile overlays water. Always >= TravelTimeMilli[class].
	BridgeTravelTimeMilli map[RoadClass]int

	// RoadCapacity[class] is the reference vehicle/goods throughput per tile
	// used by the BPR congestion curve (v/c).
	RoadCapacity map[RoadClass]float64

	// WaterLevel and SandLevel are the height thresholds used to classify
	// terrain during world generation (height < WaterLevel => Water;
	// height < SandLevel => Sand; else Grass).
	WaterLevel float64
	SandLevel  float64

	// Worldgen placement chances.
	ParkChance       float64
	ZoneChance       float64
	ZoneResidentialW float64
	ZoneCommercialW  float64
	ZoneIndustrialW  float64
	ZoneLevel2Chance float64
	ZoneLevel3Chance float64

	// ExtraConnections is the number of additional random road loops carved
	// between hubs after the spanning sequence.
	ExtraConnections int
}

// Default returns the citywide default rule table, grounded on the
// reference simulator's constants (a street step costs 1000 milli-steps;
// avenues and highways are faster; bridges add a fixed premium per class).
func Default() Table {
	return Table{
		CapacityBase: map[OverlayKind][3]int{
			Residential: {20, 45, 80},
			Commercial:  {15, 35, 65},
			Industrial:  {25, 50, 90},
			School:      {60, 120, 200},
			Hospital:    {40, 80, 140},
			Police:      {30, 60, 100},
			Fire:        {30, 60, 100},
			NoneKind:    {0, 0, 0},
		},
		TravelTimeMilli: map[RoadClass]int{
			Street:  1000,
			Avenue:  700,
			Highway: 400,
		},
		BridgeTravelTimeMilli: map[RoadClass]int{
			Street:  1300,
			Avenue:  950,
			Highway: 650,
		},
		RoadCapacity: map[RoadClass]float64{
			Street:  20,
			Avenue:  60,
			Highway: 160,
		},
		WaterLevel: 0.32,
		SandLevel:  0.38,

		ParkChance:       0.06,
		ZoneChance:       0.55,
		ZoneResidentialW: 0.65,
		ZoneCommercialW:  0.20,
		ZoneIndustrialW:  0.15,
		ZoneLevel2Chance: 0.12,
		ZoneLevel3Chance: 0.04,

		ExtraConnections: 3,
	}
}

// Capacity looks up occupant capacity for a level (1..3) and overlay kind in
// the default table. Most call sites want the default; Table.Capacity
// serves callers threading a loaded/overridden table explicitly.
func Capacity(level int, kind OverlayKind) int {
	return defaultTable.Capacity(level, kind)
}

// Capacity is the Table-scoped form used by callers holding a specific
// (possibly YAML-loaded) rule set.
func (t Table) Capacity(level int, kind OverlayKind) int {
	if level < 1 {
		level = 1
	}
	if level > 3 {
		level = 3
	}
	row, ok := t.CapacityBase[kind]
	if !ok {
		return 0
	}
	return row[level-1]
}

// TravelTime returns the milli-step cost of a road tile of the given class,
// bridged or not.
func (t Table) TravelTime(class RoadClass, bridge bool) int {
	if bridge {
		if v, ok := t.BridgeTravelTimeMilli[class]; ok {
			return v
		}
	}
	if v, ok := t.TravelTimeMilli[class]; ok {
		return v
	}
	return t.TravelTimeMilli[Street]
}

var defaultTable = Default()
