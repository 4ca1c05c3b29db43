package isochrone

import (
	"testing"

	"github.com/dshills/procicity/pkg/rules"
	"github.com/dshills/procicity/pkg/world"
)

func buildCross(w *world.World) {
	for i := 0; i < w.Width; i++ {
		_ = w.SetRoad(i, w.Height/2, true)
	}
	for i := 0; i < w.Height; i++ {
		_ = w.SetRoad(w.Width/2, i, true)
	}
}

func TestBuildRoadIsochroneField_TravelTimeReachability(t *testing.T) {
	w := world.New(5, 5, 1)
	buildCross(w)
	table := rules.Default()

	field := BuildRoadIsochroneField(w, table, []int{w.Index(2, 2)}, RoadIsochroneConfig{WeightMode: WeightTravelTime}, nil, nil)
	if field.CostMilli[w.Index(4, 2)] <= 0 {
		t.Fatalf("expected positive reachable cost, got %d", field.CostMilli[w.Index(4, 2)])
	}
	if field.CostMilli[w.Index(0, 0)] != -1 {
		t.Fatalf("expected non-road unreachable sentinel, got %d", field.CostMilli[w.Index(0, 0)])
	}
}

func TestBuildRoadIsochroneField_OutsideMaskExcludesUnmarkedSources(t *testing.T) {
	w := world.New(5, 5, 1)
	buildCross(w)
	table := rules.Default()

	mask := make([]uint8, 25) // all zero: nothing marked outside-connected
	field := BuildRoadIsochroneField(w, table, []int{w.Index(2, 2)}, RoadIsochroneConfig{WeightMode: WeightSteps, RequireOutsideConnection: true}, mask, nil)
	for _, c := range field.CostMilli {
		if c != -1 {
			t.Fatal("expected every tile unreachable when the outside mask excludes the only source")
		}
	}
}

func TestBuildTileAccessCostField_ZoneUsesAccessRoadCost(t *testing.T) {
	w := world.New(4, 1, 1)
	_ = w.SetRoad(0, 0, true)
	for x := 1; x < 4; x++ {
		_ = w.SetOverlay(x, 0, world.OverlayResidential, 1)
	}
	table := rules.Default()

	roadField := BuildRoadIsochroneField(w, table, []int{w.Index(0, 0)}, RoadIsochroneConfig{WeightMode: WeightTravelTime}, nil, nil)
	tileField := BuildTileAccessCostField(w, roadField, DefaultTileAccessCostConfig(), nil)

	roadCost := roadField.CostMilli[w.Index(0, 0)]
	for x := 1; x < 4; x++ {
		if tileField[w.Index(x, 0)] != roadCost {
			t.Fatalf("tile (%d,0): want %d (inherited road cost), got %d", x, roadCost, tileField[w.Index(x, 0)])
		}
	}
}

func TestBuildTileAccessCostField_WaterExcludedByDefault(t *testing.T) {
	w := world.New(2, 1, 1)
	_ = w.Set(1, 0, world.Tile{Terrain: world.Water})
	_ = w.SetRoad(0, 0, true)
	table := rules.Default()

	roadField := BuildRoadIsochroneField(w, table, []int{w.Index(0, 0)}, RoadIsochroneConfig{WeightMode: WeightTravelTime}, nil, nil)
	tileField := BuildTileAccessCostField(w, roadField, DefaultTileAccessCostConfig(), nil)
	if tileField[w.Index(1, 0)] != -1 {
		t.Fatalf("expected water tile to stay unreachable by default, got %d", tileField[w.Index(1, 0)])
	}
}
