package pathfind

import (
	"testing"

	"github.com/dshills/procicity/pkg/rules"
	"github.com/dshills/procicity/pkg/world"
)

func TestAStarBuildableLand_StraightLine(t *testing.T) {
	w := world.New(5, 1, 1)
	path, ok := AStarBuildableLand(w, Point{0, 0}, Point{4, 0}, false)
	if !ok {
		t.Fatal("expected reachable path")
	}
	if len(path) != 5 {
		t.Fatalf("want 5 points, got %d", len(path))
	}
	if path[0] != (Point{0, 0}) || path[len(path)-1] != (Point{4, 0}) {
		t.Fatalf("path endpoints wrong: %v", path)
	}
}

func TestAStarBuildableLand_WaterBlocksUnlessDetour(t *testing.T) {
	w := world.New(3, 3, 1)
	for y := 0; y < 3; y++ {
		_ = w.Set(1, y, world.Tile{Terrain: world.Water})
	}
	_, ok := AStarBuildableLand(w, Point{0, 1}, Point{2, 1}, false)
	if ok {
		t.Fatal("expected no path across a solid water wall")
	}

	// Open a gap at (1,0) and confirm a detour is found.
	_ = w.Set(1, 0, world.Tile{Terrain: world.Grass})
	path, ok := AStarBuildableLand(w, Point{0, 1}, Point{2, 1}, false)
	if !ok {
		t.Fatal("expected a detour path through the gap")
	}
	for _, p := range path {
		if w.At(p.X, p.Y).Terrain == world.Water {
			t.Fatalf("path crosses water at %v", p)
		}
	}
}

func TestAStarBuildableLand_ExistingRoadBlockedUnlessOverlapAllowed(t *testing.T) {
	w := world.New(3, 1, 1)
	_ = w.SetRoad(1, 0, true)

	if _, ok := AStarBuildableLand(w, Point{0, 0}, Point{2, 0}, false); ok {
		t.Fatal("expected road tile to block when overlap disallowed")
	}
	if _, ok := AStarBuildableLand(w, Point{0, 0}, Point{2, 0}, true); !ok {
		t.Fatal("expected path to succeed when overlap allowed")
	}
}

func buildCross(w *world.World) {
	// A plus-shaped road network centered at (2,2) in a 5x5 grid.
	for i := 0; i < 5; i++ {
		_ = w.SetRoad(i, 2, true)
		_ = w.SetRoad(2, i, true)
	}
}

func TestMultiSourceDijkstra_UnreachableSentinel(t *testing.T) {
	w := world.New(5, 5, 1)
	buildCross(w)
	table := rules.Default()

	cf := MultiSourceDijkstra(w, table, []Point{{0, 2}}, nil, nil)
	// (0,0) is not a road tile at all, must be sentinel.
	idx := w.Index(0, 0)
	if cf.Cost[idx] != -1 || cf.Steps[idx] != -1 || cf.Owner[idx] != -1 {
		t.Fatalf("expected unreachable sentinel at non-road tile, got cost=%d steps=%d owner=%d",
			cf.Cost[idx], cf.Steps[idx], cf.Owner[idx])
	}
	// (4,2) is on the cross, must be reachable.
	idx2 := w.Index(4, 2)
	if cf.Cost[idx2] < 0 {
		t.Fatalf("expected (4,2) reachable, got cost=%d", cf.Cost[idx2])
	}
}

func TestMultiSourceDijkstra_SourceOrderDoesNotChangeCost(t *testing.T) {
	w := world.New(5, 5, 1)
	buildCross(w)
	table := rules.Default()

	a := MultiSourceDijkstra(w, table, []Point{{0, 2}, {2, 0}}, nil, nil)
	b := MultiSourceDijkstra(w, table, []Point{{2, 0}, {0, 2}}, nil, nil)

	for i := range a.Cost {
		if a.Cost[i] != b.Cost[i] {
			t.Fatalf("tile %d: cost differs by source order: %d vs %d", i, a.Cost[i], b.Cost[i])
		}
		if a.Steps[i] != b.Steps[i] {
			t.Fatalf("tile %d: steps differs by source order: %d vs %d", i, a.Steps[i], b.Steps[i])
		}
	}
}

func TestMultiSourceDijkstra_ExtraCostIncreasesPath(t *testing.T) {
	w := world.New(5, 5, 1)
	buildCross(w)
	table := rules.Default()

	plain := MultiSourceDijkstra(w, table, []Point{{0, 2}}, nil, nil)
	extra := make(ExtraCost, w.Width*w.Height)
	for i := range extra {
		extra[i] = 500
	}
	congested := MultiSourceDijkstra(w, table, []Point{{0, 2}}, extra, nil)

	idx := w.Index(4, 2)
	if congested.Cost[idx] <= plain.Cost[idx] {
		t.Fatalf("congested cost %d should exceed plain cost %d", congested.Cost[idx], plain.Cost[idx])
	}
}

func TestMultiSourceDijkstra_AllowedMaskBlocksTiles(t *testing.T) {
	w := world.New(5, 5, 1)
	buildCross(w)
	table := rules.Default()

	allowed := make([]uint8, w.Width*w.Height)
	for i := range allowed {
		allowed[i] = 1
	}
	allowed[w.Index(3, 2)] = 0 // cuts the east arm of the cross

	cf := MultiSourceDijkstra(w, table, []Point{{0, 2}}, nil, allowed)
	if cf.Cost[w.Index(4, 2)] != -1 {
		t.Fatalf("expected (4,2) unreachable behind the blocked tile, got cost=%d", cf.Cost[w.Index(4, 2)])
	}
	if cf.Cost[w.Index(1, 2)] == -1 {
		t.Fatal("expected (1,2) still reachable on the unblocked side")
	}
}

func TestMultiSourceBFS_StepCounts(t *testing.T) {
	w := world.New(5, 5, 1)
	buildCross(w)

	cf := MultiSourceBFS(w, []Point{{2, 2}}, nil)
	if got := cf.Steps[w.Index(4, 2)]; got != 2 {
		t.Fatalf("want 2 steps to (4,2), got %d", got)
	}
	if got := cf.Steps[w.Index(2, 2)]; got != 0 {
		t.Fatalf("want 0 steps at source, got %d", got)
	}
}
