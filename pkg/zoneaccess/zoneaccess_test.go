package zoneaccess

import (
	"testing"

	"github.com/dshills/procicity/pkg/world"
)

func TestBuild_BoundaryTileGetsNearestRoad(t *testing.T) {
	w := world.New(3, 1, 1)
	_ = w.SetRoad(0, 0, true)
	_ = w.SetOverlay(1, 0, world.OverlayResidential, 1)

	m := Build(w, nil)
	idx := w.Index(1, 0)
	roadIdx := w.Index(0, 0)
	if m.RoadIndex[idx] != roadIdx {
		t.Fatalf("want access road %d, got %d", roadIdx, m.RoadIndex[idx])
	}
}

func TestBuild_InteriorTileInheritsViaPropagation(t *testing.T) {
	// Road at (0,0); a 3x1 residential strip at y=0 touching it at x=1.
	w := world.New(4, 1, 1)
	_ = w.SetRoad(0, 0, true)
	for x := 1; x < 4; x++ {
		_ = w.SetOverlay(x, 0, world.OverlayResidential, 1)
	}

	m := Build(w, nil)
	roadIdx := w.Index(0, 0)
	for x := 1; x < 4; x++ {
		idx := w.Index(x, 0)
		if m.RoadIndex[idx] != roadIdx {
			t.Fatalf("tile (%d,0): want access road %d, got %d", x, roadIdx, m.RoadIndex[idx])
		}
	}
}

func TestBuild_NoRoadAdjacency_Unreachable(t *testing.T) {
	w := world.New(3, 1, 1)
	for x := 0; x < 3; x++ {
		_ = w.SetOverlay(x, 0, world.OverlayResidential, 1)
	}
	m := Build(w, nil)
	for x := 0; x < 3; x++ {
		if got := m.RoadIndex[w.Index(x, 0)]; got != -1 {
			t.Fatalf("tile (%d,0): want -1 unreachable, got %d", x, got)
		}
	}
}

func TestBuild_Idempotent(t *testing.T) {
	w := world.New(6, 6, 42)
	_ = w.SetRoad(0, 2, true)
	_ = w.SetRoad(1, 2, true)
	_ = w.SetRoad(2, 2, true)
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			_ = w.SetOverlay(x, y, world.OverlayCommercial, 1)
		}
	}

	m1 := Build(w, nil)
	m2 := Build(w, nil)
	if len(m1.RoadIndex) != len(m2.RoadIndex) {
		t.Fatal("length mismatch between successive builds")
	}
	for i := range m1.RoadIndex {
		if m1.RoadIndex[i] != m2.RoadIndex[i] {
			t.Fatalf("tile %d: not idempotent: %d vs %d", i, m1.RoadIndex[i], m2.RoadIndex[i])
		}
	}
}

func TestBuild_OutsideMaskRestrictsEligibleRoads(t *testing.T) {
	w := world.New(3, 1, 1)
	_ = w.SetRoad(0, 0, true)
	_ = w.SetOverlay(1, 0, world.OverlayResidential, 1)

	mask := make([]uint8, 3)
	// Road at (0,0) is NOT marked outside-connected.
	withMask := Build(w, mask)
	if got := withMask.RoadIndex[w.Index(1, 0)]; got != -1 {
		t.Fatalf("expected unreachable under restrictive mask, got %d", got)
	}

	mask[w.Index(0, 0)] = 1
	withMaskOK := Build(w, mask)
	if got := withMaskOK.RoadIndex[w.Index(1, 0)]; got != w.Index(0, 0) {
		t.Fatalf("expected access road once mask allows it, got %d", got)
	}
}
