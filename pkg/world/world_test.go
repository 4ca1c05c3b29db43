package world

import (
	"testing"

	"pgregory.net/rapid"
)

func TestSetRoad_MaskMatchesNeighbors(t *testing.T) {
	w := New(5, 5, 1)
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(w.SetRoad(1, 1, true))
	must(w.SetRoad(2, 1, true))
	must(w.SetRoad(1, 2, true))

	assertMaskConsistent(t, w)
}

func TestRecomputeRoadMasks_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		size := rapid.IntRange(2, 10).Draw(rt, "size")
		w := New(size, size, 1)

		n := rapid.IntRange(0, size*size).Draw(rt, "edits")
		for i := 0; i < n; i++ {
			x := rapid.IntRange(0, size-1).Draw(rt, "x")
			y := rapid.IntRange(0, size-1).Draw(rt, "y")
			present := rapid.Boolean().Draw(rt, "present")
			if err := w.SetRoad(x, y, present); err != nil {
				rt.Fatalf("%v", err)
			}
		}

		assertMaskConsistent(rt, w)

		// A bulk recompute must agree with the incremental maintenance.
		before := make([]uint8, len(w.Tiles))
		for i, tile := range w.Tiles {
			before[i] = tile.RoadMask()
		}
		w.RecomputeRoadMasks()
		for i, tile := range w.Tiles {
			if tile.RoadMask() != before[i] {
				rt.Fatalf("tile %d: incremental mask %d != recomputed %d", i, before[i], tile.RoadMask())
			}
		}
	})
}

type fataler interface {
	Fatalf(format string, args ...interface{})
}

func assertMaskConsistent(t fataler, w *World) {
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			tile := w.At(x, y)
			if tile.Overlay != OverlayRoad {
				continue
			}
			var want uint8
			for i, d := range CardinalOffsets {
				nx, ny := x+d[0], y+d[1]
				if w.InBounds(nx, ny) && w.At(nx, ny).Overlay == OverlayRoad {
					want |= 1 << uint(i)
				}
			}
			if got := tile.RoadMask(); got != want {
				t.Fatalf("(%d,%d): mask %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestHash_Deterministic(t *testing.T) {
	w1 := New(4, 4, 99)
	_ = w1.SetRoad(1, 1, true)
	w2 := New(4, 4, 99)
	_ = w2.SetRoad(1, 1, true)

	if Hash(w1, false) != Hash(w2, false) {
		t.Fatal("identical worlds hashed differently")
	}

	w3 := New(4, 4, 99)
	_ = w3.SetRoad(2, 2, true)
	if Hash(w1, false) == Hash(w3, false) {
		t.Fatal("different worlds hashed identically (extremely unlikely)")
	}
}

func TestHash_OrderIndependentOfMapIteration(t *testing.T) {
	// Hashing is a pure fold over the dense array, so repeated calls must
	// agree regardless of any incidental map iteration elsewhere in the
	// process.
	w := New(8, 8, 7)
	for i := 0; i < 5; i++ {
		_ = w.SetRoad(i, 0, true)
	}
	h0 := Hash(w, true)
	for i := 0; i < 20; i++ {
		if Hash(w, true) != h0 {
			t.Fatal("hash not stable across repeated calls")
		}
	}
}
