package rng

import "testing"

func TestDerive_Determinism(t *testing.T) {
	s1 := Derive(123456789, "autobuild.roads", 7)
	s2 := Derive(123456789, "autobuild.roads", 7)

	for i := 0; i < 100; i++ {
		v1, v2 := s1.Next(), s2.Next()
		if v1 != v2 {
			t.Fatalf("iteration %d: diverged: %d vs %d", i, v1, v2)
		}
	}
}

func TestDerive_SaltIsolatesSequence(t *testing.T) {
	a := Derive(1, "roads", 0)
	b := Derive(1, "zones", 0)
	c := Derive(1, "roads", 1)

	if a.Next() == b.Next() {
		t.Error("different salts produced the same first draw")
	}
	a2 := Derive(1, "roads", 0)
	if a2.Next() == c.Next() {
		// extremely unlikely but not impossible; recompute to avoid flaking on a rare collision
		a3 := Derive(1, "roads", 0)
		c2 := Derive(1, "roads", 1)
		if a3.Next() == c2.Next() {
			t.Error("different days produced identical first draw twice in a row")
		}
	}
}

func TestStream_RangeBounds(t *testing.T) {
	s := NewStream(42)
	for i := 0; i < 500; i++ {
		v := s.Intn(7)
		if v < 0 || v >= 7 {
			t.Fatalf("Intn(7) out of range: %d", v)
		}
		f := s.Float64()
		if f < 0 || f >= 1 {
			t.Fatalf("Float64 out of range: %f", f)
		}
		ir := s.IntRange(5, 9)
		if ir < 5 || ir > 9 {
			t.Fatalf("IntRange out of range: %d", ir)
		}
	}
}

func TestStream_IntnPowerOfTwoMatchesGeneral(t *testing.T) {
	// The power-of-two fast path must agree with rejection sampling on range,
	// not just on not-panicking.
	s := NewStream(7)
	for i := 0; i < 1000; i++ {
		v := s.Intn(16)
		if v < 0 || v >= 16 {
			t.Fatalf("Intn(16) out of range: %d", v)
		}
	}
}

func TestStream_Shuffle_Deterministic(t *testing.T) {
	mk := func() []int { return []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9} }

	a := mk()
	NewStream(9001).Shuffle(len(a), func(i, j int) { a[i], a[j] = a[j], a[i] })

	b := mk()
	NewStream(9001).Shuffle(len(b), func(i, j int) { b[i], b[j] = b[j], b[i] })

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("position %d: shuffle diverged: %d vs %d", i, a[i], b[i])
		}
	}

	same := true
	for i := range a {
		if a[i] != i {
			same = false
		}
	}
	if same {
		t.Error("shuffle left the slice unchanged (extremely unlikely)")
	}
}

func TestStream_WeightedChoice(t *testing.T) {
	cases := []struct {
		name    string
		weights []float64
		want    int
	}{
		{"empty", nil, -1},
		{"all zero", []float64{0, 0}, -1},
		{"single", []float64{1}, 0},
		{"skewed", []float64{0, 10, 0}, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := NewStream(1).WeightedChoice(c.weights)
			if got != c.want {
				t.Errorf("WeightedChoice(%v) = %d, want %d", c.weights, got, c.want)
			}
		})
	}
}

func TestStream_WeightedChoicePanicsOnNegative(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on negative weight")
		}
	}()
	NewStream(1).WeightedChoice([]float64{1, -1})
}

func TestHashCoords32_Stable(t *testing.T) {
	a := HashCoords32(12, 34, 7)
	b := HashCoords32(12, 34, 7)
	if a != b {
		t.Fatalf("HashCoords32 not stable: %d vs %d", a, b)
	}
	if HashCoords32(12, 34, 7) == HashCoords32(12, 35, 7) {
		t.Error("different y produced the same hash (extremely unlikely)")
	}
}

func BenchmarkStream_Next(b *testing.B) {
	s := NewStream(1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Next()
	}
}
