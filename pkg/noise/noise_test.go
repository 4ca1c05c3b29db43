package noise

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

func TestValue2D_RangeAndDeterminism(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		x := rapid.Float64Range(-50, 50).Draw(rt, "x")
		y := rapid.Float64Range(-50, 50).Draw(rt, "y")
		seed := rapid.Uint32().Draw(rt, "seed")

		v1 := Value2D(x, y, seed)
		v2 := Value2D(x, y, seed)
		if v1 != v2 {
			rt.Fatalf("Value2D not deterministic: %v vs %v", v1, v2)
		}
		if v1 < 0 || v1 > 1 {
			rt.Fatalf("Value2D out of [0,1]: %v", v1)
		}
	})
}

func TestValue2DPeriodic_WrapsAcrossBoundary(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		period := rapid.IntRange(2, 64).Draw(rt, "period")
		seed := rapid.Uint32().Draw(rt, "seed")
		x := rapid.Float64Range(0, float64(period)).Draw(rt, "x")
		y := rapid.Float64Range(0, float64(period)).Draw(rt, "y")

		a := Value2DPeriodic(x, y, seed, period, period)
		b := Value2DPeriodic(x+float64(period), y, seed, period, period)
		if math.Abs(a-b) > 1e-9 {
			rt.Fatalf("periodic noise did not wrap on x: %v vs %v", a, b)
		}
		c := Value2DPeriodic(x, y+float64(period), seed, period, period)
		if math.Abs(a-c) > 1e-9 {
			rt.Fatalf("periodic noise did not wrap on y: %v vs %v", a, c)
		}
	})
}

func TestFBm2D_NormalizedRange(t *testing.T) {
	p := DefaultFBmParams()
	for i := 0; i < 200; i++ {
		x := float64(i) * 0.37
		y := float64(i) * 1.91
		v := FBm2D(x, y, 1234, p)
		if v < 0 || v > 1 {
			t.Fatalf("FBm2D out of range at i=%d: %v", i, v)
		}
	}
}

func TestFBm2DPeriodic_TilesAtOriginalPeriod(t *testing.T) {
	p := DefaultFBmParams()
	period := 40
	for i := 0; i < 50; i++ {
		x := float64(i) * 0.73
		y := float64(i) * 0.21
		a := FBm2DPeriodic(x, y, 99, period, period, p)
		b := FBm2DPeriodic(x+float64(period), y, 99, period, period, p)
		if math.Abs(a-b) > 1e-6 {
			t.Fatalf("fBm did not tile at original period: %v vs %v", a, b)
		}
	}
}

func TestDomainWarpFBm2DPeriodic_Deterministic(t *testing.T) {
	p := DefaultFBmParams()
	a := DomainWarpFBm2DPeriodic(3.5, 7.25, 42, 32, 32, p, 1.0)
	b := DomainWarpFBm2DPeriodic(3.5, 7.25, 42, 32, 32, p, 1.0)
	if a != b {
		t.Fatalf("domain warp fbm not deterministic: %v vs %v", a, b)
	}
	if a < 0 || a > 1 {
		t.Fatalf("domain warp fbm out of range: %v", a)
	}
}
