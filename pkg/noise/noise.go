// Package noise implements the periodic/aperiodic value noise, fBm, and
// domain-warp primitives that drive procedural terrain height (L2). Every
// sample is a pure function of its coordinates and seed — no global state,
// no floating-point associativity tricks — so that two runs with the same
// seed produce bit-identical height fields.
package noise

import (
	"math"

	"github.com/dshills/procicity/pkg/rng"
)

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func smoothStep(t float64) float64 { return t * t * (3.0 - 2.0*t) }

// hash01 hashes an integer lattice point to [0,1].
func hash01(ix, iy int, seed uint32) float64 {
	h := rng.HashCoords32(ix, iy, seed)
	return float64(h) / float64(math.MaxUint32)
}

// wrapMod wraps i into [0,m). m<=0 leaves i unchanged (non-periodic).
func wrapMod(i, m int) int {
	if m <= 0 {
		return i
	}
	r := i % m
	if r < 0 {
		r += m
	}
	return r
}

func hash01Periodic(ix, iy int, seed uint32, periodX, periodY int) float64 {
	if periodX > 0 {
		ix = wrapMod(ix, periodX)
	}
	if periodY > 0 {
		iy = wrapMod(iy, periodY)
	}
	return hash01(ix, iy, seed)
}

// Value2D returns 2D value noise in [0,1] via bilinear interpolation with
// smoothstep easing over a lattice hashed by rng.HashCoords32.
func Value2D(x, y float64, seed uint32) float64 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1, y1 := x0+1, y0+1

	tx := smoothStep(x - float64(x0))
	ty := smoothStep(y - float64(y0))

	v00 := hash01(x0, y0, seed)
	v10 := hash01(x1, y0, seed)
	v01 := hash01(x0, y1, seed)
	v11 := hash01(x1, y1, seed)

	a := lerp(v00, v10, tx)
	b := lerp(v01, v11, tx)
	return lerp(a, b, ty)
}

// Value2DPeriodic is Value2D but the lattice wraps modulo (periodX,periodY),
// so Value2DPeriodic(x+periodX, y, ...) == Value2DPeriodic(x, y, ...).
func Value2DPeriodic(x, y float64, seed uint32, periodX, periodY int) float64 {
	if periodX <= 0 || periodY <= 0 {
		return Value2D(x, y, seed)
	}

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1, y1 := x0+1, y0+1

	tx := smoothStep(x - float64(x0))
	ty := smoothStep(y - float64(y0))

	v00 := hash01Periodic(x0, y0, seed, periodX, periodY)
	v10 := hash01Periodic(x1, y0, seed, periodX, periodY)
	v01 := hash01Periodic(x0, y1, seed, periodX, periodY)
	v11 := hash01Periodic(x1, y1, seed, periodX, periodY)

	a := lerp(v00, v10, tx)
	b := lerp(v01, v11, tx)
	return lerp(a, b, ty)
}

// FBmParams bundles the tunables shared by every fBm variant below.
type FBmParams struct {
	Octaves    int
	Lacunarity float64
	Gain       float64
}

// DefaultFBmParams matches the reference terrain pass: 5 octaves, lacunarity
// 2, gain 0.5.
func DefaultFBmParams() FBmParams {
	return FBmParams{Octaves: 5, Lacunarity: 2.0, Gain: 0.5}
}

// FBm2D sums octaves of Value2D, normalized to [0,1].
func FBm2D(x, y float64, seed uint32, p FBmParams) float64 {
	amp, freq := 1.0, 1.0
	sum, norm := 0.0, 0.0
	for i := 0; i < p.Octaves; i++ {
		sum += Value2D(x*freq, y*freq, seed+uint32(i*1013)) * amp
		norm += amp
		amp *= p.Gain
		freq *= p.Lacunarity
	}
	if norm > 0 {
		sum /= norm
	}
	return clamp01(sum)
}

// FBm2DPeriodic is FBm2D but tileable: each octave scales both the sample
// coordinates and the period so the sum repeats at the original
// (periodX,periodY), not at a per-octave-shrunk period.
func FBm2DPeriodic(x, y float64, seed uint32, periodX, periodY int, p FBmParams) float64 {
	if periodX <= 0 || periodY <= 0 {
		return FBm2D(x, y, seed, p)
	}

	amp, freq := 1.0, 1.0
	sum, norm := 0.0, 0.0
	for i := 0; i < p.Octaves; i++ {
		px := maxInt(1, int(math.Round(float64(periodX)*freq)))
		py := maxInt(1, int(math.Round(float64(periodY)*freq)))

		sum += Value2DPeriodic(x*freq, y*freq, seed+uint32(i*1013), px, py) * amp
		norm += amp
		amp *= p.Gain
		freq *= p.Lacunarity
	}
	if norm > 0 {
		sum /= norm
	}
	return clamp01(sum)
}

// DomainWarpFBm2DPeriodic samples FBm2DPeriodic at coordinates displaced by
// two low-octave periodic fBm fields (the "warp"), producing organic,
// non-axis-aligned terrain features while still tiling seamlessly.
func DomainWarpFBm2DPeriodic(x, y float64, seed uint32, periodX, periodY int, p FBmParams, warpAmp float64) float64 {
	warpParams := FBmParams{Octaves: 3, Lacunarity: p.Lacunarity, Gain: p.Gain}

	if periodX <= 0 || periodY <= 0 {
		wx := FBm2D(x+19.37, y+47.11, seed^0x68BC21EB, warpParams)
		wy := FBm2D(x-31.17, y+11.83, seed^0x02E5BE93, warpParams)
		dx := (wx*2 - 1) * warpAmp
		dy := (wy*2 - 1) * warpAmp
		return FBm2D(x+dx, y+dy, seed, p)
	}

	wx := FBm2DPeriodic(x+19.37, y+47.11, seed^0x68BC21EB, periodX, periodY, warpParams)
	wy := FBm2DPeriodic(x-31.17, y+11.83, seed^0x02E5BE93, periodX, periodY, warpParams)
	dx := (wx*2 - 1) * warpAmp
	dy := (wy*2 - 1) * warpAmp

	return FBm2DPeriodic(x+dx, y+dy, seed, periodX, periodY, p)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
