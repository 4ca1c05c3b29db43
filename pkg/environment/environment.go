// Package environment computes the three environmental fields (L9, §4.10):
// air pollution transport (emission, diffusion+advection, deposition/decay),
// noise (Manhattan-ball convolution), and heat island (diffusion-only, no
// advection). All three are pure functions of a *world.World snapshot plus
// the current traffic load.
package environment

import (
	"math"

	"github.com/dshills/procicity/pkg/world"
	"gonum.org/v1/gonum/floats"
)

// Wind is a unit-ish 2D direction used by the semi-Lagrangian advection
// step; seed-derived or configured explicitly.
type Wind struct{ DX, DY float64 }

// AirConfig mirrors the reference AirPollutionModelSettings shape.
type AirConfig struct {
	Passes             int
	Diffusion          float64 // [0,1] blend factor with neighbors
	Decay              float64 // global per-pass multiplicative decay
	Wind               Wind
	RoadEmissionScale  float64
	IndustrialEmission float64
	CommercialEmission float64
	OccupantEmission   float64
	ParkSinkStrength   float64
	WaterSinkStrength  float64
	ElevationVentScale float64
	Clamp              float64
	HighExposureThreshold float64
}

// DefaultAirConfig mirrors the reference AirPollutionConfig defaults.
func DefaultAirConfig() AirConfig {
	return AirConfig{
		Passes:                6,
		Diffusion:             0.18,
		Decay:                 0.05,
		Wind:                  Wind{DX: 1, DY: 0},
		RoadEmissionScale:     0.01,
		IndustrialEmission:    0.9,
		CommercialEmission:    0.35,
		OccupantEmission:      0.02,
		ParkSinkStrength:      0.25,
		WaterSinkStrength:     0.35,
		ElevationVentScale:    0.3,
		Clamp:                 1.0,
		HighExposureThreshold: 0.6,
	}
}

// AirResult holds the clamped [0,1] field plus the two scalar summaries
// §4.10 calls out.
type AirResult struct {
	Field                []float64
	ResidentialMeanExposure float64
	FractionOverHighExposure float64
}

// ComputeAir runs the emission + transport pipeline. commuteTraffic and
// goodsTraffic are per-road-tile flow from pkg/traffic, used to scale road
// emission.
func ComputeAir(w *world.World, cfg AirConfig, commuteTraffic, goodsTraffic []int) AirResult {
	n := w.Width * w.Height
	field := make([]float64, n)

	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			idx := w.Index(x, y)
			t := w.At(x, y)
			e := 0.0
			switch t.Overlay {
			case world.OverlayRoad:
				flow := 0
				if commuteTraffic != nil {
					flow += commuteTraffic[idx]
				}
				if goodsTraffic != nil {
					flow += goodsTraffic[idx]
				}
				e += float64(flow) * cfg.RoadEmissionScale
			case world.OverlayIndustrial:
				e += cfg.IndustrialEmission * float64(t.Level)
			case world.OverlayCommercial:
				e += cfg.CommercialEmission * float64(t.Level)
			}
			e += float64(t.Occupants) * cfg.OccupantEmission

			sink := 0.0
			switch t.Overlay {
			case world.OverlayPark:
				sink += cfg.ParkSinkStrength
			}
			if t.Terrain == world.Water {
				sink += cfg.WaterSinkStrength
			}
			sink += float64(t.Height) * cfg.ElevationVentScale

			v := e - sink
			field[idx] = clamp(v, 0, cfg.Clamp)
		}
	}

	for p := 0; p < cfg.Passes; p++ {
		field = diffuse(w, field, cfg.Diffusion)
		field = advect(w, field, cfg.Wind)
		for i, t := range tilesFlat(w) {
			decay := cfg.Decay
			if t.Overlay == world.OverlayPark {
				decay += cfg.ParkSinkStrength * 0.5
			}
			if t.Terrain == world.Water {
				decay += cfg.WaterSinkStrength * 0.5
			}
			field[i] = clamp(field[i]*(1-decay), 0, cfg.Clamp)
		}
	}

	return AirResult{
		Field:                    field,
		ResidentialMeanExposure:  residentialMean(w, field),
		FractionOverHighExposure: residentialFractionOver(w, field, cfg.HighExposureThreshold),
	}
}

func diffuse(w *world.World, field []float64, amount float64) []float64 {
	out := make([]float64, len(field))
	copy(out, field)
	if amount <= 0 {
		return out
	}
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			idx := w.Index(x, y)
			sum, count := 0.0, 0.0
			for _, d := range world.CardinalOffsets {
				nx, ny := x+d[0], y+d[1]
				if !w.InBounds(nx, ny) {
					continue
				}
				sum += field[w.Index(nx, ny)]
				count++
			}
			if count == 0 {
				continue
			}
			avg := sum / count
			out[idx] = field[idx] + amount*(avg-field[idx])
		}
	}
	return out
}

// advect performs a simple semi-Lagrangian upwind sample: the value at each
// tile is pulled from the nearest in-bounds neighbor opposite the wind
// vector, blended in proportion to wind magnitude.
func advect(w *world.World, field []float64, wind Wind) []float64 {
	out := make([]float64, len(field))
	copy(out, field)
	mag := math.Hypot(wind.DX, wind.DY)
	if mag <= 1e-9 {
		return out
	}
	ux, uy := wind.DX/mag, wind.DY/mag
	blend := clamp(mag, 0, 1)
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			sx := x - int(math.Round(ux))
			sy := y - int(math.Round(uy))
			if !w.InBounds(sx, sy) {
				continue
			}
			idx := w.Index(x, y)
			upwind := field[w.Index(sx, sy)]
			out[idx] = field[idx]*(1-blend) + upwind*blend
		}
	}
	return out
}

// NoiseConfig mirrors a Manhattan-ball convolution: every land-use source
// tile's emission spreads to tiles within radius R with weight
// 1/(1+d*decay).
type NoiseConfig struct {
	Radius            int
	Decay             float64
	RoadEmission      float64
	CommercialEmission float64
	IndustrialEmission float64
	ParkSinkStrength  float64
	WaterSinkStrength float64
	Clamp             float64
}

// DefaultNoiseConfig gives a conventional radius-6 ball with gentle decay.
func DefaultNoiseConfig() NoiseConfig {
	return NoiseConfig{
		Radius:             6,
		Decay:              0.35,
		RoadEmission:       0.5,
		CommercialEmission: 0.4,
		IndustrialEmission: 0.7,
		ParkSinkStrength:   0.2,
		WaterSinkStrength:  0.15,
		Clamp:              1.0,
	}
}

// ComputeNoise convolves the land-use emission map with the Manhattan-ball
// kernel, then applies park/water sinks and a gentle ease curve for display
// stability (a smoothstep on the clamped value).
func ComputeNoise(w *world.World, cfg NoiseConfig) []float64 {
	n := w.Width * w.Height
	emission := make([]float64, n)
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			idx := w.Index(x, y)
			t := w.At(x, y)
			switch t.Overlay {
			case world.OverlayRoad:
				emission[idx] = cfg.RoadEmission
			case world.OverlayCommercial:
				emission[idx] = cfg.CommercialEmission * float64(t.Level)
			case world.OverlayIndustrial:
				emission[idx] = cfg.IndustrialEmission * float64(t.Level)
			}
		}
	}

	out := make([]float64, n)
	r := cfg.Radius
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			sum := 0.0
			for dy := -r; dy <= r; dy++ {
				for dx := -r; dx <= r; dx++ {
					d := absInt(dx) + absInt(dy)
					if d > r {
						continue
					}
					nx, ny := x+dx, y+dy
					if !w.InBounds(nx, ny) {
						continue
					}
					e := emission[w.Index(nx, ny)]
					if e <= 0 {
						continue
					}
					sum += e / (1 + float64(d)*cfg.Decay)
				}
			}
			idx := w.Index(x, y)
			t := w.At(x, y)
			sink := 0.0
			if t.Overlay == world.OverlayPark {
				sink = cfg.ParkSinkStrength
			}
			if t.Terrain == world.Water {
				sink = math.Max(sink, cfg.WaterSinkStrength)
			}
			v := clamp(sum*(1-sink), 0, cfg.Clamp)
			out[idx] = smoothstep(v)
		}
	}
	return out
}

// HeatConfig mirrors the air pipeline minus advection (heat spreads by
// diffusion alone); green/water act as sinks.
type HeatConfig struct {
	Passes            int
	Diffusion         float64
	Decay             float64
	RoadEmission      float64
	IndustrialEmission float64
	CommercialEmission float64
	ParkSinkStrength  float64
	WaterSinkStrength float64
	Clamp             float64
}

// DefaultHeatConfig gives conventional heat-island coefficients.
func DefaultHeatConfig() HeatConfig {
	return HeatConfig{
		Passes:             5,
		Diffusion:          0.22,
		Decay:              0.04,
		RoadEmission:       0.35,
		IndustrialEmission: 0.6,
		CommercialEmission: 0.3,
		ParkSinkStrength:   0.3,
		WaterSinkStrength:  0.4,
		Clamp:              1.0,
	}
}

// ComputeHeat runs diffusion-only transport (no advection) over a road/
// industrial/commercial emission map, with park/water sinks.
func ComputeHeat(w *world.World, cfg HeatConfig) []float64 {
	n := w.Width * w.Height
	field := make([]float64, n)
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			idx := w.Index(x, y)
			t := w.At(x, y)
			e := 0.0
			switch t.Overlay {
			case world.OverlayRoad:
				e = cfg.RoadEmission
			case world.OverlayIndustrial:
				e = cfg.IndustrialEmission * float64(t.Level)
			case world.OverlayCommercial:
				e = cfg.CommercialEmission * float64(t.Level)
			}
			sink := 0.0
			if t.Overlay == world.OverlayPark {
				sink = cfg.ParkSinkStrength
			}
			if t.Terrain == world.Water {
				sink = math.Max(sink, cfg.WaterSinkStrength)
			}
			field[idx] = clamp(e-sink, 0, cfg.Clamp)
		}
	}
	for p := 0; p < cfg.Passes; p++ {
		field = diffuse(w, field, cfg.Diffusion)
		for i := range field {
			field[i] = clamp(field[i]*(1-cfg.Decay), 0, cfg.Clamp)
		}
	}
	return field
}

func residentialMean(w *world.World, field []float64) float64 {
	var weighted, totalOccupants float64
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			t := w.At(x, y)
			if t.Overlay != world.OverlayResidential {
				continue
			}
			idx := w.Index(x, y)
			weighted += field[idx] * float64(t.Occupants)
			totalOccupants += float64(t.Occupants)
		}
	}
	if totalOccupants == 0 {
		return 0
	}
	return weighted / totalOccupants
}

func residentialFractionOver(w *world.World, field []float64, threshold float64) float64 {
	var over, total float64
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			t := w.At(x, y)
			if t.Overlay != world.OverlayResidential {
				continue
			}
			idx := w.Index(x, y)
			total++
			if field[idx] > threshold {
				over++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return over / total
}

func tilesFlat(w *world.World) []world.Tile { return w.Tiles }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func smoothstep(t float64) float64 {
	t = clamp(t, 0, 1)
	return t * t * (3 - 2*t)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// meanField is a small gonum-backed helper, exported as MeanField for
// pkg/simulation, to fold an environmental field into a single scalar without re-deriving
// the reduction at each call site.
func meanField(field []float64) float64 {
	if len(field) == 0 {
		return 0
	}
	return floats.Sum(field) / float64(len(field))
}

// MeanField exports meanField for cross-package use.
func MeanField(field []float64) float64 { return meanField(field) }
