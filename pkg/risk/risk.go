// Package risk computes the three hazard fields (L10, §4.11): fire risk,
// crime risk, and traffic safety exposure. Fire and crime risk are reduced
// by the relevant station's coverage, a linear falloff over road steps
// derived here from pkg/isochrone rather than from a catchment model;
// traffic safety uses no service coverage.
package risk

import (
	"math"

	"github.com/dshills/procicity/pkg/isochrone"
	"github.com/dshills/procicity/pkg/rules"
	"github.com/dshills/procicity/pkg/world"
)

// FireConfig mirrors the reference fire-risk coefficients.
type FireConfig struct {
	BaseFlammability     map[world.Overlay]float64
	OccupancyWeight      float64
	LevelWeight          float64
	DiffusionPasses      int
	Diffusion            float64
	ResponseRadiusSteps  int
}

// DefaultFireConfig gives conventional per-overlay base flammability.
func DefaultFireConfig() FireConfig {
	return FireConfig{
		BaseFlammability: map[world.Overlay]float64{
			world.OverlayResidential: 0.35,
			world.OverlayCommercial:  0.3,
			world.OverlayIndustrial:  0.55,
		},
		OccupancyWeight:     0.015,
		LevelWeight:         0.1,
		DiffusionPasses:     2,
		Diffusion:           0.2,
		ResponseRadiusSteps: 14,
	}
}

// ComputeFire returns the [0,1] fire-risk field: base flammability scaled
// by occupancy/level, diffused for spatial smoothing, then mitigated by
// fire-station coverage (1 - coverage01, where coverage is 1 at the
// station's access road and falls linearly to 0 at ResponseRadiusSteps).
func ComputeFire(w *world.World, table rules.Table, cfg FireConfig) []float64 {
	n := w.Width * w.Height
	field := make([]float64, n)
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			t := w.At(x, y)
			base, ok := cfg.BaseFlammability[t.Overlay]
			if !ok {
				continue
			}
			v := base * (1 + float64(t.Occupants)*cfg.OccupancyWeight) * (1 + float64(t.Level)*cfg.LevelWeight)
			field[w.Index(x, y)] = v
		}
	}
	field = diffuseN(w, field, cfg.Diffusion, cfg.DiffusionPasses)

	coverage := coverage01(w, table, world.OverlayFireStation, cfg.ResponseRadiusSteps)
	for i := range field {
		field[i] = clamp01(field[i] * (1 - coverage[i]))
	}
	return field
}

// CrimeConfig mirrors the reference crime-risk coefficients.
type CrimeConfig struct {
	BaseRisk            map[world.Overlay]float64
	DensityWeight       float64 // applied to sqrt(occupants)
	OpportunityWeight   float64 // job-access shortfall contribution
	TrafficWeight       float64
	NoiseWeight         float64
	SuppressionStrength float64 // [0,1] max fraction police access can remove
	RiskCurveExponent   float64
	ResponseRadiusSteps int
}

// DefaultCrimeConfig gives conventional coefficients.
func DefaultCrimeConfig() CrimeConfig {
	return CrimeConfig{
		BaseRisk: map[world.Overlay]float64{
			world.OverlayResidential: 0.2,
			world.OverlayCommercial:  0.28,
			world.OverlayIndustrial:  0.22,
		},
		DensityWeight:       0.08,
		OpportunityWeight:   0.3,
		TrafficWeight:       0.0004,
		NoiseWeight:         0.15,
		SuppressionStrength: 0.7,
		RiskCurveExponent:   1.2,
		ResponseRadiusSteps: 16,
	}
}

// ComputeCrime folds base-overlay risk, sqrt occupant density, a job-access
// shortfall term (1 - jobAccess01), traffic/goods flow, and noise exposure
// into a single score, suppressed by police coverage and curved by
// RiskCurveExponent.
func ComputeCrime(w *world.World, table rules.Table, cfg CrimeConfig, jobAccess01, noiseField []float64, commuteTraffic, goodsTraffic []int) []float64 {
	n := w.Width * w.Height
	field := make([]float64, n)
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			idx := w.Index(x, y)
			t := w.At(x, y)
			base, ok := cfg.BaseRisk[t.Overlay]
			if !ok {
				continue
			}
			v := base
			v += math.Sqrt(float64(t.Occupants)) * cfg.DensityWeight
			if jobAccess01 != nil && idx < len(jobAccess01) {
				v += (1 - jobAccess01[idx]) * cfg.OpportunityWeight
			}
			flow := 0
			if commuteTraffic != nil {
				flow += commuteTraffic[idx]
			}
			if goodsTraffic != nil {
				flow += goodsTraffic[idx]
			}
			v += float64(flow) * cfg.TrafficWeight
			if noiseField != nil && idx < len(noiseField) {
				v += noiseField[idx] * cfg.NoiseWeight
			}
			field[idx] = v
		}
	}

	coverage := coverage01(w, table, world.OverlayPoliceStation, cfg.ResponseRadiusSteps)
	for i := range field {
		suppressed := field[i] * (1 - cfg.SuppressionStrength*coverage[i])
		field[i] = clamp01(math.Pow(clamp01(suppressed), cfg.RiskCurveExponent))
	}
	return field
}

// TrafficSafetyConfig mirrors TrafficSafetyModelSettings's reference shape
// for converting road exposure into a residential happiness penalty.
type TrafficSafetyConfig struct {
	HappinessPenaltyScale float64
	MaxHappinessPenalty   float64
	ClassExposureWeight   map[rules.RoadClass]float64
}

// DefaultTrafficSafetyConfig mirrors the reference defaults
// (happinessPenaltyScale=0.07, maxHappinessPenalty=0.10).
func DefaultTrafficSafetyConfig() TrafficSafetyConfig {
	return TrafficSafetyConfig{
		HappinessPenaltyScale: 0.07,
		MaxHappinessPenalty:   0.10,
		ClassExposureWeight: map[rules.RoadClass]float64{
			rules.Street:  0.6,
			rules.Avenue:  0.85,
			rules.Highway: 1.0,
		},
	}
}

// ComputeTrafficSafety derives a per-road-tile exposure score from commute/
// goods flow and road class, then gives every zone tile a happiness penalty
// from the summed exposure of its cardinal-adjacent road tiles, scaled by
// HappinessPenaltyScale/1000 and capped at MaxHappinessPenalty. The
// ZoneAccessMap is not consulted: a zone tile with no adjacent road gets no
// penalty. It returns both the raw road exposure and the per-tile penalty.
func ComputeTrafficSafety(w *world.World, table rules.Table, cfg TrafficSafetyConfig, commuteTraffic, goodsTraffic []int) (roadExposure []float64, happinessPenalty []float64) {
	n := w.Width * w.Height
	roadExposure = make([]float64, n)
	happinessPenalty = make([]float64, n)

	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			if w.At(x, y).Overlay != world.OverlayRoad {
				continue
			}
			idx := w.Index(x, y)
			t := w.At(x, y)
			flow := 0
			if commuteTraffic != nil {
				flow += commuteTraffic[idx]
			}
			if goodsTraffic != nil {
				flow += goodsTraffic[idx]
			}
			weight := cfg.ClassExposureWeight[t.RoadClass]
			roadExposure[idx] = float64(flow) * weight
		}
	}

	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			t := w.At(x, y)
			if !t.Overlay.IsZone() {
				continue
			}
			idx := w.Index(x, y)
			adj := 0.0
			for _, d := range world.CardinalOffsets {
				nx, ny := x+d[0], y+d[1]
				if !w.InBounds(nx, ny) {
					continue
				}
				adj += roadExposure[w.Index(nx, ny)]
			}
			penalty := clamp01(adj * cfg.HappinessPenaltyScale / 1000)
			if penalty > cfg.MaxHappinessPenalty {
				penalty = cfg.MaxHappinessPenalty
			}
			happinessPenalty[idx] = penalty
		}
	}
	return roadExposure, happinessPenalty
}

// coverage01 computes a [0,1] service-coverage field from isochrone step
// cost relative to radiusSteps: 1 at the facility, linearly falling to 0 at
// or beyond radiusSteps, 0 where unreachable.
func coverage01(w *world.World, table rules.Table, overlay world.Overlay, radiusSteps int) []float64 {
	n := w.Width * w.Height
	out := make([]float64, n)
	if radiusSteps <= 0 {
		return out
	}
	var sources []int
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			if w.At(x, y).Overlay != overlay {
				continue
			}
			idx := w.SourceRoad(x, y)
			if idx >= 0 {
				sources = append(sources, idx)
			}
		}
	}
	if len(sources) == 0 {
		return out
	}
	field := isochrone.BuildRoadIsochroneField(w, table, sources, isochrone.RoadIsochroneConfig{WeightMode: isochrone.WeightSteps}, nil, nil)
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			idx := w.Index(x, y)
			steps := nearestRoadSteps(w, field, x, y)
			if steps < 0 {
				continue
			}
			out[idx] = clamp01(1 - float64(steps)/float64(radiusSteps))
		}
	}
	return out
}

func nearestRoadSteps(w *world.World, field isochrone.RoadIsochroneField, x, y int) int {
	t := w.At(x, y)
	if t.Overlay == world.OverlayRoad {
		return field.Steps[w.Index(x, y)]
	}
	best := -1
	for _, d := range world.CardinalOffsets {
		nx, ny := x+d[0], y+d[1]
		if !w.InBounds(nx, ny) || w.At(nx, ny).Overlay != world.OverlayRoad {
			continue
		}
		s := field.Steps[w.Index(nx, ny)]
		if s < 0 {
			continue
		}
		if best < 0 || s < best {
			best = s
		}
	}
	return best
}

func diffuseN(w *world.World, field []float64, amount float64, passes int) []float64 {
	out := field
	for p := 0; p < passes; p++ {
		next := make([]float64, len(out))
		copy(next, out)
		for y := 0; y < w.Height; y++ {
			for x := 0; x < w.Width; x++ {
				idx := w.Index(x, y)
				sum, count := 0.0, 0.0
				for _, d := range world.CardinalOffsets {
					nx, ny := x+d[0], y+d[1]
					if !w.InBounds(nx, ny) {
						continue
					}
					sum += out[w.Index(nx, ny)]
					count++
				}
				if count == 0 {
					continue
				}
				next[idx] = out[idx] + amount*(sum/count-out[idx])
			}
		}
		out = next
	}
	return out
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
