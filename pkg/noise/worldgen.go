package noise

import (
	"github.com/dshills/procicity/pkg/pathfind"
	"github.com/dshills/procicity/pkg/rng"
	"github.com/dshills/procicity/pkg/rules"
	"github.com/dshills/procicity/pkg/world"
)

// GenerateConfig holds the shape parameters for procedural world generation
// that are not part of the simulation rule table (they only ever apply once,
// at generation time, unlike rules.Table's worldgen fields which are also
// meaningful to re-running generation with an overridden table).
type GenerateConfig struct {
	TerrainScale     float64 // FBm sample frequency; smaller = larger landmasses
	Hubs             int     // number of town-center seed points, >= 2
	TerrainOctaves   int
	TerrainLacunarity float64
	TerrainGain      float64
}

// DefaultGenerateConfig mirrors the reference ProcGenConfig defaults.
func DefaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		TerrainScale:      0.05,
		Hubs:              3,
		TerrainOctaves:    6,
		TerrainLacunarity: 2.0,
		TerrainGain:       0.5,
	}
}

// GenerateWorld builds a new world from terrain noise plus a deterministic
// hub-and-spoke road skeleton and roadside zone/park scattering (§3.1's
// "Created only via GenerateWorld(w,h,seed,cfg)"). Terrain height comes from
// FBm2D sampled relative to the grid center so that two different (w,h) at
// the same seed produce visually consistent landmasses; everything else
// (hub placement, road carving, zone scatter) is driven by a single
// rng.Stream seeded directly from seed, walked in a fixed order, matching
// the reference generator's single-RNG-instance design.
func GenerateWorld(width, height int, seed uint64, table rules.Table, cfg GenerateConfig) *world.World {
	w := world.New(width, height, seed)
	stream := rng.NewStream(seed)
	fbm := FBmParams{Octaves: cfg.TerrainOctaves, Lacunarity: cfg.TerrainLacunarity, Gain: cfg.TerrainGain}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			nx := (float64(x) - float64(width)*0.5) * cfg.TerrainScale
			ny := (float64(y) - float64(height)*0.5) * cfg.TerrainScale
			e := FBm2D(nx, ny, uint32(seed), fbm)

			t := w.At(x, y)
			t.Height = float32(e)
			t.Overlay = world.OverlayNone
			t.Level = 1
			t.Occupants = 0
			nibble := uint8(rng.HashCoords32(x, y, uint32(seed)) & 0x0F)
			t.Variation = (t.Variation &^ 0xF0) | (nibble << 4)

			switch {
			case e < table.WaterLevel:
				t.Terrain = world.Water
			case e < table.SandLevel:
				t.Terrain = world.Sand
			default:
				t.Terrain = world.Grass
			}
			_ = w.Set(x, y, t)
		}
	}

	hubs := cfg.Hubs
	if hubs < 2 {
		hubs = 2
	}
	hubPts := make([]pathfind.Point, 0, hubs)
	for i := 0; i < hubs; i++ {
		hubPts = append(hubPts, randomLand(stream, w))
	}

	for i := 1; i < len(hubPts); i++ {
		carveRoad(w, stream, hubPts[i-1], hubPts[i])
	}
	for i := 0; i < table.ExtraConnections; i++ {
		a := stream.IntRange(0, hubs-1)
		b := stream.IntRange(0, hubs-1)
		if a == b {
			continue
		}
		carveRoad(w, stream, hubPts[a], hubPts[b])
	}

	if len(hubPts) > 0 {
		edge := closestBuildableEdge(stream, w, hubPts[0])
		carveRoad(w, stream, hubPts[0], edge)
	}

	scatterZonesAndParks(w, stream, table)
	assignDistricts(w, hubPts)
	w.RecomputeRoadMasks()
	return w
}

// assignDistricts tags every tile with the index (mod 8, per §3's
// district ∈ [0,8) range) of its nearest hub, giving pkg/economy a stable
// spatial partition to scope per-district profiles over.
func assignDistricts(w *world.World, hubs []pathfind.Point) {
	if len(hubs) == 0 {
		return
	}
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			best, bestDist := 0, 1<<30
			for i, h := range hubs {
				d := absInt(x-h.X) + absInt(y-h.Y)
				if d < bestDist {
					bestDist = d
					best = i
				}
			}
			t := w.At(x, y)
			t.District = uint8(best % 8)
			_ = w.Set(x, y, t)
		}
	}
}

func randomLand(stream *rng.Stream, w *world.World) pathfind.Point {
	for tries := 0; tries < 10000; tries++ {
		x := stream.IntRange(0, w.Width-1)
		y := stream.IntRange(0, w.Height-1)
		if w.IsBuildable(x, y) {
			return pathfind.Point{X: x, Y: y}
		}
	}
	return pathfind.Point{X: w.Width / 2, Y: w.Height / 2}
}

// closestBuildableEdge scans the map border for the buildable tile nearest
// from, with a small deterministic (seeded) tie-break for variety.
func closestBuildableEdge(stream *rng.Stream, w *world.World, from pathfind.Point) pathfind.Point {
	best := from
	bestDist := 1 << 30
	consider := func(x, y int) {
		if !w.InBounds(x, y) || !w.IsBuildable(x, y) {
			return
		}
		d := absInt(x-from.X) + absInt(y-from.Y)
		if d < bestDist {
			bestDist = d
			best = pathfind.Point{X: x, Y: y}
		} else if d == bestDist && stream.Chance(0.25) {
			best = pathfind.Point{X: x, Y: y}
		}
	}
	for x := 0; x < w.Width; x++ {
		consider(x, 0)
		if w.Height > 1 {
			consider(x, w.Height-1)
		}
	}
	for y := 1; y < w.Height-1; y++ {
		consider(0, y)
		if w.Width > 1 {
			consider(w.Width-1, y)
		}
	}
	return best
}

// carveRoad routes a to b over buildable land with A*, falling back to a
// biased random walk (carveRoadWiggle) if no path exists (disconnected
// land masses).
func carveRoad(w *world.World, stream *rng.Stream, a, b pathfind.Point) {
	if path, ok := pathfind.AStarBuildableLand(w, a, b, false); ok {
		for _, p := range path {
			_ = w.SetRoad(p.X, p.Y, true)
		}
		return
	}
	carveRoadWiggle(w, stream, a, b)
}

func carveRoadWiggle(w *world.World, stream *rng.Stream, a, b pathfind.Point) {
	p := a
	maxSteps := w.Width * w.Height * 2
	_ = w.SetRoad(p.X, p.Y, true)

	for step := 0; step < maxSteps; step++ {
		if p == b {
			break
		}
		dx, dy := b.X-p.X, b.Y-p.Y
		sx, sy := sign(dx), sign(dy)

		if stream.Chance(0.08) {
			if stream.Chance(0.5) {
				if sx == 0 {
					sx = randomSign(stream)
				}
			} else if sy == 0 {
				sy = randomSign(stream)
			}
		}

		stepX := sx != 0
		if sx != 0 && sy != 0 {
			adx, ady := float64(absInt(dx)), float64(absInt(dy))
			t := adx / (adx + ady)
			stepX = stream.Float64() < t
		}

		tryStep := func(nx, ny int) bool {
			if !w.InBounds(nx, ny) || !w.IsBuildable(nx, ny) {
				return false
			}
			p = pathfind.Point{X: nx, Y: ny}
			_ = w.SetRoad(p.X, p.Y, true)
			return true
		}

		var moved bool
		if stepX {
			moved = tryStep(p.X+sx, p.Y) || (sy != 0 && tryStep(p.X, p.Y+sy))
		} else {
			moved = tryStep(p.X, p.Y+sy) || (sx != 0 && tryStep(p.X+sx, p.Y))
		}
		if moved {
			continue
		}

		for i := 0; i < 4; i++ {
			k := stream.IntRange(0, 3)
			nx, ny := p.X+world.CardinalOffsets[k][0], p.Y+world.CardinalOffsets[k][1]
			if tryStep(nx, ny) {
				moved = true
				break
			}
		}
		if !moved {
			break
		}
	}
}

// scatterZonesAndParks walks every road tile's land-adjacent neighbors and
// rolls park/zone placement per the rule table's worldgen chances.
func scatterZonesAndParks(w *world.World, stream *rng.Stream, table rules.Table) {
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			if w.At(x, y).Overlay != world.OverlayRoad {
				continue
			}
			for _, d := range world.CardinalOffsets {
				nx, ny := x+d[0], y+d[1]
				if !w.InBounds(nx, ny) || !w.IsEmptyLand(nx, ny) {
					continue
				}
				r := stream.Float64()
				if r < table.ParkChance {
					_ = w.SetOverlay(nx, ny, world.OverlayPark, 1)
					continue
				}
				if r < table.ParkChance+table.ZoneChance {
					zone := pickZone(stream, table)
					level := uint8(1)
					if stream.Chance(table.ZoneLevel2Chance) {
						level = 2
					}
					if stream.Chance(table.ZoneLevel3Chance) {
						level = 3
					}
					_ = w.SetOverlay(nx, ny, zone, level)
				}
			}
		}
	}
}

func pickZone(stream *rng.Stream, table rules.Table) world.Overlay {
	z := stream.Float64()
	switch {
	case z < table.ZoneResidentialW:
		return world.OverlayResidential
	case z < table.ZoneResidentialW+table.ZoneCommercialW:
		return world.OverlayCommercial
	default:
		return world.OverlayIndustrial
	}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func randomSign(stream *rng.Stream) int {
	if stream.Chance(0.5) {
		return 1
	}
	return -1
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
