// Package isochrone builds per-road-tile accessibility fields (multi-source
// Dijkstra or BFS from a source set) and maps them onto the whole tile grid
// via pkg/zoneaccess (§4.7). The two steps keep their own config structs —
// RoadIsochroneConfig for the road-grid sweep, TileAccessCostConfig for the
// tile-mapping step — since call sites commonly reuse one RoadIsochroneField
// under several different TileAccessCostConfigs.
package isochrone

import (
	"github.com/dshills/procicity/pkg/pathfind"
	"github.com/dshills/procicity/pkg/roadgraph"
	"github.com/dshills/procicity/pkg/rules"
	"github.com/dshills/procicity/pkg/world"
	"github.com/dshills/procicity/pkg/zoneaccess"
)

// WeightMode selects whether the road-grid sweep counts edges or
// travel-time.
type WeightMode uint8

const (
	WeightSteps WeightMode = iota
	WeightTravelTime
)

// RoadIsochroneConfig configures BuildRoadIsochroneField.
type RoadIsochroneConfig struct {
	RequireOutsideConnection bool
	WeightMode               WeightMode
	ComputeOwner             bool
}

// RoadIsochroneField is the per-road-tile accessibility result: CostMilli
// and Steps are -1 for unreachable or non-road tiles; Owner is -1 unless
// cfg.ComputeOwner was set.
type RoadIsochroneField struct {
	Width, Height int
	CostMilli     []int
	Steps         []int
	Owner         []int
}

// BuildRoadIsochroneField runs a multi-source Dijkstra (WeightTravelTime) or
// BFS (WeightSteps) from sourceRoadIdx over the road grid. outsideMask, if
// cfg.RequireOutsideConnection is true, restricts both the eligible sources
// and the reachable frontier to tiles marked outside-connected; pass nil
// when the mask is unavailable (traversal then proceeds unrestricted).
// extraCostMilli is an optional per-tile congestion surcharge keyed by flat
// index, applied only in WeightTravelTime mode.
func BuildRoadIsochroneField(w *world.World, table rules.Table, sourceRoadIdx []int, cfg RoadIsochroneConfig, outsideMask []uint8, extraCostMilli pathfind.ExtraCost) RoadIsochroneField {
	out := RoadIsochroneField{Width: w.Width, Height: w.Height}
	n := w.Width * w.Height
	out.CostMilli = make([]int, n)
	out.Steps = make([]int, n)
	out.Owner = make([]int, n)
	for i := 0; i < n; i++ {
		out.CostMilli[i] = -1
		out.Steps[i] = -1
		out.Owner[i] = -1
	}
	if w.Width <= 0 || w.Height <= 0 {
		return out
	}

	maskOK := cfg.RequireOutsideConnection && outsideMask != nil && len(outsideMask) == n

	sources := make([]pathfind.Point, 0, len(sourceRoadIdx))
	for _, idx := range sourceRoadIdx {
		if idx < 0 || idx >= n {
			continue
		}
		if maskOK && outsideMask[idx] == 0 {
			continue
		}
		sources = append(sources, pathfind.Point{X: idx % w.Width, Y: idx / w.Width})
	}
	if len(sources) == 0 {
		return out
	}

	var allowed []uint8
	if maskOK {
		allowed = outsideMask
	}

	var cf *pathfind.CostField
	if cfg.WeightMode == WeightTravelTime {
		var extra pathfind.ExtraCost
		if extraCostMilli != nil {
			extra = extraCostMilli
		}
		cf = pathfind.MultiSourceDijkstra(w, table, sources, extra, allowed)
	} else {
		cf = pathfind.MultiSourceBFS(w, sources, allowed)
	}

	copy(out.CostMilli, cf.Cost)
	copy(out.Steps, cf.Steps)
	if cfg.ComputeOwner {
		copy(out.Owner, cf.Owner)
	}
	return out
}

// TileAccessCostConfig configures BuildTileAccessCostField.
type TileAccessCostConfig struct {
	IncludeRoadTiles              bool
	IncludeZones                  bool
	IncludeNonZonesAdjacentToRoad bool
	IncludeWater                  bool
	AccessStepCostMilli           int
	UseZoneAccessMap              bool
}

// DefaultTileAccessCostConfig mirrors the reference defaults: every
// category but water included, zone access routed through ZoneAccessMap,
// zero extra walk penalty.
func DefaultTileAccessCostConfig() TileAccessCostConfig {
	return TileAccessCostConfig{
		IncludeRoadTiles:              true,
		IncludeZones:                  true,
		IncludeNonZonesAdjacentToRoad: true,
		IncludeWater:                  false,
		AccessStepCostMilli:           0,
		UseZoneAccessMap:              true,
	}
}

// BuildTileAccessCostField maps a RoadIsochroneField onto every tile in w:
// road tiles copy their own cost; zone tiles use ZoneAccessMap (or, if
// cfg.UseZoneAccessMap is false, the cheapest adjacent road) to borrow their
// access road's cost; other non-water tiles optionally take the minimum
// cost among adjacent road tiles. Water stays -1 unless cfg.IncludeWater.
func BuildTileAccessCostField(w *world.World, roadField RoadIsochroneField, cfg TileAccessCostConfig, precomputedZoneAccess *zoneaccess.Map) []int {
	n := w.Width * w.Height
	out := make([]int, n)
	for i := range out {
		out[i] = -1
	}
	if w.Width <= 0 || w.Height <= 0 {
		return out
	}

	var za zoneaccess.Map
	if cfg.UseZoneAccessMap && cfg.IncludeZones {
		if precomputedZoneAccess != nil {
			za = *precomputedZoneAccess
		} else {
			za = zoneaccess.Build(w, nil)
		}
	}

	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			idx := w.Index(x, y)
			t := w.At(x, y)

			if t.Terrain == world.Water && !cfg.IncludeWater {
				continue
			}

			switch {
			case t.Overlay == world.OverlayRoad:
				if cfg.IncludeRoadTiles {
					out[idx] = roadField.CostMilli[idx]
				}
			case t.Overlay.IsZone():
				if !cfg.IncludeZones {
					continue
				}
				out[idx] = zoneCost(w, roadField, cfg, za, x, y, idx)
			default:
				if !cfg.IncludeNonZonesAdjacentToRoad {
					continue
				}
				out[idx] = nearestRoadCost(w, roadField, cfg, x, y)
			}
		}
	}
	return out
}

func zoneCost(w *world.World, roadField RoadIsochroneField, cfg TileAccessCostConfig, za zoneaccess.Map, x, y, idx int) int {
	if cfg.UseZoneAccessMap && len(za.RoadIndex) == len(roadField.CostMilli) {
		roadIdx := za.RoadIndex[idx]
		if roadIdx < 0 {
			return -1
		}
		c := roadField.CostMilli[roadIdx]
		if c < 0 {
			return -1
		}
		return c + cfg.AccessStepCostMilli
	}
	return nearestRoadCost(w, roadField, cfg, x, y)
}

func nearestRoadCost(w *world.World, roadField RoadIsochroneField, cfg TileAccessCostConfig, x, y int) int {
	best := -1
	for _, d := range world.CardinalOffsets {
		nx, ny := x+d[0], y+d[1]
		if !roadgraph.IsRoad(w, nx, ny) {
			continue
		}
		c := roadField.CostMilli[w.Index(nx, ny)]
		if c < 0 {
			continue
		}
		if best == -1 || c < best {
			best = c
		}
	}
	if best == -1 {
		return -1
	}
	return best + cfg.AccessStepCostMilli
}
