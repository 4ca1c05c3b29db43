// Package builder implements the deterministic autonomous "city bot" (L13,
// §4.14): a headless agent that performs a bounded set of edits — roads,
// zones, parks, road-class upgrades — then advances the simulator by one
// day, repeating for N simulated days. Every decision is a pure function of
// (world, rule table, day), so the same config and seed reproduce the same
// city byte-for-byte.
package builder

import (
	"sort"

	"github.com/dshills/procicity/pkg/optimize"
	"github.com/dshills/procicity/pkg/pathfind"
	"github.com/dshills/procicity/pkg/roadgraph"
	"github.com/dshills/procicity/pkg/rng"
	"github.com/dshills/procicity/pkg/rules"
	"github.com/dshills/procicity/pkg/simulation"
	"github.com/dshills/procicity/pkg/traffic"
	"github.com/dshills/procicity/pkg/world"
)

// Config mirrors the reference AutoBuildConfig. Resilience-bypass planning
// and the land-value recalculation cadence are not ported: this engine has
// no land-value field and no cut-edge/articulation-point graph algorithm to
// drive a bypass objective (see DESIGN.md).
type Config struct {
	ZonesPerDay         int
	ZoneClusterMaxTiles int

	RoadsPerDay      int
	RoadLevel        rules.RoadClass
	UseRoadPlanner   bool
	MaxRoadSpurLength int

	ParksPerDay      int
	UseParkOptimizer bool
	ParkPerZoneTiles int

	AutoUpgradeRoads           bool
	CongestionUpgradeThreshold float64
	RoadUpgradesPerDay         int

	RespectOutsideConnection bool
	EnsureOutsideConnection  bool

	MinMoneyReserve int

	RoadTileCost int
	ZoneTileCost int
	ParkTileCost int
}

// DefaultConfig mirrors the reference defaults (AutoBuild.hpp), scaled to
// this engine's Money unit (construction costs are a small multiple of the
// per-tile daily maintenance costs in simulation.DefaultConfig).
func DefaultConfig() Config {
	return Config{
		ZonesPerDay:         3,
		ZoneClusterMaxTiles: 4,

		RoadsPerDay:       1,
		RoadLevel:         rules.Street,
		UseRoadPlanner:    true,
		MaxRoadSpurLength: 7,

		ParksPerDay:      1,
		UseParkOptimizer: true,
		ParkPerZoneTiles: 18,

		AutoUpgradeRoads:           true,
		CongestionUpgradeThreshold: 0.25,
		RoadUpgradesPerDay:         2,

		RespectOutsideConnection: true,
		EnsureOutsideConnection:  true,

		MinMoneyReserve: 15,

		RoadTileCost: 2,
		ZoneTileCost: 1,
		ParkTileCost: 3,
	}
}

// Report mirrors the reference AutoBuildReport.
type Report struct {
	DaysRequested int
	DaysSimulated int

	RoadsBuilt    int
	RoadsUpgraded int
	ZonesBuilt    int
	ParksBuilt    int

	FailedBuilds int
}

// Run performs edits for each of days simulated days, calling sim.StepOnce
// after each day's edits, and returns the cumulative report plus the daily
// Stats snapshots (mirrors the reference ScriptRunner::tick behavior of
// collecting one Stats per day).
func Run(w *world.World, sim *simulation.Simulator, cfg Config, days int) (Report, []world.Stats) {
	report := Report{DaysRequested: days}
	dailyStats := make([]world.Stats, 0, days)

	for i := 0; i < days; i++ {
		b := &bot{world: w, table: sim.Rules, cfg: cfg, day: sim.Day(), report: &report}
		b.run()
		dailyStats = append(dailyStats, sim.StepOnce())
		report.DaysSimulated++
	}
	return report, dailyStats
}

type bot struct {
	world  *world.World
	table  rules.Table
	cfg    Config
	day    int
	report *Report
}

func (b *bot) run() {
	if b.cfg.RespectOutsideConnection && b.cfg.EnsureOutsideConnection {
		b.ensureOutsideConnection()
	}
	for i := 0; i < b.cfg.RoadsPerDay; i++ {
		b.extendRoad()
	}
	for i := 0; i < b.cfg.ZonesPerDay; i++ {
		b.placeZoneCluster(i)
	}
	if b.needsPark() {
		for i := 0; i < b.cfg.ParksPerDay; i++ {
			b.placePark()
		}
	}
	if b.cfg.AutoUpgradeRoads {
		b.upgradeCongestedRoads()
	}
}

// afford reports whether cost can be spent without dropping the
// world's money balance below MinMoneyReserve, and if so, spends it.
func (b *bot) afford(cost int) bool {
	if b.world.Stats.Money-cost < b.cfg.MinMoneyReserve {
		return false
	}
	b.world.Stats.Money -= cost
	return true
}

// ensureOutsideConnection builds a straight-line spur from the road network
// (or, if no road exists yet, from the map center) toward the nearest map
// edge, stopping as soon as any road tile touches the edge.
func (b *bot) ensureOutsideConnection() {
	mask := roadgraph.OutsideConnectionMask(b.world)
	for _, v := range mask {
		if v != 0 {
			return // already connected
		}
	}

	start := b.anyRoadTile()
	if start == nil {
		cx, cy := b.world.Width/2, b.world.Height/2
		start = &pathfind.Point{X: cx, Y: cy}
	}
	goal := b.nearestEdgePoint(*start)
	b.buildSpur(*start, goal)
}

func (b *bot) anyRoadTile() *pathfind.Point {
	for y := 0; y < b.world.Height; y++ {
		for x := 0; x < b.world.Width; x++ {
			if b.world.At(x, y).Overlay == world.OverlayRoad {
				p := pathfind.Point{X: x, Y: y}
				return &p
			}
		}
	}
	return nil
}

func (b *bot) nearestEdgePoint(from pathfind.Point) pathfind.Point {
	best := from
	bestDist := -1
	candidates := []pathfind.Point{
		{X: 0, Y: from.Y}, {X: b.world.Width - 1, Y: from.Y},
		{X: from.X, Y: 0}, {X: from.X, Y: b.world.Height - 1},
	}
	for _, c := range candidates {
		d := absInt(c.X-from.X) + absInt(c.Y-from.Y)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

// extendRoad grows the road network by one spur from an existing frontier
// road tile (a road tile with a buildable-land neighbor) out toward open
// land, capped at MaxRoadSpurLength tiles.
func (b *bot) extendRoad() {
	frontier := b.findFrontierRoad()
	if frontier == nil {
		return
	}
	target := b.spurTarget(*frontier)
	b.buildSpur(*frontier, target)
}

func (b *bot) findFrontierRoad() *pathfind.Point {
	for y := 0; y < b.world.Height; y++ {
		for x := 0; x < b.world.Width; x++ {
			if b.world.At(x, y).Overlay != world.OverlayRoad {
				continue
			}
			for _, d := range world.CardinalOffsets {
				nx, ny := x+d[0], y+d[1]
				if b.world.InBounds(nx, ny) && b.world.IsEmptyLand(nx, ny) {
					p := pathfind.Point{X: x, Y: y}
					return &p
				}
			}
		}
	}
	return nil
}

func (b *bot) spurTarget(from pathfind.Point) pathfind.Point {
	best := from
	bestLen := -1
	for _, d := range world.CardinalOffsets {
		x, y := from.X, from.Y
		steps := 0
		for steps < b.cfg.MaxRoadSpurLength {
			nx, ny := x+d[0], y+d[1]
			if !b.world.InBounds(nx, ny) || !b.world.IsEmptyLand(nx, ny) {
				break
			}
			x, y = nx, ny
			steps++
		}
		if steps > bestLen {
			bestLen = steps
			best = pathfind.Point{X: x, Y: y}
		}
	}
	return best
}

// buildSpur lays road tiles from->to. When UseRoadPlanner is set, it routes
// via pathfind.AStarBuildableLand (avoiding water, since bridges are out of
// scope for the bot); otherwise it walks the Manhattan L-shaped path
// directly. The path is truncated to MaxRoadSpurLength tiles either way.
func (b *bot) buildSpur(from, to pathfind.Point) {
	var path []pathfind.Point
	if b.cfg.UseRoadPlanner {
		if p, ok := pathfind.AStarBuildableLand(b.world, from, to, true); ok {
			path = p
		}
	}
	if path == nil {
		path = manhattanPath(from, to)
	}
	if len(path) > b.cfg.MaxRoadSpurLength {
		path = path[:b.cfg.MaxRoadSpurLength]
	}
	for _, p := range path {
		if b.world.At(p.X, p.Y).Overlay == world.OverlayRoad {
			continue
		}
		if b.world.At(p.X, p.Y).Terrain == world.Water {
			break // no bridges
		}
		if !b.afford(b.cfg.RoadTileCost) {
			b.report.FailedBuilds++
			return
		}
		if err := b.world.SetRoad(p.X, p.Y, true); err != nil {
			b.report.FailedBuilds++
			continue
		}
		if err := b.world.SetRoadClass(p.X, p.Y, b.cfg.RoadLevel); err != nil {
			b.report.FailedBuilds++
			continue
		}
		b.report.RoadsBuilt++
	}
	b.world.RecomputeRoadMasks()
}

func manhattanPath(from, to pathfind.Point) []pathfind.Point {
	var path []pathfind.Point
	x, y := from.X, from.Y
	for x != to.X {
		if x < to.X {
			x++
		} else {
			x--
		}
		path = append(path, pathfind.Point{X: x, Y: y})
	}
	for y != to.Y {
		if y < to.Y {
			y++
		} else {
			y--
		}
		path = append(path, pathfind.Point{X: x, Y: y})
	}
	return path
}

// placeZoneCluster picks a road-adjacent buildable seed tile and grows a
// connected block of up to ZoneClusterMaxTiles tiles of one zone kind,
// chosen by the rule table's residential/commercial/industrial weights via
// a per-day, per-cluster derived RNG substream.
func (b *bot) placeZoneCluster(clusterIndex int) {
	seed := b.findZoneSeed()
	if seed == nil {
		return
	}
	stream := rng.Derive(b.world.Seed, "builder.zones", b.day*1000+clusterIndex)
	overlay := b.pickZoneKind(stream)

	queue := []pathfind.Point{*seed}
	placed := 0
	visited := map[pathfind.Point]bool{}
	for len(queue) > 0 && placed < b.cfg.ZoneClusterMaxTiles {
		p := queue[0]
		queue = queue[1:]
		if visited[p] {
			continue
		}
		visited[p] = true
		if !b.world.IsEmptyLand(p.X, p.Y) {
			continue
		}
		if !b.afford(b.cfg.ZoneTileCost) {
			b.report.FailedBuilds++
			return
		}
		if err := b.world.SetOverlay(p.X, p.Y, overlay, 1); err != nil {
			b.report.FailedBuilds++
			continue
		}
		b.report.ZonesBuilt++
		placed++
		for _, d := range world.CardinalOffsets {
			np := pathfind.Point{X: p.X + d[0], Y: p.Y + d[1]}
			if b.world.InBounds(np.X, np.Y) && !visited[np] {
				queue = append(queue, np)
			}
		}
	}
}

func (b *bot) pickZoneKind(stream *rng.Stream) world.Overlay {
	weights := []float64{b.table.ZoneResidentialW, b.table.ZoneCommercialW, b.table.ZoneIndustrialW}
	switch stream.WeightedChoice(weights) {
	case 1:
		return world.OverlayCommercial
	case 2:
		return world.OverlayIndustrial
	default:
		return world.OverlayResidential
	}
}

func (b *bot) findZoneSeed() *pathfind.Point {
	outsideMask := b.outsideMaskOrNil()
	for y := 0; y < b.world.Height; y++ {
		for x := 0; x < b.world.Width; x++ {
			if !b.world.IsEmptyLand(x, y) {
				continue
			}
			road := b.world.SourceRoad(x, y)
			if road < 0 {
				continue
			}
			if outsideMask != nil && outsideMask[road] == 0 {
				continue
			}
			p := pathfind.Point{X: x, Y: y}
			return &p
		}
	}
	return nil
}

func (b *bot) outsideMaskOrNil() []uint8 {
	if !b.cfg.RespectOutsideConnection {
		return nil
	}
	return roadgraph.OutsideConnectionMask(b.world)
}

// needsPark reports whether the current zone-tile count exceeds
// ParkPerZoneTiles times the existing park count, i.e. parks are under the
// target ratio.
func (b *bot) needsPark() bool {
	zones, parks := 0, 0
	for _, t := range b.world.Tiles {
		if t.Overlay.IsZone() {
			zones++
		}
		if t.Overlay == world.OverlayPark {
			parks++
		}
	}
	if b.cfg.ParkPerZoneTiles <= 0 {
		return true
	}
	return zones > parks*b.cfg.ParkPerZoneTiles
}

func (b *bot) placePark() {
	if b.cfg.UseParkOptimizer {
		picks := optimize.PlaceParksTiles(b.world, b.table, optimize.ParkConfig{MaxParks: 1})
		for _, p := range picks {
			b.commitPark(p.X, p.Y)
		}
		return
	}
	seed := b.findZoneSeed()
	if seed == nil {
		return
	}
	for _, d := range world.CardinalOffsets {
		nx, ny := seed.X+d[0], seed.Y+d[1]
		if b.world.InBounds(nx, ny) && b.world.IsEmptyLand(nx, ny) {
			b.commitPark(nx, ny)
			return
		}
	}
}

func (b *bot) commitPark(x, y int) {
	if !b.afford(b.cfg.ParkTileCost) {
		b.report.FailedBuilds++
		return
	}
	if err := b.world.SetOverlay(x, y, world.OverlayPark, 1); err != nil {
		b.report.FailedBuilds++
		return
	}
	b.report.ParksBuilt++
}

// upgradeCongestedRoads recomputes commute+goods flow, ranks road tiles by
// volume/capacity ratio, and upgrades the RoadUpgradesPerDay most congested
// tiles above CongestionUpgradeThreshold to the next class (Street ->
// Avenue -> Highway). Ties break on flat index for determinism.
func (b *bot) upgradeCongestedRoads() {
	allowed := b.outsideMaskOrNil()
	res := traffic.Assign(b.world, b.table, traffic.DefaultConfig(), allowed)

	type candidate struct {
		idx   int
		ratio float64
	}
	var candidates []candidate
	for y := 0; y < b.world.Height; y++ {
		for x := 0; x < b.world.Width; x++ {
			t := b.world.At(x, y)
			if t.Overlay != world.OverlayRoad || t.RoadClass == rules.Highway {
				continue
			}
			idx := b.world.Index(x, y)
			cap := roadgraph.Capacity(b.table, t.RoadClass)
			if cap <= 0 {
				continue
			}
			flow := float64(res.CommuteTraffic[idx] + res.GoodsTraffic[idx])
			ratio := flow / cap
			if ratio >= b.cfg.CongestionUpgradeThreshold {
				candidates = append(candidates, candidate{idx: idx, ratio: ratio})
			}
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].ratio != candidates[j].ratio {
			return candidates[i].ratio > candidates[j].ratio
		}
		return candidates[i].idx < candidates[j].idx
	})

	for i := 0; i < len(candidates) && i < b.cfg.RoadUpgradesPerDay; i++ {
		idx := candidates[i].idx
		x, y := idx%b.world.Width, idx/b.world.Width
		next := nextRoadClass(b.world.At(x, y).RoadClass)
		if !b.afford(b.cfg.RoadTileCost) {
			b.report.FailedBuilds++
			continue
		}
		if err := b.world.SetRoadClass(x, y, next); err != nil {
			b.report.FailedBuilds++
			continue
		}
		b.report.RoadsUpgraded++
	}
}

func nextRoadClass(c rules.RoadClass) rules.RoadClass {
	switch c {
	case rules.Street:
		return rules.Avenue
	default:
		return rules.Highway
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
