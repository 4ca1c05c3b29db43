// Package economy implements the macro economy snapshot (§4.14's economy
// snapshot component, "derived macro index + sector/district profiles, a
// pure function of day"). It holds no mutable state of its own: callers
// compute a snapshot for a given day and feed the resulting multipliers
// into whatever other systems want them (this engine does not currently
// wire it into the simulator tick, matching the reference's treatment of
// EconomyModelSettings as non-persistent, opt-in runtime tuning).
package economy

import (
	"math"

	"github.com/dshills/procicity/pkg/rng"
	"github.com/dshills/procicity/pkg/world"
)

// SectorKind enumerates the fixed set of economic sectors a generated
// Sector can be.
type SectorKind int

const (
	Agriculture SectorKind = iota
	Manufacturing
	Logistics
	Energy
	Tech
	Tourism
	Finance
	Construction
)

func (k SectorKind) String() string {
	switch k {
	case Agriculture:
		return "agriculture"
	case Manufacturing:
		return "manufacturing"
	case Logistics:
		return "logistics"
	case Energy:
		return "energy"
	case Tech:
		return "tech"
	case Tourism:
		return "tourism"
	case Finance:
		return "finance"
	case Construction:
		return "construction"
	default:
		return "tech"
	}
}

// EventKind enumerates the macro events that can be active on a given day.
type EventKind int

const (
	EventNone EventKind = iota
	EventRecession
	EventFuelSpike
	EventImportShock
	EventExportBoom
	EventTechBoom
	EventTourismSurge
)

func (k EventKind) String() string {
	switch k {
	case EventRecession:
		return "recession"
	case EventFuelSpike:
		return "fuel_spike"
	case EventImportShock:
		return "import_shock"
	case EventExportBoom:
		return "export_boom"
	case EventTechBoom:
		return "tech_boom"
	case EventTourismSurge:
		return "tourism_surge"
	default:
		return "none"
	}
}

// Sector is one generated economic sector participating in the snapshot.
type Sector struct {
	Kind               SectorKind
	Name               string
	IndustrialAffinity float64 // [0,1]
	CommercialAffinity float64 // [0,1]
	Volatility         float64 // [0,1]
}

// Event is a time-boxed macro shock affecting the whole city.
type Event struct {
	Kind         EventKind
	StartDay     int
	DurationDays int
	Severity     float64 // [0,1]
}

// DistrictCount mirrors the world's district ∈ [0,8) tag range.
const DistrictCount = 8

// DistrictProfile is the per-district economic summary consumed by other
// systems (taxes, goods supply/demand multipliers).
type DistrictProfile struct {
	DominantSector int // index into Snapshot.Sectors, -1 if the district has no zoned tiles
	Wealth         float64
	Productivity   float64

	TaxBaseMult          float64
	IndustrialSupplyMult float64
	CommercialDemandMult float64

	// NetTradeBalance is a minimal import/export summary scalar — positive
	// when the district's industrial capacity outweighs its commercial
	// demand (a net exporter), negative otherwise. This replaces a full
	// trade-routing subsystem: goods flow itself is computed once, by
	// pkg/traffic, and this is a read-only district-level lens on the same
	// tile composition (see SPEC_FULL.md §3).
	NetTradeBalance float64
}

// Snapshot is the full macro-economy state for one simulated day.
type Snapshot struct {
	Day int

	EconomyIndex float64 // ~1.0 baseline, macro-cycle modulated
	Inflation    float64 // [0, ~0.15], a happiness friction term
	CityWealth   float64 // [0,1]-ish aggregate proxy

	ActiveEvent         Event
	ActiveEventDaysLeft int

	Sectors   []Sector
	Districts [DistrictCount]DistrictProfile
}

// ModelSettings is non-persistent runtime tuning for the macro economy —
// deliberately not part of any save schema (matches the reference's
// EconomyModelSettings, and the same precedent already set for
// simulation.AirPollutionModelSettings et al.).
type ModelSettings struct {
	Enabled bool

	SeedSalt uint64 // lets two worlds of the same seed diverge economically

	SectorCount int // >= 1

	MacroPeriodDays float64 // typical 20..60

	MinEventDurationDays int
	MaxEventDurationDays int
	EventScanbackDays    int
}

// DefaultModelSettings mirrors the reference EconomyModelSettings defaults.
func DefaultModelSettings() ModelSettings {
	return ModelSettings{
		Enabled:              false,
		SeedSalt:             0,
		SectorCount:          6,
		MacroPeriodDays:      28.0,
		MinEventDurationDays: 3,
		MaxEventDurationDays: 8,
		EventScanbackDays:    16,
	}
}

// ComputeSnapshot derives the economy snapshot for day, as a pure function
// of (world, day, settings): two calls with identical inputs return
// identical output.
func ComputeSnapshot(w *world.World, day int, settings ModelSettings) Snapshot {
	snap := Snapshot{Day: day}
	if !settings.Enabled {
		snap.EconomyIndex = 1.0
		snap.CityWealth = 0.5
		for i := range snap.Districts {
			snap.Districts[i] = DistrictProfile{DominantSector: -1, Wealth: 0.5, Productivity: 0.5,
				TaxBaseMult: 1.0, IndustrialSupplyMult: 1.0, CommercialDemandMult: 1.0}
		}
		return snap
	}

	seed := w.Seed + settings.SeedSalt
	snap.Sectors = generateSectors(seed, settings.SectorCount)
	snap.ActiveEvent, snap.ActiveEventDaysLeft = findActiveEvent(seed, day, settings)

	period := settings.MacroPeriodDays
	if period <= 0 {
		period = 28.0
	}
	phase := 2 * math.Pi * float64(day) / period
	cycle := 0.12 * math.Sin(phase)
	eventAdj := eventIndexAdjustment(snap.ActiveEvent)
	snap.EconomyIndex = clampPositive(1.0 + cycle + eventAdj)

	snap.Inflation = clamp01(0.03 + 0.06*snap.ActiveEvent.Severity)
	snap.CityWealth = clamp01(0.5 + 0.5*cycle/0.12*avgVolatility(snap.Sectors))

	snap.Districts = computeDistrictProfiles(w, snap.Sectors, snap.EconomyIndex)
	return snap
}

func generateSectors(seed uint64, count int) []Sector {
	if count < 1 {
		count = 1
	}
	stream := rng.Derive(seed, "economy.sectors", 0)
	sectors := make([]Sector, count)
	for i := 0; i < count; i++ {
		kind := SectorKind(i % 8)
		sectors[i] = Sector{
			Kind:               kind,
			Name:               kind.String(),
			IndustrialAffinity: stream.Float64Range(0.1, 0.9),
			CommercialAffinity: stream.Float64Range(0.1, 0.9),
			Volatility:         stream.Float64Range(0.1, 0.9),
		}
	}
	return sectors
}

// findActiveEvent scans backward up to EventScanbackDays for the most
// recent day an event would have started (per a salted per-day roll) whose
// duration still covers the requested day.
func findActiveEvent(seed uint64, day int, settings ModelSettings) (Event, int) {
	minDur, maxDur := settings.MinEventDurationDays, settings.MaxEventDurationDays
	if maxDur < minDur {
		maxDur = minDur
	}
	for offset := 0; offset <= settings.EventScanbackDays; offset++ {
		startDay := day - offset
		if startDay < 0 {
			break
		}
		stream := rng.Derive(seed, "economy.events", startDay)
		if !stream.Chance(0.12) {
			continue
		}
		duration := stream.IntRange(minDur, maxDur)
		if startDay+duration <= day {
			continue // already over by `day`
		}
		kind := EventKind(1 + stream.IntRange(0, 5))
		severity := stream.Float64Range(0.2, 1.0)
		ev := Event{Kind: kind, StartDay: startDay, DurationDays: duration, Severity: severity}
		return ev, startDay + duration - day
	}
	return Event{Kind: EventNone}, 0
}

func eventIndexAdjustment(ev Event) float64 {
	switch ev.Kind {
	case EventRecession, EventFuelSpike, EventImportShock:
		return -0.18 * ev.Severity
	case EventExportBoom, EventTechBoom, EventTourismSurge:
		return 0.15 * ev.Severity
	default:
		return 0
	}
}

func avgVolatility(sectors []Sector) float64 {
	if len(sectors) == 0 {
		return 1.0
	}
	sum := 0.0
	for _, s := range sectors {
		sum += 1 - s.Volatility*0.5
	}
	return sum / float64(len(sectors))
}

func computeDistrictProfiles(w *world.World, sectors []Sector, economyIndex float64) [DistrictCount]DistrictProfile {
	var counts [DistrictCount]struct {
		residential, commercial, industrial int
		occupantSum                         int
		levelSum                            int
		zoneTiles                           int
	}
	for _, t := range w.Tiles {
		d := int(t.District) % DistrictCount
		switch t.Overlay {
		case world.OverlayResidential:
			counts[d].residential++
		case world.OverlayCommercial:
			counts[d].commercial++
		case world.OverlayIndustrial:
			counts[d].industrial++
		default:
			continue
		}
		counts[d].occupantSum += int(t.Occupants)
		counts[d].levelSum += int(t.Level)
		counts[d].zoneTiles++
	}

	var out [DistrictCount]DistrictProfile
	for d := 0; d < DistrictCount; d++ {
		c := counts[d]
		if c.zoneTiles == 0 {
			out[d] = DistrictProfile{DominantSector: -1, Wealth: 0.5, Productivity: 0.5,
				TaxBaseMult: 1.0, IndustrialSupplyMult: 1.0, CommercialDemandMult: 1.0}
			continue
		}
		industrialShare := float64(c.industrial) / float64(c.zoneTiles)
		commercialShare := float64(c.commercial) / float64(c.zoneTiles)

		dominant := dominantSector(sectors, industrialShare, commercialShare)
		wealth := clamp01(float64(c.levelSum) / float64(c.zoneTiles*3))
		productivity := clamp01(economyIndex * (0.4 + 0.6*wealth))

		out[d] = DistrictProfile{
			DominantSector:       dominant,
			Wealth:               wealth,
			Productivity:         productivity,
			TaxBaseMult:          clampPositive(0.8 + 0.4*wealth),
			IndustrialSupplyMult: clampPositive(economyIndex * (0.5 + industrialShare)),
			CommercialDemandMult: clampPositive(economyIndex * (0.5 + commercialShare)),
			NetTradeBalance:      float64(c.industrial-c.commercial) / float64(c.zoneTiles),
		}
	}
	return out
}

// dominantSector picks the sector whose industrial/commercial affinity
// pair is closest (least squared distance) to the district's observed
// zone-composition shares.
func dominantSector(sectors []Sector, industrialShare, commercialShare float64) int {
	best, bestDist := -1, math.MaxFloat64
	for i, s := range sectors {
		di := s.IndustrialAffinity - industrialShare
		dc := s.CommercialAffinity - commercialShare
		dist := di*di + dc*dc
		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	return best
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

func clampPositive(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
