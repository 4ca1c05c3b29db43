// Package simulation orchestrates the discrete-time tick (L12, §4.13): a
// fixed-step accumulator, the eight-step tick body in its mandated order,
// and the spiral-of-death-guarded update variants. Simulator owns only its
// configuration, the tick accumulator, and the current day counter — the
// World exclusively owns the tile grid and Stats, per the layering rule.
package simulation

import (
	"math"

	"github.com/dshills/procicity/pkg/environment"
	"github.com/dshills/procicity/pkg/livability"
	"github.com/dshills/procicity/pkg/risk"
	"github.com/dshills/procicity/pkg/roadgraph"
	"github.com/dshills/procicity/pkg/rng"
	"github.com/dshills/procicity/pkg/rules"
	"github.com/dshills/procicity/pkg/services"
	"github.com/dshills/procicity/pkg/traffic"
	"github.com/dshills/procicity/pkg/world"
)

// AirPollutionModelSettings nests the air-pollution subsystem's own enable
// flag and happiness-penalty coefficients alongside its field-computation
// config, per Sim.hpp's model-settings shape.
type AirPollutionModelSettings struct {
	Enabled                  bool
	Config                   environment.AirConfig
	HappinessPenaltyScale    float64
	HighExposurePenaltyScale float64
	MaxHappinessPenalty      float64
}

// DefaultAirPollutionModelSettings mirrors Sim.hpp's defaults
// (enabled=true, happinessPenaltyScale=0.06, highExposurePenaltyScale=0.04,
// maxHappinessPenalty=0.12).
func DefaultAirPollutionModelSettings() AirPollutionModelSettings {
	return AirPollutionModelSettings{
		Enabled:                  true,
		Config:                   environment.DefaultAirConfig(),
		HappinessPenaltyScale:    0.06,
		HighExposurePenaltyScale: 0.04,
		MaxHappinessPenalty:      0.12,
	}
}

// TrafficSafetyModelSettings nests the traffic-safety subsystem's enable
// flag alongside its own config.
type TrafficSafetyModelSettings struct {
	Enabled bool
	Config  risk.TrafficSafetyConfig
}

// DefaultTrafficSafetyModelSettings mirrors Sim.hpp's default (enabled=true).
func DefaultTrafficSafetyModelSettings() TrafficSafetyModelSettings {
	return TrafficSafetyModelSettings{Enabled: true, Config: risk.DefaultTrafficSafetyConfig()}
}

// TrafficIncidentSettings mirrors Sim.hpp's TrafficIncidentSettings.
type TrafficIncidentSettings struct {
	Enabled                      bool
	MinPopulation                int
	MinZoneTiles                 int
	BaseChancePerDay             float64
	ChancePer100Population       float64
	ExposureChanceBoost          float64
	HotspotRiskChanceBoost       float64
	MaxChancePerDay              float64
	MinInjuries                  int
	MaxInjuries                  int
	InjuriesRiskBonus            float64
	HappinessPenalty             float64
	CostPerIncident              int
	NoSafetyServicesMultiplier   float64
	SafetySatisfactionMitigation float64
	MinSafetyMitigation          float64
}

// DefaultTrafficIncidentSettings mirrors Sim.hpp's exact numeric defaults.
func DefaultTrafficIncidentSettings() TrafficIncidentSettings {
	return TrafficIncidentSettings{
		Enabled:                      true,
		MinPopulation:                60,
		MinZoneTiles:                 12,
		BaseChancePerDay:             0.0060,
		ChancePer100Population:       0.0010,
		ExposureChanceBoost:          0.75,
		HotspotRiskChanceBoost:       0.50,
		MaxChancePerDay:              0.18,
		MinInjuries:                  1,
		MaxInjuries:                  12,
		InjuriesRiskBonus:            8.0,
		HappinessPenalty:             0.02,
		CostPerIncident:              1500,
		NoSafetyServicesMultiplier:   1.25,
		SafetySatisfactionMitigation: 0.35,
		MinSafetyMitigation:          0.65,
	}
}

// FireIncidentSettings mirrors Sim.hpp's FireIncidentSettings.
type FireIncidentSettings struct {
	Enabled                bool
	MinPopulation          int
	MinZoneTiles           int
	BaseChancePerDay       float64
	ChancePer100Population float64
	NoStationMultiplier    float64
	StationChanceMitigation float64
	MinChanceFactor        float64
	MinAffectedTiles       int
	MaxAffectedTiles       int
	SpreadBase             float64
	DestroyBase            float64
	HappinessPenalty       float64
	CostPerIncident        int
}

// DefaultFireIncidentSettings mirrors Sim.hpp's exact numeric defaults.
func DefaultFireIncidentSettings() FireIncidentSettings {
	return FireIncidentSettings{
		Enabled:                 true,
		MinPopulation:           40,
		MinZoneTiles:            12,
		BaseChancePerDay:        0.0070,
		ChancePer100Population:  0.0015,
		NoStationMultiplier:     1.65,
		StationChanceMitigation: 0.18,
		MinChanceFactor:         0.45,
		MinAffectedTiles:        4,
		MaxAffectedTiles:        28,
		SpreadBase:              0.68,
		DestroyBase:             0.22,
		HappinessPenalty:        0.03,
		CostPerIncident:         4000,
	}
}

// Config is the full tick configuration. pkg/save writes the whole value,
// model-settings sub-structs included, into each save as a YAML blob; none
// of it enters world.Hash.
type Config struct {
	TickSeconds              float64
	RequireOutsideConnection bool

	TaxResidentialRate    float64
	TaxCommercialRate     float64
	TaxIndustrialRate     float64
	TaxHappinessPerCapita float64

	MaintenanceCostRoadMilli   int
	MaintenanceCostParkMilli   int
	MaintenanceCostServiceMilli int

	Traffic        traffic.Config
	Services       services.Config
	Walkability    services.WalkConfig
	AirPollution   AirPollutionModelSettings
	Noise          environment.NoiseConfig
	Heat           environment.HeatConfig
	Fire           risk.FireConfig
	Crime          risk.CrimeConfig
	TrafficSafety  TrafficSafetyModelSettings
	Livability     livability.Weights
	Priority       livability.PriorityConfig

	TrafficIncidents TrafficIncidentSettings
	FireIncidents    FireIncidentSettings
}

// DefaultConfig mirrors SimConfig's reference defaults: tickSeconds=0.5,
// requireOutsideConnection=true, taxHappinessPerCapita=0.02.
func DefaultConfig() Config {
	return Config{
		TickSeconds:              0.5,
		RequireOutsideConnection: true,

		TaxResidentialRate:    0.08,
		TaxCommercialRate:     0.10,
		TaxIndustrialRate:     0.09,
		TaxHappinessPerCapita: 0.02,

		MaintenanceCostRoadMilli:    50,
		MaintenanceCostParkMilli:    20,
		MaintenanceCostServiceMilli: 120,

		Traffic:          traffic.DefaultConfig(),
		Services:         services.DefaultConfig(),
		Walkability:      services.DefaultWalkConfig(),
		AirPollution:     DefaultAirPollutionModelSettings(),
		Noise:            environment.DefaultNoiseConfig(),
		Heat:             environment.DefaultHeatConfig(),
		Fire:             risk.DefaultFireConfig(),
		Crime:            risk.DefaultCrimeConfig(),
		TrafficSafety:    DefaultTrafficSafetyModelSettings(),
		Livability:       livability.DefaultWeights(),
		Priority:         livability.DefaultPriorityConfig(),
		TrafficIncidents: DefaultTrafficIncidentSettings(),
		FireIncidents:    DefaultFireIncidentSettings(),
	}
}

// Simulator holds the fixed-step accumulator and current day counter; it
// never owns the tile grid or Stats.
type Simulator struct {
	World  *world.World
	Rules  rules.Table
	Config Config

	accumSeconds float64
	day          int
}

// New constructs a Simulator bound to a world and rule table.
func New(w *world.World, table rules.Table, cfg Config) *Simulator {
	return &Simulator{World: w, Rules: table, Config: cfg}
}

// AccumulatedSeconds reports the unconsumed fractional tick time.
func (s *Simulator) AccumulatedSeconds() float64 { return s.accumSeconds }

// AccumulatedTicks reports the number of whole ticks the current
// accumulator would release.
func (s *Simulator) AccumulatedTicks() int {
	if s.Config.TickSeconds <= 0 {
		return 0
	}
	return int(s.accumSeconds / s.Config.TickSeconds)
}

// ResetTimer zeroes the accumulator without advancing any ticks.
func (s *Simulator) ResetTimer() { s.accumSeconds = 0 }

// Day reports the number of ticks processed so far.
func (s *Simulator) Day() int { return s.day }

// StepOnce advances exactly one day and resets the accumulator, returning
// the freshly assembled Stats.
func (s *Simulator) StepOnce() world.Stats {
	s.accumSeconds = 0
	return s.tick()
}

// Update processes floor(accum/tickSeconds) ticks for the given wall-time
// delta, returning the number of ticks actually processed and the last
// Stats produced (the zero value if none ran).
func (s *Simulator) Update(dt float64) (ticksRun int, last world.Stats) {
	s.accumSeconds += dt
	n := s.AccumulatedTicks()
	for i := 0; i < n; i++ {
		last = s.tick()
		s.accumSeconds -= s.Config.TickSeconds
		ticksRun++
	}
	return ticksRun, last
}

// UpdateLimited is Update with a spiral-of-death guard: it never processes
// more than maxTicks in one call, and clamps the accumulator so a stalled
// caller never accrues more than maxBacklogTicks worth of backlog.
func (s *Simulator) UpdateLimited(dt float64, maxTicks, maxBacklogTicks int) (ticksRun int, last world.Stats) {
	s.accumSeconds += dt
	if maxBacklogTicks > 0 && s.Config.TickSeconds > 0 {
		backlogCap := float64(maxBacklogTicks) * s.Config.TickSeconds
		if s.accumSeconds > backlogCap {
			s.accumSeconds = backlogCap
		}
	}
	n := s.AccumulatedTicks()
	if maxTicks > 0 && n > maxTicks {
		n = maxTicks
	}
	for i := 0; i < n; i++ {
		last = s.tick()
		s.accumSeconds -= s.Config.TickSeconds
		ticksRun++
	}
	return ticksRun, last
}

// tick runs the eight-step body in the mandated order and never fails:
// unreachable subsystems degrade to zero rather than erroring.
func (s *Simulator) tick() world.Stats {
	s.day++
	w := s.World
	cfg := s.Config
	n := w.Width * w.Height

	// 1. Pre-derivations.
	outsideMask := roadgraph.OutsideConnectionMask(w)
	var allowed []uint8
	if cfg.RequireOutsideConnection {
		allowed = outsideMask
	}

	// 2. Traffic + goods.
	trafficRes := traffic.Assign(w, s.Rules, cfg.Traffic, allowed)

	// 3. Services / walkability / air / noise / heat / fire / crime / safety.
	schoolAccess := services.Compute(w, s.Rules, world.OverlaySchool, cfg.Services)
	hospitalAccess := services.Compute(w, s.Rules, world.OverlayHospital, cfg.Services)
	_, walkOverall := services.Walkability(w, s.Rules, cfg.Walkability, outsideMask, cfg.RequireOutsideConnection)

	var airRes environment.AirResult
	if cfg.AirPollution.Enabled {
		airRes = environment.ComputeAir(w, cfg.AirPollution.Config, trafficRes.CommuteTraffic, trafficRes.GoodsTraffic)
	} else {
		airRes.Field = make([]float64, n)
	}
	noiseField := environment.ComputeNoise(w, cfg.Noise)
	heatField := environment.ComputeHeat(w, cfg.Heat)

	fireField := risk.ComputeFire(w, s.Rules, cfg.Fire)
	jobAccess01 := jobAccessField(w, trafficRes)
	crimeField := risk.ComputeCrime(w, s.Rules, cfg.Crime, jobAccess01, noiseField, trafficRes.CommuteTraffic, trafficRes.GoodsTraffic)

	var safetyPenalty []float64
	if cfg.TrafficSafety.Enabled {
		_, safetyPenalty = risk.ComputeTrafficSafety(w, s.Rules, cfg.TrafficSafety.Config, trafficRes.CommuteTraffic, trafficRes.GoodsTraffic)
	} else {
		safetyPenalty = make([]float64, n)
	}

	servicesSatisfaction := (services.MeanAccess(schoolAccess) + services.MeanAccess(hospitalAccess)) / 2

	liv := livability.Compute(n, livability.Inputs{
		Services:    meanBroadcast(servicesSatisfaction, n),
		Walkability: walkOverall,
		Air:         airRes.Field,
		Noise:       noiseField,
		Heat:        heatField,
	}, cfg.Livability)

	// 4. Growth / decline.
	s.growthDecline(schoolAccess, hospitalAccess, liv)

	// 5. Incidents.
	fireIncidents := s.rollFireIncidents(fireField)
	trafficIncidents := s.rollTrafficIncidents(safetyPenalty, crimeField)

	// 6. Budget.
	money := s.budget(trafficRes)

	// 7. Happiness.
	happiness := s.happiness(liv, trafficRes, airRes, safetyPenalty, fireIncidents, trafficIncidents)

	// 8. Stats assembly.
	stats := world.Stats{
		Day:                     s.day,
		Population:              populationOf(w),
		Money:                   money,
		Happiness:               happiness,
		HousingCapacity:         capacityOf(w, world.OverlayResidential),
		JobsCapacityTotal:       capacityOf(w, world.OverlayCommercial) + capacityOf(w, world.OverlayIndustrial),
		JobsCapacityAccessible:  accessibleJobsCapacity(w, trafficRes),
		CommuteAvgMilli:         trafficRes.AvgCommuteMilli,
		CommuteP95Milli:         trafficRes.P95CommuteMilli,
		TrafficCongestion:       trafficRes.TrafficCongestion,
		GoodsFlowTotal:          trafficRes.GoodsFlowTotal,
		GoodsSatisfaction:       trafficRes.GoodsSatisfaction,
		ServicesSatisfaction:    world.Clamp01(servicesSatisfaction),
		WalkabilityScore:        livability.MeanLivability(walkOverall),
		ResidentAirExposure:     airRes.ResidentialMeanExposure,
		ResidentHighAirExpFrac:  airRes.FractionOverHighExposure,
		ResidentNoiseExposure:   environment.MeanField(noiseField),
		ResidentHeatExposure:    environment.MeanField(heatField),
		FireIncidents:           fireIncidents,
		TrafficIncidents:        trafficIncidents,
		LivabilityScore:         livability.MeanLivability(liv),
		EconomyIndex:            economyIndex(w, trafficRes, liv),
	}
	w.Stats = stats
	return stats
}

func jobAccessField(w *world.World, res traffic.Result) []float64 {
	n := w.Width * w.Height
	out := make([]float64, n)
	if res.GoodsFlowTotal <= 0 {
		return out
	}
	for i := range out {
		out[i] = world.Clamp01(res.GoodsSatisfaction)
	}
	return out
}

func meanBroadcast(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func populationOf(w *world.World) int {
	total := 0
	for _, t := range w.Tiles {
		if t.Overlay == world.OverlayResidential {
			total += int(t.Occupants)
		}
	}
	return total
}

func capacityOf(w *world.World, overlay world.Overlay) int {
	total := 0
	for _, t := range w.Tiles {
		if t.Overlay == overlay {
			total += world.Capacity(t.Level, overlay)
		}
	}
	return total
}

func accessibleJobsCapacity(w *world.World, res traffic.Result) int {
	total := capacityOf(w, world.OverlayCommercial) + capacityOf(w, world.OverlayIndustrial)
	return int(float64(total) * world.Clamp01(res.GoodsSatisfaction+0.0))
}

// growthDecline nudges each zone tile's occupants toward a target
// occupancy proportional to capacity, local desirability (services +
// livability), and a flat demand signal, per §4.13 step 4.
func (s *Simulator) growthDecline(schoolAccess, hospitalAccess services.CategoryAccess, liv []float64) {
	w := s.World
	stream := rng.Derive(w.Seed, "simulation.growth", s.day)
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			t := w.At(x, y)
			if !t.Overlay.IsZone() {
				continue
			}
			idx := w.Index(x, y)
			capacity := world.Capacity(t.Level, t.Overlay)
			if capacity <= 0 {
				continue
			}
			desirability := 0.5
			if idx < len(liv) {
				desirability = 0.3 + 0.7*liv[idx]
			}
			target := int(float64(capacity) * desirability)
			occ := int(t.Occupants)
			if occ < target {
				occ++
			} else if occ > target {
				occ--
			}
			if occ < 0 {
				occ = 0
			}
			if occ > 255 {
				occ = 255
			}
			t.Occupants = uint8(occ)

			if occ >= capacity && t.Level < 3 && stream.Float64() < 0.02 {
				t.Level++
			} else if occ == 0 && t.Level > 1 && stream.Float64() < 0.01 {
				t.Level--
			}
			w.Tiles[idx] = t
		}
	}
}

// rollFireIncidents applies a deterministic per-day chance function of
// population, hotspot risk, and fire-station coverage (via fireField's
// residual risk after mitigation), mirroring FireIncidentSettings.
func (s *Simulator) rollFireIncidents(fireField []float64) int {
	cfg := s.Config.FireIncidents
	if !cfg.Enabled {
		return 0
	}
	pop := populationOf(s.World)
	zoneTiles := countZoneTiles(s.World)
	if pop < cfg.MinPopulation || zoneTiles < cfg.MinZoneTiles {
		return 0
	}
	hotspot := maxOf(fireField)
	chance := cfg.BaseChancePerDay + cfg.ChancePer100Population*float64(pop)/100
	chance *= 1 + hotspot*0.5
	if chance > 1 {
		chance = 1
	}
	stream := rng.Derive(s.World.Seed, "simulation.incidents.fire", s.day)
	if stream.Float64() >= chance {
		return 0
	}
	s.applyFireDamage(stream, cfg)
	return 1
}

func (s *Simulator) applyFireDamage(stream *rng.Stream, cfg FireIncidentSettings) {
	w := s.World
	affected := cfg.MinAffectedTiles
	if cfg.MaxAffectedTiles > cfg.MinAffectedTiles {
		affected = stream.IntRange(cfg.MinAffectedTiles, cfg.MaxAffectedTiles)
	}
	applied := 0
	for y := 0; y < w.Height && applied < affected; y++ {
		for x := 0; x < w.Width && applied < affected; x++ {
			t := w.At(x, y)
			if !t.Overlay.IsZone() {
				continue
			}
			if stream.Float64() >= cfg.DestroyBase {
				continue
			}
			idx := w.Index(x, y)
			t.Occupants = 0
			w.Tiles[idx] = t
			applied++
		}
	}
}

func (s *Simulator) rollTrafficIncidents(safetyPenalty, crimeField []float64) int {
	cfg := s.Config.TrafficIncidents
	if !cfg.Enabled {
		return 0
	}
	pop := populationOf(s.World)
	zoneTiles := countZoneTiles(s.World)
	if pop < cfg.MinPopulation || zoneTiles < cfg.MinZoneTiles {
		return 0
	}
	exposure := maxOf(safetyPenalty)
	hotspot := maxOf(crimeField)
	chance := cfg.BaseChancePerDay + cfg.ChancePer100Population*float64(pop)/100
	chance *= 1 + exposure*cfg.ExposureChanceBoost + hotspot*cfg.HotspotRiskChanceBoost
	if chance > cfg.MaxChancePerDay {
		chance = cfg.MaxChancePerDay
	}
	stream := rng.Derive(s.World.Seed, "simulation.incidents.traffic", s.day)
	if stream.Float64() >= chance {
		return 0
	}
	return 1
}

func countZoneTiles(w *world.World) int {
	count := 0
	for _, t := range w.Tiles {
		if t.Overlay.IsZone() {
			count++
		}
	}
	return count
}

func maxOf(v []float64) float64 {
	best := 0.0
	for _, x := range v {
		if x > best {
			best = x
		}
	}
	return best
}

// budget computes income (tax per occupant × rate, no land-value
// multiplier modeled here since land value is out of this engine's scope)
// minus road/park/service maintenance, updating and returning World.Stats.Money.
func (s *Simulator) budget(res traffic.Result) int {
	w := s.World
	income := 0.0
	roads, parks, servicesCount := 0, 0, 0
	for _, t := range w.Tiles {
		switch t.Overlay {
		case world.OverlayResidential:
			income += float64(t.Occupants) * s.Config.TaxResidentialRate
		case world.OverlayCommercial:
			income += float64(t.Occupants) * s.Config.TaxCommercialRate
		case world.OverlayIndustrial:
			income += float64(t.Occupants) * s.Config.TaxIndustrialRate
		case world.OverlayRoad:
			roads++
		case world.OverlayPark:
			parks++
		case world.OverlaySchool, world.OverlayHospital, world.OverlayPoliceStation, world.OverlayFireStation:
			servicesCount++
		}
	}
	expenses := float64(roads)*float64(s.Config.MaintenanceCostRoadMilli)/1000 +
		float64(parks)*float64(s.Config.MaintenanceCostParkMilli)/1000 +
		float64(servicesCount)*float64(s.Config.MaintenanceCostServiceMilli)/1000
	delta := income - expenses
	return w.Stats.Money + int(delta)
}

// happiness folds baseline plus park/service/commute/employment
// contributions minus tax/traffic/hazard/incident penalties, clamped to
// [0,1] (§4.13 step 7).
func (s *Simulator) happiness(liv []float64, res traffic.Result, air environment.AirResult, safetyPenalty []float64, fireIncidents, trafficIncidents int) float64 {
	baseline := 0.5
	livContribution := livability.MeanLivability(liv) * 0.3
	commutePenalty := world.Clamp01(float64(res.AvgCommuteMilli)/20000) * 0.1
	taxPenalty := s.Config.TaxHappinessPerCapita

	airCfg := s.Config.AirPollution
	airPenalty := 0.0
	if airCfg.Enabled {
		airPenalty = math.Min(air.ResidentialMeanExposure*airCfg.HappinessPenaltyScale+
			air.FractionOverHighExposure*airCfg.HighExposurePenaltyScale, airCfg.MaxHappinessPenalty)
	}

	safetyCfg := s.Config.TrafficSafety
	safetyPenaltyMean := 0.0
	if safetyCfg.Enabled {
		safetyPenaltyMean = environment.MeanField(safetyPenalty)
	}

	incidentPenalty := float64(fireIncidents)*s.Config.FireIncidents.HappinessPenalty +
		float64(trafficIncidents)*s.Config.TrafficIncidents.HappinessPenalty

	h := baseline + livContribution - commutePenalty - taxPenalty - airPenalty - safetyPenaltyMean - incidentPenalty
	return world.Clamp01(h)
}

// economyIndex is a small composite summary scalar (not a full Economy
// subsystem; see pkg/economy for the district-level breakdown) folding
// goods satisfaction and livability into a single [0,1]-ish figure for
// quick diagnostics and Stats.EconomyIndex.
func economyIndex(w *world.World, res traffic.Result, liv []float64) float64 {
	return world.Clamp01(0.5*res.GoodsSatisfaction + 0.5*livability.MeanLivability(liv))
}
