package world

import "math"

// Hash folds every tile field into a single u64 via repeated splitmix64
// mixing in row-major order. With includeStats it also folds these Stats
// fields: Day, Population, Money, Happiness, the housing and job capacities,
// the commute times and the two incident counts; the other Stats fields are
// not folded. Two worlds with identical
// content hash identically regardless of how they were produced; this is
// the determinism contract's main test hook (§6.2, §8.1).
func Hash(w *World, includeStats bool) uint64 {
	var acc uint64 = 0xA1B2C3D4E5F60718 ^ w.Seed
	acc = mix(acc, uint64(w.Width))
	acc = mix(acc, uint64(w.Height))

	for i := range w.Tiles {
		t := w.Tiles[i]
		acc = mix(acc, uint64(t.Terrain))
		acc = mix(acc, uint64(t.Overlay))
		acc = mix(acc, uint64(t.Level))
		acc = mix(acc, uint64(t.District))
		acc = mix(acc, uint64(math.Float32bits(t.Height)))
		acc = mix(acc, uint64(t.Variation))
		acc = mix(acc, uint64(t.Occupants))
		acc = mix(acc, uint64(t.RoadClass))
	}

	if includeStats {
		s := w.Stats
		acc = mix(acc, uint64(s.Day))
		acc = mix(acc, uint64(s.Population))
		acc = mix(acc, uint64(int64(s.Money)))
		acc = mix(acc, math.Float64bits(s.Happiness))
		acc = mix(acc, uint64(s.HousingCapacity))
		acc = mix(acc, uint64(s.JobsCapacityTotal))
		acc = mix(acc, uint64(s.JobsCapacityAccessible))
		acc = mix(acc, uint64(s.CommuteAvgMilli))
		acc = mix(acc, uint64(s.CommuteP95Milli))
		acc = mix(acc, uint64(s.FireIncidents))
		acc = mix(acc, uint64(s.TrafficIncidents))
	}

	return acc
}

// mix folds v into acc via one splitmix64 finalization step, giving us a
// stable integer-only accumulator independent of iteration associativity.
func mix(acc, v uint64) uint64 {
	acc ^= v + 0x9E3779B97F4A7C15 + (acc << 6) + (acc >> 2)
	acc = (acc ^ (acc >> 30)) * 0xBF58476D1CE4E5B9
	acc = (acc ^ (acc >> 27)) * 0x94D049BB133111EB
	return acc ^ (acc >> 31)
}
