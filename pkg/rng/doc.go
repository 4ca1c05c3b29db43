// Package rng provides deterministic random number generation for the
// simulation engine.
//
// # Overview
//
// Stream is a splitmix64 generator. Every subsystem that needs randomness
// derives its own Stream from the world seed plus a subsystem salt and the
// current simulated day, so that two subsystems never share a sequence and
// a subsystem's output depends only on (seed, config, day) — never on wall
// clock, thread scheduling, or map iteration order.
//
//	stream := rng.Derive(world.Seed, "autobuild.roads", day)
//	if stream.Chance(0.2) { ... }
//
// # Determinism contract
//
// All engine randomness must flow through this package. Nothing on the
// simulation path may read time.Now, a hardware RNG, or goroutine-local
// state.
package rng
