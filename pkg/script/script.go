// Package script implements the engine side of the scripted scenario
// contract (L14, §4.15): a sequential command interface that generates or
// loads a world, edits tiles, runs the autonomous builder, advances the
// simulator, snapshots stats, hashes the world, asserts conditions, and
// requests an external export. Control flow (loop/conditional/break) and
// variable-expansion syntax (`{seed}`, `{day}`, `{w}`, `{h}`, `{money}`,
// `{run}`, `{hash}`) belong to a script-language layer this package does not
// implement; Runner only supplies the current values those tokens resolve
// to, on demand, via TemplateValue.
package script

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/dshills/procicity/pkg/builder"
	"github.com/dshills/procicity/pkg/noise"
	"github.com/dshills/procicity/pkg/rules"
	"github.com/dshills/procicity/pkg/simulation"
	"github.com/dshills/procicity/pkg/world"
)

// Callbacks mirrors the reference ScriptCallbacks: Print is command output
// meant for capture (e.g. `hash`), Info is progress narration (suppressed
// when Options.Quiet), Error is always emitted.
type Callbacks struct {
	Print func(line string)
	Info  func(line string)
	Error func(line string)
}

// Options mirrors the reference ScriptRunOptions, minus IncludeDepthLimit
// (recursive file inclusion is a script-language concern, not this
// package's).
type Options struct {
	Quiet bool
}

// Runner holds the mutable state one script execution operates on: the
// current world, its bound simulator, the most recent autonomous-builder
// report, and the per-day Stats snapshots collected by Tick. A Runner can
// be reused across scripts by calling GenerateWorld or LoadWorld again.
type Runner struct {
	World          *world.World
	Table          rules.Table
	Sim            *simulation.Simulator
	GenerateConfig noise.GenerateConfig
	TickStats      []world.Stats
	LastBuildReport builder.Report

	// RunID tags this script execution for operator traceability (log
	// correlation, output file naming via {run}); it plays no role in
	// simulation determinism and is never folded into HashWorld.
	RunID uuid.UUID

	cb     Callbacks
	opt    Options
	failed bool
	lastErr string
}

// NewRunner constructs a Runner with no world loaded; GenerateWorld or
// LoadWorld must be called before any other command. Each Runner is
// stamped with a fresh RunID.
func NewRunner(cb Callbacks, opt Options) *Runner {
	return &Runner{
		cb: cb, opt: opt,
		Table:          rules.Default(),
		GenerateConfig: noise.DefaultGenerateConfig(),
		RunID:          uuid.New(),
	}
}

// Failed reports whether a prior command marked this run as failed; once
// true, every subsequent command is a no-op that returns the same error
// (§4.15's "mark the run as failed and stop at the failing command").
func (r *Runner) Failed() bool { return r.failed }

// LastError returns the message from the command that failed this run, if
// any.
func (r *Runner) LastError() string { return r.lastErr }

func (r *Runner) fail(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	r.failed = true
	r.lastErr = msg
	if r.cb.Error != nil {
		r.cb.Error(msg)
	}
	return fmt.Errorf("%s", msg)
}

func (r *Runner) info(line string) {
	if !r.opt.Quiet && r.cb.Info != nil {
		r.cb.Info(line)
	}
}

func (r *Runner) guard() error {
	if r.failed {
		return fmt.Errorf("run already failed: %s", r.lastErr)
	}
	return nil
}

// GenerateWorld creates a fresh world via pkg/noise.GenerateWorld and binds
// a new Simulator to it.
func (r *Runner) GenerateWorld(w, h int, seed uint64, simCfg simulation.Config) error {
	if err := r.guard(); err != nil {
		return err
	}
	if w <= 0 || h <= 0 {
		return r.fail("generate: invalid dimensions %dx%d", w, h)
	}
	r.World = noise.GenerateWorld(w, h, seed, r.Table, r.GenerateConfig)
	r.Sim = simulation.New(r.World, r.Table, simCfg)
	r.info(fmt.Sprintf("generated %dx%d world, seed=%d", w, h, seed))
	return nil
}

// LoadWorld adopts an already-decoded world (decoding the on-disk save
// schema is pkg/save's responsibility, out of this package's scope) and
// binds a new Simulator to it.
func (r *Runner) LoadWorld(w *world.World, simCfg simulation.Config) error {
	if err := r.guard(); err != nil {
		return err
	}
	if w == nil {
		return r.fail("load: nil world")
	}
	r.World = w
	r.Sim = simulation.New(r.World, r.Table, simCfg)
	r.info(fmt.Sprintf("loaded %dx%d world, seed=%d", w.Width, w.Height, w.Seed))
	return nil
}

// EditOverlay places an overlay+level at (x,y) — the scripted tile-edit
// command.
func (r *Runner) EditOverlay(x, y int, overlay world.Overlay, level uint8) error {
	if err := r.guard(); err != nil {
		return err
	}
	if r.World == nil {
		return r.fail("edit: no world loaded")
	}
	if err := r.World.SetOverlay(x, y, overlay, level); err != nil {
		return r.fail("edit overlay (%d,%d): %v", x, y, err)
	}
	return nil
}

// EditRoad adds or removes a road tile at (x,y).
func (r *Runner) EditRoad(x, y int, present bool) error {
	if err := r.guard(); err != nil {
		return err
	}
	if r.World == nil {
		return r.fail("edit: no world loaded")
	}
	if err := r.World.SetRoad(x, y, present); err != nil {
		return r.fail("edit road (%d,%d): %v", x, y, err)
	}
	return nil
}

// RunAutoBuild invokes the autonomous builder for the given number of
// simulated days, recording its report and appending the daily Stats it
// produces.
func (r *Runner) RunAutoBuild(cfg builder.Config, days int) error {
	if err := r.guard(); err != nil {
		return err
	}
	if r.World == nil || r.Sim == nil {
		return r.fail("autobuild: no world/simulator loaded")
	}
	report, stats := builder.Run(r.World, r.Sim, cfg, days)
	r.LastBuildReport = report
	r.TickStats = append(r.TickStats, stats...)
	r.info(fmt.Sprintf("autobuild: %d days, %d roads, %d zones, %d parks built",
		report.DaysSimulated, report.RoadsBuilt, report.ZonesBuilt, report.ParksBuilt))
	return nil
}

// Tick advances the simulator by N whole days, one StepOnce per day,
// appending each day's Stats.
func (r *Runner) Tick(days int) error {
	if err := r.guard(); err != nil {
		return err
	}
	if r.Sim == nil {
		return r.fail("tick: no simulator loaded")
	}
	for i := 0; i < days; i++ {
		r.TickStats = append(r.TickStats, r.Sim.StepOnce())
	}
	r.info(fmt.Sprintf("ticked %d day(s), now day %d", days, r.Sim.Day()))
	return nil
}

// SnapshotStats returns the most recent Stats recorded on the world,
// without advancing the simulator.
func (r *Runner) SnapshotStats() (world.Stats, error) {
	if err := r.guard(); err != nil {
		return world.Stats{}, err
	}
	if r.World == nil {
		return world.Stats{}, r.fail("stats: no world loaded")
	}
	return r.World.Stats, nil
}

// HashWorld computes the structural world hash, optionally folding in
// Stats, for scripted determinism assertions.
func (r *Runner) HashWorld(includeStats bool) (uint64, error) {
	if err := r.guard(); err != nil {
		return 0, err
	}
	if r.World == nil {
		return 0, r.fail("hash: no world loaded")
	}
	h := world.Hash(r.World, includeStats)
	if r.cb.Print != nil {
		r.cb.Print(strconv.FormatUint(h, 16))
	}
	return h, nil
}

// Assert fails the run with msg if cond is false, per the "assert a
// condition" command; returns nil when cond holds and the run's failure
// error otherwise.
func (r *Runner) Assert(cond bool, msg string) error {
	if err := r.guard(); err != nil {
		return err
	}
	if !cond {
		return r.fail("assertion failed: %s", msg)
	}
	return nil
}

// Exporter is called by RequestExport with the current world and the
// accumulated Stats history; image/PPM/PNG/JSON/CSV encoding are all
// external collaborators this package never implements directly.
type Exporter func(w *world.World, stats []world.Stats) error

// RequestExport hands the current state to an externally supplied exporter.
func (r *Runner) RequestExport(export Exporter) error {
	if err := r.guard(); err != nil {
		return err
	}
	if r.World == nil {
		return r.fail("export: no world loaded")
	}
	if err := export(r.World, r.TickStats); err != nil {
		return r.fail("export: %v", err)
	}
	return nil
}

// TemplateValue supplies the current value for one of the script layer's
// template tokens (seed, day, w, h, money, run, hash) — this package
// performs no token parsing or substitution itself, only value lookup.
// {run} resolves to this Runner's RunID, tagging every templated output
// from one script execution with the same identifier.
func (r *Runner) TemplateValue(key string) (string, bool) {
	if r.World == nil {
		return "", false
	}
	switch key {
	case "seed":
		return strconv.FormatUint(r.World.Seed, 10), true
	case "day":
		if r.Sim == nil {
			return "0", true
		}
		return strconv.Itoa(r.Sim.Day()), true
	case "w":
		return strconv.Itoa(r.World.Width), true
	case "h":
		return strconv.Itoa(r.World.Height), true
	case "money":
		return strconv.Itoa(r.World.Stats.Money), true
	case "run":
		return r.RunID.String(), true
	case "hash":
		return strconv.FormatUint(world.Hash(r.World, true), 16), true
	default:
		return "", false
	}
}
