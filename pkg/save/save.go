// Package save implements the on-disk logical schema (§6.3): a
// self-describing, versioned byte sequence holding a magic+version+flags
// header, world dimensions and seed, the dense row-major Tile array, the
// Stats record, and serialized ProcGen/Simulator configuration blobs,
// closed out by a CRC32 over the payload. Readers are version-gated so a
// future field can be appended without breaking old saves; a save written
// by a prior version must round-trip unchanged through a reader built
// against a later one, so long as no post-version feature is in use.
//
// Byte format (magic, exact field widths, endianness) is this package's own
// concern; callers only ever see Envelope and Header.
package save

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"math"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/dshills/procicity/pkg/noise"
	"github.com/dshills/procicity/pkg/rules"
	"github.com/dshills/procicity/pkg/simulation"
	"github.com/dshills/procicity/pkg/world"
)

// magic identifies a procicity save file; it is never exposed to callers,
// only checked on load.
var magic = [4]byte{'P', 'I', 'C', 'S'}

// CurrentVersion is the schema version this package writes. Load accepts
// any version <= CurrentVersion it knows how to decode.
const CurrentVersion uint16 = 1

// Flags is a bitset of optional payload features; no flags are defined yet,
// but the field exists from version 1 on so a future flag never requires a
// new header shape.
type Flags uint32

// Header is the fixed-size save header: everything needed to validate and
// route the payload before touching the tile array.
type Header struct {
	Version uint16
	Flags   Flags
	Width   int
	Height  int
	Seed    uint64

	// RunID stamps the save with the script/session that produced it, for
	// operator traceability only — it plays no role in hash_world and is
	// never compared across saves.
	RunID uuid.UUID
}

// Envelope is everything a save round-trips: the decoded world plus the
// configuration blobs needed to resume simulating it identically.
type Envelope struct {
	Header         Header
	World          *world.World
	GenerateConfig noise.GenerateConfig
	SimConfig      simulation.Config
}

// Save writes w, genCfg, and simCfg as a single versioned save to dst.
// runID is stamped into the header verbatim; callers generate it (e.g. from
// pkg/script's Runner.RunID) rather than this package minting one, so a
// single script run's saves all share an identifier.
func Save(dst io.Writer, w *world.World, genCfg noise.GenerateConfig, simCfg simulation.Config, runID uuid.UUID) error {
	if w == nil {
		return fmt.Errorf("save: nil world")
	}

	var payload bytes.Buffer
	if err := writeHeader(&payload, Header{
		Version: CurrentVersion,
		Flags:   0,
		Width:   w.Width,
		Height:  w.Height,
		Seed:    w.Seed,
		RunID:   runID,
	}); err != nil {
		return err
	}
	if err := writeTiles(&payload, w.Tiles); err != nil {
		return err
	}
	if err := writeStats(&payload, w.Stats); err != nil {
		return err
	}
	if err := writeBlob(&payload, genCfg); err != nil {
		return fmt.Errorf("save: encode generate config: %w", err)
	}
	if err := writeBlob(&payload, simCfg); err != nil {
		return fmt.Errorf("save: encode sim config: %w", err)
	}

	if _, err := dst.Write(magic[:]); err != nil {
		return err
	}
	if err := binary.Write(dst, binary.LittleEndian, uint32(payload.Len())); err != nil {
		return err
	}
	checksum := crc32.ChecksumIEEE(payload.Bytes())
	if err := binary.Write(dst, binary.LittleEndian, checksum); err != nil {
		return err
	}
	_, err := dst.Write(payload.Bytes())
	return err
}

// Load decodes a save written by Save. When verifyCRC is true, a checksum
// mismatch is reported as a Corrupted error (§7) rather than silently
// accepted; callers doing a quick peek (e.g. a CLI listing save metadata)
// can skip the check by passing false.
func Load(src io.Reader, verifyCRC bool) (Envelope, error) {
	var env Envelope

	var gotMagic [4]byte
	if _, err := io.ReadFull(src, gotMagic[:]); err != nil {
		return env, fmt.Errorf("save: read magic: %w", err)
	}
	if gotMagic != magic {
		return env, fmt.Errorf("save: corrupted: bad magic %q", gotMagic)
	}

	var payloadLen uint32
	if err := binary.Read(src, binary.LittleEndian, &payloadLen); err != nil {
		return env, fmt.Errorf("save: read payload length: %w", err)
	}
	var storedChecksum uint32
	if err := binary.Read(src, binary.LittleEndian, &storedChecksum); err != nil {
		return env, fmt.Errorf("save: read checksum: %w", err)
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(src, payload); err != nil {
		return env, fmt.Errorf("save: read payload: %w", err)
	}
	if verifyCRC {
		if got := crc32.ChecksumIEEE(payload); got != storedChecksum {
			return env, fmt.Errorf("save: corrupted: crc mismatch (want %08x, got %08x)", storedChecksum, got)
		}
	}

	r := bytes.NewReader(payload)
	header, err := readHeader(r)
	if err != nil {
		return env, err
	}
	if header.Version > CurrentVersion {
		return env, fmt.Errorf("save: unsupported version %d (reader supports up to %d)", header.Version, CurrentVersion)
	}
	env.Header = header

	w := world.New(header.Width, header.Height, header.Seed)
	if err := readTiles(r, w.Tiles); err != nil {
		return env, err
	}
	stats, err := readStats(r)
	if err != nil {
		return env, err
	}
	w.Stats = stats
	w.RecomputeRoadMasks()
	env.World = w

	if err := readBlob(r, &env.GenerateConfig); err != nil {
		return env, fmt.Errorf("save: decode generate config: %w", err)
	}
	if err := readBlob(r, &env.SimConfig); err != nil {
		return env, fmt.Errorf("save: decode sim config: %w", err)
	}
	return env, nil
}

func writeHeader(buf *bytes.Buffer, h Header) error {
	if err := binary.Write(buf, binary.LittleEndian, h.Version); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, uint32(h.Flags)); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, uint32(h.Width)); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, uint32(h.Height)); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, h.Seed); err != nil {
		return err
	}
	runIDBytes, err := h.RunID.MarshalBinary()
	if err != nil {
		return fmt.Errorf("save: marshal run id: %w", err)
	}
	_, err = buf.Write(runIDBytes)
	return err
}

func readHeader(r *bytes.Reader) (Header, error) {
	var h Header
	var version uint16
	var flags, width, height uint32
	var seed uint64
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return h, fmt.Errorf("save: read version: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &flags); err != nil {
		return h, fmt.Errorf("save: read flags: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &width); err != nil {
		return h, fmt.Errorf("save: read width: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &height); err != nil {
		return h, fmt.Errorf("save: read height: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &seed); err != nil {
		return h, fmt.Errorf("save: read seed: %w", err)
	}
	var runIDBytes [16]byte
	if _, err := io.ReadFull(r, runIDBytes[:]); err != nil {
		return h, fmt.Errorf("save: read run id: %w", err)
	}
	runID, err := uuid.FromBytes(runIDBytes[:])
	if err != nil {
		return h, fmt.Errorf("save: parse run id: %w", err)
	}
	h.Version, h.Flags = version, Flags(flags)
	h.Width, h.Height, h.Seed, h.RunID = int(width), int(height), seed, runID
	return h, nil
}

// writeTiles encodes tiles in the order they're given, which callers pass
// as w.Tiles — already canonical row-major per pkg/world's allocation
// order.
func writeTiles(buf *bytes.Buffer, tiles []world.Tile) error {
	for _, t := range tiles {
		fields := []byte{
			byte(t.Terrain),
			byte(t.Overlay),
			t.Level,
			t.District,
			t.Variation,
			t.Occupants,
			byte(t.RoadClass),
		}
		if _, err := buf.Write(fields); err != nil {
			return err
		}
		if err := binary.Write(buf, binary.LittleEndian, math.Float32bits(t.Height)); err != nil {
			return err
		}
	}
	return nil
}

func readTiles(r *bytes.Reader, tiles []world.Tile) error {
	fields := make([]byte, 7)
	for i := range tiles {
		if _, err := io.ReadFull(r, fields); err != nil {
			return fmt.Errorf("save: read tile %d: %w", i, err)
		}
		var heightBits uint32
		if err := binary.Read(r, binary.LittleEndian, &heightBits); err != nil {
			return fmt.Errorf("save: read tile %d height: %w", i, err)
		}
		tiles[i] = world.Tile{
			Terrain:   world.Terrain(fields[0]),
			Overlay:   world.Overlay(fields[1]),
			Level:     fields[2],
			District:  fields[3],
			Height:    math.Float32frombits(heightBits),
			Variation: fields[4],
			Occupants: fields[5],
			RoadClass: rules.RoadClass(fields[6]),
		}
	}
	return nil
}

// statsFields is the Stats record in fixed-width form (Stats itself uses
// platform-width `int`, which encoding/binary refuses to write directly).
type statsFields struct {
	Day, Population          int64
	Money                    int64
	Happiness                float64
	HousingCapacity          int64
	JobsCapacityTotal        int64
	JobsCapacityAccessible   int64
	CommuteAvgMilli          int64
	CommuteP95Milli          int64
	TrafficCongestion        float64
	GoodsFlowTotal           int64
	GoodsSatisfaction        float64
	ServicesSatisfaction     float64
	WalkabilityScore         float64
	ResidentAirExposure      float64
	ResidentHighAirExpFrac   float64
	ResidentNoiseExposure    float64
	ResidentHeatExposure     float64
	FireIncidents            int64
	TrafficIncidents         int64
	LivabilityScore          float64
	EconomyIndex             float64
	OverflowDiagnostics      int64
}

func writeStats(buf *bytes.Buffer, s world.Stats) error {
	f := statsFields{
		Day: int64(s.Day), Population: int64(s.Population), Money: int64(s.Money),
		Happiness: s.Happiness, HousingCapacity: int64(s.HousingCapacity),
		JobsCapacityTotal: int64(s.JobsCapacityTotal), JobsCapacityAccessible: int64(s.JobsCapacityAccessible),
		CommuteAvgMilli: int64(s.CommuteAvgMilli), CommuteP95Milli: int64(s.CommuteP95Milli),
		TrafficCongestion: s.TrafficCongestion, GoodsFlowTotal: int64(s.GoodsFlowTotal),
		GoodsSatisfaction: s.GoodsSatisfaction, ServicesSatisfaction: s.ServicesSatisfaction,
		WalkabilityScore: s.WalkabilityScore, ResidentAirExposure: s.ResidentAirExposure,
		ResidentHighAirExpFrac: s.ResidentHighAirExpFrac, ResidentNoiseExposure: s.ResidentNoiseExposure,
		ResidentHeatExposure: s.ResidentHeatExposure, FireIncidents: int64(s.FireIncidents),
		TrafficIncidents: int64(s.TrafficIncidents), LivabilityScore: s.LivabilityScore,
		EconomyIndex: s.EconomyIndex, OverflowDiagnostics: int64(s.OverflowDiagnostics),
	}
	return binary.Write(buf, binary.LittleEndian, f)
}

func readStats(r *bytes.Reader) (world.Stats, error) {
	var f statsFields
	if err := binary.Read(r, binary.LittleEndian, &f); err != nil {
		return world.Stats{}, fmt.Errorf("save: read stats: %w", err)
	}
	return world.Stats{
		Day: int(f.Day), Population: int(f.Population), Money: int(f.Money),
		Happiness: f.Happiness, HousingCapacity: int(f.HousingCapacity),
		JobsCapacityTotal: int(f.JobsCapacityTotal), JobsCapacityAccessible: int(f.JobsCapacityAccessible),
		CommuteAvgMilli: int(f.CommuteAvgMilli), CommuteP95Milli: int(f.CommuteP95Milli),
		TrafficCongestion: f.TrafficCongestion, GoodsFlowTotal: int(f.GoodsFlowTotal),
		GoodsSatisfaction: f.GoodsSatisfaction, ServicesSatisfaction: f.ServicesSatisfaction,
		WalkabilityScore: f.WalkabilityScore, ResidentAirExposure: f.ResidentAirExposure,
		ResidentHighAirExpFrac: f.ResidentHighAirExpFrac, ResidentNoiseExposure: f.ResidentNoiseExposure,
		ResidentHeatExposure: f.ResidentHeatExposure, FireIncidents: int(f.FireIncidents),
		TrafficIncidents: int(f.TrafficIncidents), LivabilityScore: f.LivabilityScore,
		EconomyIndex: f.EconomyIndex, OverflowDiagnostics: int(f.OverflowDiagnostics),
	}, nil
}

// writeBlob YAML-encodes a configuration value as a length-prefixed section,
// so a future reader can skip it (or a future writer can append more
// sections after it) without the two ever getting out of sync.
func writeBlob(buf *bytes.Buffer, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(data))); err != nil {
		return err
	}
	_, err = buf.Write(data)
	return err
}

func readBlob(r *bytes.Reader, out interface{}) error {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("read blob length: %w", err)
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return fmt.Errorf("read blob: %w", err)
	}
	return yaml.Unmarshal(data, out)
}
