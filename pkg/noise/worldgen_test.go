package noise

import (
	"testing"

	"github.com/dshills/procicity/pkg/rules"
	"github.com/stretchr/testify/require"
)

func TestGenerateWorld_DeterministicForSameSeed(t *testing.T) {
	table := rules.Default()
	cfg := DefaultGenerateConfig()
	w1 := GenerateWorld(24, 24, 7, table, cfg)
	w2 := GenerateWorld(24, 24, 7, table, cfg)
	require.Equal(t, w1.Tiles, w2.Tiles)
}

func TestGenerateWorld_ProducesSomeRoadsAndZones(t *testing.T) {
	table := rules.Default()
	cfg := DefaultGenerateConfig()
	w := GenerateWorld(48, 48, 11, table, cfg)

	roads, zones := 0, 0
	for _, t := range w.Tiles {
		if t.Overlay.String() == "road" {
			roads++
		}
		if t.Overlay.IsZone() {
			zones++
		}
	}
	require.Greater(t, roads, 0)
	require.Greater(t, zones, 0)
}

func TestGenerateWorld_DifferentSeedsDiffer(t *testing.T) {
	table := rules.Default()
	cfg := DefaultGenerateConfig()
	w1 := GenerateWorld(32, 32, 1, table, cfg)
	w2 := GenerateWorld(32, 32, 2, table, cfg)
	require.NotEqual(t, w1.Tiles, w2.Tiles)
}

func TestGenerateWorld_AssignsDistrictsInRange(t *testing.T) {
	table := rules.Default()
	w := GenerateWorld(40, 40, 13, table, DefaultGenerateConfig())
	for _, tile := range w.Tiles {
		require.Less(t, tile.District, uint8(8))
	}
}

func TestGenerateWorld_RoadMasksAreConsistent(t *testing.T) {
	table := rules.Default()
	w := GenerateWorld(20, 20, 5, table, DefaultGenerateConfig())
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			tile := w.At(x, y)
			if tile.Overlay.String() != "road" {
				require.Zero(t, tile.RoadMask())
			}
		}
	}
}
