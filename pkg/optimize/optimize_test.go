package optimize

import (
	"testing"

	"github.com/dshills/procicity/pkg/rules"
	"github.com/dshills/procicity/pkg/services"
	"github.com/dshills/procicity/pkg/world"
	"github.com/stretchr/testify/require"
)

func TestPlaceParksTiles_PicksAtMostMaxParks(t *testing.T) {
	w := world.New(8, 1, 1)
	for x := 0; x < 8; x++ {
		require.NoError(t, w.SetRoad(x, 0, true))
	}
	picks := PlaceParksTiles(w, rules.Default(), ParkConfig{MaxParks: 2})
	require.LessOrEqual(t, len(picks), 2)
}

func TestPlaceParksTiles_NoRoadsYieldsNoPicks(t *testing.T) {
	w := world.New(4, 4, 1)
	picks := PlaceParksTiles(w, rules.Default(), ParkConfig{MaxParks: 3})
	require.Empty(t, picks)
}

func TestPlaceServicesTiles_StopsWhenNoGain(t *testing.T) {
	w := world.New(4, 1, 1)
	for x := 0; x < 4; x++ {
		require.NoError(t, w.SetRoad(x, 0, true))
	}
	picks := PlaceServicesTiles(w, rules.Default(), ServiceConfig{
		Overlay:  world.OverlaySchool,
		MaxPicks: 5,
		Access:   services.DefaultConfig(),
	})
	require.LessOrEqual(t, len(picks), 5)
}
