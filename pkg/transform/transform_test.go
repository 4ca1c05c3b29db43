package transform

import (
	"testing"

	"github.com/dshills/procicity/pkg/world"
	"github.com/stretchr/testify/require"
)

func TestApply_FourRotationsIsIdentity(t *testing.T) {
	w := world.New(3, 2, 7)
	require.NoError(t, w.SetOverlay(1, 0, world.OverlayResidential, 2))

	out := w
	for i := 0; i < 4; i++ {
		out = Apply(out, Pipeline{Rotate: Rotate90})
	}
	require.Equal(t, w.Width, out.Width)
	require.Equal(t, w.Height, out.Height)
	for i := range w.Tiles {
		require.Equal(t, w.Tiles[i].Overlay, out.Tiles[i].Overlay)
		require.Equal(t, w.Tiles[i].Level, out.Tiles[i].Level)
	}
}

func TestApply_DoubleMirrorXIsIdentity(t *testing.T) {
	w := world.New(4, 3, 1)
	require.NoError(t, w.SetOverlay(1, 1, world.OverlayCommercial, 1))

	out := Apply(w, Pipeline{MirrorX: true})
	out = Apply(out, Pipeline{MirrorX: true})
	for i := range w.Tiles {
		require.Equal(t, w.Tiles[i].Overlay, out.Tiles[i].Overlay)
	}
}

func TestApply_RotationSwapsDimensions(t *testing.T) {
	w := world.New(5, 3, 1)
	out := Apply(w, Pipeline{Rotate: Rotate90})
	require.Equal(t, 3, out.Width)
	require.Equal(t, 5, out.Height)
}

func TestApply_CropAppliedLastInOutputCoords(t *testing.T) {
	w := world.New(6, 6, 1)
	require.NoError(t, w.SetOverlay(5, 5, world.OverlayPark, 1))
	out := Apply(w, Pipeline{Crop: &Rect{MinX: 4, MinY: 4, MaxX: 6, MaxY: 6}})
	require.Equal(t, 2, out.Width)
	require.Equal(t, 2, out.Height)
	require.Equal(t, world.OverlayPark, out.At(1, 1).Overlay)
}

func TestApply_RecomputesRoadMaskAfterRotation(t *testing.T) {
	w := world.New(3, 3, 1)
	require.NoError(t, w.SetRoad(1, 0, true))
	require.NoError(t, w.SetRoad(1, 1, true))
	out := Apply(w, Pipeline{Rotate: Rotate90})
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			tile := out.At(x, y)
			if tile.Overlay != world.OverlayRoad {
				require.Zero(t, tile.RoadMask())
			}
		}
	}
	// The vertical pair (1,0)-(1,1) becomes the horizontal pair (1,1)-(2,1).
	require.Equal(t, uint8(1<<1), out.At(1, 1).RoadMask()) // east neighbor
	require.Equal(t, uint8(1<<3), out.At(2, 1).RoadMask()) // west neighbor
}
