package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/procicity/pkg/transform"
)

func TestParseRotation_AcceptsAllFourQuarterTurns(t *testing.T) {
	cases := map[int]transform.Rotation{
		0:   transform.Rotate0,
		90:  transform.Rotate90,
		180: transform.Rotate180,
		270: transform.Rotate270,
	}
	for degrees, want := range cases {
		got, err := parseRotation(degrees)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestParseRotation_RejectsNonQuarterTurn(t *testing.T) {
	_, err := parseRotation(45)
	require.Error(t, err)
}

func TestParseCrop_EmptyStringMeansNoCrop(t *testing.T) {
	rect, err := parseCrop("")
	require.NoError(t, err)
	assert.Nil(t, rect)
}

func TestParseCrop_ParsesFourFields(t *testing.T) {
	rect, err := parseCrop("1,2,30,40")
	require.NoError(t, err)
	require.NotNil(t, rect)
	assert.Equal(t, transform.Rect{MinX: 1, MinY: 2, MaxX: 30, MaxY: 40}, *rect)
}

func TestParseCrop_RejectsWrongFieldCount(t *testing.T) {
	_, err := parseCrop("1,2,3")
	require.Error(t, err)
}

func TestParseCrop_RejectsNonIntegerField(t *testing.T) {
	_, err := parseCrop("1,2,x,4")
	require.Error(t, err)
}
