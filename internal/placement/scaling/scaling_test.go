package scaling

import (
	"math"
	"testing"

	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func teeSizes() models.SizeTable {
	return models.SizeTable{
		BaseSize: "L",
		Entries: []models.SizeEntry{
			{Label: "S", ChestWidthCm: 40},
			{Label: "M", ChestWidthCm: 42},
			{Label: "L", ChestWidthCm: 44, BodyLengthCm: ptr(72)},
			{Label: "XL", ChestWidthCm: 46},
			{Label: "XXL", ChestWidthCm: 48},
		},
	}
}

func TestFactor(t *testing.T) {
	f, err := Factor(44, 46)
	require.NoError(t, err)
	assert.InDelta(t, 1.0454545454, f, 1e-9)

	f, err = Factor(44, 44)
	require.NoError(t, err)
	assert.Equal(t, 1.0, f)
}

func TestFactorScenarioD(t *testing.T) {
	tests := []struct {
		name         string
		base, target float64
	}{
		{"zero base", 0, 46},
		{"negative base", -44, 46},
		{"nan base", math.NaN(), 46},
		{"zero target", 44, 0},
		{"inf base", math.Inf(1), 46},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Factor(tt.base, tt.target)
			assert.ErrorIs(t, err, models.ErrInvalidSizeTable)
		})
	}
}

func TestScaleProportionalScenarioC(t *testing.T) {
	f := models.Footprint{ID: "logo", XCm: 3, YCm: 7.5, WidthCm: 9, HeightCm: 9, Mode: models.ModeProportional}

	factor, err := FactorFor(teeSizes(), "XL")
	require.NoError(t, err)

	got := ScaleProportional(f, factor)
	assert.InDelta(t, 9.409, got.WidthCm, 1e-3)
	assert.InDelta(t, 9.409, got.HeightCm, 1e-3)
	assert.Equal(t, f.XCm, got.XCm)
	assert.Equal(t, f.YCm, got.YCm)
	assert.Equal(t, f.ID, got.ID)
	assert.Equal(t, 9.0, f.WidthCm, "input must not be mutated")
}

func TestScaleIdentity(t *testing.T) {
	for _, f := range []models.Footprint{
		{ID: "a", XCm: 1, YCm: 2, WidthCm: 3.3, HeightCm: 4.4, Mode: models.ModeProportional},
		{ID: "b", XCm: 0, YCm: 0, WidthCm: 29.7, HeightCm: 42, Mode: models.ModeFixed, RotationDeg: ptr(15)},
		{ID: "c", WidthCm: 1.0 / 3.0, HeightCm: math.Pi, Mode: models.ModeProportional, OpacityPct: ptr(80)},
	} {
		assert.Empty(t, cmp.Diff(f, ScaleProportional(f, 1.0)))
	}
}

func TestFixedModeInvariance(t *testing.T) {
	f := models.Footprint{ID: "chest", XCm: 3, YCm: 7.5, WidthCm: 9, HeightCm: 7.5, Mode: models.ModeFixed}
	for _, factor := range []float64{0.5, 0.909, 1.0454, 2, 10} {
		assert.Empty(t, cmp.Diff(f, ScaleProportional(f, factor)), "factor %v", factor)
	}
}

func TestFactorForMissingSizes(t *testing.T) {
	_, err := FactorFor(teeSizes(), "XXXL")
	assert.ErrorIs(t, err, models.ErrInvalidSizeTable)

	table := teeSizes()
	table.BaseSize = ""
	_, err = FactorFor(table, "XL")
	assert.ErrorIs(t, err, models.ErrInvalidSizeTable)

	table.BaseSize = "4XL"
	_, err = FactorFor(table, "XL")
	assert.ErrorIs(t, err, models.ErrInvalidSizeTable)
}

func TestRescaleDoesNotCompound(t *testing.T) {
	table := teeSizes()
	origin := models.Footprint{ID: "logo", XCm: 5, YCm: 6, WidthCm: 9, HeightCm: 9, Mode: models.ModeProportional}

	current := origin
	for _, size := range []string{"XL", "S", "XXL", "M", "XL", "L"} {
		var err error
		current, err = Rescale(origin, table, "L", size)
		require.NoError(t, err)
	}
	assert.Empty(t, cmp.Diff(origin, current))
}

func TestRescaleKeepsOriginOnError(t *testing.T) {
	origin := models.Footprint{ID: "logo", WidthCm: 9, HeightCm: 9, Mode: models.ModeProportional}
	got, err := Rescale(origin, teeSizes(), "L", "nope")
	assert.ErrorIs(t, err, models.ErrInvalidSizeTable)
	assert.Equal(t, origin, got)
}
