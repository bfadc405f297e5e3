package units

import (
	"math"
	"testing"

	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestCmToPx(t *testing.T) {
	tests := []struct {
		name     string
		cm       float64
		pxPerCm  float64
		expected float64
	}{
		{"zero", 0, 28.35, 0},
		{"one cm", 1, 28.35, 28.35},
		{"ten cm", 10, 28.35, 283.5},
		{"fractional ratio", 2.5, 5.0, 12.5},
		{"negative offset", -3, 10, -30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CmToPx(tt.cm, tt.pxPerCm)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestPxToCm(t *testing.T) {
	got, err := PxToCm(283.5, 28.35)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, got, 1e-9)

	got, err = PxToCm(240, 240.0/42.0)
	require.NoError(t, err)
	assert.InDelta(t, 42.0, got, 1e-9)
}

func TestConversionRejectsInvalidRatio(t *testing.T) {
	for _, r := range []float64{0, -1, -28.35, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := CmToPx(1, r)
		assert.ErrorIs(t, err, models.ErrInvalidRatio, "CmToPx ratio %v", r)

		_, err = PxToCm(1, r)
		assert.ErrorIs(t, err, models.ErrInvalidRatio, "PxToCm ratio %v", r)

		_, err = FootprintToPx(models.Footprint{WidthCm: 1, HeightCm: 1}, r)
		assert.ErrorIs(t, err, models.ErrInvalidRatio)

		_, err = CanvasSizeInCm(models.CanvasSize{Width: 100, Height: 100}, r)
		assert.ErrorIs(t, err, models.ErrInvalidRatio)
	}
}

func TestRoundTrip(t *testing.T) {
	cms := []float64{0, 1e-6, 0.5, 1, 7.5, 29.7, 42, 123.456, 1e4}
	ratios := []float64{1e-3, 0.37, 1, 5.714285714, 28.35, 96 / 2.54, 300, 1e5}

	for _, cm := range cms {
		for _, r := range ratios {
			px, err := CmToPx(cm, r)
			require.NoError(t, err)
			back, err := PxToCm(px, r)
			require.NoError(t, err)
			assert.True(t, scalar.EqualWithinAbsOrRel(back, cm, 1e-12, 1e-9),
				"round trip cm=%v r=%v got %v", cm, r, back)
		}
	}
}

func TestFootprintConversionPreservesAspect(t *testing.T) {
	f := models.Footprint{ID: "fp-1", XCm: 3, YCm: 7.5, WidthCm: 9, HeightCm: 7.5, Mode: models.ModeProportional}

	rect, err := FootprintToPx(f, 28.35)
	require.NoError(t, err)
	assert.InDelta(t, 85.05, rect.X, 1e-9)
	assert.InDelta(t, 212.625, rect.Y, 1e-9)
	assert.InDelta(t, f.WidthCm/f.HeightCm, rect.Width/rect.Height, 1e-12)

	back, err := FootprintFromPx(rect, 28.35, f.ID, f.Mode)
	require.NoError(t, err)
	assert.Equal(t, f.ID, back.ID)
	assert.Equal(t, models.ModeProportional, back.Mode)
	assert.InDelta(t, f.XCm, back.XCm, 1e-9)
	assert.InDelta(t, f.YCm, back.YCm, 1e-9)
	assert.InDelta(t, f.WidthCm, back.WidthCm, 1e-9)
	assert.InDelta(t, f.HeightCm, back.HeightCm, 1e-9)
}

func TestFootprintFromPxDefaultsToFixed(t *testing.T) {
	f, err := FootprintFromPx(models.RectGeometry{Width: 10, Height: 10}, 10, "a", "")
	require.NoError(t, err)
	assert.Equal(t, models.ModeFixed, f.Mode)
}

func TestDistance(t *testing.T) {
	assert.Equal(t, 240.0, Distance(models.Point{X: 100, Y: 300}, models.Point{X: 340, Y: 300}))
	assert.Equal(t, 5.0, Distance(models.Point{X: 0, Y: 0}, models.Point{X: 3, Y: 4}))
	assert.Equal(t, 0.0, Distance(models.Point{X: 7, Y: 7}, models.Point{X: 7, Y: 7}))
}

func TestSnap(t *testing.T) {
	tests := []struct {
		name     string
		pos      float64
		grid     float64
		enabled  bool
		expected float64
	}{
		{"disabled", 13, 10, false, 13},
		{"round down", 13, 10, true, 10},
		{"round up", 16, 10, true, 20},
		{"zero grid", 13, 0, true, 13},
		{"negative grid", 13, -5, true, 13},
		{"fractional grid", 30, 28.35, true, 28.35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Snap(tt.pos, tt.grid, tt.enabled), 1e-9)
		})
	}

	p := SnapPoint(models.Point{X: 14, Y: 26}, 10, true)
	assert.Equal(t, models.Point{X: 10, Y: 30}, p)
}

func TestCanvasSizeInCm(t *testing.T) {
	size, err := CanvasSizeInCm(models.CanvasSize{Width: 283.5, Height: 567}, 28.35)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, size.Width, 1e-9)
	assert.InDelta(t, 20.0, size.Height, 1e-9)
}

func TestIsValidCalibration(t *testing.T) {
	assert.True(t, IsValidCalibration(models.CalibrationRatio{PxPerCm: 5, IsCalibrated: true}))
	assert.False(t, IsValidCalibration(models.CalibrationRatio{PxPerCm: 5}))
	assert.False(t, IsValidCalibration(models.CalibrationRatio{PxPerCm: 0, IsCalibrated: true}))
	assert.False(t, IsValidCalibration(models.CalibrationRatio{PxPerCm: -2, IsCalibrated: true}))
}

func TestFormatMeasurement(t *testing.T) {
	assert.Equal(t, "5.71 px", FormatMeasurement(240.0/42.0, Px, 2))
	assert.Equal(t, "9.4 cm", FormatMeasurement(9.409, Cm, 1))
	assert.Equal(t, "2.5 cm", FormatMeasurement(2.45, Cm, 1))
	assert.Equal(t, "-2.5 cm", FormatMeasurement(-2.45, Cm, 1))
	assert.Equal(t, "3 cm", FormatMeasurement(3, Cm, -1))
	assert.Equal(t, "NaN cm", FormatMeasurement(math.NaN(), Cm, 1))
}
