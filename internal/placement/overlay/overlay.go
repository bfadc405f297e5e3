// Package overlay derives grid lines and ruler tick marks from a calibration.
// Results are pixel offsets for the rendering layer and are never persisted.
package overlay

import (
	"math"

	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/models"
	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/units"

	"gonum.org/v1/gonum/floats/scalar"
)

const (
	DefaultSpacingCm       = 1.0
	DefaultMajorIntervalCm = 1.0
	DefaultMinorIntervalCm = 0.5

	// MaxMarks предел числа смещений на одну ось. При вырожденно малом px/cm
	// последовательность обрывается на нём раньше края холста.
	MaxMarks = 100_000

	coincideTol = 1e-9
)

// Options интервалы в сантиметрах.
type Options struct {
	SpacingCm       float64
	MajorIntervalCm float64
	MinorIntervalCm float64
}

func DefaultOptions() Options {
	return Options{
		SpacingCm:       DefaultSpacingCm,
		MajorIntervalCm: DefaultMajorIntervalCm,
		MinorIntervalCm: DefaultMinorIntervalCm,
	}
}

func (o Options) normalized() Options {
	if !(o.SpacingCm > 0) {
		o.SpacingCm = DefaultSpacingCm
	}
	if !(o.MajorIntervalCm > 0) {
		o.MajorIntervalCm = DefaultMajorIntervalCm
	}
	if !(o.MinorIntervalCm > 0) {
		o.MinorIntervalCm = DefaultMinorIntervalCm
	}
	return o
}

// ============================================================
// Grid
// ============================================================

// GridLines смещения вертикальных (по ширине) и горизонтальных (по высоте)
// линий сетки с шагом spacingCm. Пустые последовательности без калибровки.
// Каждая ось ограничена MaxMarks линиями; len == MaxMarks означает, что
// сетка обрезана.
func GridLines(canvas models.CanvasSize, ratio models.CalibrationRatio, spacingCm float64) models.GridGeometry {
	grid := models.GridGeometry{Vertical: []float64{}, Horizontal: []float64{}}
	if !units.IsValidCalibration(ratio) {
		return grid
	}
	if !(spacingCm > 0) {
		spacingCm = DefaultSpacingCm
	}

	grid.Vertical = offsets(canvas.Width, spacingCm, ratio.PxPerCm)
	grid.Horizontal = offsets(canvas.Height, spacingCm, ratio.PxPerCm)
	return grid
}

// offsets cmToPx(i*step) для i = 0,1,... пока смещение <= limit,
// но не более MaxMarks значений.
// Умножение вместо накопления, чтобы не копить ошибку округления.
func offsets(limitPx, stepCm, pxPerCm float64) []float64 {
	out := []float64{}
	if !(limitPx >= 0) {
		return out
	}
	for i := 0; i < MaxMarks; i++ {
		px := float64(i) * stepCm * pxPerCm
		if px > limitPx && !scalar.EqualWithinAbsOrRel(px, limitPx, coincideTol, coincideTol) {
			break
		}
		out = append(out, px)
	}
	return out
}

// ============================================================
// Rulers
// ============================================================

// RulerMarks деления линейки длиной lengthPx: major каждые opts.MajorIntervalCm,
// minor каждые opts.MinorIntervalCm, без совпадающих с major.
// Major и кандидаты minor ограничены MaxMarks, как в GridLines.
func RulerMarks(lengthPx float64, ratio models.CalibrationRatio, opts Options) models.RulerMarks {
	marks := models.RulerMarks{Major: []float64{}, Minor: []float64{}}
	if !units.IsValidCalibration(ratio) {
		return marks
	}
	opts = opts.normalized()

	marks.Major = offsets(lengthPx, opts.MajorIntervalCm, ratio.PxPerCm)

	for _, px := range offsets(lengthPx, opts.MinorIntervalCm, ratio.PxPerCm) {
		cm := px / ratio.PxPerCm
		nearest := math.Round(cm/opts.MajorIntervalCm) * opts.MajorIntervalCm
		if scalar.EqualWithinAbsOrRel(cm, nearest, coincideTol, coincideTol) {
			continue
		}
		marks.Minor = append(marks.Minor, px)
	}
	return marks
}

// Rulers линейки для обеих осей: горизонтальная по ширине, вертикальная по высоте.
func Rulers(canvas models.CanvasSize, ratio models.CalibrationRatio, opts Options) models.RulerGeometry {
	return models.RulerGeometry{
		Horizontal: RulerMarks(canvas.Width, ratio, opts),
		Vertical:   RulerMarks(canvas.Height, ratio, opts),
	}
}

// Build сетка и линейки за один вызов.
func Build(canvas models.CanvasSize, ratio models.CalibrationRatio, opts Options) models.Overlay {
	opts = opts.normalized()
	return models.Overlay{
		Grid:   GridLines(canvas, ratio, opts.SpacingCm),
		Rulers: Rulers(canvas, ratio, opts),
	}
}
