// Package units converts between pixel space and centimeter space.
package units

import (
	"fmt"
	"math"

	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/models"

	"github.com/shopspring/decimal"
)

// Unit единица отображения измерений.
type Unit string

const (
	Px Unit = "px"
	Cm Unit = "cm"
)

// ============================================================
// Scalar conversion
// ============================================================

// CheckRatio отклоняет нулевое, отрицательное и нечисловое соотношение.
func CheckRatio(pxPerCm float64) error {
	if !(pxPerCm > 0) || math.IsInf(pxPerCm, 1) {
		return fmt.Errorf("%w: px_per_cm=%v", models.ErrInvalidRatio, pxPerCm)
	}
	return nil
}

// CmToPx cm * pxPerCm.
func CmToPx(cm, pxPerCm float64) (float64, error) {
	if err := CheckRatio(pxPerCm); err != nil {
		return 0, err
	}
	return cm * pxPerCm, nil
}

// PxToCm px / pxPerCm.
func PxToCm(px, pxPerCm float64) (float64, error) {
	if err := CheckRatio(pxPerCm); err != nil {
		return 0, err
	}
	return px / pxPerCm, nil
}

// ============================================================
// Footprint conversion
// ============================================================

// FootprintToPx переводит все четыре поля одним и тем же коэффициентом,
// так что пропорции сохраняются.
func FootprintToPx(f models.Footprint, pxPerCm float64) (models.RectGeometry, error) {
	if err := CheckRatio(pxPerCm); err != nil {
		return models.RectGeometry{}, err
	}
	return models.RectGeometry{
		X:      f.XCm * pxPerCm,
		Y:      f.YCm * pxPerCm,
		Width:  f.WidthCm * pxPerCm,
		Height: f.HeightCm * pxPerCm,
	}, nil
}

// FootprintFromPx обратное преобразование для сохранения размещения.
func FootprintFromPx(rect models.RectGeometry, pxPerCm float64, id string, mode models.Mode) (models.Footprint, error) {
	if err := CheckRatio(pxPerCm); err != nil {
		return models.Footprint{}, err
	}
	if mode == "" {
		mode = models.ModeFixed
	}
	return models.Footprint{
		ID:       id,
		XCm:      rect.X / pxPerCm,
		YCm:      rect.Y / pxPerCm,
		WidthCm:  rect.Width / pxPerCm,
		HeightCm: rect.Height / pxPerCm,
		Mode:     mode,
	}, nil
}

// CanvasSizeInCm размер canvas в сантиметрах.
func CanvasSizeInCm(size models.CanvasSize, pxPerCm float64) (models.CanvasSize, error) {
	if err := CheckRatio(pxPerCm); err != nil {
		return models.CanvasSize{}, err
	}
	return models.CanvasSize{
		Width:  size.Width / pxPerCm,
		Height: size.Height / pxPerCm,
	}, nil
}

// ============================================================
// Helpers
// ============================================================

// Distance евклидово расстояние между двумя точками в пикселях.
func Distance(p0, p1 models.Point) float64 {
	return math.Hypot(p1.X-p0.X, p1.Y-p0.Y)
}

// Snap притягивает координату к ближайшей линии сетки.
func Snap(position, gridPx float64, enabled bool) float64 {
	if !enabled || !(gridPx > 0) {
		return position
	}
	return math.Round(position/gridPx) * gridPx
}

func SnapPoint(p models.Point, gridPx float64, enabled bool) models.Point {
	return models.Point{
		X: Snap(p.X, gridPx, enabled),
		Y: Snap(p.Y, gridPx, enabled),
	}
}

// IsValidCalibration калибровка пригодна к использованию.
func IsValidCalibration(r models.CalibrationRatio) bool {
	return r.IsCalibrated && CheckRatio(r.PxPerCm) == nil
}

// FormatMeasurement "12.3 cm"; округление половины от нуля.
func FormatMeasurement(value float64, unit Unit, decimals int32) string {
	if decimals < 0 {
		decimals = 0
	}
	// decimal паникует на NaN/Inf
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Sprintf("%v %s", value, unit)
	}
	return decimal.NewFromFloat(value).StringFixed(decimals) + " " + string(unit)
}
