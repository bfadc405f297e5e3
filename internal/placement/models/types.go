package models

import (
	"fmt"
	"time"
)

// ============================================================
// Geometry primitives
// ============================================================

// Point точка в пиксельном пространстве поверхности отрисовки.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MeasurementPoint клик пользователя во время калибровки.
type MeasurementPoint = Point

// RectGeometry прямоугольник в пикселях (то, что рисует canvas).
type RectGeometry struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type CanvasSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ============================================================
// Views
// ============================================================

type View string

const (
	ViewFront       View = "front"
	ViewBack        View = "back"
	ViewSleeveLeft  View = "sleeveL"
	ViewSleeveRight View = "sleeveR"
)

var Views = []View{ViewFront, ViewBack, ViewSleeveLeft, ViewSleeveRight}

// ParseView проверяет название вида изделия.
func ParseView(s string) (View, error) {
	for _, v := range Views {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: unknown view %q", ErrInvalidInput, s)
}

// ============================================================
// Placement mode
// ============================================================

type Mode string

const (
	ModeFixed        Mode = "fixed"
	ModeProportional Mode = "proportional"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFixed, ModeProportional:
		return Mode(s), nil
	case "":
		return ModeFixed, nil
	}
	return "", fmt.Errorf("%w: unknown placement mode %q", ErrInvalidInput, s)
}

// ============================================================
// Calibration
// ============================================================

// CalibrationSource откуда взялось соотношение px/cm.
type CalibrationSource string

const (
	SourceNone      CalibrationSource = ""
	SourceManual    CalibrationSource = "manual"
	SourceReference CalibrationSource = "reference"
)

// CalibrationRatio соотношение пикселей к сантиметрам для конкретного subject/view.
// PxPerCm имеет смысл только при IsCalibrated == true и всегда > 0.
type CalibrationRatio struct {
	PxPerCm      float64           `json:"px_per_cm"`
	IsCalibrated bool              `json:"is_calibrated"`
	CalibratedAt *time.Time        `json:"calibrated_at,omitempty"`
	SubjectID    string            `json:"subject_id"`
	ViewID       string            `json:"view_id"`
	Source       CalibrationSource `json:"source,omitempty"`
}

// Uncalibrated возвращает пустое соотношение для subject/view.
func Uncalibrated(subjectID, viewID string) CalibrationRatio {
	return CalibrationRatio{SubjectID: subjectID, ViewID: viewID}
}

// ReferenceImage фото изделия, на котором размещается принт.
// KnownPxPerCm заполняется, если у вида уже есть метаданные калибровки.
type ReferenceImage struct {
	SubjectID    string   `json:"subject_id"`
	ViewID       string   `json:"view_id"`
	View         View     `json:"view,omitempty"`
	BaseSize     string   `json:"base_size,omitempty"`
	KnownPxPerCm *float64 `json:"px_per_cm,omitempty"`
}

// ============================================================
// Placement
// ============================================================

// Footprint положение и размер принта в сантиметрах.
type Footprint struct {
	ID          string   `json:"id"`
	XCm         float64  `json:"x_cm"`
	YCm         float64  `json:"y_cm"`
	WidthCm     float64  `json:"width_cm"`
	HeightCm    float64  `json:"height_cm"`
	RotationDeg *float64 `json:"rotation_deg,omitempty"`
	OpacityPct  *float64 `json:"opacity_pct,omitempty"`
	Mode        Mode     `json:"mode"`
}

// Preset именованный шаблон размещения в сантиметрах.
type Preset struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	View        View    `json:"view"`
	XCm         float64 `json:"x_cm"`
	YCm         float64 `json:"y_cm"`
	WidthCm     float64 `json:"width_cm"`
	HeightCm    float64 `json:"height_cm"`
	Mode        Mode    `json:"mode"`
	Description string  `json:"description,omitempty"`
	Custom      bool    `json:"custom"`
}

// ============================================================
// Size table
// ============================================================

type SizeEntry struct {
	Label          string   `json:"size"`
	ChestWidthCm   float64  `json:"chest_cm"`
	BodyLengthCm   *float64 `json:"body_cm,omitempty"`
	SleeveLengthCm *float64 `json:"sleeve_cm,omitempty"`
}

// SizeTable упорядоченная таблица размеров; BaseSize задаёт размер,
// для которого нарисованы исходные размещения.
type SizeTable struct {
	BaseSize string      `json:"base_size"`
	Entries  []SizeEntry `json:"sizes"`
}

// Lookup ищет размер по метке.
func (t SizeTable) Lookup(label string) (SizeEntry, bool) {
	for _, e := range t.Entries {
		if e.Label == label {
			return e, true
		}
	}
	return SizeEntry{}, false
}

// Labels метки в порядке таблицы.
func (t SizeTable) Labels() []string {
	labels := make([]string, 0, len(t.Entries))
	for _, e := range t.Entries {
		labels = append(labels, e.Label)
	}
	return labels
}

// ============================================================
// Overlay geometry (derived, never persisted)
// ============================================================

type GridGeometry struct {
	Vertical   []float64 `json:"vertical"`
	Horizontal []float64 `json:"horizontal"`
}

type RulerMarks struct {
	Major []float64 `json:"major"`
	Minor []float64 `json:"minor"`
}

type RulerGeometry struct {
	Horizontal RulerMarks `json:"horizontal"`
	Vertical   RulerMarks `json:"vertical"`
}

type Overlay struct {
	Grid   GridGeometry  `json:"grid"`
	Rulers RulerGeometry `json:"rulers"`
}
