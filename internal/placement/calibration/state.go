// Package calibration derives a px/cm ratio from a two-point measurement
// against a known physical length.
package calibration

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/models"
	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/units"
)

// ============================================================
// Steps
// ============================================================

type Step int

const (
	StepInstruction Step = iota // показываем опорную линию
	StepMeasuring               // ждём два клика
	StepInput                   // ждём реальную длину в cm
	StepResult                  // соотношение зафиксировано
)

func (s Step) String() string {
	switch s {
	case StepInstruction:
		return "instruction"
	case StepMeasuring:
		return "measuring"
	case StepInput:
		return "input"
	case StepResult:
		return "result"
	default:
		return "unknown"
	}
}

func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ============================================================
// State
// ============================================================

// State снимок процесса калибровки. Значение, не указатель:
// Transition никогда не меняет переданное состояние.
type State struct {
	Step       Step                      `json:"step"`
	Points     []models.MeasurementPoint `json:"points"`
	PxMeasured float64                   `json:"px_measured"`
	CmInput    string                    `json:"cm_input"`
	PxPerCm    float64                   `json:"px_per_cm"`
	Result     *models.CalibrationRatio  `json:"result,omitempty"`
}

// Initial пустое состояние шага Instruction.
func Initial() State {
	return State{Step: StepInstruction, Points: []models.MeasurementPoint{}}
}

// InProgress измерение начато, но ещё не подтверждено.
func (s State) InProgress() bool {
	return s.Step == StepMeasuring || s.Step == StepInput
}

// Preview живое соотношение на шаге Input; false, если оно ещё не определено.
func (s State) Preview() (float64, bool) {
	return s.PxPerCm, s.Step == StepInput && s.PxPerCm > 0
}

// ============================================================
// Events
// ============================================================

// Event вход конечного автомата.
type Event interface {
	isEvent()
}

// Start пользователь нажал «начать измерение».
type Start struct{}

// Click клик по поверхности отрисовки (пиксели).
type Click struct {
	Point models.MeasurementPoint
}

// EnterLength пользователь ввёл реальную длину; строка как есть из поля ввода.
type EnterLength struct {
	Value string
}

// Confirm подтверждение результата.
type Confirm struct {
	At        time.Time
	SubjectID string
	ViewID    string
}

// Reset сбрасывает все временные поля.
type Reset struct{}

func (Start) isEvent()       {}
func (Click) isEvent()       {}
func (EnterLength) isEvent() {}
func (Confirm) isEvent()     {}
func (Reset) isEvent()       {}

// ============================================================
// Transition
// ============================================================

// Transition чистая функция (state, event) -> state. При ошибке
// возвращается исходное состояние без изменений.
func Transition(s State, e Event) (State, error) {
	switch ev := e.(type) {
	case Reset:
		return Initial(), nil

	case Start:
		if s.Step != StepInstruction && s.Step != StepMeasuring {
			return s, fmt.Errorf("%w: start from %s", models.ErrInvalidTransition, s.Step)
		}
		next := Initial()
		next.Step = StepMeasuring
		return next, nil

	case Click:
		if s.Step != StepMeasuring || len(s.Points) >= 2 {
			return s, nil
		}
		next := s
		next.Points = append(append([]models.MeasurementPoint{}, s.Points...), ev.Point)
		if len(next.Points) == 2 {
			next.Step = StepInput
			next.PxMeasured = units.Distance(next.Points[0], next.Points[1])
			next.CmInput = ""
			next.PxPerCm = 0
		}
		return next, nil

	case EnterLength:
		if s.Step != StepInput {
			return s, fmt.Errorf("%w: length entered during %s", models.ErrInvalidTransition, s.Step)
		}
		next := s
		next.CmInput = ev.Value
		next.PxPerCm = 0
		if cm, ok := parseLength(ev.Value); ok && s.PxMeasured > 0 {
			next.PxPerCm = s.PxMeasured / cm
		}
		return next, nil

	case Confirm:
		if s.Step == StepResult {
			return s, fmt.Errorf("%w: calibration already confirmed", models.ErrInvalidTransition)
		}
		if s.Step != StepInput {
			return s, fmt.Errorf("%w: %d of 2 measurement points", models.ErrCalibrationIncomplete, len(s.Points))
		}
		if _, ok := parseLength(s.CmInput); !ok {
			return s, fmt.Errorf("%w: real length %q is not a positive number", models.ErrCalibrationIncomplete, s.CmInput)
		}
		if err := units.CheckRatio(s.PxPerCm); err != nil {
			return s, fmt.Errorf("%w: px_per_cm=%v", models.ErrCalibrationIncomplete, s.PxPerCm)
		}
		at := ev.At
		next := s
		next.Step = StepResult
		next.Result = &models.CalibrationRatio{
			PxPerCm:      s.PxPerCm,
			IsCalibrated: true,
			CalibratedAt: &at,
			SubjectID:    ev.SubjectID,
			ViewID:       ev.ViewID,
			Source:       models.SourceManual,
		}
		return next, nil
	}

	return s, fmt.Errorf("%w: unknown event %T", models.ErrInvalidTransition, e)
}

func parseLength(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsInf(v, 0) || !(v > 0) {
		return 0, false
	}
	return v, true
}
