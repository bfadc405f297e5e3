package calibration

import (
	"time"

	"github.com/LOSTXKER/anajak-mockup-god/internal/common/logger"
	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/models"
)

var calLog = logger.For("calibration")

// ============================================================
// Machine
// ============================================================

// Machine тонкий адаптер: превращает UI-действия в события
// и хранит текущее состояние для одного subject/view.
type Machine struct {
	state     State
	subjectID string
	viewID    string
	now       func() time.Time
}

type Option func(*Machine)

// WithClock подменяет источник времени для calibratedAt.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

func NewMachine(subjectID, viewID string, opts ...Option) *Machine {
	m := &Machine{
		state:     Initial(),
		subjectID: subjectID,
		viewID:    viewID,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) State() State {
	return m.state
}

func (m *Machine) Subject() (string, string) {
	return m.subjectID, m.viewID
}

func (m *Machine) apply(e Event) error {
	next, err := Transition(m.state, e)
	if err != nil {
		calLog.Debug().Err(err).Str("step", m.state.Step.String()).Msg("transition rejected")
		return err
	}
	if next.Step != m.state.Step {
		calLog.Debug().
			Str("subject_id", m.subjectID).
			Str("view_id", m.viewID).
			Str("from", m.state.Step.String()).
			Str("to", next.Step.String()).
			Msg("step changed")
	}
	m.state = next
	return nil
}

func (m *Machine) Start() error {
	return m.apply(Start{})
}

func (m *Machine) Click(x, y float64) error {
	return m.apply(Click{Point: models.MeasurementPoint{X: x, Y: y}})
}

func (m *Machine) EnterLength(value string) error {
	return m.apply(EnterLength{Value: value})
}

// Preview живое значение px/cm на шаге Input.
func (m *Machine) Preview() (float64, bool) {
	return m.state.Preview()
}

// Confirm фиксирует соотношение. На ошибке состояние остаётся прежним.
func (m *Machine) Confirm() (models.CalibrationRatio, error) {
	err := m.apply(Confirm{At: m.now().UTC(), SubjectID: m.subjectID, ViewID: m.viewID})
	if err != nil {
		return models.CalibrationRatio{}, err
	}
	return *m.state.Result, nil
}

// Reset доступен из любого шага и не трогает уже зафиксированные соотношения.
func (m *Machine) Reset() {
	m.state = Initial()
}

// Retarget переключает машину на другой subject/view. Незавершённое
// измерение отбрасывается, чтобы не перенести его на новое изображение.
func (m *Machine) Retarget(subjectID, viewID string) {
	if m.state.InProgress() {
		calLog.Debug().
			Str("subject_id", m.subjectID).
			Str("view_id", m.viewID).
			Msg("discarding in-progress measurement")
	}
	m.subjectID = subjectID
	m.viewID = viewID
	m.state = Initial()
}
