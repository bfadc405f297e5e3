package calibration

import (
	"testing"
	"time"

	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTransition(t *testing.T, s State, events ...Event) State {
	t.Helper()
	for _, e := range events {
		var err error
		s, err = Transition(s, e)
		require.NoError(t, err, "event %T", e)
	}
	return s
}

func measured(t *testing.T) State {
	return mustTransition(t, Initial(),
		Start{},
		Click{Point: models.Point{X: 100, Y: 300}},
		Click{Point: models.Point{X: 340, Y: 300}},
	)
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "instruction", StepInstruction.String())
	assert.Equal(t, "measuring", StepMeasuring.String())
	assert.Equal(t, "input", StepInput.String())
	assert.Equal(t, "result", StepResult.String())
	assert.Equal(t, "unknown", Step(42).String())
}

func TestStartEntersMeasuring(t *testing.T) {
	s := mustTransition(t, Initial(), Start{})
	assert.Equal(t, StepMeasuring, s.Step)
	assert.Empty(t, s.Points)
}

func TestClicksOutsideMeasuringAreIgnored(t *testing.T) {
	s := mustTransition(t, Initial(), Click{Point: models.Point{X: 1, Y: 1}})
	assert.Equal(t, StepInstruction, s.Step)
	assert.Empty(t, s.Points)
}

func TestSecondClickMovesToInput(t *testing.T) {
	s := mustTransition(t, Initial(), Start{}, Click{Point: models.Point{X: 100, Y: 300}})
	assert.Equal(t, StepMeasuring, s.Step)
	assert.Len(t, s.Points, 1)

	s = mustTransition(t, s, Click{Point: models.Point{X: 340, Y: 300}})
	assert.Equal(t, StepInput, s.Step)
	assert.Len(t, s.Points, 2)
	assert.Equal(t, 240.0, s.PxMeasured)
}

func TestThirdClickIgnored(t *testing.T) {
	s := measured(t)
	next := mustTransition(t, s, Click{Point: models.Point{X: 999, Y: 999}})
	assert.Equal(t, s, next)
	assert.Equal(t, 240.0, next.PxMeasured)
}

func TestTransitionDoesNotMutateInput(t *testing.T) {
	s := mustTransition(t, Initial(), Start{}, Click{Point: models.Point{X: 1, Y: 2}})
	before := append([]models.MeasurementPoint{}, s.Points...)

	_ = mustTransition(t, s, Click{Point: models.Point{X: 3, Y: 4}})
	assert.Equal(t, before, s.Points)
	assert.Equal(t, StepMeasuring, s.Step)
}

func TestLivePreview(t *testing.T) {
	s := measured(t)

	s = mustTransition(t, s, EnterLength{Value: "42"})
	ratio, ok := s.Preview()
	require.True(t, ok)
	assert.InDelta(t, 5.714285714, ratio, 1e-9)

	s = mustTransition(t, s, EnterLength{Value: "24"})
	ratio, ok = s.Preview()
	require.True(t, ok)
	assert.InDelta(t, 10.0, ratio, 1e-12)

	for _, bad := range []string{"", "abc", "0", "-3", "NaN", "Inf"} {
		s = mustTransition(t, s, EnterLength{Value: bad})
		_, ok = s.Preview()
		assert.False(t, ok, "value %q", bad)
	}
}

func TestScenarioAConfirm(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := mustTransition(t, measured(t), EnterLength{Value: "42"})

	s, err := Transition(s, Confirm{At: at, SubjectID: "tee-01", ViewID: "front"})
	require.NoError(t, err)
	assert.Equal(t, StepResult, s.Step)
	require.NotNil(t, s.Result)
	assert.InDelta(t, 5.714, s.Result.PxPerCm, 1e-3)
	assert.True(t, s.Result.IsCalibrated)
	assert.Equal(t, "tee-01", s.Result.SubjectID)
	assert.Equal(t, "front", s.Result.ViewID)
	assert.Equal(t, models.SourceManual, s.Result.Source)
	require.NotNil(t, s.Result.CalibratedAt)
	assert.True(t, at.Equal(*s.Result.CalibratedAt))
}

func TestConfirmFailures(t *testing.T) {
	tests := []struct {
		name  string
		state State
	}{
		{"from instruction", Initial()},
		{"one point", mustTransition(t, Initial(), Start{}, Click{Point: models.Point{X: 1, Y: 1}})},
		{"no length", measured(t)},
		{"non numeric", mustTransition(t, measured(t), EnterLength{Value: "forty"})},
		{"zero length", mustTransition(t, measured(t), EnterLength{Value: "0"})},
		{"negative length", mustTransition(t, measured(t), EnterLength{Value: "-42"})},
		{"coincident points", mustTransition(t, Initial(),
			Start{},
			Click{Point: models.Point{X: 5, Y: 5}},
			Click{Point: models.Point{X: 5, Y: 5}},
			EnterLength{Value: "10"},
		)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := Transition(tt.state, Confirm{At: time.Now()})
			assert.ErrorIs(t, err, models.ErrCalibrationIncomplete)
			assert.Equal(t, tt.state, next)
			assert.Nil(t, next.Result)
		})
	}
}

func TestConfirmTwiceRejected(t *testing.T) {
	s := mustTransition(t, measured(t), EnterLength{Value: "42"}, Confirm{At: time.Now()})
	_, err := Transition(s, Confirm{At: time.Now()})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestInvalidTransitions(t *testing.T) {
	_, err := Transition(Initial(), EnterLength{Value: "42"})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = Transition(measured(t), Start{})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestRestartWhileMeasuringClearsPoints(t *testing.T) {
	s := mustTransition(t, Initial(), Start{}, Click{Point: models.Point{X: 1, Y: 1}}, Start{})
	assert.Equal(t, StepMeasuring, s.Step)
	assert.Empty(t, s.Points)
}

func TestResetFromEveryStep(t *testing.T) {
	states := []State{
		Initial(),
		mustTransition(t, Initial(), Start{}),
		mustTransition(t, measured(t), EnterLength{Value: "42"}),
		mustTransition(t, measured(t), EnterLength{Value: "42"}, Confirm{At: time.Now()}),
	}

	for _, s := range states {
		t.Run(s.Step.String(), func(t *testing.T) {
			next := mustTransition(t, s, Reset{})
			assert.Equal(t, Initial(), next)
		})
	}
}
