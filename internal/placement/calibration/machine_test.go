package calibration

import (
	"testing"
	"time"

	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestMachineFlow(t *testing.T) {
	m := NewMachine("tee-01", "front", WithClock(fixedClock))

	require.NoError(t, m.Start())
	require.NoError(t, m.Click(100, 300))
	require.NoError(t, m.Click(340, 300))
	require.NoError(t, m.Click(500, 500))
	assert.Equal(t, StepInput, m.State().Step)
	assert.Equal(t, 240.0, m.State().PxMeasured)

	require.NoError(t, m.EnterLength("42"))
	preview, ok := m.Preview()
	require.True(t, ok)
	assert.InDelta(t, 5.714285714, preview, 1e-9)

	ratio, err := m.Confirm()
	require.NoError(t, err)
	assert.True(t, ratio.IsCalibrated)
	assert.InDelta(t, 240.0/42.0, ratio.PxPerCm, 1e-12)
	assert.Equal(t, "tee-01", ratio.SubjectID)
	assert.Equal(t, "front", ratio.ViewID)
	assert.Equal(t, fixedClock(), *ratio.CalibratedAt)
	assert.Equal(t, StepResult, m.State().Step)
}

func TestMachineConfirmWithoutLength(t *testing.T) {
	m := NewMachine("tee-01", "front")
	require.NoError(t, m.Start())
	require.NoError(t, m.Click(0, 0))

	_, err := m.Confirm()
	assert.ErrorIs(t, err, models.ErrCalibrationIncomplete)
	assert.Equal(t, StepMeasuring, m.State().Step)
	assert.Len(t, m.State().Points, 1)
}

func TestMachineReset(t *testing.T) {
	m := NewMachine("tee-01", "front")
	require.NoError(t, m.Start())
	require.NoError(t, m.Click(0, 0))
	require.NoError(t, m.Click(10, 0))
	require.NoError(t, m.EnterLength("2"))

	m.Reset()
	assert.Equal(t, Initial(), m.State())
	_, ok := m.Preview()
	assert.False(t, ok)
}

func TestMachineRetargetDiscardsMeasurement(t *testing.T) {
	m := NewMachine("tee-01", "front")
	require.NoError(t, m.Start())
	require.NoError(t, m.Click(0, 0))

	m.Retarget("tee-01", "back")
	assert.Equal(t, StepInstruction, m.State().Step)
	assert.Empty(t, m.State().Points)

	subject, view := m.Subject()
	assert.Equal(t, "tee-01", subject)
	assert.Equal(t, "back", view)
}
