package timeclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce/models"
)

func openRecord(clockIn time.Time) *models.TimeRecord {
	return &models.TimeRecord{
		ID:          "rec-1",
		StaffID:     "staff-1",
		ClockInTime: clockIn,
		CreatedAt:   clockIn,
		UpdatedAt:   clockIn,
	}
}

func TestEnsureClockedOut(t *testing.T) {
	assert.NoError(t, EnsureClockedOut(nil))

	// a second clock-in while a record is still open is rejected, so no
	// second open record can ever be created
	err := EnsureClockedOut(openRecord(time.Now()))
	assert.ErrorIs(t, err, ErrAlreadyClockedIn)
}

func TestCloseRecord(t *testing.T) {
	clockIn := time.Date(2026, 8, 31, 9, 0, 0, 0, time.Local)
	clockOut := clockIn.Add(7*time.Hour + 30*time.Minute)

	closed, err := CloseRecord(openRecord(clockIn), clockOut)
	require.NoError(t, err)
	require.NotNil(t, closed.ClockOutTime)
	assert.Equal(t, clockOut, *closed.ClockOutTime)
	require.NotNil(t, closed.HoursWorked)
	assert.InDelta(t, 7.5, *closed.HoursWorked, 1e-9)
	assert.Equal(t, clockOut, closed.UpdatedAt)
	assert.Equal(t, "rec-1", closed.ID)
}

func TestCloseRecord_NotClockedIn(t *testing.T) {
	_, err := CloseRecord(nil, time.Now())
	assert.ErrorIs(t, err, ErrNotClockedIn)
}

func TestCloseRecord_KeepsOriginalUntouched(t *testing.T) {
	clockIn := time.Date(2026, 8, 31, 9, 0, 0, 0, time.Local)
	open := openRecord(clockIn)

	_, err := CloseRecord(open, clockIn.Add(time.Hour))
	require.NoError(t, err)
	assert.Nil(t, open.ClockOutTime)
	assert.Nil(t, open.HoursWorked)
}
