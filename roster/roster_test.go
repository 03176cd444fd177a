package roster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce/models"
	"workforce/timeutil"
)

var testRanges = []models.TimeRange{
	{Start: "09:00", End: "12:00"},
	{Start: "13:00", End: "17:00"},
}

func testShift(id, staffID, start, end string) models.Shift {
	return models.Shift{
		ID:        id,
		StaffID:   staffID,
		Date:      time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local),
		StartTime: start,
		EndTime:   end,
		Status:    models.ShiftApproved,
	}
}

func TestValidateTimes(t *testing.T) {
	assert.NoError(t, ValidateTimes("09:00", "17:00"))
	assert.ErrorIs(t, ValidateTimes("17:00", "09:00"), ErrInvalidTimeRange)
	assert.ErrorIs(t, ValidateTimes("09:00", "09:00"), ErrInvalidTimeRange)
	assert.ErrorIs(t, ValidateTimes("9am", "17:00"), timeutil.ErrMalformedTime)
	assert.ErrorIs(t, ValidateTimes("09:00", "25:00"), timeutil.ErrMalformedTime)
}

func TestCheckOverlap(t *testing.T) {
	existing := []models.Shift{testShift("s1", "staff-1", "09:00", "12:00")}

	// proposed [11:00,14:00) intersects [09:00,12:00)
	err := CheckOverlap("11:00", "14:00", "staff-1", "", existing)
	assert.ErrorIs(t, err, ErrOverlappingShift)

	// touching endpoints do not overlap
	assert.NoError(t, CheckOverlap("12:00", "14:00", "staff-1", "", existing))

	// other staff members' shifts are not considered
	assert.NoError(t, CheckOverlap("11:00", "14:00", "staff-2", "", existing))

	// the shift being edited is excluded from the check
	assert.NoError(t, CheckOverlap("09:30", "11:30", "staff-1", "s1", existing))
}

func TestValidateProposal(t *testing.T) {
	input := SaveShiftInput{
		StaffID:   "staff-1",
		Date:      time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local),
		StartTime: "09:00",
		EndTime:   "12:00",
	}

	assert.NoError(t, ValidateProposal(input, testRanges, nil))
}

func TestValidateProposal_SpansAvailabilityGap(t *testing.T) {
	input := SaveShiftInput{
		StaffID:   "staff-1",
		StartTime: "11:00",
		EndTime:   "13:30",
	}

	// availability [09:00,12:00] and [13:00,17:00]: a shift across the gap
	// is not contained in any single range
	err := ValidateProposal(input, testRanges, nil)
	assert.ErrorIs(t, err, ErrOutsideAvailability)
}

func TestValidateProposal_Overlap(t *testing.T) {
	existing := []models.Shift{testShift("s1", "staff-1", "09:00", "12:00")}

	rejected := SaveShiftInput{StaffID: "staff-1", StartTime: "11:00", EndTime: "14:00"}
	err := ValidateProposal(rejected, []models.TimeRange{{Start: "09:00", End: "17:00"}}, existing)
	assert.ErrorIs(t, err, ErrOverlappingShift)

	accepted := SaveShiftInput{StaffID: "staff-1", StartTime: "12:00", EndTime: "14:00"}
	err = ValidateProposal(accepted, []models.TimeRange{{Start: "09:00", End: "17:00"}}, existing)
	assert.NoError(t, err)
}

func TestValidateProposal_OrderingCheckedFirst(t *testing.T) {
	input := SaveShiftInput{StaffID: "staff-1", StartTime: "14:00", EndTime: "11:00"}
	err := ValidateProposal(input, testRanges, nil)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestResolveEdit_PinsStaffAndDate(t *testing.T) {
	prior := testShift("s1", "staff-1", "09:00", "12:00")

	input := SaveShiftInput{
		ShiftID:   "s1",
		StaffID:   "staff-2",
		Date:      time.Date(2026, 9, 1, 0, 0, 0, 0, time.Local),
		StartTime: "11:00",
		EndTime:   "14:00",
	}

	resolved := ResolveEdit(input, &prior)
	assert.Equal(t, "staff-1", resolved.StaffID)
	assert.Equal(t, prior.Date, resolved.Date)
	assert.Equal(t, "11:00", resolved.StartTime)
	assert.Equal(t, "14:00", resolved.EndTime)
	assert.Equal(t, "s1", resolved.ShiftID)
}

func TestResolveEdit_OverlapCheckedOnStoredDate(t *testing.T) {
	// The day the shift stays on already has a second shift at 13:00-17:00.
	edited := testShift("s1", "staff-1", "09:00", "12:00")
	sameDay := []models.Shift{edited, testShift("s2", "staff-1", "13:00", "17:00")}
	fullDay := []models.TimeRange{{Start: "09:00", End: "17:00"}}

	// An edit request pointing at the (empty) next day would sail past the
	// overlap check if its values were trusted.
	input := SaveShiftInput{
		ShiftID:   "s1",
		StaffID:   "staff-1",
		Date:      edited.Date.AddDate(0, 0, 1),
		StartTime: "11:00",
		EndTime:   "14:00",
	}
	assert.NoError(t, ValidateProposal(input, fullDay, nil))

	// Pinned to the stored shift, the same times collide with s2.
	resolved := ResolveEdit(input, &edited)
	require.Equal(t, edited.Date, resolved.Date)
	err := ValidateProposal(resolved, fullDay, sameDay)
	assert.ErrorIs(t, err, ErrOverlappingShift)
}

func TestNewAuditLog_Edit(t *testing.T) {
	prior := testShift("s1", "staff-1", "09:00", "12:00")
	updated := prior
	updated.StartTime = "10:00"

	entry := NewAuditLog("admin-1", "s1", "staff-1", models.AuditEdit, prior.Snapshot(), updated.Snapshot())

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, models.AuditEdit, entry.Action)
	assert.Equal(t, "admin-1", entry.AdminID)
	require.NotNil(t, entry.PreviousData)
	assert.Equal(t, "09:00", entry.PreviousData.StartTime)
	require.NotNil(t, entry.NewData)
	assert.Equal(t, "10:00", entry.NewData.StartTime)
	assert.WithinDuration(t, time.Now(), entry.Timestamp, time.Second)
}

func TestNewAuditLog_Remove(t *testing.T) {
	shift := testShift("s1", "staff-1", "09:00", "12:00")

	entry := NewAuditLog("admin-1", "s1", "staff-1", models.AuditRemove, shift.Snapshot(), nil)

	assert.Equal(t, models.AuditRemove, entry.Action)
	require.NotNil(t, entry.PreviousData)
	assert.Equal(t, "09:00", entry.PreviousData.StartTime)
	assert.Equal(t, "12:00", entry.PreviousData.EndTime)
	assert.Nil(t, entry.NewData)
}
