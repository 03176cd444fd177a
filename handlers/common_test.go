package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce/availability"
	"workforce/roster"
	"workforce/timeclock"
	"workforce/timeutil"
)

func TestWriteDomainErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"overlapping shift", roster.ErrOverlappingShift, http.StatusConflict},
		{"already clocked in", timeclock.ErrAlreadyClockedIn, http.StatusConflict},
		{"shift not found", roster.ErrShiftNotFound, http.StatusNotFound},
		{"reversed shift times", roster.ErrInvalidTimeRange, http.StatusBadRequest},
		{"outside availability", roster.ErrOutsideAvailability, http.StatusBadRequest},
		{"reversed availability range", availability.ErrInvalidTimeRange, http.StatusBadRequest},
		{"outside operating hours", availability.ErrOutsideOperatingHours, http.StatusBadRequest},
		{"malformed time", timeutil.ErrMalformedTime, http.StatusBadRequest},
		{"not clocked in", timeclock.ErrNotClockedIn, http.StatusBadRequest},
		{"unknown error", errors.New("firestore unavailable"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeDomainError(rec, tc.err)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestWriteDomainErrorWrappedErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	writeDomainError(rec, roster.ErrOverlappingShift)
	require.Equal(t, http.StatusConflict, rec.Code)

	// Wrapped domain errors map the same way as bare ones.
	rec = httptest.NewRecorder()
	wrapped := errors.Join(errors.New("context"), roster.ErrOverlappingShift)
	writeDomainError(rec, wrapped)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestWriteDomainErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeDomainError(rec, errors.New("rpc error: connection refused to 10.0.0.5"))
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}

func TestParseWeekValue(t *testing.T) {
	week, err := parseWeekValue("2026-09-02")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-31", week.Format(dateLayout)) // Wednesday snaps to Monday

	week, err = parseWeekValue("2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-31", week.Format(dateLayout))

	_, err = parseWeekValue("31/08/2026")
	assert.Error(t, err)

	week, err = parseWeekValue("")
	require.NoError(t, err)
	assert.Equal(t, timeutil.WeekStart(week), week)
}
