package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"workforce/availability"
	"workforce/roster"
	"workforce/timeclock"
	"workforce/timeutil"
)

const dateLayout = "2006-01-02"

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses.
// Validation failures are the caller's problem; everything unrecognized
// is a generic server failure so store errors never leak details.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, roster.ErrOverlappingShift),
		errors.Is(err, timeclock.ErrAlreadyClockedIn):
		writeError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, roster.ErrShiftNotFound):
		writeError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, roster.ErrInvalidTimeRange),
		errors.Is(err, roster.ErrOutsideAvailability),
		errors.Is(err, availability.ErrInvalidTimeRange),
		errors.Is(err, availability.ErrOutsideOperatingHours),
		errors.Is(err, timeutil.ErrMalformedTime),
		errors.Is(err, timeclock.ErrNotClockedIn):
		writeError(w, err.Error(), http.StatusBadRequest)
	default:
		writeError(w, "Operation failed. Please try again.", http.StatusInternalServerError)
	}
}

// parseWeekParam reads the ?week=YYYY-MM-DD query parameter and
// normalizes it to its Monday. Missing means the current week.
func parseWeekParam(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("week")
	if raw == "" {
		return timeutil.WeekStart(time.Now()), nil
	}
	parsed, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid 'week' parameter, expected %s", dateLayout)
	}
	return timeutil.WeekStart(parsed), nil
}

// parseWeekValue normalizes a YYYY-MM-DD date from a request body to its
// week start. An empty value means the current week.
func parseWeekValue(raw string) (time.Time, error) {
	if raw == "" {
		return timeutil.WeekStart(time.Now()), nil
	}
	parsed, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid 'week' value, expected %s", dateLayout)
	}
	return timeutil.WeekStart(parsed), nil
}

// parseDateParam reads a required ?date=YYYY-MM-DD query parameter.
func parseDateParam(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return time.Time{}, errors.New("missing 'date' parameter")
	}
	parsed, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid 'date' parameter, expected %s", dateLayout)
	}
	return parsed, nil
}
