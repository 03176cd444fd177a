package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"workforce/availability"
	"workforce/db"
	"workforce/middleware"
	"workforce/models"
	"workforce/payroll"
	"workforce/timeclock"
)

// StaffHandler serves the staff self-service surface: availability
// submission, own roster and hours, and the time clock.
type StaffHandler struct {
	db           *db.FirestoreDB
	availability *availability.Service
	clock        *timeclock.Service
}

func NewStaffHandler(firestoreDB *db.FirestoreDB, avail *availability.Service, clock *timeclock.Service) *StaffHandler {
	return &StaffHandler{
		db:           firestoreDB,
		availability: avail,
		clock:        clock,
	}
}

// --- Availability ---

// GetAvailability returns the caller's submitted ranges for a week,
// keyed by day of week.
func (h *StaffHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	week, err := parseWeekParam(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	perDay, err := h.availability.WeekForStaff(r.Context(), user.UserID, week)
	if err != nil {
		logrus.WithError(err).Error("failed to load availability")
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"week": week.Format(dateLayout),
		"days": perDay,
	})
}

// GetPreviousAvailability returns the week before the requested one, so a
// client can prefill the form ("copy from last week").
func (h *StaffHandler) GetPreviousAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	week, err := parseWeekParam(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	lastWeek := week.AddDate(0, 0, -7)

	perDay, err := h.availability.WeekForStaff(r.Context(), user.UserID, lastWeek)
	if err != nil {
		logrus.WithError(err).Error("failed to load previous availability")
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"week": lastWeek.Format(dateLayout),
		"days": perDay,
	})
}

type SubmitAvailabilityRequest struct {
	Week        string                     `json:"week"`
	Days        map[int][]models.TimeRange `json:"days"`
	IsRecurring bool                       `json:"is_recurring"`
}

// SubmitAvailability validates and persists a full week of availability
// for the caller.
func (h *StaffHandler) SubmitAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req SubmitAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	week, err := parseWeekValue(req.Week)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	for day := range req.Days {
		if day < 0 || day > 6 {
			writeError(w, "Day of week must be between 0 and 6", http.StatusBadRequest)
			return
		}
	}

	if err := h.availability.Submit(r.Context(), user.UserID, week, req.Days, req.IsRecurring); err != nil {
		logrus.WithField("staff", user.UserID).WithError(err).Warn("availability submission rejected")
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Availability submitted successfully",
	})
}

// --- Roster & Hours ---

// GetRoster returns the caller's approved shifts for a week.
func (h *StaffHandler) GetRoster(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	week, err := parseWeekParam(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	shifts, err := h.db.GetShiftsForWeek(r.Context(), user.UserID, week)
	if err != nil {
		logrus.WithError(err).Error("failed to load shifts")
		writeError(w, "Failed to retrieve roster", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"week":   week.Format(dateLayout),
		"shifts": shifts,
	})
}

// GetHours returns the caller's total hours and gross pay for a week.
func (h *StaffHandler) GetHours(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	week, err := parseWeekParam(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	shifts, err := h.db.GetShiftsForWeek(r.Context(), user.UserID, week)
	if err != nil {
		logrus.WithError(err).Error("failed to load shifts")
		writeError(w, "Failed to retrieve hours", http.StatusInternalServerError)
		return
	}

	summary := payroll.Aggregate(shifts, user.HourlyRate)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"week":    week.Format(dateLayout),
		"shifts":  shifts,
		"summary": summary,
	})
}

// --- Time Clock ---

// ClockStatus returns the caller's open time record, if any.
func (h *StaffHandler) ClockStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	record, err := h.clock.Status(r.Context(), user.UserID)
	if err != nil {
		logrus.WithError(err).Error("failed to load clock status")
		writeError(w, "Failed to retrieve clock status", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"clocked_in": record != nil,
		"record":     record,
	})
}

// ClockIn opens a time record for the caller.
func (h *StaffHandler) ClockIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	record, err := h.clock.ClockIn(r.Context(), user.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Clocked in successfully",
		"record":  record,
	})
}

// ClockOut closes the caller's open time record.
func (h *StaffHandler) ClockOut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	record, err := h.clock.ClockOut(r.Context(), user.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Clocked out successfully",
		"record":  record,
	})
}
