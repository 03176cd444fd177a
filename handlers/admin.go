package handlers

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"workforce/auth"
	"workforce/config"
	"workforce/db"
	"workforce/middleware"
	"workforce/models"
	"workforce/payroll"
	"workforce/roster"
)

// AdminHandler serves the manager surface: staff accounts, the roster
// approval workflow, aggregated hours and the audit trail.
type AdminHandler struct {
	db     *db.FirestoreDB
	roster *roster.Service
	shop   config.ShopConfig
}

func NewAdminHandler(firestoreDB *db.FirestoreDB, rosterService *roster.Service, shop config.ShopConfig) *AdminHandler {
	return &AdminHandler{
		db:     firestoreDB,
		roster: rosterService,
		shop:   shop,
	}
}

// --- Staff management ---

type CreateStaffRequest struct {
	Name       string  `json:"name"`
	Username   string  `json:"username"`
	Password   string  `json:"password"`
	HourlyRate float64 `json:"hourly_rate"`
}

type UpdateStaffRequest struct {
	Name       *string  `json:"name,omitempty"`
	HourlyRate *float64 `json:"hourly_rate,omitempty"`
	IsActive   *bool    `json:"is_active,omitempty"`
}

type ResetPasswordRequest struct {
	UserID      string `json:"user_id"`
	NewPassword string `json:"new_password"`
}

// ListStaff returns every staff account.
func (h *AdminHandler) ListStaff(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	staff, err := h.db.GetUsersByRole(r.Context(), models.RoleStaff)
	if err != nil {
		logrus.WithError(err).Error("failed to list staff")
		writeError(w, "Failed to retrieve staff", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"staff": staff,
		"total": len(staff),
	})
}

// CreateStaff provisions a staff account with a bcrypt password hash and a
// synthesized internal email address.
func (h *AdminHandler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CreateStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if req.Name == "" || req.Username == "" {
		writeError(w, "Name and username are required", http.StatusBadRequest)
		return
	}
	if req.HourlyRate < 0 {
		writeError(w, "Hourly rate cannot be negative", http.StatusBadRequest)
		return
	}
	if err := auth.ValidatePasswordStrength(req.Password); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	existing, err := h.db.GetUserByUsername(r.Context(), req.Username)
	if err != nil && !errors.Is(err, db.ErrUserNotFound) {
		logrus.WithError(err).Error("failed to check username")
		writeError(w, "Failed to create staff member", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		writeError(w, "Username already taken", http.StatusConflict)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		logrus.WithError(err).Error("failed to hash password")
		writeError(w, "Failed to create staff member", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	user := &models.User{
		UserID:     uuid.NewString(),
		Name:       req.Name,
		Email:      fmt.Sprintf("%s@%s", req.Username, h.shop.InternalDomain),
		Username:   req.Username,
		Role:       models.RoleStaff,
		HourlyRate: req.HourlyRate,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.db.CreateUser(r.Context(), user); err != nil {
		logrus.WithError(err).Error("failed to create user")
		writeError(w, "Failed to create staff member", http.StatusInternalServerError)
		return
	}
	if err := h.db.StorePasswordHash(r.Context(), user.UserID, hash); err != nil {
		logrus.WithError(err).Error("failed to store password hash")
		writeError(w, "Failed to create staff member", http.StatusInternalServerError)
		return
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.UserID,
		"username": user.Username,
	}).Info("staff member created")

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Staff member created successfully",
		"user":    user,
	})
}

// UpdateStaff patches name, hourly rate or active flag on a staff account.
// The user ID comes from the path.
func (h *AdminHandler) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPatch {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := strings.TrimPrefix(r.URL.Path, "/api/admin/staff/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var req UpdateStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.db.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, "Staff member not found", http.StatusNotFound)
		return
	}
	if user.Role != models.RoleStaff {
		writeError(w, "Only staff accounts can be updated here", http.StatusBadRequest)
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			writeError(w, "Name cannot be empty", http.StatusBadRequest)
			return
		}
		user.Name = name
	}
	if req.HourlyRate != nil {
		if *req.HourlyRate < 0 {
			writeError(w, "Hourly rate cannot be negative", http.StatusBadRequest)
			return
		}
		user.HourlyRate = *req.HourlyRate
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedAt = time.Now()

	if err := h.db.UpdateUser(r.Context(), user); err != nil {
		logrus.WithError(err).Error("failed to update user")
		writeError(w, "Failed to update staff member", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Staff member updated successfully",
		"user":    user,
	})
}

// DeleteStaff removes a staff account and its stored credentials.
func (h *AdminHandler) DeleteStaff(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := strings.TrimPrefix(r.URL.Path, "/api/admin/staff/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	user, err := h.db.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, "Staff member not found", http.StatusNotFound)
		return
	}
	if user.Role != models.RoleStaff {
		writeError(w, "Only staff accounts can be deleted here", http.StatusBadRequest)
		return
	}

	if err := h.db.DeleteUser(r.Context(), userID); err != nil {
		logrus.WithError(err).Error("failed to delete user")
		writeError(w, "Failed to delete staff member", http.StatusInternalServerError)
		return
	}
	if err := h.db.DeletePasswordHash(r.Context(), userID); err != nil {
		logrus.WithError(err).Warn("failed to delete password hash")
	}

	logrus.WithField("user_id", userID).Info("staff member deleted")

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Staff member deleted successfully",
	})
}

// StaffByID dispatches /api/admin/staff/{id} by method.
func (h *AdminHandler) StaffByID(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPut, http.MethodPatch:
		h.UpdateStaff(w, r)
	case http.MethodDelete:
		h.DeleteStaff(w, r)
	default:
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ResetPassword replaces a staff member's password hash.
func (h *AdminHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		writeError(w, "user_id is required", http.StatusBadRequest)
		return
	}
	if err := auth.ValidatePasswordStrength(req.NewPassword); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := h.db.GetUser(r.Context(), req.UserID); err != nil {
		writeError(w, "Staff member not found", http.StatusNotFound)
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		logrus.WithError(err).Error("failed to hash password")
		writeError(w, "Failed to reset password", http.StatusInternalServerError)
		return
	}
	if err := h.db.StorePasswordHash(r.Context(), req.UserID, hash); err != nil {
		logrus.WithError(err).Error("failed to store password hash")
		writeError(w, "Failed to reset password", http.StatusInternalServerError)
		return
	}

	logrus.WithField("user_id", req.UserID).Info("password reset")

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Password reset successfully",
	})
}

// --- Availability review ---

// GetAvailability returns every submitted availability entry for a week,
// optionally narrowed to one day with ?day=0..6.
func (h *AdminHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	week, err := parseWeekParam(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	days := []int{0, 1, 2, 3, 4, 5, 6}
	if raw := r.URL.Query().Get("day"); raw != "" {
		day, err := strconv.Atoi(raw)
		if err != nil || day < 0 || day > 6 {
			writeError(w, "Invalid 'day' parameter, expected 0-6", http.StatusBadRequest)
			return
		}
		days = []int{day}
	}

	byDay := make(map[int][]models.Availability, len(days))
	for _, day := range days {
		entries, err := h.db.GetSubmittedAvailability(r.Context(), week, day)
		if err != nil {
			logrus.WithError(err).Error("failed to load submitted availability")
			writeError(w, "Failed to retrieve availability", http.StatusInternalServerError)
			return
		}
		byDay[day] = entries
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"week": week.Format(dateLayout),
		"days": byDay,
	})
}

// --- Roster ---

type SaveShiftRequest struct {
	ShiftID   string `json:"shift_id,omitempty"`
	StaffID   string `json:"staff_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type RemoveShiftRequest struct {
	ShiftID string `json:"shift_id"`
	Confirm bool   `json:"confirm"`
}

// GetRoster returns all approved shifts for a single day.
func (h *AdminHandler) GetRoster(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	date, err := parseDateParam(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	shifts, err := h.db.GetShiftsForDate(r.Context(), date)
	if err != nil {
		logrus.WithError(err).Error("failed to load roster")
		writeError(w, "Failed to retrieve roster", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":   date.Format(dateLayout),
		"shifts": shifts,
	})
}

// SaveShift creates or edits an approved shift. Validation and the audit
// entry happen inside a single transaction.
func (h *AdminHandler) SaveShift(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	admin, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req SaveShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.StaffID == "" {
		writeError(w, "staff_id is required", http.StatusBadRequest)
		return
	}
	date, err := time.ParseInLocation(dateLayout, req.Date, time.Local)
	if err != nil {
		writeError(w, fmt.Sprintf("invalid 'date' value, expected %s", dateLayout), http.StatusBadRequest)
		return
	}

	shift, err := h.roster.SaveShift(r.Context(), roster.SaveShiftInput{
		StaffID:   req.StaffID,
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		ShiftID:   req.ShiftID,
	}, admin.UserID)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"staff_id": req.StaffID,
			"date":     req.Date,
		}).WithError(err).Warn("shift save rejected")
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Shift saved successfully",
		"shift":   shift,
	})
}

// RemoveShift deletes a shift and records the removal. The request must
// carry confirm=true; removal is not undoable.
func (h *AdminHandler) RemoveShift(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	admin, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req RemoveShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ShiftID == "" {
		writeError(w, "shift_id is required", http.StatusBadRequest)
		return
	}
	if !req.Confirm {
		writeError(w, "Removal must be confirmed", http.StatusBadRequest)
		return
	}

	if err := h.roster.RemoveShift(r.Context(), req.ShiftID, admin.UserID); err != nil {
		writeDomainError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"shift_id": req.ShiftID,
		"admin_id": admin.UserID,
	}).Info("shift removed")

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Shift removed successfully",
	})
}

// WatchRoster streams the day's roster over server-sent events, pushing a
// fresh snapshot whenever the underlying query changes.
func (h *AdminHandler) WatchRoster(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	date, err := parseDateParam(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	updates := h.db.WatchShiftsForDate(r.Context(), date)
	for shifts := range updates {
		payload, err := json.Marshal(map[string]interface{}{
			"date":   date.Format(dateLayout),
			"shifts": shifts,
		})
		if err != nil {
			logrus.WithError(err).Error("failed to marshal roster snapshot")
			continue
		}
		fmt.Fprintf(w, "event: roster\ndata: %s\n\n", payload)
		flusher.Flush()
	}
}

// --- Hours & pay ---

// StaffHours is one row of the weekly totals view.
type StaffHours struct {
	StaffID string  `json:"staff_id"`
	Name    string  `json:"name"`
	Hours   float64 `json:"hours"`
	Pay     float64 `json:"pay"`
}

// GetHours returns per-staff hour and pay totals for a week.
func (h *AdminHandler) GetHours(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	week, err := parseWeekParam(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := h.weeklyHours(r, week)
	if err != nil {
		logrus.WithError(err).Error("failed to aggregate hours")
		writeError(w, "Failed to retrieve hours", http.StatusInternalServerError)
		return
	}

	var totalHours, totalPay float64
	for _, row := range rows {
		totalHours += row.Hours
		totalPay += row.Pay
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"week":        week.Format(dateLayout),
		"staff":       rows,
		"total_hours": totalHours,
		"total_pay":   totalPay,
	})
}

// ExportHours writes the weekly totals as a CSV download.
func (h *AdminHandler) ExportHours(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	week, err := parseWeekParam(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := h.weeklyHours(r, week)
	if err != nil {
		logrus.WithError(err).Error("failed to aggregate hours")
		writeError(w, "Failed to export hours", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("hours_%s.csv", week.Format(dateLayout))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write([]string{"Staff ID", "Name", "Hours", "Gross Pay"})
	for _, row := range rows {
		writer.Write([]string{
			row.StaffID,
			row.Name,
			strconv.FormatFloat(row.Hours, 'f', 2, 64),
			strconv.FormatFloat(row.Pay, 'f', 2, 64),
		})
	}
}

// weeklyHours aggregates all approved shifts for a week into per-staff
// totals, sorted by the staff listing order.
func (h *AdminHandler) weeklyHours(r *http.Request, week time.Time) ([]StaffHours, error) {
	staff, err := h.db.GetUsersByRole(r.Context(), models.RoleStaff)
	if err != nil {
		return nil, err
	}
	shifts, err := h.db.GetAllShiftsForWeek(r.Context(), week)
	if err != nil {
		return nil, err
	}

	rates := make(map[string]float64, len(staff))
	for _, s := range staff {
		rates[s.UserID] = s.HourlyRate
	}
	summaries := payroll.AggregateAll(shifts, rates)

	rows := make([]StaffHours, 0, len(staff))
	for _, s := range staff {
		summary := summaries[s.UserID]
		rows = append(rows, StaffHours{
			StaffID: s.UserID,
			Name:    s.Name,
			Hours:   summary.Hours,
			Pay:     summary.Pay,
		})
	}
	return rows, nil
}

// --- Audit trail ---

// GetAuditLogs returns roster audit entries, newest first, optionally
// filtered with ?staffId= and ?shiftId=.
func (h *AdminHandler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	staffID := r.URL.Query().Get("staffId")
	shiftID := r.URL.Query().Get("shiftId")

	logs, err := h.db.GetAuditLogs(r.Context(), staffID, shiftID)
	if err != nil {
		logrus.WithError(err).Error("failed to load audit logs")
		writeError(w, "Failed to retrieve audit logs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": len(logs),
	})
}
