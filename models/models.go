// models.go
// Defines the core data structures shared by the workforce API.

package models

import (
	"time"
)

// UserRole defines the access level of a user.
type UserRole string

const (
	RoleStaff UserRole = "STAFF"
	RoleAdmin UserRole = "ADMIN"
)

// User represents a staff member or administrator.
// Accounts are provisioned by an admin; staff get a synthesized
// <username>@<internal-domain> email so no real address is required.
type User struct {
	UserID     string    `firestore:"user_id" json:"user_id"`
	Name       string    `firestore:"name" json:"name"`
	Email      string    `firestore:"email" json:"email"`
	Username   string    `firestore:"username" json:"username"`
	Role       UserRole  `firestore:"role" json:"role"`
	HourlyRate float64   `firestore:"hourly_rate" json:"hourly_rate"`
	IsActive   bool      `firestore:"is_active" json:"is_active"`
	CreatedAt  time.Time `firestore:"created_at" json:"created_at"`
	UpdatedAt  time.Time `firestore:"updated_at" json:"updated_at"`
}

// TimeRange is a single start/end pair in HH:mm format.
type TimeRange struct {
	Start string `firestore:"start" json:"start"`
	End   string `firestore:"end" json:"end"`
}

// AvailabilityStatus defines the lifecycle state of a submission.
type AvailabilityStatus string

const (
	AvailabilityDraft     AvailabilityStatus = "DRAFT"
	AvailabilitySubmitted AvailabilityStatus = "SUBMITTED"
)

// Availability is one staff member's submitted time ranges for a single
// day of a single week. At most one document exists per (staff, week, day):
// the document ID is derived from those three fields, so resubmission
// overwrites in place.
type Availability struct {
	ID            string             `firestore:"-" json:"id"`
	StaffID       string             `firestore:"staff_id" json:"staff_id"`
	WeekStartDate time.Time          `firestore:"week_start_date" json:"week_start_date"` // Monday 00:00
	DayOfWeek     int                `firestore:"day_of_week" json:"day_of_week"`         // 0=Sunday .. 6=Saturday
	TimeRanges    []TimeRange        `firestore:"time_ranges" json:"time_ranges"`
	IsRecurring   bool               `firestore:"is_recurring" json:"is_recurring"`
	Status        AvailabilityStatus `firestore:"status" json:"status"`
	SubmittedAt   time.Time          `firestore:"submitted_at" json:"submitted_at"`
	CreatedAt     time.Time          `firestore:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `firestore:"updated_at" json:"updated_at"`
}

// ShiftStatus is single-valued for now: shifts only exist once approved.
type ShiftStatus string

const (
	ShiftApproved ShiftStatus = "APPROVED"
)

// Shift is an admin-approved work interval for one staff member on one
// calendar day. For a given staff member no two shifts on the same date
// may overlap, and start must precede end; a shift never spans midnight.
type Shift struct {
	ID         string      `firestore:"-" json:"id"`
	StaffID    string      `firestore:"staff_id" json:"staff_id"`
	Date       time.Time   `firestore:"date" json:"date"` // midnight of the calendar day
	StartTime  string      `firestore:"start_time" json:"start_time"`
	EndTime    string      `firestore:"end_time" json:"end_time"`
	Status     ShiftStatus `firestore:"status" json:"status"`
	ApprovedBy string      `firestore:"approved_by" json:"approved_by"`
	ApprovedAt time.Time   `firestore:"approved_at" json:"approved_at"`
	CreatedAt  time.Time   `firestore:"created_at" json:"created_at"`
	UpdatedAt  time.Time   `firestore:"updated_at" json:"updated_at"`
	UpdatedBy  string      `firestore:"updated_by" json:"updated_by"`
}

// AuditAction is the kind of roster mutation being recorded.
// Creation is deliberately not audited; only edits and removals are.
type AuditAction string

const (
	AuditEdit   AuditAction = "EDIT"
	AuditRemove AuditAction = "REMOVE"
)

// ShiftSnapshot captures the mutable shift fields at a point in time for
// the audit trail.
type ShiftSnapshot struct {
	StaffID   string    `firestore:"staff_id" json:"staff_id"`
	Date      time.Time `firestore:"date" json:"date"`
	StartTime string    `firestore:"start_time" json:"start_time"`
	EndTime   string    `firestore:"end_time" json:"end_time"`
}

// RosterAuditLog is an append-only record of a shift edit or removal.
type RosterAuditLog struct {
	ID           string         `firestore:"-" json:"id"`
	AdminID      string         `firestore:"admin_id" json:"admin_id"`
	ShiftID      string         `firestore:"shift_id" json:"shift_id"`
	StaffID      string         `firestore:"staff_id" json:"staff_id"`
	Action       AuditAction    `firestore:"action" json:"action"`
	PreviousData *ShiftSnapshot `firestore:"previous_data" json:"previous_data,omitempty"`
	NewData      *ShiftSnapshot `firestore:"new_data" json:"new_data,omitempty"`
	Timestamp    time.Time      `firestore:"timestamp" json:"timestamp"`
}

// TimeRecord is one clock-in/clock-out cycle. A nil ClockOutTime marks the
// record as the staff member's currently open session; at most one open
// record may exist per staff member.
type TimeRecord struct {
	ID           string     `firestore:"-" json:"id"`
	StaffID      string     `firestore:"staff_id" json:"staff_id"`
	ClockInTime  time.Time  `firestore:"clock_in_time" json:"clock_in_time"`
	ClockOutTime *time.Time `firestore:"clock_out_time" json:"clock_out_time"`
	HoursWorked  *float64   `firestore:"hours_worked" json:"hours_worked"`
	CreatedAt    time.Time  `firestore:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `firestore:"updated_at" json:"updated_at"`
}

// Snapshot extracts the audited fields of a shift.
func (s *Shift) Snapshot() *ShiftSnapshot {
	return &ShiftSnapshot{
		StaffID:   s.StaffID,
		Date:      s.Date,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
	}
}
