// Package roster implements the shift approval workflow: an admin turns a
// staff member's submitted availability into approved shifts, edits or
// removes them, and every edit/removal leaves an audit trail entry.
//
// Validation and commit run inside a single Firestore transaction, so two
// admins approving overlapping shifts for the same staff member cannot
// both pass the overlap check, and a shift edit cannot land without its
// audit entry.
package roster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"workforce/db"
	"workforce/models"
	"workforce/timeutil"
)

var (
	// ErrInvalidTimeRange means the proposed start does not precede the end.
	ErrInvalidTimeRange = errors.New("start time must be before end time")
	// ErrOutsideAvailability means the proposed interval is not contained
	// in any single submitted availability range for that day.
	ErrOutsideAvailability = errors.New("shift must be within staff availability")
	// ErrOverlappingShift means the staff member already has a shift that
	// intersects the proposed interval on that date.
	ErrOverlappingShift = errors.New("shift overlaps with an existing shift for this staff")
	// ErrShiftNotFound means the shift being edited or removed no longer exists.
	ErrShiftNotFound = errors.New("shift not found")
)

// fullDay is the containment fallback when a shift is edited after its
// availability submission has been deleted.
var fullDay = []models.TimeRange{{Start: "00:00", End: "23:59"}}

// SaveShiftInput is an admin's proposed shift. A non-empty ShiftID means
// an edit of that shift's times; otherwise a new shift is created.
type SaveShiftInput struct {
	StaffID   string
	Date      time.Time // midnight of the calendar day
	StartTime string
	EndTime   string
	ShiftID   string
}

// Service composes the shift store and audit log into the approval workflow.
type Service struct {
	db *db.FirestoreDB
}

// NewService creates a roster service backed by Firestore.
func NewService(database *db.FirestoreDB) *Service {
	return &Service{db: database}
}

// ValidateTimes checks that both times are well-formed HH:mm values and
// that start strictly precedes end.
func ValidateTimes(startTime, endTime string) error {
	if err := timeutil.ValidateClock(startTime); err != nil {
		return err
	}
	if err := timeutil.ValidateClock(endTime); err != nil {
		return err
	}
	if !timeutil.IsTimeBefore(startTime, endTime) {
		return ErrInvalidTimeRange
	}
	return nil
}

// CheckOverlap rejects the proposal if it intersects any other shift the
// staff member has among existing. The shift identified by excludeID (the
// one being edited) is skipped.
func CheckOverlap(startTime, endTime, staffID, excludeID string, existing []models.Shift) error {
	for _, shift := range existing {
		if shift.StaffID != staffID || shift.ID == excludeID {
			continue
		}
		if timeutil.Overlaps(startTime, endTime, shift.StartTime, shift.EndTime) {
			return fmt.Errorf("%w: %s-%s", ErrOverlappingShift, shift.StartTime, shift.EndTime)
		}
	}
	return nil
}

// ResolveEdit pins an edit to the stored shift's staff member and date.
// Staff or date values on the request are discarded, so the containment
// and overlap checks always run against the day the shift stays on.
func ResolveEdit(input SaveShiftInput, prior *models.Shift) SaveShiftInput {
	input.StaffID = prior.StaffID
	input.Date = prior.Date
	return input
}

// ValidateProposal runs the full pre-commit validation: time ordering,
// availability containment, and non-overlap against existing shifts.
func ValidateProposal(input SaveShiftInput, ranges []models.TimeRange, existing []models.Shift) error {
	if err := ValidateTimes(input.StartTime, input.EndTime); err != nil {
		return err
	}
	if !timeutil.IsWithinAvailability(input.StartTime, input.EndTime, ranges) {
		return ErrOutsideAvailability
	}
	return CheckOverlap(input.StartTime, input.EndTime, input.StaffID, input.ShiftID, existing)
}

// SaveShift validates the proposal and commits it. Creation sets the
// approval fields and writes no audit entry; an edit overwrites the times
// and appends exactly one EDIT audit entry with before/after snapshots.
// The whole read-validate-write sequence is one Firestore transaction.
func (s *Service) SaveShift(ctx context.Context, input SaveShiftInput, adminID string) (*models.Shift, error) {
	if err := ValidateTimes(input.StartTime, input.EndTime); err != nil {
		return nil, err
	}

	var saved models.Shift

	err := s.db.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := time.Now()

		// Reads come first: Firestore transactions forbid reads after a write.
		var prior *models.Shift
		var shiftRef *firestore.DocumentRef
		if input.ShiftID != "" {
			shiftRef = s.db.Shifts().Doc(input.ShiftID)
			doc, err := tx.Get(shiftRef)
			if err != nil {
				if status.Code(err) == codes.NotFound {
					return ErrShiftNotFound
				}
				return fmt.Errorf("failed to get shift: %w", err)
			}
			var p models.Shift
			if err := doc.DataTo(&p); err != nil {
				return fmt.Errorf("failed to parse shift: %w", err)
			}
			p.ID = doc.Ref.ID
			prior = &p

			// Only the times are editable. Validation must run against
			// the staff member and date the shift actually stays on, not
			// whatever the request happened to carry.
			input = ResolveEdit(input, prior)
		}

		ranges, err := s.availabilityRanges(tx, input, prior != nil)
		if err != nil {
			return err
		}

		existing, err := s.shiftsInTx(tx, input.Date)
		if err != nil {
			return err
		}
		if err := ValidateProposal(input, ranges, existing); err != nil {
			return err
		}

		if prior != nil {
			updated := *prior
			updated.StartTime = input.StartTime
			updated.EndTime = input.EndTime
			updated.UpdatedAt = now
			updated.UpdatedBy = adminID

			if err := tx.Update(shiftRef, []firestore.Update{
				{Path: "start_time", Value: input.StartTime},
				{Path: "end_time", Value: input.EndTime},
				{Path: "updated_at", Value: now},
				{Path: "updated_by", Value: adminID},
			}); err != nil {
				return fmt.Errorf("failed to update shift: %w", err)
			}

			entry := NewAuditLog(adminID, prior.ID, prior.StaffID, models.AuditEdit, prior.Snapshot(), updated.Snapshot())
			if err := tx.Create(s.db.AuditLogs().Doc(entry.ID), entry); err != nil {
				return fmt.Errorf("failed to append audit entry: %w", err)
			}

			saved = updated
			return nil
		}

		shift := models.Shift{
			ID:         uuid.NewString(),
			StaffID:    input.StaffID,
			Date:       input.Date,
			StartTime:  input.StartTime,
			EndTime:    input.EndTime,
			Status:     models.ShiftApproved,
			ApprovedBy: adminID,
			ApprovedAt: now,
			CreatedAt:  now,
			UpdatedAt:  now,
			UpdatedBy:  adminID,
		}
		// Creation is not audited; only edits and removals are.
		if err := tx.Create(s.db.Shifts().Doc(shift.ID), &shift); err != nil {
			return fmt.Errorf("failed to create shift: %w", err)
		}

		saved = shift
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"shift": saved.ID,
		"staff": saved.StaffID,
		"admin": adminID,
		"edit":  input.ShiftID != "",
	}).Info("shift saved")

	return &saved, nil
}

// RemoveShift deletes a shift and appends exactly one REMOVE audit entry
// carrying the deleted fields, atomically.
func (s *Service) RemoveShift(ctx context.Context, shiftID, adminID string) error {
	err := s.db.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		shiftRef := s.db.Shifts().Doc(shiftID)
		doc, err := tx.Get(shiftRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrShiftNotFound
			}
			return fmt.Errorf("failed to get shift: %w", err)
		}

		var shift models.Shift
		if err := doc.DataTo(&shift); err != nil {
			return fmt.Errorf("failed to parse shift: %w", err)
		}
		shift.ID = doc.Ref.ID

		if err := tx.Delete(shiftRef); err != nil {
			return fmt.Errorf("failed to delete shift: %w", err)
		}

		entry := NewAuditLog(adminID, shift.ID, shift.StaffID, models.AuditRemove, shift.Snapshot(), nil)
		if err := tx.Create(s.db.AuditLogs().Doc(entry.ID), entry); err != nil {
			return fmt.Errorf("failed to append audit entry: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{"shift": shiftID, "admin": adminID}).Info("shift removed")
	return nil
}

// NewAuditLog builds an append-only audit entry. NewData is nil for REMOVE.
func NewAuditLog(adminID, shiftID, staffID string, action models.AuditAction, previous, updated *models.ShiftSnapshot) models.RosterAuditLog {
	return models.RosterAuditLog{
		ID:           uuid.NewString(),
		AdminID:      adminID,
		ShiftID:      shiftID,
		StaffID:      staffID,
		Action:       action,
		PreviousData: previous,
		NewData:      updated,
		Timestamp:    time.Now(),
	}
}

// availabilityRanges reads the SUBMITTED availability the proposal is
// approved against. When editing a shift whose submission has since been
// deleted, the whole day is used, matching the edit flow's behavior.
func (s *Service) availabilityRanges(tx *firestore.Transaction, input SaveShiftInput, editing bool) ([]models.TimeRange, error) {
	weekStart := timeutil.WeekStart(input.Date)
	dayOfWeek := int(input.Date.Weekday())

	doc, err := tx.Get(s.db.AvailabilityDoc(input.StaffID, weekStart, dayOfWeek))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			if editing {
				return fullDay, nil
			}
			return nil, ErrOutsideAvailability
		}
		return nil, fmt.Errorf("failed to get availability: %w", err)
	}

	var avail models.Availability
	if err := doc.DataTo(&avail); err != nil {
		return nil, fmt.Errorf("failed to parse availability: %w", err)
	}
	if avail.Status != models.AvailabilitySubmitted {
		if editing {
			return fullDay, nil
		}
		return nil, ErrOutsideAvailability
	}

	return avail.TimeRanges, nil
}

// shiftsInTx reads the approved shifts for a date inside the transaction,
// so the overlap check is isolated from concurrent approvals.
func (s *Service) shiftsInTx(tx *firestore.Transaction, date time.Time) ([]models.Shift, error) {
	iter := tx.Documents(s.db.ShiftsForDateQuery(date))
	defer iter.Stop()

	var shifts []models.Shift
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate shifts: %w", err)
		}

		var shift models.Shift
		if err := doc.DataTo(&shift); err != nil {
			return nil, fmt.Errorf("failed to parse shift: %w", err)
		}
		shift.ID = doc.Ref.ID
		shifts = append(shifts, shift)
	}

	return shifts, nil
}
