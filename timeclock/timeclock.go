// Package timeclock implements clock-in/clock-out. Each staff member is
// either clocked out or clocked in (one open time record); the transition
// checks run inside a Firestore transaction so a duplicate clock-in can
// never create a second open record.
package timeclock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"

	"workforce/db"
	"workforce/models"
)

var (
	// ErrAlreadyClockedIn means the staff member has an open time record.
	ErrAlreadyClockedIn = errors.New("already clocked in")
	// ErrNotClockedIn means there is no open time record to close.
	ErrNotClockedIn = errors.New("not clocked in")
)

// Service manages the per-staff clock state machine.
type Service struct {
	db *db.FirestoreDB
}

// NewService creates a timeclock service backed by Firestore.
func NewService(database *db.FirestoreDB) *Service {
	return &Service{db: database}
}

// EnsureClockedOut is the clock-in precondition: a staff member with an
// open record cannot open a second one.
func EnsureClockedOut(open *models.TimeRecord) error {
	if open != nil {
		return ErrAlreadyClockedIn
	}
	return nil
}

// CloseRecord computes the closed form of the open record at the given
// instant. Hours worked is the elapsed wall-clock time.
func CloseRecord(open *models.TimeRecord, at time.Time) (*models.TimeRecord, error) {
	if open == nil {
		return nil, ErrNotClockedIn
	}
	hours := at.Sub(open.ClockInTime).Hours()
	closed := *open
	closed.ClockOutTime = &at
	closed.HoursWorked = &hours
	closed.UpdatedAt = at
	return &closed, nil
}

// ClockIn opens a new time record. Rejected if one is already open.
func (s *Service) ClockIn(ctx context.Context, staffID string) (*models.TimeRecord, error) {
	var record models.TimeRecord

	err := s.db.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		open, err := s.openRecordInTx(tx, staffID)
		if err != nil {
			return err
		}
		if err := EnsureClockedOut(open); err != nil {
			return err
		}

		now := time.Now()
		record = models.TimeRecord{
			ID:          uuid.NewString(),
			StaffID:     staffID,
			ClockInTime: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Create(s.db.TimeRecords().Doc(record.ID), &record); err != nil {
			return fmt.Errorf("failed to create time record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithField("staff", staffID).Info("clocked in")
	return &record, nil
}

// ClockOut closes the open time record, computing hours worked from the
// elapsed wall-clock time. Rejected if none is open.
func (s *Service) ClockOut(ctx context.Context, staffID string) (*models.TimeRecord, error) {
	var record models.TimeRecord

	err := s.db.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		open, err := s.openRecordInTx(tx, staffID)
		if err != nil {
			return err
		}
		closed, err := CloseRecord(open, time.Now())
		if err != nil {
			return err
		}

		if err := tx.Update(s.db.TimeRecords().Doc(closed.ID), []firestore.Update{
			{Path: "clock_out_time", Value: *closed.ClockOutTime},
			{Path: "hours_worked", Value: *closed.HoursWorked},
			{Path: "updated_at", Value: closed.UpdatedAt},
		}); err != nil {
			return fmt.Errorf("failed to update time record: %w", err)
		}

		record = *closed
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"staff": staffID,
		"hours": fmt.Sprintf("%.2f", *record.HoursWorked),
	}).Info("clocked out")
	return &record, nil
}

// Status returns the open time record, or nil when clocked out.
func (s *Service) Status(ctx context.Context, staffID string) (*models.TimeRecord, error) {
	return s.db.GetOpenTimeRecord(ctx, staffID)
}

func (s *Service) openRecordInTx(tx *firestore.Transaction, staffID string) (*models.TimeRecord, error) {
	iter := tx.Documents(s.db.OpenTimeRecordQuery(staffID))
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query time records: %w", err)
	}

	var record models.TimeRecord
	if err := doc.DataTo(&record); err != nil {
		return nil, fmt.Errorf("failed to parse time record: %w", err)
	}
	record.ID = doc.Ref.ID
	return &record, nil
}
