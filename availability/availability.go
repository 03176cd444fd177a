// Package availability implements weekly availability submission. A
// submission covers all seven days of a week at once: days with ranges
// are upserted at their composite document key, days without ranges are
// deleted, and the whole batch either succeeds or reports one aggregate
// failure.
package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"workforce/db"
	"workforce/models"
	"workforce/timeutil"
)

var (
	// ErrInvalidTimeRange means a range's start does not precede its end.
	ErrInvalidTimeRange = errors.New("start time must be before end time")
	// ErrOutsideOperatingHours means a range falls outside shop hours.
	ErrOutsideOperatingHours = errors.New("availability must be within operating hours")
)

// Service validates and persists weekly availability submissions.
type Service struct {
	db        *db.FirestoreDB
	openTime  string
	closeTime string
}

// NewService creates an availability service constrained to the shop's
// operating hours.
func NewService(database *db.FirestoreDB, openTime, closeTime string) *Service {
	return &Service{db: database, openTime: openTime, closeTime: closeTime}
}

// ValidateWeek checks every range of every day against operating hours
// and ordering. Any single bad range rejects the whole submission before
// a write is issued.
func ValidateWeek(perDay map[int][]models.TimeRange, openTime, closeTime string) error {
	for day := 0; day < 7; day++ {
		for _, r := range perDay[day] {
			if err := timeutil.ValidateClock(r.Start); err != nil {
				return err
			}
			if err := timeutil.ValidateClock(r.End); err != nil {
				return err
			}
			if !timeutil.IsTimeBefore(r.Start, r.End) {
				return fmt.Errorf("%w: %s on %s", ErrInvalidTimeRange, r.Start, timeutil.DayName(day))
			}
			if timeutil.IsTimeBefore(r.Start, openTime) || timeutil.IsTimeBefore(closeTime, r.End) {
				return fmt.Errorf("%w (%s-%s): %s-%s on %s",
					ErrOutsideOperatingHours, openTime, closeTime, r.Start, r.End, timeutil.DayName(day))
			}
		}
	}
	return nil
}

// Submit validates and persists a full week of availability for one staff
// member. The seven per-day writes are issued concurrently; days with
// ranges are upserted as SUBMITTED at their composite key, empty days are
// deleted. A failure of any write surfaces as a single error, though
// writes already issued may have landed.
func (s *Service) Submit(ctx context.Context, staffID string, weekStart time.Time, perDay map[int][]models.TimeRange, isRecurring bool) error {
	if err := ValidateWeek(perDay, s.openTime, s.closeTime); err != nil {
		return err
	}

	now := time.Now()
	g, ctx := errgroup.WithContext(ctx)

	for dayOfWeek := 0; dayOfWeek < 7; dayOfWeek++ {
		dayOfWeek := dayOfWeek
		ranges := perDay[dayOfWeek]
		g.Go(func() error {
			if len(ranges) == 0 {
				return s.db.DeleteAvailability(ctx, staffID, weekStart, dayOfWeek)
			}
			return s.db.SetAvailability(ctx, &models.Availability{
				StaffID:       staffID,
				WeekStartDate: weekStart,
				DayOfWeek:     dayOfWeek,
				TimeRanges:    ranges,
				IsRecurring:   isRecurring,
				Status:        models.AvailabilitySubmitted,
				SubmittedAt:   now,
				CreatedAt:     now,
				UpdatedAt:     now,
			})
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("availability submission failed: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"staff": staffID,
		"week":  weekStart.Format("2006-01-02"),
	}).Info("availability submitted")

	return nil
}

// WeekForStaff returns one staff member's submitted ranges for a week,
// keyed by day of week. Also serves the copy-last-week convenience when
// called with the prior week's start.
func (s *Service) WeekForStaff(ctx context.Context, staffID string, weekStart time.Time) (map[int][]models.TimeRange, error) {
	items, err := s.db.GetAvailabilityForWeek(ctx, staffID, weekStart)
	if err != nil {
		return nil, err
	}

	perDay := make(map[int][]models.TimeRange)
	for _, avail := range items {
		perDay[avail.DayOfWeek] = avail.TimeRanges
	}
	return perDay, nil
}
