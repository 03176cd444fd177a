// Package timeutil holds the pure time arithmetic the roster logic is
// built on: week-start normalization, HH:mm parsing and comparison, and
// duration math. No clocks, no side effects.
package timeutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"workforce/models"
)

// ErrMalformedTime is returned when a string is not a valid HH:mm value.
var ErrMalformedTime = errors.New("malformed time, expected HH:mm")

// Clock is a parsed HH:mm value.
type Clock struct {
	Hours   int
	Minutes int
}

// ParseClock parses a strict HH:mm string. Hours must be 0-23 and minutes
// 0-59; anything else is rejected rather than compared undefined.
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return Clock{}, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return Clock{}, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return Clock{}, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return Clock{}, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	return Clock{Hours: hours, Minutes: minutes}, nil
}

// ValidateClock reports whether s is a well-formed HH:mm value.
func ValidateClock(s string) error {
	_, err := ParseClock(s)
	return err
}

// IsTimeBefore reports whether t1 strictly precedes t2. Both arguments
// must be valid HH:mm strings; malformed input yields false.
func IsTimeBefore(t1, t2 string) bool {
	c1, err := ParseClock(t1)
	if err != nil {
		return false
	}
	c2, err := ParseClock(t2)
	if err != nil {
		return false
	}
	if c1.Hours != c2.Hours {
		return c1.Hours < c2.Hours
	}
	return c1.Minutes < c2.Minutes
}

// HoursBetween returns the duration from start to end in fractional hours.
// Negative if end precedes start; shifts are validated elsewhere so they
// never span midnight.
func HoursBetween(start, end string) float64 {
	s, err := ParseClock(start)
	if err != nil {
		return 0
	}
	e, err := ParseClock(end)
	if err != nil {
		return 0
	}
	startMinutes := s.Hours*60 + s.Minutes
	endMinutes := e.Hours*60 + e.Minutes
	return float64(endMinutes-startMinutes) / 60
}

// IsWithinAvailability reports whether [shiftStart, shiftEnd] lies entirely
// inside a single availability range. Adjacent or overlapping ranges are
// not merged: a shift spanning the gap between two ranges is rejected.
func IsWithinAvailability(shiftStart, shiftEnd string, ranges []models.TimeRange) bool {
	for _, r := range ranges {
		if !IsTimeBefore(shiftStart, r.Start) && !IsTimeBefore(r.End, shiftEnd) {
			return true
		}
	}
	return false
}

// Overlaps reports whether the half-open intervals [aStart,aEnd) and
// [bStart,bEnd) intersect. Touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return IsTimeBefore(aStart, bEnd) && IsTimeBefore(bStart, aEnd)
}

// WeekStart returns the Monday 00:00 of the week containing date, in the
// date's location. Sunday belongs to the week that started six days
// earlier.
func WeekStart(date time.Time) time.Time {
	offset := 1 - int(date.Weekday())
	if date.Weekday() == time.Sunday {
		offset = -6
	}
	monday := date.AddDate(0, 0, offset)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, date.Location())
}

// DayDate returns the calendar day for dayOfWeek (0=Sunday .. 6=Saturday)
// within the Monday-anchored week starting at weekStart.
func DayDate(weekStart time.Time, dayOfWeek int) time.Time {
	offset := dayOfWeek - 1
	if dayOfWeek == 0 {
		offset = 6
	}
	d := weekStart.AddDate(0, 0, offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, weekStart.Location())
}

// DayName returns the English weekday name for a 0=Sunday day number.
func DayName(dayOfWeek int) string {
	days := []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return ""
	}
	return days[dayOfWeek]
}
