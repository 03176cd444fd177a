package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce/models"
)

func TestParseClock(t *testing.T) {
	c, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9, c.Hours)
	assert.Equal(t, 30, c.Minutes)

	c, err = ParseClock("00:00")
	require.NoError(t, err)
	assert.Equal(t, 0, c.Hours)
	assert.Equal(t, 0, c.Minutes)

	c, err = ParseClock("23:59")
	require.NoError(t, err)
	assert.Equal(t, 23, c.Hours)
	assert.Equal(t, 59, c.Minutes)
}

func TestParseClock_Malformed(t *testing.T) {
	cases := []string{"", "9", "9:00:00", "ab:cd", "24:00", "12:60", "-1:30", "12:-5"}
	for _, input := range cases {
		_, err := ParseClock(input)
		assert.ErrorIs(t, err, ErrMalformedTime, "input %q", input)
	}
}

func TestIsTimeBefore(t *testing.T) {
	assert.True(t, IsTimeBefore("09:00", "17:00"))
	assert.True(t, IsTimeBefore("09:00", "09:01"))
	assert.False(t, IsTimeBefore("09:00", "09:00"))
	assert.False(t, IsTimeBefore("17:00", "09:00"))
	// different hours, minutes must not mislead the comparison
	assert.True(t, IsTimeBefore("09:59", "10:00"))
	assert.False(t, IsTimeBefore("10:00", "09:59"))
}

func TestHoursBetween(t *testing.T) {
	assert.Equal(t, 8.0, HoursBetween("09:00", "17:00"))
	assert.Equal(t, 0.5, HoursBetween("09:00", "09:30"))
	assert.Equal(t, 8.75, HoursBetween("08:15", "17:00"))
	assert.Equal(t, 0.0, HoursBetween("12:00", "12:00"))
	// no wraparound: end before start is negative
	assert.Equal(t, -8.0, HoursBetween("17:00", "09:00"))
}

func TestIsWithinAvailability(t *testing.T) {
	ranges := []models.TimeRange{
		{Start: "09:00", End: "12:00"},
		{Start: "13:00", End: "17:00"},
	}

	assert.True(t, IsWithinAvailability("09:00", "12:00", ranges))
	assert.True(t, IsWithinAvailability("10:00", "11:30", ranges))
	assert.True(t, IsWithinAvailability("13:00", "17:00", ranges))
	// spans the gap between two ranges: rejected, ranges are not merged
	assert.False(t, IsWithinAvailability("11:00", "13:30", ranges))
	assert.False(t, IsWithinAvailability("08:00", "10:00", ranges))
	assert.False(t, IsWithinAvailability("16:00", "18:00", ranges))
	assert.False(t, IsWithinAvailability("09:00", "17:00", nil))
}

func TestOverlaps(t *testing.T) {
	assert.True(t, Overlaps("11:00", "14:00", "09:00", "12:00"))
	assert.True(t, Overlaps("09:00", "12:00", "11:00", "14:00"))
	assert.True(t, Overlaps("10:00", "11:00", "09:00", "12:00"))
	// touching endpoints do not overlap
	assert.False(t, Overlaps("12:00", "14:00", "09:00", "12:00"))
	assert.False(t, Overlaps("09:00", "12:00", "12:00", "14:00"))
	assert.False(t, Overlaps("07:00", "08:00", "09:00", "12:00"))
}

func TestWeekStart(t *testing.T) {
	// 2026-08-31 is a Monday
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local)

	for day := 0; day < 7; day++ {
		d := monday.AddDate(0, 0, day).Add(13 * time.Hour)
		got := WeekStart(d)
		assert.Equal(t, monday, got, "weekday %s", d.Weekday())
		assert.Equal(t, time.Monday, got.Weekday())
		assert.Equal(t, 0, got.Hour())
	}

	// Sunday folds back to the previous Monday
	sunday := time.Date(2026, 9, 6, 18, 30, 0, 0, time.Local)
	assert.Equal(t, monday, WeekStart(sunday))
}

func TestWeekStart_Idempotent(t *testing.T) {
	for day := 0; day < 14; day++ {
		d := time.Date(2026, 8, 20, 9, 15, 0, 0, time.Local).AddDate(0, 0, day)
		once := WeekStart(d)
		assert.Equal(t, once, WeekStart(once))
	}
}

func TestDayDate(t *testing.T) {
	weekStart := time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local) // Monday

	assert.Equal(t, weekStart, DayDate(weekStart, 1))
	assert.Equal(t, weekStart.AddDate(0, 0, 4), DayDate(weekStart, 5)) // Friday
	// Sunday is the last day of the Monday-anchored week
	assert.Equal(t, weekStart.AddDate(0, 0, 6), DayDate(weekStart, 0))
}

func TestDayName(t *testing.T) {
	assert.Equal(t, "Sunday", DayName(0))
	assert.Equal(t, "Monday", DayName(1))
	assert.Equal(t, "Saturday", DayName(6))
	assert.Equal(t, "", DayName(7))
}
