package payroll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"workforce/models"
)

func shift(staffID, start, end string) models.Shift {
	return models.Shift{
		StaffID:   staffID,
		Date:      time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local),
		StartTime: start,
		EndTime:   end,
		Status:    models.ShiftApproved,
	}
}

func TestAggregate(t *testing.T) {
	shifts := []models.Shift{
		shift("staff-1", "09:00", "17:00"), // 8h
		shift("staff-1", "09:30", "13:00"), // 3.5h
	}

	got := Aggregate(shifts, 25)
	assert.InDelta(t, 11.5, got.Hours, 1e-9)
	assert.InDelta(t, 287.5, got.Pay, 1e-9)
}

func TestAggregate_Empty(t *testing.T) {
	got := Aggregate(nil, 25)
	assert.Zero(t, got.Hours)
	assert.Zero(t, got.Pay)
}

func TestAggregate_OrderIndependent(t *testing.T) {
	a := []models.Shift{
		shift("staff-1", "09:00", "12:00"),
		shift("staff-1", "13:00", "17:15"),
		shift("staff-1", "18:00", "20:30"),
	}
	b := []models.Shift{a[2], a[0], a[1]}

	assert.Equal(t, Aggregate(a, 30), Aggregate(b, 30))
}

func TestAggregateAll(t *testing.T) {
	shifts := []models.Shift{
		shift("staff-1", "09:00", "17:00"), // 8h @ 25
		shift("staff-2", "10:00", "14:00"), // 4h @ 30
		shift("staff-1", "18:00", "20:00"), // 2h @ 25
	}
	rates := map[string]float64{"staff-1": 25, "staff-2": 30}

	got := AggregateAll(shifts, rates)
	assert.Len(t, got, 2)
	assert.InDelta(t, 10.0, got["staff-1"].Hours, 1e-9)
	assert.InDelta(t, 250.0, got["staff-1"].Pay, 1e-9)
	assert.InDelta(t, 4.0, got["staff-2"].Hours, 1e-9)
	assert.InDelta(t, 120.0, got["staff-2"].Pay, 1e-9)
}

func TestAggregateAll_UnknownRate(t *testing.T) {
	shifts := []models.Shift{shift("staff-9", "09:00", "17:00")}

	got := AggregateAll(shifts, map[string]float64{})
	assert.InDelta(t, 8.0, got["staff-9"].Hours, 1e-9)
	assert.Zero(t, got["staff-9"].Pay)
}
