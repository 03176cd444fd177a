// Package payroll reduces approved shifts to total hours and gross pay.
// Pure accumulation: iteration order never changes the result.
package payroll

import (
	"workforce/models"
	"workforce/timeutil"
)

// Summary is total hours worked and gross (undeducted) pay.
type Summary struct {
	Hours float64 `json:"hours"`
	Pay   float64 `json:"pay"`
}

// Aggregate folds one staff member's shifts into hours and pay at the
// given hourly rate.
func Aggregate(shifts []models.Shift, hourlyRate float64) Summary {
	var total Summary
	for _, shift := range shifts {
		hours := timeutil.HoursBetween(shift.StartTime, shift.EndTime)
		total.Hours += hours
		total.Pay += hours * hourlyRate
	}
	return total
}

// AggregateAll groups shifts by staff member and reduces each group at
// that member's rate. A staff ID missing from rates pays 0.
func AggregateAll(shifts []models.Shift, rates map[string]float64) map[string]Summary {
	totals := make(map[string]Summary)
	for _, shift := range shifts {
		hours := timeutil.HoursBetween(shift.StartTime, shift.EndTime)
		entry := totals[shift.StaffID]
		entry.Hours += hours
		entry.Pay += hours * rates[shift.StaffID]
		totals[shift.StaffID] = entry
	}
	return totals
}
