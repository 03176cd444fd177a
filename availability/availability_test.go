package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"workforce/models"
	"workforce/timeutil"
)

const (
	testOpen  = "07:00"
	testClose = "22:00"
)

func TestValidateWeek(t *testing.T) {
	perDay := map[int][]models.TimeRange{
		1: {{Start: "09:00", End: "17:00"}},
		3: {{Start: "07:00", End: "12:00"}, {Start: "13:00", End: "22:00"}},
	}

	assert.NoError(t, ValidateWeek(perDay, testOpen, testClose))
}

func TestValidateWeek_Empty(t *testing.T) {
	assert.NoError(t, ValidateWeek(nil, testOpen, testClose))
	assert.NoError(t, ValidateWeek(map[int][]models.TimeRange{}, testOpen, testClose))
}

func TestValidateWeek_BeforeOpen(t *testing.T) {
	perDay := map[int][]models.TimeRange{
		2: {{Start: "06:00", End: "12:00"}},
	}

	err := ValidateWeek(perDay, testOpen, testClose)
	assert.ErrorIs(t, err, ErrOutsideOperatingHours)
}

func TestValidateWeek_AfterClose(t *testing.T) {
	perDay := map[int][]models.TimeRange{
		5: {{Start: "18:00", End: "23:00"}},
	}

	err := ValidateWeek(perDay, testOpen, testClose)
	assert.ErrorIs(t, err, ErrOutsideOperatingHours)
}

func TestValidateWeek_Boundaries(t *testing.T) {
	// exactly the operating hours is allowed
	perDay := map[int][]models.TimeRange{
		4: {{Start: testOpen, End: testClose}},
	}

	assert.NoError(t, ValidateWeek(perDay, testOpen, testClose))
}

func TestValidateWeek_ReversedRange(t *testing.T) {
	perDay := map[int][]models.TimeRange{
		0: {{Start: "17:00", End: "09:00"}},
	}

	err := ValidateWeek(perDay, testOpen, testClose)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestValidateWeek_Malformed(t *testing.T) {
	perDay := map[int][]models.TimeRange{
		6: {{Start: "nine", End: "17:00"}},
	}

	err := ValidateWeek(perDay, testOpen, testClose)
	assert.ErrorIs(t, err, timeutil.ErrMalformedTime)
}

func TestValidateWeek_OneBadRangeRejectsAll(t *testing.T) {
	perDay := map[int][]models.TimeRange{
		1: {{Start: "09:00", End: "17:00"}},
		2: {{Start: "06:30", End: "10:00"}},
	}

	err := ValidateWeek(perDay, testOpen, testClose)
	assert.ErrorIs(t, err, ErrOutsideOperatingHours)
}
