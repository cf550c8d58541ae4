package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucagreco-dev/prenota_bot/internal/model"
)

func engineProfile() *model.BusinessProfile {
	return &model.BusinessProfile{
		ID:                "studio_demo",
		Name:              "Studio Demo",
		Timezone:          "Europe/Rome",
		HoursStart:        "09:00",
		HoursEnd:          "18:00",
		WorkingDays:       []int{1, 2, 3, 4, 5},
		DefaultCalendarID: "primary",
		Services:          map[string]int{"consulenza": 60},
	}
}

// romeTime costruisce un istante locale a Roma e lo restituisce in UTC, come
// arriva al validatore dal request builder.
func romeTime(t *testing.T, year int, month time.Month, day, hour, minute int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)
	return time.Date(year, month, day, hour, minute, 0, 0, loc).UTC()
}

func validRequest(t *testing.T) *model.AppointmentRequest {
	t.Helper()
	return &model.AppointmentRequest{
		ClientName:      "Mario Rossi",
		ServiceType:     "consulenza",
		Start:           romeTime(t, 2025, time.January, 7, 14, 30), // martedì
		DurationMinutes: 60,
	}
}

func TestValidateAccepts(t *testing.T) {
	v := NewBusinessRuleValidator()

	result, err := v.Validate(validRequest(t), engineProfile())

	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Violations)
}

func TestValidateWorkingHours(t *testing.T) {
	v := NewBusinessRuleValidator()

	req := validRequest(t)
	req.Start = romeTime(t, 2025, time.January, 7, 20, 0)

	result, err := v.Validate(req, engineProfile())

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Violations, ViolationWorkingHours)
}

func TestValidateEndAtClosingIsValid(t *testing.T) {
	v := NewBusinessRuleValidator()

	// 17:00 + 60 minuti finisce esattamente alla chiusura: ammesso.
	req := validRequest(t)
	req.Start = romeTime(t, 2025, time.January, 7, 17, 0)

	result, err := v.Validate(req, engineProfile())

	require.NoError(t, err)
	assert.True(t, result.Valid)

	// 17:30 + 60 minuti sfora la chiusura.
	req.Start = romeTime(t, 2025, time.January, 7, 17, 30)
	result, err = v.Validate(req, engineProfile())

	require.NoError(t, err)
	assert.Contains(t, result.Violations, ViolationWorkingHours)
}

func TestValidateWorkingDay(t *testing.T) {
	v := NewBusinessRuleValidator()

	req := validRequest(t)
	req.Start = romeTime(t, 2025, time.January, 11, 10, 0) // sabato

	result, err := v.Validate(req, engineProfile())

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Violations, ViolationWorkingDay)
}

func TestValidateDurationBounds(t *testing.T) {
	v := NewBusinessRuleValidator()

	req := validRequest(t)
	req.DurationMinutes = 10

	result, err := v.Validate(req, engineProfile())
	require.NoError(t, err)
	assert.Contains(t, result.Violations, ViolationDurationBounds)

	req.DurationMinutes = 500
	result, err = v.Validate(req, engineProfile())
	require.NoError(t, err)
	assert.Contains(t, result.Violations, ViolationDurationBounds)
}

func TestValidateCollectsAllViolations(t *testing.T) {
	v := NewBusinessRuleValidator()

	// Sabato alle 20, durata fuori scala: tutte le violazioni in una volta.
	req := validRequest(t)
	req.Start = romeTime(t, 2025, time.January, 11, 20, 0)
	req.DurationMinutes = 5

	result, err := v.Validate(req, engineProfile())

	require.NoError(t, err)
	assert.Len(t, result.Violations, 3)
}

func TestValidateMalformedProfile(t *testing.T) {
	v := NewBusinessRuleValidator()

	prof := engineProfile()
	prof.HoursStart = "nove"

	_, err := v.Validate(validRequest(t), prof)

	assert.Error(t, err)
}
