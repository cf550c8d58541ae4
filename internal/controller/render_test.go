package controller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucagreco-dev/prenota_bot/internal/engine"
	"github.com/lucagreco-dev/prenota_bot/internal/model"
	"github.com/lucagreco-dev/prenota_bot/internal/nlp"
)

func romeLoc(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)
	return loc
}

func TestRenderConfirmed(t *testing.T) {
	outcome := &engine.SchedulingOutcome{
		Action: nlp.ActionCreate,
		Code:   engine.OutcomeConfirmed,
		Appointment: &model.Appointment{
			ServiceType:     "consulenza_fiscale",
			Start:           time.Date(2025, 1, 7, 13, 30, 0, 0, time.UTC), // 14:30 a Roma
			DurationMinutes: 90,
			Status:          model.StatusConfirmed,
		},
		Confidence: 1.0,
	}

	text := renderOutcome(outcome, romeLoc(t))

	assert.Contains(t, text, "confermato")
	assert.Contains(t, text, "martedì 7 gennaio alle 14:30")
	assert.Contains(t, text, "1 ora e 30 minuti")
	assert.Contains(t, text, "Consulenza fiscale")
}

func TestRenderConflictWithAlternatives(t *testing.T) {
	loc := romeLoc(t)
	outcome := &engine.SchedulingOutcome{
		Action: nlp.ActionCreate,
		Code:   engine.OutcomeAvailabilityConflict,
		Alternatives: []model.Window{
			model.NewWindow(time.Date(2025, 1, 7, 11, 0, 0, 0, loc), time.Hour),
		},
	}

	text := renderOutcome(outcome, loc)

	assert.Contains(t, text, "già occupato")
	assert.Contains(t, text, "11:00 - 12:00")
}

func TestRenderBusinessRuleViolations(t *testing.T) {
	outcome := &engine.SchedulingOutcome{
		Action:     nlp.ActionCreate,
		Code:       engine.OutcomeBusinessRuleViolation,
		Violations: []engine.ViolationCode{engine.ViolationWorkingHours, engine.ViolationWorkingDay},
	}

	text := renderOutcome(outcome, romeLoc(t))

	assert.Contains(t, text, "orario di apertura")
	assert.Contains(t, text, "non è lavorativo")
}

func TestRenderFreeSlots(t *testing.T) {
	loc := romeLoc(t)
	outcome := &engine.SchedulingOutcome{
		Action: nlp.ActionQuery,
		Code:   engine.OutcomeAvailability,
		FreeSlots: []model.Window{
			model.NewWindow(time.Date(2025, 1, 7, 9, 0, 0, 0, loc), time.Hour),
			model.NewWindow(time.Date(2025, 1, 7, 11, 0, 0, 0, loc), time.Hour),
		},
	}

	text := renderOutcome(outcome, loc)

	assert.Contains(t, text, "2 slot liberi")
	assert.Contains(t, text, "martedì 7 gennaio")
	assert.Contains(t, text, "09:00 - 10:00")
}

func TestRenderClarificationNote(t *testing.T) {
	outcome := &engine.SchedulingOutcome{
		Action: nlp.ActionCreate,
		Code:   engine.OutcomeConfirmed,
		Appointment: &model.Appointment{
			ServiceType:     "generale",
			Start:           time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC),
			DurationMinutes: 30,
		},
		Confidence:         nlp.ConfidenceFallback,
		NeedsClarification: true,
	}

	text := renderOutcome(outcome, romeLoc(t))

	assert.Contains(t, text, "Non sono sicuro")
}

func TestRenderCalendarErrors(t *testing.T) {
	transient := &engine.SchedulingOutcome{Code: engine.OutcomeCalendarTransient, RetryAdvised: true}
	assert.Contains(t, renderOutcome(transient, romeLoc(t)), "Riprova")

	permanent := &engine.SchedulingOutcome{Code: engine.OutcomeCalendarPermanent}
	assert.Contains(t, renderOutcome(permanent, romeLoc(t)), "Contatta lo studio")
}

func TestRenderUnknownAppointment(t *testing.T) {
	outcome := &engine.SchedulingOutcome{
		Action: nlp.ActionCancel,
		Code:   engine.OutcomeUnknownAppointment,
	}

	assert.Contains(t, renderOutcome(outcome, romeLoc(t)), "Non trovo un appuntamento")
}
