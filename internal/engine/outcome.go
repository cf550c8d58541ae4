package engine

import (
	"github.com/lucagreco-dev/prenota_bot/internal/model"
	"github.com/lucagreco-dev/prenota_bot/internal/nlp"
)

// OutcomeCode classifica l'esito di un turno. I codici sono stabili: il
// layer di presentazione li traduce in prosa senza fare string-matching sui
// messaggi interni.
type OutcomeCode string

const (
	OutcomeConfirmed             OutcomeCode = "confirmed"
	OutcomeCancelled             OutcomeCode = "cancelled"
	OutcomeRescheduled           OutcomeCode = "rescheduled"
	OutcomeAvailability          OutcomeCode = "availability"
	OutcomeBusinessRuleViolation OutcomeCode = "business_rule_violation"
	OutcomeAvailabilityConflict  OutcomeCode = "availability_conflict"
	OutcomeCalendarTransient     OutcomeCode = "calendar_transient_error"
	OutcomeCalendarPermanent     OutcomeCode = "calendar_permanent_error"
	OutcomeUnknownAppointment    OutcomeCode = "unknown_appointment"
)

// ViolationCode identifica la singola regola di business violata.
type ViolationCode string

const (
	ViolationWorkingHours   ViolationCode = "WorkingHours"
	ViolationWorkingDay     ViolationCode = "WorkingDay"
	ViolationDurationBounds ViolationCode = "DurationBounds"
)

// SchedulingOutcome è l'esito strutturato di un turno di scheduling. La resa
// in prosa per l'utente è responsabilità del chiamante.
type SchedulingOutcome struct {
	Action nlp.Action  `json:"action"`
	Code   OutcomeCode `json:"code"`

	Appointment *model.Appointment `json:"appointment,omitempty"`

	Violations   []ViolationCode `json:"violations,omitempty"`
	Conflicts    []model.Window  `json:"conflicts,omitempty"`
	Alternatives []model.Window  `json:"alternatives,omitempty"`
	FreeSlots    []model.Window  `json:"free_slots,omitempty"`

	// Confidenza dell'estrazione temporale; sotto la soglia il chiamante
	// può preferire una domanda di chiarimento alla conferma.
	Confidence         float64 `json:"confidence,omitempty"`
	NeedsClarification bool    `json:"needs_clarification,omitempty"`

	// RetryAdvised è true per gli errori transienti del calendario.
	RetryAdvised bool `json:"retry_advised,omitempty"`
}
