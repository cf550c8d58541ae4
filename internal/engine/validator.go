package engine

import (
	"fmt"

	"github.com/lucagreco-dev/prenota_bot/internal/model"
)

// Limiti di durata di un appuntamento, in minuti.
const (
	MinDurationMinutes = 15
	MaxDurationMinutes = 480
)

// ValidationResult raccoglie tutte le violazioni trovate, non solo la prima:
// il chiamante può segnalarle all'utente in un'unica risposta.
type ValidationResult struct {
	Valid      bool
	Violations []ViolationCode
}

// BusinessRuleValidator verifica un candidato contro il profilo del business.
// Pura computazione: nessuna chiamata al calendario o ad altri collaboratori,
// così il fail-fast sulle regole non spreca I/O.
type BusinessRuleValidator struct{}

// NewBusinessRuleValidator costruisce il validatore.
func NewBusinessRuleValidator() *BusinessRuleValidator {
	return &BusinessRuleValidator{}
}

// Validate valuta tutte le regole, senza short-circuit. Restituisce errore
// solo se il profilo stesso è malformato (timezone od orari non parsabili).
func (v *BusinessRuleValidator) Validate(req *model.AppointmentRequest, profile *model.BusinessProfile) (ValidationResult, error) {
	loc, err := profile.Location()
	if err != nil {
		return ValidationResult{}, err
	}
	hoursStart, err := profile.HoursStartMinutes()
	if err != nil {
		return ValidationResult{}, fmt.Errorf("profile %s: %w", profile.ID, err)
	}
	hoursEnd, err := profile.HoursEndMinutes()
	if err != nil {
		return ValidationResult{}, fmt.Errorf("profile %s: %w", profile.ID, err)
	}

	var violations []ViolationCode

	local := req.Start.In(loc)
	startMinutes := local.Hour()*60 + local.Minute()
	endMinutes := startMinutes + req.DurationMinutes

	// L'inizio deve cadere dentro [apertura, chiusura); la fine può al
	// massimo coincidere con la chiusura, mai superarla.
	if startMinutes < hoursStart || startMinutes >= hoursEnd || endMinutes > hoursEnd {
		violations = append(violations, ViolationWorkingHours)
	}

	if !profile.IsWorkingDay(local.Weekday()) {
		violations = append(violations, ViolationWorkingDay)
	}

	if req.DurationMinutes < MinDurationMinutes || req.DurationMinutes > MaxDurationMinutes {
		violations = append(violations, ViolationDurationBounds)
	}

	return ValidationResult{Valid: len(violations) == 0, Violations: violations}, nil
}
