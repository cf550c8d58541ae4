package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lucagreco-dev/prenota_bot/internal/calendar"
	"github.com/lucagreco-dev/prenota_bot/internal/model"
)

const (
	// slotStep è il passo con cui vengono proposti gli slot alternativi.
	slotStep = 30 * time.Minute
	// maxAlternatives limita gli slot alternativi offerti su conflitto.
	maxAlternatives = 3
)

// AvailabilityDecision è l'esito del controllo di disponibilità.
type AvailabilityDecision struct {
	Available    bool
	Conflicts    []model.Window
	Alternatives []model.Window
}

// AvailabilityResolver confronta la finestra candidata con gli intervalli
// occupati del calendario esterno. La logica propria è il calcolo delle
// sovrapposizioni (intervalli semiaperti) e degli slot alternativi; la
// lettura del calendario è delegata al collaboratore.
type AvailabilityResolver struct {
	cal    calendar.Service
	logger *zap.Logger
}

// NewAvailabilityResolver costruisce il resolver.
func NewAvailabilityResolver(cal calendar.Service, logger *zap.Logger) *AvailabilityResolver {
	return &AvailabilityResolver{cal: cal, logger: logger}
}

// Check verifica se la finestra candidata è libera sul calendario indicato.
// Su conflitto propone fino a maxAlternatives slot liberi nello stesso
// giorno, dentro gli orari di lavoro e mai nel passato.
func (r *AvailabilityResolver) Check(
	ctx context.Context,
	calendarID string,
	want model.Window,
	profile *model.BusinessProfile,
	reference time.Time,
) (*AvailabilityDecision, error) {
	day, err := workingDayWindow(want.Start, profile)
	if err != nil {
		return nil, err
	}

	busy, err := r.cal.ListBusy(ctx, calendarID, day)
	if err != nil {
		return nil, err
	}

	var conflicts []model.Window
	for _, b := range busy {
		if want.Overlaps(b) {
			conflicts = append(conflicts, b)
		}
	}

	if len(conflicts) == 0 {
		return &AvailabilityDecision{Available: true}, nil
	}

	alternatives := freeSlots(day, want.Duration(), busy, reference, maxAlternatives)

	r.logger.Info("Availability conflict",
		zap.String("calendar_id", calendarID),
		zap.Time("requested_start", want.Start),
		zap.Int("conflicts", len(conflicts)),
		zap.Int("alternatives", len(alternatives)),
	)

	return &AvailabilityDecision{
		Available:    false,
		Conflicts:    conflicts,
		Alternatives: alternatives,
	}, nil
}

// FreeSlots restituisce gli slot liberi del giorno richiesto per la durata
// indicata, usato per i turni di sola consultazione della disponibilità.
func (r *AvailabilityResolver) FreeSlots(
	ctx context.Context,
	calendarID string,
	dayStart time.Time,
	duration time.Duration,
	profile *model.BusinessProfile,
	reference time.Time,
) ([]model.Window, error) {
	day, err := workingDayWindow(dayStart, profile)
	if err != nil {
		return nil, err
	}

	busy, err := r.cal.ListBusy(ctx, calendarID, day)
	if err != nil {
		return nil, err
	}

	return freeSlots(day, duration, busy, reference, 0), nil
}

// workingDayWindow calcola la finestra lavorativa (locale) del giorno che
// contiene l'istante dato.
func workingDayWindow(t time.Time, profile *model.BusinessProfile) (model.Window, error) {
	loc, err := profile.Location()
	if err != nil {
		return model.Window{}, err
	}
	startMin, err := profile.HoursStartMinutes()
	if err != nil {
		return model.Window{}, fmt.Errorf("profile %s: %w", profile.ID, err)
	}
	endMin, err := profile.HoursEndMinutes()
	if err != nil {
		return model.Window{}, fmt.Errorf("profile %s: %w", profile.ID, err)
	}

	local := t.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return model.Window{
		Start: midnight.Add(time.Duration(startMin) * time.Minute),
		End:   midnight.Add(time.Duration(endMin) * time.Minute),
	}, nil
}

// freeSlots enumera gli inizi slot nel giorno lavorativo dove una finestra
// di durata data non si sovrappone a nessun intervallo occupato. Gli slot
// nel passato rispetto a reference vengono saltati. limit <= 0 = illimitato.
func freeSlots(day model.Window, duration time.Duration, busy []model.Window, reference time.Time, limit int) []model.Window {
	if duration <= 0 {
		return nil
	}

	var slots []model.Window
	for t := day.Start; !t.Add(duration).After(day.End); t = t.Add(slotStep) {
		if t.Before(reference) {
			continue
		}
		candidate := model.NewWindow(t, duration)
		if overlapsAny(candidate, busy) {
			continue
		}
		slots = append(slots, candidate)
		if limit > 0 && len(slots) >= limit {
			break
		}
	}
	return slots
}

func overlapsAny(w model.Window, busy []model.Window) bool {
	for _, b := range busy {
		if w.Overlaps(b) {
			return true
		}
	}
	return false
}
