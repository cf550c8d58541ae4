package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lucagreco-dev/prenota_bot/internal/calendar"
	"github.com/lucagreco-dev/prenota_bot/internal/model"
	"github.com/lucagreco-dev/prenota_bot/internal/nlp"
)

// AppointmentStore è la persistenza degli appuntamenti. Le transizioni di
// stato passano esclusivamente dal lifecycle manager.
type AppointmentStore interface {
	Create(ctx context.Context, appt *model.Appointment) error
	UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus) error
	// Confirm imposta lo stato confirmed e l'id evento in un'unica
	// scrittura; restituisce model.ErrWindowConflict se il vincolo di
	// esclusione sulla finestra scatta.
	Confirm(ctx context.Context, id, calendarEventID string) error
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
}

// LifecycleManager possiede la macchina a stati degli appuntamenti e
// orchestra validazione, disponibilità e scrittura sul calendario esterno.
type LifecycleManager struct {
	store        AppointmentStore
	cal          calendar.Service
	validator    *BusinessRuleValidator
	availability *AvailabilityResolver
	locks        keyedMutex
	logger       *zap.Logger

	// Now è l'orologio, sostituibile nei test.
	Now func() time.Time
}

// NewLifecycleManager costruisce il manager. Il servizio calendario deve già
// essere decorato con la policy di retry.
func NewLifecycleManager(store AppointmentStore, cal calendar.Service, logger *zap.Logger) *LifecycleManager {
	return &LifecycleManager{
		store:        store,
		cal:          cal,
		validator:    NewBusinessRuleValidator(),
		availability: NewAvailabilityResolver(cal, logger),
		logger:       logger,
		Now:          time.Now,
	}
}

// Availability espone il resolver per i turni di sola consultazione.
func (m *LifecycleManager) Availability() *AvailabilityResolver {
	return m.availability
}

// Create esegue il ciclo completo: Proposed -> Validated -> Confirmed, con
// Rejected su violazioni, conflitti o errori del calendario. Il controllo di
// disponibilità e la scrittura avvengono dentro la stessa sezione critica
// per calendario.
func (m *LifecycleManager) Create(
	ctx context.Context,
	req *model.AppointmentRequest,
	profile *model.BusinessProfile,
) (*SchedulingOutcome, error) {
	now := m.Now().UTC()

	appt := &model.Appointment{
		ID:              uuid.NewString(),
		BusinessID:      profile.ID,
		ConsultantID:    req.ConsultantID,
		ClientName:      req.ClientName,
		ClientEmail:     req.ClientEmail,
		ClientPhone:     req.ClientPhone,
		ServiceType:     req.ServiceType,
		Start:           req.Start,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
		CalendarID:      profile.CalendarFor(req.ConsultantID),
		Status:          model.StatusProposed,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := m.store.Create(ctx, appt); err != nil {
		return nil, fmt.Errorf("persist proposed appointment: %w", err)
	}

	outcome := &SchedulingOutcome{
		Action:      nlp.ActionCreate,
		Appointment: appt,
		Confidence:  req.Confidence,
	}

	// Le regole di business vengono valutate prima di qualsiasi chiamata
	// al calendario: fail fast, zero I/O sprecato.
	validation, err := m.validator.Validate(req, profile)
	if err != nil {
		return nil, err
	}
	if !validation.Valid {
		if err := m.transition(ctx, appt, model.StatusRejected); err != nil {
			return nil, err
		}
		outcome.Code = OutcomeBusinessRuleViolation
		outcome.Violations = validation.Violations
		return outcome, nil
	}

	if err := m.transition(ctx, appt, model.StatusValidated); err != nil {
		return nil, err
	}

	calendarID := appt.CalendarID

	// Sezione critica per calendario: nessun'altra richiesta può
	// intrecciarsi fra il check di disponibilità e la scrittura.
	unlock := m.locks.Lock(calendarID)
	defer unlock()

	decision, err := m.availability.Check(ctx, calendarID, req.Window(), profile, m.Now())
	if err != nil {
		return m.rejectOnCalendarError(ctx, appt, outcome, err)
	}
	if !decision.Available {
		if err := m.transition(ctx, appt, model.StatusRejected); err != nil {
			return nil, err
		}
		outcome.Code = OutcomeAvailabilityConflict
		outcome.Conflicts = decision.Conflicts
		outcome.Alternatives = decision.Alternatives
		return outcome, nil
	}

	eventID, err := m.cal.CreateEvent(ctx, calendarID, buildEvent(req, profile))
	if err != nil {
		// Nessun evento sul calendario: il record interno non può
		// restare Confirmed, torna Rejected.
		return m.rejectOnCalendarError(ctx, appt, outcome, err)
	}

	if err := m.store.Confirm(ctx, appt.ID, eventID); err != nil {
		// La conferma interna è fallita: l'evento esterno va rimosso,
		// i due sistemi non devono mai dichiarare successo da soli.
		if delErr := m.cal.DeleteEvent(ctx, calendarID, eventID); delErr != nil {
			m.logger.Error("Failed to roll back calendar event",
				zap.String("appointment_id", appt.ID),
				zap.String("event_id", eventID),
				zap.Error(delErr),
			)
		}
		if errors.Is(err, model.ErrWindowConflict) {
			if terr := m.transition(ctx, appt, model.StatusRejected); terr != nil {
				return nil, terr
			}
			outcome.Code = OutcomeAvailabilityConflict
			return outcome, nil
		}
		return nil, fmt.Errorf("confirm appointment: %w", err)
	}

	appt.Status = model.StatusConfirmed
	appt.CalendarEventID = eventID
	appt.UpdatedAt = m.Now().UTC()
	outcome.Code = OutcomeConfirmed

	m.logger.Info("Appointment confirmed",
		zap.String("appointment_id", appt.ID),
		zap.String("business_id", appt.BusinessID),
		zap.String("calendar_id", calendarID),
		zap.String("event_id", eventID),
		zap.Time("start", appt.Start),
		zap.String("service", appt.ServiceType),
	)

	return outcome, nil
}

// Cancel annulla un appuntamento confermato eliminando prima l'evento dal
// calendario esterno; lo stato interno passa a Cancelled solo dopo.
func (m *LifecycleManager) Cancel(ctx context.Context, appointmentID string) (*SchedulingOutcome, error) {
	appt, err := m.store.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}

	outcome := &SchedulingOutcome{Action: nlp.ActionCancel}

	if appt == nil || appt.Status != model.StatusConfirmed {
		outcome.Code = OutcomeUnknownAppointment
		return outcome, nil
	}
	outcome.Appointment = appt

	if appt.CalendarEventID != "" {
		if err := m.cal.DeleteEvent(ctx, appt.CalendarID, appt.CalendarEventID); err != nil {
			// L'evento esiste ancora: lo stato interno resta
			// Confirmed, i due sistemi restano coerenti.
			outcome.Code = calendarOutcomeCode(err)
			outcome.RetryAdvised = calendar.IsTransient(err)
			return outcome, nil
		}
	}

	if err := m.transition(ctx, appt, model.StatusCancelled); err != nil {
		return nil, err
	}
	outcome.Code = OutcomeCancelled

	m.logger.Info("Appointment cancelled",
		zap.String("appointment_id", appt.ID),
		zap.String("business_id", appt.BusinessID),
	)

	return outcome, nil
}

// Reschedule implementa la modifica come annulla-e-ricrea: l'API esterna non
// garantisce update transazionali multi-campo, quindi evento e record non
// possono divergere a metà modifica.
func (m *LifecycleManager) Reschedule(
	ctx context.Context,
	appointmentID string,
	req *model.AppointmentRequest,
	profile *model.BusinessProfile,
) (*SchedulingOutcome, error) {
	cancelled, err := m.Cancel(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if cancelled.Code != OutcomeCancelled {
		cancelled.Action = nlp.ActionModify
		return cancelled, nil
	}

	outcome, err := m.Create(ctx, req, profile)
	if err != nil {
		return nil, err
	}
	outcome.Action = nlp.ActionModify
	if outcome.Code == OutcomeConfirmed {
		outcome.Code = OutcomeRescheduled
	}
	return outcome, nil
}

// transition applica una transizione di stato verificandola contro la
// tabella della macchina a stati.
func (m *LifecycleManager) transition(ctx context.Context, appt *model.Appointment, to model.AppointmentStatus) error {
	if !model.CanTransition(appt.Status, to) {
		return fmt.Errorf("invalid status transition %s -> %s for appointment %s", appt.Status, to, appt.ID)
	}
	if err := m.store.UpdateStatus(ctx, appt.ID, to); err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	appt.Status = to
	appt.UpdatedAt = m.Now().UTC()
	return nil
}

func (m *LifecycleManager) rejectOnCalendarError(
	ctx context.Context,
	appt *model.Appointment,
	outcome *SchedulingOutcome,
	calErr error,
) (*SchedulingOutcome, error) {
	m.logger.Warn("Calendar error during scheduling",
		zap.String("appointment_id", appt.ID),
		zap.Error(calErr),
	)
	if err := m.transition(ctx, appt, model.StatusRejected); err != nil {
		return nil, err
	}
	outcome.Code = calendarOutcomeCode(calErr)
	outcome.RetryAdvised = calendar.IsTransient(calErr)
	return outcome, nil
}

func calendarOutcomeCode(err error) OutcomeCode {
	if calendar.IsTransient(err) {
		return OutcomeCalendarTransient
	}
	return OutcomeCalendarPermanent
}

// buildEvent prepara il payload dell'evento: titolo "Servizio - Cliente",
// descrizione con i riferimenti del cliente, invito via email se presente.
func buildEvent(req *model.AppointmentRequest, profile *model.BusinessProfile) calendar.Event {
	var b strings.Builder
	fmt.Fprintf(&b, "Servizio: %s\nCliente: %s", serviceLabel(req.ServiceType), req.ClientName)
	if req.ClientEmail != "" {
		fmt.Fprintf(&b, "\nEmail: %s", req.ClientEmail)
	}
	if req.ClientPhone != "" {
		fmt.Fprintf(&b, "\nTelefono: %s", req.ClientPhone)
	}
	if req.Notes != "" {
		fmt.Fprintf(&b, "\nNote: %s", req.Notes)
	}

	return calendar.Event{
		Summary:       fmt.Sprintf("%s - %s", serviceLabel(req.ServiceType), req.ClientName),
		Description:   b.String(),
		Start:         req.Start,
		End:           req.Window().End,
		Timezone:      profile.Timezone,
		AttendeeEmail: req.ClientEmail,
	}
}

// serviceLabel rende leggibile la chiave del servizio: "consulenza_fiscale"
// diventa "Consulenza fiscale".
func serviceLabel(serviceType string) string {
	label := strings.ReplaceAll(serviceType, "_", " ")
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
