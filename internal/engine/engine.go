package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lucagreco-dev/prenota_bot/internal/calendar"
	"github.com/lucagreco-dev/prenota_bot/internal/model"
	"github.com/lucagreco-dev/prenota_bot/internal/nlp"
	"github.com/lucagreco-dev/prenota_bot/internal/profile"
)

// TurnContext è il contesto tenant del turno, fornito dal layer di
// conversazione: business, eventuale consulente, identità del cliente e
// riferimento all'ultimo appuntamento confermato della chat (per i turni di
// annullamento e spostamento).
type TurnContext struct {
	BusinessID        string
	ConsultantID      string
	Client            nlp.ClientInfo
	LastAppointmentID string
}

// Engine è il punto d'ingresso del motore di scheduling: un turno testuale
// entra, un esito strutturato esce. La prosa per l'utente è del chiamante.
type Engine struct {
	profiles  profile.Store
	lifecycle *LifecycleManager
	builder   *nlp.RequestBuilder
	logger    *zap.Logger

	// Now è l'orologio, sostituibile nei test.
	Now func() time.Time
}

// New costruisce il motore.
func New(profiles profile.Store, lifecycle *LifecycleManager, logger *zap.Logger) *Engine {
	return &Engine{
		profiles:  profiles,
		lifecycle: lifecycle,
		builder:   nlp.NewRequestBuilder(),
		logger:    logger,
		Now:       time.Now,
	}
}

// HandleSchedulingTurn elabora un turno di conversazione: individua
// l'operazione richiesta, estrae l'intento e la delega al lifecycle manager.
// Ogni fallimento previsto è un esito tipizzato, mai un errore opaco; gli
// error restituiti riguardano solo infrastruttura (profilo o persistenza).
func (e *Engine) HandleSchedulingTurn(ctx context.Context, text string, tc TurnContext) (*SchedulingOutcome, error) {
	prof, err := e.profiles.LoadProfile(ctx, tc.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if prof == nil {
		return nil, fmt.Errorf("business %s not found", tc.BusinessID)
	}

	action := nlp.DetectAction(text)

	e.logger.Debug("Scheduling turn",
		zap.String("business_id", tc.BusinessID),
		zap.String("action", string(action)),
	)

	var outcome *SchedulingOutcome
	switch action {
	case nlp.ActionCancel:
		outcome, err = e.handleCancel(ctx, tc)
	case nlp.ActionModify:
		outcome, err = e.handleModify(ctx, text, tc, prof)
	case nlp.ActionQuery:
		outcome, err = e.handleQuery(ctx, text, tc, prof)
	default:
		outcome, err = e.handleCreate(ctx, text, tc, prof)
	}
	if err != nil {
		return nil, err
	}

	// Sotto questa soglia il motore ha tirato dritto coi default: il
	// chiamante può preferire una domanda di chiarimento.
	if outcome.Confidence > 0 && outcome.Confidence < nlp.ConfidenceWeak {
		outcome.NeedsClarification = true
	}

	return outcome, nil
}

func (e *Engine) handleCreate(ctx context.Context, text string, tc TurnContext, prof *model.BusinessProfile) (*SchedulingOutcome, error) {
	req, err := e.builder.Build(text, e.Now(), prof, tc.Client, tc.ConsultantID)
	if err != nil {
		return nil, err
	}
	return e.lifecycle.Create(ctx, req, prof)
}

func (e *Engine) handleCancel(ctx context.Context, tc TurnContext) (*SchedulingOutcome, error) {
	if tc.LastAppointmentID == "" {
		return &SchedulingOutcome{Action: nlp.ActionCancel, Code: OutcomeUnknownAppointment}, nil
	}
	return e.lifecycle.Cancel(ctx, tc.LastAppointmentID)
}

func (e *Engine) handleModify(ctx context.Context, text string, tc TurnContext, prof *model.BusinessProfile) (*SchedulingOutcome, error) {
	if tc.LastAppointmentID == "" {
		return &SchedulingOutcome{Action: nlp.ActionModify, Code: OutcomeUnknownAppointment}, nil
	}
	req, err := e.builder.Build(text, e.Now(), prof, tc.Client, tc.ConsultantID)
	if err != nil {
		return nil, err
	}
	return e.lifecycle.Reschedule(ctx, tc.LastAppointmentID, req, prof)
}

// handleQuery risponde ai turni di sola disponibilità con gli slot liberi
// del giorno risolto, per la durata del servizio richiesto.
func (e *Engine) handleQuery(ctx context.Context, text string, tc TurnContext, prof *model.BusinessProfile) (*SchedulingOutcome, error) {
	loc, err := prof.Location()
	if err != nil {
		return nil, err
	}

	resolution := e.builder.Temporal().Resolve(text, e.Now(), loc)
	intent := e.builder.Services().Extract(text)

	duration := intent.DurationMinutes
	if !intent.DurationExplicit {
		if d, ok := prof.ServiceDuration(intent.ServiceType); ok {
			duration = d
		}
	}

	outcome := &SchedulingOutcome{
		Action:     nlp.ActionQuery,
		Confidence: resolution.Confidence,
	}

	slots, err := e.lifecycle.Availability().FreeSlots(
		ctx,
		prof.CalendarFor(tc.ConsultantID),
		resolution.Start,
		time.Duration(duration)*time.Minute,
		prof,
		e.Now(),
	)
	if err != nil {
		outcome.Code = calendarOutcomeCode(err)
		outcome.RetryAdvised = calendar.IsTransient(err)
		return outcome, nil
	}

	outcome.Code = OutcomeAvailability
	outcome.FreeSlots = slots
	return outcome, nil
}
