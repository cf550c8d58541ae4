package controller

import (
	"context"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/lucagreco-dev/prenota_bot/internal/engine"
	"github.com/lucagreco-dev/prenota_bot/internal/nlp"
	"github.com/lucagreco-dev/prenota_bot/internal/profile"
)

type Handlers struct {
	engine     *engine.Engine
	profiles   profile.Store
	sessions   *SessionManager
	businessID string
	logger     *zap.Logger
}

func NewHandlers(
	schedulingEngine *engine.Engine,
	profiles profile.Store,
	sessions *SessionManager,
	businessID string,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		engine:     schedulingEngine,
		profiles:   profiles,
		sessions:   sessions,
		businessID: businessID,
		logger:     logger,
	}
}

// HandleStart gestisce il comando /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	user := update.Message.From

	welcomeText := "👋 Ciao, " + user.FirstName + "!\n\n" +
		"Sono l'assistente per le prenotazioni dello studio. " +
		"Scrivimi in linguaggio naturale quando vuoi venire, per esempio:\n\n" +
		"  • \"vorrei una consulenza domani alle 14:30\"\n" +
		"  • \"fissiamo una riunione martedì prossimo pomeriggio\"\n" +
		"  • \"che orari liberi avete giovedì?\"\n\n" +
		"Per annullare o spostare l'ultimo appuntamento basta scrivere " +
		"\"annulla l'appuntamento\" o \"spostalo a venerdì alle 10\".\n\n" +
		"/help per rivedere questi esempi."

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   welcomeText,
	})
}

// HandleHelp gestisce il comando /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	helpText := "📚 Come funziona:\n\n" +
		"Prenotare: scrivi giorno, ora e tipo di servizio.\n" +
		"  \"consulenza fiscale domani alle 15\"\n" +
		"  \"un colloquio lunedì prossimo mattina\"\n\n" +
		"Disponibilità: chiedi gli orari liberi di un giorno.\n" +
		"  \"che disponibilità avete mercoledì?\"\n\n" +
		"Annullare: \"annulla l'appuntamento\"\n" +
		"Spostare: \"sposta l'appuntamento a giovedì alle 11\"\n\n" +
		"Se non indichi l'ora propongo le 10:00; \"mattina\" vale 9:00, " +
		"\"pomeriggio\" 15:00, \"sera\" 18:00."

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   helpText,
	})
}

// HandleTextMessage passa ogni messaggio non-comando al motore di scheduling
// e risponde con la resa in prosa dell'esito.
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	// I comandi sono gestiti dagli altri handler
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	chatID := update.Message.Chat.ID
	user := update.Message.From

	clientName := strings.TrimSpace(user.FirstName + " " + user.LastName)

	tc := engine.TurnContext{
		BusinessID:        h.businessID,
		Client:            nlp.ClientInfo{Name: clientName},
		LastAppointmentID: h.sessions.LastAppointment(chatID),
	}

	outcome, err := h.engine.HandleSchedulingTurn(ctx, update.Message.Text, tc)
	if err != nil {
		h.logger.Error("Scheduling turn failed",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Si è verificato un errore. Riprova più tardi.",
		})
		return
	}

	// Teniamo il riferimento all'ultimo appuntamento confermato della chat
	switch outcome.Code {
	case engine.OutcomeConfirmed, engine.OutcomeRescheduled:
		if outcome.Appointment != nil {
			h.sessions.SetLastAppointment(chatID, outcome.Appointment.ID)
		}
	case engine.OutcomeCancelled:
		h.sessions.Clear(chatID)
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   renderOutcome(outcome, h.location(ctx)),
	})
}

// location restituisce il fuso del business, con fallback su Europe/Rome.
func (h *Handlers) location(ctx context.Context) *time.Location {
	prof, err := h.profiles.LoadProfile(ctx, h.businessID)
	if err == nil && prof != nil {
		if loc, err := prof.Location(); err == nil {
			return loc
		}
	}
	loc, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		return time.UTC
	}
	return loc
}
