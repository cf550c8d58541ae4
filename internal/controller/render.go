package controller

import (
	"fmt"
	"strings"
	"time"

	"github.com/lucagreco-dev/prenota_bot/internal/controller/formatting"
	"github.com/lucagreco-dev/prenota_bot/internal/engine"
)

// renderOutcome traduce l'esito strutturato del motore in prosa italiana per
// la chat. I codici esito sono stabili, quindi lo switch copre tutti i casi.
func renderOutcome(outcome *engine.SchedulingOutcome, loc *time.Location) string {
	var sb strings.Builder

	switch outcome.Code {
	case engine.OutcomeConfirmed:
		appt := outcome.Appointment
		start := appt.Start.In(loc)
		sb.WriteString("✅ Appuntamento confermato!\n\n")
		sb.WriteString(fmt.Sprintf("📅 %s\n", formatting.DateTime(start)))
		sb.WriteString(fmt.Sprintf("⏱ Durata: %s\n", formatting.Duration(appt.DurationMinutes)))
		sb.WriteString(fmt.Sprintf("📋 Servizio: %s\n", serviceLabel(appt.ServiceType)))

	case engine.OutcomeRescheduled:
		appt := outcome.Appointment
		start := appt.Start.In(loc)
		sb.WriteString("✅ Appuntamento spostato!\n\n")
		sb.WriteString(fmt.Sprintf("📅 Nuovo orario: %s\n", formatting.DateTime(start)))
		sb.WriteString(fmt.Sprintf("⏱ Durata: %s\n", formatting.Duration(appt.DurationMinutes)))

	case engine.OutcomeCancelled:
		sb.WriteString("✅ Appuntamento annullato.")

	case engine.OutcomeAvailability:
		if len(outcome.FreeSlots) == 0 {
			sb.WriteString("😕 Nessuno slot libero per il giorno richiesto.")
			break
		}
		sb.WriteString(fmt.Sprintf("🕐 %d %s:\n\n", len(outcome.FreeSlots), formatting.PluralizeSlots(len(outcome.FreeSlots))))
		first := outcome.FreeSlots[0].Start.In(loc)
		sb.WriteString(fmt.Sprintf("📅 %s\n", formatting.Date(first)))
		for _, slot := range outcome.FreeSlots {
			sb.WriteString(fmt.Sprintf("  • %s\n", formatting.Window(slot, loc)))
		}

	case engine.OutcomeBusinessRuleViolation:
		sb.WriteString("❌ L'orario richiesto non è prenotabile:\n")
		for _, v := range outcome.Violations {
			sb.WriteString("  • " + violationText(v) + "\n")
		}

	case engine.OutcomeAvailabilityConflict:
		sb.WriteString("❌ L'orario richiesto è già occupato.\n")
		if len(outcome.Alternatives) > 0 {
			sb.WriteString("\nOrari alternativi disponibili:\n")
			for _, alt := range outcome.Alternatives {
				sb.WriteString(fmt.Sprintf("  • %s\n", formatting.Window(alt, loc)))
			}
		}

	case engine.OutcomeCalendarTransient:
		sb.WriteString("⚠️ Il calendario non risponde al momento. Riprova tra qualche minuto.")

	case engine.OutcomeCalendarPermanent:
		sb.WriteString("❌ Errore di sincronizzazione col calendario. Contatta lo studio per prenotare.")

	case engine.OutcomeUnknownAppointment:
		sb.WriteString("🤔 Non trovo un appuntamento attivo da modificare. Se vuoi prenotarne uno nuovo, dimmi giorno e ora.")

	default:
		sb.WriteString("🤔 Non ho capito la richiesta. Prova con qualcosa come \"domani alle 14:30\".")
	}

	if outcome.NeedsClarification {
		sb.WriteString("\n\n❓ Non sono sicuro di aver capito bene giorno e ora: se l'orario sopra non va bene, riscrivilo per esteso (es. \"martedì prossimo alle 15:00\").")
	}

	return strings.TrimRight(sb.String(), "\n")
}

func violationText(v engine.ViolationCode) string {
	switch v {
	case engine.ViolationWorkingHours:
		return "l'orario è fuori dall'orario di apertura"
	case engine.ViolationWorkingDay:
		return "il giorno richiesto non è lavorativo"
	case engine.ViolationDurationBounds:
		return fmt.Sprintf("la durata deve essere tra %d minuti e %d ore", engine.MinDurationMinutes, engine.MaxDurationMinutes/60)
	default:
		return string(v)
	}
}

// serviceLabel rende leggibile il tipo di servizio ("consulenza_fiscale" ->
// "Consulenza fiscale").
func serviceLabel(serviceType string) string {
	label := strings.ReplaceAll(serviceType, "_", " ")
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
