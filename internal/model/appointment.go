package model

import (
	"errors"
	"time"
)

// ErrWindowConflict segnala che la persistenza ha rifiutato l'appuntamento
// per sovrapposizione con una finestra già confermata dello stesso
// consulente (vincolo di esclusione sul database).
var ErrWindowConflict = errors.New("appointment window conflict")

type AppointmentStatus string

const (
	StatusProposed  AppointmentStatus = "proposed"  // richiesta ricevuta, non ancora validata
	StatusValidated AppointmentStatus = "validated" // regole di business superate
	StatusConfirmed AppointmentStatus = "confirmed" // evento creato sul calendario
	StatusRejected  AppointmentStatus = "rejected"  // rifiutato (regole o conflitto)
	StatusCancelled AppointmentStatus = "cancelled" // annullato dall'utente
)

// transitions è la tabella delle transizioni ammesse della macchina a stati.
// Gli stati rejected e cancelled sono terminali.
var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusProposed:  {StatusValidated, StatusRejected},
	StatusValidated: {StatusConfirmed, StatusRejected},
	StatusConfirmed: {StatusCancelled},
}

// CanTransition verifica se la transizione di stato è ammessa.
func CanTransition(from, to AppointmentStatus) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// AppointmentRequest è un appuntamento candidato, costruito dal testo del
// messaggio e non ancora persistito. Vive per la durata di una singola
// operazione.
type AppointmentRequest struct {
	ClientName      string    `json:"client_name"`
	ClientEmail     string    `json:"client_email,omitempty"`
	ClientPhone     string    `json:"client_phone,omitempty"`
	ConsultantID    string    `json:"consultant_id,omitempty"`
	ServiceType     string    `json:"service_type"`
	Start           time.Time `json:"start"` // sempre UTC
	DurationMinutes int       `json:"duration_minutes"`
	Notes           string    `json:"notes,omitempty"`

	// Confidenza dell'estrazione temporale, usata a valle per decidere
	// se chiedere un chiarimento.
	Confidence float64 `json:"confidence"`
}

// Window restituisce la finestra temporale del candidato.
func (r *AppointmentRequest) Window() Window {
	return NewWindow(r.Start, time.Duration(r.DurationMinutes)*time.Minute)
}

// Appointment è un appuntamento persistito. Lo stato viene mutato solo dal
// lifecycle manager, mai direttamente dai layer NLP.
type Appointment struct {
	ID              string            `json:"id"`
	BusinessID      string            `json:"business_id"`
	ConsultantID    string            `json:"consultant_id"`
	ClientName      string            `json:"client_name"`
	ClientEmail     string            `json:"client_email,omitempty"`
	ClientPhone     string            `json:"client_phone,omitempty"`
	ServiceType     string            `json:"service_type"`
	Start           time.Time         `json:"start"` // sempre UTC
	DurationMinutes int               `json:"duration_minutes"`
	Notes           string            `json:"notes,omitempty"`
	CalendarID      string            `json:"calendar_id"`
	CalendarEventID string            `json:"calendar_event_id,omitempty"` // valorizzato solo dopo il sync
	Status          AppointmentStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Window restituisce la finestra temporale dell'appuntamento.
func (a *Appointment) Window() Window {
	return NewWindow(a.Start, time.Duration(a.DurationMinutes)*time.Minute)
}
