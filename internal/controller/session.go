package controller

import (
	"sync"
)

// Session è lo stato conversazionale di una chat: il riferimento all'ultimo
// appuntamento confermato, usato dai turni di annullamento e spostamento.
type Session struct {
	LastAppointmentID string
}

// SessionManager gestisce le sessioni delle chat
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session // chatID -> Session
}

// NewSessionManager crea un nuovo gestore di sessioni
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[int64]*Session),
	}
}

// LastAppointment restituisce l'id dell'ultimo appuntamento della chat
func (sm *SessionManager) LastAppointment(chatID int64) string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if session, exists := sm.sessions[chatID]; exists {
		return session.LastAppointmentID
	}
	return ""
}

// SetLastAppointment registra l'ultimo appuntamento confermato della chat
func (sm *SessionManager) SetLastAppointment(chatID int64, appointmentID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[chatID]; !exists {
		sm.sessions[chatID] = &Session{}
	}
	sm.sessions[chatID].LastAppointmentID = appointmentID
}

// Clear rimuove la sessione della chat
func (sm *SessionManager) Clear(chatID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.sessions, chatID)
}
