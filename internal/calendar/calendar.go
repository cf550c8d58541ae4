package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lucagreco-dev/prenota_bot/internal/model"
)

// Event è il payload di un evento da creare sul calendario esterno.
type Event struct {
	Summary       string
	Description   string
	Start         time.Time
	End           time.Time
	Timezone      string // IANA, usato per il rendering lato calendario
	AttendeeEmail string // se presente il cliente viene invitato all'evento
}

// Service è il collaboratore calendario. Tutte le operazioni possono fallire
// con errori transienti (ritentabili) o permanenti: i chiamanti distinguono
// i due casi con IsTransient.
type Service interface {
	// CreateEvent crea l'evento e restituisce l'id assegnato.
	CreateEvent(ctx context.Context, calendarID string, event Event) (string, error)
	// ListBusy restituisce gli intervalli occupati che intersecano la finestra.
	ListBusy(ctx context.Context, calendarID string, window model.Window) ([]model.Window, error)
	// DeleteEvent elimina l'evento. Un evento già assente non è un errore.
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// Error è un errore del collaboratore calendario con la distinzione
// transiente/permanente.
type Error struct {
	Op         string
	StatusCode int
	Transient  bool
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("calendar %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("calendar %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsTransient verifica se l'errore è ritentabile.
func IsTransient(err error) bool {
	var cerr *Error
	return errors.As(err, &cerr) && cerr.Transient
}

// transientStatus classifica gli status HTTP: rate limit e 5xx si ritentano,
// gli altri 4xx sono permanenti.
func transientStatus(code int) bool {
	return code == 429 || code >= 500
}
