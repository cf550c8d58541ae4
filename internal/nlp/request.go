package nlp

import (
	"fmt"
	"strings"
	"time"

	"github.com/lucagreco-dev/prenota_bot/internal/model"
)

// ClientInfo sono i dati del cliente forniti dal layer di conversazione.
type ClientInfo struct {
	Name  string
	Email string
	Phone string
}

// RequestBuilder compone resolver temporale ed estrattore di servizi in un
// appuntamento candidato. Nessun I/O: tutto il lavoro è pura computazione.
type RequestBuilder struct {
	temporal *TemporalResolver
	services *ServiceExtractor
}

// NewRequestBuilder costruisce il builder con i componenti di default.
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{
		temporal: NewTemporalResolver(),
		services: NewServiceExtractor(),
	}
}

// Build costruisce un AppointmentRequest dal testo del messaggio. L'istante
// risolto viene normalizzato in UTC; la precedenza sulle durate è: cue
// esplicito nel testo, poi default di profilo per il servizio, poi default
// del dizionario.
func (b *RequestBuilder) Build(
	text string,
	reference time.Time,
	profile *model.BusinessProfile,
	client ClientInfo,
	consultantID string,
) (*model.AppointmentRequest, error) {
	if strings.TrimSpace(client.Name) == "" {
		return nil, fmt.Errorf("client name is required")
	}

	loc, err := profile.Location()
	if err != nil {
		return nil, err
	}

	resolution := b.temporal.Resolve(text, reference, loc)
	intent := b.services.Extract(text)

	duration := intent.DurationMinutes
	if !intent.DurationExplicit {
		if d, ok := profile.ServiceDuration(intent.ServiceType); ok {
			duration = d
		}
	}

	return &model.AppointmentRequest{
		ClientName:      strings.TrimSpace(client.Name),
		ClientEmail:     strings.TrimSpace(client.Email),
		ClientPhone:     strings.TrimSpace(client.Phone),
		ConsultantID:    consultantID,
		ServiceType:     intent.ServiceType,
		Start:           resolution.Start.UTC(),
		DurationMinutes: duration,
		Notes:           strings.TrimSpace(text),
		Confidence:      resolution.Confidence,
	}, nil
}

// Temporal espone il resolver, usato dal motore per i turni di sola
// disponibilità.
func (b *RequestBuilder) Temporal() *TemporalResolver {
	return b.temporal
}

// Services espone l'estrattore di servizi.
func (b *RequestBuilder) Services() *ServiceExtractor {
	return b.services
}
