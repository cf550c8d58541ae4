package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BusinessProfile descrive un tenant: orari, giorni lavorativi, calendari
// dei consulenti e durate di default dei servizi. Immutabile dopo il load.
type BusinessProfile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Timezone   string `json:"timezone"`    // IANA, es. "Europe/Rome"
	HoursStart string `json:"hours_start"` // formato HH:MM, locale
	HoursEnd   string `json:"hours_end"`   // formato HH:MM, locale

	// Giorni lavorativi in formato ISO (1 = lunedì ... 7 = domenica).
	WorkingDays []int `json:"working_days"`

	// Mappa consulente -> calendario esterno. Se il consulente non è
	// presente si usa DefaultCalendarID.
	Calendars         map[string]string `json:"calendars"`
	DefaultCalendarID string            `json:"default_calendar_id"`

	// Durate di default dei servizi in minuti (chiave = tipo servizio).
	Services map[string]int `json:"services"`
}

// Location restituisce la timezone del business.
func (p *BusinessProfile) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", p.Timezone, err)
	}
	return loc, nil
}

// CalendarFor restituisce il calendario del consulente, o quello di default.
func (p *BusinessProfile) CalendarFor(consultantID string) string {
	if consultantID != "" {
		if id, ok := p.Calendars[consultantID]; ok && id != "" {
			return id
		}
	}
	return p.DefaultCalendarID
}

// ServiceDuration restituisce la durata configurata per il servizio.
func (p *BusinessProfile) ServiceDuration(serviceType string) (int, bool) {
	d, ok := p.Services[serviceType]
	return d, ok
}

// IsWorkingDay verifica se il giorno (locale) è lavorativo.
func (p *BusinessProfile) IsWorkingDay(weekday time.Weekday) bool {
	iso := int(weekday)
	if iso == 0 {
		iso = 7 // time.Sunday = 0, ISO = 7
	}
	for _, d := range p.WorkingDays {
		if d == iso {
			return true
		}
	}
	return false
}

// HoursStartMinutes restituisce l'apertura in minuti da mezzanotte.
func (p *BusinessProfile) HoursStartMinutes() (int, error) {
	return parseClock(p.HoursStart)
}

// HoursEndMinutes restituisce la chiusura in minuti da mezzanotte.
func (p *BusinessProfile) HoursEndMinutes() (int, error) {
	return parseClock(p.HoursEnd)
}

func parseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	return h*60 + m, nil
}
