package nlp

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// DefaultServiceType e DefaultDurationMinutes sono i fallback globali quando
// il testo non contiene nessun servizio riconoscibile.
const (
	DefaultServiceType     = "generale"
	DefaultDurationMinutes = 30
)

// ServiceIntent è il risultato dell'estrazione: tipo di servizio e durata.
type ServiceIntent struct {
	ServiceType     string
	DurationMinutes int

	// ServiceMatched indica se un termine del dizionario ha matchato;
	// DurationExplicit indica che la durata viene da un cue esplicito nel
	// testo e quindi non va sovrascritta dal default di profilo.
	ServiceMatched   bool
	DurationExplicit bool
}

type serviceRule struct {
	pattern         string
	serviceType     string
	defaultDuration int
}

type durationRule struct {
	pattern string
	minutes int
}

// ServiceExtractor riconosce i servizi italiani per contenimento di
// sottostringa, case-insensitive. Le regole sono ordinate per lunghezza
// decrescente del pattern: quando più termini coesistono nel testo
// ("consulenza fiscale" contiene "consulenza") vince sempre il più lungo.
type ServiceExtractor struct {
	services  []serviceRule
	durations []durationRule
	minutesRe *regexp.Regexp
	hoursRe   *regexp.Regexp
}

// NewServiceExtractor costruisce l'estrattore con il catalogo di default.
func NewServiceExtractor() *ServiceExtractor {
	services := []serviceRule{
		{pattern: "consulenza fiscale", serviceType: "consulenza_fiscale", defaultDuration: 90},
		{pattern: "consulenza tributaria", serviceType: "consulenza_fiscale", defaultDuration: 90},
		{pattern: "consulenza legale", serviceType: "consulenza_legale", defaultDuration: 90},
		{pattern: "consulenza", serviceType: "consulenza", defaultDuration: 60},
		{pattern: "consultazione", serviceType: "consulenza", defaultDuration: 60},
		{pattern: "riunione", serviceType: "riunione", defaultDuration: 60},
		{pattern: "meeting", serviceType: "riunione", defaultDuration: 60},
		{pattern: "appunto", serviceType: "appunto", defaultDuration: 30},
		{pattern: "chiarimento", serviceType: "appunto", defaultDuration: 30},
		{pattern: "incontro", serviceType: "incontro", defaultDuration: 45},
		{pattern: "visita", serviceType: "visita", defaultDuration: 60},
		{pattern: "sopralluogo", serviceType: "visita", defaultDuration: 60},
		{pattern: "seduta", serviceType: "seduta", defaultDuration: 50},
		{pattern: "sessione", serviceType: "seduta", defaultDuration: 50},
		{pattern: "colloquio", serviceType: "colloquio", defaultDuration: 30},
		{pattern: "intervista", serviceType: "intervista", defaultDuration: 45},
	}
	sort.SliceStable(services, func(i, j int) bool {
		return len(services[i].pattern) > len(services[j].pattern)
	})

	durations := []durationRule{
		{pattern: "un'ora e mezza", minutes: 90},
		{pattern: "un'ora e mezzo", minutes: 90},
		{pattern: "un quarto d'ora", minutes: 15},
		{pattern: "mezz'ora", minutes: 30},
		{pattern: "un'ora", minutes: 60},
		{pattern: "due ore", minutes: 120},
		{pattern: "tre ore", minutes: 180},
	}
	sort.SliceStable(durations, func(i, j int) bool {
		return len(durations[i].pattern) > len(durations[j].pattern)
	})

	return &ServiceExtractor{
		services:  services,
		durations: durations,
		minutesRe: regexp.MustCompile(`(\d{1,3})\s*minuti`),
		hoursRe:   regexp.MustCompile(`(\d{1,2})\s*ore\b`),
	}
}

// Extract estrae servizio e durata dal testo. Non fallisce mai: in assenza
// di segnali restituisce il servizio generico con la durata di fallback.
func (e *ServiceExtractor) Extract(text string) ServiceIntent {
	lower := normalizeApostrophes(strings.ToLower(text))

	intent := ServiceIntent{
		ServiceType:     DefaultServiceType,
		DurationMinutes: DefaultDurationMinutes,
	}

	for _, rule := range e.services {
		if strings.Contains(lower, rule.pattern) {
			intent.ServiceType = rule.serviceType
			intent.DurationMinutes = rule.defaultDuration
			intent.ServiceMatched = true
			break
		}
	}

	if minutes, ok := e.explicitDuration(lower); ok {
		intent.DurationMinutes = minutes
		intent.DurationExplicit = true
	}

	return intent
}

// explicitDuration cerca un cue esplicito di durata: prima le espressioni a
// parole, poi i pattern numerici "N minuti" / "N ore".
func (e *ServiceExtractor) explicitDuration(lower string) (int, bool) {
	for _, rule := range e.durations {
		if strings.Contains(lower, rule.pattern) {
			return rule.minutes, true
		}
	}
	if m := e.minutesRe.FindStringSubmatch(lower); m != nil {
		if minutes, err := strconv.Atoi(m[1]); err == nil {
			return minutes, true
		}
	}
	if m := e.hoursRe.FindStringSubmatch(lower); m != nil {
		if hours, err := strconv.Atoi(m[1]); err == nil {
			return hours * 60, true
		}
	}
	return 0, false
}

// normalizeApostrophes riconduce l'apostrofo tipografico a quello semplice,
// così "un'ora" matcha in entrambe le grafie.
func normalizeApostrophes(s string) string {
	return strings.ReplaceAll(s, "’", "'")
}
