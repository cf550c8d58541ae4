package nlp

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Livelli di confidenza dell'estrazione temporale. Il massimo richiede sia
// un segnale di giorno sia un orario esplicito; il minimo indica che il
// testo non conteneva alcun segnale riconoscibile.
const (
	ConfidenceExact    = 1.0
	ConfidenceDayPart  = 0.85
	ConfidencePartial  = 0.6
	ConfidenceWeak     = 0.5
	ConfidenceFallback = 0.2
)

// FallbackHour è l'orario usato quando il testo non contiene nessun orario.
const (
	FallbackHour   = 10
	FallbackMinute = 0
)

// Resolution è il risultato della risoluzione temporale: un istante assoluto
// nella timezone richiesta più la confidenza dell'estrazione.
type Resolution struct {
	Start       time.Time
	Confidence  float64
	DayMatched  bool
	TimeMatched bool
}

type dayRuleKind int

const (
	dayRelative dayRuleKind = iota // offset fisso dalla data di riferimento
	dayWeekday                     // prossima occorrenza del giorno della settimana
	dayWeekdayNext                 // "prossimo": una settimana oltre la prossima occorrenza
)

type dayRule struct {
	term string
	kind dayRuleKind
	arg  int // giorni di offset oppure weekday ISO (1 = lunedì)
}

type timeRule struct {
	re     *regexp.Regexp
	hasMin bool
}

// dayPartRule mappa le parti della giornata a un orario implicito. Vale solo
// in assenza di un orario esplicito.
type dayPartRule struct {
	term   string
	hour   int
	minute int
}

// TemporalResolver converte espressioni italiane di data e ora in un istante
// assoluto. Le regole sono tabelle dichiarative valutate in ordine fisso:
// la prima che matcha vince, quindi l'estrazione è deterministica.
type TemporalResolver struct {
	dayRules  []dayRule
	timeRules []timeRule
	dayParts  []dayPartRule
}

// NewTemporalResolver costruisce il resolver con il vocabolario di default.
func NewTemporalResolver() *TemporalResolver {
	return &TemporalResolver{
		// "dopodomani" contiene "domani" e "lunedì prossimo" contiene
		// "lunedì": i termini più lunghi vengono prima.
		dayRules: []dayRule{
			{term: "dopodomani", kind: dayRelative, arg: 2},
			{term: "domani", kind: dayRelative, arg: 1},
			{term: "oggi", kind: dayRelative, arg: 0},
			{term: "lunedì prossimo", kind: dayWeekdayNext, arg: 1},
			{term: "lunedi prossimo", kind: dayWeekdayNext, arg: 1},
			{term: "martedì prossimo", kind: dayWeekdayNext, arg: 2},
			{term: "martedi prossimo", kind: dayWeekdayNext, arg: 2},
			{term: "mercoledì prossimo", kind: dayWeekdayNext, arg: 3},
			{term: "mercoledi prossimo", kind: dayWeekdayNext, arg: 3},
			{term: "giovedì prossimo", kind: dayWeekdayNext, arg: 4},
			{term: "giovedi prossimo", kind: dayWeekdayNext, arg: 4},
			{term: "venerdì prossimo", kind: dayWeekdayNext, arg: 5},
			{term: "venerdi prossimo", kind: dayWeekdayNext, arg: 5},
			{term: "lunedì", kind: dayWeekday, arg: 1},
			{term: "lunedi", kind: dayWeekday, arg: 1},
			{term: "martedì", kind: dayWeekday, arg: 2},
			{term: "martedi", kind: dayWeekday, arg: 2},
			{term: "mercoledì", kind: dayWeekday, arg: 3},
			{term: "mercoledi", kind: dayWeekday, arg: 3},
			{term: "giovedì", kind: dayWeekday, arg: 4},
			{term: "giovedi", kind: dayWeekday, arg: 4},
			{term: "venerdì", kind: dayWeekday, arg: 5},
			{term: "venerdi", kind: dayWeekday, arg: 5},
			{term: "sabato", kind: dayWeekday, arg: 6},
			{term: "domenica", kind: dayWeekday, arg: 7},
		},
		timeRules: []timeRule{
			{re: regexp.MustCompile(`alle\s+(\d{1,2}):(\d{2})`), hasMin: true},
			{re: regexp.MustCompile(`alle\s+(\d{1,2})\s+e\s+(\d{2})`), hasMin: true},
			{re: regexp.MustCompile(`ore\s+(\d{1,2}):(\d{2})`), hasMin: true},
			{re: regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`), hasMin: true},
			{re: regexp.MustCompile(`alle\s+(\d{1,2})\b`), hasMin: false},
		},
		dayParts: []dayPartRule{
			{term: "mattina", hour: 9, minute: 0},
			{term: "pomeriggio", hour: 15, minute: 0},
			{term: "sera", hour: 18, minute: 0},
		},
	}
}

// Resolve risolve il testo rispetto all'istante di riferimento nella
// timezone indicata. Non fallisce mai: senza alcun segnale restituisce la
// data di riferimento all'orario di fallback con confidenza minima.
// A parità di input il risultato è sempre lo stesso (idempotente).
func (r *TemporalResolver) Resolve(text string, reference time.Time, loc *time.Location) Resolution {
	lower := strings.ToLower(text)
	ref := reference.In(loc)

	hour, minute, timeMatched, timeExplicit := r.resolveTime(lower)

	day, dayMatched := r.resolveDay(lower, ref, hour, minute, loc)

	start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)

	return Resolution{
		Start:       start,
		Confidence:  confidence(dayMatched, timeMatched, timeExplicit),
		DayMatched:  dayMatched,
		TimeMatched: timeMatched,
	}
}

// resolveTime estrae l'orario. I pattern espliciti ("alle 14:30", "ore 9:00",
// "alle 9") hanno priorità sulle parti della giornata ("pomeriggio").
func (r *TemporalResolver) resolveTime(lower string) (hour, minute int, matched, explicit bool) {
	for _, rule := range r.timeRules {
		m := rule.re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		h, err := strconv.Atoi(m[1])
		if err != nil || h > 23 {
			continue
		}
		mm := 0
		if rule.hasMin {
			mm, err = strconv.Atoi(m[2])
			if err != nil || mm > 59 {
				continue
			}
		}
		return h, mm, true, true
	}

	for _, part := range r.dayParts {
		if strings.Contains(lower, part.term) {
			return part.hour, part.minute, true, false
		}
	}

	return FallbackHour, FallbackMinute, false, false
}

// resolveDay estrae la data. I nomi dei giorni della settimana risolvono
// sempre nel futuro: se il giorno è oggi ma l'orario implicito è già
// passato, si salta alla settimana successiva.
func (r *TemporalResolver) resolveDay(lower string, ref time.Time, hour, minute int, loc *time.Location) (time.Time, bool) {
	for _, rule := range r.dayRules {
		if !strings.Contains(lower, rule.term) {
			continue
		}
		switch rule.kind {
		case dayRelative:
			return ref.AddDate(0, 0, rule.arg), true
		case dayWeekday:
			days := (rule.arg - isoWeekday(ref.Weekday()) + 7) % 7
			candidate := ref.AddDate(0, 0, days)
			implied := time.Date(candidate.Year(), candidate.Month(), candidate.Day(), hour, minute, 0, 0, loc)
			if !implied.After(ref) {
				candidate = candidate.AddDate(0, 0, 7)
			}
			return candidate, true
		case dayWeekdayNext:
			days := (rule.arg-isoWeekday(ref.Weekday())+7)%7 + 7
			return ref.AddDate(0, 0, days), true
		}
	}
	return ref, false
}

func confidence(dayMatched, timeMatched, timeExplicit bool) float64 {
	switch {
	case dayMatched && timeExplicit:
		return ConfidenceExact
	case dayMatched && timeMatched:
		return ConfidenceDayPart
	case dayMatched || timeExplicit:
		return ConfidencePartial
	case timeMatched:
		return ConfidenceWeak
	default:
		return ConfidenceFallback
	}
}

func isoWeekday(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}
