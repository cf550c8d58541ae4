package nlp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rome(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)
	return loc
}

// Riferimento canonico: lunedì 6 gennaio 2025, ore 09:00 a Roma.
func mondayMorning(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2025, 1, 6, 9, 0, 0, 0, rome(t))
}

func TestResolveTomorrowWithExplicitTime(t *testing.T) {
	r := NewTemporalResolver()
	ref := mondayMorning(t)

	res := r.Resolve("vorrei un appuntamento domani alle 14:30", ref, rome(t))

	assert.Equal(t, time.Date(2025, 1, 7, 14, 30, 0, 0, rome(t)), res.Start)
	assert.Equal(t, ConfidenceExact, res.Confidence)
	assert.True(t, res.DayMatched)
	assert.True(t, res.TimeMatched)
}

func TestResolveDayAfterTomorrowBeforeTomorrow(t *testing.T) {
	r := NewTemporalResolver()
	ref := mondayMorning(t)

	// "dopodomani" contiene "domani": deve vincere la regola più lunga.
	res := r.Resolve("ci vediamo dopodomani", ref, rome(t))

	assert.Equal(t, 8, res.Start.Day())
	assert.Equal(t, FallbackHour, res.Start.Hour())
	assert.Equal(t, ConfidencePartial, res.Confidence)
}

func TestResolveDayPart(t *testing.T) {
	r := NewTemporalResolver()
	ref := mondayMorning(t)

	res := r.Resolve("oggi pomeriggio", ref, rome(t))

	assert.Equal(t, time.Date(2025, 1, 6, 15, 0, 0, 0, rome(t)), res.Start)
	assert.Equal(t, ConfidenceDayPart, res.Confidence)
}

func TestResolveDayPartsMapping(t *testing.T) {
	r := NewTemporalResolver()
	ref := mondayMorning(t)

	tests := []struct {
		text string
		hour int
	}{
		{"domani mattina", 9},
		{"domani pomeriggio", 15},
		{"domani sera", 18},
	}

	for _, tt := range tests {
		res := r.Resolve(tt.text, ref, rome(t))
		assert.Equal(t, tt.hour, res.Start.Hour(), tt.text)
		assert.Equal(t, 7, res.Start.Day(), tt.text)
	}
}

func TestResolveWeekdayAlwaysFuture(t *testing.T) {
	r := NewTemporalResolver()
	ref := mondayMorning(t)

	// Venerdì della stessa settimana.
	res := r.Resolve("venerdì alle 9", ref, rome(t))
	assert.Equal(t, time.Date(2025, 1, 10, 9, 0, 0, 0, rome(t)), res.Start)
	assert.Equal(t, ConfidenceExact, res.Confidence)

	// "lunedì alle 8" detto di lunedì alle 9: le 8 sono passate, si salta
	// alla settimana successiva.
	res = r.Resolve("lunedì alle 8", ref, rome(t))
	assert.Equal(t, time.Date(2025, 1, 13, 8, 0, 0, 0, rome(t)), res.Start)

	// "lunedì alle 10" detto di lunedì alle 9: è ancora oggi.
	res = r.Resolve("lunedì alle 10", ref, rome(t))
	assert.Equal(t, time.Date(2025, 1, 6, 10, 0, 0, 0, rome(t)), res.Start)
}

func TestResolveWeekdayNext(t *testing.T) {
	r := NewTemporalResolver()
	ref := mondayMorning(t)

	// "martedì prossimo" da lunedì: non domani, ma il martedì della
	// settimana successiva.
	res := r.Resolve("martedì prossimo alle 15:00", ref, rome(t))
	assert.Equal(t, time.Date(2025, 1, 14, 15, 0, 0, 0, rome(t)), res.Start)

	// Grafia senza accento.
	res = r.Resolve("martedi prossimo alle 15:00", ref, rome(t))
	assert.Equal(t, 14, res.Start.Day())
}

func TestResolveTimeOnly(t *testing.T) {
	r := NewTemporalResolver()
	ref := mondayMorning(t)

	res := r.Resolve("alle 18", ref, rome(t))

	assert.Equal(t, time.Date(2025, 1, 6, 18, 0, 0, 0, rome(t)), res.Start)
	assert.Equal(t, ConfidencePartial, res.Confidence)
	assert.False(t, res.DayMatched)
}

func TestResolveTimeVariants(t *testing.T) {
	r := NewTemporalResolver()
	ref := mondayMorning(t)

	tests := []struct {
		text   string
		hour   int
		minute int
	}{
		{"domani alle 14:30", 14, 30},
		{"domani alle 14 e 30", 14, 30},
		{"domani ore 16:45", 16, 45},
		{"domani 11:15", 11, 15},
		{"domani alle 9", 9, 0},
	}

	for _, tt := range tests {
		res := r.Resolve(tt.text, ref, rome(t))
		assert.Equal(t, tt.hour, res.Start.Hour(), tt.text)
		assert.Equal(t, tt.minute, res.Start.Minute(), tt.text)
		assert.True(t, res.TimeMatched, tt.text)
	}
}

func TestResolveDayPartOnlyIsWeak(t *testing.T) {
	r := NewTemporalResolver()
	ref := mondayMorning(t)

	res := r.Resolve("in serata o comunque verso sera", ref, rome(t))

	assert.Equal(t, 18, res.Start.Hour())
	assert.Equal(t, ConfidenceWeak, res.Confidence)
}

func TestResolveNoSignalFallsBack(t *testing.T) {
	r := NewTemporalResolver()
	ref := mondayMorning(t)

	res := r.Resolve("vorrei prenotare qualcosa", ref, rome(t))

	assert.Equal(t, time.Date(2025, 1, 6, FallbackHour, 0, 0, 0, rome(t)), res.Start)
	assert.Equal(t, ConfidenceFallback, res.Confidence)
	assert.False(t, res.DayMatched)
	assert.False(t, res.TimeMatched)
}

func TestResolveIsIdempotent(t *testing.T) {
	r := NewTemporalResolver()
	ref := mondayMorning(t)

	first := r.Resolve("giovedì prossimo alle 11:30", ref, rome(t))
	second := r.Resolve("giovedì prossimo alle 11:30", ref, rome(t))

	assert.Equal(t, first, second)
}

func TestResolveRejectsInvalidClockValues(t *testing.T) {
	r := NewTemporalResolver()
	ref := mondayMorning(t)

	// "25:70" non è un orario: si ricade sul fallback.
	res := r.Resolve("domani alle 25:70", ref, rome(t))

	assert.Equal(t, FallbackHour, res.Start.Hour())
	assert.True(t, res.DayMatched)
	assert.False(t, res.TimeMatched)
}
