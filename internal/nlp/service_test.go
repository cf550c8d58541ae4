package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLongestServiceWins(t *testing.T) {
	e := NewServiceExtractor()

	// "consulenza fiscale" contiene "consulenza": vince il termine più lungo.
	intent := e.Extract("vorrei una consulenza fiscale giovedì")

	assert.Equal(t, "consulenza_fiscale", intent.ServiceType)
	assert.Equal(t, 90, intent.DurationMinutes)
	assert.True(t, intent.ServiceMatched)
	assert.False(t, intent.DurationExplicit)
}

func TestExtractServiceSynonyms(t *testing.T) {
	e := NewServiceExtractor()

	tests := []struct {
		text        string
		serviceType string
		duration    int
	}{
		{"una consulenza", "consulenza", 60},
		{"consulenza tributaria", "consulenza_fiscale", 90},
		{"consulenza legale urgente", "consulenza_legale", 90},
		{"fissiamo un meeting", "riunione", 60},
		{"un sopralluogo in cantiere", "visita", 60},
		{"una sessione", "seduta", 50},
		{"un colloquio conoscitivo", "colloquio", 30},
	}

	for _, tt := range tests {
		intent := e.Extract(tt.text)
		assert.Equal(t, tt.serviceType, intent.ServiceType, tt.text)
		assert.Equal(t, tt.duration, intent.DurationMinutes, tt.text)
	}
}

func TestExtractExplicitDurationOverridesService(t *testing.T) {
	e := NewServiceExtractor()

	intent := e.Extract("una consulenza fiscale di un'ora")

	assert.Equal(t, "consulenza_fiscale", intent.ServiceType)
	assert.Equal(t, 60, intent.DurationMinutes)
	assert.True(t, intent.DurationExplicit)
}

func TestExtractDurationCues(t *testing.T) {
	e := NewServiceExtractor()

	tests := []struct {
		text    string
		minutes int
	}{
		{"un incontro di un'ora e mezza", 90},
		{"un quarto d'ora al telefono", 15},
		{"bastano mezz'ora", 30},
		{"una riunione di due ore", 120},
		{"45 minuti", 45},
		{"2 ore abbondanti", 120},
	}

	for _, tt := range tests {
		intent := e.Extract(tt.text)
		assert.Equal(t, tt.minutes, intent.DurationMinutes, tt.text)
		assert.True(t, intent.DurationExplicit, tt.text)
	}
}

func TestExtractTypographicApostrophe(t *testing.T) {
	e := NewServiceExtractor()

	// Le tastiere dei telefoni inseriscono l'apostrofo tipografico.
	intent := e.Extract("una consulenza di un’ora")

	assert.Equal(t, 60, intent.DurationMinutes)
	assert.True(t, intent.DurationExplicit)
}

func TestExtractDefaultsWhenNothingMatches(t *testing.T) {
	e := NewServiceExtractor()

	intent := e.Extract("ci vediamo domani")

	assert.Equal(t, DefaultServiceType, intent.ServiceType)
	assert.Equal(t, DefaultDurationMinutes, intent.DurationMinutes)
	assert.False(t, intent.ServiceMatched)
	assert.False(t, intent.DurationExplicit)
}
