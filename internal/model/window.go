package model

import "time"

// Window è un intervallo semiaperto [Start, End): l'istante End non
// appartiene all'intervallo, quindi due appuntamenti adiacenti non
// confliggono. Rappresenta sia un intervallo occupato sia uno slot libero.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewWindow costruisce una finestra a partire da inizio e durata.
func NewWindow(start time.Time, duration time.Duration) Window {
	return Window{Start: start, End: start.Add(duration)}
}

// Overlaps verifica la sovrapposizione fra intervalli semiaperti:
// [s1,e1) e [s2,e2) si sovrappongono sse s1 < e2 && s2 < e1.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// Duration restituisce la durata della finestra.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}
