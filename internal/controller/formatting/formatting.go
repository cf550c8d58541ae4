package formatting

import (
	"fmt"
	"time"

	"github.com/lucagreco-dev/prenota_bot/internal/model"
)

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "lunedì",
	time.Tuesday:   "martedì",
	time.Wednesday: "mercoledì",
	time.Thursday:  "giovedì",
	time.Friday:    "venerdì",
	time.Saturday:  "sabato",
	time.Sunday:    "domenica",
}

var monthNames = map[time.Month]string{
	time.January:   "gennaio",
	time.February:  "febbraio",
	time.March:     "marzo",
	time.April:     "aprile",
	time.May:       "maggio",
	time.June:      "giugno",
	time.July:      "luglio",
	time.August:    "agosto",
	time.September: "settembre",
	time.October:   "ottobre",
	time.November:  "novembre",
	time.December:  "dicembre",
}

// Weekday restituisce il nome italiano del giorno della settimana
func Weekday(t time.Time) string {
	return weekdayNames[t.Weekday()]
}

// Date formatta la data in italiano, es. "martedì 7 gennaio"
func Date(t time.Time) string {
	return fmt.Sprintf("%s %d %s", weekdayNames[t.Weekday()], t.Day(), monthNames[t.Month()])
}

// Clock formatta l'orario, es. "14:30"
func Clock(t time.Time) string {
	return t.Format("15:04")
}

// DateTime formatta data e ora insieme, es. "martedì 7 gennaio alle 14:30"
func DateTime(t time.Time) string {
	return fmt.Sprintf("%s alle %s", Date(t), Clock(t))
}

// Window formatta una finestra temporale, es. "14:30 - 15:30"
func Window(w model.Window, loc *time.Location) string {
	return fmt.Sprintf("%s - %s", w.Start.In(loc).Format("15:04"), w.End.In(loc).Format("15:04"))
}

// Duration formatta una durata in minuti, es. "1 ora e 30 minuti"
func Duration(minutes int) string {
	hours := minutes / 60
	mins := minutes % 60

	switch {
	case hours == 0:
		return fmt.Sprintf("%d %s", mins, PluralizeMinutes(mins))
	case mins == 0:
		return fmt.Sprintf("%d %s", hours, PluralizeHours(hours))
	default:
		return fmt.Sprintf("%d %s e %d %s", hours, PluralizeHours(hours), mins, PluralizeMinutes(mins))
	}
}

// PluralizeMinutes restituisce la forma corretta di "minuto"
func PluralizeMinutes(count int) string {
	if count == 1 {
		return "minuto"
	}
	return "minuti"
}

// PluralizeHours restituisce la forma corretta di "ora"
func PluralizeHours(count int) string {
	if count == 1 {
		return "ora"
	}
	return "ore"
}

// PluralizeSlots restituisce la forma corretta di "slot libero"
func PluralizeSlots(count int) string {
	if count == 1 {
		return "slot libero"
	}
	return "slot liberi"
}
