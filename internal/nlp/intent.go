package nlp

import "strings"

// Action è l'operazione richiesta dal turno di conversazione.
type Action string

const (
	ActionCreate Action = "create"
	ActionCancel Action = "cancel"
	ActionModify Action = "modify"
	ActionQuery  Action = "query" // richiesta di disponibilità
)

// actionKeywords è la tabella parola-chiave -> azione, valutata in ordine
// fisso: annullamento, spostamento, disponibilità, altrimenti creazione.
var actionKeywords = []struct {
	action Action
	terms  []string
}{
	{ActionCancel, []string{"annulla", "cancella", "disdi", "elimina l'appuntamento"}},
	{ActionModify, []string{"sposta", "modifica", "cambia", "rinvia", "posticipa", "anticipa"}},
	{ActionQuery, []string{"disponibil", "orari liberi", "slot liberi", "quando posso", "che orari"}},
}

// DetectAction individua l'operazione richiesta dal testo. In assenza di
// parole chiave il turno è una richiesta di creazione.
func DetectAction(text string) Action {
	lower := strings.ToLower(text)
	for _, row := range actionKeywords {
		for _, term := range row.terms {
			if strings.Contains(lower, term) {
				return row.action
			}
		}
	}
	return ActionCreate
}
