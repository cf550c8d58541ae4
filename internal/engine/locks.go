package engine

import "sync"

// keyedMutex serializza il controllo di disponibilità e la scrittura sul
// calendario per singolo calendario: due richieste concorrenti sullo stesso
// consulente non possono intrecciarsi fra check e write. Il vincolo di
// esclusione a livello di database copre il caso multi-processo.
type keyedMutex struct {
	mu sync.Map // calendarID -> *sync.Mutex
}

// Lock acquisisce il mutex per la chiave e restituisce la funzione di
// rilascio.
func (k *keyedMutex) Lock(key string) func() {
	v, _ := k.mu.LoadOrStore(key, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}
