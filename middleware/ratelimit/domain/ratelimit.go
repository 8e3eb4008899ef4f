package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import "time"

// Key identifica o cliente (hoje: o IP).
type Key string

// Window é o estado de uma janela fixa para uma chave.
type Window struct {
	Count int
	Start time.Time
}

// Expired indica se a janela já passou em `now` para o tamanho `size`.
func (w Window) Expired(now time.Time, size time.Duration) bool {
	return w.Start.IsZero() || !now.Before(w.Start.Add(size))
}

// CounterStore mantém os contadores por chave.
//
// CheckAndIncrement deve ser atômico: incrementa o contador da chave
// (abrindo uma nova janela se a atual expirou) e compara com o limite
// numa única operação.
type CounterStore interface {
	CheckAndIncrement(key Key, now time.Time) Decision
}

type Decision struct {
	Allowed bool

	Limit     int
	Remaining int
	// ResetAt é o instante em que a janela atual da chave termina.
	ResetAt time.Time

	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}
