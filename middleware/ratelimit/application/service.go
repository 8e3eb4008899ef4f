package application

import (
	"time"

	"relay-gateway/middleware/ratelimit/domain"
)

// Service concentra a regra de aplicação do rate limit por janela fixa.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
type Service struct {
	Store domain.CounterStore
	Now   func() time.Time
}

func (s Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s Service) Decide(key domain.Key) domain.Decision {
	if s.Store == nil {
		return domain.Decision{Allowed: true}
	}

	now := s.now()
	dec := s.Store.CheckAndIncrement(key, now)
	if dec.Allowed {
		return dec
	}

	// arredonda para cima em segundos; nunca menos de 1s
	wait := dec.ResetAt.Sub(now)
	secs := (wait + time.Second - 1) / time.Second
	if secs < 1 {
		secs = 1
	}
	dec.RetryAfter = secs * time.Second
	return dec
}
