package infra

import (
	"context"
	"sync"
	"time"

	"relay-gateway/middleware/ratelimit/domain"
)

const (
	DefaultLimit  = 100
	DefaultWindow = time.Minute
)

// FixedWindowStore conta requisições por chave em janelas fixas, em memória.
//
// A janela de cada chave começa na primeira requisição dela. Todas as
// requisições contam, inclusive as bloqueadas.
// O estado é local ao processo e se perde no restart.
type FixedWindowStore struct {
	mu           sync.Mutex
	windows      map[domain.Key]*domain.Window
	limit        int
	window       time.Duration
	cleanupEvery time.Duration
	now          func() time.Time
}

type StoreOption func(*FixedWindowStore)

func WithCleanupEvery(d time.Duration) StoreOption {
	return func(s *FixedWindowStore) { s.cleanupEvery = d }
}

// WithClock troca o relógio usado por Cleanup (útil em testes).
func WithClock(now func() time.Time) StoreOption {
	return func(s *FixedWindowStore) { s.now = now }
}

func NewFixedWindowStore(limit int, window time.Duration, opts ...StoreOption) *FixedWindowStore {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	s := &FixedWindowStore{
		windows:      make(map[domain.Key]*domain.Window),
		limit:        limit,
		window:       window,
		cleanupEvery: window,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FixedWindowStore) Limit() int             { return s.limit }
func (s *FixedWindowStore) Window() time.Duration { return s.window }

// CheckAndIncrement implementa domain.CounterStore.
func (s *FixedWindowStore) CheckAndIncrement(key domain.Key, now time.Time) domain.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok {
		w = &domain.Window{}
		s.windows[key] = w
	}
	if w.Expired(now, s.window) {
		w.Count = 0
		w.Start = now
	}
	w.Count++

	remaining := s.limit - w.Count
	if remaining < 0 {
		remaining = 0
	}
	return domain.Decision{
		Allowed:   w.Count <= s.limit,
		Limit:     s.limit,
		Remaining: remaining,
		ResetAt:   w.Start.Add(s.window),
	}
}

// Len devolve quantas chaves estão sendo rastreadas.
func (s *FixedWindowStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// Cleanup descarta janelas já encerradas.
func (s *FixedWindowStore) Cleanup() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, w := range s.windows {
		if w.Expired(now, s.window) {
			delete(s.windows, k)
		}
	}
}

// StartJanitor inicia uma goroutine que limpa janelas expiradas periodicamente.
// Pare cancelando o contexto.
func (s *FixedWindowStore) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}
