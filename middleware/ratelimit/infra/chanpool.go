package infra

import (
	"context"
)

// SlotPool é um semáforo baseado em channel com capacidade fixa.
type SlotPool struct {
	sem chan struct{}
}

// NewChanPool cria um pool com capacidade `max` (relays simultâneos).
func NewChanPool(max int) *SlotPool {
	return &SlotPool{sem: make(chan struct{}, max)}
}

func (p *SlotPool) Acquire(ctx context.Context) (func(), bool) {
	select {
	case p.sem <- struct{}{}:
		return func() { <-p.sem }, true
	case <-ctx.Done():
		return nil, false
	}
}

// InUse devolve quantas vagas estão ocupadas agora.
func (p *SlotPool) InUse() int { return len(p.sem) }

func (p *SlotPool) Cap() int { return cap(p.sem) }
