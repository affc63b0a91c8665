// Package task modela timers como handles cancelables: tareas recurrentes
// (ticker) y diferidas (one-shot), agrupables para cancelarlas al apagar.
package task

import (
	"context"
	"sync"
	"time"
)

type Handle struct {
	once   sync.Once
	cancel context.CancelFunc
	done   chan struct{}
}

// Cancel detiene la tarea. Es idempotente.
func (h *Handle) Cancel() {
	h.once.Do(h.cancel)
}

// Done se cierra cuando la goroutine de la tarea terminó.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Every ejecuta fn cada d hasta que se cancele el handle o ctx.
// Un fn lento no acumula ticks.
func Every(ctx context.Context, d time.Duration, fn func(ctx context.Context)) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		t := time.NewTicker(d)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				fn(ctx)
			}
		}
	}()
	return h
}

// After ejecuta fn una vez pasado d, salvo que se cancele antes.
func After(ctx context.Context, d time.Duration, fn func(ctx context.Context)) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
		case <-t.C:
			fn(ctx)
		}
	}()
	return h
}

// Group lleva la cuenta de handles pendientes para poder cancelarlos todos.
type Group struct {
	mu      sync.Mutex
	ctx     context.Context
	handles map[*Handle]struct{}
}

func NewGroup(ctx context.Context) *Group {
	return &Group{ctx: ctx, handles: map[*Handle]struct{}{}}
}

// After programa fn dentro del grupo; el handle se suelta solo al terminar.
func (g *Group) After(d time.Duration, fn func(ctx context.Context)) *Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	h := After(g.ctx, d, fn)
	g.handles[h] = struct{}{}
	go func() {
		<-h.Done()
		g.mu.Lock()
		delete(g.handles, h)
		g.mu.Unlock()
	}()
	return h
}

func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.handles)
}

// CancelAll cancela todo lo pendiente.
func (g *Group) CancelAll() {
	g.mu.Lock()
	hs := make([]*Handle, 0, len(g.handles))
	for h := range g.handles {
		hs = append(hs, h)
	}
	g.mu.Unlock()
	for _, h := range hs {
		h.Cancel()
	}
}
