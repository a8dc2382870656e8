// Package event provides a synchronous/async event dispatcher.
//
// Listeners are registered per event name and receive an Event envelope.
// FireAsync runs listeners on a bounded worker pool so a slow consumer
// (a websocket push, a Kafka publish) never blocks the request that fired.
package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/workerpool"
)

// Event is what a listener receives.
type Event struct {
	ID         string
	Name       string
	OccurredAt time.Time
	Payload    interface{}
}

// Handler is a function that receives an event.
type Handler func(ctx context.Context, e Event) error

// Bus dispatches events to listeners.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	pool     *workerpool.Pool
}

// NewBus creates a Bus. A nil pool makes FireAsync start one goroutine per
// listener.
func NewBus(pool *workerpool.Pool) *Bus {
	return &Bus{handlers: map[string][]Handler{}, pool: pool}
}

// Listen registers a handler for the given event name.
func (b *Bus) Listen(name string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], handler)
}

func (b *Bus) listeners(name string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	hs := make([]Handler, len(b.handlers[name]))
	copy(hs, b.handlers[name])
	return hs
}

// Fire dispatches an event synchronously to all registered listeners and
// returns their joined errors.
func (b *Bus) Fire(ctx context.Context, name string, payload interface{}) error {
	e := newEvent(name, payload)
	var errs []error
	for _, h := range b.listeners(name) {
		if err := h(ctx, e); err != nil {
			errs = append(errs, fmt.Errorf("event %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// FireAsync dispatches the event to all listeners in the background and
// returns immediately. The listeners keep ctx's values but not its
// cancellation. Listener errors are logged.
func (b *Bus) FireAsync(ctx context.Context, name string, payload interface{}) {
	e := newEvent(name, payload)
	bg := context.WithoutCancel(ctx)

	for _, h := range b.listeners(name) {
		h := h
		run := func() {
			if err := h(bg, e); err != nil {
				logger.WithCtx(bg).Warn("event listener failed", "event", name, "event_id", e.ID, "error", err)
			}
		}

		if b.pool == nil {
			go run()
			continue
		}
		if err := b.pool.Submit(run); err != nil {
			logger.WithCtx(bg).Warn("event dropped", "event", name, "event_id", e.ID, "error", err)
		}
	}
}

// Flush removes all listeners (useful in tests).
func (b *Bus) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = map[string][]Handler{}
}

func newEvent(name string, payload interface{}) Event {
	return Event{ID: uuid.NewString(), Name: name, OccurredAt: time.Now().UTC(), Payload: payload}
}
