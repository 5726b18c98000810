// Package event provides the in-process domain event bus.
//
// Services fire events after a successful mutation and after any cache
// entries they own are already dropped. Listeners registered at startup
// push the change outward to WebSocket clients and Kafka:
//
//	bus := event.NewDispatcher(pool)
//	bus.Listen("item.updated", hub.Handle)
//	bus.Listen(event.Wildcard, kafkaPublisher.Handle)
//
//	bus.FireAsync(ctx, event.New("item.updated", item))
package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/reqid"
	"github.com/shashiranjanraj/storefront/pkg/workerpool"
)

// Wildcard listeners receive every event.
const Wildcard = "*"

// Event is a named domain event.
type Event struct {
	Name      string    `json:"event"`
	Payload   any       `json:"payload"`
	RequestID string    `json:"request_id,omitempty"`
	At        time.Time `json:"at"`
}

// New builds an Event stamped with the current time.
func New(name string, payload any) Event {
	return Event{Name: name, Payload: payload, At: time.Now().UTC()}
}

// Handler receives an event. Errors are logged by the dispatcher.
type Handler func(ctx context.Context, e Event) error

// Dispatcher fans events out to registered handlers.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	pool     *workerpool.Pool
}

// NewDispatcher returns a Dispatcher. FireAsync runs handlers on pool; with a
// nil pool it falls back to synchronous dispatch.
func NewDispatcher(pool *workerpool.Pool) *Dispatcher {
	return &Dispatcher{handlers: map[string][]Handler{}, pool: pool}
}

// Listen registers a handler for the given event name (or Wildcard).
func (d *Dispatcher) Listen(name string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = append(d.handlers[name], h)
}

func (d *Dispatcher) listeners(name string) []Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()

	hs := make([]Handler, 0, len(d.handlers[name])+len(d.handlers[Wildcard]))
	hs = append(hs, d.handlers[name]...)
	hs = append(hs, d.handlers[Wildcard]...)
	return hs
}

// Fire dispatches e synchronously and returns the joined handler errors.
func (d *Dispatcher) Fire(ctx context.Context, e Event) error {
	if e.RequestID == "" {
		e.RequestID = reqid.FromCtx(ctx)
	}

	var errs []error
	for _, h := range d.listeners(e.Name) {
		if err := run(ctx, h, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FireAsync hands e to the worker pool and returns immediately. Handlers run
// with a context detached from the request so they outlive it. When the pool
// is saturated the event is dropped and counted.
func (d *Dispatcher) FireAsync(ctx context.Context, e Event) {
	if e.RequestID == "" {
		e.RequestID = reqid.FromCtx(ctx)
	}
	if d.pool == nil {
		d.logErr(ctx, e, d.Fire(ctx, e))
		return
	}

	bg := context.WithoutCancel(ctx)
	err := d.pool.Submit(func() {
		d.logErr(bg, e, d.Fire(bg, e))
	})
	if err != nil {
		metrics.EventsPublished.WithLabelValues(e.Name, "bus", "dropped").Inc()
		logger.WithCtx(ctx).Warn("event dropped", "event", e.Name, "error", err.Error())
	}
}

func (d *Dispatcher) logErr(ctx context.Context, e Event, err error) {
	if err != nil {
		logger.WithCtx(ctx).Error("event listener failed", "event", e.Name, "error", err.Error())
	}
}

func run(ctx context.Context, h Handler, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("event: listener for %q panicked: %v", e.Name, r)
		}
	}()
	return h(ctx, e)
}
