// Package events dispatches domain events to in-process handlers
package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/recipewiz/backend/internal/domain/shared"
)

// Dispatcher implements shared.EventDispatcher. Handlers run synchronously
// in registration order; a failing handler is logged and does not stop
// the others or fail the caller.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	log      *zap.Logger
}

var _ shared.EventDispatcher = (*Dispatcher)(nil)

// NewDispatcher creates a new event dispatcher
func NewDispatcher(log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string][]shared.EventHandler),
		log:      log.Named("events"),
	}
}

// Dispatch dispatches events to registered handlers
func (d *Dispatcher) Dispatch(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		d.mu.RLock()
		handlers := d.handlers[event.EventName()]
		d.mu.RUnlock()

		if len(handlers) == 0 {
			d.log.Debug("No handlers registered for event", zap.String("event", event.EventName()))
			continue
		}

		for _, handler := range handlers {
			if err := handler(ctx, event); err != nil {
				d.log.Error("Failed to handle event",
					zap.String("event", event.EventName()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Register registers an event handler
func (d *Dispatcher) Register(eventName string, handler shared.EventHandler) {
	d.mu.Lock()
	d.handlers[eventName] = append(d.handlers[eventName], handler)
	d.mu.Unlock()

	d.log.Debug("Registered event handler", zap.String("event", eventName))
}

// RegisterAll registers one handler for several events
func (d *Dispatcher) RegisterAll(eventNames []string, handler shared.EventHandler) {
	for _, name := range eventNames {
		d.Register(name, handler)
	}
}

// LogHandler returns a handler that writes each event to the audit log
func LogHandler(log *zap.Logger) shared.EventHandler {
	return func(ctx context.Context, event shared.DomainEvent) error {
		log.Info("Domain event",
			zap.String("event", event.EventName()),
			zap.Time("occurred_at", event.OccurredAt().UTC().Truncate(time.Millisecond)),
			zap.Any("payload", event),
		)
		return nil
	}
}
