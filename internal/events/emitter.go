// Package events fans settlement events out to observers: the service log,
// the ClickHouse audit store, and connected WebSocket subscribers.
// Emission is best-effort; a failing sink never fails the operation that
// produced the event.
package events

import (
	"context"
	"log"

	"memeswap-router/internal/domain"
)

// Sink receives settlement events.
type Sink interface {
	// Name identifies the sink in logs and metrics.
	Name() string

	// Emit delivers one event.
	Emit(ctx context.Context, e *domain.SettlementEvent) error
}

// Emitter delivers events to every configured sink.
type Emitter interface {
	Emit(ctx context.Context, e *domain.SettlementEvent)
}

// Multi is an Emitter over a set of sinks. Sink errors are logged and
// reported to the optional error callback.
type Multi struct {
	sinks   []Sink
	logger  *log.Logger
	onError func(sink string)
}

// MultiOption configures Multi.
type MultiOption func(*Multi)

// WithErrorCallback registers a callback invoked with the sink name when a
// sink fails. Used to feed the sink-error metric.
func WithErrorCallback(fn func(sink string)) MultiOption {
	return func(m *Multi) {
		m.onError = fn
	}
}

// NewMulti creates an Emitter over the given sinks.
func NewMulti(logger *log.Logger, sinks []Sink, opts ...MultiOption) *Multi {
	m := &Multi{sinks: sinks, logger: logger}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Emit delivers the event to every sink.
func (m *Multi) Emit(ctx context.Context, e *domain.SettlementEvent) {
	for _, sink := range m.sinks {
		if err := sink.Emit(ctx, e); err != nil {
			if m.logger != nil {
				m.logger.Printf("event sink %s failed: %v", sink.Name(), err)
			}
			if m.onError != nil {
				m.onError(sink.Name())
			}
		}
	}
}

// Nop is an Emitter that discards events. Used in tests.
type Nop struct{}

// Emit discards the event.
func (Nop) Emit(context.Context, *domain.SettlementEvent) {}

// Verify interface compliance at compile time.
var (
	_ Emitter = (*Multi)(nil)
	_ Emitter = Nop{}
)
