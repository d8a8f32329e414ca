package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"memeswap-router/internal/domain"
	"memeswap-router/internal/storage"
)

// LogSink writes events to the service log.
type LogSink struct {
	logger *log.Logger
}

// NewLogSink creates a log sink.
func NewLogSink(logger *log.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Name identifies the sink.
func (s *LogSink) Name() string { return "log" }

// Emit writes one formatted line per event.
func (s *LogSink) Emit(_ context.Context, e *domain.SettlementEvent) error {
	s.logger.Printf("%s asset=%s account=%s lock=%s in=%s out=%s creator_fee=%s platform_fee=%s",
		e.Kind,
		e.Asset,
		e.Account,
		e.LockID,
		domain.FormatAmount(e.AmountIn),
		domain.FormatAmount(e.AmountOut),
		domain.FormatAmount(e.CreatorFee),
		domain.FormatAmount(e.PlatformFee),
	)
	return nil
}

// AuditSink appends events to the settlement event store (ClickHouse in
// production, memory in tests).
type AuditSink struct {
	store storage.SettlementEventStore
}

// NewAuditSink creates an audit sink over a settlement event store.
func NewAuditSink(store storage.SettlementEventStore) *AuditSink {
	return &AuditSink{store: store}
}

// Name identifies the sink.
func (s *AuditSink) Name() string { return "audit" }

// Emit appends the event.
func (s *AuditSink) Emit(ctx context.Context, e *domain.SettlementEvent) error {
	if err := s.store.Insert(ctx, e); err != nil {
		return fmt.Errorf("insert settlement event: %w", err)
	}
	return nil
}

// wireEvent is the JSON shape events take on the WebSocket feed.
// Amounts travel as decimal strings.
type wireEvent struct {
	EventID     string `json:"event_id"`
	Kind        string `json:"kind"`
	Asset       string `json:"asset"`
	Account     string `json:"account,omitempty"`
	LockID      string `json:"lock_id,omitempty"`
	AmountIn    string `json:"amount_in"`
	AmountOut   string `json:"amount_out"`
	CreatorFee  string `json:"creator_fee"`
	PlatformFee string `json:"platform_fee"`
	Timestamp   int64  `json:"timestamp"`
}

func marshalEvent(e *domain.SettlementEvent) ([]byte, error) {
	return json.Marshal(wireEvent{
		EventID:     e.EventID,
		Kind:        string(e.Kind),
		Asset:       string(e.Asset),
		Account:     string(e.Account),
		LockID:      e.LockID,
		AmountIn:    domain.FormatAmount(e.AmountIn),
		AmountOut:   domain.FormatAmount(e.AmountOut),
		CreatorFee:  domain.FormatAmount(e.CreatorFee),
		PlatformFee: domain.FormatAmount(e.PlatformFee),
		Timestamp:   e.Timestamp,
	})
}

// Verify interface compliance at compile time.
var (
	_ Sink = (*LogSink)(nil)
	_ Sink = (*AuditSink)(nil)
)
