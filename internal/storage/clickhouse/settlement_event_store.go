package clickhouse

import (
	"context"
	"fmt"
	"time"

	"memeswap-router/internal/domain"
	"memeswap-router/internal/observability"
	"memeswap-router/internal/storage"
)

// SettlementEventStore implements storage.SettlementEventStore using
// ClickHouse. Events are append-only; amounts travel as decimal strings so
// 128-bit values survive the round trip.
type SettlementEventStore struct {
	conn *Conn
}

// NewSettlementEventStore creates a new SettlementEventStore.
func NewSettlementEventStore(conn *Conn) *SettlementEventStore {
	return &SettlementEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SettlementEventStore = (*SettlementEventStore)(nil)

// Insert appends an event.
func (s *SettlementEventStore) Insert(ctx context.Context, e *domain.SettlementEvent) (err error) {
	started := time.Now()
	defer func() {
		observability.RecordDBQuery("clickhouse", "insert_settlement_event", time.Since(started).Seconds(), err)
	}()

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO settlement_events (
			event_id, kind, asset, account, lock_id,
			amount_in, amount_out, creator_fee, platform_fee, timestamp_ms
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		e.EventID,
		string(e.Kind),
		string(e.Asset),
		string(e.Account),
		e.LockID,
		domain.FormatAmount(e.AmountIn),
		domain.FormatAmount(e.AmountOut),
		domain.FormatAmount(e.CreatorFee),
		domain.FormatAmount(e.PlatformFee),
		uint64(e.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByAsset retrieves events for an asset, newest first, up to limit.
func (s *SettlementEventStore) GetByAsset(ctx context.Context, asset domain.AssetID, limit int) ([]*domain.SettlementEvent, error) {
	query := `
		SELECT event_id, kind, asset, account, lock_id,
		       amount_in, amount_out, creator_fee, platform_fee, timestamp_ms
		FROM settlement_events
		WHERE asset = ?
		ORDER BY timestamp_ms DESC, event_id DESC
		LIMIT ?
	`

	rows, err := s.conn.Query(ctx, query, string(asset), uint64(limit))
	if err != nil {
		return nil, fmt.Errorf("query events by asset: %w", err)
	}
	defer rows.Close()

	var events []*domain.SettlementEvent
	for rows.Next() {
		var (
			e                    domain.SettlementEvent
			kind, asset, account string
			amountIn, amountOut  string
			creatorFee, platFee  string
			timestampMs          uint64
		)
		err := rows.Scan(
			&e.EventID, &kind, &asset, &account, &e.LockID,
			&amountIn, &amountOut, &creatorFee, &platFee, &timestampMs,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}

		e.Kind = domain.EventKind(kind)
		e.Asset = domain.AssetID(asset)
		e.Account = domain.AccountID(account)
		e.Timestamp = int64(timestampMs)
		if e.AmountIn, err = domain.ParseAmount(amountIn); err != nil {
			return nil, fmt.Errorf("parse amount_in: %w", err)
		}
		if e.AmountOut, err = domain.ParseAmount(amountOut); err != nil {
			return nil, fmt.Errorf("parse amount_out: %w", err)
		}
		if e.CreatorFee, err = domain.ParseAmount(creatorFee); err != nil {
			return nil, fmt.Errorf("parse creator_fee: %w", err)
		}
		if e.PlatformFee, err = domain.ParseAmount(platFee); err != nil {
			return nil, fmt.Errorf("parse platform_fee: %w", err)
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}
	return events, nil
}
