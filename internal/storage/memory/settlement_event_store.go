package memory

import (
	"context"
	"sync"

	"github.com/holiman/uint256"

	"memeswap-router/internal/domain"
	"memeswap-router/internal/storage"
)

// SettlementEventStore is an in-memory implementation of storage.SettlementEventStore.
// Append-only; used in tests and memory-backed deployments.
type SettlementEventStore struct {
	mu     sync.RWMutex
	events []*domain.SettlementEvent
}

// NewSettlementEventStore creates a new in-memory settlement event store.
func NewSettlementEventStore() *SettlementEventStore {
	return &SettlementEventStore{}
}

// Insert appends an event.
func (s *SettlementEventStore) Insert(_ context.Context, e *domain.SettlementEvent) error {
	if e == nil || e.EventID == "" || e.Kind == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, copyEvent(e))
	return nil
}

// GetByAsset retrieves events for an asset, newest first, up to limit.
func (s *SettlementEventStore) GetByAsset(_ context.Context, asset domain.AssetID, limit int) ([]*domain.SettlementEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SettlementEvent
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].Asset != asset {
			continue
		}
		result = append(result, copyEvent(s.events[i]))
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func copyEvent(e *domain.SettlementEvent) *domain.SettlementEvent {
	eventCopy := *e
	eventCopy.AmountIn = copyAmount(e.AmountIn)
	eventCopy.AmountOut = copyAmount(e.AmountOut)
	eventCopy.CreatorFee = copyAmount(e.CreatorFee)
	eventCopy.PlatformFee = copyAmount(e.PlatformFee)
	return &eventCopy
}

func copyAmount(v *uint256.Int) *uint256.Int {
	if v == nil {
		return nil
	}
	return new(uint256.Int).Set(v)
}

// Verify interface compliance at compile time.
var _ storage.SettlementEventStore = (*SettlementEventStore)(nil)
