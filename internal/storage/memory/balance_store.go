package memory

import (
	"context"
	"sync"

	"github.com/holiman/uint256"

	"memeswap-router/internal/domain"
	"memeswap-router/internal/storage"
)

type balanceKey struct {
	account domain.AccountID
	asset   domain.AssetID
}

// BalanceStore is an in-memory implementation of storage.BalanceStore.
// A single mutex makes every Apply batch atomic and serialized.
type BalanceStore struct {
	mu   sync.RWMutex
	data map[balanceKey]*uint256.Int
}

// NewBalanceStore creates a new in-memory balance store.
func NewBalanceStore() *BalanceStore {
	return &BalanceStore{
		data: make(map[balanceKey]*uint256.Int),
	}
}

// Get retrieves a balance. Absent balances are zero.
func (s *BalanceStore) Get(_ context.Context, account domain.AccountID, asset domain.AssetID) (*uint256.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, exists := s.data[balanceKey{account, asset}]
	if !exists {
		return uint256.NewInt(0), nil
	}
	return new(uint256.Int).Set(b), nil
}

// Apply applies a batch of entries atomically. Validates the whole batch
// against a working copy before committing, so a failing debit leaves every
// balance untouched.
func (s *BalanceStore) Apply(_ context.Context, entries []domain.BalanceEntry) error {
	if len(entries) == 0 {
		return nil
	}
	for _, e := range entries {
		if e.Account.IsZero() || e.Asset.IsZero() || e.Amount == nil {
			return storage.ErrInvalidInput
		}
		if e.Direction != domain.EntryCredit && e.Direction != domain.EntryDebit {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: compute results without mutating.
	staged := make(map[balanceKey]*uint256.Int, len(entries))
	for _, e := range entries {
		key := balanceKey{e.Account, e.Asset}
		current, ok := staged[key]
		if !ok {
			if existing, exists := s.data[key]; exists {
				current = new(uint256.Int).Set(existing)
			} else {
				current = uint256.NewInt(0)
			}
		}

		switch e.Direction {
		case domain.EntryCredit:
			current = new(uint256.Int).Add(current, e.Amount)
		case domain.EntryDebit:
			if current.Lt(e.Amount) {
				return storage.ErrInsufficientFunds
			}
			current = new(uint256.Int).Sub(current, e.Amount)
		}
		staged[key] = current
	}

	// Second pass: commit.
	for key, value := range staged {
		s.data[key] = value
	}
	return nil
}

// Verify interface compliance at compile time.
var _ storage.BalanceStore = (*BalanceStore)(nil)
