package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/holiman/uint256"

	"memeswap-router/internal/domain"
	"memeswap-router/internal/storage"
)

// LockStore is an in-memory implementation of storage.LockStore.
type LockStore struct {
	mu   sync.RWMutex
	data map[string]*domain.LiquidityLock // keyed by lock_id
}

// NewLockStore creates a new in-memory lock store.
func NewLockStore() *LockStore {
	return &LockStore{
		data: make(map[string]*domain.LiquidityLock),
	}
}

// Insert adds a new lock. Returns ErrDuplicateKey if lock_id exists.
func (s *LockStore) Insert(_ context.Context, l *domain.LiquidityLock) error {
	if l == nil || l.LockID == "" || l.ReceiptAmount == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[l.LockID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[l.LockID] = copyLock(l)
	return nil
}

// GetByID retrieves a lock. Returns ErrNotFound if absent.
func (s *LockStore) GetByID(_ context.Context, lockID string) (*domain.LiquidityLock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, exists := s.data[lockID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	return copyLock(l), nil
}

// MarkReleased flips released false→true. Returns ErrConflict if already released.
func (s *LockStore) MarkReleased(_ context.Context, lockID string, releasedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, exists := s.data[lockID]
	if !exists {
		return storage.ErrNotFound
	}
	if l.Released {
		return storage.ErrConflict
	}

	l.Released = true
	l.ReleasedAt = releasedAt
	return nil
}

// GetByBeneficiary retrieves all locks for a beneficiary, ordered by creation time ASC.
func (s *LockStore) GetByBeneficiary(_ context.Context, beneficiary domain.AccountID) ([]*domain.LiquidityLock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.LiquidityLock
	for _, l := range s.data {
		if l.Beneficiary == beneficiary {
			result = append(result, copyLock(l))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].LockID < result[j].LockID
	})

	return result, nil
}

// copyLock deep-copies a lock so callers cannot mutate stored amounts.
func copyLock(l *domain.LiquidityLock) *domain.LiquidityLock {
	lockCopy := *l
	lockCopy.ReceiptAmount = new(uint256.Int).Set(l.ReceiptAmount)
	return &lockCopy
}

// Verify interface compliance at compile time.
var _ storage.LockStore = (*LockStore)(nil)
