package memory

import (
	"context"
	"sync"

	"github.com/holiman/uint256"

	"memeswap-router/internal/domain"
	"memeswap-router/internal/storage"
)

// BootstrapStore is an in-memory implementation of storage.BootstrapStore.
type BootstrapStore struct {
	mu   sync.RWMutex
	data map[domain.AssetID]*domain.PoolBootstrap
}

// NewBootstrapStore creates a new in-memory bootstrap store.
func NewBootstrapStore() *BootstrapStore {
	return &BootstrapStore{
		data: make(map[domain.AssetID]*domain.PoolBootstrap),
	}
}

// Insert adds the one-shot record. Returns ErrDuplicateKey if the asset was
// already bootstrapped.
func (s *BootstrapStore) Insert(_ context.Context, b *domain.PoolBootstrap) error {
	if b == nil || b.Asset.IsZero() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[b.Asset]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[b.Asset] = copyBootstrap(b)
	return nil
}

// GetByAsset retrieves the record for an asset. Returns ErrNotFound if absent.
func (s *BootstrapStore) GetByAsset(_ context.Context, asset domain.AssetID) (*domain.PoolBootstrap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, exists := s.data[asset]
	if !exists {
		return nil, storage.ErrNotFound
	}

	return copyBootstrap(b), nil
}

func copyBootstrap(b *domain.PoolBootstrap) *domain.PoolBootstrap {
	recordCopy := *b
	recordCopy.AssetDeposited = new(uint256.Int).Set(b.AssetDeposited)
	recordCopy.BaseDeposited = new(uint256.Int).Set(b.BaseDeposited)
	recordCopy.ReceiptAmount = new(uint256.Int).Set(b.ReceiptAmount)
	return &recordCopy
}

// Verify interface compliance at compile time.
var _ storage.BootstrapStore = (*BootstrapStore)(nil)
