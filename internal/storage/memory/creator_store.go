package memory

import (
	"context"
	"sort"
	"sync"

	"memeswap-router/internal/domain"
	"memeswap-router/internal/storage"
)

// CreatorStore is an in-memory implementation of storage.CreatorStore.
type CreatorStore struct {
	mu   sync.RWMutex
	data map[domain.AssetID]*domain.CreatorRecord
}

// NewCreatorStore creates a new in-memory creator store.
func NewCreatorStore() *CreatorStore {
	return &CreatorStore{
		data: make(map[domain.AssetID]*domain.CreatorRecord),
	}
}

// Insert adds a new binding. Returns ErrDuplicateKey if the asset is bound.
func (s *CreatorStore) Insert(_ context.Context, c *domain.CreatorRecord) error {
	if c == nil || c.Asset.IsZero() || c.Creator.IsZero() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[c.Asset]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	recordCopy := *c
	s.data[c.Asset] = &recordCopy
	return nil
}

// Update replaces the creator for an existing binding.
func (s *CreatorStore) Update(_ context.Context, c *domain.CreatorRecord) error {
	if c == nil || c.Asset.IsZero() || c.Creator.IsZero() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[c.Asset]; !exists {
		return storage.ErrNotFound
	}

	recordCopy := *c
	s.data[c.Asset] = &recordCopy
	return nil
}

// GetByAsset retrieves the binding for an asset. Returns ErrNotFound if absent.
func (s *CreatorStore) GetByAsset(_ context.Context, asset domain.AssetID) (*domain.CreatorRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.data[asset]
	if !exists {
		return nil, storage.ErrNotFound
	}

	recordCopy := *c
	return &recordCopy, nil
}

// List retrieves all bindings, ordered by registration time ASC.
func (s *CreatorStore) List(_ context.Context) ([]*domain.CreatorRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.CreatorRecord, 0, len(s.data))
	for _, c := range s.data {
		recordCopy := *c
		result = append(result, &recordCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].RegisteredAt != result[j].RegisteredAt {
			return result[i].RegisteredAt < result[j].RegisteredAt
		}
		return result[i].Asset < result[j].Asset
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.CreatorStore = (*CreatorStore)(nil)
