package storage

import (
	"context"

	"github.com/holiman/uint256"

	"memeswap-router/internal/domain"
)

// CreatorStore provides access to creators storage.
type CreatorStore interface {
	// Insert adds a new binding. Returns ErrDuplicateKey if the asset is bound.
	Insert(ctx context.Context, c *domain.CreatorRecord) error

	// Update replaces the creator for an existing binding. Returns ErrNotFound
	// if the asset has no binding.
	Update(ctx context.Context, c *domain.CreatorRecord) error

	// GetByAsset retrieves the binding for an asset. Returns ErrNotFound if absent.
	GetByAsset(ctx context.Context, asset domain.AssetID) (*domain.CreatorRecord, error)

	// List retrieves all bindings, ordered by registration time ASC.
	List(ctx context.Context) ([]*domain.CreatorRecord, error)
}

// LockStore provides access to liquidity_locks storage.
type LockStore interface {
	// Insert adds a new lock. Returns ErrDuplicateKey if lock_id exists.
	Insert(ctx context.Context, l *domain.LiquidityLock) error

	// GetByID retrieves a lock. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, lockID string) (*domain.LiquidityLock, error)

	// MarkReleased flips released false→true. Returns ErrNotFound if the lock
	// does not exist and ErrConflict if it is already released.
	MarkReleased(ctx context.Context, lockID string, releasedAt int64) error

	// GetByBeneficiary retrieves all locks for a beneficiary, ordered by
	// creation time ASC.
	GetByBeneficiary(ctx context.Context, beneficiary domain.AccountID) ([]*domain.LiquidityLock, error)
}

// BootstrapStore provides access to pool_bootstraps storage.
type BootstrapStore interface {
	// Insert adds the one-shot record. Returns ErrDuplicateKey if the asset
	// was already bootstrapped.
	Insert(ctx context.Context, b *domain.PoolBootstrap) error

	// GetByAsset retrieves the record for an asset. Returns ErrNotFound if absent.
	GetByAsset(ctx context.Context, asset domain.AssetID) (*domain.PoolBootstrap, error)
}

// BalanceStore provides access to per-account, per-asset balances.
type BalanceStore interface {
	// Get retrieves a balance. Absent balances are zero, not ErrNotFound.
	Get(ctx context.Context, account domain.AccountID, asset domain.AssetID) (*uint256.Int, error)

	// Apply applies a batch of entries atomically: either every credit and
	// debit lands or none does. Returns ErrInsufficientFunds if any debit
	// would go below zero.
	Apply(ctx context.Context, entries []domain.BalanceEntry) error
}

// SettlementEventStore provides append-only access to settlement_events.
type SettlementEventStore interface {
	// Insert appends an event.
	Insert(ctx context.Context, e *domain.SettlementEvent) error

	// GetByAsset retrieves events for an asset, newest first, up to limit.
	GetByAsset(ctx context.Context, asset domain.AssetID, limit int) ([]*domain.SettlementEvent, error)
}
