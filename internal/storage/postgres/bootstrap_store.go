package postgres

import (
	"context"
	"fmt"

	"memeswap-router/internal/domain"
	"memeswap-router/internal/storage"
)

// BootstrapStore implements storage.BootstrapStore using PostgreSQL.
type BootstrapStore struct {
	pool *Pool
}

// NewBootstrapStore creates a new BootstrapStore.
func NewBootstrapStore(pool *Pool) *BootstrapStore {
	return &BootstrapStore{pool: pool}
}

// Compile-time interface check.
var _ storage.BootstrapStore = (*BootstrapStore)(nil)

// Insert adds the one-shot record. Returns ErrDuplicateKey if the asset was
// already bootstrapped.
func (s *BootstrapStore) Insert(ctx context.Context, b *domain.PoolBootstrap) error {
	query := `
		INSERT INTO pool_bootstraps (
			asset, pool_address, lock_id, asset_deposited, base_deposited, receipt_amount, completed_at
		) VALUES ($1, $2, $3, $4::NUMERIC, $5::NUMERIC, $6::NUMERIC, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		string(b.Asset),
		b.PoolAddress,
		b.LockID,
		domain.FormatAmount(b.AssetDeposited),
		domain.FormatAmount(b.BaseDeposited),
		domain.FormatAmount(b.ReceiptAmount),
		b.CompletedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert bootstrap: %w", err)
	}
	return nil
}

// GetByAsset retrieves the record for an asset. Returns ErrNotFound if absent.
func (s *BootstrapStore) GetByAsset(ctx context.Context, asset domain.AssetID) (*domain.PoolBootstrap, error) {
	query := `
		SELECT asset, pool_address, lock_id, asset_deposited::TEXT, base_deposited::TEXT, receipt_amount::TEXT, completed_at
		FROM pool_bootstraps
		WHERE asset = $1
	`

	var b domain.PoolBootstrap
	var assetStr, assetDeposited, baseDeposited, receiptAmount string

	err := s.pool.QueryRow(ctx, query, string(asset)).Scan(
		&assetStr,
		&b.PoolAddress,
		&b.LockID,
		&assetDeposited,
		&baseDeposited,
		&receiptAmount,
		&b.CompletedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get bootstrap by asset: %w", err)
	}

	b.Asset = domain.AssetID(assetStr)
	if b.AssetDeposited, err = domain.ParseAmount(assetDeposited); err != nil {
		return nil, fmt.Errorf("parse asset deposited: %w", err)
	}
	if b.BaseDeposited, err = domain.ParseAmount(baseDeposited); err != nil {
		return nil, fmt.Errorf("parse base deposited: %w", err)
	}
	if b.ReceiptAmount, err = domain.ParseAmount(receiptAmount); err != nil {
		return nil, fmt.Errorf("parse receipt amount: %w", err)
	}
	return &b, nil
}
