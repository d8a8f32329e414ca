package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"memeswap-router/internal/domain"
	"memeswap-router/internal/storage"
)

// CreatorStore implements storage.CreatorStore using PostgreSQL.
type CreatorStore struct {
	pool *Pool
}

// NewCreatorStore creates a new CreatorStore.
func NewCreatorStore(pool *Pool) *CreatorStore {
	return &CreatorStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CreatorStore = (*CreatorStore)(nil)

// Insert adds a new binding. Returns ErrDuplicateKey if the asset is bound.
func (s *CreatorStore) Insert(ctx context.Context, c *domain.CreatorRecord) error {
	query := `
		INSERT INTO creators (asset, creator, registered_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.pool.Exec(ctx, query,
		string(c.Asset),
		string(c.Creator),
		c.RegisteredAt,
		c.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert creator: %w", err)
	}
	return nil
}

// Update replaces the creator for an existing binding. Returns ErrNotFound
// if the asset has no binding.
func (s *CreatorStore) Update(ctx context.Context, c *domain.CreatorRecord) error {
	query := `
		UPDATE creators
		SET creator = $2, updated_at = $3
		WHERE asset = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		string(c.Asset),
		string(c.Creator),
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update creator: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetByAsset retrieves the binding for an asset. Returns ErrNotFound if absent.
func (s *CreatorStore) GetByAsset(ctx context.Context, asset domain.AssetID) (*domain.CreatorRecord, error) {
	query := `
		SELECT asset, creator, registered_at, updated_at
		FROM creators
		WHERE asset = $1
	`

	row := s.pool.QueryRow(ctx, query, string(asset))
	c, err := scanCreator(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get creator by asset: %w", err)
	}
	return c, nil
}

// List retrieves all bindings, ordered by registration time ASC.
func (s *CreatorStore) List(ctx context.Context) ([]*domain.CreatorRecord, error) {
	query := `
		SELECT asset, creator, registered_at, updated_at
		FROM creators
		ORDER BY registered_at ASC, asset ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list creators: %w", err)
	}
	defer rows.Close()

	var records []*domain.CreatorRecord
	for rows.Next() {
		var c domain.CreatorRecord
		var asset, creator string

		if err := rows.Scan(&asset, &creator, &c.RegisteredAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan creator row: %w", err)
		}
		c.Asset = domain.AssetID(asset)
		c.Creator = domain.AccountID(creator)
		records = append(records, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate creator rows: %w", err)
	}
	return records, nil
}

// scanCreator scans a single row into a CreatorRecord.
func scanCreator(row pgx.Row) (*domain.CreatorRecord, error) {
	var c domain.CreatorRecord
	var asset, creator string

	err := row.Scan(&asset, &creator, &c.RegisteredAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	c.Asset = domain.AssetID(asset)
	c.Creator = domain.AccountID(creator)
	return &c, nil
}
