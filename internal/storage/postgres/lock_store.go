package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"memeswap-router/internal/domain"
	"memeswap-router/internal/storage"
)

// LockStore implements storage.LockStore using PostgreSQL.
// Receipt amounts are stored as NUMERIC(39, 0) and travel as decimal strings.
type LockStore struct {
	pool *Pool
}

// NewLockStore creates a new LockStore.
func NewLockStore(pool *Pool) *LockStore {
	return &LockStore{pool: pool}
}

// Compile-time interface check.
var _ storage.LockStore = (*LockStore)(nil)

// Insert adds a new lock. Returns ErrDuplicateKey if lock_id exists.
func (s *LockStore) Insert(ctx context.Context, l *domain.LiquidityLock) error {
	query := `
		INSERT INTO liquidity_locks (
			lock_id, asset, receipt_amount, unlock_time, beneficiary, released, created_at, released_at
		) VALUES ($1, $2, $3::NUMERIC, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		l.LockID,
		string(l.Asset),
		domain.FormatAmount(l.ReceiptAmount),
		l.UnlockTime,
		string(l.Beneficiary),
		l.Released,
		l.CreatedAt,
		l.ReleasedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert lock: %w", err)
	}
	return nil
}

// GetByID retrieves a lock. Returns ErrNotFound if absent.
func (s *LockStore) GetByID(ctx context.Context, lockID string) (*domain.LiquidityLock, error) {
	query := `
		SELECT lock_id, asset, receipt_amount::TEXT, unlock_time, beneficiary, released, created_at, released_at
		FROM liquidity_locks
		WHERE lock_id = $1
	`

	row := s.pool.QueryRow(ctx, query, lockID)
	l, err := scanLock(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get lock by id: %w", err)
	}
	return l, nil
}

// MarkReleased flips released false to true. The conditional UPDATE makes the
// transition atomic against concurrent releases.
func (s *LockStore) MarkReleased(ctx context.Context, lockID string, releasedAt int64) error {
	query := `
		UPDATE liquidity_locks
		SET released = TRUE, released_at = $2
		WHERE lock_id = $1 AND released = FALSE
	`

	tag, err := s.pool.Exec(ctx, query, lockID, releasedAt)
	if err != nil {
		return fmt.Errorf("mark lock released: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the lock does not exist or it is already released.
		var exists bool
		err := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM liquidity_locks WHERE lock_id = $1)`, lockID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check lock existence: %w", err)
		}
		if !exists {
			return storage.ErrNotFound
		}
		return storage.ErrConflict
	}
	return nil
}

// GetByBeneficiary retrieves all locks for a beneficiary, ordered by creation
// time ASC.
func (s *LockStore) GetByBeneficiary(ctx context.Context, beneficiary domain.AccountID) ([]*domain.LiquidityLock, error) {
	query := `
		SELECT lock_id, asset, receipt_amount::TEXT, unlock_time, beneficiary, released, created_at, released_at
		FROM liquidity_locks
		WHERE beneficiary = $1
		ORDER BY created_at ASC, lock_id ASC
	`

	rows, err := s.pool.Query(ctx, query, string(beneficiary))
	if err != nil {
		return nil, fmt.Errorf("get locks by beneficiary: %w", err)
	}
	defer rows.Close()

	var locks []*domain.LiquidityLock
	for rows.Next() {
		l, err := scanLock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lock row: %w", err)
		}
		locks = append(locks, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lock rows: %w", err)
	}
	return locks, nil
}

// scanLock scans a single row into a LiquidityLock.
func scanLock(row pgx.Row) (*domain.LiquidityLock, error) {
	var l domain.LiquidityLock
	var asset, beneficiary, receiptAmount string

	err := row.Scan(
		&l.LockID,
		&asset,
		&receiptAmount,
		&l.UnlockTime,
		&beneficiary,
		&l.Released,
		&l.CreatedAt,
		&l.ReleasedAt,
	)
	if err != nil {
		return nil, err
	}

	amount, err := domain.ParseAmount(receiptAmount)
	if err != nil {
		return nil, fmt.Errorf("parse receipt amount: %w", err)
	}

	l.Asset = domain.AssetID(asset)
	l.Beneficiary = domain.AccountID(beneficiary)
	l.ReceiptAmount = amount
	return &l, nil
}
