package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/holiman/uint256"
	"github.com/jackc/pgx/v5"

	"memeswap-router/internal/domain"
	"memeswap-router/internal/observability"
	"memeswap-router/internal/storage"
)

// BalanceStore implements storage.BalanceStore using PostgreSQL.
// Balances are NUMERIC(39, 0) rows keyed by (account, asset); a batch runs in
// one transaction so settlement credits land together or not at all.
type BalanceStore struct {
	pool *Pool
}

// NewBalanceStore creates a new BalanceStore.
func NewBalanceStore(pool *Pool) *BalanceStore {
	return &BalanceStore{pool: pool}
}

// Compile-time interface check.
var _ storage.BalanceStore = (*BalanceStore)(nil)

// Get retrieves a balance. Absent balances are zero.
func (s *BalanceStore) Get(ctx context.Context, account domain.AccountID, asset domain.AssetID) (*uint256.Int, error) {
	query := `
		SELECT amount::TEXT
		FROM balances
		WHERE account = $1 AND asset = $2
	`

	var amountStr string
	err := s.pool.QueryRow(ctx, query, string(account), string(asset)).Scan(&amountStr)
	if err != nil {
		if isNotFoundError(err) {
			return uint256.NewInt(0), nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}

	amount, err := domain.ParseAmount(amountStr)
	if err != nil {
		return nil, fmt.Errorf("parse balance: %w", err)
	}
	return amount, nil
}

// Apply applies a batch of entries in one transaction. A debit below zero
// rolls the whole batch back with ErrInsufficientFunds.
func (s *BalanceStore) Apply(ctx context.Context, entries []domain.BalanceEntry) error {
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

	started := time.Now()
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, e := range entries {
			if err := applyEntry(ctx, tx, e); err != nil {
				return err
			}
		}
		return nil
	})
	observability.RecordDBQuery("postgres", "apply_balances", time.Since(started).Seconds(), err)
	if err != nil {
		if errors.Is(err, storage.ErrInsufficientFunds) {
			return storage.ErrInsufficientFunds
		}
		return fmt.Errorf("apply balance batch: %w", err)
	}
	return nil
}

func applyEntry(ctx context.Context, tx pgx.Tx, e domain.BalanceEntry) error {
	amount := domain.FormatAmount(e.Amount)

	switch e.Direction {
	case domain.EntryCredit:
		query := `
			INSERT INTO balances (account, asset, amount)
			VALUES ($1, $2, $3::NUMERIC)
			ON CONFLICT (account, asset)
			DO UPDATE SET amount = balances.amount + EXCLUDED.amount
		`
		if _, err := tx.Exec(ctx, query, string(e.Account), string(e.Asset), amount); err != nil {
			return fmt.Errorf("credit balance: %w", err)
		}
		return nil

	case domain.EntryDebit:
		query := `
			UPDATE balances
			SET amount = amount - $3::NUMERIC
			WHERE account = $1 AND asset = $2 AND amount >= $3::NUMERIC
		`
		tag, err := tx.Exec(ctx, query, string(e.Account), string(e.Asset), amount)
		if err != nil {
			return fmt.Errorf("debit balance: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return storage.ErrInsufficientFunds
		}
		return nil
	}
	return storage.ErrInvalidInput
}
