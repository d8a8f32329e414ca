package locker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/holiman/uint256"

	"memeswap-router/internal/domain"
	"memeswap-router/internal/events"
	"memeswap-router/internal/idhash"
	"memeswap-router/internal/observability"
	"memeswap-router/internal/storage"
)

// Locker escrows liquidity receipts under time locks. Funds held by a lock
// belong to no account balance; release credits the beneficiary's receipt
// asset balance exactly once.
type Locker struct {
	locks    storage.LockStore
	balances storage.BalanceStore
	emitter  events.Emitter
	logger   *log.Logger

	// depositor is the only account allowed to create locks. In this
	// deployment it is the pool bootstrapper's service account.
	depositor domain.AccountID
	now       func() time.Time

	mu sync.Mutex
}

// New creates a liquidity locker.
func New(
	locks storage.LockStore,
	balances storage.BalanceStore,
	depositor domain.AccountID,
	emitter events.Emitter,
	logger *log.Logger,
) *Locker {
	return &Locker{
		locks:     locks,
		balances:  balances,
		emitter:   emitter,
		logger:    logger,
		depositor: depositor,
		now:       time.Now,
	}
}

// Lock escrows a receipt amount until unlockTime. The unlock time must be
// strictly in the future and the amount nonzero. Returns the lock_id.
func (l *Locker) Lock(
	ctx context.Context,
	caller domain.AccountID,
	asset domain.AssetID,
	amount *uint256.Int,
	unlockTime int64,
	beneficiary domain.AccountID,
) (string, error) {
	if caller != l.depositor {
		return "", domain.ErrUnauthorized
	}
	if amount == nil || amount.IsZero() {
		return "", domain.ErrZeroAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	nowMs := l.now().UnixMilli()
	if unlockTime <= nowMs {
		return "", domain.ErrInvalidUnlockTime
	}

	lockID := idhash.ComputeLockID(asset, beneficiary, unlockTime, domain.FormatAmount(amount))
	lock := &domain.LiquidityLock{
		LockID:        lockID,
		Asset:         asset,
		ReceiptAmount: new(uint256.Int).Set(amount),
		UnlockTime:    unlockTime,
		Beneficiary:   beneficiary,
		CreatedAt:     nowMs,
	}

	if err := l.locks.Insert(ctx, lock); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			// Same asset, beneficiary, unlock time and amount: the
			// escrow already exists, nothing more to hold.
			return lockID, nil
		}
		return "", fmt.Errorf("insert lock: %w", err)
	}

	l.logger.Printf("locked %s receipt units of %s until %d for %s (lock %s)",
		domain.FormatAmount(amount), asset, unlockTime, beneficiary, lockID)
	observability.RecordLockCreated()
	l.emitter.Emit(ctx, &domain.SettlementEvent{
		EventID:   idhash.ComputeEventID(domain.EventLiquidityLocked, asset, beneficiary, lockID, nowMs),
		Kind:      domain.EventLiquidityLocked,
		Asset:     asset,
		Account:   beneficiary,
		LockID:    lockID,
		AmountOut: new(uint256.Int).Set(amount),
		Timestamp: nowMs,
	})
	return lockID, nil
}

// Release pays out a matured lock to its beneficiary. Only the beneficiary
// may call it, and only at or after the unlock time. Returns the released
// amount.
func (l *Locker) Release(
	ctx context.Context,
	caller domain.AccountID,
	lockID string,
) (*uint256.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, err := l.locks.GetByID(ctx, lockID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, domain.ErrLockNotFound
		}
		return nil, fmt.Errorf("get lock: %w", err)
	}

	if caller != lock.Beneficiary {
		return nil, domain.ErrUnauthorized
	}
	if lock.Released {
		return nil, domain.ErrAlreadyReleased
	}

	nowMs := l.now().UnixMilli()
	if nowMs < lock.UnlockTime {
		return nil, domain.ErrTooEarly
	}

	amount := new(uint256.Int).Set(lock.ReceiptAmount)
	receiptAsset := domain.ReceiptAsset(lock.Asset)

	// Credit first, then flip the flag as the commit point. A failed credit
	// leaves the lock intact and releasable again; a failed flip rolls the
	// credit back, so funds and flag always move together.
	if err := l.balances.Apply(ctx, []domain.BalanceEntry{
		domain.Credit(lock.Beneficiary, receiptAsset, amount),
	}); err != nil {
		return nil, fmt.Errorf("credit beneficiary: %w", err)
	}

	if err := l.locks.MarkReleased(ctx, lockID, nowMs); err != nil {
		if rbErr := l.balances.Apply(ctx, []domain.BalanceEntry{
			domain.Debit(lock.Beneficiary, receiptAsset, amount),
		}); rbErr != nil {
			l.logger.Printf("lock %s: credit rollback failed: %v", lockID, rbErr)
			return nil, fmt.Errorf("mark released: %w (credit rollback failed: %v)", err, rbErr)
		}
		if errors.Is(err, storage.ErrConflict) {
			return nil, domain.ErrAlreadyReleased
		}
		return nil, fmt.Errorf("mark released: %w", err)
	}

	l.logger.Printf("released lock %s: %s receipt units of %s to %s",
		lockID, domain.FormatAmount(amount), lock.Asset, lock.Beneficiary)
	observability.RecordLockReleased()
	l.emitter.Emit(ctx, &domain.SettlementEvent{
		EventID:   idhash.ComputeEventID(domain.EventLiquidityReleased, lock.Asset, lock.Beneficiary, lockID, nowMs),
		Kind:      domain.EventLiquidityReleased,
		Asset:     lock.Asset,
		Account:   lock.Beneficiary,
		LockID:    lockID,
		AmountOut: new(uint256.Int).Set(amount),
		Timestamp: nowMs,
	})
	return amount, nil
}

// Get retrieves a lock by id.
func (l *Locker) Get(ctx context.Context, lockID string) (*domain.LiquidityLock, error) {
	lock, err := l.locks.GetByID(ctx, lockID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, domain.ErrLockNotFound
		}
		return nil, fmt.Errorf("get lock: %w", err)
	}
	return lock, nil
}

// ListByBeneficiary retrieves all locks held for a beneficiary.
func (l *Locker) ListByBeneficiary(ctx context.Context, beneficiary domain.AccountID) ([]*domain.LiquidityLock, error) {
	return l.locks.GetByBeneficiary(ctx, beneficiary)
}
