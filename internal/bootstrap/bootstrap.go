// Package bootstrap seeds new trading pools on the venue and locks the
// minted liquidity receipt. Bootstrapping is one-shot per asset: the stored
// record doubles as the done flag.
package bootstrap

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
	"memeswap-router/internal/venue"
)

// DefaultUnlockDelay is how long the initial liquidity receipt stays locked.
const DefaultUnlockDelay = 30 * 24 * time.Hour

// ReceiptLocker is the slice of the liquidity locker the bootstrapper needs.
type ReceiptLocker interface {
	Lock(
		ctx context.Context,
		caller domain.AccountID,
		asset domain.AssetID,
		amount *uint256.Int,
		unlockTime int64,
		beneficiary domain.AccountID,
	) (string, error)
}

// Request describes one pool seeding. Min amounts are floors on what the
// venue actually takes; a venue that takes less fails the bootstrap.
type Request struct {
	Asset              domain.AssetID
	InitialAssetAmount *uint256.Int
	InitialBaseAmount  *uint256.Int
	MinAssetAmount     *uint256.Int
	MinBaseAmount      *uint256.Int
	Beneficiary        domain.AccountID // receives the receipt when the lock matures
	Deadline           int64            // Unix timestamp in milliseconds
}

// Bootstrapper creates pools and escrows their initial liquidity.
type Bootstrapper struct {
	venue   venue.Client
	locker  ReceiptLocker
	store   storage.BootstrapStore
	emitter events.Emitter
	logger  *log.Logger

	admin domain.AccountID
	// service is the account the bootstrapper locks receipts under; it must
	// be the locker's authorized depositor.
	service     domain.AccountID
	unlockDelay time.Duration
	now         func() time.Time

	mu sync.Mutex
}

// New creates a pool bootstrapper. A non-positive unlockDelay falls back to
// DefaultUnlockDelay.
func New(
	venueClient venue.Client,
	locker ReceiptLocker,
	store storage.BootstrapStore,
	admin domain.AccountID,
	service domain.AccountID,
	unlockDelay time.Duration,
	emitter events.Emitter,
	logger *log.Logger,
) *Bootstrapper {
	if unlockDelay <= 0 {
		unlockDelay = DefaultUnlockDelay
	}
	return &Bootstrapper{
		venue:       venueClient,
		locker:      locker,
		store:       store,
		emitter:     emitter,
		logger:      logger,
		admin:       admin,
		service:     service,
		unlockDelay: unlockDelay,
		now:         time.Now,
	}
}

// Bootstrap seeds the pool for req.Asset, locks the minted receipt and
// records the completion. Admin only.
func (b *Bootstrapper) Bootstrap(ctx context.Context, caller domain.AccountID, req *Request) (*domain.PoolBootstrap, error) {
	if caller != b.admin {
		return nil, domain.ErrUnauthorized
	}
	if err := b.validate(req); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	existing, err := b.store.GetByAsset(ctx, req.Asset)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("get bootstrap: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrBootstrapAlreadyDone
	}

	started := b.now()
	pool, err := b.venue.CreatePool(ctx, req.Asset, req.InitialAssetAmount, req.InitialBaseAmount)
	observability.RecordVenueCall("venue_createPool", b.now().Sub(started).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("%w: create pool: %w", domain.ErrVenueExecutionFailed, err)
	}

	// Both deposit floors are checked against what the venue reports it
	// actually took.
	if req.MinAssetAmount != nil && pool.AssetDeposited.Lt(req.MinAssetAmount) {
		return nil, domain.ErrSlippageExceeded
	}
	if req.MinBaseAmount != nil && pool.BaseDeposited.Lt(req.MinBaseAmount) {
		return nil, domain.ErrSlippageExceeded
	}

	nowMs := b.now().UnixMilli()
	unlockTime := nowMs + b.unlockDelay.Milliseconds()
	lockID, err := b.locker.Lock(ctx, b.service, req.Asset, pool.ReceiptAmount, unlockTime, req.Beneficiary)
	if err != nil {
		return nil, fmt.Errorf("lock receipt: %w", err)
	}

	record := &domain.PoolBootstrap{
		Asset:          req.Asset,
		PoolAddress:    pool.PoolAddress,
		LockID:         lockID,
		AssetDeposited: pool.AssetDeposited,
		BaseDeposited:  pool.BaseDeposited,
		ReceiptAmount:  pool.ReceiptAmount,
		CompletedAt:    nowMs,
	}
	// The done flag lands only after the receipt is safely escrowed.
	if err := b.store.Insert(ctx, record); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, domain.ErrBootstrapAlreadyDone
		}
		return nil, fmt.Errorf("insert bootstrap: %w", err)
	}

	b.logger.Printf("bootstrapped pool %s for asset %s: deposited %s/%s, receipt %s locked until %d",
		pool.PoolAddress, req.Asset,
		domain.FormatAmount(pool.AssetDeposited), domain.FormatAmount(pool.BaseDeposited),
		domain.FormatAmount(pool.ReceiptAmount), unlockTime)
	observability.RecordPoolBootstrapped()
	b.emitter.Emit(ctx, &domain.SettlementEvent{
		EventID:   idhash.ComputeEventID(domain.EventPoolBootstrapped, req.Asset, req.Beneficiary, lockID, nowMs),
		Kind:      domain.EventPoolBootstrapped,
		Asset:     req.Asset,
		Account:   req.Beneficiary,
		LockID:    lockID,
		AmountOut: new(uint256.Int).Set(pool.ReceiptAmount),
		Timestamp: nowMs,
	})
	return record, nil
}

// Get retrieves the bootstrap record for an asset.
func (b *Bootstrapper) Get(ctx context.Context, asset domain.AssetID) (*domain.PoolBootstrap, error) {
	record, err := b.store.GetByAsset(ctx, asset)
	if err != nil {
		return nil, fmt.Errorf("get bootstrap: %w", err)
	}
	return record, nil
}

func (b *Bootstrapper) validate(req *Request) error {
	if req.InitialAssetAmount == nil || req.InitialAssetAmount.IsZero() {
		return domain.ErrZeroAmount
	}
	if req.InitialBaseAmount == nil || req.InitialBaseAmount.IsZero() {
		return domain.ErrZeroAmount
	}
	if b.now().UnixMilli() > req.Deadline {
		return domain.ErrExpired
	}
	return nil
}
