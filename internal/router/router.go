// Package router executes fee-splitting swaps against the upstream venue.
// A swap runs as a state machine: validate, quote, execute, settle. Fees are
// charged on the realized gross output, never on the advisory quote, and no
// fee is taken when execution fails.
package router

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/holiman/uint256"

	"memeswap-router/internal/domain"
	"memeswap-router/internal/events"
	"memeswap-router/internal/fees"
	"memeswap-router/internal/idhash"
	"memeswap-router/internal/observability"
	"memeswap-router/internal/storage"
	"memeswap-router/internal/venue"
)

// CreatorResolver resolves the fee destination for an asset's creator share.
// The registry implements it; found is false for unregistered assets.
type CreatorResolver interface {
	Lookup(ctx context.Context, asset domain.AssetID) (domain.AccountID, bool, error)
}

// Router routes swaps through the venue and settles the proceeds. Swaps on
// the same asset are serialized; swaps on different assets run concurrently.
type Router struct {
	venue    venue.Client
	params   fees.Parameters
	creators CreatorResolver
	balances storage.BalanceStore
	emitter  events.Emitter
	logger   *log.Logger

	// treasury receives the platform fee share, and the creator share too
	// when the asset has no registered creator.
	treasury domain.AccountID
	now      func() time.Time

	assetLocks sync.Map // domain.AssetID -> *sync.Mutex
	nonce      atomic.Uint64
}

// New creates a swap router with a validated fee schedule.
func New(
	venueClient venue.Client,
	params fees.Parameters,
	creators CreatorResolver,
	balances storage.BalanceStore,
	treasury domain.AccountID,
	emitter events.Emitter,
	logger *log.Logger,
) *Router {
	return &Router{
		venue:    venueClient,
		params:   params,
		creators: creators,
		balances: balances,
		emitter:  emitter,
		logger:   logger,
		treasury: treasury,
		now:      time.Now,
	}
}

// Parameters returns the router's fee schedule.
func (r *Router) Parameters() fees.Parameters {
	return r.params
}

// Quote returns the venue's advisory output estimate for a swap, net of the
// fee the schedule would charge on it. Callers must not treat the result as
// a settlement promise.
func (r *Router) Quote(ctx context.Context, asset domain.AssetID, amountIn *uint256.Int) (*domain.QuoteResult, error) {
	if amountIn == nil || amountIn.IsZero() {
		return nil, domain.ErrZeroAmount
	}

	quote, err := r.venue.Quote(ctx, asset, amountIn)
	if err != nil {
		return nil, fmt.Errorf("%w: quote: %w", domain.ErrVenueExecutionFailed, err)
	}

	fee, _, _, err := fees.Compute(quote.AmountOut, r.params)
	if err != nil {
		return nil, err
	}
	return &domain.QuoteResult{
		AmountOut: new(uint256.Int).Sub(quote.AmountOut, fee),
	}, nil
}

// Swap executes req for the trader and settles the proceeds. On success the
// trader is credited the net output and the fee shares are credited to the
// creator and the platform treasury in the same atomic batch.
func (r *Router) Swap(ctx context.Context, trader domain.AccountID, req *domain.SwapRequest) (*domain.SwapResult, error) {
	if err := r.validate(req); err != nil {
		observability.RecordSwapFailed(domain.ErrorKind(err))
		return nil, err
	}

	// One swap per asset at a time. The venue sees a consistent pool state
	// and the quote-vs-execute comparison stays meaningful.
	mu := r.assetLock(req.Asset)
	mu.Lock()
	defer mu.Unlock()

	result, err := r.swapLocked(ctx, trader, req)
	if err != nil {
		observability.RecordSwapFailed(domain.ErrorKind(err))
		return nil, err
	}

	observability.RecordSwapSettled(float64(r.now().Unix()))
	observability.RecordSwapVolume(amountFloat(req.AmountIn), amountFloat(result.FeeAmount))
	return result, nil
}

func (r *Router) validate(req *domain.SwapRequest) error {
	// Deadline wins over every other complaint: a stale request is rejected
	// as expired no matter what else is wrong with it.
	if r.now().UnixMilli() > req.Deadline {
		return domain.ErrExpired
	}
	if req.AmountIn == nil || req.AmountIn.IsZero() {
		return domain.ErrZeroAmount
	}
	if !domain.AmountFits(req.AmountIn) {
		return domain.ErrArithmeticOverflow
	}
	return nil
}

func (r *Router) swapLocked(ctx context.Context, trader domain.AccountID, req *domain.SwapRequest) (*domain.SwapResult, error) {
	started := r.now()
	quote, err := r.venue.Quote(ctx, req.Asset, req.AmountIn)
	observability.RecordVenueCall("venue_quote", r.now().Sub(started).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("%w: quote: %w", domain.ErrVenueExecutionFailed, err)
	}

	started = r.now()
	exec, err := r.venue.ExecuteSwap(ctx, req.Asset, req.AmountIn)
	observability.RecordVenueCall("venue_executeSwap", r.now().Sub(started).Seconds(), err)
	if err != nil {
		// Nothing moved: no fee, no credits.
		return nil, fmt.Errorf("%w: execute: %w", domain.ErrVenueExecutionFailed, err)
	}

	if !quote.AmountOut.IsZero() {
		ratio := amountFloat(exec.GrossOut) / amountFloat(quote.AmountOut)
		observability.RecordQuoteDeviation(ratio)
	}

	return r.settle(ctx, trader, req, quote.AmountOut, exec.GrossOut)
}

// settle charges the fee on the realized gross output, enforces the trader's
// slippage floor and credits all three parties atomically.
func (r *Router) settle(
	ctx context.Context,
	trader domain.AccountID,
	req *domain.SwapRequest,
	quotedOut *uint256.Int,
	grossOut *uint256.Int,
) (*domain.SwapResult, error) {
	fee, creatorFee, platformFee, err := fees.Compute(grossOut, r.params)
	if err != nil {
		return nil, err
	}

	netOut := new(uint256.Int).Sub(grossOut, fee)
	if req.MinAmountOut != nil && netOut.Lt(req.MinAmountOut) {
		// Bounds are checked before any balance moves.
		return nil, domain.ErrSlippageExceeded
	}

	creator, registered, err := r.creators.Lookup(ctx, req.Asset)
	if err != nil {
		return nil, fmt.Errorf("resolve creator: %w", err)
	}
	if !registered {
		// No creator on record: the whole fee stays with the platform.
		platformFee = new(uint256.Int).Add(platformFee, creatorFee)
		creatorFee = uint256.NewInt(0)
		creator = r.treasury
	}

	entries := make([]domain.BalanceEntry, 0, 3)
	if !netOut.IsZero() {
		entries = append(entries, domain.Credit(trader, req.Asset, netOut))
	}
	if !creatorFee.IsZero() {
		entries = append(entries, domain.Credit(creator, req.Asset, creatorFee))
	}
	if !platformFee.IsZero() {
		entries = append(entries, domain.Credit(r.treasury, req.Asset, platformFee))
	}
	if err := r.balances.Apply(ctx, entries); err != nil {
		return nil, fmt.Errorf("apply settlement: %w", err)
	}

	settledAt := r.now().UnixMilli()
	settlementID := idhash.ComputeSettlementID(req.Asset, trader, r.nonce.Add(1), settledAt)

	r.logger.Printf("settled swap %s: asset=%s in=%s gross=%s net=%s fee=%s",
		settlementID, req.Asset, domain.FormatAmount(req.AmountIn),
		domain.FormatAmount(grossOut), domain.FormatAmount(netOut), domain.FormatAmount(fee))
	r.emitter.Emit(ctx, &domain.SettlementEvent{
		EventID:     settlementID,
		Kind:        domain.EventSwapSettled,
		Asset:       req.Asset,
		Account:     trader,
		AmountIn:    new(uint256.Int).Set(req.AmountIn),
		AmountOut:   new(uint256.Int).Set(netOut),
		CreatorFee:  new(uint256.Int).Set(creatorFee),
		PlatformFee: new(uint256.Int).Set(platformFee),
		Timestamp:   settledAt,
	})

	return &domain.SwapResult{
		SettlementID: settlementID,
		AmountOut:    netOut,
		FeeAmount:    fee,
		CreatorFee:   creatorFee,
		PlatformFee:  platformFee,
		GrossOut:     grossOut,
		QuotedOut:    quotedOut,
	}, nil
}

func (r *Router) assetLock(asset domain.AssetID) *sync.Mutex {
	if mu, ok := r.assetLocks.Load(asset); ok {
		return mu.(*sync.Mutex)
	}
	mu, _ := r.assetLocks.LoadOrStore(asset, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func amountFloat(a *uint256.Int) float64 {
	if a == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(a.ToBig()).Float64()
	return f
}
