// Package venue is the boundary to the upstream AMM this subsystem routes
// through. The venue is opaque: it quotes, executes swaps, and creates pools;
// curve math and custody live entirely on its side.
package venue

import (
	"context"

	"github.com/holiman/uint256"

	"memeswap-router/internal/domain"
)

// Client defines the upstream venue interface.
type Client interface {
	// Quote returns the venue's advisory output estimate for amountIn of the
	// base asset against the given token. Never trusted for settlement.
	Quote(ctx context.Context, asset domain.AssetID, amountIn *uint256.Int) (*domain.QuoteResult, error)

	// ExecuteSwap submits amountIn of the base asset for execution and
	// returns the realized gross output. All-or-nothing on the venue side.
	ExecuteSwap(ctx context.Context, asset domain.AssetID, amountIn *uint256.Int) (*ExecResult, error)

	// CreatePool seeds a new pool with initial token and base-asset amounts
	// and returns the minted liquidity receipt.
	CreatePool(ctx context.Context, asset domain.AssetID, assetAmount, baseAmount *uint256.Int) (*PoolResult, error)
}

// ExecResult is the venue's report of an executed swap.
type ExecResult struct {
	GrossOut *uint256.Int // realized output before this subsystem's fees
}

// PoolResult is the venue's report of a pool creation.
type PoolResult struct {
	PoolAddress    string
	AssetDeposited *uint256.Int // token units the venue actually took
	BaseDeposited  *uint256.Int // base-asset units the venue actually took
	ReceiptAmount  *uint256.Int // liquidity receipt minted to the caller
}
