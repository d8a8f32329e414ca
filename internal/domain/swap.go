package domain

import "github.com/holiman/uint256"

// SwapRequest describes one base-asset swap against a registered token.
// Ephemeral: exists only for the duration of one call.
type SwapRequest struct {
	Asset        AssetID      // token being bought
	AmountIn     *uint256.Int // base-asset units submitted to the venue
	MinAmountOut *uint256.Int // minimum acceptable net output, after fees
	Deadline     int64        // Unix timestamp in milliseconds
}

// SwapResult reports a settled swap.
// Invariants: FeeAmount == CreatorFee + PlatformFee, FeeAmount <= GrossOut.
type SwapResult struct {
	SettlementID string       // deterministic settlement hash
	AmountOut    *uint256.Int // net amount credited to the trader
	FeeAmount    *uint256.Int // total fee deducted from gross output
	CreatorFee   *uint256.Int // portion routed to the creator (or platform if unregistered)
	PlatformFee  *uint256.Int // portion routed to the platform treasury
	GrossOut     *uint256.Int // venue's realized output before fees
	QuotedOut    *uint256.Int // venue's advisory quote; never used for fee math
}

// QuoteResult is the venue's advisory estimate for a swap.
type QuoteResult struct {
	AmountOut *uint256.Int
}
