package domain

import "github.com/holiman/uint256"

// EventKind identifies a settlement event type.
type EventKind string

// Event kinds emitted for collaborators.
const (
	EventSwapSettled       EventKind = "swap_settled"
	EventCreatorRegistered EventKind = "creator_registered"
	EventCreatorReassigned EventKind = "creator_reassigned"
	EventLiquidityLocked   EventKind = "liquidity_locked"
	EventLiquidityReleased EventKind = "liquidity_released"
	EventPoolBootstrapped  EventKind = "pool_bootstrapped"
)

// SettlementEvent is the audit record emitted after a state-changing
// operation commits. Corresponds to settlement_events table in ClickHouse.
// Amount fields are zero where they do not apply to the kind.
type SettlementEvent struct {
	EventID     string    // deterministic hash
	Kind        EventKind
	Asset       AssetID
	Account     AccountID    // trader, creator, or beneficiary depending on kind
	LockID      string       // set for lock/release/bootstrap events
	AmountIn    *uint256.Int // swap input (swap_settled)
	AmountOut   *uint256.Int // net output, released amount, or locked amount
	CreatorFee  *uint256.Int
	PlatformFee *uint256.Int
	Timestamp   int64 // Unix timestamp in milliseconds
}
