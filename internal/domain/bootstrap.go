package domain

import "github.com/holiman/uint256"

// PoolBootstrap records the one-shot seeding of a trading pool.
// Corresponds to pool_bootstraps table in PostgreSQL.
// Existence of a row is the "already done" flag for the asset.
type PoolBootstrap struct {
	Asset          AssetID // PRIMARY KEY
	PoolAddress    string  // venue-assigned pool identity
	LockID         string  // liquidity lock holding the initial receipt
	AssetDeposited *uint256.Int
	BaseDeposited  *uint256.Int
	ReceiptAmount  *uint256.Int
	CompletedAt    int64 // Unix timestamp in milliseconds
}
