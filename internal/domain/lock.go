package domain

import "github.com/holiman/uint256"

// LiquidityLock escrows a pool's liquidity receipt until a fixed unlock time.
// Corresponds to liquidity_locks table in PostgreSQL.
// Released transitions false→true exactly once, only when now >= UnlockTime.
type LiquidityLock struct {
	LockID        string       // PRIMARY KEY, deterministic hash
	Asset         AssetID      // traded asset whose pool the receipt belongs to
	ReceiptAmount *uint256.Int // escrowed liquidity receipt units
	UnlockTime    int64        // Unix timestamp in milliseconds
	Beneficiary   AccountID    // only account allowed to release
	Released      bool
	CreatedAt     int64 // record creation timestamp (ms)
	ReleasedAt    int64 // release timestamp (ms), zero until released
}

// EscrowedAmount returns the balance still held by the lock.
func (l *LiquidityLock) EscrowedAmount() *uint256.Int {
	if l.Released {
		return uint256.NewInt(0)
	}
	return new(uint256.Int).Set(l.ReceiptAmount)
}
