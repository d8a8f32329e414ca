package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"memeswap-router/internal/domain"
)

// ComputeLockID computes a deterministic lock_id using SHA256.
// Formula: SHA256(asset|beneficiary|unlock_time|receipt_amount)
// Returns hex-encoded hash (64 characters).
func ComputeLockID(
	asset domain.AssetID,
	beneficiary domain.AccountID,
	unlockTime int64,
	receiptAmount string,
) string {
	data := fmt.Sprintf("%s|%s|%d|%s",
		asset,
		beneficiary,
		unlockTime,
		receiptAmount,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
