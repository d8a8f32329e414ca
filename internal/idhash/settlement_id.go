package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"memeswap-router/internal/domain"
)

// ComputeSettlementID computes a deterministic settlement_id using SHA256.
// Formula: SHA256(asset|trader|nonce|settled_at)
// The nonce is the router's per-process swap counter; combined with the
// timestamp it keeps IDs unique across restarts.
// Returns hex-encoded hash (64 characters).
func ComputeSettlementID(
	asset domain.AssetID,
	trader domain.AccountID,
	nonce uint64,
	settledAt int64,
) string {
	data := fmt.Sprintf("%s|%s|%d|%d",
		asset,
		trader,
		nonce,
		settledAt,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ComputeEventID computes a deterministic event_id using SHA256.
// Formula: SHA256(kind|asset|account|lock_id|timestamp)
func ComputeEventID(
	kind domain.EventKind,
	asset domain.AssetID,
	account domain.AccountID,
	lockID string,
	timestamp int64,
) string {
	data := fmt.Sprintf("%s|%s|%s|%s|%d",
		kind,
		asset,
		account,
		lockID,
		timestamp,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
