package domain

import (
	"crypto/sha256"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/mr-tron/base58"
)

// Amounts are unsigned integers in the smallest unit of their asset, capped
// at 128 bits. uint256.Int carries them so fee math can widen intermediates
// without overflowing.

// MaxAmountBits is the maximum width of any amount.
const MaxAmountBits = 128

// ParseAmount parses a decimal string into an amount. Returns an error for
// negative, malformed, or wider-than-128-bit values.
func ParseAmount(s string) (*uint256.Int, error) {
	v := new(uint256.Int)
	if err := v.SetFromDecimal(s); err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if v.BitLen() > MaxAmountBits {
		return nil, fmt.Errorf("amount %q exceeds 128 bits", s)
	}
	return v, nil
}

// FormatAmount renders an amount as a decimal string. Nil renders as "0".
func FormatAmount(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}

// AmountFits reports whether v is a representable amount.
func AmountFits(v *uint256.Int) bool {
	return v != nil && v.BitLen() <= MaxAmountBits
}

// ReceiptAsset derives the asset id of the liquidity receipt minted when a
// pool is created for the given traded asset. The derivation is deterministic
// so the locker and the ledger agree without coordination.
func ReceiptAsset(asset AssetID) AssetID {
	hash := sha256.Sum256([]byte("liquidity-receipt|" + string(asset)))
	return AssetID(base58.Encode(hash[:]))
}
