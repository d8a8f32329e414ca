package domain

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// AccountID identifies an account that can send or receive the base asset,
// creator fees, or liquidity receipts. Encoded as base58 of a 32-byte
// ed25519 public key.
type AccountID string

// AssetID identifies a fungible asset (the native base asset or a registered
// token). Encoded as base58 of 32 bytes. Immutable once assigned.
type AssetID string

// ParseAccountID validates and normalizes an account identifier.
// The encoded bytes must decode to a valid ed25519 curve point.
func ParseAccountID(s string) (AccountID, error) {
	decoded, err := base58.Decode(s)
	if err != nil {
		return "", fmt.Errorf("decode account id: %w", err)
	}
	if len(decoded) != 32 {
		return "", fmt.Errorf("account id must decode to 32 bytes, got %d", len(decoded))
	}
	if _, err := new(edwards25519.Point).SetBytes(decoded); err != nil {
		return "", fmt.Errorf("account id is not a valid curve point: %w", err)
	}
	return AccountID(s), nil
}

// ParseAssetID validates and normalizes an asset identifier.
// Assets are 32-byte identifiers; unlike accounts they are not required to be
// curve points (derived receipt assets are hash-based).
func ParseAssetID(s string) (AssetID, error) {
	decoded, err := base58.Decode(s)
	if err != nil {
		return "", fmt.Errorf("decode asset id: %w", err)
	}
	if len(decoded) != 32 {
		return "", fmt.Errorf("asset id must decode to 32 bytes, got %d", len(decoded))
	}
	return AssetID(s), nil
}

// IsZero reports whether the account id is unset.
func (a AccountID) IsZero() bool { return a == "" }

// IsZero reports whether the asset id is unset.
func (a AssetID) IsZero() bool { return a == "" }
