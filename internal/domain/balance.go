package domain

import "github.com/holiman/uint256"

// EntryDirection is the sign of a balance entry.
type EntryDirection string

// Balance entry directions.
const (
	EntryCredit EntryDirection = "credit"
	EntryDebit  EntryDirection = "debit"
)

// BalanceEntry is one leg of an atomic balance mutation. Settlement and
// release apply groups of entries all-or-nothing.
type BalanceEntry struct {
	Account   AccountID
	Asset     AssetID
	Amount    *uint256.Int
	Direction EntryDirection
}

// Credit builds a credit entry.
func Credit(account AccountID, asset AssetID, amount *uint256.Int) BalanceEntry {
	return BalanceEntry{Account: account, Asset: asset, Amount: amount, Direction: EntryCredit}
}

// Debit builds a debit entry.
func Debit(account AccountID, asset AssetID, amount *uint256.Int) BalanceEntry {
	return BalanceEntry{Account: account, Asset: asset, Amount: amount, Direction: EntryDebit}
}
