package storage

import "errors"

// Storage errors shared by all backends.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when attempting to insert a record
	// with a key that already exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrConflict is returned when a conditional update found the record
	// in a state that forbids the transition (e.g. releasing a lock twice).
	ErrConflict = errors.New("conditional update conflict")

	// ErrInsufficientFunds is returned when a debit would take a balance
	// below zero. The whole entry batch is rejected.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
