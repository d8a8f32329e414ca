package domain

import "errors"

// Protocol errors. Every failure surfaces as one of these distinct kinds so
// callers can tell a retryable condition (new deadline, resubmit) from a
// permanent one (authorization, one-shot invariant).
var (
	// ErrExpired is returned when a request deadline has already passed.
	ErrExpired = errors.New("deadline expired")

	// ErrZeroAmount is returned when an operation is submitted with a zero amount.
	ErrZeroAmount = errors.New("amount cannot be zero")

	// ErrSlippageExceeded is returned when net output falls below the caller's minimum.
	ErrSlippageExceeded = errors.New("output below minimum")

	// ErrVenueExecutionFailed is returned when the upstream venue call failed.
	// No fee is charged and no state is committed.
	ErrVenueExecutionFailed = errors.New("venue execution failed")

	// ErrArithmeticOverflow is returned when fee math would overflow the amount width.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")

	// ErrUnauthorized is returned when the caller lacks the required capability.
	ErrUnauthorized = errors.New("caller not authorized")

	// ErrAlreadyRegistered is returned on a second registration for an asset.
	// Registration is one-shot; rebinding requires an explicit reassign.
	ErrAlreadyRegistered = errors.New("creator already registered for asset")

	// ErrNotRegistered is returned when reassigning an asset that has no creator.
	ErrNotRegistered = errors.New("no creator registered for asset")

	// ErrAlreadyReleased is returned on a second release of a liquidity lock.
	ErrAlreadyReleased = errors.New("lock already released")

	// ErrBootstrapAlreadyDone is returned when a pool was already bootstrapped
	// for the asset.
	ErrBootstrapAlreadyDone = errors.New("pool already bootstrapped for asset")

	// ErrTooEarly is returned when releasing a lock before its unlock time.
	ErrTooEarly = errors.New("lock not yet unlocked")

	// ErrInvalidUnlockTime is returned when a lock's unlock time is not in the future.
	ErrInvalidUnlockTime = errors.New("unlock time must be in the future")

	// ErrLockNotFound is returned when the referenced lock does not exist.
	ErrLockNotFound = errors.New("lock not found")
)

// ErrorKind returns the stable string name of a protocol error, for event
// payloads and API responses. Unknown errors map to "internal".
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrZeroAmount):
		return "zero_amount"
	case errors.Is(err, ErrSlippageExceeded):
		return "slippage_exceeded"
	case errors.Is(err, ErrVenueExecutionFailed):
		return "venue_execution_failed"
	case errors.Is(err, ErrArithmeticOverflow):
		return "arithmetic_overflow"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrAlreadyRegistered):
		return "already_registered"
	case errors.Is(err, ErrNotRegistered):
		return "not_registered"
	case errors.Is(err, ErrAlreadyReleased):
		return "already_released"
	case errors.Is(err, ErrBootstrapAlreadyDone):
		return "bootstrap_already_done"
	case errors.Is(err, ErrTooEarly):
		return "too_early"
	case errors.Is(err, ErrInvalidUnlockTime):
		return "invalid_unlock_time"
	case errors.Is(err, ErrLockNotFound):
		return "lock_not_found"
	default:
		return "internal"
	}
}
