// Package fees computes how a swap fee divides between the token creator and
// the platform treasury. Pure computation: no side effects, safe for
// concurrent use.
package fees

import (
	"fmt"
	"math"

	"github.com/holiman/uint256"

	"memeswap-router/internal/domain"
)

const (
	// BpsDenominator is the basis-point scale: 10000 bps = 100%.
	BpsDenominator = 10000

	// MaxFeeBps is the ceiling on the total swap fee (10%).
	MaxFeeBps = 1000
)

// Default schedule: 5% total fee, 60/40 creator/platform split.
const (
	DefaultTotalFeeBps      = 500
	DefaultCreatorShareBps  = 6000
	DefaultPlatformShareBps = 4000
)

// Parameters is a validated fee schedule. Set at construction, immutable for
// the owning router's lifetime.
type Parameters struct {
	TotalFeeBps      uint16 // fee taken from gross output, in bps
	CreatorShareBps  uint16 // creator's share of the fee pool, in bps
	PlatformShareBps uint16 // platform's share of the fee pool, in bps
}

// NewParameters validates and builds a fee schedule.
// CreatorShareBps + PlatformShareBps must equal 10000 and TotalFeeBps must
// not exceed MaxFeeBps.
func NewParameters(totalFeeBps, creatorShareBps, platformShareBps uint16) (Parameters, error) {
	if totalFeeBps > MaxFeeBps {
		return Parameters{}, fmt.Errorf("total fee %d bps exceeds maximum %d", totalFeeBps, MaxFeeBps)
	}
	if int(creatorShareBps)+int(platformShareBps) != BpsDenominator {
		return Parameters{}, fmt.Errorf("shares must sum to %d bps, got %d+%d",
			BpsDenominator, creatorShareBps, platformShareBps)
	}
	return Parameters{
		TotalFeeBps:      totalFeeBps,
		CreatorShareBps:  creatorShareBps,
		PlatformShareBps: platformShareBps,
	}, nil
}

// NewParametersFromBps validates untyped basis-point values before narrowing
// them, so flag-parsed inputs cannot wrap around the uint16 range and slip
// past validation.
func NewParametersFromBps(totalFeeBps, creatorShareBps, platformShareBps uint) (Parameters, error) {
	for _, v := range []uint{totalFeeBps, creatorShareBps, platformShareBps} {
		if v > math.MaxUint16 {
			return Parameters{}, fmt.Errorf("basis points value %d out of range", v)
		}
	}
	return NewParameters(uint16(totalFeeBps), uint16(creatorShareBps), uint16(platformShareBps))
}

// DefaultParameters returns the stock schedule.
func DefaultParameters() Parameters {
	p, err := NewParameters(DefaultTotalFeeBps, DefaultCreatorShareBps, DefaultPlatformShareBps)
	if err != nil {
		panic(err) // constants are valid
	}
	return p
}

// Compute splits a fee off amountIn.
//
//	fee        = floor(amountIn * TotalFeeBps / 10000)
//	creatorFee = floor(fee * CreatorShareBps / 10000)
//	platformFee = fee - creatorFee
//
// The remainder goes to the platform so the two shares always sum exactly to
// fee. Fails with domain.ErrArithmeticOverflow if amountIn is wider than 128
// bits; intermediates are widened so valid amounts never overflow.
func Compute(amountIn *uint256.Int, p Parameters) (fee, creatorFee, platformFee *uint256.Int, err error) {
	if !domain.AmountFits(amountIn) {
		return nil, nil, nil, domain.ErrArithmeticOverflow
	}

	den := uint256.NewInt(BpsDenominator)

	fee = new(uint256.Int)
	if _, overflow := fee.MulDivOverflow(amountIn, uint256.NewInt(uint64(p.TotalFeeBps)), den); overflow {
		return nil, nil, nil, domain.ErrArithmeticOverflow
	}

	creatorFee = new(uint256.Int)
	if _, overflow := creatorFee.MulDivOverflow(fee, uint256.NewInt(uint64(p.CreatorShareBps)), den); overflow {
		return nil, nil, nil, domain.ErrArithmeticOverflow
	}

	platformFee = new(uint256.Int).Sub(fee, creatorFee)
	return fee, creatorFee, platformFee, nil
}
