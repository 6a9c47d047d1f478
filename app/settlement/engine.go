package settlement

import (
	"github.com/predixio/settle/internal/numeric"
	"github.com/predixio/settle/models"
)

// Accounting is the fee sweep and payout ratio fixed at resolution time.
// Per-claim payouts later derive from RatioBps alone; fees are never
// deducted a second time.
type Accounting struct {
	TotalPool   uint64
	ProtocolFee uint64
	CreatorFee  uint64
	WinningPool uint64

	// Remaining is what the winners share.
	Remaining uint64

	// RatioBps is zero when nobody backed the winning outcome; the
	// remaining pool is then retained by the protocol.
	RatioBps uint64
}

// Settle computes the resolution accounting from the final pool state.
func Settle(totalPool, winningPool uint64, platformFeeBps, creatorFeeBps uint32) (*Accounting, error) {
	protocolFee, err := numeric.BpsOf(totalPool, platformFeeBps)
	if err != nil {
		return nil, err
	}
	creatorFee, err := numeric.BpsOf(totalPool, creatorFeeBps)
	if err != nil {
		return nil, err
	}
	fees, err := numeric.Add(protocolFee, creatorFee)
	if err != nil {
		return nil, err
	}
	remaining, err := numeric.Sub(totalPool, fees)
	if err != nil {
		return nil, err
	}

	acc := &Accounting{
		TotalPool:   totalPool,
		ProtocolFee: protocolFee,
		CreatorFee:  creatorFee,
		WinningPool: winningPool,
		Remaining:   remaining,
	}
	if winningPool > 0 {
		acc.RatioBps, err = numeric.MulDiv(remaining, numeric.BpsDenominator, winningPool)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// ClaimPayout converts a winning stake into its share of the settled pool.
func ClaimPayout(stake, ratioBps uint64) (uint64, error) {
	return numeric.MulDiv(stake, ratioBps, numeric.BpsDenominator)
}

// PositionPayout returns what one position is owed under the resolved
// market. Losing positions are owed nothing but still claimable, which
// burns their claim flag.
func PositionPayout(position *models.Position, winningOutcome uint8, ratioBps uint64) (uint64, error) {
	if position.OutcomeIndex != winningOutcome {
		return 0, nil
	}
	return ClaimPayout(position.Amount, ratioBps)
}
