package betting

import (
	"github.com/predixio/settle/internal/numeric"
	"github.com/predixio/settle/models"
)

// OpposingPool sums the stake on every outcome except the given index.
func OpposingPool(outcomes []models.Outcome, index uint8) (uint64, error) {
	var total uint64
	var err error
	for i := range outcomes {
		if outcomes[i].OutcomeIndex == index {
			continue
		}
		total, err = numeric.Add(total, outcomes[i].TotalAmount)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}

// OddsAtBet returns the informational odds multiplier, in basis points,
// captured on a position at bet time. With no opposing stake the bet is
// quoted at 2.0x.
func OddsAtBet(outcomePool, opposingPool uint64) (uint64, error) {
	if opposingPool == 0 {
		return 2 * numeric.BpsDenominator, nil
	}
	total, err := numeric.Add(outcomePool, opposingPool)
	if err != nil {
		return 0, err
	}
	return numeric.MulDiv(total, numeric.BpsDenominator, opposingPool)
}

// PotentialPayout bounds the worst-case liability a single bet can create.
// The quote uses the pools as they stand before the stake is applied.
// A maxPayout of zero means no cap.
func PotentialPayout(amount, outcomePool, opposingPool, maxPayout uint64) (uint64, error) {
	var payout uint64
	var err error
	if opposingPool == 0 {
		payout, err = numeric.Mul(amount, 2)
	} else {
		var total uint64
		total, err = numeric.Add(outcomePool, opposingPool)
		if err != nil {
			return 0, err
		}
		payout, err = numeric.MulDiv(amount, total, opposingPool)
	}
	if err != nil {
		return 0, err
	}
	if maxPayout > 0 && payout > maxPayout {
		return 0, models.ErrPayoutTooHigh
	}
	return payout, nil
}

// CurrentOdds derives an outcome's displayed odds from pool totals. When the
// outcome holds the whole pool, or nothing has been staked on it yet, the
// odds clamp to 1.0x rather than quoting an extreme ratio.
func CurrentOdds(totalPool, outcomeTotal uint64) (uint64, error) {
	if outcomeTotal == 0 || totalPool <= outcomeTotal {
		return numeric.BpsDenominator, nil
	}
	return numeric.MulDiv(totalPool, numeric.BpsDenominator, outcomeTotal)
}

// RecomputeOdds refreshes CurrentOddsBps on every outcome from the market's
// pool totals. Pure in its inputs: the same totals always produce the same
// odds.
func RecomputeOdds(market *models.Market) error {
	for i := range market.Outcomes {
		odds, err := CurrentOdds(market.TotalPool, market.Outcomes[i].TotalAmount)
		if err != nil {
			return err
		}
		market.Outcomes[i].CurrentOddsBps = odds
	}
	return nil
}
