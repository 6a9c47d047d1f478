package liquidity

import (
	"github.com/predixio/settle/internal/numeric"
	"github.com/predixio/settle/models"
)

// InitialShares prices the first deposit into an empty pool. The geometric
// mean of the two amounts, floored at MinLiquidityShares, keeps the share
// price from degenerating on tiny seeds.
func InitialShares(amountA, amountB uint64) uint64 {
	return numeric.Max(models.MinLiquidityShares, numeric.SqrtProduct(amountA, amountB))
}

// SubsequentShares prices a deposit into a live pool. The scarcer side of
// the deposit binds: a lopsided deposit cannot mint more than its weaker
// ratio justifies.
func SubsequentShares(amountA, amountB, supply, reserveA, reserveB uint64) (uint64, error) {
	if supply == 0 || reserveA == 0 || reserveB == 0 {
		return 0, models.ErrEmptyPool
	}
	byA, err := numeric.MulDiv(amountA, supply, reserveA)
	if err != nil {
		return 0, err
	}
	byB, err := numeric.MulDiv(amountB, supply, reserveB)
	if err != nil {
		return 0, err
	}
	return numeric.Min(byA, byB), nil
}

// WithdrawalAmounts converts burned shares into the proportional slice of
// each reserve.
func WithdrawalAmounts(reserveA, reserveB, shares, supply uint64) (uint64, uint64, error) {
	if supply == 0 {
		return 0, 0, models.ErrEmptyPool
	}
	if shares == 0 || shares > supply {
		return 0, 0, models.ErrInsufficientLpTokens
	}
	outA, err := numeric.MulDiv(reserveA, shares, supply)
	if err != nil {
		return 0, 0, err
	}
	outB, err := numeric.MulDiv(reserveB, shares, supply)
	if err != nil {
		return 0, 0, err
	}
	return outA, outB, nil
}

// WithdrawalFee splits a gross withdrawal into the net amount paid out and
// the fee retained by the pool. Fees apply only while the market is still
// taking bets; a resolved or cancelled market pays out whole.
func WithdrawalFee(gross uint64, feeBps uint32, marketActive bool) (uint64, uint64, error) {
	if !marketActive {
		return gross, 0, nil
	}
	fee, err := numeric.BpsOf(gross, feeBps)
	if err != nil {
		return 0, 0, err
	}
	return gross - fee, fee, nil
}
