package betting

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/predixio/settle/internal/numeric"
	"github.com/predixio/settle/models"
)

func TestOddsAtBet(t *testing.T) {
	tests := []struct {
		name         string
		outcomePool  uint64
		opposingPool uint64
		want         uint64
	}{
		{"no opposing stake quotes 2x", 0, 0, 20_000},
		{"one sided market quotes 2x", 5_000, 0, 20_000},
		{"balanced pools", 1_000, 1_000, 20_000},
		{"heavy favourite", 3_000, 1_000, 40_000},
		{"heavy underdog", 1_000, 3_000, 13_333},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OddsAtBet(tt.outcomePool, tt.opposingPool)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPotentialPayout(t *testing.T) {
	t.Run("no opposing stake pays double", func(t *testing.T) {
		got, err := PotentialPayout(1_000, 0, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(2_000), got)
	})

	t.Run("proportional to the pool", func(t *testing.T) {
		got, err := PotentialPayout(1_000, 1_000, 1_000, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(2_000), got)
	})

	t.Run("cap rejects outsized liability", func(t *testing.T) {
		_, err := PotentialPayout(1_000, 1_000, 1_000, 1_500)
		assert.ErrorIs(t, err, models.ErrPayoutTooHigh)
	})

	t.Run("zero cap means uncapped", func(t *testing.T) {
		got, err := PotentialPayout(10_000, 90_000, 10_000, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(100_000), got)
	})

	t.Run("wide intermediate does not wrap", func(t *testing.T) {
		// amount*total overflows 64 bits; the widened multiply keeps it exact.
		got, err := PotentialPayout(1<<40, 1<<40, 1<<40, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(1<<41), got)
	})

	t.Run("result too large for 64 bits overflows", func(t *testing.T) {
		_, err := PotentialPayout(math.MaxUint64, 0, 0, 0)
		assert.ErrorIs(t, err, numeric.ErrOverflow)
	})
}

func TestCurrentOdds(t *testing.T) {
	tests := []struct {
		name         string
		totalPool    uint64
		outcomeTotal uint64
		want         uint64
	}{
		{"empty market", 0, 0, 10_000},
		{"unbacked outcome clamps to 1x", 500, 0, 10_000},
		{"dominant outcome clamps to 1x", 1_000, 1_000, 10_000},
		{"quarter of the pool", 4_000, 1_000, 40_000},
		{"rounding truncates", 3_000, 900, 33_333},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CurrentOdds(tt.totalPool, tt.outcomeTotal)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecomputeOdds(t *testing.T) {
	market := &models.Market{
		TotalPool: 4_000,
		Outcomes: []models.Outcome{
			{OutcomeIndex: 0, TotalAmount: 1_000},
			{OutcomeIndex: 1, TotalAmount: 3_000},
		},
	}

	require.NoError(t, RecomputeOdds(market))
	assert.Equal(t, uint64(40_000), market.Outcomes[0].CurrentOddsBps)
	assert.Equal(t, uint64(13_333), market.Outcomes[1].CurrentOddsBps)

	// Same totals, same odds.
	require.NoError(t, RecomputeOdds(market))
	assert.Equal(t, uint64(40_000), market.Outcomes[0].CurrentOddsBps)
	assert.Equal(t, uint64(13_333), market.Outcomes[1].CurrentOddsBps)
}

func TestOpposingPool(t *testing.T) {
	outcomes := []models.Outcome{
		{OutcomeIndex: 0, TotalAmount: 1_000},
		{OutcomeIndex: 1, TotalAmount: 2_000},
		{OutcomeIndex: 2, TotalAmount: 4_000},
	}

	got, err := OpposingPool(outcomes, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(5_000), got)

	_, err = OpposingPool([]models.Outcome{
		{OutcomeIndex: 0, TotalAmount: math.MaxUint64},
		{OutcomeIndex: 1, TotalAmount: 1},
		{OutcomeIndex: 2, TotalAmount: 1},
	}, 0)
	assert.ErrorIs(t, err, numeric.ErrOverflow)
}
