package models

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeBet(id int64, amount int64) *Bet {
	return &Bet{ID: id, Amount: amount, Status: BetStatusPending}
}

func TestDistributeWinnings_SingleWinnerTakesPot(t *testing.T) {
	winners := []*Bet{makeBet(1, 100)}
	losers := []*Bet{makeBet(2, 300)}

	payouts, pot := DistributeWinnings(winners, losers)

	require.Len(t, payouts, 1)
	assert.Equal(t, int64(300), pot)
	// stake back plus the full losing pool
	assert.Equal(t, int64(400), payouts[1])
}

func TestDistributeWinnings_ProRataWithFloor(t *testing.T) {
	winners := []*Bet{makeBet(1, 100), makeBet(2, 200)}
	losers := []*Bet{makeBet(3, 100)}

	payouts, pot := DistributeWinnings(winners, losers)

	assert.Equal(t, int64(100), pot)
	// 100 + floor(100*100/300) = 133, 200 + floor(100*200/300) = 266
	assert.Equal(t, int64(133), payouts[1])
	assert.Equal(t, int64(266), payouts[2])

	// one credit of rounding loss is forfeited, never over-paid
	var bonus int64
	for id, p := range payouts {
		if id == 1 {
			bonus += p - 100
		} else {
			bonus += p - 200
		}
	}
	assert.Equal(t, int64(99), bonus)
}

func TestDistributeWinnings_NoLosersPaysNothing(t *testing.T) {
	winners := []*Bet{makeBet(1, 100), makeBet(2, 50)}

	payouts, pot := DistributeWinnings(winners, nil)

	assert.Equal(t, int64(0), pot)
	// stakes are not refunded through the winnings path
	assert.Equal(t, int64(0), payouts[1])
	assert.Equal(t, int64(0), payouts[2])
}

func TestDistributeWinnings_NoWinners(t *testing.T) {
	losers := []*Bet{makeBet(1, 100)}

	payouts, pot := DistributeWinnings(nil, losers)

	assert.Empty(t, payouts)
	assert.Equal(t, int64(100), pot)
}

// The bonus credited to winners must never exceed the pooled losing stakes,
// for any split of stakes between winners and losers.
func TestDistributeWinnings_Conservation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 500; trial++ {
		var winners, losers []*Bet
		var id int64
		n := 1 + rng.Intn(30)
		for i := 0; i < n; i++ {
			id++
			bet := makeBet(id, int64(10+rng.Intn(491)))
			if rng.Intn(2) == 0 {
				winners = append(winners, bet)
			} else {
				losers = append(losers, bet)
			}
		}

		payouts, pot := DistributeWinnings(winners, losers)

		var totalBonus int64
		for _, w := range winners {
			payout := payouts[w.ID]
			require.GreaterOrEqual(t, payout, int64(0))
			if payout > 0 {
				require.GreaterOrEqual(t, payout, w.Amount, "winner must get stake back when pot is non-empty")
				totalBonus += payout - w.Amount
			}
		}
		require.LessOrEqual(t, totalBonus, pot, "payouts must never exceed the losing pool")
	}
}
