package models

// SettlementResult aggregates the outcome of settling one (round, subRound)
type SettlementResult struct {
	Round       int
	SubRound    int
	Answer      string
	Winners     int
	Losers      int
	TotalPayout int64 // pooled losing stakes redistributed to winners
}

// DistributeWinnings computes the pari-mutuel payout for each winning bet:
// the winner's own stake back plus a share of the pooled losing stakes,
// pro-rata by stake with floor division. Flooring guarantees the payouts
// never exceed stakes-in; the remainder is forfeited, not redistributed.
//
// When there are no losers the pot is zero and every winner's payout is zero:
// stakes are not refunded through the winnings path in that case.
//
// Returns the payout per winning bet ID and the pooled losing amount.
func DistributeWinnings(winners, losers []*Bet) (map[int64]int64, int64) {
	payouts := make(map[int64]int64, len(winners))

	var totalLosing int64
	for _, l := range losers {
		totalLosing += l.Amount
	}

	var totalWinning int64
	for _, w := range winners {
		totalWinning += w.Amount
		payouts[w.ID] = 0
	}

	if totalLosing == 0 || totalWinning == 0 {
		return payouts, totalLosing
	}

	for _, w := range winners {
		// integer division floors the pro-rata share
		payouts[w.ID] = w.Amount + totalLosing*w.Amount/totalWinning
	}

	return payouts, totalLosing
}
