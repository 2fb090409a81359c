// Package settlement computes parimutuel payouts for a completed event.
package settlement

import (
	"math/big"

	"github.com/cissero/platform/internal/domain"
)

// Parimutuel settles the active predictions of one event against winnerID.
//
// The whole pool is split among stakes on the winner in proportion to their
// amount, using integer division. The remainder goes to the largest winning
// stake, the earliest one on a tie, so the payouts always sum to the pool.
// An empty winnerID or a winner nobody backed refunds every stake.
//
// The input slice is not modified. Event and winner ids on the returned
// Settlement are left for the caller.
func Parimutuel(active []domain.Prediction, winnerID string) ([]domain.Prediction, domain.Settlement) {
	out := make([]domain.Prediction, len(active))
	copy(out, active)

	var result domain.Settlement
	var winnerStake int64
	largest := -1
	for i, p := range out {
		result.Pool += p.Amount
		if winnerID != "" && p.ParticipantID == winnerID {
			winnerStake += p.Amount
			if largest < 0 || p.Amount > out[largest].Amount {
				largest = i
			}
		}
	}

	refundAll := winnerStake == 0
	var distributed int64
	for i := range out {
		p := &out[i]
		switch {
		case refundAll:
			p.Status = domain.PredictionRefunded
			p.Payout = p.Amount
			result.Refunded++
		case p.ParticipantID == winnerID:
			p.Status = domain.PredictionWon
			p.Payout = share(result.Pool, p.Amount, winnerStake)
			distributed += p.Payout
			result.Winners++
		default:
			p.Status = domain.PredictionLost
			p.Payout = 0
			result.Losers++
		}
	}
	if !refundAll {
		out[largest].Payout += result.Pool - distributed
	}

	for _, p := range out {
		result.PaidOut += p.Payout
	}
	return out, result
}

// share returns pool*amount/stake rounded down. The product is taken in
// big.Int since it can exceed int64; the quotient never exceeds pool.
func share(pool, amount, stake int64) int64 {
	n := new(big.Int).Mul(big.NewInt(pool), big.NewInt(amount))
	return n.Quo(n, big.NewInt(stake)).Int64()
}

// Credits sums payouts per user.
func Credits(settled []domain.Prediction) map[string]int64 {
	credits := make(map[string]int64)
	for _, p := range settled {
		credits[p.UserID] += p.Payout
	}
	return credits
}
