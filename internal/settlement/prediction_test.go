package settlement

import (
	"testing"

	"github.com/cissero/platform/internal/domain"
	"github.com/stretchr/testify/assert"
)

func stake(id, user, participant string, amount int64) domain.Prediction {
	return domain.Prediction{
		ID:            id,
		EventID:       "e3",
		UserID:        user,
		ParticipantID: participant,
		Amount:        amount,
		Status:        domain.PredictionActive,
	}
}

func TestParimutuel_SingleWinnerTakesPool(t *testing.T) {
	in := []domain.Prediction{stake("pr1", "u2", "p5", 50), stake("pr2", "u3", "p6", 30)}

	out, res := Parimutuel(in, "p5")

	assert.Equal(t, int64(80), res.Pool)
	assert.Equal(t, 1, res.Winners)
	assert.Equal(t, 1, res.Losers)
	assert.Equal(t, int64(80), res.PaidOut)
	assert.Equal(t, domain.PredictionWon, out[0].Status)
	assert.Equal(t, int64(80), out[0].Payout)
	assert.Equal(t, domain.PredictionLost, out[1].Status)
	assert.Zero(t, out[1].Payout)

	// input untouched
	assert.Equal(t, domain.PredictionActive, in[0].Status)
}

func TestParimutuel_RemainderToLargestStake(t *testing.T) {
	in := []domain.Prediction{
		stake("a", "u1", "p1", 10),
		stake("b", "u2", "p1", 20),
		stake("c", "u3", "p2", 70),
	}

	out, res := Parimutuel(in, "p1")

	// 100*10/30 = 33, 100*20/30 = 66, remainder 1 to the 20 stake
	assert.Equal(t, int64(33), out[0].Payout)
	assert.Equal(t, int64(67), out[1].Payout)
	assert.Zero(t, out[2].Payout)
	assert.Equal(t, res.Pool, res.PaidOut)
}

func TestParimutuel_TieGoesToEarliest(t *testing.T) {
	in := []domain.Prediction{
		stake("a", "u1", "p1", 10),
		stake("b", "u2", "p1", 10),
		stake("c", "u3", "p2", 1),
	}

	out, _ := Parimutuel(in, "p1")

	assert.Equal(t, int64(11), out[0].Payout)
	assert.Equal(t, int64(10), out[1].Payout)
}

func TestParimutuel_Refunds(t *testing.T) {
	in := []domain.Prediction{stake("a", "u1", "p1", 40), stake("b", "u2", "p2", 60)}

	for _, winner := range []string{"", "p9"} {
		out, res := Parimutuel(in, winner)
		assert.Equal(t, 2, res.Refunded, winner)
		assert.Zero(t, res.Winners, winner)
		assert.Equal(t, int64(100), res.PaidOut, winner)
		for i, p := range out {
			assert.Equal(t, domain.PredictionRefunded, p.Status)
			assert.Equal(t, in[i].Amount, p.Payout)
		}
	}
}

func TestParimutuel_LargeStakesDoNotOverflow(t *testing.T) {
	const huge = int64(3_000_000_000_000_000_000)
	in := []domain.Prediction{
		stake("a", "u1", "p1", huge),
		stake("b", "u2", "p1", huge/3),
		stake("c", "u3", "p2", huge/3),
	}

	out, res := Parimutuel(in, "p1")

	assert.Equal(t, huge+2*(huge/3), res.Pool)
	assert.Equal(t, res.Pool, res.PaidOut)
	// pool 5e18 split 3:1 between the winners
	assert.Equal(t, int64(3_750_000_000_000_000_000), out[0].Payout)
	assert.Equal(t, int64(1_250_000_000_000_000_000), out[1].Payout)
	assert.Zero(t, out[2].Payout)
}

func TestParimutuel_Empty(t *testing.T) {
	out, res := Parimutuel(nil, "p1")
	assert.Empty(t, out)
	assert.Zero(t, res.Pool)
	assert.Zero(t, res.PaidOut)
}

func TestCredits(t *testing.T) {
	credits := Credits([]domain.Prediction{
		{UserID: "u1", Payout: 30},
		{UserID: "u2", Payout: 0},
		{UserID: "u1", Payout: 12},
	})
	assert.Equal(t, map[string]int64{"u1": 42, "u2": 0}, credits)
}
