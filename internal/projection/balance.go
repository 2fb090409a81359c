package projection

import (
	"context"
	"fmt"
	"time"
)

// BalanceProjection is a cached view of a user's points after their latest
// prediction or payout.
type BalanceProjection struct {
	UserID            string `json:"user_id"`
	Balance           int64  `json:"balance"`
	ActivePredictions int    `json:"active_predictions"`
	Staked            int64  `json:"staked"`
	UpdatedAt         string `json:"updated_at"`
}

const balanceTTL = 5 * time.Minute

func balanceKey(userID string) string {
	return fmt.Sprintf("projection:balance:%s", userID)
}

// UpdateBalance caches a user's balance projection.
func UpdateBalance(ctx context.Context, store Store, p BalanceProjection) error {
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return SetJSON(ctx, store, balanceKey(p.UserID), p, balanceTTL)
}

// GetBalance retrieves a cached balance projection.
func GetBalance(ctx context.Context, store Store, userID string) (*BalanceProjection, error) {
	var p BalanceProjection
	if err := GetJSON(ctx, store, balanceKey(userID), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// InvalidateBalance removes a user's cached balance.
func InvalidateBalance(ctx context.Context, store Store, userID string) error {
	return store.Delete(ctx, balanceKey(userID))
}
