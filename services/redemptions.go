package services

import (
	"context"
	"time"

	"ecopoints-server/models"

	"github.com/google/uuid"
)

// Redemptions exchanges accumulated points for catalog rewards. The debit
// and the redemption record are one atomic unit: on insufficient balance
// nothing is written.
type Redemptions struct {
	store   Store
	catalog *Catalog
}

func NewRedemptions(store Store, catalog *Catalog) *Redemptions {
	return &Redemptions{store: store, catalog: catalog}
}

// Redeem debits the reward's cost from the user's balance and records the
// redemption. Under concurrent attempts only as many succeed as the
// balance covers; the rest get ErrInsufficientBalance.
func (r *Redemptions) Redeem(ctx context.Context, userID, rewardID uuid.UUID) (*models.Redemption, error) {
	reward, err := r.catalog.GetReward(ctx, rewardID)
	if err != nil {
		return nil, err
	}

	redemption := &models.Redemption{
		ID:          uuid.New(),
		UserID:      userID,
		RewardID:    reward.ID,
		PointsSpent: reward.PointsRequired,
		Status:      models.RedemptionStatusRecorded,
		CreatedAt:   time.Now().UTC(),
	}
	return r.store.RedeemReward(ctx, redemption)
}

// ListByUser returns a user's redemptions in creation order.
func (r *Redemptions) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Redemption, error) {
	return r.store.ListRedemptionsByUser(ctx, userID)
}
