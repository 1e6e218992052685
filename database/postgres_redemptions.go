package database

import (
	"context"
	"fmt"

	"ecopoints-server/models"

	"github.com/google/uuid"
)

// RedeemReward debits the redemption cost and records the redemption in
// one transaction. If the conditional debit finds the balance short,
// nothing is written and the caller gets ErrInsufficientBalance.
func (s *PostgresStore) RedeemReward(ctx context.Context, redemption *models.Redemption) (*models.Redemption, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = debitInTx(ctx, tx, redemption.UserID, redemption.PointsSpent,
		models.ReasonRedemptionDebit, redemption.ID)
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO redemptions (id, user_id, reward_id, points_spent, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = tx.ExecContext(ctx, query, redemption.ID, redemption.UserID, redemption.RewardID,
		redemption.PointsSpent, redemption.Status, redemption.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert redemption: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return redemption, nil
}

func (s *PostgresStore) ListRedemptionsByUser(ctx context.Context, userID uuid.UUID) ([]models.Redemption, error) {
	query := `SELECT id, user_id, reward_id, points_spent, status, created_at FROM redemptions WHERE user_id = $1 ORDER BY created_at ASC`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list redemptions: %w", err)
	}
	defer rows.Close()

	var redemptions []models.Redemption
	for rows.Next() {
		var r models.Redemption
		if err := rows.Scan(&r.ID, &r.UserID, &r.RewardID, &r.PointsSpent, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan redemption: %w", err)
		}
		redemptions = append(redemptions, r)
	}
	return redemptions, rows.Err()
}
