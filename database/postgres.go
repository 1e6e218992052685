package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ecopoints-server/models"
	"ecopoints-server/services"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresStore implements services.Store on top of PostgreSQL. Balance
// updates use conditional UPDATEs so the check and the write are a single
// statement; multi-row units (validation, redemption) run in one
// transaction.
type PostgresStore struct {
	db *DB
}

func NewPostgresStore(db *DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, email, password_hash, full_name, avatar, role, points, total_deliveries, total_weight, is_active, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FullName, user.Avatar,
		user.Role, user.Points, user.TotalDeliveries, user.TotalWeight,
		user.IsActive, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, userSelect+` WHERE id = $1`, id))
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, userSelect+` WHERE email = $1`, email))
}

const userSelect = `SELECT id, email, password_hash, full_name, avatar, role, points, total_deliveries, total_weight, is_active, created_at FROM users`

func (s *PostgresStore) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FullName,
		&user.Avatar, &user.Role, &user.Points, &user.TotalDeliveries,
		&user.TotalWeight, &user.IsActive, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, services.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}

func (s *PostgresStore) GetWasteType(ctx context.Context, id uuid.UUID) (*models.WasteType, error) {
	var wt models.WasteType
	query := `SELECT id, name, points_per_kg, is_active, created_at FROM waste_types WHERE id = $1 AND is_active = true`
	err := s.db.QueryRowContext(ctx, query, id).Scan(&wt.ID, &wt.Name, &wt.PointsPerKg, &wt.IsActive, &wt.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, services.ErrUnknownWasteType
	}
	if err != nil {
		return nil, fmt.Errorf("scan waste type: %w", err)
	}
	return &wt, nil
}

func (s *PostgresStore) ListWasteTypes(ctx context.Context) ([]models.WasteType, error) {
	query := `SELECT id, name, points_per_kg, is_active, created_at FROM waste_types WHERE is_active = true ORDER BY name`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list waste types: %w", err)
	}
	defer rows.Close()

	var types []models.WasteType
	for rows.Next() {
		var wt models.WasteType
		if err := rows.Scan(&wt.ID, &wt.Name, &wt.PointsPerKg, &wt.IsActive, &wt.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan waste type: %w", err)
		}
		types = append(types, wt)
	}
	return types, rows.Err()
}

func (s *PostgresStore) GetReward(ctx context.Context, id uuid.UUID) (*models.Reward, error) {
	var reward models.Reward
	query := `SELECT id, name, description, points_required, is_active, created_at FROM rewards WHERE id = $1 AND is_active = true`
	err := s.db.QueryRowContext(ctx, query, id).Scan(&reward.ID, &reward.Name, &reward.Description,
		&reward.PointsRequired, &reward.IsActive, &reward.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, services.ErrUnknownReward
	}
	if err != nil {
		return nil, fmt.Errorf("scan reward: %w", err)
	}
	return &reward, nil
}

func (s *PostgresStore) ListRewards(ctx context.Context) ([]models.Reward, error) {
	query := `SELECT id, name, description, points_required, is_active, created_at FROM rewards WHERE is_active = true ORDER BY points_required`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	defer rows.Close()

	var rewards []models.Reward
	for rows.Next() {
		var reward models.Reward
		if err := rows.Scan(&reward.ID, &reward.Name, &reward.Description,
			&reward.PointsRequired, &reward.IsActive, &reward.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		rewards = append(rewards, reward)
	}
	return rewards, rows.Err()
}
