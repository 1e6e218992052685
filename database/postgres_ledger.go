package database

import (
	"context"
	"database/sql"
	"fmt"

	"ecopoints-server/models"
	"ecopoints-server/services"

	"github.com/google/uuid"
)

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// findEntry looks up the ledger entry already written for a (reason,
// ref_id) pair. Returns sql.ErrNoRows when none exists.
func (s *PostgresStore) findEntry(ctx context.Context, q rowQuerier, reason string, refID uuid.UUID) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	query := `SELECT seq, id, user_id, delta, reason, ref_id, created_at FROM ledger_entries WHERE reason = $1 AND ref_id = $2`
	err := q.QueryRowContext(ctx, query, reason, refID).Scan(&entry.Seq, &entry.ID, &entry.UserID,
		&entry.Delta, &entry.Reason, &entry.RefID, &entry.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Credit appends a positive entry and increments the user's balance in one
// transaction. The unique index on (reason, ref_id) makes retried credits
// safe: the second writer hits a unique violation and gets handed the
// entry the first one wrote.
func (s *PostgresStore) Credit(ctx context.Context, userID uuid.UUID, amount int64, reason string, refID uuid.UUID) (*models.LedgerEntry, error) {
	if existing, err := s.findEntry(ctx, s.db, reason, refID); err == nil {
		return existing, nil
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("lookup ledger entry: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	entry := &models.LedgerEntry{
		ID:     uuid.New(),
		UserID: userID,
		Delta:  amount,
		Reason: reason,
		RefID:  refID,
	}
	insertQuery := `INSERT INTO ledger_entries (id, user_id, delta, reason, ref_id) VALUES ($1, $2, $3, $4, $5) RETURNING seq, created_at`
	err = tx.QueryRowContext(ctx, insertQuery, entry.ID, entry.UserID, entry.Delta, entry.Reason, entry.RefID).
		Scan(&entry.Seq, &entry.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost the race against a concurrent identical credit
			tx.Rollback()
			return s.findEntry(ctx, s.db, reason, refID)
		}
		return nil, fmt.Errorf("insert ledger entry: %w", err)
	}

	res, err := tx.ExecContext(ctx, `UPDATE users SET points = points + $1 WHERE id = $2`, amount, userID)
	if err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, services.ErrUserNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return entry, nil
}

// DebitIfSufficient decrements the balance only if it covers amount. The
// check and the decrement are one conditional UPDATE, so there is no
// window for an overdraft between concurrent debits.
func (s *PostgresStore) DebitIfSufficient(ctx context.Context, userID uuid.UUID, amount int64, reason string, refID uuid.UUID) (*models.LedgerEntry, error) {
	if existing, err := s.findEntry(ctx, s.db, reason, refID); err == nil {
		return existing, nil
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("lookup ledger entry: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	entry, err := debitInTx(ctx, tx, userID, amount, reason, refID)
	if err != nil {
		if isUniqueViolation(err) {
			tx.Rollback()
			return s.findEntry(ctx, s.db, reason, refID)
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return entry, nil
}

// debitInTx performs the conditional balance decrement and the ledger
// append inside the caller's transaction. Shared with RedeemReward, which
// adds the redemption row to the same unit.
func debitInTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID, amount int64, reason string, refID uuid.UUID) (*models.LedgerEntry, error) {
	res, err := tx.ExecContext(ctx, `UPDATE users SET points = points - $1 WHERE id = $2 AND points >= $1`, amount, userID)
	if err != nil {
		return nil, fmt.Errorf("conditional debit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check user: %w", err)
		}
		if !exists {
			return nil, services.ErrUserNotFound
		}
		return nil, services.ErrInsufficientBalance
	}

	entry := &models.LedgerEntry{
		ID:     uuid.New(),
		UserID: userID,
		Delta:  -amount,
		Reason: reason,
		RefID:  refID,
	}
	insertQuery := `INSERT INTO ledger_entries (id, user_id, delta, reason, ref_id) VALUES ($1, $2, $3, $4, $5) RETURNING seq, created_at`
	err = tx.QueryRowContext(ctx, insertQuery, entry.ID, entry.UserID, entry.Delta, entry.Reason, entry.RefID).
		Scan(&entry.Seq, &entry.CreatedAt)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *PostgresStore) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var points int64
	err := s.db.QueryRowContext(ctx, `SELECT points FROM users WHERE id = $1`, userID).Scan(&points)
	if err == sql.ErrNoRows {
		return 0, services.ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("query balance: %w", err)
	}
	return points, nil
}

func (s *PostgresStore) LedgerHistory(ctx context.Context, userID uuid.UUID) ([]models.LedgerEntry, error) {
	query := `SELECT seq, id, user_id, delta, reason, ref_id, created_at FROM ledger_entries WHERE user_id = $1 ORDER BY seq`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query ledger history: %w", err)
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var entry models.LedgerEntry
		if err := rows.Scan(&entry.Seq, &entry.ID, &entry.UserID, &entry.Delta,
			&entry.Reason, &entry.RefID, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
