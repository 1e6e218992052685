package database

import (
	"context"
	"database/sql"
	"fmt"

	"ecopoints-server/models"
	"ecopoints-server/services"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

func (s *PostgresStore) InsertDelivery(ctx context.Context, delivery *models.Delivery) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO deliveries (id, owner_id, status, expected_points, notes, photo_url, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = tx.ExecContext(ctx, query, delivery.ID, delivery.OwnerID, delivery.Status,
		delivery.ExpectedPoints, delivery.Notes, delivery.PhotoURL, delivery.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert delivery: %w", err)
	}

	if err := insertItems(ctx, tx, delivery.EstimatedItems); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func insertItems(ctx context.Context, tx *sql.Tx, items []models.DeliveryItem) error {
	query := `INSERT INTO delivery_items (id, delivery_id, kind, waste_type_id, weight) VALUES ($1, $2, $3, $4, $5)`
	for _, item := range items {
		if _, err := tx.ExecContext(ctx, query, item.ID, item.DeliveryID, item.Kind, item.WasteTypeID, item.Weight); err != nil {
			return fmt.Errorf("insert delivery item: %w", err)
		}
	}
	return nil
}

// ValidateDelivery flips a pending delivery to validated and, in the same
// transaction, writes the actual items, credits the owner's ledger and
// bumps their totals. The status column itself is the guard: the
// conditional UPDATE matches only while the delivery is still pending, so
// the first caller wins and everyone else gets ErrAlreadyValidated.
func (s *PostgresStore) ValidateDelivery(ctx context.Context, params services.ValidateDeliveryParams) (*models.Delivery, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ownerID uuid.UUID
	casQuery := `UPDATE deliveries
	             SET status = 'validated', actual_points = $2, validated_by = $3, validated_at = $4, validation_notes = $5
	             WHERE id = $1 AND status = 'pending_delivery'
	             RETURNING owner_id`
	err = tx.QueryRowContext(ctx, casQuery, params.DeliveryID, params.ActualPoints,
		params.StaffID, params.ValidatedAt, params.ValidationNotes).Scan(&ownerID)
	if err == sql.ErrNoRows {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM deliveries WHERE id = $1)`, params.DeliveryID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check delivery: %w", err)
		}
		if !exists {
			return nil, services.ErrDeliveryNotFound
		}
		return nil, services.ErrAlreadyValidated
	}
	if err != nil {
		return nil, fmt.Errorf("mark delivery validated: %w", err)
	}

	if err := insertItems(ctx, tx, params.ActualItems); err != nil {
		return nil, err
	}

	// Credit the owner. The unique (reason, ref_id) index backs up the
	// status guard: even if two validations somehow both passed it, only
	// one credit can land.
	entryQuery := `INSERT INTO ledger_entries (id, user_id, delta, reason, ref_id) VALUES ($1, $2, $3, $4, $5)`
	_, err = tx.ExecContext(ctx, entryQuery, uuid.New(), ownerID, params.ActualPoints,
		models.ReasonDeliveryCredit, params.DeliveryID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, services.ErrAlreadyValidated
		}
		return nil, fmt.Errorf("insert credit entry: %w", err)
	}

	totalsQuery := `UPDATE users
	                SET points = points + $1, total_deliveries = total_deliveries + 1, total_weight = total_weight + $2
	                WHERE id = $3`
	if _, err := tx.ExecContext(ctx, totalsQuery, params.ActualPoints, params.ActualWeight, ownerID); err != nil {
		return nil, fmt.Errorf("update owner totals: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return s.GetDelivery(ctx, params.DeliveryID)
}

const deliverySelect = `SELECT id, owner_id, status, expected_points, actual_points, notes, validation_notes, validated_by, validated_at, photo_url, created_at FROM deliveries`

func scanDelivery(scanner interface{ Scan(...interface{}) error }) (*models.Delivery, error) {
	var d models.Delivery
	err := scanner.Scan(&d.ID, &d.OwnerID, &d.Status, &d.ExpectedPoints, &d.ActualPoints,
		&d.Notes, &d.ValidationNotes, &d.ValidatedBy, &d.ValidatedAt, &d.PhotoURL, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *PostgresStore) GetDelivery(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	delivery, err := scanDelivery(s.db.QueryRowContext(ctx, deliverySelect+` WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, services.ErrDeliveryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan delivery: %w", err)
	}
	if err := s.loadItems(ctx, []*models.Delivery{delivery}); err != nil {
		return nil, err
	}
	return delivery, nil
}

func (s *PostgresStore) ListDeliveriesByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Delivery, error) {
	return s.listDeliveries(ctx, deliverySelect+` WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
}

// ListPendingDeliveries returns the validation queue oldest first, so
// staff serve students in arrival order.
func (s *PostgresStore) ListPendingDeliveries(ctx context.Context) ([]models.Delivery, error) {
	return s.listDeliveries(ctx, deliverySelect+` WHERE status = 'pending_delivery' ORDER BY created_at ASC`)
}

func (s *PostgresStore) listDeliveries(ctx context.Context, query string, args ...interface{}) ([]models.Delivery, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []models.Delivery
	var refs []*models.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		deliveries = append(deliveries, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range deliveries {
		refs = append(refs, &deliveries[i])
	}
	if err := s.loadItems(ctx, refs); err != nil {
		return nil, err
	}
	return deliveries, nil
}

// loadItems fetches the item rows for a batch of deliveries in one query
// and splits them into the estimated and actual lists.
func (s *PostgresStore) loadItems(ctx context.Context, deliveries []*models.Delivery) error {
	if len(deliveries) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*models.Delivery, len(deliveries))
	ids := make([]string, 0, len(deliveries))
	for _, d := range deliveries {
		byID[d.ID] = d
		ids = append(ids, d.ID.String())
	}

	// seq preserves insertion order within a delivery
	query := `SELECT id, delivery_id, kind, waste_type_id, weight FROM delivery_items WHERE delivery_id = ANY($1) ORDER BY seq`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load delivery items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.DeliveryItem
		if err := rows.Scan(&item.ID, &item.DeliveryID, &item.Kind, &item.WasteTypeID, &item.Weight); err != nil {
			return fmt.Errorf("scan delivery item: %w", err)
		}
		delivery, ok := byID[item.DeliveryID]
		if !ok {
			continue
		}
		if item.Kind == models.ItemKindActual {
			delivery.ActualItems = append(delivery.ActualItems, item)
		} else {
			delivery.EstimatedItems = append(delivery.EstimatedItems, item)
		}
	}
	return rows.Err()
}
