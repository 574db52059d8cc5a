package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"slotbook/internal/models"
)

const slotColumns = `id, branch_id, theme_id, date, time, opened, shown, reserved, created_at, updated_at`

func (db *DB) CreateSlot(ctx context.Context, slot *models.Slot) error {
	query := `INSERT INTO slots (branch_id, theme_id, date, time, opened, shown, reserved, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		slot.BranchID,
		slot.ThemeID,
		slot.Date.Format("2006-01-02"),
		slot.Time,
		slot.Opened,
		slot.Shown,
		slot.Reserved,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create slot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	slot.ID = id
	slot.CreatedAt = now
	slot.UpdatedAt = now
	return nil
}

func (db *DB) GetSlot(ctx context.Context, id int64) (*models.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = ?`
	slot, err := scanSlot(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	return slot, nil
}

// GetOpenSlots returns bookable slots (opened, shown, not reserved) on
// a date, optionally filtered by branch (0 means all branches).
func (db *DB) GetOpenSlots(ctx context.Context, branchID int64, date time.Time) ([]*models.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots
              WHERE date = ? AND opened = 1 AND shown = 1 AND reserved = 0`
	args := []interface{}{date.Format("2006-01-02")}
	if branchID != 0 {
		query += ` AND branch_id = ?`
		args = append(args, branchID)
	}
	query += ` ORDER BY time ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get open slots: %w", err)
	}
	defer rows.Close()

	slots := make([]*models.Slot, 0)
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

// SetSlotVisibility updates the opened/shown flags. Administrative.
func (db *DB) SetSlotVisibility(ctx context.Context, id int64, opened, shown bool) error {
	query := `UPDATE slots SET opened = ?, shown = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, opened, shown, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update slot visibility: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrSlotNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSlot(row rowScanner) (*models.Slot, error) {
	var slot models.Slot
	var dateStr string
	err := row.Scan(
		&slot.ID, &slot.BranchID, &slot.ThemeID, &dateStr, &slot.Time,
		&slot.Opened, &slot.Shown, &slot.Reserved, &slot.CreatedAt, &slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	slot.Date, err = time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse slot date %s: %w", dateStr, err)
	}
	return &slot, nil
}
