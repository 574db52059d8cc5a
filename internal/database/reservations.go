package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"slotbook/internal/models"

	sqlite3 "github.com/mattn/go-sqlite3"
)

const reservationColumns = `id, reservation_number, booker_name, phone_number, slot_id,
                 branch_id, theme_id, payment_id, user_id, status, created_at,
                 updated_at, version`

// CreateReservation inserts the reservation and flips the slot to
// reserved in a single transaction. The conditional UPDATE on the slot
// is the commit point for uniqueness: under concurrent callers exactly
// one statement affects a row, every other caller gets
// ErrSlotAlreadyReserved. The slot flag is never read-then-written
// across round trips.
func (db *DB) CreateReservation(ctx context.Context, res *models.Reservation) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()

	claim := `UPDATE slots SET reserved = 1, updated_at = ? WHERE id = ? AND reserved = 0`
	result, err := tx.ExecContext(ctx, claim, now, res.SlotID)
	if err != nil {
		return fmt.Errorf("failed to claim slot in tx: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows in tx: %w", err)
	}
	if rows == 0 {
		return ErrSlotAlreadyReserved
	}

	insert := `INSERT INTO reservations (
				reservation_number, booker_name, phone_number, slot_id, branch_id,
				theme_id, payment_id, user_id, status, created_at, updated_at, version
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err = tx.ExecContext(ctx, insert,
		res.ReservationNumber,
		res.BookerName,
		res.PhoneNumber,
		res.SlotID,
		res.BranchID,
		res.ThemeID,
		res.PaymentID,
		nullableID(res.UserID),
		res.Status,
		now,
		now,
		1,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReservationNumber
		}
		return fmt.Errorf("failed to insert reservation in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id in tx: %w", err)
	}
	res.ID = id
	res.CreatedAt = now
	res.UpdatedAt = now
	res.Version = 1

	return tx.Commit()
}

func (db *DB) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	res, err := scanReservation(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return res, nil
}

// FindGuestReservation requires an exact match on all three proof
// fields; anything less is reported as not found.
func (db *DB) FindGuestReservation(ctx context.Context, number, bookerName, phoneNumber string) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
              WHERE reservation_number = ? AND booker_name = ? AND phone_number = ?`
	res, err := scanReservation(db.QueryRowContext(ctx, query, number, bookerName, phoneNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to find guest reservation: %w", err)
	}
	return res, nil
}

// ListByUser returns a member's reservations newest first, plus the
// total row count for pagination. Pages are 1-based.
func (db *DB) ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]*models.Reservation, int64, error) {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}
	if page < 1 {
		page = 1
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM reservations WHERE user_id = ?`
	if err := db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	query := `SELECT ` + reservationColumns + ` FROM reservations
              WHERE user_id = ? ORDER BY id DESC LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, query, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	reservations := make([]*models.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return reservations, total, nil
}

// UpdateForMember applies contact changes to a reservation owned by the
// member. Ownership is part of the statement predicate, so a
// non-owning caller affects zero rows.
func (db *DB) UpdateForMember(ctx context.Context, id, userID int64, bookerName, phoneNumber string) (int64, error) {
	query := `UPDATE reservations
              SET booker_name = ?, phone_number = ?, version = version + 1, updated_at = ?
              WHERE id = ? AND user_id = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, bookerName, phoneNumber, time.Now(), id, userID, models.StatusActive)
	if err != nil {
		return 0, fmt.Errorf("failed to update reservation: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

// UpdateForGuest authorizes by exact phone match against the stored
// number. A mismatch affects zero rows and is NOT an error: existence
// must not leak through the guest channel.
func (db *DB) UpdateForGuest(ctx context.Context, id int64, checkPhone, bookerName, phoneNumber string) (int64, error) {
	query := `UPDATE reservations
              SET booker_name = ?, phone_number = ?, version = version + 1, updated_at = ?
              WHERE id = ? AND phone_number = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, bookerName, phoneNumber, time.Now(), id, checkPhone, models.StatusActive)
	if err != nil {
		return 0, fmt.Errorf("failed to update reservation: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

// SearchReservations filters by any combination of booker name, phone
// number and id. Nil filters are ignored. Restricted to privileged
// callers by the API layer.
func (db *DB) SearchReservations(ctx context.Context, bookerName, phoneNumber *string, id *int64) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations`
	var conds []string
	var args []interface{}
	if bookerName != nil {
		conds = append(conds, "booker_name = ?")
		args = append(args, *bookerName)
	}
	if phoneNumber != nil {
		conds = append(conds, "phone_number = ?")
		args = append(args, *phoneNumber)
	}
	if id != nil {
		conds = append(conds, "id = ?")
		args = append(args, *id)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id DESC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search reservations: %w", err)
	}
	defer rows.Close()

	reservations := make([]*models.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reservations, nil
}

// ListReservationsBetween returns reservations whose slot date falls
// inside the range, inclusive, ordered by slot date and time. Used by
// the back-office export.
func (db *DB) ListReservationsBetween(ctx context.Context, start, end time.Time) ([]*models.Reservation, error) {
	query := `SELECT r.id, r.reservation_number, r.booker_name, r.phone_number, r.slot_id,
                 r.branch_id, r.theme_id, r.payment_id, r.user_id, r.status, r.created_at,
                 r.updated_at, r.version
              FROM reservations r
              JOIN slots s ON s.id = r.slot_id
              WHERE s.date >= ? AND s.date <= ?
              ORDER BY s.date ASC, s.time ASC`
	rows, err := db.QueryContext(ctx, query, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations by range: %w", err)
	}
	defer rows.Close()

	reservations := make([]*models.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reservations, nil
}

// CancelReservation flags the reservation canceled and releases its
// slot in one transaction, mirroring the atomic pair on creation.
func (db *DB) CancelReservation(ctx context.Context, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()

	var slotID int64
	sel := `SELECT slot_id FROM reservations WHERE id = ? AND status = ?`
	if err := tx.QueryRowContext(ctx, sel, id, models.StatusActive).Scan(&slotID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrReservationNotFound
		}
		return fmt.Errorf("failed to load reservation in tx: %w", err)
	}

	cancel := `UPDATE reservations SET status = ?, version = version + 1, updated_at = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, cancel, models.StatusCanceled, now, id); err != nil {
		return fmt.Errorf("failed to cancel reservation in tx: %w", err)
	}

	release := `UPDATE slots SET reserved = 0, updated_at = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, release, now, slotID); err != nil {
		return fmt.Errorf("failed to release slot in tx: %w", err)
	}

	return tx.Commit()
}

func scanReservation(row rowScanner) (*models.Reservation, error) {
	var res models.Reservation
	var userID sql.NullInt64
	err := row.Scan(
		&res.ID, &res.ReservationNumber, &res.BookerName, &res.PhoneNumber, &res.SlotID,
		&res.BranchID, &res.ThemeID, &res.PaymentID, &userID, &res.Status,
		&res.CreatedAt, &res.UpdatedAt, &res.Version,
	)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		uid := userID.Int64
		res.UserID = &uid
	}
	return &res, nil
}

func nullableID(id *int64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
