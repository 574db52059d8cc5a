package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"slotbook/internal/models"
)

func (db *DB) CreateBranch(ctx context.Context, branch *models.Branch) error {
	result, err := db.ExecContext(ctx,
		`INSERT INTO branches (name, location) VALUES (?, ?)`,
		branch.Name, branch.Location)
	if err != nil {
		return fmt.Errorf("failed to create branch: %w", err)
	}
	branch.ID, err = result.LastInsertId()
	return err
}

func (db *DB) GetBranch(ctx context.Context, id int64) (*models.Branch, error) {
	var branch models.Branch
	err := db.QueryRowContext(ctx,
		`SELECT id, name, location FROM branches WHERE id = ?`, id).
		Scan(&branch.ID, &branch.Name, &branch.Location)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBranchNotFound
		}
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}
	return &branch, nil
}

func (db *DB) CreateTheme(ctx context.Context, theme *models.Theme) error {
	result, err := db.ExecContext(ctx,
		`INSERT INTO themes (branch_id, name, players) VALUES (?, ?, ?)`,
		theme.BranchID, theme.Name, theme.Players)
	if err != nil {
		return fmt.Errorf("failed to create theme: %w", err)
	}
	theme.ID, err = result.LastInsertId()
	return err
}

func (db *DB) GetTheme(ctx context.Context, id int64) (*models.Theme, error) {
	var theme models.Theme
	err := db.QueryRowContext(ctx,
		`SELECT id, branch_id, name, players FROM themes WHERE id = ?`, id).
		Scan(&theme.ID, &theme.BranchID, &theme.Name, &theme.Players)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrThemeNotFound
		}
		return nil, fmt.Errorf("failed to get theme: %w", err)
	}
	return &theme, nil
}

func (db *DB) CreatePayment(ctx context.Context, payment *models.Payment) error {
	result, err := db.ExecContext(ctx,
		`INSERT INTO payments (method, amount, paid) VALUES (?, ?, ?)`,
		payment.Method, payment.Amount, payment.Paid)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	payment.ID, err = result.LastInsertId()
	return err
}

func (db *DB) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	var payment models.Payment
	err := db.QueryRowContext(ctx,
		`SELECT id, method, amount, paid FROM payments WHERE id = ?`, id).
		Scan(&payment.ID, &payment.Method, &payment.Amount, &payment.Paid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}
