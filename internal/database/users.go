package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"slotbook/internal/models"
)

const userColumns = `id, login_id, password, nickname, phone_number, provider, roles,
                 enabled, privacy_agree, pr_agree, created_at, deactivated_at`

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (
				login_id, password, nickname, phone_number, provider, roles,
				enabled, privacy_agree, pr_agree, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		user.LoginID,
		user.Password,
		user.Nickname,
		user.PhoneNumber,
		user.Provider,
		strings.Join(user.Roles, ","),
		user.Enabled,
		user.PrivacyAgree,
		user.PRAgree,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUserInfo
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	user.ID = id
	user.CreatedAt = now
	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return db.getUser(ctx, query, id)
}

func (db *DB) GetUserByLoginID(ctx context.Context, loginID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE login_id = ? AND provider = ?`
	return db.getUser(ctx, query, loginID, models.ProviderApplication)
}

// FindUserByInfo looks for any existing user sharing the login id,
// nickname or phone number. Returns nil when none match; used for the
// duplicate check before registration.
func (db *DB) FindUserByInfo(ctx context.Context, loginID, nickname, phoneNumber string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
              WHERE login_id = ? OR nickname = ? OR phone_number = ?`
	user, err := db.getUser(ctx, query, loginID, nickname, phoneNumber)
	if errors.Is(err, ErrUserNotFound) {
		return nil, nil
	}
	return user, err
}

// DeactivateUser disables the account. Affects zero rows when the user
// is already disabled.
func (db *DB) DeactivateUser(ctx context.Context, id int64) (int64, error) {
	query := `UPDATE users SET enabled = 0, deactivated_at = ? WHERE id = ? AND enabled = 1`
	result, err := db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

func (db *DB) getUser(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	var roles string
	var deactivatedAt sql.NullTime
	err := db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID, &user.LoginID, &user.Password, &user.Nickname, &user.PhoneNumber,
		&user.Provider, &roles, &user.Enabled, &user.PrivacyAgree, &user.PRAgree,
		&user.CreatedAt, &deactivatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if roles != "" {
		user.Roles = strings.Split(roles, ",")
	}
	if deactivatedAt.Valid {
		t := deactivatedAt.Time
		user.DeactivatedAt = &t
	}
	return &user, nil
}
