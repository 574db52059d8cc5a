package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotbook/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// seedRefs creates a branch, theme and payment and returns their ids.
func seedRefs(t *testing.T, db *DB) (int64, int64, int64) {
	t.Helper()
	ctx := context.Background()

	branch := &models.Branch{Name: "강남점", Location: "Seoul"}
	require.NoError(t, db.CreateBranch(ctx, branch))

	theme := &models.Theme{BranchID: branch.ID, Name: "미스터리룸", Players: 4}
	require.NoError(t, db.CreateTheme(ctx, theme))

	payment := &models.Payment{Method: "card", Amount: 25000, Paid: true}
	require.NoError(t, db.CreatePayment(ctx, payment))

	return branch.ID, theme.ID, payment.ID
}

func seedSlot(t *testing.T, db *DB, branchID, themeID int64, date time.Time) *models.Slot {
	t.Helper()
	slot := &models.Slot{
		BranchID: branchID,
		ThemeID:  themeID,
		Date:     date,
		Time:     "18:30",
		Opened:   true,
		Shown:    true,
	}
	require.NoError(t, db.CreateSlot(context.Background(), slot))
	return slot
}

func TestNewDBCreatesDirectory(t *testing.T) {
	logger := zerolog.Nop()
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dbPath)
}

func TestCreateAndGetSlot(t *testing.T) {
	db := setupTestDB(t)
	branchID, themeID, _ := seedRefs(t, db)

	date := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	slot := seedSlot(t, db, branchID, themeID, date)

	got, err := db.GetSlot(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.Equal(t, branchID, got.BranchID)
	assert.Equal(t, "2026-09-15", got.Date.Format("2006-01-02"))
	assert.Equal(t, "18:30", got.Time)
	assert.True(t, got.Opened)
	assert.False(t, got.Reserved)
}

func TestGetSlotNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetSlot(context.Background(), 999)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestGetOpenSlotsFiltersHiddenAndReserved(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	branchID, themeID, _ := seedRefs(t, db)
	date := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	open := seedSlot(t, db, branchID, themeID, date)

	hidden := &models.Slot{BranchID: branchID, ThemeID: themeID, Date: date, Time: "20:00", Opened: true, Shown: false}
	require.NoError(t, db.CreateSlot(ctx, hidden))

	reserved := &models.Slot{BranchID: branchID, ThemeID: themeID, Date: date, Time: "21:30", Opened: true, Shown: true, Reserved: true}
	require.NoError(t, db.CreateSlot(ctx, reserved))

	slots, err := db.GetOpenSlots(ctx, branchID, date)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, open.ID, slots[0].ID)
}

func TestGetOpenSlotsAllBranches(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	branchID, themeID, _ := seedRefs(t, db)

	other := &models.Branch{Name: "홍대점", Location: "Seoul"}
	require.NoError(t, db.CreateBranch(ctx, other))

	date := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	seedSlot(t, db, branchID, themeID, date)
	seedSlot(t, db, other.ID, themeID, date)

	slots, err := db.GetOpenSlots(ctx, 0, date)
	require.NoError(t, err)
	assert.Len(t, slots, 2)
}

func TestSetSlotVisibility(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	branchID, themeID, _ := seedRefs(t, db)
	slot := seedSlot(t, db, branchID, themeID, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC))

	require.NoError(t, db.SetSlotVisibility(ctx, slot.ID, false, false))

	got, err := db.GetSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.False(t, got.Opened)
	assert.False(t, got.Shown)

	assert.ErrorIs(t, db.SetSlotVisibility(ctx, 999, true, true), ErrSlotNotFound)
}

func TestRefLookupsNotFound(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.GetBranch(ctx, 999)
	assert.ErrorIs(t, err, ErrBranchNotFound)
	_, err = db.GetTheme(ctx, 999)
	assert.ErrorIs(t, err, ErrThemeNotFound)
	_, err = db.GetPayment(ctx, 999)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}
