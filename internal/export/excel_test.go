package export

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"slotbook/internal/models"
)

type stubSource struct {
	reservations []*models.Reservation
	slots        map[int64]*models.Slot
}

func (s *stubSource) ListReservationsBetween(_ context.Context, _, _ time.Time) ([]*models.Reservation, error) {
	return s.reservations, nil
}

func (s *stubSource) GetSlot(_ context.Context, id int64) (*models.Slot, error) {
	return s.slots[id], nil
}

func TestExportReservations(t *testing.T) {
	logger := zerolog.Nop()
	source := &stubSource{
		reservations: []*models.Reservation{
			{
				ID:                1,
				ReservationNumber: "202609151178001",
				BookerName:        "홍길동",
				PhoneNumber:       "010-1234-5678",
				SlotID:            1,
				BranchID:          1,
				ThemeID:           1,
				Status:            models.StatusActive,
			},
			{
				ID:                2,
				ReservationNumber: "202609161178002",
				BookerName:        "김철수",
				PhoneNumber:       "010-9999-0000",
				SlotID:            2,
				BranchID:          1,
				ThemeID:           1,
				Status:            models.StatusCanceled,
			},
		},
		slots: map[int64]*models.Slot{
			1: {ID: 1, Date: time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), Time: "18:30"},
			2: {ID: 2, Date: time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC), Time: "20:00"},
		},
	}

	exporter := NewExcelExporter(source, t.TempDir(), &logger)

	start := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC)

	path, err := exporter.ExportReservations(context.Background(), start, end)
	require.NoError(t, err)
	assert.FileExists(t, path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	number, err := f.GetCellValue(sheetName, "A3")
	require.NoError(t, err)
	assert.Equal(t, "202609151178001", number)

	booker, err := f.GetCellValue(sheetName, "B3")
	require.NoError(t, err)
	assert.Equal(t, "홍길동", booker)

	status, err := f.GetCellValue(sheetName, "H4")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCanceled, status)
}

func TestExportReservationsEmptyRange(t *testing.T) {
	logger := zerolog.Nop()
	exporter := NewExcelExporter(&stubSource{}, t.TempDir(), &logger)

	path, err := exporter.ExportReservations(context.Background(), time.Now(), time.Now())
	require.NoError(t, err)
	assert.FileExists(t, path)
}
