// Package export writes back-office reservation workbooks.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"slotbook/internal/models"
)

const sheetName = "Reservations"

// ReservationSource supplies the rows for a workbook. Implemented by
// database.DB.
type ReservationSource interface {
	ListReservationsBetween(ctx context.Context, start, end time.Time) ([]*models.Reservation, error)
	GetSlot(ctx context.Context, id int64) (*models.Slot, error)
}

// ExcelExporter implements domain.ReservationExporter.
type ExcelExporter struct {
	source ReservationSource
	dir    string
	logger *zerolog.Logger
}

func NewExcelExporter(source ReservationSource, dir string, logger *zerolog.Logger) *ExcelExporter {
	return &ExcelExporter{source: source, dir: dir, logger: logger}
}

// ExportReservations writes one workbook covering the date range and
// returns the file path.
func (e *ExcelExporter) ExportReservations(ctx context.Context, start, end time.Time) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	reservations, err := e.source.ListReservationsBetween(ctx, start, end)
	if err != nil {
		return "", fmt.Errorf("error getting reservations: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Period: %s - %s",
		start.Format("2006-01-02"), end.Format("2006-01-02")))

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)
	_ = f.MergeCell(sheetName, "A1", "H1")

	headers := []string{
		"Number", "Booker", "Phone", "Date", "Time", "Branch", "Theme", "Status",
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	canceledStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFC7CE"}, Pattern: 1},
	})

	for i, res := range reservations {
		row := i + 3

		date, slotTime := "", ""
		if slot, err := e.source.GetSlot(ctx, res.SlotID); err == nil {
			date = slot.Date.Format("2006-01-02")
			slotTime = slot.Time
		}

		values := []interface{}{
			res.ReservationNumber, res.BookerName, res.PhoneNumber,
			date, slotTime, res.BranchID, res.ThemeID, res.Status,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
		if res.Status == models.StatusCanceled {
			first, _ := excelize.CoordinatesToCellName(1, row)
			last, _ := excelize.CoordinatesToCellName(len(values), row)
			_ = f.SetCellStyle(sheetName, first, last, canceledStyle)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 20)
	_ = f.SetColWidth(sheetName, "B", "C", 16)
	_ = f.SetColWidth(sheetName, "D", "H", 12)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("reservations_%s_to_%s.xlsx",
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	filePath := filepath.Join(e.dir, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("Excel file created")
	return filePath, nil
}
