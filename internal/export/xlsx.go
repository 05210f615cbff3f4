// Package export renders booking listings for administrators.
package export

import (
	"fmt"
	"io"
	"strings"

	"hotelbook/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	BookingsSheet = "Bookings"
	SummarySheet  = "Summary"
	ContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var bookingHeaders = []string{
	"Booking number", "Hotel", "Location", "Room types", "Check-in", "Check-out",
	"Nights", "Guests", "Total price", "Status", "Owner", "Created at",
}

// WriteBookingsXLSX writes a workbook with one row per booking and a per-status summary.
func WriteBookingsXLSX(w io.Writer, bookings []models.Booking, stats []models.StatusStats) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", BookingsSheet); err != nil {
		return fmt.Errorf("error renaming sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}

	if err := writeRow(f, BookingsSheet, 1, toCells(bookingHeaders)); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(bookingHeaders))
	_ = f.SetCellStyle(BookingsSheet, "A1", lastCol+"1", headerStyle)

	for i, b := range bookings {
		nights := int(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
		row := []interface{}{
			b.BookingNumber,
			b.HotelName,
			b.Location,
			strings.Join(b.RoomTypes, ", "),
			b.CheckIn.Format(models.DateLayout),
			b.CheckOut.Format(models.DateLayout),
			nights,
			b.Guests,
			b.TotalPrice,
			string(b.Status),
			b.OwnerID,
			b.CreatedAt.UTC().Format("2006-01-02 15:04"),
		}
		if err := writeRow(f, BookingsSheet, i+2, row); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(BookingsSheet, "A", "A", 22)
	_ = f.SetColWidth(BookingsSheet, "B", "D", 25)
	_ = f.SetColWidth(BookingsSheet, "E", lastCol, 14)
	_ = f.SetPanes(BookingsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	if err := writeRow(f, SummarySheet, 1, []interface{}{"Status", "Bookings", "Revenue"}); err != nil {
		return err
	}
	_ = f.SetCellStyle(SummarySheet, "A1", "C1", headerStyle)
	for i, s := range stats {
		if err := writeRow(f, SummarySheet, i+2, []interface{}{string(s.Status), s.Count, s.TotalRevenue}); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("error writing row %d of %s: %w", row, sheet, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
