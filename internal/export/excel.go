package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"palco/internal/domain"
	"palco/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const bookingsSheet = "Bookings"

// Exporter produces back-office XLSX files from the booking and posting
// ledgers.
type Exporter struct {
	repo domain.Repository
	path string
	log  zerolog.Logger
}

func NewExporter(repo domain.Repository, path string, log *zerolog.Logger) *Exporter {
	return &Exporter{
		repo: repo,
		path: path,
		log:  log.With().Str("component", "export").Logger(),
	}
}

// BookingsToExcel writes every booking in the date range, one row each, with
// its posting lines summarized in the trailing columns.
func (e *Exporter) BookingsToExcel(ctx context.Context, startDate, endDate time.Time) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	bookings, err := e.repo.GetBookingsByDateRange(ctx, startDate, endDate)
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(bookingsSheet)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(bookingsSheet, "A1", fmt.Sprintf("Período: %s - %s",
		startDate.Format("02/01/2006"), endDate.Format("02/01/2006")))
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.MergeCell(bookingsSheet, "A1", "J1")
	_ = f.SetCellStyle(bookingsSheet, "A1", "A1", titleStyle)

	headers := []string{
		"ID", "Artista", "Casa", "Data", "Origem", "Cachê",
		"Pagamento", "Repasse", "Comissão", "Taxas",
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(bookingsSheet, cell, header)
		_ = f.SetCellStyle(bookingsSheet, cell, cell, headerStyle)
	}

	for i := range bookings {
		b := &bookings[i]
		row := i + 3

		artistName := fmt.Sprintf("%d", b.ArtistID)
		if artist, err := e.repo.GetArtist(b.ArtistID); err == nil {
			artistName = artist.Name
		}

		commission, fees := e.postingTotals(ctx, b.ID)

		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("A%d", row), b.ID)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("B%d", row), artistName)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("C%d", row), b.VenueID)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("D%d", row), b.Date.Format("02/01/2006"))
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("E%d", row), b.SourceType)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("F%d", row), b.Price.StringFixed(2))
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("G%d", row), b.PaymentStatus)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("H%d", row), b.PayoutStatus)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("I%d", row), commission)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("J%d", row), fees)
	}

	_ = f.SetColWidth(bookingsSheet, "A", "A", 8)
	_ = f.SetColWidth(bookingsSheet, "B", "B", 25)
	_ = f.SetColWidth(bookingsSheet, "C", "J", 14)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_%s_to_%s.xlsx",
		startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	filePath := filepath.Join(e.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.log.Info().Str("file_path", filePath).Int("bookings", len(bookings)).Msg("bookings export created")
	return filePath, nil
}

// postingTotals sums the settled posting lines for a booking. A booking with
// a pending payout simply exports empty totals.
func (e *Exporter) postingTotals(ctx context.Context, bookingID int64) (string, string) {
	postings, err := e.repo.GetPostingsForBooking(ctx, bookingID)
	if err != nil || len(postings) == 0 {
		return "", ""
	}

	commission := ""
	fees := decimal.Zero
	for _, p := range postings {
		switch p.Type {
		case models.PostingIncome:
			commission = p.Value.StringFixed(2)
		case models.PostingExpense:
			fees = fees.Add(p.Value)
		}
	}
	return commission, fees.StringFixed(2)
}
