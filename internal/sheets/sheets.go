package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"palco/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Booking rows live on the Bookings tab, columns A:J:
// ID, Artist ID, Venue ID, Date, Source, Price, Payment, Payout, Created, Updated.
const (
	bookingsTab  = "Bookings"
	idColumn     = bookingsTab + "!A:A"
	payoutColumn = "H"
	updatedAtCol = "J"
)

var errRowNotFound = errors.New("booking row not found")

// Service mirrors the booking ledger into a back-office spreadsheet. A row
// index cache keyed by booking id avoids re-reading the ID column on every
// write.
type Service struct {
	api           *sheetsapi.Service
	spreadsheetID string

	cacheMu  sync.RWMutex
	rowCache map[int64]int
}

func NewService(credentialsFile, spreadsheetID string) (*Service, error) {
	ctx := context.Background()

	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheetsapi.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	api, err := sheetsapi.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	s := &Service{
		api:           api,
		spreadsheetID: spreadsheetID,
		rowCache:      make(map[int64]int),
	}

	go func() {
		warmCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.warmUpCache(warmCtx); err == nil {
			return
		}
		// First warm-up may race spreadsheet provisioning; the cache fills
		// lazily on lookups anyway.
	}()

	return s, nil
}

// TestConnection reads one cell to verify credentials and share settings.
func (s *Service) TestConnection(ctx context.Context) error {
	_, err := s.api.Spreadsheets.Values.Get(s.spreadsheetID, bookingsTab+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// UpsertBooking updates an existing booking row or appends a new one.
func (s *Service) UpsertBooking(ctx context.Context, booking *models.Booking) error {
	if booking == nil {
		return fmt.Errorf("booking is nil")
	}

	rowIdx, err := s.findBookingRow(ctx, booking.ID)
	if errors.Is(err, errRowNotFound) {
		return s.appendBooking(ctx, booking)
	}
	if err != nil {
		return err
	}

	rangeData := fmt.Sprintf("%s!A%d:J%d", bookingsTab, rowIdx, rowIdx)
	_, err = s.api.Spreadsheets.Values.Update(s.spreadsheetID, rangeData, &sheetsapi.ValueRange{
		Values: [][]interface{}{bookingRowValues(booking)},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// UpdateBookingStatus updates the payout cell and the updated-at cell of a
// booking row.
func (s *Service) UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error {
	rowIdx, err := s.findBookingRow(ctx, bookingID)
	if err != nil {
		return err
	}

	statusRange := fmt.Sprintf("%s!%s%d:%s%d", bookingsTab, payoutColumn, rowIdx, payoutColumn, rowIdx)
	_, err = s.api.Spreadsheets.Values.Update(s.spreadsheetID, statusRange, &sheetsapi.ValueRange{
		Values: [][]interface{}{{status}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return err
	}

	updatedRange := fmt.Sprintf("%s!%s%d:%s%d", bookingsTab, updatedAtCol, rowIdx, updatedAtCol, rowIdx)
	_, err = s.api.Spreadsheets.Values.Update(s.spreadsheetID, updatedRange, &sheetsapi.ValueRange{
		Values: [][]interface{}{{time.Now().Format("2006-01-02 15:04:05")}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// DeleteBookingRow clears the row that corresponds to bookingID.
func (s *Service) DeleteBookingRow(ctx context.Context, bookingID int64) error {
	rowIdx, err := s.findBookingRow(ctx, bookingID)
	if errors.Is(err, errRowNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	rangeData := fmt.Sprintf("%s!A%d:J%d", bookingsTab, rowIdx, rowIdx)
	_, err = s.api.Spreadsheets.Values.Clear(s.spreadsheetID, rangeData, &sheetsapi.ClearValuesRequest{}).
		Context(ctx).Do()
	if err == nil {
		s.cacheMu.Lock()
		delete(s.rowCache, bookingID)
		s.cacheMu.Unlock()
	}
	return err
}

// ReplaceBookingsSheet rewrites the whole tab from the ledger, headers
// included. Used by the admin full-resync path.
func (s *Service) ReplaceBookingsSheet(ctx context.Context, bookings []models.Booking) error {
	clearRange := bookingsTab + "!A:Z"
	_, err := s.api.Spreadsheets.Values.Clear(s.spreadsheetID, clearRange, &sheetsapi.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear bookings sheet: %w", err)
	}

	values := [][]interface{}{
		{"ID", "Artist ID", "Venue ID", "Date", "Source", "Price", "Payment", "Payout", "Created At", "Updated At"},
	}
	for i := range bookings {
		values = append(values, bookingRowValues(&bookings[i]))
	}

	_, err = s.api.Spreadsheets.Values.Update(s.spreadsheetID, bookingsTab+"!A1", &sheetsapi.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update bookings sheet: %w", err)
	}

	s.cacheMu.Lock()
	s.rowCache = make(map[int64]int)
	for i := range bookings {
		s.rowCache[bookings[i].ID] = i + 2
	}
	s.cacheMu.Unlock()

	return nil
}

func (s *Service) appendBooking(ctx context.Context, booking *models.Booking) error {
	_, err := s.api.Spreadsheets.Values.Append(s.spreadsheetID, idColumn, &sheetsapi.ValueRange{
		Values: [][]interface{}{bookingRowValues(booking)},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	return err
}

// findBookingRow locates the 1-based row index for a booking id in column A.
func (s *Service) findBookingRow(ctx context.Context, bookingID int64) (int, error) {
	if bookingID == 0 {
		return 0, fmt.Errorf("booking id is required")
	}

	s.cacheMu.RLock()
	row, ok := s.rowCache[bookingID]
	s.cacheMu.RUnlock()
	if ok {
		return row, nil
	}

	resp, err := s.api.Spreadsheets.Values.Get(s.spreadsheetID, idColumn).Context(ctx).Do()
	if err != nil {
		return 0, err
	}

	for i, cells := range resp.Values {
		if len(cells) == 0 {
			continue
		}
		if cellMatchesID(cells[0], bookingID) {
			rowIdx := i + 1
			s.cacheMu.Lock()
			s.rowCache[bookingID] = rowIdx
			s.cacheMu.Unlock()
			return rowIdx, nil
		}
	}

	return 0, errRowNotFound
}

func (s *Service) warmUpCache(ctx context.Context) error {
	resp, err := s.api.Spreadsheets.Values.Get(s.spreadsheetID, idColumn).Context(ctx).Do()
	if err != nil {
		return err
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[int64]int)

	for i, cells := range resp.Values {
		if len(cells) == 0 {
			continue
		}
		var id int64
		switch v := cells[0].(type) {
		case float64:
			id = int64(v)
		case string:
			fmt.Sscanf(v, "%d", &id)
		}
		if id > 0 {
			s.rowCache[id] = i + 1
		}
	}
	return nil
}

func cellMatchesID(cell interface{}, id int64) bool {
	switch v := cell.(type) {
	case float64:
		return int64(v) == id
	case string:
		return v == fmt.Sprintf("%d", id)
	}
	return false
}

func bookingRowValues(booking *models.Booking) []interface{} {
	source := booking.SourceType
	if booking.SourceID != nil {
		source = fmt.Sprintf("%s:%d", booking.SourceType, *booking.SourceID)
	}
	return []interface{}{
		booking.ID,
		booking.ArtistID,
		booking.VenueID,
		booking.Date.Format("2006-01-02"),
		source,
		booking.Price.StringFixed(2),
		booking.PaymentStatus,
		booking.PayoutStatus,
		booking.CreatedAt.Format("2006-01-02 15:04:05"),
		booking.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
