package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"palco/internal/models"

	"github.com/shopspring/decimal"
)

const bookingColumns = `id, artist_id, venue_id, date(date), source_type, source_id, price,
                 payment_status, payout_status, created_at, updated_at`

// CreateBooking is a pure insert. Date-conflict checking is the coordinator's
// job, done against the availability ledger before this call; the ledger
// itself enforces nothing.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (
				artist_id, venue_id, date, source_type, source_id, price,
				payment_status, payout_status, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		booking.ArtistID,
		booking.VenueID,
		booking.Date.Format("2006-01-02"),
		booking.SourceType,
		booking.SourceID,
		booking.Price.String(),
		models.PayStatusPending,
		models.PayStatusPending,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.PaymentStatus = models.PayStatusPending
	booking.PayoutStatus = models.PayStatusPending
	booking.CreatedAt = now
	booking.UpdatedAt = now

	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`

	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// DeleteBooking removes a just-created booking during saga compensation.
// Settled bookings are historical record and are never deleted.
func (db *DB) DeleteBooking(ctx context.Context, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return nil
}

// MarkPayout flips the payout status. Unconditional; the settlement service
// owns the surrounding delete-then-regenerate protocol.
func (db *DB) MarkPayout(ctx context.Context, bookingID int64, status string) error {
	query := `UPDATE bookings SET payout_status = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now(), bookingID)
	if err != nil {
		return fmt.Errorf("failed to mark payout: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) MarkPayment(ctx context.Context, bookingID int64, status string) error {
	query := `UPDATE bookings SET payment_status = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now(), bookingID)
	if err != nil {
		return fmt.Errorf("failed to mark payment: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) GetBookingsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings WHERE date(date) >= ? AND date(date) <= ? ORDER BY date ASC`
	rows, err := db.QueryContext(ctx, query, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings by date range: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (db *DB) GetArtistBookings(ctx context.Context, artistID int64) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings WHERE artist_id = ? ORDER BY date DESC`
	rows, err := db.QueryContext(ctx, query, artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to get artist bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	var dateStr, priceStr string
	var sourceID sql.NullInt64
	err := row.Scan(
		&b.ID, &b.ArtistID, &b.VenueID, &dateStr, &b.SourceType, &sourceID,
		&priceStr, &b.PaymentStatus, &b.PayoutStatus, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Date, err = time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse booking date %s: %w", dateStr, err)
	}
	b.Price, err = decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse booking price %s: %w", priceStr, err)
	}
	if sourceID.Valid {
		v := sourceID.Int64
		b.SourceID = &v
	}
	return &b, nil
}

func collectBookings(rows *sql.Rows) ([]models.Booking, error) {
	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}
