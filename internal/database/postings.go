package database

import (
	"context"
	"fmt"
	"time"

	"palco/internal/models"

	"github.com/shopspring/decimal"
)

// InsertPostings writes the posting set for a booking. Postings are only ever
// written as a full set after DeletePostingsForBooking; the pair is what makes
// settlement replays idempotent.
func (db *DB) InsertPostings(ctx context.Context, postings []models.Posting) error {
	query := `INSERT INTO postings (booking_id, type, category, value, status, due_date, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	for i := range postings {
		p := &postings[i]
		result, err := db.ExecContext(ctx, query,
			p.BookingID,
			p.Type,
			p.Category,
			p.Value.String(),
			p.Status,
			p.DueDate.Format("2006-01-02"),
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert posting: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		p.ID = id
		p.CreatedAt = now
	}
	return nil
}

func (db *DB) DeletePostingsForBooking(ctx context.Context, bookingID int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM postings WHERE booking_id = ?`, bookingID)
	if err != nil {
		return fmt.Errorf("failed to delete postings: %w", err)
	}
	return nil
}

func (db *DB) GetPostingsForBooking(ctx context.Context, bookingID int64) ([]models.Posting, error) {
	query := `SELECT id, booking_id, type, category, value, status, date(due_date), created_at
              FROM postings WHERE booking_id = ? ORDER BY id ASC`
	rows, err := db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get postings: %w", err)
	}
	defer rows.Close()

	var postings []models.Posting
	for rows.Next() {
		var p models.Posting
		var valueStr, dueStr string
		err := rows.Scan(&p.ID, &p.BookingID, &p.Type, &p.Category, &valueStr, &p.Status, &dueStr, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan posting: %w", err)
		}
		p.Value, err = decimal.NewFromString(valueStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse posting value %s: %w", valueStr, err)
		}
		p.DueDate, _ = time.Parse("2006-01-02", dueStr)
		postings = append(postings, p)
	}
	return postings, rows.Err()
}
