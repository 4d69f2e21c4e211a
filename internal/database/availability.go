package database

import (
	"context"
	"fmt"
	"time"
)

// AddDate records a committed date for an artist. Called only by the booking
// coordinator on saga success.
func (db *DB) AddDate(ctx context.Context, artistID int64, date time.Time) error {
	query := `INSERT INTO availability (artist_id, date, created_at) VALUES (?, ?, ?)`
	_, err := db.ExecContext(ctx, query, artistID, date.Format("2006-01-02"), time.Now())
	if err != nil {
		return fmt.Errorf("failed to add availability date: %w", err)
	}
	return nil
}

// RemoveDate deletes a committed date during compensation. Removing an absent
// date is a no-op success, which keeps compensation idempotent.
func (db *DB) RemoveDate(ctx context.Context, artistID int64, date time.Time) error {
	query := `DELETE FROM availability WHERE artist_id = ? AND date(date) = ?`
	_, err := db.ExecContext(ctx, query, artistID, date.Format("2006-01-02"))
	if err != nil {
		return fmt.Errorf("failed to remove availability date: %w", err)
	}
	return nil
}

// HasDate reports whether the artist already holds a commitment on the date.
// Advisory only: two sagas for different opportunities can both see false
// here and both commit. The hard guarantee covers same-opportunity races
// only, at the conditional status write.
func (db *DB) HasDate(ctx context.Context, artistID int64, date time.Time) (bool, error) {
	query := `SELECT COUNT(*) FROM availability WHERE artist_id = ? AND date(date) = ?`
	var count int
	err := db.QueryRowContext(ctx, query, artistID, date.Format("2006-01-02")).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check availability date: %w", err)
	}
	return count > 0, nil
}

func (db *DB) GetArtistDates(ctx context.Context, artistID int64) ([]time.Time, error) {
	query := `SELECT date(date) FROM availability WHERE artist_id = ? ORDER BY date ASC`
	rows, err := db.QueryContext(ctx, query, artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to get artist dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var dateStr string
		if err := rows.Scan(&dateStr); err != nil {
			return nil, fmt.Errorf("failed to scan availability date: %w", err)
		}
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse availability date %s: %w", dateStr, err)
		}
		dates = append(dates, date)
	}
	return dates, rows.Err()
}
