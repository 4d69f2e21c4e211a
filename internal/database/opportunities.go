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

func (db *DB) CreateOpenGig(ctx context.Context, gig *models.OpenGig) error {
	query := `INSERT INTO open_gigs (venue_id, date, start_time, end_time, payment, genre, status, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		gig.VenueID,
		gig.Date.Format("2006-01-02"),
		gig.StartTime,
		gig.EndTime,
		gig.Payment.String(),
		gig.Genre,
		models.GigStatusOpen,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create open gig: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	gig.ID = id
	gig.Status = models.GigStatusOpen
	gig.CreatedAt = now
	gig.UpdatedAt = now

	return nil
}

func (db *DB) GetOpenGig(ctx context.Context, id int64) (*models.OpenGig, error) {
	query := `SELECT id, venue_id, date(date), start_time, end_time, payment, genre, status, claimed_by, created_at, updated_at
              FROM open_gigs WHERE id = ?`

	var gig models.OpenGig
	var dateStr, paymentStr string
	var claimedBy sql.NullInt64
	err := db.QueryRowContext(ctx, query, id).Scan(
		&gig.ID, &gig.VenueID, &dateStr, &gig.StartTime, &gig.EndTime,
		&paymentStr, &gig.Genre, &gig.Status, &claimedBy, &gig.CreatedAt, &gig.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get open gig: %w", err)
	}

	gig.Date, err = time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse gig date %s: %w", dateStr, err)
	}
	gig.Payment, err = decimal.NewFromString(paymentStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse gig payment %s: %w", paymentStr, err)
	}
	if claimedBy.Valid {
		v := claimedBy.Int64
		gig.ClaimedBy = &v
	}
	return &gig, nil
}

// ClaimOpenGig is the concurrency gate of the booking saga: a conditional
// write that flips the gig to booked only if it is still open at the moment
// of the write. Exactly one of any number of concurrent claimers wins; the
// rest get ErrConflict. The returned record is the pre-claim snapshot.
func (db *DB) ClaimOpenGig(ctx context.Context, gigID, artistID int64) (*models.OpenGig, error) {
	prior, err := db.GetOpenGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if prior.Status != models.GigStatusOpen {
		return nil, ErrConflict
	}

	query := `UPDATE open_gigs SET status = ?, claimed_by = ?, updated_at = ? WHERE id = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, models.GigStatusBooked, artistID, time.Now(), gigID, models.GigStatusOpen)
	if err != nil {
		return nil, fmt.Errorf("failed to claim open gig: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, ErrConflict
	}
	return prior, nil
}

// RevertOpenGig is the compensating write: best effort, restores the gig to
// open. It does not check whether the record was modified in the meantime;
// the caller logs a failure and moves on.
func (db *DB) RevertOpenGig(ctx context.Context, gigID int64) error {
	query := `UPDATE open_gigs SET status = ?, claimed_by = NULL, updated_at = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, models.GigStatusOpen, time.Now(), gigID)
	if err != nil {
		return fmt.Errorf("failed to revert open gig: %w", err)
	}
	return nil
}

func (db *DB) ListOpenGigs(ctx context.Context, startDate, endDate time.Time) ([]models.OpenGig, error) {
	query := `SELECT id, venue_id, date(date), start_time, end_time, payment, genre, status, claimed_by, created_at, updated_at
              FROM open_gigs
              WHERE status = ? AND date(date) BETWEEN ? AND ?
              ORDER BY date, created_at`
	rows, err := db.QueryContext(ctx, query, models.GigStatusOpen,
		startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to list open gigs: %w", err)
	}
	defer rows.Close()

	var gigs []models.OpenGig
	for rows.Next() {
		var gig models.OpenGig
		var dateStr, paymentStr string
		var claimedBy sql.NullInt64
		err := rows.Scan(
			&gig.ID, &gig.VenueID, &dateStr, &gig.StartTime, &gig.EndTime,
			&paymentStr, &gig.Genre, &gig.Status, &claimedBy, &gig.CreatedAt, &gig.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan open gig: %w", err)
		}
		gig.Date, _ = time.Parse("2006-01-02", dateStr)
		gig.Payment, _ = decimal.NewFromString(paymentStr)
		if claimedBy.Valid {
			v := claimedBy.Int64
			gig.ClaimedBy = &v
		}
		gigs = append(gigs, gig)
	}
	return gigs, rows.Err()
}

func (db *DB) CreateOffer(ctx context.Context, offer *models.DirectOffer) error {
	query := `INSERT INTO direct_offers (venue_id, artist_id, date, start_time, end_time, payment, message, counter_amount, status, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		offer.VenueID,
		offer.ArtistID,
		offer.Date.Format("2006-01-02"),
		offer.StartTime,
		offer.EndTime,
		offer.Payment.String(),
		offer.Message,
		decimal.Zero.String(),
		models.OfferStatusPending,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	offer.ID = id
	offer.Status = models.OfferStatusPending
	offer.CreatedAt = now
	offer.UpdatedAt = now

	return nil
}

func (db *DB) GetOffer(ctx context.Context, id int64) (*models.DirectOffer, error) {
	query := `SELECT id, venue_id, artist_id, date(date), start_time, end_time, payment, message, counter_amount, status, created_at, updated_at
              FROM direct_offers WHERE id = ?`

	var offer models.DirectOffer
	var dateStr, paymentStr, counterStr string
	err := db.QueryRowContext(ctx, query, id).Scan(
		&offer.ID, &offer.VenueID, &offer.ArtistID, &dateStr, &offer.StartTime, &offer.EndTime,
		&paymentStr, &offer.Message, &counterStr, &offer.Status, &offer.CreatedAt, &offer.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}

	offer.Date, err = time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse offer date %s: %w", dateStr, err)
	}
	offer.Payment, err = decimal.NewFromString(paymentStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse offer payment %s: %w", paymentStr, err)
	}
	offer.CounterAmount, _ = decimal.NewFromString(counterStr)
	return &offer, nil
}

// CommitOffer performs the one-way pending->toStatus transition for an offer
// (accept, decline or counter). Same conditional-write shape as ClaimOpenGig:
// the row must still be pending, and exactly one transition ever wins.
// counterAmount is only stored for the countered transition.
func (db *DB) CommitOffer(ctx context.Context, offerID int64, toStatus string, counterAmount decimal.Decimal) (*models.DirectOffer, error) {
	prior, err := db.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if prior.Status != models.OfferStatusPending {
		return nil, ErrConflict
	}

	query := `UPDATE direct_offers SET status = ?, counter_amount = ?, updated_at = ? WHERE id = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, toStatus, counterAmount.String(), time.Now(), offerID, models.OfferStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to commit offer: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, ErrConflict
	}
	return prior, nil
}

// RevertOffer restores an offer to pending, compensating a failed acceptance
// saga. Best effort, like RevertOpenGig.
func (db *DB) RevertOffer(ctx context.Context, offerID int64) error {
	query := `UPDATE direct_offers SET status = ?, counter_amount = ?, updated_at = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, models.OfferStatusPending, decimal.Zero.String(), time.Now(), offerID)
	if err != nil {
		return fmt.Errorf("failed to revert offer: %w", err)
	}
	return nil
}

func (db *DB) GetArtistOffers(ctx context.Context, artistID int64) ([]models.DirectOffer, error) {
	query := `SELECT id, venue_id, artist_id, date(date), start_time, end_time, payment, message, counter_amount, status, created_at, updated_at
              FROM direct_offers WHERE artist_id = ? ORDER BY created_at DESC`
	rows, err := db.QueryContext(ctx, query, artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to get artist offers: %w", err)
	}
	defer rows.Close()

	var offers []models.DirectOffer
	for rows.Next() {
		var offer models.DirectOffer
		var dateStr, paymentStr, counterStr string
		err := rows.Scan(
			&offer.ID, &offer.VenueID, &offer.ArtistID, &dateStr, &offer.StartTime, &offer.EndTime,
			&paymentStr, &offer.Message, &counterStr, &offer.Status, &offer.CreatedAt, &offer.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offer.Date, _ = time.Parse("2006-01-02", dateStr)
		offer.Payment, _ = decimal.NewFromString(paymentStr)
		offer.CounterAmount, _ = decimal.NewFromString(counterStr)
		offers = append(offers, offer)
	}
	return offers, rows.Err()
}
