package database

import (
	"context"
	"testing"
	"time"

	"palco/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedBooking(t *testing.T, db *DB, artistID int64, date time.Time) *models.Booking {
	t.Helper()
	sourceID := int64(1)
	booking := &models.Booking{
		ArtistID:   artistID,
		VenueID:    7,
		Date:       date,
		SourceType: models.SourceOpenGig,
		SourceID:   &sourceID,
		Price:      decimal.RequireFromString("800"),
	}
	require.NoError(t, db.CreateBooking(context.Background(), booking))
	return booking
}

func TestCreateBooking_DefaultsToPending(t *testing.T) {
	db := newTestDB(t)
	booking := seedBooking(t, db, 3, time.Now().AddDate(0, 0, 14))

	stored, err := db.GetBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PayStatusPending, stored.PaymentStatus)
	assert.Equal(t, models.PayStatusPending, stored.PayoutStatus)
	assert.True(t, stored.Price.Equal(decimal.RequireFromString("800")))
	require.NotNil(t, stored.SourceID)
	assert.Equal(t, int64(1), *stored.SourceID)
}

func TestGetBooking_NotFound(t *testing.T) {
	db := newTestDB(t)
	_, err := db.GetBooking(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteBooking_RemovesRow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	booking := seedBooking(t, db, 3, time.Now().AddDate(0, 0, 14))

	require.NoError(t, db.DeleteBooking(ctx, booking.ID))

	_, err := db.GetBooking(ctx, booking.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkPayout_FlipsStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	booking := seedBooking(t, db, 3, time.Now().AddDate(0, 0, 14))

	require.NoError(t, db.MarkPayout(ctx, booking.ID, models.PayStatusPaid))

	stored, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PayStatusPaid, stored.PayoutStatus)
	assert.Equal(t, models.PayStatusPending, stored.PaymentStatus, "payment status stays untouched")
}

func TestMarkPayout_MissingBooking(t *testing.T) {
	db := newTestDB(t)
	err := db.MarkPayout(context.Background(), 9999, models.PayStatusPaid)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetBookingsByDateRange(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedBooking(t, db, 3, time.Now().AddDate(0, 0, 5))
	seedBooking(t, db, 4, time.Now().AddDate(0, 0, 10))
	seedBooking(t, db, 5, time.Now().AddDate(0, 0, 40))

	bookings, err := db.GetBookingsByDateRange(ctx, time.Now(), time.Now().AddDate(0, 0, 14))
	require.NoError(t, err)
	assert.Len(t, bookings, 2)
}

func TestGetArtistBookings(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedBooking(t, db, 3, time.Now().AddDate(0, 0, 5))
	seedBooking(t, db, 3, time.Now().AddDate(0, 0, 12))
	seedBooking(t, db, 4, time.Now().AddDate(0, 0, 12))

	bookings, err := db.GetArtistBookings(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, bookings, 2)
	for _, b := range bookings {
		assert.Equal(t, int64(3), b.ArtistID)
	}
}
