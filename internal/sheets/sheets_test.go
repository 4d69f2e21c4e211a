package sheets

import (
	"testing"
	"time"

	"palco/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingRowValues(t *testing.T) {
	sourceID := int64(12)
	booking := &models.Booking{
		ID:            42,
		ArtistID:      3,
		VenueID:       7,
		Date:          time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		SourceType:    models.SourceOpenGig,
		SourceID:      &sourceID,
		Price:         decimal.RequireFromString("800"),
		PaymentStatus: models.PayStatusPending,
		PayoutStatus:  models.PayStatusPaid,
	}

	row := bookingRowValues(booking)
	require.Len(t, row, 10)
	assert.Equal(t, int64(42), row[0])
	assert.Equal(t, "2026-09-12", row[3])
	assert.Equal(t, "open_gig:12", row[4])
	assert.Equal(t, "800.00", row[5])
	assert.Equal(t, models.PayStatusPaid, row[7])
}

func TestBookingRowValues_PackageBookingHasNoSourceRef(t *testing.T) {
	booking := &models.Booking{
		ID:         43,
		SourceType: models.SourcePackage,
		Price:      decimal.RequireFromString("1200"),
		Date:       time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}

	row := bookingRowValues(booking)
	assert.Equal(t, models.SourcePackage, row[4])
}

func TestCellMatchesID(t *testing.T) {
	assert.True(t, cellMatchesID(float64(42), 42))
	assert.True(t, cellMatchesID("42", 42))
	assert.False(t, cellMatchesID("41", 42))
	assert.False(t, cellMatchesID(nil, 42))
}
