package service

import (
	"context"
	"time"

	"palco/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) CreateOpenGig(ctx context.Context, gig *models.OpenGig) error {
	args := m.Called(ctx, gig)
	return args.Error(0)
}

func (m *mockRepository) GetOpenGig(ctx context.Context, id int64) (*models.OpenGig, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OpenGig), args.Error(1)
}

func (m *mockRepository) ClaimOpenGig(ctx context.Context, gigID, artistID int64) (*models.OpenGig, error) {
	args := m.Called(ctx, gigID, artistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OpenGig), args.Error(1)
}

func (m *mockRepository) RevertOpenGig(ctx context.Context, gigID int64) error {
	args := m.Called(ctx, gigID)
	return args.Error(0)
}

func (m *mockRepository) ListOpenGigs(ctx context.Context, startDate, endDate time.Time) ([]models.OpenGig, error) {
	args := m.Called(ctx, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OpenGig), args.Error(1)
}

func (m *mockRepository) CreateOffer(ctx context.Context, offer *models.DirectOffer) error {
	args := m.Called(ctx, offer)
	return args.Error(0)
}

func (m *mockRepository) GetOffer(ctx context.Context, id int64) (*models.DirectOffer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DirectOffer), args.Error(1)
}

func (m *mockRepository) CommitOffer(ctx context.Context, offerID int64, toStatus string, counterAmount decimal.Decimal) (*models.DirectOffer, error) {
	args := m.Called(ctx, offerID, toStatus, counterAmount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DirectOffer), args.Error(1)
}

func (m *mockRepository) RevertOffer(ctx context.Context, offerID int64) error {
	args := m.Called(ctx, offerID)
	return args.Error(0)
}

func (m *mockRepository) GetArtistOffers(ctx context.Context, artistID int64) ([]models.DirectOffer, error) {
	args := m.Called(ctx, artistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DirectOffer), args.Error(1)
}

func (m *mockRepository) CreateBooking(ctx context.Context, booking *models.Booking) error {
	args := m.Called(ctx, booking)
	if args.Error(0) == nil {
		booking.ID = 101
	}
	return args.Error(0)
}

func (m *mockRepository) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockRepository) DeleteBooking(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRepository) MarkPayout(ctx context.Context, bookingID int64, status string) error {
	args := m.Called(ctx, bookingID, status)
	return args.Error(0)
}

func (m *mockRepository) MarkPayment(ctx context.Context, bookingID int64, status string) error {
	args := m.Called(ctx, bookingID, status)
	return args.Error(0)
}

func (m *mockRepository) GetArtistDates(ctx context.Context, artistID int64) ([]time.Time, error) {
	args := m.Called(ctx, artistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

func (m *mockRepository) GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]models.Booking, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *mockRepository) GetArtistBookings(ctx context.Context, artistID int64) ([]models.Booking, error) {
	args := m.Called(ctx, artistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *mockRepository) AddDate(ctx context.Context, artistID int64, date time.Time) error {
	args := m.Called(ctx, artistID, date)
	return args.Error(0)
}

func (m *mockRepository) RemoveDate(ctx context.Context, artistID int64, date time.Time) error {
	args := m.Called(ctx, artistID, date)
	return args.Error(0)
}

func (m *mockRepository) HasDate(ctx context.Context, artistID int64, date time.Time) (bool, error) {
	args := m.Called(ctx, artistID, date)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepository) InsertPostings(ctx context.Context, postings []models.Posting) error {
	args := m.Called(ctx, postings)
	return args.Error(0)
}

func (m *mockRepository) DeletePostingsForBooking(ctx context.Context, bookingID int64) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}

func (m *mockRepository) GetPostingsForBooking(ctx context.Context, bookingID int64) ([]models.Posting, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Posting), args.Error(1)
}

func (m *mockRepository) LoadFeeSchedule(ctx context.Context) (*models.FeeSchedule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FeeSchedule), args.Error(1)
}

func (m *mockRepository) SaveFeeSchedule(ctx context.Context, schedule *models.FeeSchedule) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}

func (m *mockRepository) GetArtist(id int64) (*models.Artist, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Artist), args.Error(1)
}

func (m *mockRepository) ArtistsByGenre(genre string) []models.Artist {
	args := m.Called(genre)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.Artist)
}

type mockFeeSource struct {
	mock.Mock
}

func (m *mockFeeSource) Schedule(ctx context.Context) (*models.FeeSchedule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FeeSchedule), args.Error(1)
}

func (m *mockFeeSource) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
