package domain

import (
	"context"
	"time"

	"palco/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
)

// Repository is the storage surface of the booking core. Every write is
// row-scoped; there are no multi-row transactions, which is why the
// coordinator exists.
type Repository interface {
	// Opportunity store
	CreateOpenGig(ctx context.Context, gig *models.OpenGig) error
	GetOpenGig(ctx context.Context, id int64) (*models.OpenGig, error)
	ClaimOpenGig(ctx context.Context, gigID, artistID int64) (*models.OpenGig, error)
	RevertOpenGig(ctx context.Context, gigID int64) error
	ListOpenGigs(ctx context.Context, startDate, endDate time.Time) ([]models.OpenGig, error)
	CreateOffer(ctx context.Context, offer *models.DirectOffer) error
	GetOffer(ctx context.Context, id int64) (*models.DirectOffer, error)
	CommitOffer(ctx context.Context, offerID int64, toStatus string, counterAmount decimal.Decimal) (*models.DirectOffer, error)
	RevertOffer(ctx context.Context, offerID int64) error
	GetArtistOffers(ctx context.Context, artistID int64) ([]models.DirectOffer, error)

	// Booking ledger
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
	MarkPayout(ctx context.Context, bookingID int64, status string) error
	MarkPayment(ctx context.Context, bookingID int64, status string) error
	GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]models.Booking, error)
	GetArtistBookings(ctx context.Context, artistID int64) ([]models.Booking, error)

	// Availability ledger
	AddDate(ctx context.Context, artistID int64, date time.Time) error
	RemoveDate(ctx context.Context, artistID int64, date time.Time) error
	HasDate(ctx context.Context, artistID int64, date time.Time) (bool, error)
	GetArtistDates(ctx context.Context, artistID int64) ([]time.Time, error)

	// Financial postings
	InsertPostings(ctx context.Context, postings []models.Posting) error
	DeletePostingsForBooking(ctx context.Context, bookingID int64) error
	GetPostingsForBooking(ctx context.Context, bookingID int64) ([]models.Posting, error)

	// Fee configuration
	LoadFeeSchedule(ctx context.Context) (*models.FeeSchedule, error)
	SaveFeeSchedule(ctx context.Context, schedule *models.FeeSchedule) error

	// Roster
	GetArtist(id int64) (*models.Artist, error)
	ArtistsByGenre(genre string) []models.Artist
}

// FeeSource serves the commission configuration at settlement time.
// Implementations cache and must support explicit invalidation.
type FeeSource interface {
	Schedule(ctx context.Context) (*models.FeeSchedule, error)
	Invalidate(ctx context.Context) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// SyncWorker queues booking-mirror tasks for the sheets worker. Nil-safe at
// every call site; the mirror is optional infrastructure.
type SyncWorker interface {
	EnqueueUpsert(ctx context.Context, booking *models.Booking) error
	EnqueueStatus(ctx context.Context, bookingID int64, status string) error
	EnqueueDelete(ctx context.Context, bookingID int64) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// SheetsWriter mirrors the booking ledger into a spreadsheet for the back
// office.
type SheetsWriter interface {
	UpsertBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error
	DeleteBookingRow(ctx context.Context, bookingID int64) error
	ReplaceBookingsSheet(ctx context.Context, bookings []models.Booking) error
}
