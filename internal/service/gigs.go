package service

import (
	"context"
	"fmt"
	"time"

	"palco/internal/database"
	"palco/internal/domain"
	"palco/internal/events"
	"palco/internal/models"

	"github.com/rs/zerolog"
)

// Gigs covers the venue-facing opportunity operations: posting open slots,
// sending direct offers, and the read paths for listings.
type Gigs struct {
	repo           domain.Repository
	publisher      domain.EventPublisher
	log            zerolog.Logger
	maxBookingDays int
}

func NewGigs(repo domain.Repository, publisher domain.EventPublisher, log *zerolog.Logger, maxBookingDays int) *Gigs {
	if maxBookingDays <= 0 {
		maxBookingDays = models.MaxBookingDaysAhead
	}
	return &Gigs{
		repo:           repo,
		publisher:      publisher,
		log:            log.With().Str("component", "gigs").Logger(),
		maxBookingDays: maxBookingDays,
	}
}

// PostOpenGig lists a new open slot and notifies matching artists through the
// event bus. Notification failures never surface to the venue.
func (g *Gigs) PostOpenGig(ctx context.Context, gig *models.OpenGig) error {
	if err := g.validate(gig.Date, gig.Payment.IsPositive()); err != nil {
		return err
	}

	if err := g.repo.CreateOpenGig(ctx, gig); err != nil {
		return err
	}

	g.log.Info().Int64("gig_id", gig.ID).Int64("venue_id", gig.VenueID).
		Str("genre", gig.Genre).Msg("open gig posted")

	if g.publisher != nil {
		_ = g.publisher.PublishJSON(events.EventGigPosted, events.GigEventPayload{
			GigID:   gig.ID,
			VenueID: gig.VenueID,
			Date:    gig.Date,
			Genre:   gig.Genre,
			Payment: gig.Payment,
		})
	}
	return nil
}

// SendDirectOffer creates a pending offer targeted at one artist.
func (g *Gigs) SendDirectOffer(ctx context.Context, offer *models.DirectOffer) error {
	if err := g.validate(offer.Date, offer.Payment.IsPositive()); err != nil {
		return err
	}
	if _, err := g.repo.GetArtist(offer.ArtistID); err != nil {
		return err
	}
	return g.repo.CreateOffer(ctx, offer)
}

func (g *Gigs) ListOpenGigs(ctx context.Context, start, end time.Time) ([]models.OpenGig, error) {
	return g.repo.ListOpenGigs(ctx, start, end)
}

func (g *Gigs) ArtistOffers(ctx context.Context, artistID int64) ([]models.DirectOffer, error) {
	return g.repo.GetArtistOffers(ctx, artistID)
}

func (g *Gigs) ArtistBookings(ctx context.Context, artistID int64) ([]models.Booking, error) {
	return g.repo.GetArtistBookings(ctx, artistID)
}

func (g *Gigs) BookingsByDateRange(ctx context.Context, start, end time.Time) ([]models.Booking, error) {
	return g.repo.GetBookingsByDateRange(ctx, start, end)
}

// ArtistAvailability returns the artist's committed dates. Venues read this
// before sending an offer; it is advisory, the booking gate decides.
func (g *Gigs) ArtistAvailability(ctx context.Context, artistID int64) ([]time.Time, error) {
	if _, err := g.repo.GetArtist(artistID); err != nil {
		return nil, err
	}
	return g.repo.GetArtistDates(ctx, artistID)
}

func (g *Gigs) validate(date time.Time, paymentPositive bool) error {
	if !paymentPositive {
		return fmt.Errorf("payment must be positive")
	}
	today := time.Now().Truncate(24 * time.Hour)
	if date.Before(today) {
		return database.ErrPastDate
	}
	if date.After(today.AddDate(0, 0, g.maxBookingDays)) {
		return database.ErrDateTooFar
	}
	return nil
}
