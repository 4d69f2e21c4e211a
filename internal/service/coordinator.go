package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"palco/internal/database"
	"palco/internal/domain"
	"palco/internal/events"
	"palco/internal/metrics"
	"palco/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Coordinator runs the multi-step booking sequence over row-scoped storage.
// The store offers no multi-row transactions, so each acceptance is a saga:
// conditional commit on the opportunity, booking insert, availability insert,
// with best-effort compensation when a later step fails.
type Coordinator struct {
	repo           domain.Repository
	publisher      domain.EventPublisher
	sync           domain.SyncWorker
	log            zerolog.Logger
	maxBookingDays int
}

func NewCoordinator(repo domain.Repository, publisher domain.EventPublisher, sync domain.SyncWorker, log *zerolog.Logger, maxBookingDays int) *Coordinator {
	if maxBookingDays <= 0 {
		maxBookingDays = models.MaxBookingDaysAhead
	}
	return &Coordinator{
		repo:           repo,
		publisher:      publisher,
		sync:           sync,
		log:            log.With().Str("component", "coordinator").Logger(),
		maxBookingDays: maxBookingDays,
	}
}

// ClaimOpenGig books an open gig for an artist. The conditional write on the
// gig row is the only hard concurrency guarantee: of any number of concurrent
// claimers exactly one proceeds past it. The availability pre-check is
// advisory, it fails fast on an obviously taken date but does not protect
// against two different opportunities racing for the same artist/date.
func (c *Coordinator) ClaimOpenGig(ctx context.Context, gigID, artistID int64) (*models.Booking, error) {
	sagaID := uuid.NewString()
	log := c.log.With().Str("saga_id", sagaID).Int64("gig_id", gigID).Int64("artist_id", artistID).Logger()

	if _, err := c.repo.GetArtist(artistID); err != nil {
		return nil, err
	}

	gig, err := c.repo.GetOpenGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if err := c.validateDate(gig.Date); err != nil {
		return nil, err
	}

	taken, err := c.repo.HasDate(ctx, artistID, gig.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to check availability: %w", err)
	}
	if taken {
		return nil, database.ErrNotAvailable
	}

	// Step 1: the gate. Conflict here means a lost race, nothing to unwind.
	prior, err := c.repo.ClaimOpenGig(ctx, gigID, artistID)
	if err != nil {
		if errors.Is(err, database.ErrConflict) {
			metrics.IncConflict()
			log.Info().Msg("gig claim lost the race")
		}
		return nil, err
	}

	booking := &models.Booking{
		ArtistID:   artistID,
		VenueID:    prior.VenueID,
		Date:       prior.Date,
		SourceType: models.SourceOpenGig,
		SourceID:   &prior.ID,
		Price:      prior.Payment,
	}

	// Step 2: booking insert. Failure rolls the gate back.
	if err := c.repo.CreateBooking(ctx, booking); err != nil {
		metrics.IncCompensation("booking_insert")
		c.compensate(log, "revert_open_gig", c.repo.RevertOpenGig(ctx, gigID))
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	// Step 3: availability insert. Failure unwinds both prior steps,
	// best effort only.
	if err := c.repo.AddDate(ctx, artistID, prior.Date); err != nil {
		metrics.IncCompensation("availability_insert")
		c.compensate(log, "delete_booking", c.repo.DeleteBooking(ctx, booking.ID))
		c.compensate(log, "revert_open_gig", c.repo.RevertOpenGig(ctx, gigID))
		return nil, fmt.Errorf("failed to update availability: %w", err)
	}

	metrics.IncCommit(models.SourceOpenGig)
	log.Info().Int64("booking_id", booking.ID).Msg("open gig claimed")

	c.publishBookingEvent(events.EventGigClaimed, booking)
	c.enqueueUpsert(ctx, booking, log)

	return booking, nil
}

// AcceptDirectOffer commits a pending offer into a booking. Same saga shape
// as ClaimOpenGig with the offer row as the gate.
func (c *Coordinator) AcceptDirectOffer(ctx context.Context, offerID, artistID int64) (*models.Booking, error) {
	sagaID := uuid.NewString()
	log := c.log.With().Str("saga_id", sagaID).Int64("offer_id", offerID).Int64("artist_id", artistID).Logger()

	offer, err := c.repo.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.ArtistID != artistID {
		return nil, database.ErrNotFound
	}
	if err := c.validateDate(offer.Date); err != nil {
		return nil, err
	}

	taken, err := c.repo.HasDate(ctx, artistID, offer.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to check availability: %w", err)
	}
	if taken {
		return nil, database.ErrNotAvailable
	}

	prior, err := c.repo.CommitOffer(ctx, offerID, models.OfferStatusAccepted, decimal.Zero)
	if err != nil {
		if errors.Is(err, database.ErrConflict) {
			metrics.IncConflict()
			log.Info().Msg("offer acceptance lost the race")
		}
		return nil, err
	}

	// A countered offer that was later accepted books at the counter amount.
	price := prior.Payment
	if prior.CounterAmount.IsPositive() {
		price = prior.CounterAmount
	}

	booking := &models.Booking{
		ArtistID:   artistID,
		VenueID:    prior.VenueID,
		Date:       prior.Date,
		SourceType: models.SourceDirectOffer,
		SourceID:   &prior.ID,
		Price:      price,
	}

	if err := c.repo.CreateBooking(ctx, booking); err != nil {
		metrics.IncCompensation("booking_insert")
		c.compensate(log, "revert_offer", c.repo.RevertOffer(ctx, offerID))
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	if err := c.repo.AddDate(ctx, artistID, prior.Date); err != nil {
		metrics.IncCompensation("availability_insert")
		c.compensate(log, "delete_booking", c.repo.DeleteBooking(ctx, booking.ID))
		c.compensate(log, "revert_offer", c.repo.RevertOffer(ctx, offerID))
		return nil, fmt.Errorf("failed to update availability: %w", err)
	}

	metrics.IncCommit(models.SourceDirectOffer)
	log.Info().Int64("booking_id", booking.ID).Msg("direct offer accepted")

	c.publishBookingEvent(events.EventOfferAccepted, booking)
	c.enqueueUpsert(ctx, booking, log)

	return booking, nil
}

// DeclineOffer is a status-only transition through the same conditional gate.
// No booking, no availability, nothing to compensate.
func (c *Coordinator) DeclineOffer(ctx context.Context, offerID, artistID int64) error {
	offer, err := c.repo.GetOffer(ctx, offerID)
	if err != nil {
		return err
	}
	if offer.ArtistID != artistID {
		return database.ErrNotFound
	}

	if _, err := c.repo.CommitOffer(ctx, offerID, models.OfferStatusDeclined, decimal.Zero); err != nil {
		if errors.Is(err, database.ErrConflict) {
			metrics.IncConflict()
		}
		return err
	}

	if c.publisher != nil {
		_ = c.publisher.PublishJSON(events.EventOfferDeclined, events.GigEventPayload{
			GigID:    offer.ID,
			VenueID:  offer.VenueID,
			ArtistID: offer.ArtistID,
			Date:     offer.Date,
			Payment:  offer.Payment,
		})
	}
	return nil
}

// CounterOffer moves a pending offer to countered with the artist's asking
// amount. Status-only, like DeclineOffer; the venue re-offers if interested.
func (c *Coordinator) CounterOffer(ctx context.Context, offerID, artistID int64, amount decimal.Decimal) error {
	offer, err := c.repo.GetOffer(ctx, offerID)
	if err != nil {
		return err
	}
	if offer.ArtistID != artistID {
		return database.ErrNotFound
	}
	if !amount.IsPositive() {
		return fmt.Errorf("counter amount must be positive")
	}

	if _, err := c.repo.CommitOffer(ctx, offerID, models.OfferStatusCountered, amount); err != nil {
		if errors.Is(err, database.ErrConflict) {
			metrics.IncConflict()
		}
		return err
	}

	if c.publisher != nil {
		_ = c.publisher.PublishJSON(events.EventOfferCountered, events.GigEventPayload{
			GigID:    offer.ID,
			VenueID:  offer.VenueID,
			ArtistID: offer.ArtistID,
			Date:     offer.Date,
			Payment:  amount,
		})
	}
	return nil
}

func (c *Coordinator) validateDate(date time.Time) error {
	today := time.Now().Truncate(24 * time.Hour)
	if date.Before(today) {
		return database.ErrPastDate
	}
	if date.After(today.AddDate(0, 0, c.maxBookingDays)) {
		return database.ErrDateTooFar
	}
	return nil
}

func (c *Coordinator) publishBookingEvent(eventType string, booking *models.Booking) {
	if c.publisher == nil {
		return
	}
	_ = c.publisher.PublishJSON(eventType, events.BookingEventPayload{
		BookingID: booking.ID,
		ArtistID:  booking.ArtistID,
		VenueID:   booking.VenueID,
		Date:      booking.Date,
		Price:     booking.Price,
		Source:    booking.SourceType,
	})
}

func (c *Coordinator) enqueueUpsert(ctx context.Context, booking *models.Booking, log zerolog.Logger) {
	if c.sync == nil {
		return
	}
	if err := c.sync.EnqueueUpsert(ctx, booking); err != nil {
		// The mirror is advisory; never fail the saga over it.
		log.Warn().Err(err).Msg("failed to enqueue booking mirror task")
	}
}

// compensate records the outcome of a compensating write. Failures are
// logged with the saga context and never escalated past the original error;
// the system accepts a partially committed state and relies on admin
// reconciliation.
func (c *Coordinator) compensate(log zerolog.Logger, action string, err error) {
	if err == nil {
		return
	}
	metrics.IncCompensationFailure()
	log.Error().Err(err).Str("compensation", action).Msg("compensating write failed")
}
