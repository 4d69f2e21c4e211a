package service

import (
	"context"
	"fmt"

	"palco/internal/domain"
	"palco/internal/events"
	"palco/internal/metrics"
	"palco/internal/models"

	"github.com/rs/zerolog"
)

// Settlement generates and retires the financial postings tied to a booking
// payout. Postings are always regenerated as a full triple, never patched,
// which keeps repeated settlement calls idempotent.
type Settlement struct {
	repo domain.Repository
	fees domain.FeeSource
	pub  domain.EventPublisher
	sync domain.SyncWorker
	log  zerolog.Logger
}

func NewSettlement(repo domain.Repository, fees domain.FeeSource, pub domain.EventPublisher, sync domain.SyncWorker, log *zerolog.Logger) *Settlement {
	return &Settlement{
		repo: repo,
		fees: fees,
		pub:  pub,
		sync: sync,
		log:  log.With().Str("component", "settlement").Logger(),
	}
}

// MarkPayoutPaid settles a booking payout:
//
//  1. delete any prior postings for the booking (idempotency reset)
//  2. flip payout_status to paid
//  3. compute and insert the posting triple from the current fee schedule
//
// If the insert fails the payout flip is reverted. The deletion from step 1
// is not rolled back: absent postings are the safe terminal state, duplicated
// postings are not.
func (s *Settlement) MarkPayoutPaid(ctx context.Context, bookingID int64) ([]models.Posting, error) {
	log := s.log.With().Int64("booking_id", bookingID).Logger()

	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	schedule, err := s.fees.Schedule(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load fee schedule: %w", err)
	}

	plan := models.PlanStandard
	if artist, err := s.repo.GetArtist(booking.ArtistID); err == nil {
		plan = artist.Plan
	}

	if err := s.repo.DeletePostingsForBooking(ctx, bookingID); err != nil {
		return nil, fmt.Errorf("failed to clear postings: %w", err)
	}

	if err := s.repo.MarkPayout(ctx, bookingID, models.PayStatusPaid); err != nil {
		return nil, err
	}

	postings := BuildPostings(booking, schedule, plan)
	if err := s.repo.InsertPostings(ctx, postings); err != nil {
		metrics.IncSettlement("failed")
		if revErr := s.repo.MarkPayout(ctx, bookingID, models.PayStatusPending); revErr != nil {
			log.Error().Err(revErr).Msg("failed to revert payout status after posting failure")
		}
		return nil, fmt.Errorf("failed to insert postings: %w", err)
	}

	metrics.IncSettlement("paid")
	log.Info().Str("plan", plan).Msg("payout settled")

	if s.pub != nil {
		_ = s.pub.PublishJSON(events.EventPayoutSettled, events.BookingEventPayload{
			BookingID: booking.ID,
			ArtistID:  booking.ArtistID,
			VenueID:   booking.VenueID,
			Date:      booking.Date,
			Price:     booking.Price,
			Source:    booking.SourceType,
		})
	}
	if s.sync != nil {
		if err := s.sync.EnqueueStatus(ctx, bookingID, models.PayStatusPaid); err != nil {
			log.Warn().Err(err).Msg("failed to enqueue payout mirror task")
		}
	}

	return postings, nil
}

// MarkPaymentReceived records that the venue's payment for a booking cleared.
// Payment and payout are independent flags; settlement of the payout does not
// require the payment to be recorded first.
func (s *Settlement) MarkPaymentReceived(ctx context.Context, bookingID int64) error {
	if _, err := s.repo.GetBooking(ctx, bookingID); err != nil {
		return err
	}
	if err := s.repo.MarkPayment(ctx, bookingID, models.PayStatusPaid); err != nil {
		return err
	}
	s.log.Info().Int64("booking_id", bookingID).Msg("venue payment recorded")
	return nil
}

// RevertPayout moves a settled booking back to pending and removes every
// posting generated for it.
func (s *Settlement) RevertPayout(ctx context.Context, bookingID int64) error {
	log := s.log.With().Int64("booking_id", bookingID).Logger()

	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	if err := s.repo.MarkPayout(ctx, bookingID, models.PayStatusPending); err != nil {
		return err
	}
	if err := s.repo.DeletePostingsForBooking(ctx, bookingID); err != nil {
		return fmt.Errorf("failed to delete postings: %w", err)
	}

	metrics.IncSettlement("reverted")
	log.Info().Msg("payout reverted")

	if s.pub != nil {
		_ = s.pub.PublishJSON(events.EventPayoutReverted, events.BookingEventPayload{
			BookingID: booking.ID,
			ArtistID:  booking.ArtistID,
			VenueID:   booking.VenueID,
			Date:      booking.Date,
			Price:     booking.Price,
			Source:    booking.SourceType,
		})
	}
	if s.sync != nil {
		if err := s.sync.EnqueueStatus(ctx, bookingID, models.PayStatusPending); err != nil {
			log.Warn().Err(err).Msg("failed to enqueue payout mirror task")
		}
	}

	return nil
}

// UpdateFeeSchedule saves the new rates and invalidates the fee cache so the
// next settlement reads the fresh values.
func (s *Settlement) UpdateFeeSchedule(ctx context.Context, schedule *models.FeeSchedule) error {
	if err := s.repo.SaveFeeSchedule(ctx, schedule); err != nil {
		return err
	}
	if err := s.fees.Invalidate(ctx); err != nil {
		// Stale cache self-heals at TTL expiry; log and carry on.
		s.log.Warn().Err(err).Msg("failed to invalidate fee cache")
	}
	return nil
}

// BuildPostings derives the fixed posting triple from a booking price:
// platform commission income, gateway percentage-fee expense, and the fixed
// payout-fee expense. Values are rounded to cents.
func BuildPostings(booking *models.Booking, schedule *models.FeeSchedule, plan string) []models.Posting {
	commission := booking.Price.Mul(schedule.RateFor(plan)).Round(2)
	gatewayFee := booking.Price.Mul(schedule.GatewayPercent).Round(2)
	fixedFee := schedule.GatewayFixed.Round(2)

	return []models.Posting{
		{
			BookingID: booking.ID,
			Type:      models.PostingIncome,
			Category:  models.CategoryCommission,
			Value:     commission,
			Status:    models.PostingStatusPending,
			DueDate:   booking.Date,
		},
		{
			BookingID: booking.ID,
			Type:      models.PostingExpense,
			Category:  models.CategoryGatewayFee,
			Value:     gatewayFee,
			Status:    models.PostingStatusPending,
			DueDate:   booking.Date,
		},
		{
			BookingID: booking.ID,
			Type:      models.PostingExpense,
			Category:  models.CategoryPayoutFee,
			Value:     fixedFee,
			Status:    models.PostingStatusPending,
			DueDate:   booking.Date,
		},
	}
}
