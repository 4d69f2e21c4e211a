package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"palco/internal/database"
	"palco/internal/models"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type gigRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Payment   string `json:"payment"`
	Genre     string `json:"genre"`
}

type offerRequest struct {
	ArtistID  int64  `json:"artist_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Payment   string `json:"payment"`
	Message   string `json:"message"`
}

type counterRequest struct {
	Amount string `json:"amount"`
}

type feesRequest struct {
	StandardRate   string `json:"standard_rate"`
	ProRate        string `json:"pro_rate"`
	GatewayPercent string `json:"gateway_percent"`
	GatewayFixed   string `json:"gateway_fixed"`
}

func (s *HTTPServer) handlePostGig(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireRole(r, "venue", "admin")
	if !ok {
		writeError(w, http.StatusForbidden, "venue role required")
		return
	}

	var body gigRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	date, err := time.Parse(dateLayout, body.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}
	payment, err := decimal.NewFromString(body.Payment)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payment amount")
		return
	}

	gig := &models.OpenGig{
		VenueID:   actor.ID,
		Date:      date,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
		Payment:   payment,
		Genre:     body.Genre,
	}
	if err := s.gigs.PostOpenGig(r.Context(), gig); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, gig)
}

func (s *HTTPServer) handleListGigs(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r, 30)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	gigs, err := s.gigs.ListOpenGigs(r.Context(), start, end)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"gigs": gigs})
}

func (s *HTTPServer) handleClaimGig(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireRole(r, "artist")
	if !ok {
		writeError(w, http.StatusForbidden, "artist role required")
		return
	}
	gigID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := s.coordinator.ClaimOpenGig(r.Context(), gigID, actor.ID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *HTTPServer) handleSendOffer(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireRole(r, "venue", "admin")
	if !ok {
		writeError(w, http.StatusForbidden, "venue role required")
		return
	}

	var body offerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	date, err := time.Parse(dateLayout, body.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}
	payment, err := decimal.NewFromString(body.Payment)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payment amount")
		return
	}

	offer := &models.DirectOffer{
		VenueID:   actor.ID,
		ArtistID:  body.ArtistID,
		Date:      date,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
		Payment:   payment,
		Message:   body.Message,
	}
	if err := s.gigs.SendDirectOffer(r.Context(), offer); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, offer)
}

func (s *HTTPServer) handleListOffers(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireRole(r, "artist")
	if !ok {
		writeError(w, http.StatusForbidden, "artist role required")
		return
	}

	offers, err := s.gigs.ArtistOffers(r.Context(), actor.ID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"offers": offers})
}

func (s *HTTPServer) handleAcceptOffer(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireRole(r, "artist")
	if !ok {
		writeError(w, http.StatusForbidden, "artist role required")
		return
	}
	offerID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := s.coordinator.AcceptDirectOffer(r.Context(), offerID, actor.ID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *HTTPServer) handleDeclineOffer(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireRole(r, "artist")
	if !ok {
		writeError(w, http.StatusForbidden, "artist role required")
		return
	}
	offerID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.coordinator.DeclineOffer(r.Context(), offerID, actor.ID); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": models.OfferStatusDeclined})
}

func (s *HTTPServer) handleCounterOffer(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireRole(r, "artist")
	if !ok {
		writeError(w, http.StatusForbidden, "artist role required")
		return
	}
	offerID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var body counterRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid counter amount")
		return
	}

	if err := s.coordinator.CounterOffer(r.Context(), offerID, actor.ID, amount); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": models.OfferStatusCountered})
}

func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(r, "artist", "venue", "admin"); !ok {
		writeError(w, http.StatusForbidden, "authenticated role required")
		return
	}
	artistID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dates, err := s.gigs.ArtistAvailability(r.Context(), artistID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	formatted := make([]string, 0, len(dates))
	for _, d := range dates {
		formatted = append(formatted, d.Format(dateLayout))
	}
	writeJSON(w, http.StatusOK, map[string]any{"artist_id": artistID, "dates": formatted})
}

func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireRole(r, "artist", "admin")
	if !ok {
		writeError(w, http.StatusForbidden, "artist or admin role required")
		return
	}

	if actor.Role == "artist" {
		bookings, err := s.gigs.ArtistBookings(r.Context(), actor.ID)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
		return
	}

	start, end, err := dateRange(r, 30)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bookings, err := s.gigs.BookingsByDateRange(r.Context(), start, end)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handleMarkPayment(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(r, "venue", "admin"); !ok {
		writeError(w, http.StatusForbidden, "venue or admin role required")
		return
	}
	bookingID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.settlement.MarkPaymentReceived(r.Context(), bookingID); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"payment_status": models.PayStatusPaid})
}

func (s *HTTPServer) handleSettlePayout(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(r, "admin"); !ok {
		writeError(w, http.StatusForbidden, "admin role required")
		return
	}
	bookingID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	postings, err := s.settlement.MarkPayoutPaid(r.Context(), bookingID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"postings": postings})
}

func (s *HTTPServer) handleRevertPayout(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(r, "admin"); !ok {
		writeError(w, http.StatusForbidden, "admin role required")
		return
	}
	bookingID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.settlement.RevertPayout(r.Context(), bookingID); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"payout_status": models.PayStatusPending})
}

func (s *HTTPServer) handleUpdateFees(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(r, "admin"); !ok {
		writeError(w, http.StatusForbidden, "admin role required")
		return
	}

	var body feesRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	schedule, err := parseFeeSchedule(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.settlement.UpdateFeeSchedule(r.Context(), schedule); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(r, "admin"); !ok {
		writeError(w, http.StatusForbidden, "admin role required")
		return
	}
	if s.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "exports are not configured")
		return
	}

	start, end, err := dateRange(r, 30)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	filePath, err := s.exporter.BookingsToExcel(r.Context(), start, end)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"file": filePath})
}

// writeDomainError collapses the domain error taxonomy into the three
// outcomes the UI understands: conflict, not found / bad input, and generic
// failure.
func (s *HTTPServer) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrConflict):
		writeError(w, http.StatusConflict, "no longer available")
	case errors.Is(err, database.ErrNotAvailable):
		writeError(w, http.StatusConflict, "date already booked")
	case errors.Is(err, database.ErrNotFound), errors.Is(err, database.ErrUnknownArtist):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, database.ErrPastDate):
		writeError(w, http.StatusBadRequest, "date is in the past")
	case errors.Is(err, database.ErrDateTooFar):
		writeError(w, http.StatusBadRequest, "date is beyond the booking horizon")
	default:
		s.log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "could not complete, try again")
	}
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func dateRange(r *http.Request, defaultDays int) (time.Time, time.Time, error) {
	start := time.Now()
	end := start.AddDate(0, 0, defaultDays)

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return start, end, errors.New("invalid from date; expected YYYY-MM-DD")
		}
		start = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return start, end, errors.New("invalid to date; expected YYYY-MM-DD")
		}
		end = parsed
	}
	if end.Before(start) {
		return start, end, errors.New("to date precedes from date")
	}
	return start, end, nil
}

func parseFeeSchedule(body feesRequest) (*models.FeeSchedule, error) {
	var schedule models.FeeSchedule
	var err error
	if schedule.StandardRate, err = decimal.NewFromString(body.StandardRate); err != nil {
		return nil, errors.New("invalid standard_rate")
	}
	if schedule.ProRate, err = decimal.NewFromString(body.ProRate); err != nil {
		return nil, errors.New("invalid pro_rate")
	}
	if schedule.GatewayPercent, err = decimal.NewFromString(body.GatewayPercent); err != nil {
		return nil, errors.New("invalid gateway_percent")
	}
	if schedule.GatewayFixed, err = decimal.NewFromString(body.GatewayFixed); err != nil {
		return nil, errors.New("invalid gateway_fixed")
	}
	return &schedule, nil
}
