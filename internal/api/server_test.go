package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"palco/internal/config"
	"palco/internal/database"
	"palco/internal/models"
	"palco/internal/repository"
	"palco/internal/service"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	artistKey = "artist-key"
	venueKey  = "venue-key"
	adminKey  = "admin-key"
)

func newTestServer(t *testing.T) (*HTTPServer, *database.DB) {
	t.Helper()

	log := zerolog.Nop()
	db, err := database.NewDB(":memory:", &log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	db.SetArtists([]models.Artist{
		{ID: 3, Name: "Ana", Genres: []string{"MPB"}, Plan: models.PlanStandard},
		{ID: 4, Name: "Bruno", Genres: []string{"Rock"}, Plan: models.PlanPro},
	})
	require.NoError(t, db.SaveFeeSchedule(t.Context(), &models.FeeSchedule{
		StandardRate:   decimal.RequireFromString("0.10"),
		ProRate:        decimal.RequireFromString("0.08"),
		GatewayPercent: decimal.RequireFromString("0.0499"),
		GatewayFixed:   decimal.RequireFromString("3.67"),
	}))

	cfg := config.APIConfig{
		Port: 0,
		Auth: config.APIAuthConfig{
			Enabled:      true,
			HeaderAPIKey: "x-api-key",
			APIKeys: []config.APIClientKey{
				{Key: artistKey, Name: "Ana", ActorID: 3, Role: "artist"},
				{Key: venueKey, Name: "Casa Azul", ActorID: 7, Role: "venue"},
				{Key: adminKey, Name: "ops", ActorID: 1, Role: "admin"},
			},
		},
	}

	fees := repository.NewMemoryFeeCache(db, time.Minute)
	gigs := service.NewGigs(db, nil, &log, 0)
	coordinator := service.NewCoordinator(db, nil, nil, &log, 0)
	settlement := service.NewSettlement(db, fees, nil, nil, &log)

	return NewHTTPServer(cfg, gigs, coordinator, settlement, nil, &log), db
}

func doJSON(t *testing.T, srv *HTTPServer, method, path, apiKey string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func postGig(t *testing.T, srv *HTTPServer) int64 {
	t.Helper()

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/gigs", venueKey, gigRequest{
		Date:      time.Now().AddDate(0, 0, 7).Format(dateLayout),
		StartTime: "21:00",
		EndTime:   "23:00",
		Payment:   "800",
		Genre:     "MPB",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var gig models.OpenGig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gig))
	require.NotZero(t, gig.ID)
	return gig.ID
}

func TestAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/gigs", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/gigs", "wrong-key", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleEnforcement(t *testing.T) {
	srv, _ := newTestServer(t)

	// Artists cannot post gigs, venues cannot claim them.
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/gigs", artistKey, gigRequest{
		Date: time.Now().AddDate(0, 0, 7).Format(dateLayout), Payment: "800",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	gigID := postGig(t, srv)
	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/v1/gigs/%d/claim", gigID), venueKey, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestClaimGigLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	gigID := postGig(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/gigs", artistKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Gigs []models.OpenGig `json:"gigs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Gigs, 1)

	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/v1/gigs/%d/claim", gigID), artistKey, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var booking models.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &booking))
	assert.Equal(t, int64(3), booking.ArtistID)
	assert.Equal(t, "800", booking.Price.String())

	// The slot is gone: a second claim collapses into a conflict.
	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/v1/gigs/%d/claim", gigID), artistKey, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The committed date shows up in the artist's availability.
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/availability/3", venueKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var avail struct {
		Dates []string `json:"dates"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &avail))
	assert.Equal(t, []string{booking.Date.Format(dateLayout)}, avail.Dates)
}

func TestClaimGig_InvalidID(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/gigs/abc/claim", artistKey, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/gigs/9999/claim", artistKey, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOfferNegotiation(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/offers", venueKey, offerRequest{
		ArtistID: 3,
		Date:     time.Now().AddDate(0, 0, 10).Format(dateLayout),
		Payment:  "900",
		Message:  "Sexta à noite",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var offer models.DirectOffer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &offer))

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/offers", artistKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var offers struct {
		Offers []models.DirectOffer `json:"offers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &offers))
	require.Len(t, offers.Offers, 1)

	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/v1/offers/%d/counter", offer.ID), artistKey, counterRequest{Amount: "950"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// A countered offer is out of the pending state; accept now conflicts.
	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/v1/offers/%d/accept", offer.ID), artistKey, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAcceptOffer_CreatesBooking(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/offers", venueKey, offerRequest{
		ArtistID: 3,
		Date:     time.Now().AddDate(0, 0, 12).Format(dateLayout),
		Payment:  "700",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var offer models.DirectOffer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &offer))

	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/v1/offers/%d/accept", offer.ID), artistKey, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var booking models.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &booking))
	assert.Equal(t, models.SourceDirectOffer, booking.SourceType)
	assert.Equal(t, "700", booking.Price.String())
}

func TestDeclineOffer_OtherArtistSeesNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/offers", venueKey, offerRequest{
		ArtistID: 4,
		Date:     time.Now().AddDate(0, 0, 5).Format(dateLayout),
		Payment:  "500",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var offer models.DirectOffer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &offer))

	// Offer belongs to artist 4; artist 3 must not even learn it exists.
	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/v1/offers/%d/decline", offer.ID), artistKey, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSettlementEndpoints(t *testing.T) {
	srv, db := newTestServer(t)
	gigID := postGig(t, srv)

	rec := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/v1/gigs/%d/claim", gigID), artistKey, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var booking models.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &booking))

	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/payment", booking.ID), venueKey, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/payout", booking.ID), adminKey, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var settled struct {
		Postings []models.Posting `json:"postings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settled))
	require.Len(t, settled.Postings, 3)

	stored, err := db.GetBooking(t.Context(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PayStatusPaid, stored.PaymentStatus)
	assert.Equal(t, models.PayStatusPaid, stored.PayoutStatus)

	rec = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/v1/bookings/%d/payout", booking.ID), adminKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	postings, err := db.GetPostingsForBooking(t.Context(), booking.ID)
	require.NoError(t, err)
	assert.Empty(t, postings)
}

func TestSettlement_RequiresAdmin(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/bookings/1/payout", artistKey, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateFees(t *testing.T) {
	srv, db := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPut, "/api/v1/admin/fees", adminKey, feesRequest{
		StandardRate:   "0.12",
		ProRate:        "0.09",
		GatewayPercent: "0.05",
		GatewayFixed:   "4.00",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	schedule, err := db.LoadFeeSchedule(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "0.12", schedule.StandardRate.String())

	rec = doJSON(t, srv, http.MethodPut, "/api/v1/admin/fees", adminKey, feesRequest{StandardRate: "not-a-number"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExport_Unconfigured(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/admin/export", adminKey, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRateLimit(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.auth.cfg.RateLimit = config.APIRateLimitConfig{RPS: 1, Burst: 2}

	var limited bool
	for i := 0; i < 5; i++ {
		rec := doJSON(t, srv, http.MethodGet, "/api/v1/gigs", artistKey, nil)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited, "expected a 429 after the burst is spent")
}
