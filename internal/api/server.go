package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"palco/internal/config"
	"palco/internal/metrics"
	"palco/internal/service"

	"github.com/rs/zerolog"
)

var (
	errMissingAPIKey = errors.New("missing api key")
	errInvalidAPIKey = errors.New("invalid api key")
	errRateLimited   = errors.New("rate limit exceeded")
)

// Exporter generates back-office files; implemented by export.Exporter.
type Exporter interface {
	BookingsToExcel(ctx context.Context, startDate, endDate time.Time) (string, error)
}

// HTTPServer exposes the booking operations to the UI layer.
type HTTPServer struct {
	cfg         config.APIConfig
	gigs        *service.Gigs
	coordinator *service.Coordinator
	settlement  *service.Settlement
	exporter    Exporter
	server      *http.Server
	auth        *HTTPAuth
	log         zerolog.Logger
}

func NewHTTPServer(
	cfg config.APIConfig,
	gigs *service.Gigs,
	coordinator *service.Coordinator,
	settlement *service.Settlement,
	exporter Exporter,
	log *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:         cfg,
		gigs:        gigs,
		coordinator: coordinator,
		settlement:  settlement,
		exporter:    exporter,
		auth:        NewHTTPAuth(cfg),
		log:         log.With().Str("component", "http").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/gigs", srv.handlePostGig)
	mux.HandleFunc("GET /api/v1/gigs", srv.handleListGigs)
	mux.HandleFunc("POST /api/v1/gigs/{id}/claim", srv.handleClaimGig)
	mux.HandleFunc("POST /api/v1/offers", srv.handleSendOffer)
	mux.HandleFunc("GET /api/v1/offers", srv.handleListOffers)
	mux.HandleFunc("POST /api/v1/offers/{id}/accept", srv.handleAcceptOffer)
	mux.HandleFunc("POST /api/v1/offers/{id}/decline", srv.handleDeclineOffer)
	mux.HandleFunc("POST /api/v1/offers/{id}/counter", srv.handleCounterOffer)
	mux.HandleFunc("GET /api/v1/availability/{id}", srv.handleAvailability)
	mux.HandleFunc("GET /api/v1/bookings", srv.handleListBookings)
	mux.HandleFunc("POST /api/v1/bookings/{id}/payment", srv.handleMarkPayment)
	mux.HandleFunc("POST /api/v1/bookings/{id}/payout", srv.handleSettlePayout)
	mux.HandleFunc("DELETE /api/v1/bookings/{id}/payout", srv.handleRevertPayout)
	mux.HandleFunc("PUT /api/v1/admin/fees", srv.handleUpdateFees)
	mux.HandleFunc("GET /api/v1/admin/export", srv.handleExport)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.log.Info().Str("addr", s.server.Addr).Msg("http api listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the wrapped mux for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(r.URL.Path)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
