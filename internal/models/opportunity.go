package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenGig is a venue-posted slot any matching artist can claim.
type OpenGig struct {
	ID        int64           `json:"id"`
	VenueID   int64           `json:"venue_id"`
	Date      time.Time       `json:"date"`
	StartTime string          `json:"start_time"`
	EndTime   string          `json:"end_time"`
	Payment   decimal.Decimal `json:"payment"`
	Genre     string          `json:"genre"`
	Status    string          `json:"status"` // open, booked
	ClaimedBy *int64          `json:"claimed_by,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// DirectOffer is a venue-to-artist proposal for a specific date.
type DirectOffer struct {
	ID            int64           `json:"id"`
	VenueID       int64           `json:"venue_id"`
	ArtistID      int64           `json:"artist_id"`
	Date          time.Time       `json:"date"`
	StartTime     string          `json:"start_time"`
	EndTime       string          `json:"end_time"`
	Payment       decimal.Decimal `json:"payment"`
	Message       string          `json:"message"`
	CounterAmount decimal.Decimal `json:"counter_amount"`
	Status        string          `json:"status"` // pending, accepted, declined, countered
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
