package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking is the canonical record of a confirmed engagement. Created once by
// the coordinator; afterwards only payment processing touches PaymentStatus
// and settlement touches PayoutStatus.
type Booking struct {
	ID            int64           `json:"id"`
	ArtistID      int64           `json:"artist_id"`
	VenueID       int64           `json:"venue_id"`
	Date          time.Time       `json:"date"`
	SourceType    string          `json:"source_type"` // open_gig, direct_offer, package
	SourceID      *int64          `json:"source_id,omitempty"`
	Price         decimal.Decimal `json:"price"`
	PaymentStatus string          `json:"payment_status"` // pending, paid
	PayoutStatus  string          `json:"payout_status"`  // pending, paid
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
