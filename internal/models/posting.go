package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Posting is a single income or expense line derived from a settled booking.
// Postings are regenerated as a set, never patched individually.
type Posting struct {
	ID        int64           `json:"id"`
	BookingID int64           `json:"booking_id"`
	Type      string          `json:"type"` // income, expense
	Category  string          `json:"category"`
	Value     decimal.Decimal `json:"value"`
	Status    string          `json:"status"`
	DueDate   time.Time       `json:"due_date"`
	CreatedAt time.Time       `json:"created_at"`
}

// FeeSchedule holds the commission configuration read at settlement time.
type FeeSchedule struct {
	StandardRate   decimal.Decimal `json:"standard_rate" yaml:"standard_rate"`
	ProRate        decimal.Decimal `json:"pro_rate" yaml:"pro_rate"`
	GatewayPercent decimal.Decimal `json:"gateway_percent" yaml:"gateway_percent"`
	GatewayFixed   decimal.Decimal `json:"gateway_fixed" yaml:"gateway_fixed"`
}

// RateFor returns the commission rate applicable to an artist plan.
func (f FeeSchedule) RateFor(plan string) decimal.Decimal {
	if plan == PlanPro {
		return f.ProRate
	}
	return f.StandardRate
}
