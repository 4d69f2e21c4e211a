package models

// Open gig lifecycle. The open->booked edge is one-way.
const (
	GigStatusOpen   = "open"
	GigStatusBooked = "booked"
)

// Direct offer lifecycle. All transitions leave pending exactly once.
const (
	OfferStatusPending   = "pending"
	OfferStatusAccepted  = "accepted"
	OfferStatusDeclined  = "declined"
	OfferStatusCountered = "countered"
)

// Booking payment / payout states.
const (
	PayStatusPending = "pending"
	PayStatusPaid    = "paid"
)

// Booking source kinds.
const (
	SourceOpenGig     = "open_gig"
	SourceDirectOffer = "direct_offer"
	SourcePackage     = "package"
)

// Posting types and categories generated at settlement.
const (
	PostingIncome  = "income"
	PostingExpense = "expense"

	CategoryCommission = "platform_commission"
	CategoryGatewayFee = "gateway_transaction_fee"
	CategoryPayoutFee  = "payout_fixed_fee"

	PostingStatusPending = "pending"
)

// Artist commission tiers.
const (
	PlanStandard = "standard"
	PlanPro      = "pro"
)

const (
	// DefaultFeesCacheTTL fee schedule lifetime in Redis, seconds
	DefaultFeesCacheTTL = 30 * 60

	// WorkerQueueSize in-memory sync queue size
	WorkerQueueSize = 1000

	// MaxBookingDaysAhead default booking horizon
	MaxBookingDaysAhead = 365
)
