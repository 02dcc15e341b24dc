// Package subscription implements C11: tiered subscriptions, checkout
// session creation, idempotent webhook processing, and the credit ledger.
package subscription

import "time"

const (
	TierFree       = "FREE"
	TierInitiate   = "INITIATE"
	TierJourneyman = "JOURNEYMAN"
	TierSage       = "SAGE"
	TierGuildmaster = "GUILDMASTER"
)

// CreditsPerCycle is the per-tier credit allowance decided in SPEC_FULL.md's
// Open Questions (§ decision 3).
var CreditsPerCycle = map[string]int{
	TierFree:        0,
	TierInitiate:    100,
	TierJourneyman:  300,
	TierSage:        800,
	TierGuildmaster: 2000,
}

const (
	StatusNone     = "none"
	StatusActive   = "active"
	StatusPastDue  = "past_due"
	StatusCanceled = "canceled"
)

// Subscription is one user's current tier/status row.
type Subscription struct {
	UserID         string
	Tier           string
	Status         string
	FounderPass    bool
	StripeSubID    string
	ProcessedEvents []string
	UpdatedAt      time.Time
}

// CreditEntry is one append-only ledger row.
type CreditEntry struct {
	UserID    string
	ID        string
	Delta     int
	Reason    string
	CreatedAt time.Time
}
