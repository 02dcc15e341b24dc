package subscription

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/apperr"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/payment"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/logging"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/store"
)

// Service implements C11: tiered plans, checkout session creation, the
// idempotent webhook handler and the append-only credit ledger.
type Service struct {
	Store   store.Store
	Gateway payment.Gateway
	Logger  logging.Logger
	Now     func() time.Time
}

func New(s store.Store, gateway payment.Gateway, logger logging.Logger) *Service {
	return &Service{Store: s, Gateway: gateway, Logger: logger, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}

	return time.Now()
}

func asString(v any) string { str, _ := v.(string); return str }

func asBool(v any) bool { b, _ := v.(bool); return b }

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int32:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

func msToTime(v any) time.Time {
	ms := toInt(v)
	if ms == 0 {
		return time.Time{}
	}

	return time.UnixMilli(int64(ms))
}

func toStrings(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(raw))

	for _, r := range raw {
		if str, ok := r.(string); ok {
			out = append(out, str)
		}
	}

	return out
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, v := range ss {
		out[i] = v
	}

	return out
}

func toItem(sub *Subscription) store.Item {
	return store.Item{
		"pk": store.UserPK(sub.UserID), "sk": store.SubscriptionSK(), "type": "Subscription",
		"userId": sub.UserID, "tier": sub.Tier, "status": sub.Status,
		"founderPass": sub.FounderPass, "stripeSubId": sub.StripeSubID,
		"processedEvents": toAnySlice(sub.ProcessedEvents),
		"updatedAt":       sub.UpdatedAt.UnixMilli(),
		"gsi1pk":          store.SubStatusGSI1PK(sub.Status), "gsi1sk": store.UserPK(sub.UserID),
	}
}

func fromItem(it store.Item) *Subscription {
	return &Subscription{
		UserID:          asString(it["userId"]),
		Tier:            asString(it["tier"]),
		Status:          asString(it["status"]),
		FounderPass:     asBool(it["founderPass"]),
		StripeSubID:     asString(it["stripeSubId"]),
		ProcessedEvents: toStrings(it["processedEvents"]),
		UpdatedAt:       msToTime(it["updatedAt"]),
	}
}

// Current fetches a user's subscription, defaulting to an implicit FREE/none
// row for users who never subscribed.
func (s *Service) Current(ctx context.Context, userID string) (*Subscription, error) {
	it, err := s.Store.Get(ctx, store.UserPK(userID), store.SubscriptionSK())
	if err != nil {
		if err == store.ErrNotFound {
			return &Subscription{UserID: userID, Tier: TierFree, Status: StatusNone}, nil
		}

		return nil, err
	}

	return fromItem(it), nil
}

// GrantFounderPass marks a user as a lifetime GUILDMASTER (§4.11). Nothing in
// this module calls it; there is no founder pass list in Config.
func (s *Service) GrantFounderPass(ctx context.Context, userID string) (*Subscription, error) {
	sub := &Subscription{UserID: userID, Tier: TierGuildmaster, Status: StatusActive, FounderPass: true, UpdatedAt: s.now()}

	if err := s.Store.Put(ctx, toItem(sub), nil); err != nil {
		return nil, err
	}

	return sub, nil
}

// CreateCheckoutSession calls the narrow payment-gateway client interface
// (§4.11). In mock mode the gateway's ImmediateCompleter short-circuits to
// the checkout.session.completed handler instead of waiting on a webhook.
func (s *Service) CreateCheckoutSession(ctx context.Context, userID, tier, successURL, cancelURL string) (payment.Session, error) {
	if _, ok := CreditsPerCycle[tier]; !ok {
		return payment.Session{}, apperr.ValidationError{Code: "unknown_tier", Field: "tier", Message: "tier is not a recognized subscription tier"}
	}

	sess, err := s.Gateway.CreateSession(ctx, userID, tier, successURL, cancelURL)
	if err != nil {
		return payment.Session{}, err
	}

	if completer, ok := s.Gateway.(payment.ImmediateCompleter); ok {
		evt, err := completer.Complete(ctx, userID, tier)
		if err != nil {
			return payment.Session{}, err
		}

		if _, err := s.HandleWebhookEvent(ctx, evt); err != nil {
			return payment.Session{}, err
		}
	}

	return sess, nil
}

// HandleWebhookEvent applies one normalized gateway event idempotently,
// keyed by event.ID stored in the subscription row's processedEvents set
// (§4.11, §8 "Webhook idempotency").
func (s *Service) HandleWebhookEvent(ctx context.Context, evt payment.WebhookEvent) (*Subscription, error) {
	if evt.UserID == "" {
		return nil, apperr.ValidationError{Code: "missing_user", Message: "webhook event has no associated user"}
	}

	current, err := s.Current(ctx, evt.UserID)
	if err != nil {
		return nil, err
	}

	for _, processed := range current.ProcessedEvents {
		if processed == evt.ID {
			return current, nil
		}
	}

	next := *current
	next.UserID = evt.UserID
	next.ProcessedEvents = append(append([]string{}, current.ProcessedEvents...), evt.ID)
	next.UpdatedAt = s.now()

	var creditDelta int
	var creditReason string

	switch evt.Type {
	case "checkout.session.completed":
		next.Tier = evt.Tier
		next.Status = StatusActive
		next.StripeSubID = evt.SubscriptionID
		creditDelta = CreditsPerCycle[evt.Tier]
		creditReason = "checkout.session.completed"
	case "customer.subscription.updated":
		next.Status = StatusActive
		next.StripeSubID = evt.SubscriptionID
	case "customer.subscription.deleted":
		next.Status = StatusCanceled
	case "invoice.payment_failed":
		next.Status = StatusPastDue
	default:
		return nil, apperr.ValidationError{Code: "unhandled_event", Message: "unrecognized webhook event type"}
	}

	if err := s.Store.Put(ctx, toItem(&next), nil); err != nil {
		return nil, err
	}

	if creditDelta > 0 {
		if err := s.appendCredit(ctx, evt.UserID, creditDelta, creditReason, evt.ID); err != nil {
			return nil, err
		}
	}

	return &next, nil
}

// Cancel transitions a subscription to cancelled, owner-only at the HTTP
// boundary.
func (s *Service) Cancel(ctx context.Context, userID string) (*Subscription, error) {
	sub, err := s.Current(ctx, userID)
	if err != nil {
		return nil, err
	}

	sub.Status = StatusCanceled
	sub.UpdatedAt = s.now()

	if err := s.Store.Put(ctx, toItem(sub), nil); err != nil {
		return nil, err
	}

	return sub, nil
}

func (s *Service) appendCredit(ctx context.Context, userID string, delta int, reason, sourceEventID string) error {
	now := s.now()

	item := store.Item{
		"pk": store.UserPK(userID), "sk": store.CreditSK(now.UnixMilli(), uuid.New().String()), "type": "CreditEntry",
		"userId": userID, "delta": delta, "reason": reason, "sourceEventId": sourceEventID,
		"createdAt": now.UnixMilli(),
	}

	return s.Store.Put(ctx, item, nil)
}

// Balance sums every ledger entry's delta for userID.
func (s *Service) Balance(ctx context.Context, userID string) (int, error) {
	items, _, err := s.Store.Query(ctx, store.QueryInput{
		PK: store.UserPK(userID), SK: &store.SkCondition{Op: store.SkBeginsWith, Value: "CREDIT#"},
	})
	if err != nil {
		return 0, err
	}

	total := 0
	for _, it := range items {
		total += toInt(it["delta"])
	}

	return total, nil
}

// Ledger lists every credit entry for userID, oldest first.
func (s *Service) Ledger(ctx context.Context, userID string) ([]CreditEntry, error) {
	items, _, err := s.Store.Query(ctx, store.QueryInput{
		PK: store.UserPK(userID), SK: &store.SkCondition{Op: store.SkBeginsWith, Value: "CREDIT#"}, Forward: true,
	})
	if err != nil {
		return nil, err
	}

	out := make([]CreditEntry, 0, len(items))
	for _, it := range items {
		out = append(out, CreditEntry{
			UserID: userID, Delta: toInt(it["delta"]), Reason: asString(it["reason"]), CreatedAt: msToTime(it["createdAt"]),
		})
	}

	return out, nil
}

// Debit applies a negative ledger entry conditioned on a non-negative
// resulting balance (§4.11's "conditional Update to prevent negative
// balance"). Since the ledger is append-only rather than a mutable balance
// field, the guard is enforced here against the computed running balance
// before the append, mirroring the spec's intent within this append-only
// design.
func (s *Service) Debit(ctx context.Context, userID string, amount int, reason string) error {
	if amount <= 0 {
		return apperr.ValidationError{Code: "invalid_amount", Field: "amount", Message: "debit amount must be positive"}
	}

	balance, err := s.Balance(ctx, userID)
	if err != nil {
		return err
	}

	if balance < amount {
		return apperr.ValidationError{Code: "insufficient_credits", Message: "insufficient credit balance"}
	}

	return s.appendCredit(ctx, userID, -amount, reason, "")
}

// Topup appends a positive ledger entry (manual/admin top-up or purchase).
func (s *Service) Topup(ctx context.Context, userID string, amount int, reason string) error {
	if amount <= 0 {
		return apperr.ValidationError{Code: "invalid_amount", Field: "amount", Message: "topup amount must be positive"}
	}

	return s.appendCredit(ctx, userID, amount, reason, "")
}
