package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/apperr"
)

// StripeGateway is the real-mode Gateway, used whenever
// bootstrap.Config.PaymentSecret is set.
type StripeGateway struct {
	WebhookSecret string
	PriceIDs      map[string]string // tier -> Stripe price id
}

func NewStripe(apiKey, webhookSecret string, priceIDs map[string]string) *StripeGateway {
	stripe.Key = apiKey

	return &StripeGateway{WebhookSecret: webhookSecret, PriceIDs: priceIDs}
}

func (g *StripeGateway) CreateSession(ctx context.Context, userID, tier, successURL, cancelURL string) (Session, error) {
	priceID, ok := g.PriceIDs[tier]
	if !ok {
		return Session{}, apperr.ValidationError{Code: "unknown_tier", Field: "tier", Message: fmt.Sprintf("no price configured for tier %s", tier)}
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		ClientReferenceID: stripe.String(userID),
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(cancelURL),
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return Session{}, apperr.DependencyError{Dependency: "stripe", Message: err.Error(), Err: err}
	}

	return Session{SessionID: sess.ID, RedirectURL: sess.URL}, nil
}

func (g *StripeGateway) VerifyWebhook(ctx context.Context, payload []byte, signatureHeader string) (WebhookEvent, error) {
	evt, err := webhook.ConstructEvent(payload, signatureHeader, g.WebhookSecret)
	if err != nil {
		return WebhookEvent{}, apperr.UnauthorizedError{Code: "invalid_signature", Message: "webhook signature verification failed"}
	}

	out := WebhookEvent{ID: evt.ID, Type: string(evt.Type)}

	switch evt.Type {
	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(evt.Data.Raw, &cs); err == nil {
			out.UserID = cs.ClientReferenceID

			if cs.Subscription != nil {
				out.SubscriptionID = cs.Subscription.ID
			}
		}
	case "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(evt.Data.Raw, &sub); err == nil {
			out.SubscriptionID = sub.ID
		}
	}

	return out, nil
}
