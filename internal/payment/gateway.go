// Package payment defines the narrow payment-gateway client interface used
// by the subscription service (§4.11) plus a mock implementation for dev.
package payment

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

// Session is the result of creating a checkout session.
type Session struct {
	SessionID   string
	RedirectURL string
}

// WebhookEvent is a gateway event normalized for the subscription service.
type WebhookEvent struct {
	ID             string
	Type           string
	UserID         string
	Tier           string
	SubscriptionID string
}

// Gateway is the narrow interface the subscription service depends on. A
// real implementation wraps a payment provider's SDK; MockGateway stands in
// for local development and tests.
type Gateway interface {
	CreateSession(ctx context.Context, userID, tier, successURL, cancelURL string) (Session, error)
	// VerifyWebhook checks the provider's signature header and decodes the
	// payload into a WebhookEvent. Skipped by MockGateway.
	VerifyWebhook(ctx context.Context, payload []byte, signatureHeader string) (WebhookEvent, error)
}

func randomID(prefix string) string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)

	return prefix + "_" + hex.EncodeToString(b)
}
