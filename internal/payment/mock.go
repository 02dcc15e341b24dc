package payment

import "context"

// ImmediateCompleter is implemented by gateways that settle a checkout
// synchronously instead of via an asynchronous webhook callback. The
// subscription service type-asserts for it to implement §4.11's mock-mode
// short-circuit to checkout.session.completed.
type ImmediateCompleter interface {
	Complete(ctx context.Context, userID, tier string) (WebhookEvent, error)
}

// MockGateway is used whenever no real payment secret is configured
// (bootstrap.Config.mockPaymentMode). It never contacts a network and
// treats every session as immediately completed.
type MockGateway struct{}

func NewMock() *MockGateway { return &MockGateway{} }

func (m *MockGateway) CreateSession(ctx context.Context, userID, tier, successURL, cancelURL string) (Session, error) {
	return Session{SessionID: randomID("mock_sess"), RedirectURL: successURL}, nil
}

// VerifyWebhook is never called in mock mode (Complete is used instead) but
// is implemented to satisfy Gateway; it accepts any payload unverified.
func (m *MockGateway) VerifyWebhook(ctx context.Context, payload []byte, signatureHeader string) (WebhookEvent, error) {
	return WebhookEvent{ID: randomID("mock_evt"), Type: "checkout.session.completed"}, nil
}

func (m *MockGateway) Complete(ctx context.Context, userID, tier string) (WebhookEvent, error) {
	return WebhookEvent{ID: randomID("mock_evt"), Type: "checkout.session.completed", UserID: userID, Tier: tier}, nil
}
