package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/payment"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/logging"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/storetest"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestService() *Service {
	return &Service{
		Store: storetest.NewMemStore(), Gateway: payment.NewMock(), Logger: logging.NewNop(),
		Now: fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
}

// TestHandleWebhookEvent_ReplayIsIdempotent follows the §8 fixture: replaying
// the same event.id twice produces exactly one subscription state change and
// one credit ledger entry.
func TestHandleWebhookEvent_ReplayIsIdempotent(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	evt := payment.WebhookEvent{ID: "evt_1", Type: "checkout.session.completed", UserID: "u1", Tier: TierInitiate}

	_, err := svc.HandleWebhookEvent(ctx, evt)
	require.NoError(t, err)

	_, err = svc.HandleWebhookEvent(ctx, evt)
	require.NoError(t, err)

	sub, err := svc.Current(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, TierInitiate, sub.Tier)
	assert.Equal(t, StatusActive, sub.Status)
	assert.Len(t, sub.ProcessedEvents, 1)

	balance, err := svc.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, CreditsPerCycle[TierInitiate], balance)
}

func TestCreateCheckoutSession_MockModeSettlesImmediately(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.CreateCheckoutSession(ctx, "u2", TierJourneyman, "https://ok", "https://cancel")
	require.NoError(t, err)

	sub, err := svc.Current(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, TierJourneyman, sub.Tier)
	assert.Equal(t, StatusActive, sub.Status)
}

func TestDebit_RejectsInsufficientBalance(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Topup(ctx, "u3", 50, "promo"))

	err := svc.Debit(ctx, "u3", 100, "purchase")
	require.Error(t, err)

	balance, err := svc.Balance(ctx, "u3")
	require.NoError(t, err)
	assert.Equal(t, 50, balance)
}

func TestDebit_SucceedsWithinBalance(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Topup(ctx, "u4", 100, "promo"))
	require.NoError(t, svc.Debit(ctx, "u4", 40, "purchase"))

	balance, err := svc.Balance(ctx, "u4")
	require.NoError(t, err)
	assert.Equal(t, 60, balance)
}
