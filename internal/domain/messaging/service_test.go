package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/logging"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/storetest"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type memberOnlySet map[string]bool

func (m memberOnlySet) IsMember(_ context.Context, _, userID string) bool { return m[userID] }

func newTestService(membership GuildMembershipChecker) *Service {
	return &Service{
		RoomStore: storetest.NewMemStore(), GuildStore: storetest.NewMemStore(), Hub: NewHub(),
		Membership: membership, Logger: logging.NewNop(),
		Now: fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
}

func TestSend_RejectsNonMemberGuildChat(t *testing.T) {
	svc := newTestService(memberOnlySet{"member1": true})
	ctx := context.Background()

	_, err := svc.Send(ctx, "", "guild1", "outsider", "hello")
	require.Error(t, err)
}

func TestSend_AllowsMemberGuildChat(t *testing.T) {
	svc := newTestService(memberOnlySet{"member1": true})
	ctx := context.Background()

	m, err := svc.Send(ctx, "", "guild1", "member1", "hello guild")
	require.NoError(t, err)
	assert.Equal(t, "member1", m.SenderID)
}

func TestSend_RejectsEmptyText(t *testing.T) {
	svc := newTestService(nil)

	_, err := svc.Send(context.Background(), "room1", "", "u1", "")
	require.Error(t, err)
}

func TestHistory_ReturnsMostRecentFirstWithinLimit(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Send(ctx, "room1", "", "u1", "message")
		require.NoError(t, err)
	}

	msgs, _, err := svc.History(ctx, "room1", "", 3, "")
	require.NoError(t, err)
	assert.Len(t, msgs, 3)
}

func TestHub_SlowConsumerIsDroppedInsteadOfBlockingPublisher(t *testing.T) {
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe("room:1")
	defer unsubscribe()

	for i := 0; i < subscriberBuffer+5; i++ {
		hub.Publish("room:1", Event{Type: "message", Message: &Message{ID: "m"}})
	}

	var sawSlowConsumer bool

	for i := 0; i < subscriberBuffer+1; i++ {
		select {
		case evt := <-ch:
			if evt.Type == "error" && evt.Code == "slow_consumer" {
				sawSlowConsumer = true
			}
		default:
		}
	}

	assert.True(t, sawSlowConsumer)
}

func TestSubscribe_ReceivesPublishedMessage(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	ch, unsubscribe := svc.Subscribe("room1", "")
	defer unsubscribe()

	_, err := svc.Send(ctx, "room1", "", "u1", "hi")
	require.NoError(t, err)

	select {
	case evt := <-ch:
		assert.Equal(t, "message", evt.Type)
		assert.Equal(t, "hi", evt.Message.Text)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published event")
	}
}
