package quest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/logging"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/store"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/store/storemock"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// TestStart_RetriesOnceOnConflict asserts the exact retry shape applyTransition
// promises: one Get, a failed TransactWrite, a second Get, then a successful
// TransactWrite. storetest.MemStore can't assert call counts, so this uses the
// gomock-shaped MockStore instead.
func TestStart_RetriesOnceOnConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := storemock.NewMockStore(ctrl)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	draft := store.Item{
		"pk": store.UserPK("u1"), "sk": store.QuestSK("q1"), "type": "Quest",
		"id": "q1", "userId": "u1", "title": "Slay dragons", "kind": KindLinked,
		"status": StatusDraft, "targetCount": 0, "currentCount": 0, "version": int64(1),
		"createdAt": now.UnixMilli(), "updatedAt": now.UnixMilli(),
	}

	gomock.InOrder(
		mockStore.EXPECT().Get(gomock.Any(), store.UserPK("u1"), store.QuestSK("q1")).Return(draft, nil),
		mockStore.EXPECT().TransactWrite(gomock.Any(), gomock.Any()).Return(store.ErrConflict),
		mockStore.EXPECT().Get(gomock.Any(), store.UserPK("u1"), store.QuestSK("q1")).Return(draft, nil),
		mockStore.EXPECT().TransactWrite(gomock.Any(), gomock.Any()).Return(nil),
	)

	svc := &Service{Store: mockStore, Logger: logging.NewNop(), Now: fixedClock(now)}

	q, err := svc.Start(context.Background(), "u1", "q1", "u1")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, q.Status)
	assert.Equal(t, int64(2), q.Version)
}

func TestStart_FailsAfterRepeatedConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := storemock.NewMockStore(ctrl)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	draft := store.Item{
		"pk": store.UserPK("u1"), "sk": store.QuestSK("q1"), "type": "Quest",
		"id": "q1", "userId": "u1", "title": "Slay dragons", "kind": KindLinked,
		"status": StatusDraft, "targetCount": 0, "currentCount": 0, "version": int64(1),
		"createdAt": now.UnixMilli(), "updatedAt": now.UnixMilli(),
	}

	mockStore.EXPECT().Get(gomock.Any(), store.UserPK("u1"), store.QuestSK("q1")).Return(draft, nil).Times(2)
	mockStore.EXPECT().TransactWrite(gomock.Any(), gomock.Any()).Return(store.ErrConflict).Times(2)

	svc := &Service{Store: mockStore, Logger: logging.NewNop(), Now: fixedClock(now)}

	_, err := svc.Start(context.Background(), "u1", "q1", "u1")
	require.Error(t, err)
}

func TestIncrement_RejectsExceedingTarget(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := storemock.NewMockStore(ctrl)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	active := store.Item{
		"pk": store.UserPK("u1"), "sk": store.QuestSK("q1"), "type": "Quest",
		"id": "q1", "userId": "u1", "title": "Collect herbs", "kind": KindQuantitative,
		"status": StatusActive, "targetCount": 5, "currentCount": 4, "version": int64(3),
		"createdAt": now.UnixMilli(), "updatedAt": now.UnixMilli(),
	}

	mockStore.EXPECT().Get(gomock.Any(), store.UserPK("u1"), store.QuestSK("q1")).Return(active, nil)

	svc := &Service{Store: mockStore, Logger: logging.NewNop(), Now: fixedClock(now)}

	_, err := svc.Increment(context.Background(), "u1", "q1", "u1", 2)
	require.Error(t, err)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, canTransition(StatusDraft, StatusActive))
	assert.True(t, canTransition(StatusActive, StatusCompleted))
	assert.False(t, canTransition(StatusCompleted, StatusActive))
	assert.False(t, canTransition(StatusCancelled, StatusActive))
}
