package collab

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

func newTestService() *Service {
	return &Service{Store: storetest.NewMemStore(), Logger: logging.NewNop(), Now: fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))}
}

// TestToggleReaction_AddAddLaughLaughLeavesEmpty follows the §8 fixture
// sequence exactly: add heart, add heart, add laugh, add laugh by the same
// user leaves zero reactions, passing through {heart}, {}, {laugh}, {}.
func TestToggleReaction_AddAddLaughLaughLeavesEmpty(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.ToggleReaction(ctx, "c1", "u1", "heart"))
	counts, err := svc.ReactionCounts(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"heart": 1}, counts)

	require.NoError(t, svc.ToggleReaction(ctx, "c1", "u1", "heart"))
	counts, err = svc.ReactionCounts(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, counts)

	require.NoError(t, svc.ToggleReaction(ctx, "c1", "u1", "laugh"))
	counts, err = svc.ReactionCounts(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"laugh": 1}, counts)

	require.NoError(t, svc.ToggleReaction(ctx, "c1", "u1", "laugh"))
	counts, err = svc.ReactionCounts(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestAcceptInvite_ReplayIsIdempotent(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	inv, err := svc.SendInvite(ctx, "goal", "g1", "owner1", "invitee1")
	require.NoError(t, err)

	first, err := svc.AcceptInvite(ctx, "goal", "g1", inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "invitee1", first.UserID)

	second, err := svc.AcceptInvite(ctx, "goal", "g1", inv.ID)
	require.NoError(t, err)
	assert.Equal(t, first.UserID, second.UserID)
}

func TestAddComment_ExtractsMentions(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	c, err := svc.AddComment(ctx, "goal", "g1", "author1", "great work @alice and @bob!")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, c.Mentions)
}

func TestAddComment_RejectsEmptyBody(t *testing.T) {
	svc := newTestService()

	_, err := svc.AddComment(context.Background(), "goal", "g1", "author1", "")
	require.Error(t, err)
}
