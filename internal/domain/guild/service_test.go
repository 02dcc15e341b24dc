package guild

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
	return &Service{
		Store: storetest.NewMemStore(), Logger: logging.NewNop(), Coefficients: defaultCoefficients,
		Now: fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
}

func TestCreateGuild_OwnerIsAFoundingMember(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	g, err := svc.CreateGuild(ctx, "owner1", "Dawnblade")
	require.NoError(t, err)
	assert.Equal(t, "owner1", g.OwnerID)
	assert.True(t, svc.IsMember(ctx, g.ID, "owner1"))
}

func TestJoin_RejectsDuplicateMembership(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	g, err := svc.CreateGuild(ctx, "owner1", "Dawnblade")
	require.NoError(t, err)

	require.NoError(t, svc.Join(ctx, g.ID, "member1"))

	err = svc.Join(ctx, g.ID, "member1")
	require.Error(t, err)
}

func TestLeave_RemovesMembershipAndEmitsActivity(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	g, err := svc.CreateGuild(ctx, "owner1", "Dawnblade")
	require.NoError(t, err)
	require.NoError(t, svc.Join(ctx, g.ID, "member1"))

	require.NoError(t, svc.Leave(ctx, g.ID, "member1"))
	assert.False(t, svc.IsMember(ctx, g.ID, "member1"))

	activities, err := svc.ListActivities(ctx, g.ID, 10)
	require.NoError(t, err)

	var sawLeave bool

	for _, a := range activities {
		if a.Kind == "member_left" && a.ActorID == "member1" {
			sawLeave = true
		}
	}

	assert.True(t, sawLeave)
}

func TestCompleteGuildQuest_RejectsExceedingTarget(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	g, err := svc.CreateGuild(ctx, "owner1", "Dawnblade")
	require.NoError(t, err)

	q, err := svc.AddGuildQuest(ctx, g.ID, "Clear the dungeon", GuildQuestQuantitative, 5)
	require.NoError(t, err)

	require.NoError(t, svc.CompleteGuildQuest(ctx, g.ID, q.QuestID, "member1", 3))

	err = svc.CompleteGuildQuest(ctx, g.ID, q.QuestID, "member2", 3)
	require.Error(t, err)
}

func TestGetAnalytics_WeightsActiveRecentAndCompletedGoals(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	g, err := svc.CreateGuild(ctx, "owner1", "Dawnblade")
	require.NoError(t, err)
	require.NoError(t, svc.Join(ctx, g.ID, "member1"))
	require.NoError(t, svc.Join(ctx, g.ID, "member2"))

	analytics, err := svc.GetAnalytics(ctx, g.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, 3, analytics.TotalMembers)
	assert.Greater(t, analytics.Score, 0.0)
}
