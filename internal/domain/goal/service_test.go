package goal

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

type recordingNotifier struct {
	thresholds []int
}

func (r *recordingNotifier) NotifyMilestone(_ context.Context, _, _ string, threshold int) {
	r.thresholds = append(r.thresholds, threshold)
}

func newTestService(notifier MilestoneNotifier) *Service {
	return &Service{
		Store: storetest.NewMemStore(), Logger: logging.NewNop(), Notifier: notifier,
		Now: fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
}

func TestListGoals_ExcludesArchivedByDefault(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	deadline := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	active, err := svc.CreateGoal(ctx, "u1", "Ship feature", deadline)
	require.NoError(t, err)

	archived, err := svc.CreateGoal(ctx, "u1", "Old idea", deadline)
	require.NoError(t, err)

	status := StatusArchived
	_, err = svc.UpdateGoal(ctx, "u1", "u1", archived.ID, nil, nil, &status)
	require.NoError(t, err)

	goals, err := svc.ListGoals(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, active.ID, goals[0].ID)

	allGoals, err := svc.ListGoals(ctx, "u1", true)
	require.NoError(t, err)
	assert.Len(t, allGoals, 2)
}

func TestGetGoal_RejectsNonOwnerRead(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	g, err := svc.CreateGoal(ctx, "owner1", "Private goal", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	_, err = svc.GetGoal(ctx, "intruder", "owner1", g.ID)
	require.Error(t, err)
}

func TestAddTaskListTaskToggleTask(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	g, err := svc.CreateGoal(ctx, "u1", "Learn Go", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	task, err := svc.AddTask(ctx, "u1", "u1", g.ID, "Read the tour")
	require.NoError(t, err)
	assert.Equal(t, TaskStatusOpen, task.Status)

	tasks, err := svc.ListTasks(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	toggled, err := svc.ToggleTask(ctx, g.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, TaskStatusDone, toggled.Status)

	toggledBack, err := svc.ToggleTask(ctx, g.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, TaskStatusOpen, toggledBack.Status)
}

func TestDeleteTask_ExcludesFromListViaProgress(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	deadline := created.AddDate(0, 0, 10)
	svc.Now = fixedClock(created)

	g, err := svc.CreateGoal(ctx, "u1", "Goal with a deleted task", deadline)
	require.NoError(t, err)

	task, err := svc.AddTask(ctx, "u1", "u1", g.ID, "Throwaway")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(ctx, g.ID, task.ID))

	progress, _, err := svc.GetProgress(ctx, "u1", g.ID)
	require.NoError(t, err)
	// No live tasks remain, so progress falls back to the time-only formula,
	// which is 0 at the moment the goal was created.
	assert.Equal(t, 0, progress)
}

func TestGetProgress_EmitsMilestoneNotificationsForAchievedThresholds(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := newTestService(notifier)
	ctx := context.Background()

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	deadline := created.AddDate(0, 0, 10)
	svc.Now = fixedClock(created)

	g, err := svc.CreateGoal(ctx, "u1", "Ship it", deadline)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, err := svc.AddTask(ctx, "u1", "u1", g.ID, "task")
		require.NoError(t, err)
	}

	tasks, err := svc.ListTasks(ctx, g.ID)
	require.NoError(t, err)

	for _, task := range tasks {
		_, err := svc.ToggleTask(ctx, g.ID, task.ID)
		require.NoError(t, err)
	}

	// Advance past the deadline so the time component also saturates at 1,
	// making the combined hybrid score reach the 100 threshold.
	svc.Now = fixedClock(deadline)

	progress, milestones, err := svc.GetProgress(ctx, "u1", g.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, progress)
	assert.Len(t, milestones, 4)
	assert.ElementsMatch(t, []int{25, 50, 75, 100}, notifier.thresholds)
}
