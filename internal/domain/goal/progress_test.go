package goal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgress_TimeOnlyWhenNoTasks(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	deadline := created.AddDate(0, 0, 10)
	now := created.AddDate(0, 0, 5)

	assert.Equal(t, 50, Progress(0, 0, created, deadline, now))
}

func TestProgress_HybridFormula(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	deadline := created.AddDate(0, 0, 10)

	assert.Equal(t, 35, Progress(4, 2, created, deadline, created))
}

func TestProgress_ClampsAtDeadline(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	deadline := created.AddDate(0, 0, 10)
	past := deadline.AddDate(0, 0, 5)

	assert.Equal(t, 100, Progress(0, 0, created, deadline, past))
}

func TestProgress_FullyCompletedTasksCapsAt100(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	deadline := created.AddDate(0, 0, 10)
	past := deadline.AddDate(0, 0, 5)

	assert.Equal(t, 100, Progress(4, 4, created, deadline, past))
}

func TestMilestones_MarksThresholdsAchieved(t *testing.T) {
	ms := Milestones(60)

	want := map[int]bool{25: true, 50: true, 75: false, 100: false}
	for _, m := range ms {
		assert.Equal(t, want[m.Threshold], m.Achieved, "threshold %d", m.Threshold)
	}
}

func TestNewlyAchieved_OnlyCrossedThresholds(t *testing.T) {
	assert.Equal(t, []int{50}, NewlyAchieved(40, 60))
	assert.Nil(t, NewlyAchieved(60, 65))
	assert.Equal(t, []int{75, 100}, NewlyAchieved(60, 100))
}
