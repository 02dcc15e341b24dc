// Package goal implements C6: goal/task CRUD and the hybrid task+time
// progress computation with derived milestones.
package goal

import "time"

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusArchived  = "archived"
)

const (
	TaskStatusOpen    = "open"
	TaskStatusDone    = "done"
	TaskStatusDeleted = "deleted"
)

// Goal is the domain representation of a goal row.
type Goal struct {
	ID        string
	UserID    string
	Title     string
	Deadline  time.Time
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Task is the domain representation of a task row, scoped under a goal.
type Task struct {
	ID        string
	GoalID    string
	Title     string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Milestone is one 25/50/75/100 threshold crossing derived from progress.
type Milestone struct {
	Threshold int
	Achieved  bool
	AchievedAt time.Time
}

var milestoneThresholds = []int{25, 50, 75, 100}
