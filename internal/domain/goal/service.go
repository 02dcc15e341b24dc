package goal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/apperr"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/logging"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/store"
)

// MilestoneNotifier receives achieved milestone thresholds; guild
// activity feeds and other listeners can be wired in without goal depending
// on the guild package.
type MilestoneNotifier interface {
	NotifyMilestone(ctx context.Context, userID, goalID string, threshold int)
}

// Service implements C6 against the shared store.
type Service struct {
	Store    store.Store
	Logger   logging.Logger
	Notifier MilestoneNotifier
	Now      func() time.Time
}

func New(s store.Store, logger logging.Logger, notifier MilestoneNotifier) *Service {
	return &Service{Store: s, Logger: logger, Notifier: notifier, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}

	return time.Now()
}

func goalToItem(g *Goal) store.Item {
	ts := g.CreatedAt.UnixMilli()

	return store.Item{
		"pk": store.UserPK(g.UserID), "sk": store.GoalSK(g.ID),
		"type": "Goal", "id": g.ID, "userId": g.UserID, "title": g.Title,
		"deadline": g.Deadline.UnixMilli(), "status": g.Status,
		"createdAt": ts, "updatedAt": g.UpdatedAt.UnixMilli(),
		"gsi1pk": store.UserPK(g.UserID), "gsi1sk": store.GoalEntityGSI1SK(ts),
	}
}

func goalFromItem(it store.Item) *Goal {
	return &Goal{
		ID:        asString(it["id"]),
		UserID:    asString(it["userId"]),
		Title:     asString(it["title"]),
		Deadline:  msToTime(it["deadline"]),
		Status:    asString(it["status"]),
		CreatedAt: msToTime(it["createdAt"]),
		UpdatedAt: msToTime(it["updatedAt"]),
	}
}

func taskToItem(t *Task) store.Item {
	return store.Item{
		"pk": store.GoalPK(t.GoalID), "sk": store.TaskSK(t.ID),
		"type": "Task", "id": t.ID, "goalId": t.GoalID, "title": t.Title, "status": t.Status,
		"createdAt": t.CreatedAt.UnixMilli(), "updatedAt": t.UpdatedAt.UnixMilli(),
	}
}

func taskFromItem(it store.Item) *Task {
	return &Task{
		ID:        asString(it["id"]),
		GoalID:    asString(it["goalId"]),
		Title:     asString(it["title"]),
		Status:    asString(it["status"]),
		CreatedAt: msToTime(it["createdAt"]),
		UpdatedAt: msToTime(it["updatedAt"]),
	}
}

func asString(v any) string { s, _ := v.(string); return s }

func msToTime(v any) time.Time {
	switch n := v.(type) {
	case int64:
		return time.UnixMilli(n)
	case int32:
		return time.UnixMilli(int64(n))
	case int:
		return time.UnixMilli(int64(n))
	case float64:
		return time.UnixMilli(int64(n))
	default:
		return time.Time{}
	}
}

// CreateGoal validates and writes a new goal row.
func (s *Service) CreateGoal(ctx context.Context, userID, title string, deadline time.Time) (*Goal, error) {
	if title == "" {
		return nil, apperr.ValidationError{Code: "invalid_title", Field: "title", Message: "title is required"}
	}

	now := s.now()

	g := &Goal{ID: uuid.New().String(), UserID: userID, Title: title, Deadline: deadline, Status: StatusActive, CreatedAt: now, UpdatedAt: now}

	if err := s.Store.Put(ctx, goalToItem(g), nil); err != nil {
		return nil, err
	}

	return g, nil
}

// ListGoals lists a user's goals, excluding archived by default per the
// Open Question decision recorded in SPEC_FULL.md.
func (s *Service) ListGoals(ctx context.Context, userID string, includeArchived bool) ([]*Goal, error) {
	items, _, err := s.Store.Query(ctx, store.QueryInput{
		PK: store.UserPK(userID),
		SK: &store.SkCondition{Op: store.SkBeginsWith, Value: "GOAL#"},
	})
	if err != nil {
		return nil, err
	}

	out := make([]*Goal, 0, len(items))

	for _, it := range items {
		g := goalFromItem(it)
		if !includeArchived && g.Status == StatusArchived {
			continue
		}

		out = append(out, g)
	}

	return out, nil
}

// GetGoal fetches a single goal, enforcing ownership.
func (s *Service) GetGoal(ctx context.Context, requester, userID, goalID string) (*Goal, error) {
	it, err := s.Store.Get(ctx, store.UserPK(userID), store.GoalSK(goalID))
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperr.NewNotFound("Goal", "goal_not_found")
		}

		return nil, err
	}

	if requester != userID {
		return nil, apperr.ForbiddenError{Code: "not_owner", Message: "only the owner may view this goal"}
	}

	return goalFromItem(it), nil
}

// UpdateGoal applies a partial update, owner-only.
func (s *Service) UpdateGoal(ctx context.Context, requester, userID, goalID string, title *string, deadline *time.Time, status *string) (*Goal, error) {
	if requester != userID {
		return nil, apperr.ForbiddenError{Code: "not_owner", Message: "only the owner may modify this goal"}
	}

	setOps := map[string]any{"updatedAt": s.now().UnixMilli()}

	if title != nil {
		setOps["title"] = *title
	}

	if deadline != nil {
		setOps["deadline"] = deadline.UnixMilli()
	}

	if status != nil {
		setOps["status"] = *status
	}

	it, err := s.Store.Update(ctx, store.UserPK(userID), store.GoalSK(goalID), setOps, nil)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperr.NewNotFound("Goal", "goal_not_found")
		}

		return nil, err
	}

	return goalFromItem(it), nil
}

// DeleteGoal removes a goal, owner-only.
func (s *Service) DeleteGoal(ctx context.Context, requester, userID, goalID string) error {
	if requester != userID {
		return apperr.ForbiddenError{Code: "not_owner", Message: "only the owner may delete this goal"}
	}

	return s.Store.Delete(ctx, store.UserPK(userID), store.GoalSK(goalID), nil)
}

// AddTask creates a task under a goal.
func (s *Service) AddTask(ctx context.Context, requester, userID, goalID, title string) (*Task, error) {
	if _, err := s.GetGoal(ctx, requester, userID, goalID); err != nil {
		return nil, err
	}

	if title == "" {
		return nil, apperr.ValidationError{Code: "invalid_title", Field: "title", Message: "title is required"}
	}

	now := s.now()
	t := &Task{ID: uuid.New().String(), GoalID: goalID, Title: title, Status: TaskStatusOpen, CreatedAt: now, UpdatedAt: now}

	if err := s.Store.Put(ctx, taskToItem(t), nil); err != nil {
		return nil, err
	}

	return t, nil
}

// ListTasks lists a goal's tasks.
func (s *Service) ListTasks(ctx context.Context, goalID string) ([]*Task, error) {
	items, _, err := s.Store.Query(ctx, store.QueryInput{
		PK: store.GoalPK(goalID),
		SK: &store.SkCondition{Op: store.SkBeginsWith, Value: "TASK#"},
	})
	if err != nil {
		return nil, err
	}

	out := make([]*Task, 0, len(items))
	for _, it := range items {
		out = append(out, taskFromItem(it))
	}

	return out, nil
}

// ToggleTask flips a task between open and done.
func (s *Service) ToggleTask(ctx context.Context, goalID, taskID string) (*Task, error) {
	it, err := s.Store.Get(ctx, store.GoalPK(goalID), store.TaskSK(taskID))
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperr.NewNotFound("Task", "task_not_found")
		}

		return nil, err
	}

	t := taskFromItem(it)

	next := TaskStatusDone
	if t.Status == TaskStatusDone {
		next = TaskStatusOpen
	}

	updated, err := s.Store.Update(ctx, store.GoalPK(goalID), store.TaskSK(taskID), map[string]any{
		"status":    next,
		"updatedAt": s.now().UnixMilli(),
	}, nil)
	if err != nil {
		return nil, err
	}

	return taskFromItem(updated), nil
}

// DeleteTask soft-deletes a task.
func (s *Service) DeleteTask(ctx context.Context, goalID, taskID string) error {
	_, err := s.Store.Update(ctx, store.GoalPK(goalID), store.TaskSK(taskID), map[string]any{
		"status":    TaskStatusDeleted,
		"updatedAt": s.now().UnixMilli(),
	}, nil)

	return err
}

// GetProgress computes progress and derived milestones for a goal. When a
// Notifier is set, it is called once for every threshold currently achieved,
// on every call: no previous progress is stored, so thresholds already
// reported are reported again.
func (s *Service) GetProgress(ctx context.Context, userID, goalID string) (int, []Milestone, error) {
	g, err := s.GetGoal(ctx, userID, userID, goalID)
	if err != nil {
		return 0, nil, err
	}

	tasks, err := s.ListTasks(ctx, goalID)
	if err != nil {
		return 0, nil, err
	}

	total, completed := 0, 0

	for _, t := range tasks {
		if t.Status == TaskStatusDeleted {
			continue
		}

		total++

		if t.Status == TaskStatusDone {
			completed++
		}
	}

	progress := Progress(total, completed, g.CreatedAt, g.Deadline, s.now())
	milestones := Milestones(progress)

	if s.Notifier != nil {
		for _, m := range milestones {
			if m.Achieved {
				s.Notifier.NotifyMilestone(ctx, userID, goalID, m.Threshold)
			}
		}
	}

	return progress, milestones, nil
}
