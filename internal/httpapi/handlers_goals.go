package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/apperr"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/goal"
)

// GoalHandler exposes C6's goal/task CRUD and progress routes (§6).
type GoalHandler struct {
	Goals *goal.Service
}

func goalResponse(g *goal.Goal) fiber.Map {
	return fiber.Map{
		"id": g.ID, "title": g.Title, "deadline": g.Deadline.Format(time.RFC3339),
		"status": g.Status, "createdAt": g.CreatedAt.Format(time.RFC3339),
	}
}

func taskResponse(t *goal.Task) fiber.Map {
	return fiber.Map{"id": t.ID, "goalId": t.GoalID, "title": t.Title, "status": t.Status}
}

func (h *GoalHandler) Create(c *fiber.Ctx) error {
	p := Principal(c)

	req, err := ParseBody[CreateGoalRequest](c)
	if err != nil {
		return WithError(c, err)
	}

	deadline, err := time.Parse(time.RFC3339, req.Deadline)
	if err != nil {
		return WithError(c, apperr.ValidationError{Code: "invalid_deadline", Field: "deadline", Message: "deadline must be RFC3339"})
	}

	g, err := h.Goals.CreateGoal(c.UserContext(), p.Sub, req.Title, deadline)
	if err != nil {
		return WithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(goalResponse(g))
}

func (h *GoalHandler) List(c *fiber.Ctx) error {
	p := Principal(c)
	includeArchived := c.Query("include_archived") == "true"

	goals, err := h.Goals.ListGoals(c.UserContext(), p.Sub, includeArchived)
	if err != nil {
		return WithError(c, err)
	}

	out := make([]fiber.Map, 0, len(goals))
	for _, g := range goals {
		out = append(out, goalResponse(g))
	}

	return c.JSON(out)
}

func (h *GoalHandler) Get(c *fiber.Ctx) error {
	p := Principal(c)

	g, err := h.Goals.GetGoal(c.UserContext(), p.Sub, p.Sub, c.Params("id"))
	if err != nil {
		return WithError(c, err)
	}

	return c.JSON(goalResponse(g))
}

func (h *GoalHandler) Update(c *fiber.Ctx) error {
	p := Principal(c)

	req, err := ParseBody[UpdateGoalRequest](c)
	if err != nil {
		return WithError(c, err)
	}

	var deadline *time.Time

	if req.Deadline != nil {
		d, err := time.Parse(time.RFC3339, *req.Deadline)
		if err != nil {
			return WithError(c, apperr.ValidationError{Code: "invalid_deadline", Field: "deadline", Message: "deadline must be RFC3339"})
		}

		deadline = &d
	}

	g, err := h.Goals.UpdateGoal(c.UserContext(), p.Sub, p.Sub, c.Params("id"), req.Title, deadline, req.Status)
	if err != nil {
		return WithError(c, err)
	}

	return c.JSON(goalResponse(g))
}

func (h *GoalHandler) Delete(c *fiber.Ctx) error {
	p := Principal(c)

	if err := h.Goals.DeleteGoal(c.UserContext(), p.Sub, p.Sub, c.Params("id")); err != nil {
		return WithError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *GoalHandler) Progress(c *fiber.Ctx) error {
	p := Principal(c)

	progress, milestones, err := h.Goals.GetProgress(c.UserContext(), p.Sub, c.Params("id"))
	if err != nil {
		return WithError(c, err)
	}

	return c.JSON(fiber.Map{"progress": progress, "milestones": milestones})
}

// Milestones is the supplemented GET /goals/{id}/milestones endpoint.
func (h *GoalHandler) Milestones(c *fiber.Ctx) error {
	p := Principal(c)

	_, milestones, err := h.Goals.GetProgress(c.UserContext(), p.Sub, c.Params("id"))
	if err != nil {
		return WithError(c, err)
	}

	return c.JSON(milestones)
}

func (h *GoalHandler) AddTask(c *fiber.Ctx) error {
	p := Principal(c)

	req, err := ParseBody[CreateTaskRequest](c)
	if err != nil {
		return WithError(c, err)
	}

	t, err := h.Goals.AddTask(c.UserContext(), p.Sub, p.Sub, c.Params("id"), req.Title)
	if err != nil {
		return WithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(taskResponse(t))
}

func (h *GoalHandler) ListTasks(c *fiber.Ctx) error {
	p := Principal(c)

	if _, err := h.Goals.GetGoal(c.UserContext(), p.Sub, p.Sub, c.Params("id")); err != nil {
		return WithError(c, err)
	}

	tasks, err := h.Goals.ListTasks(c.UserContext(), c.Params("id"))
	if err != nil {
		return WithError(c, err)
	}

	out := make([]fiber.Map, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskResponse(t))
	}

	return c.JSON(out)
}

func (h *GoalHandler) ToggleTask(c *fiber.Ctx) error {
	p := Principal(c)

	if _, err := h.Goals.GetGoal(c.UserContext(), p.Sub, p.Sub, c.Params("id")); err != nil {
		return WithError(c, err)
	}

	t, err := h.Goals.ToggleTask(c.UserContext(), c.Params("id"), c.Params("taskId"))
	if err != nil {
		return WithError(c, err)
	}

	return c.JSON(taskResponse(t))
}

func (h *GoalHandler) DeleteTask(c *fiber.Ctx) error {
	p := Principal(c)

	if _, err := h.Goals.GetGoal(c.UserContext(), p.Sub, p.Sub, c.Params("id")); err != nil {
		return WithError(c, err)
	}

	if err := h.Goals.DeleteTask(c.UserContext(), c.Params("id"), c.Params("taskId")); err != nil {
		return WithError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
