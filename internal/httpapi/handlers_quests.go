package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/guild"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/quest"
)

// QuestHandler exposes C7's quest lifecycle routes (§6).
type QuestHandler struct {
	Quests *quest.Service
	Guilds *guild.Service
}

func questResponse(q *quest.Quest) fiber.Map {
	return fiber.Map{
		"id": q.ID, "title": q.Title, "kind": q.Kind, "status": q.Status,
		"targetCount": q.TargetCount, "currentCount": q.CurrentCount,
		"version": q.Version, "progress": q.Progress(),
	}
}

func (h *QuestHandler) Create(c *fiber.Ctx) error {
	p := Principal(c)

	req, err := ParseBody[CreateQuestRequest](c)
	if err != nil {
		return WithError(c, err)
	}

	q, err := h.Quests.CreateQuest(c.UserContext(), p.Sub, req.Title, req.Kind, req.TargetCount)
	if err != nil {
		return WithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(questResponse(q))
}

func (h *QuestHandler) List(c *fiber.Ctx) error {
	p := Principal(c)

	quests, err := h.Quests.ListForUser(c.UserContext(), p.Sub)
	if err != nil {
		return WithError(c, err)
	}

	out := make([]fiber.Map, 0, len(quests))
	for _, q := range quests {
		out = append(out, questResponse(q))
	}

	return c.JSON(out)
}

func (h *QuestHandler) isGuildMember(p *fiber.Ctx) func(string) bool {
	principal := Principal(p)

	return func(guildID string) bool {
		return h.Guilds != nil && h.Guilds.IsMember(p.UserContext(), guildID, principal.Sub)
	}
}

func (h *QuestHandler) Get(c *fiber.Ctx) error {
	p := Principal(c)

	q, err := h.Quests.Get(c.UserContext(), p.Sub, p.Sub, c.Params("id"), h.isGuildMember(c))
	if err != nil {
		return WithError(c, err)
	}

	return c.JSON(questResponse(q))
}

func (h *QuestHandler) Start(c *fiber.Ctx) error {
	return h.transition(c, func(p, id string) (*quest.Quest, error) {
		return h.Quests.Start(c.UserContext(), p, id, p)
	})
}

func (h *QuestHandler) Complete(c *fiber.Ctx) error {
	return h.transition(c, func(p, id string) (*quest.Quest, error) {
		return h.Quests.Complete(c.UserContext(), p, id, p)
	})
}

func (h *QuestHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, func(p, id string) (*quest.Quest, error) {
		return h.Quests.Cancel(c.UserContext(), p, id, p)
	})
}

func (h *QuestHandler) Fail(c *fiber.Ctx) error {
	return h.transition(c, func(p, id string) (*quest.Quest, error) {
		return h.Quests.Fail(c.UserContext(), p, id, p)
	})
}

func (h *QuestHandler) Increment(c *fiber.Ctx) error {
	p := Principal(c)

	req, err := ParseBody[IncrementQuestRequest](c)
	if err != nil {
		return WithError(c, err)
	}

	q, err := h.Quests.Increment(c.UserContext(), p.Sub, c.Params("id"), p.Sub, req.Delta)
	if err != nil {
		return WithError(c, err)
	}

	return c.JSON(questResponse(q))
}

func (h *QuestHandler) transition(c *fiber.Ctx, fn func(userID, questID string) (*quest.Quest, error)) error {
	p := Principal(c)

	q, err := fn(p.Sub, c.Params("id"))
	if err != nil {
		return WithError(c, err)
	}

	return c.JSON(questResponse(q))
}

func (h *QuestHandler) Audit(c *fiber.Ctx) error {
	p := Principal(c)

	if _, err := h.Quests.Get(c.UserContext(), p.Sub, p.Sub, c.Params("id"), h.isGuildMember(c)); err != nil {
		return WithError(c, err)
	}

	entries, err := h.Quests.Audit(c.UserContext(), c.Params("id"))
	if err != nil {
		return WithError(c, err)
	}

	return c.JSON(entries)
}
