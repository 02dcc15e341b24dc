package httpapi

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/guild"
)

// GuildHandler exposes C8's guild/quest/activity/analytics routes (§6).
type GuildHandler struct {
	Guilds *guild.Service
}

func guildResponse(g *guild.Guild) fiber.Map {
	return fiber.Map{"id": g.ID, "name": g.Name, "ownerId": g.OwnerID}
}

func (h *GuildHandler) Create(c *fiber.Ctx) error {
	p := Principal(c)

	req, err := ParseBody[CreateGuildRequest](c)
	if err != nil {
		return WithError(c, err)
	}

	g, err := h.Guilds.CreateGuild(c.UserContext(), p.Sub, req.Name)
	if err != nil {
		return WithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(guildResponse(g))
}

func (h *GuildHandler) Get(c *fiber.Ctx) error {
	g, err := h.Guilds.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return WithError(c, err)
	}

	return c.JSON(guildResponse(g))
}

func (h *GuildHandler) Join(c *fiber.Ctx) error {
	p := Principal(c)

	if err := h.Guilds.Join(c.UserContext(), c.Params("id"), p.Sub); err != nil {
		return WithError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *GuildHandler) Leave(c *fiber.Ctx) error {
	p := Principal(c)

	if err := h.Guilds.Leave(c.UserContext(), c.Params("id"), p.Sub); err != nil {
		return WithError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *GuildHandler) AddQuest(c *fiber.Ctx) error {
	req, err := ParseBody[CreateGuildQuestRequest](c)
	if err != nil {
		return WithError(c, err)
	}

	q, err := h.Guilds.AddGuildQuest(c.UserContext(), c.Params("id"), req.Title, req.Kind, req.TargetCount)
	if err != nil {
		return WithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"guildId": q.GuildID, "questId": q.QuestID, "title": q.Title, "kind": q.Kind, "targetCount": q.TargetCount,
	})
}

func (h *GuildHandler) CompleteQuest(c *fiber.Ctx) error {
	p := Principal(c)

	req, err := ParseBody[CompleteGuildQuestRequest](c)
	if err != nil {
		return WithError(c, err)
	}

	if err := h.Guilds.CompleteGuildQuest(c.UserContext(), c.Params("id"), c.Params("questId"), p.Sub, req.Contribution); err != nil {
		return WithError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *GuildHandler) Activities(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))

	activities, err := h.Guilds.ListActivities(c.UserContext(), c.Params("id"), limit)
	if err != nil {
		return WithError(c, err)
	}

	return c.JSON(activities)
}

func (h *GuildHandler) Analytics(c *fiber.Ctx) error {
	windowDays, _ := strconv.Atoi(c.Query("windowDays"))

	analytics, err := h.Guilds.GetAnalytics(c.UserContext(), c.Params("id"), windowDays)
	if err != nil {
		return WithError(c, err)
	}

	return c.JSON(analytics)
}
