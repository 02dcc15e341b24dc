package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/collab"
)

// CollabHandler exposes C9's invite/collaborator/comment/reaction routes (§6).
type CollabHandler struct {
	Collab *collab.Service
}

func (h *CollabHandler) SendInvite(c *fiber.Ctx) error {
	p := Principal(c)

	req, err := ParseBody[SendInviteRequest](c)
	if err != nil {
		return WithError(c, err)
	}

	inv, err := h.Collab.SendInvite(c.UserContext(), req.ResourceType, req.ResourceID, p.Sub, req.InviteeID)
	if err != nil {
		return WithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id": inv.ID, "resourceType": inv.ResourceType, "resourceId": inv.ResourceID,
		"inviteeId": inv.InviteeID, "status": inv.Status,
	})
}

func (h *CollabHandler) AcceptInvite(c *fiber.Ctx) error {
	collaborator, err := h.Collab.AcceptInvite(c.UserContext(), c.Query("resourceType"), c.Query("resourceId"), c.Params("id"))
	if err != nil {
		return WithError(c, err)
	}

	return c.JSON(fiber.Map{"resourceType": collaborator.ResourceType, "resourceId": collaborator.ResourceID, "userId": collaborator.UserID})
}

func (h *CollabHandler) DeclineInvite(c *fiber.Ctx) error {
	if err := h.Collab.DeclineInvite(c.UserContext(), c.Query("resourceType"), c.Query("resourceId"), c.Params("id")); err != nil {
		return WithError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CollabHandler) ListCollaborators(c *fiber.Ctx) error {
	collaborators, err := h.Collab.ListCollaborators(c.UserContext(), c.Query("resourceType"), c.Query("resourceId"))
	if err != nil {
		return WithError(c, err)
	}

	return c.JSON(collaborators)
}

func (h *CollabHandler) AddComment(c *fiber.Ctx) error {
	p := Principal(c)

	req, err := ParseBody[AddCommentRequest](c)
	if err != nil {
		return WithError(c, err)
	}

	com, err := h.Collab.AddComment(c.UserContext(), req.ResourceType, req.ResourceID, p.Sub, req.Body)
	if err != nil {
		return WithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id": com.ID, "authorId": com.AuthorID, "body": com.Body, "mentions": com.Mentions,
	})
}

func (h *CollabHandler) ListComments(c *fiber.Ctx) error {
	comments, err := h.Collab.ListComments(c.UserContext(), c.Query("resourceType"), c.Query("resourceId"))
	if err != nil {
		return WithError(c, err)
	}

	return c.JSON(comments)
}

func (h *CollabHandler) ToggleReaction(c *fiber.Ctx) error {
	p := Principal(c)

	req, err := ParseBody[ToggleReactionRequest](c)
	if err != nil {
		return WithError(c, err)
	}

	if err := h.Collab.ToggleReaction(c.UserContext(), c.Params("id"), p.Sub, req.Emoji); err != nil {
		return WithError(c, err)
	}

	counts, err := h.Collab.ReactionCounts(c.UserContext(), c.Params("id"))
	if err != nil {
		return WithError(c, err)
	}

	return c.JSON(counts)
}
