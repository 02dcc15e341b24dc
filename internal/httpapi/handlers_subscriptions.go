package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/subscription"
)

// SubscriptionHandler exposes C11's plan/checkout/credits routes (§6).
type SubscriptionHandler struct {
	Subscriptions *subscription.Service
}

func subscriptionResponse(s *subscription.Subscription) fiber.Map {
	return fiber.Map{
		"tier": s.Tier, "status": s.Status, "founderPass": s.FounderPass,
	}
}

func (h *SubscriptionHandler) Current(c *fiber.Ctx) error {
	p := Principal(c)

	sub, err := h.Subscriptions.Current(c.UserContext(), p.Sub)
	if err != nil {
		return WithError(c, err)
	}

	return c.JSON(subscriptionResponse(sub))
}

func (h *SubscriptionHandler) CreateCheckout(c *fiber.Ctx) error {
	p := Principal(c)

	req, err := ParseBody[CreateCheckoutRequest](c)
	if err != nil {
		return WithError(c, err)
	}

	sess, err := h.Subscriptions.CreateCheckoutSession(c.UserContext(), p.Sub, req.Tier, req.SuccessURL, req.CancelURL)
	if err != nil {
		return WithError(c, err)
	}

	return c.JSON(fiber.Map{"sessionId": sess.SessionID, "redirectUrl": sess.RedirectURL})
}

func (h *SubscriptionHandler) Cancel(c *fiber.Ctx) error {
	p := Principal(c)

	sub, err := h.Subscriptions.Cancel(c.UserContext(), p.Sub)
	if err != nil {
		return WithError(c, err)
	}

	return c.JSON(subscriptionResponse(sub))
}

func (h *SubscriptionHandler) Balance(c *fiber.Ctx) error {
	p := Principal(c)

	balance, err := h.Subscriptions.Balance(c.UserContext(), p.Sub)
	if err != nil {
		return WithError(c, err)
	}

	return c.JSON(fiber.Map{"balance": balance})
}

func (h *SubscriptionHandler) Ledger(c *fiber.Ctx) error {
	p := Principal(c)

	entries, err := h.Subscriptions.Ledger(c.UserContext(), p.Sub)
	if err != nil {
		return WithError(c, err)
	}

	return c.JSON(entries)
}

func (h *SubscriptionHandler) Topup(c *fiber.Ctx) error {
	p := Principal(c)

	req, err := ParseBody[TopupRequest](c)
	if err != nil {
		return WithError(c, err)
	}

	if err := h.Subscriptions.Topup(c.UserContext(), p.Sub, req.Amount, req.Reason); err != nil {
		return WithError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
