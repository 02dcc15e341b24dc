package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/apperr"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/subscription"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/payment"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/logging"
)

// WebhookHandler exposes the payment provider's webhook endpoint. Per
// §4.11, it acknowledges with 2xx once the event is processed (a replayed
// event or an unhandled event type is also acknowledged); a processing
// failure returns an error status, so the provider retries that event.
type WebhookHandler struct {
	Subscriptions *subscription.Service
	Gateway       payment.Gateway
	Logger        logging.Logger
}

func (h *WebhookHandler) Stripe(c *fiber.Ctx) error {
	evt, err := h.Gateway.VerifyWebhook(c.UserContext(), c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		return WithError(c, err)
	}

	if _, err := h.Subscriptions.HandleWebhookEvent(c.UserContext(), evt); err != nil {
		var validationErr apperr.ValidationError
		if errors.As(err, &validationErr) && validationErr.Code == "unhandled_event" {
			if h.Logger != nil {
				h.Logger.Infof("ignoring unhandled webhook event type for event %s", evt.ID)
			}

			return c.SendStatus(fiber.StatusOK)
		}

		if h.Logger != nil {
			h.Logger.Errorf("webhook processing failed for event %s: %v", evt.ID, err)
		}

		return WithError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}
