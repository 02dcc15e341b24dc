package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/identity"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/logging"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/ratelimit"
)

// Handlers groups every route handler NewRouter wires up, mirroring the
// teacher's pattern of passing one *HolderHandler/*AliasHandler pair into
// NewRouter rather than a monolithic dependency struct.
type Handlers struct {
	Auth          *AuthHandler
	Profile       *ProfileHandler
	Waitlist      *WaitlistHandler
	Goals         *GoalHandler
	Quests        *QuestHandler
	Guilds        *GuildHandler
	Collab        *CollabHandler
	Subscriptions *SubscriptionHandler
	Webhooks      *WebhookHandler
	WS            *WSHandler
	GraphQL       fiber.Handler
}

// NewRouter wires middleware and every REST + WebSocket + GraphQL route into
// one fiber.App, the same shape as the teacher's adapters/http/in/routes.go
// NewRouter (minus OTel spans and swagger, both out of scope here).
func NewRouter(logger logging.Logger, authz *identity.Authorizer, limiter *ratelimit.Limiter, allowedOrigins, apiKey string, h *Handlers) *fiber.App {
	f := fiber.New(fiber.Config{DisableStartupMessage: true})

	f.Use(WithCorrelationID())
	f.Use(WithRequestID())
	f.Use(WithRecover(logger))
	f.Use(WithCORS(allowedOrigins))
	f.Use(WithHTTPLogging(logger))

	f.Get("/health", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) })

	auth := f.Group("/auth")
	auth.Post("/signup", WithRateLimit(limiter, "ip", ratelimit.WaitlistPerIP, ClientIP), h.Auth.Signup)
	auth.Post("/login", WithRateLimit(limiter, "ip", ratelimit.LoginPerIP, ClientIP), h.Auth.Login)
	auth.Post("/confirm", h.Auth.Confirm)
	auth.Post("/password-reset/request", h.Auth.RequestPasswordReset)
	auth.Post("/password-reset/confirm", h.Auth.ConfirmPasswordReset)
	auth.Get("/email-available", h.Auth.IsEmailAvailable)
	auth.Get("/nickname-available", h.Auth.IsNicknameAvailable)

	f.Post("/waitlist/subscribe", WithRateLimit(limiter, "ip", ratelimit.WaitlistPerIP, ClientIP), h.Waitlist.Subscribe)
	f.Post("/webhooks/stripe", h.Webhooks.Stripe)

	authed := f.Group("", WithAuth(authz))

	profile := authed.Group("/profile")
	profile.Get("", h.Profile.Get)
	profile.Put("", h.Profile.Update)

	goals := authed.Group("/goals")
	goals.Post("", h.Goals.Create)
	goals.Get("", h.Goals.List)
	goals.Get("/:id", h.Goals.Get)
	goals.Put("/:id", h.Goals.Update)
	goals.Delete("/:id", h.Goals.Delete)
	goals.Get("/:id/progress", h.Goals.Progress)
	goals.Get("/:id/milestones", h.Goals.Milestones)
	goals.Post("/:id/tasks", h.Goals.AddTask)
	goals.Get("/:id/tasks", h.Goals.ListTasks)
	goals.Patch("/:id/tasks/:taskId/toggle", h.Goals.ToggleTask)
	goals.Delete("/:id/tasks/:taskId", h.Goals.DeleteTask)

	quests := authed.Group("/quests")
	quests.Post("", h.Quests.Create)
	quests.Get("", h.Quests.List)
	quests.Get("/:id", h.Quests.Get)
	quests.Post("/:id/start", h.Quests.Start)
	quests.Post("/:id/complete", h.Quests.Complete)
	quests.Post("/:id/cancel", h.Quests.Cancel)
	quests.Post("/:id/fail", h.Quests.Fail)
	quests.Post("/:id/increment", h.Quests.Increment)
	quests.Get("/:id/audit", h.Quests.Audit)

	guilds := authed.Group("/guilds")
	guilds.Post("", h.Guilds.Create)
	guilds.Get("/:id", h.Guilds.Get)
	guilds.Post("/:id/join", h.Guilds.Join)
	guilds.Post("/:id/leave", h.Guilds.Leave)
	guilds.Post("/:id/quests", h.Guilds.AddQuest)
	guilds.Post("/:id/quests/:questId/complete", h.Guilds.CompleteQuest)
	guilds.Get("/:id/activities", h.Guilds.Activities)
	guilds.Get("/:id/analytics", h.Guilds.Analytics)

	collab := authed.Group("/collaborations")
	collab.Post("/invites", WithRateLimit(limiter, "user", ratelimit.InvitesPerUser, PrincipalKey), h.Collab.SendInvite)
	collab.Post("/invites/:id/accept", h.Collab.AcceptInvite)
	collab.Post("/invites/:id/decline", h.Collab.DeclineInvite)
	collab.Get("/collaborators", h.Collab.ListCollaborators)
	collab.Post("/comments", WithRateLimit(limiter, "user", ratelimit.CommentsPerUser, PrincipalKey), h.Collab.AddComment)
	collab.Get("/comments", h.Collab.ListComments)
	collab.Post("/comments/:id/reactions", h.Collab.ToggleReaction)

	subs := authed.Group("/subscriptions")
	subs.Get("/current", h.Subscriptions.Current)
	subs.Post("/create-checkout", h.Subscriptions.CreateCheckout)
	subs.Post("/cancel", h.Subscriptions.Cancel)

	credits := authed.Group("/credits")
	credits.Get("/balance", h.Subscriptions.Balance)
	credits.Get("/ledger", h.Subscriptions.Ledger)
	credits.Post("/topup", h.Subscriptions.Topup)

	f.Get("/ws/rooms/:roomId", h.WS.Room)
	f.Get("/ws/guilds/:guildId", h.WS.GuildRoom)

	if h.GraphQL != nil {
		f.All("/graphql", WithGraphQLAuth(authz, apiKey), h.GraphQL)
	}

	return f
}
