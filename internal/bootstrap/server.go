package bootstrap

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/collab"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/goal"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/guild"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/messaging"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/quest"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/subscription"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/user"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/waitlist"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/graphqlapi"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/httpapi"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/mailer"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/payment"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/identity"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/logging"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/ratelimit"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/store"

	"github.com/gofiber/fiber/v2"
)

// Server bundles the fiber app with the background resources (Mongo/Redis
// clients, the RabbitMQ channel) InitServersWithOptions opened, so main can
// close them on shutdown the way the teacher's cmd/app bootstrap returns a
// closer alongside its router.
type Server struct {
	App     *fiber.App
	Closers []func(context.Context) error
}

// Close runs every registered closer, collecting the first error.
func (s *Server) Close(ctx context.Context) error {
	var first error

	for _, closer := range s.Closers {
		if err := closer(ctx); err != nil && first == nil {
			first = err
		}
	}

	return first
}

// InitServersWithOptions builds every store, domain service and adapter
// from cfg, wiring the same dependency graph the teacher's bootstrap/
// config.go + server.go pair constructs for each microservice, generalized
// to this module's twelve components.
func InitServersWithOptions(ctx context.Context, cfg *Config, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		built, err := logging.New(cfg.EnvName, cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("build logger: %w", err)
		}

		logger = built
	}

	srv := &Server{}

	coreStore, closeCore, err := buildMongoStore(ctx, cfg.MongoURI, cfg.MongoDBName, "core", logger)
	if err != nil {
		return nil, fmt.Errorf("connect core store: %w", err)
	}

	srv.Closers = append(srv.Closers, closeCore)

	guildChatStore, closeGuildChat, err := buildMongoStore(ctx, cfg.GuildMongoURI, cfg.GuildMongoDBName, "guildchat", logger)
	if err != nil {
		return nil, fmt.Errorf("connect guild chat store: %w", err)
	}

	srv.Closers = append(srv.Closers, closeGuildChat)

	windowStore, closeWindowStore, err := buildWindowStore(cfg, coreStore)
	if err != nil {
		return nil, fmt.Errorf("build rate limit window store: %w", err)
	}

	if closeWindowStore != nil {
		srv.Closers = append(srv.Closers, closeWindowStore)
	}

	limiter := ratelimit.New(windowStore)
	lockout := &ratelimit.LoginLockout{Store: windowStore}

	authz := &identity.Authorizer{
		InternalIssuer: cfg.InternalIssuer,
		Internal:       identity.NewInternalIssuer([]byte(cfg.InternalSecret), cfg.InternalIssuer, cfg.InternalAudience),
	}

	if cfg.ExternalJWKSURL != "" {
		authz.External = identity.NewExternalProvider(cfg.ExternalProviderName, cfg.ExternalJWKSURL, cfg.ExternalIssuer, cfg.ExternalAudience)
	}

	var mail mailer.Mailer = mailer.NopMailer{}

	hub := messaging.NewHub()

	var bus *messaging.Bus

	if cfg.RabbitMQURL != "" {
		built, closeBus, err := buildBus(cfg, hub, logger)
		if err != nil {
			return nil, fmt.Errorf("connect rabbitmq: %w", err)
		}

		bus = built
		srv.Closers = append(srv.Closers, closeBus)

		go func() {
			if err := bus.Consume(); err != nil {
				logger.Errorf("rabbitmq consume loop exited: %v", err)
			}
		}()
	}

	var gateway payment.Gateway

	if cfg.mockPaymentMode() {
		gateway = payment.NewMock()
	} else {
		gateway = payment.NewStripe(cfg.PaymentSecret, cfg.PaymentWebhookSecret, map[string]string{
			subscription.TierInitiate:    "", // price ids are operator-configured, left blank here
			subscription.TierJourneyman:  "",
			subscription.TierSage:        "",
			subscription.TierGuildmaster: "",
		})
	}

	userSvc := user.New(coreStore, logger, authz.Internal, mail, lockout)
	goalSvc := goal.New(coreStore, logger, nil)
	guildSvc := guild.New(coreStore, logger, &goalCompletionCounter{goals: goalSvc})
	questSvc := quest.New(coreStore, logger)
	collabSvc := collab.New(coreStore, logger)
	subscriptionSvc := subscription.New(coreStore, gateway, logger)
	waitlistSvc := waitlist.New(coreStore)

	messagingSvc := &messaging.Service{
		RoomStore: coreStore, GuildStore: guildChatStore, Hub: hub, Bus: bus,
		Membership: guildSvc, Logger: logger,
	}

	schema, err := graphqlapi.NewSchema(&graphqlapi.Resolvers{Users: userSvc, Goals: goalSvc, Messaging: messagingSvc})
	if err != nil {
		return nil, fmt.Errorf("build graphql schema: %w", err)
	}

	handlers := &httpapi.Handlers{
		Auth:          &httpapi.AuthHandler{Users: userSvc},
		Profile:       &httpapi.ProfileHandler{Users: userSvc},
		Waitlist:      &httpapi.WaitlistHandler{Waitlist: waitlistSvc},
		Goals:         &httpapi.GoalHandler{Goals: goalSvc},
		Quests:        &httpapi.QuestHandler{Quests: questSvc, Guilds: guildSvc},
		Guilds:        &httpapi.GuildHandler{Guilds: guildSvc},
		Collab:        &httpapi.CollabHandler{Collab: collabSvc},
		Subscriptions: &httpapi.SubscriptionHandler{Subscriptions: subscriptionSvc},
		Webhooks:      &httpapi.WebhookHandler{Subscriptions: subscriptionSvc, Gateway: gateway, Logger: logger},
		WS:            &httpapi.WSHandler{Messaging: messagingSvc, Authorizer: authz, Logger: logger},
		GraphQL:       graphqlapi.NewHandler(schema, httpapi.Principal),
	}

	srv.App = httpapi.NewRouter(logger, authz, limiter, cfg.AllowedOrigins, cfg.APIKey, handlers)

	return srv, nil
}

// goalCompletionCounter adapts goal.Service to guild.CompletedGoalsCounter
// without goal depending on guild.
type goalCompletionCounter struct {
	goals *goal.Service
}

func (c *goalCompletionCounter) CountCompletedGoals(ctx context.Context, userIDs []string) (int, error) {
	total := 0

	for _, userID := range userIDs {
		goals, err := c.goals.ListGoals(ctx, userID, false)
		if err != nil {
			return 0, err
		}

		for _, g := range goals {
			if g.Status == goal.StatusCompleted {
				total++
			}
		}
	}

	return total, nil
}

func buildMongoStore(ctx context.Context, uri, db, collection string, logger logging.Logger) (*store.MongoStore, func(context.Context) error, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}

	s := store.NewMongoStore(client, db, collection, logger)

	if err := s.EnsureIndexes(ctx); err != nil {
		return nil, nil, err
	}

	return s, client.Disconnect, nil
}

func buildWindowStore(cfg *Config, fallback *store.MongoStore) (ratelimit.WindowStore, func(context.Context) error, error) {
	if cfg.RedisAddr == "" {
		return fallback, nil, nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})

	return ratelimit.NewRedisWindowStore(client), func(context.Context) error { return client.Close() }, nil
}

func buildBus(cfg *Config, hub *messaging.Hub, logger logging.Logger) (*messaging.Bus, func(context.Context) error, error) {
	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		return nil, nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()

		return nil, nil, err
	}

	bus, err := messaging.NewBus(ch, cfg.RabbitMQExchange, hub, logger)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()

		return nil, nil, err
	}

	closer := func(context.Context) error {
		_ = ch.Close()

		return conn.Close()
	}

	return bus, closer, nil
}
