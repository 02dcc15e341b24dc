package httpapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/apperr"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/identity"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/logging"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/ratelimit"
)

const headerCorrelationID = "X-Correlation-ID"

// WithCorrelationID stamps every request with a correlation id, reusing one
// supplied by an upstream proxy when present.
func WithCorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		cid := c.Get(headerCorrelationID)
		if cid == "" {
			cid = uuid.New().String()
		}

		c.Set(headerCorrelationID, cid)
		c.Locals(headerCorrelationID, cid)

		return c.Next()
	}
}

// WithRequestID wires the fiber requestid middleware so it's visible in logs
// without depending on correlation id propagation from a proxy.
func WithRequestID() fiber.Handler {
	return requestid.New()
}

// WithCORS enables cross-origin requests for the dashboard/mobile clients.
func WithCORS(allowedOrigins string) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Accept,Content-Type,Content-Length,Authorization,X-Correlation-ID",
		AllowCredentials: true,
	})
}

// WithRecover converts a panic in a handler into a 500 instead of crashing
// the process, logging the stack via the injected logger.
func WithRecover(logger logging.Logger) fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e any) {
			logger.WithFields("correlation_id", c.Locals(headerCorrelationID)).Errorf("panic recovered: %v", e)
		},
	})
}

// WithHTTPLogging logs one line per request at Info level, similar in shape
// to the CLF-style access logs of the teacher's WithHTTPLogging middleware.
func WithHTTPLogging(logger logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/health" || c.Path() == "/healthz" {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		logger.WithFields(
			"correlation_id", c.Locals(headerCorrelationID),
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration_ms", duration.Milliseconds(),
		).Info("request completed")

		return err
	}
}

// principalKey is the fiber.Locals key holding the authenticated principal.
const principalKey = "principal"

// WithAuth validates the Authorization header via the Authorizer and stores
// the resulting Principal in locals. Handlers read it with Principal(c).
func WithAuth(authz *identity.Authorizer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return WithError(c, apperr.UnauthorizedError{Code: "missing_token", Message: "missing Authorization header"})
		}

		principal, err := authz.Authorize(c.UserContext(), header)
		if err != nil {
			return WithError(c, err)
		}

		c.Locals(principalKey, principal)

		return c.Next()
	}
}

// WithGraphQLAuth accepts either a bearer token (full schema access, same as
// WithAuth) or a matching X-API-Key header (§6: "API key for a narrow
// allowlist of public fields"). An API-key request proceeds with no
// principal in context, so resolvers that call principalFrom still reject it
// — only the handful of fields that never call principalFrom (the
// availability checks and createUser) are reachable this way.
func WithGraphQLAuth(authz *identity.Authorizer, apiKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if apiKey != "" && c.Get("X-API-Key") == apiKey {
			return c.Next()
		}

		return WithAuth(authz)(c)
	}
}

// Principal reads the authenticated principal stored by WithAuth.
func Principal(c *fiber.Ctx) *identity.Principal {
	p, _ := c.Locals(principalKey).(*identity.Principal)

	return p
}

// WithRateLimit enforces a Policy keyed on the client IP (when principal is
// absent) or the principal's sub (once authenticated), writing the
// X-RateLimit-* headers either way per §4.4.
func WithRateLimit(limiter *ratelimit.Limiter, scope string, p ratelimit.Policy, keyFn func(c *fiber.Ctx) string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := keyFn(c)

		result, err := limiter.Allow(c.UserContext(), scope, key, p)
		if err != nil {
			return WithError(c, err)
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if !result.Allowed {
			return WithError(c, apperr.TooManyRequestsError{
				Code:              "rate_limited",
				Message:           "too many requests",
				RetryAfterSeconds: int(result.RetryAfter.Seconds()) + 1,
			})
		}

		return c.Next()
	}
}

// ClientIP keys a rate limit bucket by the caller's address, honoring
// X-Forwarded-For the way the teacher's GetRemoteAddress does.
func ClientIP(c *fiber.Ctx) string {
	if fwd := c.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")

		return strings.TrimSpace(parts[0])
	}

	return c.IP()
}

// PrincipalKey keys a rate limit bucket by the authenticated principal's sub,
// falling back to the client IP for unauthenticated callers.
func PrincipalKey(c *fiber.Ctx) string {
	if p := Principal(c); p != nil {
		return p.Sub
	}

	return ClientIP(c)
}
