package graphqlapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/identity"
)

type graphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

// NewHandler adapts a graphql-go schema into a fiber.Handler posted to by a
// single /graphql route, mirroring the teacher's thin-adapter pattern of one
// handler per transport concern rather than embedding graphql-go's own
// net/http handler (not vendored in this module's dependency set).
// principalFromCtx extracts the principal WithAuth already stored in
// fiber.Locals so every resolver runs with the same auth context REST does.
func NewHandler(schema graphql.Schema, principalFromCtx func(c *fiber.Ctx) *identity.Principal) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req graphQLRequest

		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": []string{"malformed graphql request"}})
		}

		ctx := WithPrincipal(c.UserContext(), principalFromCtx(c))

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			OperationName:  req.OperationName,
			VariableValues: req.Variables,
			Context:        ctx,
		})

		return c.JSON(result)
	}
}
