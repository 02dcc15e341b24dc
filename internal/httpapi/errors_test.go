package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/apperr"
)

func runWithError(t *testing.T, err error) *http.Response {
	t.Helper()

	app := fiber.New()
	app.Get("/x", func(c *fiber.Ctx) error { return WithError(c, err) })

	resp, respErr := app.Test(httptest.NewRequest(fiber.MethodGet, "/x", nil))
	require.NoError(t, respErr)

	return resp
}

func TestWithError_MapsEveryKnownKind(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not_found", apperr.NewNotFound("Goal", "goal_not_found"), fiber.StatusNotFound},
		{"conflict", apperr.ConflictError{EntityType: "User", Code: "email_in_use"}, fiber.StatusConflict},
		{"validation", apperr.ValidationError{Code: "invalid_title"}, fiber.StatusBadRequest},
		{"unauthorized", apperr.UnauthorizedError{Code: "invalid_credentials"}, fiber.StatusUnauthorized},
		{"forbidden", apperr.ForbiddenError{Code: "not_owner"}, fiber.StatusForbidden},
		{"gone", apperr.GoneError{Code: "invite_expired"}, fiber.StatusGone},
		{"too_many", apperr.TooManyRequestsError{Code: "rate_limited", RetryAfterSeconds: 5}, fiber.StatusTooManyRequests},
		{"dependency", apperr.DependencyError{Dependency: "stripe", Message: "down"}, fiber.StatusBadGateway},
		{"internal", apperr.InternalError{}, fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := runWithError(t, tc.err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
