package httpapi

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/apperr"
)

// ResponseError is the JSON body shape for every non-2xx response.
type ResponseError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// WithError dispatches on the domain error kind and writes the matching
// HTTP status, the way common/net/http/errors.go dispatches on
// common.EntityNotFoundError/EntityConflictError/ValidationError.
func WithError(c *fiber.Ctx, err error) error {
	var notFound apperr.NotFoundError
	if errors.As(err, &notFound) {
		return JSON(c, fiber.StatusNotFound, notFound.Code, notFound.Error())
	}

	var conflict apperr.ConflictError
	if errors.As(err, &conflict) {
		return JSON(c, fiber.StatusConflict, conflict.Code, conflict.Error())
	}

	var validation apperr.ValidationError
	if errors.As(err, &validation) {
		return JSON(c, fiber.StatusBadRequest, validation.Code, validation.Error())
	}

	var unauthorized apperr.UnauthorizedError
	if errors.As(err, &unauthorized) {
		return JSON(c, fiber.StatusUnauthorized, unauthorized.Code, unauthorized.Error())
	}

	var forbidden apperr.ForbiddenError
	if errors.As(err, &forbidden) {
		return JSON(c, fiber.StatusForbidden, forbidden.Code, forbidden.Error())
	}

	var gone apperr.GoneError
	if errors.As(err, &gone) {
		return JSON(c, fiber.StatusGone, gone.Code, gone.Error())
	}

	var tooMany apperr.TooManyRequestsError
	if errors.As(err, &tooMany) {
		if tooMany.RetryAfterSeconds > 0 {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(tooMany.RetryAfterSeconds))
		}

		return JSON(c, fiber.StatusTooManyRequests, tooMany.Code, tooMany.Error())
	}

	var dependency apperr.DependencyError
	if errors.As(err, &dependency) {
		return JSON(c, fiber.StatusBadGateway, "dependency_unavailable", dependency.Error())
	}

	var internal apperr.InternalError
	if errors.As(err, &internal) {
		return JSON(c, fiber.StatusInternalServerError, "internal_error", "an unexpected error occurred")
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return JSON(c, fiberErr.Code, "bad_request", fiberErr.Message)
	}

	return JSON(c, fiber.StatusInternalServerError, "internal_error", "an unexpected error occurred")
}

// JSON writes a ResponseError with the given status.
func JSON(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(ResponseError{Code: code, Message: message})
}
