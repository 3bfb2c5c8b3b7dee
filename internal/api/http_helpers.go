package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/raugupatis/raugupatis-log/internal/services"
	"github.com/raugupatis/raugupatis-log/internal/storage"
	"go.uber.org/zap"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func acceptsJSON(c *fiber.Ctx) bool {
	return strings.Contains(strings.ToLower(c.Get("Accept")), "application/json")
}

// respondServiceError is the single place where service errors become HTTP
// responses. Storage failures are logged and never described to the client.
func (handler *Handler) respondServiceError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "validation failed",
			"fields": validationErr.Fields,
		})
	case errors.Is(err, services.ErrDuplicateEmail), errors.Is(err, services.ErrDuplicateProfileName):
		return apiError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrAccountLocked):
		return apiError(c, fiber.StatusUnauthorized, "account is locked, contact an administrator")
	case errors.Is(err, services.ErrInvalidCredentials):
		return apiError(c, fiber.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, services.ErrSessionNotFound), errors.Is(err, services.ErrSessionExpired), errors.Is(err, services.ErrUnauthorized):
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	case errors.Is(err, services.ErrNotFound), errors.Is(err, storage.ErrObjectNotFound):
		return apiError(c, fiber.StatusNotFound, "not found")
	case errors.Is(err, services.ErrInvalidStatusTransition):
		return apiError(c, fiber.StatusBadRequest, err.Error())
	default:
		handler.logger.Error("request failed",
			zap.Error(err),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("request_id", requestID(c)),
		)
		return apiError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

// parseIDParam reads a positive integer route parameter. Malformed ids are
// reported as not found, same as ids that belong to someone else.
func parseIDParam(c *fiber.Ctx, name string) (uint, bool) {
	value, err := strconv.ParseUint(strings.TrimSpace(c.Params(name)), 10, 64)
	if err != nil || value == 0 {
		return 0, false
	}
	return uint(value), true
}

// CSRFContextKey is where the csrf middleware leaves the request's token.
const CSRFContextKey = "csrf"

func csrfToken(c *fiber.Ctx) string {
	token, _ := c.Locals(CSRFContextKey).(string)
	return token
}

func requestID(c *fiber.Ctx) string {
	if value, ok := c.Locals("requestid").(string); ok {
		return value
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
