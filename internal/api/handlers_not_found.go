package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/raugupatis/raugupatis-log/internal/services"
)

func (handler *Handler) NotFound(c *fiber.Ctx) error {
	if isAPIPath(c.Path()) || acceptsJSON(c) {
		return apiError(c, fiber.StatusNotFound, "not found")
	}

	if _, ok := currentUser(c); !ok {
		if user := handler.optionalUser(c); user != nil {
			c.Locals(contextUserKey, user)
		}
	}

	c.Status(fiber.StatusNotFound)
	return handler.render(c, "not_found", fiber.Map{
		"Title": "Page not found | Raugupatis Log",
	})
}

// respondPageError maps service errors on HTML pages. Unknown or foreign
// records render the not-found page, everything else goes through the
// JSON error mapping.
func (handler *Handler) respondPageError(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrNotFound) {
		return handler.NotFound(c)
	}
	return handler.respondServiceError(c, err)
}
