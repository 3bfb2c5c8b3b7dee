package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/raugupatis/raugupatis-log/internal/db"
	"go.uber.org/zap"
)

func (handler *Handler) Health(c *fiber.Ctx) error {
	if err := db.Ping(handler.db); err != nil {
		handler.logger.Warn("health check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).SendString("database unavailable")
	}
	return c.SendString("OK")
}
