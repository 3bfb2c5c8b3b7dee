package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/raugupatis/raugupatis-log/internal/models"
	"github.com/raugupatis/raugupatis-log/internal/services"
	"go.uber.org/zap"
)

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	user, err := handler.authenticateRequest(c)
	if err != nil {
		if errors.Is(err, services.ErrStorage) {
			handler.logger.Error("session lookup failed", zap.Error(err), zap.String("path", c.Path()))
			return apiError(c, fiber.StatusInternalServerError, "internal server error")
		}
		handler.clearSessionCookie(c)
		if isAPIPath(c.Path()) {
			return apiError(c, fiber.StatusUnauthorized, "unauthorized")
		}
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	c.Locals(contextUserKey, user)
	return c.Next()
}

// AdminOnly must run after AuthRequired.
func (handler *Handler) AdminOnly(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if !user.IsAdmin() {
		if isAPIPath(c.Path()) {
			return apiError(c, fiber.StatusForbidden, "admin access required")
		}
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
	return c.Next()
}

func (handler *Handler) authenticateRequest(c *fiber.Ctx) (*models.User, error) {
	token, err := handler.parseSessionToken(c.Cookies(sessionCookieName))
	if err != nil {
		return nil, services.ErrSessionNotFound
	}

	ctx := c.UserContext()
	session, err := handler.sessions.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := handler.authService.FindByID(session.Data.UserID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			_ = handler.sessions.Destroy(ctx, token)
			return nil, services.ErrUnauthorized
		}
		return nil, err
	}
	if user.IsLocked {
		_ = handler.sessions.Destroy(ctx, token)
		return nil, services.ErrUnauthorized
	}

	if session.Persistent(handler.sessions.TTL()) {
		if err := handler.setSessionCookie(c, session); err != nil {
			return nil, err
		}
	}
	return &user, nil
}

// optionalUser resolves the session for public pages without rejecting the
// request.
func (handler *Handler) optionalUser(c *fiber.Ctx) *models.User {
	if strings.TrimSpace(c.Cookies(sessionCookieName)) == "" {
		return nil
	}
	user, err := handler.authenticateRequest(c)
	if err != nil {
		return nil
	}
	return user
}

func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/")
}
