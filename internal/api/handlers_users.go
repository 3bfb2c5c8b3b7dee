package api

import (
	"errors"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/raugupatis/raugupatis-log/internal/services"
	"go.uber.org/zap"
)

type loginInput struct {
	Email      string `json:"email" form:"email"`
	Password   string `json:"password" form:"password"`
	RememberMe bool   `json:"remember_me" form:"remember_me"`
}

// Register creates an account. It does not open a session.
func (handler *Handler) Register(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	user, err := handler.authService.Register(input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	handler.logger.Info("user registered", zap.Uint("user_id", user.ID))
	return c.Status(fiber.StatusCreated).JSON(newUserResponse(user))
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	var input loginInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	now := handler.now()
	limiterKey := loginLimiterKey(c, services.NormalizeAuthEmail(input.Email))
	if handler.loginLimiter.blocked(limiterKey, now) {
		handler.metrics.RecordLogin("throttled")
		wait := handler.loginLimiter.retryAfter(limiterKey, now)
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		return apiError(c, fiber.StatusTooManyRequests, "too many login attempts, try again later")
	}

	user, err := handler.authService.Authenticate(input.Email, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			handler.loginLimiter.addFailure(limiterKey, now)
			if errors.Is(err, services.ErrAccountLocked) {
				handler.metrics.RecordLogin("locked")
			} else {
				handler.metrics.RecordLogin("failure")
			}
		}
		return handler.respondServiceError(c, err)
	}

	handler.destroyRequestSession(c)
	session, err := handler.sessions.Create(c.UserContext(), user, input.RememberMe)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	if err := handler.setSessionCookie(c, session); err != nil {
		return handler.respondServiceError(c, err)
	}

	handler.loginLimiter.reset(limiterKey)
	handler.metrics.RecordLogin("success")
	response := newUserResponse(user)
	return c.JSON(loginResponse{
		Success: true,
		User:    &response,
		Message: "Login successful",
	})
}

// Logout succeeds whether or not the request carried a live session.
func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.destroyRequestSession(c)
	handler.clearSessionCookie(c)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logout successful",
	})
}

func (handler *Handler) destroyRequestSession(c *fiber.Ctx) {
	token, err := handler.parseSessionToken(c.Cookies(sessionCookieName))
	if err != nil {
		return
	}
	if err := handler.sessions.Destroy(c.UserContext(), token); err != nil {
		handler.logger.Warn("destroy session", zap.Error(err))
	}
}

func (handler *Handler) GetProfile(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(newUserResponse(*user))
}

func (handler *Handler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var input services.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	updated, err := handler.authService.UpdateProfile(user.ID, input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(newUserResponse(updated))
}

func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var input services.ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	if err := handler.authService.ChangePassword(user.ID, input); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password changed",
	})
}
