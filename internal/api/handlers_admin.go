package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/raugupatis/raugupatis-log/internal/services"
	"go.uber.org/zap"
)

type lockUserInput struct {
	Locked *bool `json:"locked" form:"locked"`
}

type profileStatusInput struct {
	IsActive *bool `json:"is_active" form:"is_active"`
}

func (handler *Handler) AdminListUsers(c *fiber.Ctx) error {
	users, err := handler.authService.ListUsers()
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(newAdminUserResponses(users))
}

func (handler *Handler) AdminCreateUser(c *fiber.Ctx) error {
	var input services.AdminCreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	user, err := handler.authService.CreateUser(input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	handler.logger.Info("user created by admin", zap.Uint("user_id", user.ID), zap.String("role", user.Role))
	return c.Status(fiber.StatusCreated).JSON(newAdminUserResponse(user))
}

func (handler *Handler) AdminUpdateUser(c *fiber.Ctx) error {
	actor, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusNotFound, "not found")
	}

	var input services.AdminUpdateUserInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	user, err := handler.authService.UpdateUser(actor.ID, userID, input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(newAdminUserResponse(user))
}

func (handler *Handler) AdminLockUser(c *fiber.Ctx) error {
	actor, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusNotFound, "not found")
	}

	var input lockUserInput
	if err := c.BodyParser(&input); err != nil || input.Locked == nil {
		return handler.respondServiceError(c, &services.ValidationError{
			Fields: map[string]string{"locked": "is required"},
		})
	}

	if err := handler.authService.SetLocked(actor.ID, userID, *input.Locked); err != nil {
		return handler.respondServiceError(c, err)
	}
	user, err := handler.authService.FindByID(userID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	handler.logger.Info("user lock changed",
		zap.Uint("actor_id", actor.ID),
		zap.Uint("user_id", userID),
		zap.Bool("locked", user.IsLocked),
	)
	return c.JSON(newAdminUserResponse(user))
}

func (handler *Handler) AdminListProfiles(c *fiber.Ctx) error {
	profiles, err := handler.profiles.ListAll()
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(newProfileResponses(profiles))
}

func (handler *Handler) AdminCreateProfile(c *fiber.Ctx) error {
	var input services.ProfileInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	profile, err := handler.profiles.Create(input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newProfileResponse(profile))
}

func (handler *Handler) AdminCopyProfile(c *fiber.Ctx) error {
	profileID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusNotFound, "not found")
	}

	var input services.CopyProfileInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	profile, err := handler.profiles.Copy(profileID, input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newProfileResponse(profile))
}

func (handler *Handler) AdminSetProfileStatus(c *fiber.Ctx) error {
	profileID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusNotFound, "not found")
	}

	var input profileStatusInput
	if err := c.BodyParser(&input); err != nil || input.IsActive == nil {
		return handler.respondServiceError(c, &services.ValidationError{
			Fields: map[string]string{"is_active": "is required"},
		})
	}

	profile, err := handler.profiles.SetActive(profileID, *input.IsActive)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(newProfileResponse(profile))
}
