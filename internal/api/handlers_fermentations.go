package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/raugupatis/raugupatis-log/internal/services"
	"go.uber.org/zap"
)

// ListProfiles is public so the new-fermentation form can load without a
// round trip through the session.
func (handler *Handler) ListProfiles(c *fiber.Ctx) error {
	profiles, err := handler.profiles.ListActive()
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(newProfileResponses(profiles))
}

func (handler *Handler) CreateFermentation(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var input services.CreateFermentationInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	fermentation, err := handler.fermentations.Create(user.ID, input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	handler.metrics.RecordFermentationEvent("created")
	handler.logger.Info("fermentation created",
		zap.Uint("user_id", user.ID),
		zap.Uint("fermentation_id", fermentation.ID),
	)
	return c.Status(fiber.StatusCreated).JSON(newFermentationResponse(fermentation))
}

func (handler *Handler) ListFermentations(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	input, err := parseListFermentationsQuery(c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	fermentations, err := handler.fermentations.List(user.ID, input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(newFermentationResponses(fermentations))
}

func parseListFermentationsQuery(c *fiber.Ctx) (services.ListFermentationsInput, error) {
	var input services.ListFermentationsInput
	if err := c.QueryParser(&input); err != nil {
		return input, &services.ValidationError{Fields: map[string]string{"query": "is invalid"}}
	}

	for field, target := range map[string]**time.Time{
		"started_after":  &input.StartedAfter,
		"started_before": &input.StartedBefore,
	} {
		raw := strings.TrimSpace(c.Query(field))
		if raw == "" {
			continue
		}
		value, ok := parseQueryDate(raw)
		if !ok {
			return input, &services.ValidationError{Fields: map[string]string{field: "must be a date (YYYY-MM-DD) or RFC 3339 timestamp"}}
		}
		*target = &value
	}
	return input, nil
}

func parseQueryDate(raw string) (time.Time, bool) {
	if value, err := time.Parse(time.RFC3339, raw); err == nil {
		return value.UTC(), true
	}
	if value, err := time.Parse(time.DateOnly, raw); err == nil {
		return value.UTC(), true
	}
	return time.Time{}, false
}

func (handler *Handler) GetFermentation(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	fermentationID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusNotFound, "not found")
	}

	fermentation, err := handler.fermentations.Get(user.ID, fermentationID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(newFermentationResponse(fermentation))
}

func (handler *Handler) UpdateFermentation(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	fermentationID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusNotFound, "not found")
	}

	var input services.UpdateFermentationInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	fermentation, err := handler.fermentations.Update(user.ID, fermentationID, input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(newFermentationResponse(fermentation))
}

func (handler *Handler) UpdateFermentationStatus(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	fermentationID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusNotFound, "not found")
	}

	var input services.StatusChangeInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	fermentation, err := handler.fermentations.UpdateStatus(user.ID, fermentationID, input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	handler.metrics.RecordFermentationEvent("status_" + fermentation.Status)
	return c.JSON(newFermentationResponse(fermentation))
}

func (handler *Handler) DeleteFermentation(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	fermentationID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusNotFound, "not found")
	}

	if err := handler.fermentations.Delete(c.UserContext(), user.ID, fermentationID); err != nil {
		return handler.respondServiceError(c, err)
	}
	handler.metrics.RecordFermentationEvent("deleted")
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) DashboardSummary(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	summary, err := handler.fermentations.Summary(user.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(newSummaryResponse(summary))
}

func (handler *Handler) ListTemperatures(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	fermentationID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusNotFound, "not found")
	}

	logs, err := handler.fermentations.ListTemperatures(user.ID, fermentationID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(newTemperatureResponses(logs, user.PreferredTempUnit))
}

// AddTemperature accepts the reading in the user's preferred unit.
func (handler *Handler) AddTemperature(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	fermentationID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusNotFound, "not found")
	}

	var input services.TemperatureInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	log, err := handler.fermentations.AddTemperature(user.ID, fermentationID, user.PreferredTempUnit, input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newTemperatureResponse(log, user.PreferredTempUnit))
}

func (handler *Handler) ListTastings(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	fermentationID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusNotFound, "not found")
	}

	tastings, err := handler.fermentations.ListTastings(user.ID, fermentationID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(newTastingResponses(tastings))
}

func (handler *Handler) AddTasting(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	fermentationID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusNotFound, "not found")
	}

	var input services.TastingInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	tasting, err := handler.fermentations.AddTasting(user.ID, fermentationID, input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newTastingResponse(tasting))
}
