package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/raugupatis/raugupatis-log/internal/models"
	"github.com/raugupatis/raugupatis-log/internal/services"
)

func (handler *Handler) ShowHome(c *fiber.Ctx) error {
	if user := handler.optionalUser(c); user != nil {
		c.Locals(contextUserKey, user)
	}
	return handler.render(c, "home", fiber.Map{
		"Title": "Raugupatis Log",
	})
}

func (handler *Handler) ShowLoginPage(c *fiber.Ctx) error {
	if handler.optionalUser(c) != nil {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
	return handler.render(c, "login", fiber.Map{
		"Title": "Sign in | Raugupatis Log",
	})
}

func (handler *Handler) ShowRegisterPage(c *fiber.Ctx) error {
	if handler.optionalUser(c) != nil {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
	return handler.render(c, "register", fiber.Map{
		"Title": "Create account | Raugupatis Log",
	})
}

func (handler *Handler) ShowDashboard(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	summary, err := handler.fermentations.Summary(user.ID)
	if err != nil {
		return handler.respondPageError(c, err)
	}
	return handler.render(c, "dashboard", fiber.Map{
		"Title":    "Dashboard | Raugupatis Log",
		"Summary":  summary,
		"Statuses": []string{models.StatusActive, models.StatusPaused, models.StatusCompleted, models.StatusFailed},
	})
}

func (handler *Handler) ShowProfilePage(c *fiber.Ctx) error {
	return handler.render(c, "profile", fiber.Map{
		"Title": "Profile | Raugupatis Log",
	})
}

func (handler *Handler) ShowFermentationsPage(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	filter, err := parseListFermentationsQuery(c)
	if err != nil {
		return handler.respondPageError(c, err)
	}
	fermentations, err := handler.fermentations.List(user.ID, filter)
	if err != nil {
		return handler.respondPageError(c, err)
	}
	profiles, err := handler.profiles.ListActive()
	if err != nil {
		return handler.respondPageError(c, err)
	}
	return handler.render(c, "fermentations", fiber.Map{
		"Title":         "Fermentations | Raugupatis Log",
		"Fermentations": fermentations,
		"Profiles":      profiles,
		"Filter":        filter,
	})
}

func (handler *Handler) ShowNewFermentationPage(c *fiber.Ctx) error {
	profiles, err := handler.profiles.ListActive()
	if err != nil {
		return handler.respondPageError(c, err)
	}
	return handler.render(c, "fermentation_new", fiber.Map{
		"Title":    "New fermentation | Raugupatis Log",
		"Profiles": profiles,
	})
}

func (handler *Handler) ShowFermentationPage(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	fermentationID, ok := parseIDParam(c, "id")
	if !ok {
		return handler.NotFound(c)
	}

	fermentation, err := handler.fermentations.Get(user.ID, fermentationID)
	if err != nil {
		return handler.respondPageError(c, err)
	}
	temperatures, err := handler.fermentations.ListTemperatures(user.ID, fermentationID)
	if err != nil {
		return handler.respondPageError(c, err)
	}
	tastings, err := handler.fermentations.ListTastings(user.ID, fermentationID)
	if err != nil {
		return handler.respondPageError(c, err)
	}
	photos, err := handler.photos.List(user.ID, fermentationID)
	if err != nil {
		return handler.respondPageError(c, err)
	}

	return handler.render(c, "fermentation_detail", fiber.Map{
		"Title":        fermentation.Name + " | Raugupatis Log",
		"Fermentation": fermentation,
		"Temperatures": temperatures,
		"Tastings":     tastings,
		"Photos":       newPhotoResponses(photos),
		"Transitions":  allowedTransitions(fermentation.Status),
		"TempUnit":     user.PreferredTempUnit,
		"TempSymbol":   services.TempUnitSymbol(user.PreferredTempUnit),
	})
}

func (handler *Handler) ShowEditFermentationPage(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	fermentationID, ok := parseIDParam(c, "id")
	if !ok {
		return handler.NotFound(c)
	}

	fermentation, err := handler.fermentations.Get(user.ID, fermentationID)
	if err != nil {
		return handler.respondPageError(c, err)
	}
	profiles, err := handler.profiles.ListActive()
	if err != nil {
		return handler.respondPageError(c, err)
	}
	return handler.render(c, "fermentation_edit", fiber.Map{
		"Title":        "Edit " + fermentation.Name + " | Raugupatis Log",
		"Fermentation": fermentation,
		"Profiles":     profiles,
	})
}

func (handler *Handler) ShowAdminUsersPage(c *fiber.Ctx) error {
	users, err := handler.authService.ListUsers()
	if err != nil {
		return handler.respondPageError(c, err)
	}
	return handler.render(c, "admin_users", fiber.Map{
		"Title": "Users | Raugupatis Log",
		"Users": users,
	})
}

func (handler *Handler) ShowAdminProfilesPage(c *fiber.Ctx) error {
	profiles, err := handler.profiles.ListAll()
	if err != nil {
		return handler.respondPageError(c, err)
	}
	return handler.render(c, "admin_profiles", fiber.Map{
		"Title":    "Fermentation profiles | Raugupatis Log",
		"Profiles": profiles,
	})
}

func allowedTransitions(current string) []string {
	transitions := make([]string, 0, 3)
	for _, next := range []string{models.StatusActive, models.StatusPaused, models.StatusCompleted, models.StatusFailed} {
		if next != current && services.CanTransition(current, next) {
			transitions = append(transitions, next)
		}
	}
	return transitions
}
