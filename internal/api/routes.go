package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	registerPageRoutes(app, handler)
	registerAPIRoutes(app, handler)
}

func registerPageRoutes(app *fiber.App, handler *Handler) {
	app.Get("/health", handler.Health)
	app.Get("/favicon.ico", sendNoContent)

	app.Get("/", handler.ShowHome)
	app.Get("/login", handler.ShowLoginPage)
	app.Get("/register", handler.ShowRegisterPage)
	app.Get("/dashboard", handler.AuthRequired, handler.ShowDashboard)
	app.Get("/profile", handler.AuthRequired, handler.ShowProfilePage)
	app.Get("/fermentations", handler.AuthRequired, handler.ShowFermentationsPage)
	app.Get("/fermentation/new", handler.AuthRequired, handler.ShowNewFermentationPage)
	app.Get("/fermentation/:id", handler.AuthRequired, handler.ShowFermentationPage)
	app.Get("/fermentation/:id/edit", handler.AuthRequired, handler.ShowEditFermentationPage)

	admin := app.Group("/admin", handler.AuthRequired, handler.AdminOnly)
	admin.Get("/users", handler.ShowAdminUsersPage)
	admin.Get("/profiles", handler.ShowAdminProfilesPage)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")

	users := api.Group("/users")
	users.Post("/register", handler.Register)
	users.Post("/login", handler.Login)
	users.Post("/logout", handler.Logout)
	users.Get("/profile", handler.AuthRequired, handler.GetProfile)
	users.Put("/profile", handler.AuthRequired, handler.UpdateProfile)
	users.Post("/profile", handler.AuthRequired, handler.UpdateProfile)
	users.Post("/change-password", handler.AuthRequired, handler.ChangePassword)

	api.Get("/fermentations", handler.AuthRequired, handler.ListFermentations)
	api.Get("/dashboard/summary", handler.AuthRequired, handler.DashboardSummary)

	fermentation := api.Group("/fermentation")
	fermentation.Get("/profiles", handler.ListProfiles)
	fermentation.Post("", handler.AuthRequired, handler.CreateFermentation)
	fermentation.Get("", handler.AuthRequired, handler.ListFermentations)
	fermentation.Get("/:id", handler.AuthRequired, handler.GetFermentation)
	fermentation.Put("/:id", handler.AuthRequired, handler.UpdateFermentation)
	fermentation.Delete("/:id", handler.AuthRequired, handler.DeleteFermentation)
	fermentation.Post("/:id/status", handler.AuthRequired, handler.UpdateFermentationStatus)
	fermentation.Get("/:id/temperature", handler.AuthRequired, handler.ListTemperatures)
	fermentation.Post("/:id/temperature", handler.AuthRequired, handler.AddTemperature)
	fermentation.Get("/:id/taste", handler.AuthRequired, handler.ListTastings)
	fermentation.Post("/:id/taste", handler.AuthRequired, handler.AddTasting)
	fermentation.Get("/:id/photos", handler.AuthRequired, handler.ListPhotos)
	fermentation.Post("/:id/photos", handler.AuthRequired, handler.UploadPhoto)
	fermentation.Get("/:id/photos/:photoID/file", handler.AuthRequired, handler.DownloadPhoto)
	fermentation.Delete("/:id/photos/:photoID", handler.AuthRequired, handler.DeletePhoto)

	admin := api.Group("/admin", handler.AuthRequired, handler.AdminOnly)
	admin.Get("/users", handler.AdminListUsers)
	admin.Post("/users", handler.AdminCreateUser)
	admin.Put("/users/:id", handler.AdminUpdateUser)
	admin.Post("/users/:id/lock", handler.AdminLockUser)
	admin.Get("/profiles", handler.AdminListProfiles)
	admin.Post("/profiles", handler.AdminCreateProfile)
	admin.Post("/profiles/:id/copy", handler.AdminCopyProfile)
	admin.Post("/profiles/:id/status", handler.AdminSetProfileStatus)
}

func sendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
