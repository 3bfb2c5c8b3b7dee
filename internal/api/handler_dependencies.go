package api

import (
	"github.com/raugupatis/raugupatis-log/internal/db"
	"github.com/raugupatis/raugupatis-log/internal/services"
)

func (handler *Handler) withDependencies(options Options) *Handler {
	handler.repositories = db.NewRepositories(handler.db)

	sessionStore := options.SessionStore
	if sessionStore == nil {
		sessionStore = handler.repositories.Sessions
	}

	handler.authService = services.NewAuthService(handler.repositories.Users)
	handler.sessions = services.NewSessionService(sessionStore, options.SessionTTL, options.RememberTTL)
	handler.profiles = services.NewProfileService(handler.repositories.Profiles)
	handler.fermentations = services.NewFermentationService(handler.repositories, handler.repositories.Profiles, options.PhotoStorage, handler.logger)
	handler.photos = services.NewPhotoService(handler.repositories, options.PhotoStorage, options.MaxUploadBytes, handler.logger)
	return handler
}
