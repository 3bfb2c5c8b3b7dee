package api

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/raugupatis/raugupatis-log/internal/models"
	"github.com/raugupatis/raugupatis-log/internal/services"
	"go.uber.org/zap"
)

const photoFormField = "photo"

func photoFileURL(photo models.FermentationPhoto) string {
	return fmt.Sprintf("/api/fermentation/%d/photos/%d/file", photo.FermentationID, photo.ID)
}

func (handler *Handler) ListPhotos(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	fermentationID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusNotFound, "not found")
	}

	photos, err := handler.photos.List(user.ID, fermentationID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(newPhotoResponses(photos))
}

// UploadPhoto takes a multipart form with the image under "photo" plus
// optional "caption" and "stage" fields.
func (handler *Handler) UploadPhoto(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	fermentationID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusNotFound, "not found")
	}

	fileHeader, err := c.FormFile(photoFormField)
	if err != nil {
		return handler.respondServiceError(c, &services.ValidationError{
			Fields: map[string]string{photoFormField: "is required"},
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return handler.respondServiceError(c, fmt.Errorf("%w: open upload: %w", services.ErrStorage, err))
	}
	defer file.Close()

	upload := services.PhotoUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		Body:     file,
		Caption:  c.FormValue("caption"),
		Stage:    strings.ToLower(strings.TrimSpace(c.FormValue("stage"))),
	}
	if raw := strings.TrimSpace(c.FormValue("taken_at")); raw != "" {
		takenAt, ok := parseQueryDate(raw)
		if !ok {
			return handler.respondServiceError(c, &services.ValidationError{
				Fields: map[string]string{"taken_at": "must be a date (YYYY-MM-DD) or RFC 3339 timestamp"},
			})
		}
		upload.TakenAt = &takenAt
	}

	photo, err := handler.photos.Upload(c.UserContext(), user.ID, fermentationID, upload)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	handler.metrics.RecordPhotoUpload(fileHeader.Size)
	handler.logger.Info("photo uploaded",
		zap.Uint("fermentation_id", fermentationID),
		zap.Uint("photo_id", photo.ID),
		zap.Int64("bytes", fileHeader.Size),
	)
	return c.Status(fiber.StatusCreated).JSON(newPhotoResponse(photo))
}

func (handler *Handler) DownloadPhoto(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	fermentationID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusNotFound, "not found")
	}
	photoID, ok := parseIDParam(c, "photoID")
	if !ok {
		return apiError(c, fiber.StatusNotFound, "not found")
	}

	photo, reader, err := handler.photos.Open(c.UserContext(), user.ID, fermentationID, photoID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, services.PhotoContentType(photo.FilePath))
	c.Set(fiber.HeaderCacheControl, "private, max-age=86400")
	// fasthttp closes the reader once the body has been written.
	return c.SendStream(reader)
}

func (handler *Handler) DeletePhoto(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	fermentationID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusNotFound, "not found")
	}
	photoID, ok := parseIDParam(c, "photoID")
	if !ok {
		return apiError(c, fiber.StatusNotFound, "not found")
	}

	if err := handler.photos.Delete(c.UserContext(), user.ID, fermentationID, photoID); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
