package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raugupatis/raugupatis-log/internal/models"
	"go.uber.org/zap"
)

const DefaultMaxPhotoBytes int64 = 10 << 20

var photoContentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// PhotoStorage keeps photo files under opaque keys.
type PhotoStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// PhotoUpload describes one uploaded file plus its form fields.
type PhotoUpload struct {
	Filename string
	Size     int64
	Body     io.Reader
	Caption  string     `json:"caption" validate:"max=500"`
	Stage    string     `json:"stage" validate:"omitempty,oneof=start progress end"`
	TakenAt  *time.Time `json:"taken_at"`
}

type PhotoService struct {
	tenants  TenantRepositorySource
	blobs    PhotoStorage
	maxBytes int64
	logger   *zap.Logger
	now      func() time.Time
}

func NewPhotoService(tenants TenantRepositorySource, blobs PhotoStorage, maxBytes int64, logger *zap.Logger) *PhotoService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxPhotoBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PhotoService{
		tenants:  tenants,
		blobs:    blobs,
		maxBytes: maxBytes,
		logger:   logger,
		now:      time.Now,
	}
}

func (service *PhotoService) MaxBytes() int64 {
	return service.maxBytes
}

// PhotoContentType returns the MIME type for a stored photo key, derived
// from its extension.
func PhotoContentType(key string) string {
	if contentType, ok := photoContentTypes[photoExtension(key)]; ok {
		return contentType
	}
	return "application/octet-stream"
}

func photoExtension(name string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
}

func (service *PhotoService) Upload(ctx context.Context, userID uint, fermentationID uint, upload PhotoUpload) (models.FermentationPhoto, error) {
	verr := &ValidationError{}
	if err := Validate(upload); err != nil {
		if !asValidationError(err, &verr) {
			return models.FermentationPhoto{}, err
		}
	}
	extension := photoExtension(upload.Filename)
	if _, ok := photoContentTypes[extension]; !ok {
		verr.add("photo", "must be a jpg, jpeg, png, gif or webp image")
	}
	switch {
	case upload.Body == nil || upload.Size <= 0:
		verr.add("photo", "is required")
	case upload.Size > service.maxBytes:
		verr.add("photo", "must be at most "+formatByteSize(service.maxBytes))
	}
	if err := verr.orNil(); err != nil {
		return models.FermentationPhoto{}, err
	}

	tenant := service.tenants.ForUser(userID)
	if _, err := tenant.Fermentations.Get(fermentationID); err != nil {
		return models.FermentationPhoto{}, translateRepositoryError(err)
	}

	now := service.now().UTC()
	key := fmt.Sprintf("%d/%d_%s.%s", fermentationID, now.Unix(), uuid.NewString(), extension)
	body := io.LimitReader(upload.Body, service.maxBytes)
	if err := service.blobs.Put(ctx, key, body, upload.Size, photoContentTypes[extension]); err != nil {
		return models.FermentationPhoto{}, storageError(err)
	}

	stage := upload.Stage
	if stage == "" {
		stage = models.PhotoStageProgress
	}
	takenAt := now
	if upload.TakenAt != nil {
		takenAt = upload.TakenAt.UTC()
	}
	photo := models.FermentationPhoto{
		FilePath: key,
		Caption:  strings.TrimSpace(upload.Caption),
		TakenAt:  takenAt,
		Stage:    stage,
	}
	if err := tenant.Photos.Create(fermentationID, &photo); err != nil {
		if removeErr := service.blobs.Delete(ctx, key); removeErr != nil {
			service.logger.Warn("photo file left behind", zap.String("path", key), zap.Error(removeErr))
		}
		return models.FermentationPhoto{}, translateRepositoryError(err)
	}
	return photo, nil
}

func (service *PhotoService) List(userID uint, fermentationID uint) ([]models.FermentationPhoto, error) {
	photos, err := service.tenants.ForUser(userID).Photos.List(fermentationID)
	if err != nil {
		return nil, translateRepositoryError(err)
	}
	return photos, nil
}

// Open returns the photo row and a reader for its file. The caller closes
// the reader.
func (service *PhotoService) Open(ctx context.Context, userID uint, fermentationID uint, photoID uint) (models.FermentationPhoto, io.ReadCloser, error) {
	photo, err := service.tenants.ForUser(userID).Photos.Get(fermentationID, photoID)
	if err != nil {
		return models.FermentationPhoto{}, nil, translateRepositoryError(err)
	}
	reader, err := service.blobs.Open(ctx, photo.FilePath)
	if err != nil {
		return models.FermentationPhoto{}, nil, storageError(err)
	}
	return photo, reader, nil
}

func (service *PhotoService) Delete(ctx context.Context, userID uint, fermentationID uint, photoID uint) error {
	filePath, err := service.tenants.ForUser(userID).Photos.Delete(fermentationID, photoID)
	if err != nil {
		return translateRepositoryError(err)
	}
	if err := service.blobs.Delete(ctx, filePath); err != nil {
		service.logger.Warn("photo file left behind", zap.String("path", filePath), zap.Error(err))
	}
	return nil
}

func formatByteSize(size int64) string {
	if size >= 1<<20 && size%(1<<20) == 0 {
		return fmt.Sprintf("%d MB", size>>20)
	}
	return fmt.Sprintf("%d bytes", size)
}
