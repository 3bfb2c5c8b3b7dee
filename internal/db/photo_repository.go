package db

import (
	"github.com/raugupatis/raugupatis-log/internal/models"
	"gorm.io/gorm"
)

type PhotoRepository struct {
	scope tenantScope
}

func (repo *PhotoRepository) Create(fermentationID uint, photo *models.FermentationPhoto) error {
	return repo.scope.database.Transaction(func(tx *gorm.DB) error {
		if err := repo.scope.requireFermentation(tx, fermentationID); err != nil {
			return err
		}
		photo.FermentationID = fermentationID
		return translateError(tx.Create(photo).Error)
	})
}

// List returns the photos of an owned fermentation in the order they were taken.
func (repo *PhotoRepository) List(fermentationID uint) ([]models.FermentationPhoto, error) {
	if err := repo.scope.requireFermentation(repo.scope.database, fermentationID); err != nil {
		return nil, err
	}

	photos := make([]models.FermentationPhoto, 0)
	if err := repo.scope.children(repo.scope.database, &models.FermentationPhoto{}, fermentationID).
		Order("taken_at ASC, id ASC").
		Find(&photos).Error; err != nil {
		return nil, err
	}
	return photos, nil
}

func (repo *PhotoRepository) Get(fermentationID uint, photoID uint) (models.FermentationPhoto, error) {
	var photo models.FermentationPhoto
	err := repo.scope.children(repo.scope.database, &models.FermentationPhoto{}, fermentationID).
		Where("id = ?", photoID).
		First(&photo).Error
	if err != nil {
		return models.FermentationPhoto{}, translateError(err)
	}
	return photo, nil
}

// Delete removes one photo row and returns its stored path.
func (repo *PhotoRepository) Delete(fermentationID uint, photoID uint) (string, error) {
	var filePath string
	err := repo.scope.database.Transaction(func(tx *gorm.DB) error {
		var photo models.FermentationPhoto
		if err := repo.scope.children(tx, &models.FermentationPhoto{}, fermentationID).
			Where("id = ?", photoID).
			First(&photo).Error; err != nil {
			return translateError(err)
		}
		filePath = photo.FilePath
		return tx.Delete(&models.FermentationPhoto{}, photo.ID).Error
	})
	if err != nil {
		return "", err
	}
	return filePath, nil
}
