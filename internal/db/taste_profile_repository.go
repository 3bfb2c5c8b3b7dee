package db

import (
	"github.com/raugupatis/raugupatis-log/internal/models"
	"gorm.io/gorm"
)

type TasteProfileRepository struct {
	scope tenantScope
}

func (repo *TasteProfileRepository) Create(fermentationID uint, entry *models.TasteProfile) error {
	return repo.scope.database.Transaction(func(tx *gorm.DB) error {
		if err := repo.scope.requireFermentation(tx, fermentationID); err != nil {
			return err
		}
		entry.FermentationID = fermentationID
		return translateError(tx.Create(entry).Error)
	})
}

func (repo *TasteProfileRepository) List(fermentationID uint) ([]models.TasteProfile, error) {
	if err := repo.scope.requireFermentation(repo.scope.database, fermentationID); err != nil {
		return nil, err
	}

	entries := make([]models.TasteProfile, 0)
	if err := repo.scope.children(repo.scope.database, &models.TasteProfile{}, fermentationID).
		Order("tasted_at DESC, id DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
