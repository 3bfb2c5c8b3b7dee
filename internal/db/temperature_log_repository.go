package db

import (
	"github.com/raugupatis/raugupatis-log/internal/models"
	"gorm.io/gorm"
)

type TemperatureLogRepository struct {
	scope tenantScope
}

func (repo *TemperatureLogRepository) Create(fermentationID uint, entry *models.TemperatureLog) error {
	return repo.scope.database.Transaction(func(tx *gorm.DB) error {
		if err := repo.scope.requireFermentation(tx, fermentationID); err != nil {
			return err
		}
		entry.FermentationID = fermentationID
		return translateError(tx.Create(entry).Error)
	})
}

// List returns the readings of an owned fermentation, newest first.
func (repo *TemperatureLogRepository) List(fermentationID uint) ([]models.TemperatureLog, error) {
	if err := repo.scope.requireFermentation(repo.scope.database, fermentationID); err != nil {
		return nil, err
	}

	entries := make([]models.TemperatureLog, 0)
	if err := repo.scope.children(repo.scope.database, &models.TemperatureLog{}, fermentationID).
		Order("recorded_at DESC, id DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
