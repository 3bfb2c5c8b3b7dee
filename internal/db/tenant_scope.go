package db

import (
	"github.com/raugupatis/raugupatis-log/internal/models"
	"gorm.io/gorm"
)

type tenantScope struct {
	database *gorm.DB
	userID   uint
}

func (scope tenantScope) fermentations(tx *gorm.DB) *gorm.DB {
	return tx.Model(&models.Fermentation{}).Where("fermentations.user_id = ?", scope.userID)
}

// ownedFermentationIDs is a subquery selecting the ids of the user's fermentations.
func (scope tenantScope) ownedFermentationIDs(tx *gorm.DB) *gorm.DB {
	return tx.Session(&gorm.Session{NewDB: true}).
		Model(&models.Fermentation{}).
		Select("id").
		Where("user_id = ?", scope.userID)
}

// children narrows a child table to rows of one owned fermentation.
func (scope tenantScope) children(tx *gorm.DB, model any, fermentationID uint) *gorm.DB {
	return tx.Model(model).
		Where("fermentation_id = ?", fermentationID).
		Where("fermentation_id IN (?)", scope.ownedFermentationIDs(tx))
}

func (scope tenantScope) requireFermentation(tx *gorm.DB, fermentationID uint) error {
	var count int64
	if err := scope.fermentations(tx).Where("fermentations.id = ?", fermentationID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
