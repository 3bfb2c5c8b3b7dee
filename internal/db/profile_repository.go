package db

import (
	"github.com/raugupatis/raugupatis-log/internal/models"
	"gorm.io/gorm"
)

type ProfileRepository struct {
	database *gorm.DB
}

func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{database: database}
}

func (repo *ProfileRepository) ListActive() ([]models.FermentationProfile, error) {
	profiles := make([]models.FermentationProfile, 0)
	if err := repo.database.Where("is_active = ?", true).Order("name ASC").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (repo *ProfileRepository) ListAll() ([]models.FermentationProfile, error) {
	profiles := make([]models.FermentationProfile, 0)
	if err := repo.database.Order("name ASC").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (repo *ProfileRepository) FindByID(profileID uint) (models.FermentationProfile, error) {
	var profile models.FermentationProfile
	if err := repo.database.First(&profile, profileID).Error; err != nil {
		return models.FermentationProfile{}, translateError(err)
	}
	return profile, nil
}

func (repo *ProfileRepository) NameExists(name string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.FermentationProfile{}).
		Where("lower(name) = lower(?)", name).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *ProfileRepository) Create(profile *models.FermentationProfile) error {
	return translateError(repo.database.Create(profile).Error)
}

// SetActive toggles a profile's availability. Profiles are never deleted
// because historical fermentations keep referencing them.
func (repo *ProfileRepository) SetActive(profileID uint, active bool) error {
	result := repo.database.Model(&models.FermentationProfile{}).
		Where("id = ?", profileID).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
