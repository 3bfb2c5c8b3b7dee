package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/raugupatis/raugupatis-log/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// likeEscaper makes search text match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// FermentationFilter narrows List. Zero values leave a dimension unfiltered.
type FermentationFilter struct {
	Status        string
	ProfileID     uint
	ProfileType   string
	Search        string
	StartedAfter  *time.Time
	StartedBefore *time.Time
	SortBy        string
	SortOrder     string
}

var fermentationSortColumns = map[string]string{
	"created_at": "fermentations.created_at",
	"name":       "fermentations.name",
	"start_date": "fermentations.start_date",
	"status":     "fermentations.status",
}

type FermentationRepository struct {
	scope tenantScope
}

func (repo *FermentationRepository) List(filter FermentationFilter) ([]models.Fermentation, error) {
	query := repo.scope.fermentations(repo.scope.database).Preload("Profile")

	if filter.Status != "" {
		query = query.Where("fermentations.status = ?", filter.Status)
	}
	if filter.ProfileID != 0 {
		query = query.Where("fermentations.profile_id = ?", filter.ProfileID)
	}
	if filter.ProfileType != "" {
		query = query.
			Joins("JOIN fermentation_profiles ON fermentation_profiles.id = fermentations.profile_id").
			Where("fermentation_profiles.type = ?", filter.ProfileType)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		query = query.Where(
			`(lower(fermentations.name) LIKE ? ESCAPE '\' OR lower(fermentations.notes) LIKE ? ESCAPE '\' OR lower(coalesce(fermentations.ingredients_json, '')) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern,
		)
	}
	if filter.StartedAfter != nil {
		query = query.Where("fermentations.start_date >= ?", filter.StartedAfter.UTC())
	}
	if filter.StartedBefore != nil {
		query = query.Where("fermentations.start_date < ?", filter.StartedBefore.UTC())
	}

	column, ok := fermentationSortColumns[filter.SortBy]
	if !ok {
		column = fermentationSortColumns["created_at"]
	}
	direction := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		direction = "ASC"
	}
	query = query.Order(fmt.Sprintf("%s %s, fermentations.id %s", column, direction, direction))

	fermentations := make([]models.Fermentation, 0)
	if err := query.Find(&fermentations).Error; err != nil {
		return nil, err
	}
	return fermentations, nil
}

func (repo *FermentationRepository) Get(fermentationID uint) (models.Fermentation, error) {
	var fermentation models.Fermentation
	err := repo.scope.fermentations(repo.scope.database).
		Preload("Profile").
		Where("fermentations.id = ?", fermentationID).
		First(&fermentation).Error
	if err != nil {
		return models.Fermentation{}, translateError(err)
	}
	return fermentation, nil
}

// Create stores a new fermentation owned by the scoped user. The profile
// must exist and be active.
func (repo *FermentationRepository) Create(fermentation *models.Fermentation) error {
	fermentation.UserID = repo.scope.userID
	return repo.scope.database.Transaction(func(tx *gorm.DB) error {
		if err := requireActiveProfile(tx, fermentation.ProfileID); err != nil {
			return err
		}
		return translateError(tx.Omit(clause.Associations).Create(fermentation).Error)
	})
}

// Update applies column updates to an owned fermentation. A changed
// profile_id must reference an existing profile.
func (repo *FermentationRepository) Update(fermentationID uint, updates map[string]any) error {
	if len(updates) == 0 {
		return repo.scope.requireFermentation(repo.scope.database, fermentationID)
	}

	return repo.scope.database.Transaction(func(tx *gorm.DB) error {
		if rawProfileID, ok := updates["profile_id"]; ok {
			profileID, _ := rawProfileID.(uint)
			if err := requireProfile(tx, profileID); err != nil {
				return err
			}
		}

		result := repo.scope.fermentations(tx).
			Where("fermentations.id = ?", fermentationID).
			Updates(updates)
		if result.Error != nil {
			return translateError(result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Delete removes an owned fermentation together with its temperature logs,
// photos and taste profiles, and returns the stored photo paths so the
// caller can remove the files.
func (repo *FermentationRepository) Delete(fermentationID uint) ([]string, error) {
	photoPaths := make([]string, 0)
	err := repo.scope.database.Transaction(func(tx *gorm.DB) error {
		if err := repo.scope.requireFermentation(tx, fermentationID); err != nil {
			return err
		}

		if err := tx.Model(&models.FermentationPhoto{}).
			Where("fermentation_id = ?", fermentationID).
			Pluck("file_path", &photoPaths).Error; err != nil {
			return err
		}

		if err := tx.Where("fermentation_id = ?", fermentationID).Delete(&models.TemperatureLog{}).Error; err != nil {
			return err
		}
		if err := tx.Where("fermentation_id = ?", fermentationID).Delete(&models.FermentationPhoto{}).Error; err != nil {
			return err
		}
		if err := tx.Where("fermentation_id = ?", fermentationID).Delete(&models.TasteProfile{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND user_id = ?", fermentationID, repo.scope.userID).Delete(&models.Fermentation{}).Error
	})
	if err != nil {
		return nil, err
	}
	return photoPaths, nil
}

// CountByStatus returns the number of owned fermentations per status.
func (repo *FermentationRepository) CountByStatus() (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := repo.scope.fermentations(repo.scope.database).
		Select("fermentations.status AS status, COUNT(*) AS count").
		Group("fermentations.status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func requireProfile(tx *gorm.DB, profileID uint) error {
	var count int64
	if err := tx.Model(&models.FermentationProfile{}).Where("id = ?", profileID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrInvalidReference
	}
	return nil
}

func requireActiveProfile(tx *gorm.DB, profileID uint) error {
	var count int64
	if err := tx.Model(&models.FermentationProfile{}).
		Where("id = ? AND is_active = ?", profileID, true).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrInvalidReference
	}
	return nil
}
