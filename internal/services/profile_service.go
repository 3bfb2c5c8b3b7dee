package services

import (
	"errors"
	"strings"
	"time"

	"github.com/raugupatis/raugupatis-log/internal/db"
	"github.com/raugupatis/raugupatis-log/internal/models"
)

type ProfileRepository interface {
	ListActive() ([]models.FermentationProfile, error)
	ListAll() ([]models.FermentationProfile, error)
	FindByID(profileID uint) (models.FermentationProfile, error)
	NameExists(name string) (bool, error)
	Create(profile *models.FermentationProfile) error
	SetActive(profileID uint, active bool) error
}

// ProfileInput holds a new profile's fields. Temperatures are in °F.
type ProfileInput struct {
	Name        string   `json:"name" form:"name" validate:"required,max=100"`
	Type        string   `json:"type" form:"type" validate:"required,max=50"`
	MinDays     int      `json:"min_days" form:"min_days" validate:"gte=0,lte=3650"`
	MaxDays     int      `json:"max_days" form:"max_days" validate:"gte=1,lte=3650"`
	TempMin     *float64 `json:"temp_min" form:"temp_min" validate:"required,finite,gte=-58,lte=212"`
	TempMax     *float64 `json:"temp_max" form:"temp_max" validate:"required,finite,gte=-58,lte=212"`
	Description string   `json:"description" form:"description" validate:"max=2000"`
}

type CopyProfileInput struct {
	NewName string `json:"new_name" form:"new_name" validate:"required,max=100"`
}

type ProfileService struct {
	profiles ProfileRepository
}

func NewProfileService(profiles ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// ListActive returns the profiles users can start new fermentations from.
func (service *ProfileService) ListActive() ([]models.FermentationProfile, error) {
	profiles, err := service.profiles.ListActive()
	if err != nil {
		return nil, storageError(err)
	}
	return profiles, nil
}

func (service *ProfileService) ListAll() ([]models.FermentationProfile, error) {
	profiles, err := service.profiles.ListAll()
	if err != nil {
		return nil, storageError(err)
	}
	return profiles, nil
}

func (service *ProfileService) Create(input ProfileInput) (models.FermentationProfile, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Type = strings.ToLower(strings.TrimSpace(input.Type))

	verr := &ValidationError{}
	if err := Validate(input); err != nil {
		if !asValidationError(err, &verr) {
			return models.FermentationProfile{}, err
		}
	}
	if input.MaxDays < input.MinDays {
		verr.add("max_days", "must be greater than or equal to min_days")
	}
	if input.TempMin != nil && input.TempMax != nil && *input.TempMin >= *input.TempMax {
		verr.add("temp_max", "must be greater than temp_min")
	}
	if err := verr.orNil(); err != nil {
		return models.FermentationProfile{}, err
	}

	profile := models.FermentationProfile{
		Name:        input.Name,
		Type:        input.Type,
		MinDays:     input.MinDays,
		MaxDays:     input.MaxDays,
		TempMin:     *input.TempMin,
		TempMax:     *input.TempMax,
		Description: strings.TrimSpace(input.Description),
		IsActive:    true,
	}
	if err := service.insert(&profile); err != nil {
		return models.FermentationProfile{}, err
	}
	return profile, nil
}

// Copy duplicates an existing profile under a new, unique name. The copy is
// active even when the source is not.
func (service *ProfileService) Copy(sourceID uint, input CopyProfileInput) (models.FermentationProfile, error) {
	input.NewName = strings.TrimSpace(input.NewName)
	if err := Validate(input); err != nil {
		return models.FermentationProfile{}, err
	}

	source, err := service.profiles.FindByID(sourceID)
	if err != nil {
		return models.FermentationProfile{}, translateRepositoryError(err)
	}

	profile := source
	profile.ID = 0
	profile.Name = input.NewName
	profile.IsActive = true
	profile.CreatedAt = time.Time{}
	if err := service.insert(&profile); err != nil {
		return models.FermentationProfile{}, err
	}
	return profile, nil
}

func (service *ProfileService) insert(profile *models.FermentationProfile) error {
	exists, err := service.profiles.NameExists(profile.Name)
	if err != nil {
		return storageError(err)
	}
	if exists {
		return ErrDuplicateProfileName
	}
	if err := service.profiles.Create(profile); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return ErrDuplicateProfileName
		}
		return storageError(err)
	}
	return nil
}

// SetActive hides or restores a profile. Profiles are never deleted because
// existing fermentations reference them.
func (service *ProfileService) SetActive(profileID uint, active bool) (models.FermentationProfile, error) {
	if err := service.profiles.SetActive(profileID, active); err != nil {
		return models.FermentationProfile{}, translateRepositoryError(err)
	}
	profile, err := service.profiles.FindByID(profileID)
	if err != nil {
		return models.FermentationProfile{}, translateRepositoryError(err)
	}
	return profile, nil
}
