package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/raugupatis/raugupatis-log/internal/db"
	"github.com/raugupatis/raugupatis-log/internal/models"
	"go.uber.org/zap"
)

// TenantRepositorySource hands out repositories bound to one user.
type TenantRepositorySource interface {
	ForUser(userID uint) *db.TenantRepositories
}

type ProfileReader interface {
	FindByID(profileID uint) (models.FermentationProfile, error)
}

type CreateFermentationInput struct {
	ProfileID     uint       `json:"profile_id" form:"profile_id" validate:"required"`
	Name          string     `json:"name" form:"name" validate:"required,max=200"`
	StartDate     *time.Time `json:"start_date" form:"start_date"`
	TargetEndDate *time.Time `json:"target_end_date" form:"target_end_date"`
	Notes         string     `json:"notes" form:"notes" validate:"max=10000"`
	Ingredients   []string   `json:"ingredients" form:"ingredients" validate:"max=100,dive,max=200"`
}

// UpdateFermentationInput is a partial update; nil fields are left alone.
type UpdateFermentationInput struct {
	ProfileID      *uint      `json:"profile_id" form:"profile_id" validate:"omitempty,min=1"`
	Name           *string    `json:"name" form:"name" validate:"omitempty,max=200"`
	StartDate      *time.Time `json:"start_date" form:"start_date"`
	TargetEndDate  *time.Time `json:"target_end_date" form:"target_end_date"`
	ActualEndDate  *time.Time `json:"actual_end_date" form:"actual_end_date"`
	Status         *string    `json:"status" form:"status" validate:"omitempty,oneof=active paused completed failed"`
	SuccessRating  *int       `json:"success_rating" form:"success_rating" validate:"omitempty,min=1,max=5"`
	Notes          *string    `json:"notes" form:"notes" validate:"omitempty,max=10000"`
	LessonsLearned *string    `json:"lessons_learned" form:"lessons_learned" validate:"omitempty,max=10000"`
	Ingredients    *[]string  `json:"ingredients" form:"ingredients" validate:"omitempty,max=100,dive,max=200"`
}

type StatusChangeInput struct {
	Status         string  `json:"status" form:"status" validate:"required,oneof=active paused completed failed"`
	SuccessRating  *int    `json:"success_rating" form:"success_rating" validate:"omitempty,min=1,max=5"`
	LessonsLearned *string `json:"lessons_learned" form:"lessons_learned" validate:"omitempty,max=10000"`
}

type ListFermentationsInput struct {
	Status        string     `query:"status" json:"status" validate:"omitempty,oneof=active paused completed failed"`
	ProfileID     uint       `query:"profile_id" json:"profile_id"`
	ProfileType   string     `query:"type" json:"type" validate:"max=50"`
	Search        string     `query:"q" json:"q" validate:"max=200"`
	StartedAfter  *time.Time `query:"-" json:"started_after"`
	StartedBefore *time.Time `query:"-" json:"started_before"`
	Sort          string     `query:"sort" json:"sort" validate:"omitempty,oneof=created_at name start_date status"`
	Order         string     `query:"order" json:"order" validate:"omitempty,oneof=asc desc"`
}

type TemperatureInput struct {
	Temperature *float64   `json:"temperature" form:"temperature" validate:"required,finite"`
	RecordedAt  *time.Time `json:"recorded_at" form:"recorded_at"`
	Notes       string     `json:"notes" form:"notes" validate:"max=1000"`
}

type TastingInput struct {
	Profile  string     `json:"profile" form:"profile" validate:"required,max=2000"`
	TastedAt *time.Time `json:"tasted_at" form:"tasted_at"`
}

// DashboardSummary is the per-user overview shown after login.
type DashboardSummary struct {
	Total  int64
	Counts map[string]int64
	Recent []models.Fermentation
}

const dashboardRecentLimit = 5

var allowedStatusTransitions = map[string][]string{
	models.StatusActive: {models.StatusPaused, models.StatusCompleted, models.StatusFailed},
	models.StatusPaused: {models.StatusActive, models.StatusCompleted, models.StatusFailed},
}

// CanTransition reports whether a fermentation may move from one status to
// another. Completed and failed are terminal; staying put is always allowed.
func CanTransition(from string, to string) bool {
	if from == to {
		return true
	}
	for _, next := range allowedStatusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type FermentationService struct {
	tenants  TenantRepositorySource
	profiles ProfileReader
	blobs    PhotoStorage
	logger   *zap.Logger
	now      func() time.Time
}

func NewFermentationService(tenants TenantRepositorySource, profiles ProfileReader, blobs PhotoStorage, logger *zap.Logger) *FermentationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FermentationService{
		tenants:  tenants,
		profiles: profiles,
		blobs:    blobs,
		logger:   logger,
		now:      time.Now,
	}
}

func (service *FermentationService) Create(userID uint, input CreateFermentationInput) (models.Fermentation, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := Validate(input); err != nil {
		return models.Fermentation{}, err
	}

	profile, err := service.profiles.FindByID(input.ProfileID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return models.Fermentation{}, newValidationError("profile_id", "must reference an available fermentation profile")
		}
		return models.Fermentation{}, storageError(err)
	}
	if !profile.IsActive {
		return models.Fermentation{}, newValidationError("profile_id", "must reference an available fermentation profile")
	}

	startDate := service.now().UTC()
	if input.StartDate != nil {
		startDate = input.StartDate.UTC()
	}
	targetEndDate := startDate.AddDate(0, 0, profile.MaxDays)
	if input.TargetEndDate != nil {
		targetEndDate = input.TargetEndDate.UTC()
	}
	if targetEndDate.Before(startDate) {
		return models.Fermentation{}, newValidationError("target_end_date", "must not be before the start date")
	}

	fermentation := models.Fermentation{
		ProfileID:     profile.ID,
		Name:          input.Name,
		StartDate:     startDate,
		TargetEndDate: &targetEndDate,
		Status:        models.StatusActive,
		Notes:         strings.TrimSpace(input.Notes),
		Ingredients:   normalizeIngredients(input.Ingredients),
	}

	tenant := service.tenants.ForUser(userID)
	if err := tenant.Fermentations.Create(&fermentation); err != nil {
		return models.Fermentation{}, translateRepositoryError(err)
	}
	return service.Get(userID, fermentation.ID)
}

func (service *FermentationService) List(userID uint, input ListFermentationsInput) ([]models.Fermentation, error) {
	if err := Validate(input); err != nil {
		return nil, err
	}

	fermentations, err := service.tenants.ForUser(userID).Fermentations.List(db.FermentationFilter{
		Status:        input.Status,
		ProfileID:     input.ProfileID,
		ProfileType:   strings.TrimSpace(input.ProfileType),
		Search:        input.Search,
		StartedAfter:  input.StartedAfter,
		StartedBefore: input.StartedBefore,
		SortBy:        input.Sort,
		SortOrder:     input.Order,
	})
	if err != nil {
		return nil, storageError(err)
	}
	return fermentations, nil
}

func (service *FermentationService) Get(userID uint, fermentationID uint) (models.Fermentation, error) {
	fermentation, err := service.tenants.ForUser(userID).Fermentations.Get(fermentationID)
	if err != nil {
		return models.Fermentation{}, translateRepositoryError(err)
	}
	return fermentation, nil
}

func (service *FermentationService) Update(userID uint, fermentationID uint, input UpdateFermentationInput) (models.Fermentation, error) {
	if err := Validate(input); err != nil {
		return models.Fermentation{}, err
	}

	current, err := service.Get(userID, fermentationID)
	if err != nil {
		return models.Fermentation{}, err
	}

	updates := make(map[string]any)
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return models.Fermentation{}, newValidationError("name", "is required")
		}
		updates["name"] = name
	}
	if input.ProfileID != nil {
		updates["profile_id"] = *input.ProfileID
	}

	startDate := current.StartDate
	if input.StartDate != nil {
		startDate = input.StartDate.UTC()
		updates["start_date"] = startDate

		// Stored end dates stay valid only if this request does not replace them.
		if input.TargetEndDate == nil && current.TargetEndDate != nil && current.TargetEndDate.Before(startDate) {
			return models.Fermentation{}, newValidationError("start_date", "must not be after the target end date")
		}
		if input.ActualEndDate == nil && current.ActualEndDate != nil && current.ActualEndDate.Before(startDate) {
			return models.Fermentation{}, newValidationError("start_date", "must not be after the end date")
		}
	}
	if input.TargetEndDate != nil {
		target := input.TargetEndDate.UTC()
		if target.Before(startDate) {
			return models.Fermentation{}, newValidationError("target_end_date", "must not be before the start date")
		}
		updates["target_end_date"] = target
	}
	if input.ActualEndDate != nil {
		actual := input.ActualEndDate.UTC()
		if actual.Before(startDate) {
			return models.Fermentation{}, newValidationError("actual_end_date", "must not be before the start date")
		}
		updates["actual_end_date"] = actual
	}
	if input.Status != nil {
		if err := service.applyStatus(current, *input.Status, updates); err != nil {
			return models.Fermentation{}, err
		}
	}
	if input.SuccessRating != nil {
		updates["success_rating"] = *input.SuccessRating
	}
	if input.Notes != nil {
		updates["notes"] = strings.TrimSpace(*input.Notes)
	}
	if input.LessonsLearned != nil {
		updates["lessons_learned"] = nullableText(input.LessonsLearned)
	}
	if input.Ingredients != nil {
		encoded, err := json.Marshal(normalizeIngredients(*input.Ingredients))
		if err != nil {
			return models.Fermentation{}, err
		}
		updates["ingredients_json"] = string(encoded)
	}

	if err := service.tenants.ForUser(userID).Fermentations.Update(fermentationID, updates); err != nil {
		return models.Fermentation{}, translateRepositoryError(err)
	}
	return service.Get(userID, fermentationID)
}

// UpdateStatus moves a fermentation along its lifecycle. Finishing a batch
// stamps actual_end_date.
func (service *FermentationService) UpdateStatus(userID uint, fermentationID uint, input StatusChangeInput) (models.Fermentation, error) {
	return service.Update(userID, fermentationID, UpdateFermentationInput{
		Status:         &input.Status,
		SuccessRating:  input.SuccessRating,
		LessonsLearned: input.LessonsLearned,
	})
}

func (service *FermentationService) applyStatus(current models.Fermentation, next string, updates map[string]any) error {
	if !CanTransition(current.Status, next) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, current.Status, next)
	}
	if next == current.Status {
		return nil
	}

	updates["status"] = next
	finished := next == models.StatusCompleted || next == models.StatusFailed
	if _, explicit := updates["actual_end_date"]; finished && !explicit {
		updates["actual_end_date"] = service.now().UTC()
	}
	return nil
}

// Delete removes a fermentation with all of its logs, photos and tastings.
// Photo files are removed after the rows are gone; a file that cannot be
// removed is logged and left behind.
func (service *FermentationService) Delete(ctx context.Context, userID uint, fermentationID uint) error {
	photoPaths, err := service.tenants.ForUser(userID).Fermentations.Delete(fermentationID)
	if err != nil {
		return translateRepositoryError(err)
	}
	if service.blobs == nil {
		return nil
	}
	for _, photoPath := range photoPaths {
		if err := service.blobs.Delete(ctx, photoPath); err != nil {
			service.logger.Warn("photo file left behind",
				zap.Uint("fermentation_id", fermentationID),
				zap.String("path", photoPath),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (service *FermentationService) Summary(userID uint) (DashboardSummary, error) {
	tenant := service.tenants.ForUser(userID)
	counts, err := tenant.Fermentations.CountByStatus()
	if err != nil {
		return DashboardSummary{}, storageError(err)
	}

	recent, err := tenant.Fermentations.List(db.FermentationFilter{SortBy: "created_at", SortOrder: "desc"})
	if err != nil {
		return DashboardSummary{}, storageError(err)
	}
	if len(recent) > dashboardRecentLimit {
		recent = recent[:dashboardRecentLimit]
	}

	summary := DashboardSummary{Counts: counts, Recent: recent}
	for _, count := range counts {
		summary.Total += count
	}
	return summary, nil
}

// AddTemperature records a reading entered in unit and stores it in °F.
func (service *FermentationService) AddTemperature(userID uint, fermentationID uint, unit string, input TemperatureInput) (models.TemperatureLog, error) {
	if err := Validate(input); err != nil {
		return models.TemperatureLog{}, err
	}

	fahrenheit := ToStorageUnit(*input.Temperature, unit)
	if fahrenheit < minLoggedFahrenheit || fahrenheit > maxLoggedFahrenheit {
		symbol := TempUnitSymbol(unit)
		return models.TemperatureLog{}, newValidationError("temperature", fmt.Sprintf(
			"must be between %g%s and %g%s",
			ToDisplayUnit(minLoggedFahrenheit, unit), symbol,
			ToDisplayUnit(maxLoggedFahrenheit, unit), symbol,
		))
	}

	recordedAt := service.now().UTC()
	if input.RecordedAt != nil {
		recordedAt = input.RecordedAt.UTC()
	}
	entry := models.TemperatureLog{
		RecordedAt:  recordedAt,
		Temperature: fahrenheit,
		Notes:       strings.TrimSpace(input.Notes),
	}
	if err := service.tenants.ForUser(userID).TemperatureLogs.Create(fermentationID, &entry); err != nil {
		return models.TemperatureLog{}, translateRepositoryError(err)
	}
	return entry, nil
}

func (service *FermentationService) ListTemperatures(userID uint, fermentationID uint) ([]models.TemperatureLog, error) {
	entries, err := service.tenants.ForUser(userID).TemperatureLogs.List(fermentationID)
	if err != nil {
		return nil, translateRepositoryError(err)
	}
	return entries, nil
}

func (service *FermentationService) AddTasting(userID uint, fermentationID uint, input TastingInput) (models.TasteProfile, error) {
	input.Profile = strings.TrimSpace(input.Profile)
	if err := Validate(input); err != nil {
		return models.TasteProfile{}, err
	}

	tastedAt := service.now().UTC()
	if input.TastedAt != nil {
		tastedAt = input.TastedAt.UTC()
	}
	entry := models.TasteProfile{Profile: input.Profile, TastedAt: tastedAt}
	if err := service.tenants.ForUser(userID).TasteProfiles.Create(fermentationID, &entry); err != nil {
		return models.TasteProfile{}, translateRepositoryError(err)
	}
	return entry, nil
}

func (service *FermentationService) ListTastings(userID uint, fermentationID uint) ([]models.TasteProfile, error) {
	entries, err := service.tenants.ForUser(userID).TasteProfiles.List(fermentationID)
	if err != nil {
		return nil, translateRepositoryError(err)
	}
	return entries, nil
}

func normalizeIngredients(raw []string) []string {
	ingredients := make([]string, 0, len(raw))
	for _, ingredient := range raw {
		if trimmed := strings.TrimSpace(ingredient); trimmed != "" {
			ingredients = append(ingredients, trimmed)
		}
	}
	return ingredients
}
