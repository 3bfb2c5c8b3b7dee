package api

import (
	"time"

	"github.com/raugupatis/raugupatis-log/internal/models"
	"github.com/raugupatis/raugupatis-log/internal/services"
)

type userResponse struct {
	ID                uint      `json:"id"`
	Email             string    `json:"email"`
	Role              string    `json:"role"`
	ExperienceLevel   string    `json:"experience_level"`
	FirstName         *string   `json:"first_name"`
	LastName          *string   `json:"last_name"`
	PreferredTempUnit string    `json:"preferred_temp_unit"`
	CreatedAt         time.Time `json:"created_at"`
}

type adminUserResponse struct {
	userResponse
	IsLocked  bool      `json:"is_locked"`
	UpdatedAt time.Time `json:"updated_at"`
}

type loginResponse struct {
	Success bool          `json:"success"`
	User    *userResponse `json:"user"`
	Message string        `json:"message"`
}

type profileResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	MinDays     int       `json:"min_days"`
	MaxDays     int       `json:"max_days"`
	TempMin     float64   `json:"temp_min"`
	TempMax     float64   `json:"temp_max"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type fermentationResponse struct {
	ID             uint       `json:"id"`
	UserID         uint       `json:"user_id"`
	ProfileID      uint       `json:"profile_id"`
	Name           string     `json:"name"`
	StartDate      time.Time  `json:"start_date"`
	TargetEndDate  *time.Time `json:"target_end_date"`
	ActualEndDate  *time.Time `json:"actual_end_date"`
	Status         string     `json:"status"`
	SuccessRating  *int       `json:"success_rating"`
	Notes          string     `json:"notes"`
	LessonsLearned *string    `json:"lessons_learned"`
	Ingredients    []string   `json:"ingredients"`
	ProfileName    string     `json:"profile_name,omitempty"`
	ProfileType    string     `json:"profile_type,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type temperatureResponse struct {
	ID             uint      `json:"id"`
	FermentationID uint      `json:"fermentation_id"`
	RecordedAt     time.Time `json:"recorded_at"`
	Temperature    float64   `json:"temperature"`
	Unit           string    `json:"unit"`
	Notes          string    `json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
}

type tastingResponse struct {
	ID             uint      `json:"id"`
	FermentationID uint      `json:"fermentation_id"`
	Profile        string    `json:"profile"`
	TastedAt       time.Time `json:"tasted_at"`
	CreatedAt      time.Time `json:"created_at"`
}

type photoResponse struct {
	ID             uint      `json:"id"`
	FermentationID uint      `json:"fermentation_id"`
	FilePath       string    `json:"file_path"`
	URL            string    `json:"url"`
	Caption        string    `json:"caption"`
	TakenAt        time.Time `json:"taken_at"`
	Stage          string    `json:"stage"`
	CreatedAt      time.Time `json:"created_at"`
}

type summaryResponse struct {
	Total  int64                  `json:"total"`
	Counts map[string]int64       `json:"counts"`
	Recent []fermentationResponse `json:"recent"`
}

func newUserResponse(user models.User) userResponse {
	return userResponse{
		ID:                user.ID,
		Email:             user.Email,
		Role:              user.Role,
		ExperienceLevel:   user.ExperienceLevel,
		FirstName:         user.FirstName,
		LastName:          user.LastName,
		PreferredTempUnit: user.PreferredTempUnit,
		CreatedAt:         user.CreatedAt,
	}
}

func newAdminUserResponses(users []models.User) []adminUserResponse {
	responses := make([]adminUserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, newAdminUserResponse(user))
	}
	return responses
}

func newAdminUserResponse(user models.User) adminUserResponse {
	return adminUserResponse{
		userResponse: newUserResponse(user),
		IsLocked:     user.IsLocked,
		UpdatedAt:    user.UpdatedAt,
	}
}

func newProfileResponses(profiles []models.FermentationProfile) []profileResponse {
	responses := make([]profileResponse, 0, len(profiles))
	for _, profile := range profiles {
		responses = append(responses, newProfileResponse(profile))
	}
	return responses
}

func newProfileResponse(profile models.FermentationProfile) profileResponse {
	return profileResponse{
		ID:          profile.ID,
		Name:        profile.Name,
		Type:        profile.Type,
		MinDays:     profile.MinDays,
		MaxDays:     profile.MaxDays,
		TempMin:     profile.TempMin,
		TempMax:     profile.TempMax,
		Description: profile.Description,
		IsActive:    profile.IsActive,
		CreatedAt:   profile.CreatedAt,
	}
}

func newFermentationResponses(fermentations []models.Fermentation) []fermentationResponse {
	responses := make([]fermentationResponse, 0, len(fermentations))
	for _, fermentation := range fermentations {
		responses = append(responses, newFermentationResponse(fermentation))
	}
	return responses
}

func newFermentationResponse(fermentation models.Fermentation) fermentationResponse {
	ingredients := fermentation.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	return fermentationResponse{
		ID:             fermentation.ID,
		UserID:         fermentation.UserID,
		ProfileID:      fermentation.ProfileID,
		Name:           fermentation.Name,
		StartDate:      fermentation.StartDate,
		TargetEndDate:  fermentation.TargetEndDate,
		ActualEndDate:  fermentation.ActualEndDate,
		Status:         fermentation.Status,
		SuccessRating:  fermentation.SuccessRating,
		Notes:          fermentation.Notes,
		LessonsLearned: fermentation.LessonsLearned,
		Ingredients:    ingredients,
		ProfileName:    fermentation.Profile.Name,
		ProfileType:    fermentation.Profile.Type,
		CreatedAt:      fermentation.CreatedAt,
		UpdatedAt:      fermentation.UpdatedAt,
	}
}

// Readings are stored in °F and returned in the viewer's preferred unit.
func newTemperatureResponses(logs []models.TemperatureLog, unit string) []temperatureResponse {
	responses := make([]temperatureResponse, 0, len(logs))
	for _, log := range logs {
		responses = append(responses, newTemperatureResponse(log, unit))
	}
	return responses
}

func newTemperatureResponse(log models.TemperatureLog, unit string) temperatureResponse {
	return temperatureResponse{
		ID:             log.ID,
		FermentationID: log.FermentationID,
		RecordedAt:     log.RecordedAt,
		Temperature:    services.ToDisplayUnit(log.Temperature, unit),
		Unit:           services.TempUnitSymbol(unit),
		Notes:          log.Notes,
		CreatedAt:      log.CreatedAt,
	}
}

func newTastingResponses(tastings []models.TasteProfile) []tastingResponse {
	responses := make([]tastingResponse, 0, len(tastings))
	for _, tasting := range tastings {
		responses = append(responses, newTastingResponse(tasting))
	}
	return responses
}

func newTastingResponse(tasting models.TasteProfile) tastingResponse {
	return tastingResponse{
		ID:             tasting.ID,
		FermentationID: tasting.FermentationID,
		Profile:        tasting.Profile,
		TastedAt:       tasting.TastedAt,
		CreatedAt:      tasting.CreatedAt,
	}
}

func newPhotoResponses(photos []models.FermentationPhoto) []photoResponse {
	responses := make([]photoResponse, 0, len(photos))
	for _, photo := range photos {
		responses = append(responses, newPhotoResponse(photo))
	}
	return responses
}

func newPhotoResponse(photo models.FermentationPhoto) photoResponse {
	return photoResponse{
		ID:             photo.ID,
		FermentationID: photo.FermentationID,
		FilePath:       photo.FilePath,
		URL:            photoFileURL(photo),
		Caption:        photo.Caption,
		TakenAt:        photo.TakenAt,
		Stage:          photo.Stage,
		CreatedAt:      photo.CreatedAt,
	}
}

func newSummaryResponse(summary services.DashboardSummary) summaryResponse {
	counts := summary.Counts
	if counts == nil {
		counts = map[string]int64{}
	}
	return summaryResponse{
		Total:  summary.Total,
		Counts: counts,
		Recent: newFermentationResponses(summary.Recent),
	}
}
