package models

import "time"

const (
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type Fermentation struct {
	ID             uint      `gorm:"primaryKey"`
	UserID         uint      `gorm:"not null;index"`
	ProfileID      uint      `gorm:"not null;index"`
	Name           string    `gorm:"not null"`
	StartDate      time.Time `gorm:"not null"`
	TargetEndDate  *time.Time
	ActualEndDate  *time.Time
	Status         string `gorm:"not null;default:active"`
	SuccessRating  *int
	Notes          string
	LessonsLearned *string
	Ingredients    []string `gorm:"column:ingredients_json;serializer:json"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Profile FermentationProfile `gorm:"foreignKey:ProfileID"`
}

func (fermentation Fermentation) IsFinished() bool {
	return fermentation.Status == StatusCompleted || fermentation.Status == StatusFailed
}
