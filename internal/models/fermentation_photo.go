package models

import "time"

const (
	PhotoStageStart    = "start"
	PhotoStageProgress = "progress"
	PhotoStageEnd      = "end"
)

type FermentationPhoto struct {
	ID             uint   `gorm:"primaryKey"`
	FermentationID uint   `gorm:"not null;index"`
	FilePath       string `gorm:"not null"`
	Caption        string
	TakenAt        time.Time `gorm:"not null"`
	Stage          string    `gorm:"not null;default:progress"`
	CreatedAt      time.Time
}

func (FermentationPhoto) TableName() string {
	return "fermentation_photos"
}
