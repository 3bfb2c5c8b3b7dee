package models

import "time"

// FermentationProfile temperatures are stored in degrees Fahrenheit.
type FermentationProfile struct {
	ID          uint    `gorm:"primaryKey"`
	Name        string  `gorm:"not null;uniqueIndex"`
	Type        string  `gorm:"not null"`
	MinDays     int     `gorm:"not null"`
	MaxDays     int     `gorm:"not null"`
	TempMin     float64 `gorm:"not null"`
	TempMax     float64 `gorm:"not null"`
	Description string
	IsActive    bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
}
