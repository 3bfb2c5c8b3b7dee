package models

import "time"

// TemperatureLog readings are stored in degrees Fahrenheit.
type TemperatureLog struct {
	ID             uint      `gorm:"primaryKey"`
	FermentationID uint      `gorm:"not null;index"`
	RecordedAt     time.Time `gorm:"not null"`
	Temperature    float64   `gorm:"not null"`
	Notes          string
	CreatedAt      time.Time
}
