package models

import "time"

type TasteProfile struct {
	ID             uint      `gorm:"primaryKey"`
	FermentationID uint      `gorm:"not null;index"`
	Profile        string    `gorm:"not null"`
	TastedAt       time.Time `gorm:"not null"`
	CreatedAt      time.Time
}
