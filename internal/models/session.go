package models

import "time"

type Session struct {
	ID        string    `gorm:"primaryKey"`
	Data      string    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// SessionData is the payload serialized into Session.Data.
type SessionData struct {
	UserID     uint   `json:"user_id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	TTLSeconds int64  `json:"ttl_seconds"`
}
