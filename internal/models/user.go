package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	ExperienceBeginner     = "beginner"
	ExperienceIntermediate = "intermediate"
	ExperienceAdvanced     = "advanced"
)

const (
	TempUnitFahrenheit = "fahrenheit"
	TempUnitCelsius    = "celsius"
)

type User struct {
	ID                uint    `gorm:"primaryKey"`
	Email             string  `gorm:"not null"`
	PasswordHash      string  `gorm:"not null"`
	Role              string  `gorm:"not null;default:user"`
	ExperienceLevel   string  `gorm:"not null;default:beginner"`
	FirstName         *string `gorm:"column:first_name"`
	LastName          *string `gorm:"column:last_name"`
	IsLocked          bool    `gorm:"column:is_locked;not null;default:false"`
	PreferredTempUnit string  `gorm:"column:preferred_temp_unit;not null;default:fahrenheit"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (user User) IsAdmin() bool {
	return user.Role == RoleAdmin
}
