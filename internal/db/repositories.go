package db

import "gorm.io/gorm"

// Repositories groups the data access that is not owned by a single user.
// Per-user data is only reachable through ForUser.
type Repositories struct {
	database *gorm.DB
	Users    *UserRepository
	Profiles *ProfileRepository
	Sessions *SessionRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		database: database,
		Users:    NewUserRepository(database),
		Profiles: NewProfileRepository(database),
		Sessions: NewSessionRepository(database),
	}
}

// TenantRepositories expose fermentation data owned by one user. Every query
// they issue is constrained to that user's fermentations.
type TenantRepositories struct {
	UserID          uint
	Fermentations   *FermentationRepository
	TemperatureLogs *TemperatureLogRepository
	TasteProfiles   *TasteProfileRepository
	Photos          *PhotoRepository
}

func (repos *Repositories) ForUser(userID uint) *TenantRepositories {
	scope := tenantScope{database: repos.database, userID: userID}
	return &TenantRepositories{
		UserID:          userID,
		Fermentations:   &FermentationRepository{scope: scope},
		TemperatureLogs: &TemperatureLogRepository{scope: scope},
		TasteProfiles:   &TasteProfileRepository{scope: scope},
		Photos:          &PhotoRepository{scope: scope},
	}
}
