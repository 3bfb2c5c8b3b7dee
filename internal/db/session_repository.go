package db

import (
	"context"
	"time"

	"github.com/raugupatis/raugupatis-log/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepository is the SQL-backed session store.
type SessionRepository struct {
	database *gorm.DB
}

func NewSessionRepository(database *gorm.DB) *SessionRepository {
	return &SessionRepository{database: database}
}

func (repo *SessionRepository) Save(ctx context.Context, session models.Session) error {
	return repo.database.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&session).Error
}

func (repo *SessionRepository) Find(ctx context.Context, sessionID string) (models.Session, error) {
	var session models.Session
	if err := repo.database.WithContext(ctx).Where("id = ?", sessionID).First(&session).Error; err != nil {
		return models.Session{}, translateError(err)
	}
	return session, nil
}

func (repo *SessionRepository) Touch(ctx context.Context, sessionID string, expiresAt time.Time) error {
	result := repo.database.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ?", sessionID).
		Update("expires_at", expiresAt)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the session row. Deleting a missing session is not an error.
func (repo *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	return repo.database.WithContext(ctx).Where("id = ?", sessionID).Delete(&models.Session{}).Error
}

// DeleteExpired purges sessions whose expiry is at or before now and reports
// how many rows were removed.
func (repo *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := repo.database.WithContext(ctx).Where("expires_at <= ?", now.UTC()).Delete(&models.Session{})
	return result.RowsAffected, result.Error
}
