package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/raugupatis/raugupatis-log/internal/db"
	"github.com/raugupatis/raugupatis-log/internal/models"
	"github.com/raugupatis/raugupatis-log/internal/security"
)

const sessionTokenLength = 48

// SessionStore persists sessions by token. Find and Touch report a missing
// token as db.ErrNotFound or ErrSessionNotFound; Delete of a missing token
// succeeds.
type SessionStore interface {
	Save(ctx context.Context, session models.Session) error
	Find(ctx context.Context, sessionID string) (models.Session, error)
	Touch(ctx context.Context, sessionID string, expiresAt time.Time) error
	Delete(ctx context.Context, sessionID string) error
}

// ActiveSession is the result of creating or validating a session.
type ActiveSession struct {
	Token     string
	Data      models.SessionData
	ExpiresAt time.Time
}

// Persistent reports whether the session was opened with "remember me" and
// should outlive the browser session.
func (session ActiveSession) Persistent(defaultTTL time.Duration) bool {
	return time.Duration(session.Data.TTLSeconds)*time.Second > defaultTTL
}

type SessionService struct {
	store       SessionStore
	ttl         time.Duration
	rememberTTL time.Duration
	now         func() time.Time
}

func NewSessionService(store SessionStore, ttl time.Duration, rememberTTL time.Duration) *SessionService {
	return &SessionService{
		store:       store,
		ttl:         ttl,
		rememberTTL: rememberTTL,
		now:         time.Now,
	}
}

func (service *SessionService) TTL() time.Duration {
	return service.ttl
}

// Create opens a session for user. The expiry is an inactivity window that
// Validate slides forward on every use.
func (service *SessionService) Create(ctx context.Context, user models.User, remember bool) (ActiveSession, error) {
	token, err := security.SessionToken(sessionTokenLength)
	if err != nil {
		return ActiveSession{}, err
	}

	ttl := service.ttl
	if remember {
		ttl = service.rememberTTL
	}
	data := models.SessionData{
		UserID:     user.ID,
		Email:      user.Email,
		Role:       user.Role,
		TTLSeconds: int64(ttl / time.Second),
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return ActiveSession{}, err
	}

	expiresAt := service.now().UTC().Add(ttl)
	if err := service.store.Save(ctx, models.Session{ID: token, Data: string(payload), ExpiresAt: expiresAt}); err != nil {
		return ActiveSession{}, storageError(err)
	}
	return ActiveSession{Token: token, Data: data, ExpiresAt: expiresAt}, nil
}

// Validate loads a session and refreshes its expiry. Expired sessions are
// deleted on the spot.
func (service *SessionService) Validate(ctx context.Context, token string) (ActiveSession, error) {
	if token == "" {
		return ActiveSession{}, ErrSessionNotFound
	}

	stored, err := service.store.Find(ctx, token)
	if err != nil {
		if isMissingSession(err) {
			return ActiveSession{}, ErrSessionNotFound
		}
		return ActiveSession{}, storageError(err)
	}

	now := service.now().UTC()
	if !now.Before(stored.ExpiresAt) {
		if err := service.store.Delete(ctx, token); err != nil {
			return ActiveSession{}, storageError(err)
		}
		return ActiveSession{}, ErrSessionExpired
	}

	var data models.SessionData
	if err := json.Unmarshal([]byte(stored.Data), &data); err != nil || data.UserID == 0 {
		_ = service.store.Delete(ctx, token)
		return ActiveSession{}, ErrSessionNotFound
	}

	ttl := time.Duration(data.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = service.ttl
	}
	expiresAt := now.Add(ttl)
	if err := service.store.Touch(ctx, token, expiresAt); err != nil {
		if isMissingSession(err) {
			return ActiveSession{}, ErrSessionNotFound
		}
		return ActiveSession{}, storageError(err)
	}
	return ActiveSession{Token: token, Data: data, ExpiresAt: expiresAt}, nil
}

// Destroy deletes the session. Unknown tokens are ignored.
func (service *SessionService) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := service.store.Delete(ctx, token); err != nil {
		return storageError(err)
	}
	return nil
}

func isMissingSession(err error) bool {
	return errors.Is(err, db.ErrNotFound) || errors.Is(err, ErrSessionNotFound)
}
