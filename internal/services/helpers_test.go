package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/raugupatis/raugupatis-log/internal/db"
	"github.com/raugupatis/raugupatis-log/internal/models"
	"github.com/stretchr/testify/require"
)

func newTestRepositories(t *testing.T) *db.Repositories {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "services.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db.NewRepositories(database)
}

func registerTestUser(t *testing.T, auth *AuthService, email string) models.User {
	t.Helper()

	user, err := auth.Register(RegisterInput{Email: email, Password: "securepass123"})
	require.NoError(t, err)
	return user
}

type fixedClock struct {
	current time.Time
}

func (clock *fixedClock) now() time.Time {
	return clock.current
}

func (clock *fixedClock) advance(step time.Duration) {
	clock.current = clock.current.Add(step)
}

type memoryBlobStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryBlobStorage() *memoryBlobStorage {
	return &memoryBlobStorage{objects: make(map[string][]byte)}
}

func (storage *memoryBlobStorage) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	content, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	storage.mu.Lock()
	defer storage.mu.Unlock()
	storage.objects[key] = content
	return nil
}

func (storage *memoryBlobStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	storage.mu.Lock()
	defer storage.mu.Unlock()
	content, ok := storage.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (storage *memoryBlobStorage) Delete(_ context.Context, key string) error {
	storage.mu.Lock()
	defer storage.mu.Unlock()
	delete(storage.objects, key)
	return nil
}

func (storage *memoryBlobStorage) keys() []string {
	storage.mu.Lock()
	defer storage.mu.Unlock()
	keys := make([]string, 0, len(storage.objects))
	for key := range storage.objects {
		keys = append(keys, key)
	}
	return keys
}

type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: make(map[string]models.Session)}
}

func (store *memorySessionStore) Save(_ context.Context, session models.Session) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.sessions[session.ID] = session
	return nil
}

func (store *memorySessionStore) Find(_ context.Context, sessionID string) (models.Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	session, ok := store.sessions[sessionID]
	if !ok {
		return models.Session{}, ErrSessionNotFound
	}
	return session, nil
}

func (store *memorySessionStore) Touch(_ context.Context, sessionID string, expiresAt time.Time) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	session, ok := store.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	session.ExpiresAt = expiresAt
	store.sessions[sessionID] = session
	return nil
}

func (store *memorySessionStore) Delete(_ context.Context, sessionID string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.sessions, sessionID)
	return nil
}

func (store *memorySessionStore) count() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.sessions)
}
