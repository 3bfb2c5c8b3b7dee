// Package sessionstore holds the Redis-backed alternative to the SQL
// sessions table.
package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/raugupatis/raugupatis-log/internal/config"
	"github.com/raugupatis/raugupatis-log/internal/models"
	"github.com/raugupatis/raugupatis-log/internal/services"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultKeyPrefix = "raugupatis:session:"
	// Keys outlive the session expiry by this much so an expired session is
	// still seen, and reported as expired, on its next use.
	expiryGrace = time.Hour
)

var _ services.SessionStore = (*RedisStore)(nil)

type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	now       func() time.Time
}

type sessionRecord struct {
	Data      string    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisStoreWithClient(client, DefaultKeyPrefix), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix, now: time.Now}
}

func (store *RedisStore) key(sessionID string) string {
	return store.keyPrefix + sessionID
}

func (store *RedisStore) Save(ctx context.Context, session models.Session) error {
	return store.write(ctx, session.ID, sessionRecord{Data: session.Data, ExpiresAt: session.ExpiresAt.UTC()}, "")
}

// write stores the record with a TTL derived from its expiry. Mode "XX" only
// overwrites a key that still exists.
func (store *RedisStore) write(ctx context.Context, sessionID string, record sessionRecord, mode string) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	ttl := record.ExpiresAt.Sub(store.now()) + expiryGrace
	if ttl <= 0 {
		ttl = time.Second
	}
	err = store.client.SetArgs(ctx, store.key(sessionID), payload, redis.SetArgs{Mode: mode, TTL: ttl}).Err()
	if errors.Is(err, redis.Nil) {
		return services.ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (store *RedisStore) read(ctx context.Context, sessionID string) (sessionRecord, error) {
	payload, err := store.client.Get(ctx, store.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return sessionRecord{}, services.ErrSessionNotFound
		}
		return sessionRecord{}, fmt.Errorf("load session: %w", err)
	}
	var record sessionRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return sessionRecord{}, fmt.Errorf("decode session: %w", err)
	}
	return record, nil
}

func (store *RedisStore) Find(ctx context.Context, sessionID string) (models.Session, error) {
	record, err := store.read(ctx, sessionID)
	if err != nil {
		return models.Session{}, err
	}
	return models.Session{ID: sessionID, Data: record.Data, ExpiresAt: record.ExpiresAt}, nil
}

func (store *RedisStore) Touch(ctx context.Context, sessionID string, expiresAt time.Time) error {
	record, err := store.read(ctx, sessionID)
	if err != nil {
		return err
	}
	record.ExpiresAt = expiresAt.UTC()
	// A logout between the read and this write must not bring the key back.
	return store.write(ctx, sessionID, record, "XX")
}

// Delete removes the key. Missing keys are ignored.
func (store *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := store.client.Del(ctx, store.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (store *RedisStore) Ping(ctx context.Context) error {
	return store.client.Ping(ctx).Err()
}

func (store *RedisStore) Close() error {
	return store.client.Close()
}
