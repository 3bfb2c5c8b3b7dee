package sessionstore

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/raugupatis/raugupatis-log/internal/config"
	"github.com/raugupatis/raugupatis-log/internal/models"
	"github.com/raugupatis/raugupatis-log/internal/services"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Set RAUGUPATIS_TEST_REDIS_ADDR (for example localhost:6379) to run the
// store against a real server.
func newIntegrationStore(t *testing.T) *RedisStore {
	t.Helper()

	address := os.Getenv("RAUGUPATIS_TEST_REDIS_ADDR")
	if address == "" {
		t.Skip("RAUGUPATIS_TEST_REDIS_ADDR not set")
	}
	store, err := NewRedisStore(t.Context(), config.RedisConfig{Address: address})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	store.keyPrefix = "raugupatis:test:" + t.Name() + ":"
	return store
}

// memoryRedis answers GET, SET and DEL from a map so store logic can be
// tested without a server. With dropAfterGet set, every GET is followed by a
// delete of the same key, which is what a concurrent logout looks like.
type memoryRedis struct {
	mu           sync.Mutex
	values       map[string]string
	dropAfterGet bool
}

func newMemoryRedisClient(t *testing.T) (*redis.Client, *memoryRedis) {
	t.Helper()

	fake := &memoryRedis{values: make(map[string]string)}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	client.AddHook(fake)
	t.Cleanup(func() { _ = client.Close() })
	return client, fake
}

func (fake *memoryRedis) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (fake *memoryRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (fake *memoryRedis) ProcessHook(_ redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		fake.mu.Lock()
		defer fake.mu.Unlock()

		args := cmd.Args()
		key, _ := args[1].(string)
		switch cmd := cmd.(type) {
		case *redis.StringCmd:
			value, ok := fake.values[key]
			if !ok {
				cmd.SetErr(redis.Nil)
				return redis.Nil
			}
			cmd.SetVal(value)
			if fake.dropAfterGet {
				delete(fake.values, key)
			}
		case *redis.StatusCmd:
			_, exists := fake.values[key]
			for _, arg := range args[3:] {
				if mode, ok := arg.(string); ok && strings.EqualFold(mode, "xx") && !exists {
					cmd.SetErr(redis.Nil)
					return redis.Nil
				}
			}
			switch value := args[2].(type) {
			case []byte:
				fake.values[key] = string(value)
			case string:
				fake.values[key] = value
			}
			cmd.SetVal("OK")
		case *redis.IntCmd:
			var removed int64
			if _, ok := fake.values[key]; ok {
				delete(fake.values, key)
				removed = 1
			}
			cmd.SetVal(removed)
		}
		return nil
	}
}

func (fake *memoryRedis) has(key string) bool {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	_, ok := fake.values[key]
	return ok
}

func TestRedisStoreTouchDoesNotRecreateDeletedSession(t *testing.T) {
	client, fake := newMemoryRedisClient(t)
	store := NewRedisStoreWithClient(client, "")
	ctx := t.Context()
	expiresAt := time.Now().UTC().Add(time.Hour).Truncate(time.Second)

	require.NoError(t, store.Save(ctx, models.Session{ID: "token", Data: `{"user_id":1}`, ExpiresAt: expiresAt}))
	later := expiresAt.Add(time.Hour)
	require.NoError(t, store.Touch(ctx, "token", later))
	found, err := store.Find(ctx, "token")
	require.NoError(t, err)
	assert.True(t, found.ExpiresAt.Equal(later))

	fake.dropAfterGet = true
	assert.ErrorIs(t, store.Touch(ctx, "token", later.Add(time.Hour)), services.ErrSessionNotFound)
	assert.False(t, fake.has(store.key("token")), "refresh must not bring a deleted session back")
}

func TestRedisStoreSessionServiceRejectsDestroyedSession(t *testing.T) {
	client, _ := newMemoryRedisClient(t)
	sessions := services.NewSessionService(NewRedisStoreWithClient(client, ""), time.Hour, 2*time.Hour)
	ctx := t.Context()

	created, err := sessions.Create(ctx, models.User{ID: 4, Email: "cook@example.com"}, false)
	require.NoError(t, err)
	_, err = sessions.Validate(ctx, created.Token)
	require.NoError(t, err)

	require.NoError(t, sessions.Destroy(ctx, created.Token))
	_, err = sessions.Validate(ctx, created.Token)
	assert.ErrorIs(t, err, services.ErrSessionNotFound)
}

func TestNewRedisStoreWithClientDefaultsPrefix(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStoreWithClient(client, "")
	assert.Equal(t, DefaultKeyPrefix+"abc", store.key("abc"))

	custom := NewRedisStoreWithClient(client, "custom:")
	assert.Equal(t, "custom:abc", custom.key("abc"))
}

func TestNewRedisStoreFailsWithoutServer(t *testing.T) {
	_, err := NewRedisStore(t.Context(), config.RedisConfig{Address: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestRedisStoreLifecycle(t *testing.T) {
	store := newIntegrationStore(t)
	ctx := t.Context()
	expiresAt := time.Now().UTC().Add(time.Hour).Truncate(time.Second)

	require.NoError(t, store.Save(ctx, models.Session{ID: "token", Data: `{"user_id":1}`, ExpiresAt: expiresAt}))

	found, err := store.Find(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, `{"user_id":1}`, found.Data)
	assert.True(t, found.ExpiresAt.Equal(expiresAt))

	later := expiresAt.Add(time.Hour)
	require.NoError(t, store.Touch(ctx, "token", later))
	found, err = store.Find(ctx, "token")
	require.NoError(t, err)
	assert.True(t, found.ExpiresAt.Equal(later))

	assert.ErrorIs(t, store.Touch(ctx, "missing", later), services.ErrSessionNotFound)

	require.NoError(t, store.Delete(ctx, "token"))
	require.NoError(t, store.Delete(ctx, "token"))
	_, err = store.Find(ctx, "token")
	assert.ErrorIs(t, err, services.ErrSessionNotFound)
}

func TestRedisStoreBacksSessionService(t *testing.T) {
	store := newIntegrationStore(t)
	sessions := services.NewSessionService(store, time.Hour, 2*time.Hour)
	ctx := t.Context()

	created, err := sessions.Create(ctx, models.User{ID: 9, Email: "redis@example.com"}, false)
	require.NoError(t, err)
	validated, err := sessions.Validate(ctx, created.Token)
	require.NoError(t, err)
	assert.Equal(t, uint(9), validated.Data.UserID)

	require.NoError(t, sessions.Destroy(ctx, created.Token))
	_, err = sessions.Validate(ctx, created.Token)
	assert.ErrorIs(t, err, services.ErrSessionNotFound)
}
