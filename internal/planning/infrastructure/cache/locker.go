// Package cache holds the Redis-backed generation lock and location cache,
// with in-process counterparts for local mode.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

func lockKey(userID uuid.UUID, date domain.Date) string {
	return fmt.Sprintf("planner:lock:generate:%s:%s", userID, date)
}

// RedisLocker implements domain.GenerationLocker with SET NX.
type RedisLocker struct {
	client redis.UniversalClient
}

func NewRedisLocker(client redis.UniversalClient) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) Acquire(ctx context.Context, userID uuid.UUID, date domain.Date, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, lockKey(userID, date), token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (l *RedisLocker) Release(ctx context.Context, userID uuid.UUID, date domain.Date, token string) error {
	return releaseScript.Run(ctx, l.client, []string{lockKey(userID, date)}, token).Err()
}

type heldLock struct {
	token   string
	expires time.Time
}

// InMemoryLocker serializes generation inside one process.
type InMemoryLocker struct {
	mu    sync.Mutex
	locks map[string]heldLock
	now   func() time.Time
}

func NewInMemoryLocker() *InMemoryLocker {
	return &InMemoryLocker{locks: make(map[string]heldLock), now: time.Now}
}

func (l *InMemoryLocker) Acquire(_ context.Context, userID uuid.UUID, date domain.Date, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := lockKey(userID, date)
	now := l.now()
	if held, ok := l.locks[key]; ok && now.Before(held.expires) {
		return "", false, nil
	}
	token := uuid.NewString()
	l.locks[key] = heldLock{token: token, expires: now.Add(ttl)}
	return token, true, nil
}

func (l *InMemoryLocker) Release(_ context.Context, userID uuid.UUID, date domain.Date, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := lockKey(userID, date)
	if held, ok := l.locks[key]; ok && held.token == token {
		delete(l.locks, key)
	}
	return nil
}
