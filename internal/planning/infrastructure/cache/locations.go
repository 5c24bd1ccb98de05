package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/redis/go-redis/v9"
)

// DefaultLocationTTL bounds how long a city's places are served from cache.
const DefaultLocationTTL = 6 * time.Hour

var ErrCacheMiss = errors.New("cache miss")

// Store is a byte cache with per-entry expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisStore implements Store on a Redis client.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	return val, err
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

type entry struct {
	value   []byte
	expires time.Time
}

// InMemoryStore implements Store in process memory.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]entry), now: time.Now}
}

func (s *InMemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok || !s.now().Before(e.expires) {
		return nil, ErrCacheMiss
	}
	return e.value, nil
}

func (s *InMemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{value: value, expires: s.now().Add(ttl)}
	return nil
}

// CachedLocationSource serves domain.LocationSource from store before
// falling back to next. Store failures are logged and bypassed.
type CachedLocationSource struct {
	next   domain.LocationSource
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedLocationSource(next domain.LocationSource, store Store, ttl time.Duration, logger *slog.Logger) *CachedLocationSource {
	if ttl <= 0 {
		ttl = DefaultLocationTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedLocationSource{next: next, store: store, ttl: ttl, logger: logger}
}

func locationKey(city string) string {
	return "planner:locations:" + strings.ToLower(strings.TrimSpace(city))
}

func (c *CachedLocationSource) ListLocations(ctx context.Context, city string) ([]domain.Location, error) {
	key := locationKey(city)

	raw, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var locations []domain.Location
		if err := json.Unmarshal(raw, &locations); err == nil {
			return locations, nil
		}
		c.logger.WarnContext(ctx, "discarding unreadable location cache entry", "key", key)
	case !errors.Is(err, ErrCacheMiss):
		c.logger.WarnContext(ctx, "location cache read failed", "key", key, "error", err)
	}

	locations, err := c.next.ListLocations(ctx, city)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(locations); err == nil {
		if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
			c.logger.WarnContext(ctx, "location cache write failed", "key", key, "error", err)
		}
	}
	return locations, nil
}
