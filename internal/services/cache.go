package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AnshRaj112/serenify-advisor/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached data
	CacheKeyPrefix = "cache:"
	// DefaultCacheTTL bounds how stale a cached profile can get if an
	// invalidation is lost.
	DefaultCacheTTL = 10 * time.Minute
)

// Cache is a string key/value cache with expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisCache stores entries under CacheKeyPrefix.
type RedisCache struct {
	rdb redis.Cmdable
}

func NewRedisCache(rdb redis.Cmdable) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, CacheKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, CacheKeyPrefix+key, value, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, CacheKeyPrefix+key).Err()
}

// CacheKey generates a cache key for a specific resource
func CacheKey(resource string, identifier string) string {
	return fmt.Sprintf("%s:%s", resource, identifier)
}

// CachedProfileStore reads profiles through a cache. Writes go to the
// underlying store first and then drop the cached copy. Cache failures are
// logged and fall through to the store.
type CachedProfileStore struct {
	ProfileStore
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedProfileStore(store ProfileStore, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedProfileStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedProfileStore{ProfileStore: store, cache: cache, ttl: ttl, logger: logger}
}

func (s *CachedProfileStore) FindProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	key := CacheKey("profile", userID)

	val, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "profile cache read failed", "user_id", userID, "error", err)
	}
	if ok {
		var p models.UserProfile
		if err := json.Unmarshal([]byte(val), &p); err == nil {
			return &p, nil
		}
		_ = s.cache.Delete(ctx, key)
	}

	p, err := s.ProfileStore.FindProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(p); err == nil {
		if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
			s.logger.WarnContext(ctx, "profile cache write failed", "user_id", userID, "error", err)
		}
	}
	return p, nil
}

func (s *CachedProfileStore) CreateProfile(ctx context.Context, p *models.UserProfile) error {
	if err := s.ProfileStore.CreateProfile(ctx, p); err != nil {
		return err
	}
	s.invalidate(ctx, p.UserID)
	return nil
}

func (s *CachedProfileStore) UpdateProfile(ctx context.Context, p *models.UserProfile) error {
	if err := s.ProfileStore.UpdateProfile(ctx, p); err != nil {
		return err
	}
	s.invalidate(ctx, p.UserID)
	return nil
}

func (s *CachedProfileStore) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, CacheKey("profile", userID)); err != nil {
		s.logger.WarnContext(ctx, "profile cache invalidation failed", "user_id", userID, "error", err)
	}
}
