package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/AnshRaj112/serenify-advisor/internal/database"
	"github.com/AnshRaj112/serenify-advisor/internal/logging"
	"github.com/AnshRaj112/serenify-advisor/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	mu   sync.Mutex
	data map[string]string
	gets int
	hits int
	err  error
}

func newMapCache() *mapCache { return &mapCache{data: make(map[string]string)} }

func (c *mapCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.err != nil {
		return "", false, c.err
	}
	v, ok := c.data[key]
	if ok {
		c.hits++
	}
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.data[key] = value
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return c.err
}

func TestCachedProfileStore_ReadThroughAndInvalidate(t *testing.T) {
	ctx := context.Background()
	mem := database.NewMemoryStore()
	cache := newMapCache()
	s := NewCachedProfileStore(mem, cache, time.Minute, logging.Discard())

	require.NoError(t, s.CreateProfile(ctx, models.NewProfile("u1", "alice", time.Now())))

	_, err := s.FindProfile(ctx, "u1")
	require.NoError(t, err)
	p, err := s.FindProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, "alice", p.Username)

	age := 22
	p.Age = &age
	require.NoError(t, s.UpdateProfile(ctx, p))

	got, err := s.FindProfile(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got.Age)
	assert.Equal(t, 22, *got.Age)
}

func TestCachedProfileStore_CacheFailureFallsThrough(t *testing.T) {
	ctx := context.Background()
	mem := database.NewMemoryStore()
	require.NoError(t, mem.CreateProfile(ctx, models.NewProfile("u1", "alice", time.Now())))

	cache := newMapCache()
	cache.err = errStoreDown
	s := NewCachedProfileStore(mem, cache, time.Minute, logging.Discard())

	p, err := s.FindProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)

	_, err = s.FindProfile(ctx, "missing")
	assert.ErrorIs(t, err, database.ErrNotFound)
}
