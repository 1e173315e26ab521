package cache

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func exerciseCache(t *testing.T, c CacheService) {
	t.Helper()
	ctx := context.Background()

	var got payload
	assert.ErrorIs(t, c.Get(ctx, UserProgressKey("u1"), &got), ErrCacheMiss)

	require.NoError(t, c.Set(ctx, UserProgressKey("u1"), payload{Name: "a", Count: 1}, time.Minute))
	require.NoError(t, c.Set(ctx, UserProgressKey("u2"), payload{Name: "b", Count: 2}, time.Minute))
	require.NoError(t, c.Set(ctx, "other:key", payload{Name: "c"}, time.Minute))

	require.NoError(t, c.Get(ctx, UserProgressKey("u1"), &got))
	assert.Equal(t, payload{Name: "a", Count: 1}, got)

	require.NoError(t, c.Delete(ctx, UserProgressKey("u1")))
	assert.ErrorIs(t, c.Get(ctx, UserProgressKey("u1"), &got), ErrCacheMiss)

	require.NoError(t, c.DeletePattern(ctx, AllProgressPattern()))
	assert.ErrorIs(t, c.Get(ctx, UserProgressKey("u2"), &got), ErrCacheMiss)
	assert.NoError(t, c.Get(ctx, "other:key", &got), "keys outside the pattern survive")
}

func TestMemoryCache(t *testing.T) {
	exerciseCache(t, NewMemoryCache())
}

func TestMemoryCache_Expiry(t *testing.T) {
	now := time.Now()
	c := &memoryCache{entries: map[string]memoryEntry{}, now: func() time.Time { return now }}
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 1, time.Second))
	var v int
	require.NoError(t, c.Get(ctx, "k", &v))

	now = now.Add(2 * time.Second)
	assert.ErrorIs(t, c.Get(ctx, "k", &v), ErrCacheMiss)
}

// Runs against a real server when REDIS_TEST_URL is set.
func TestRedisCache(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opt)
	t.Cleanup(func() { client.Close() })

	exerciseCache(t, NewRedisCache(client, slog.New(slog.NewTextHandler(io.Discard, nil))))
	_ = client.Del(context.Background(), "other:key").Err()
}
