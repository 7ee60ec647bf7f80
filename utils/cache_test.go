package utils

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "techdigest:episodes:list:0:20", CacheKey(EpisodeCachePrefix, "list:%d:%d", 0, 20))
}

func TestCacheDisabled(t *testing.T) {
	SetRedis(nil)
	ctx := context.Background()

	CacheSetJSON(ctx, "k", map[string]int{"a": 1}, 0)
	_, ok := CacheGetBytes(ctx, "k")
	assert.False(t, ok)
	InvalidateByPrefix(ctx, EpisodeCachePrefix)
}

func TestCacheUnreachableIsMiss(t *testing.T) {
	rc := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	SetRedis(rc)
	defer CloseRedis()

	ctx := context.Background()
	CacheSetBytes(ctx, "k", []byte("v"), time.Minute)
	_, ok := CacheGetBytes(ctx, "k")
	assert.False(t, ok)
	assert.NotNil(t, GetRedis())
}
