package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/clientwatch/pkg/config"
)

func TestNew_Disabled(t *testing.T) {
	client, err := New(context.Background(), config.RedisConfig{Enabled: false})
	require.NoError(t, err)

	assert.False(t, client.Enabled())
	assert.NoError(t, client.Ping(context.Background()))
	assert.NoError(t, client.Close())
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(Disabled(), "test")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var dest map[string]int
	found, err := cache.Get(ctx, "k", &dest)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Delete(ctx, "k"))
}

func TestKeys(t *testing.T) {
	cache := NewCache(Disabled(), "clientwatch")
	assert.Equal(t, "clientwatch:cache:report:2026-10-18", cache.Key(ReportKey("2026-10-18")))
	assert.Equal(t, "clientwatch:cache:report:latest", cache.Key(LatestReportKey))
}

func TestCache_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	host := os.Getenv("TEST_REDIS_HOST")
	if host == "" {
		t.Skip("TEST_REDIS_HOST not set, skipping integration test")
	}

	ctx := context.Background()
	client, err := New(ctx, config.RedisConfig{Enabled: true, Host: host, Port: "6379"})
	require.NoError(t, err)
	defer client.Close()

	cache := NewCache(client, "clientwatch-test")
	type payload struct {
		Count int `json:"count"`
	}

	require.NoError(t, cache.Set(ctx, "rt", payload{Count: 3}, time.Minute))
	var got payload
	found, err := cache.Get(ctx, "rt", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3, got.Count)

	require.NoError(t, cache.Delete(ctx, "rt"))
	found, err = cache.Get(ctx, "rt", &got)
	require.NoError(t, err)
	assert.False(t, found)
}
