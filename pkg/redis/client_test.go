package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Client) {
	mr := miniredis.RunT(t)

	client, err := NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestNewClient_InvalidURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "Invalid scheme", url: "invalid://url"},
		{name: "Empty URL", url: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.url, "test", nil)
			assert.Error(t, err)
			assert.Nil(t, client)
		})
	}
}

func TestClient_GetSet(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "test:key1", "value1", time.Minute))
	val, err := client.Get(ctx, "test:key1")
	require.NoError(t, err)
	assert.Equal(t, "value1", val)
	assert.Greater(t, mr.TTL("test:key1"), time.Duration(0))

	_, err = client.Get(ctx, "test:missing")
	assert.ErrorIs(t, err, Nil)
}

func TestClient_SetNX(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	ok, err := client.SetNX(ctx, "test:lock", "1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.SetNX(ctx, "test:lock", "1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_DeleteAndExists(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	mr.Set("test:a", "1")
	mr.Set("test:b", "2")

	n, err := client.Exists(ctx, "test:a", "test:b", "test:c")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, client.Delete(ctx, "test:a", "test:c"))
	assert.False(t, mr.Exists("test:a"))
	assert.True(t, mr.Exists("test:b"))
}

func TestClient_IncrWindow(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	count, ttl, err := client.IncrWindow(ctx, "test:counter", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, time.Hour, ttl)

	mr.FastForward(10 * time.Minute)

	count, ttl, err = client.IncrWindow(ctx, "test:counter", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, 50*time.Minute, ttl)

	mr.FastForward(time.Hour)
	count, _, err = client.IncrWindow(ctx, "test:counter", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestClient_Expire(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	mr.Set("test:expire", "v")
	require.NoError(t, client.Expire(ctx, "test:expire", time.Hour))
	assert.Equal(t, time.Hour, mr.TTL("test:expire"))
}

func TestClient_InvalidatePattern(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	mr.Set("local:dashboard:org:o1:g0", "a")
	mr.Set("local:dashboard:org:o1:g0:team:t1", "b")
	mr.Set("local:dashboard:org:o1:g0:team:t2", "b")
	mr.Set("local:dashboard:org:o1:g1:team:t1", "c")

	require.NoError(t, client.InvalidatePattern(ctx, client.KeyBuilder.KeyTeamDashboards("o1", 0)))

	assert.True(t, mr.Exists("local:dashboard:org:o1:g0"))
	assert.False(t, mr.Exists("local:dashboard:org:o1:g0:team:t1"))
	assert.False(t, mr.Exists("local:dashboard:org:o1:g0:team:t2"))
	assert.True(t, mr.Exists("local:dashboard:org:o1:g1:team:t1"))
}

func TestClient_Pipeline(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	pipe := client.Pipeline()
	pipe.Set(ctx, "test:pipe1", "value1", time.Minute)
	pipe.Incr(ctx, "test:counter")

	cmds, err := pipe.Exec(ctx)
	require.NoError(t, err)
	assert.Len(t, cmds, 2)

	val, _ := mr.Get("test:pipe1")
	assert.Equal(t, "value1", val)
}

func TestClient_Health(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	assert.NoError(t, client.Health(ctx))

	mr.Close()
	assert.Error(t, client.Health(ctx))
}

func TestPrefixForLog(t *testing.T) {
	assert.Equal(t, "short", prefixForLog("short"))
	assert.Equal(t, "prod:dashboard:org:01234…", prefixForLog("prod:dashboard:org:0123456789"))
}
