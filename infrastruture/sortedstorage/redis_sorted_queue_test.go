package sortedstorage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// redisClient connects to REDIS_TEST_ADDR and skips the test when it is not set.
func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewRedisSortedQueueRequiresClient(t *testing.T) {
	_, err := NewRedisSortedQueue(nil, 10)
	assert.ErrorIs(t, err, ErrNilClient)
}

func TestRedisSortedQueue(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()
	key := "test:queue:" + uuid.NewString()
	t.Cleanup(func() { client.Del(ctx, key) })

	q, err := NewRedisSortedQueue(client, 30)
	require.NoError(t, err)

	require.NoError(t, q.Enqueue(ctx, key, 2, "second"))
	require.NoError(t, q.Enqueue(ctx, key, 1, "first"))
	assert.Equal(t, int64(2), q.Count(ctx, key))

	ttl, err := client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	members, err := q.DequeTops(ctx, key, 3)
	require.NoError(t, err)
	assert.Empty(t, members, "nothing is popped from a short queue")

	members, err = q.DequeTops(ctx, key, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, members)
	assert.Zero(t, q.Count(ctx, key))
}
