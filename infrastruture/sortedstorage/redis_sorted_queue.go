package sortedstorage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-haunt/service/i"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const (
	lockSuffix = ":match_lock"
	lockExpiry = 2 * time.Second
	lockTries  = 8
)

var (
	ErrNilClient = errors.New("redis client is nil")
)

// RedisSortedQueue manages a sorted queue in Redis with TTL support.
type RedisSortedQueue struct {
	client *redis.Client
	locker *redsync.Redsync
	ttl    time.Duration
}

// NewRedisSortedQueue initializes a RedisSortedQueue with the provided Redis client and TTL.
func NewRedisSortedQueue(client *redis.Client, ttlSeconds int) (i.SortedQueue, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	queue := &RedisSortedQueue{
		client: client,
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}
	pool := goredis.NewPool(client)
	queue.locker = redsync.New(pool)
	return queue, nil
}

// Enqueue adds a member to the sorted queue with a given score and sets expiration if necessary.
func (rsq *RedisSortedQueue) Enqueue(ctx context.Context, queueKey string, score float64, member string) error {
	if err := rsq.client.ZAdd(ctx, queueKey, redis.Z{Score: score, Member: member}).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", queueKey, err)
	}

	// Set expiration only if it's not already set
	ttl, err := rsq.client.TTL(ctx, queueKey).Result()
	if err == nil && ttl == -1 && rsq.ttl > 0 {
		_ = rsq.client.Expire(ctx, queueKey, rsq.ttl).Err()
	}

	return nil
}

// DequeTops removes and retrieves `amount` members with the lowest scores.
// Nothing is removed while fewer than `amount` members are queued.
func (rsq *RedisSortedQueue) DequeTops(ctx context.Context, queueKey string, amount int64) ([]string, error) {
	mutex := rsq.locker.NewMutex(queueKey+lockSuffix, redsync.WithExpiry(lockExpiry), redsync.WithTries(lockTries))
	if err := mutex.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("locking %s: %w", queueKey, err)
	}
	defer func() {
		_, _ = mutex.UnlockContext(ctx)
	}()

	count, err := rsq.client.ZCard(ctx, queueKey).Result()
	if err != nil {
		return nil, err
	}
	if count < amount {
		return nil, nil
	}

	popped, err := rsq.client.ZPopMin(ctx, queueKey, amount).Result()
	if err != nil {
		return nil, err
	}

	members := make([]string, 0, len(popped))
	for _, p := range popped {
		if m, ok := p.Member.(string); ok {
			members = append(members, m)
		}
	}
	return members, nil
}

// Count returns the number of members in the sorted queue.
func (rsq *RedisSortedQueue) Count(ctx context.Context, queueKey string) int64 {
	return rsq.client.ZCard(ctx, queueKey).Val()
}
