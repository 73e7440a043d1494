package ratelimit

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sliding window over a sorted set: drop entries older than the window,
// record the hit, count what remains. One script run keeps the sequence
// atomic across instances.
const slidingWindowLua = `
redis.call("ZREMRANGEBYSCORE", KEYS[1], 0, ARGV[1])
redis.call("ZADD", KEYS[1], ARGV[2], ARGV[3])
local count = redis.call("ZCARD", KEYS[1])
redis.call("PEXPIRE", KEYS[1], ARGV[4])
return count
`

// RedisCounter is a shared Counter for multi-instance deployments.
type RedisCounter struct {
	rdb    *redis.Client
	prefix string
	script *redis.Script
	seq    atomic.Int64
}

// NewRedisCounter constructs a redis-backed sliding-window counter.
func NewRedisCounter(rdb *redis.Client) *RedisCounter {
	return &RedisCounter{
		rdb:    rdb,
		prefix: "campusmart:ratelimit:",
		script: redis.NewScript(slidingWindowLua),
	}
}

// Incr records a hit and returns the in-window count for the key.
func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	now := time.Now()
	windowStart := now.Add(-window).UnixMilli()
	member := fmt.Sprintf("%d-%d", now.UnixNano(), c.seq.Add(1))

	count, err := c.script.Run(ctx, c.rdb,
		[]string{c.prefix + key},
		windowStart, now.UnixMilli(), member, window.Milliseconds(),
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("ratelimit eval: %w", err)
	}
	return count, nil
}
