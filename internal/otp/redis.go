package otp

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/campusmart/internal/apperrors"
)

// Compare-and-delete in a single script so a racing Consume or Put never
// observes a half-consumed code. Redis key TTL carries the expiry.
const consumeLua = `
local stored = redis.call("GET", KEYS[1])
if not stored then
  return 0
end
if stored == ARGV[1] then
  redis.call("DEL", KEYS[1])
  return 1
end
return 0
`

// RedisStore is a shared Store for multi-instance deployments.
type RedisStore struct {
	rdb     *redis.Client
	prefix  string
	consume *redis.Script
}

// NewRedisStore constructs a redis-backed code store.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{
		rdb:     rdb,
		prefix:  "campusmart:otp:",
		consume: redis.NewScript(consumeLua),
	}
}

// Put overwrites the pair's key, superseding any prior code, with the
// remaining lifetime as the key TTL.
func (s *RedisStore) Put(ctx context.Context, code Code) error {
	ttl := time.Until(code.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("otp: code already expired")
	}

	key := s.prefix + storeKey(code.Identifier, code.Channel)
	if err := s.rdb.Set(ctx, key, code.Value, ttl).Err(); err != nil {
		return fmt.Errorf("otp: store code: %w", err)
	}
	return nil
}

// Consume runs the compare-and-delete script; exactly one caller can win.
func (s *RedisStore) Consume(ctx context.Context, identifier string, channel Channel, value string) error {
	key := s.prefix + storeKey(identifier, channel)
	res, err := s.consume.Run(ctx, s.rdb, []string{key}, value).Int()
	if err != nil {
		return fmt.Errorf("otp: consume code: %w", err)
	}
	if res != 1 {
		return apperrors.ErrOTPInvalidOrExpired
	}
	return nil
}
