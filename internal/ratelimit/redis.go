package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "taskboard:ratelimit:"

// slidingWindowScript trims entries older than the window, then admits the
// request only while the remaining count is below the rate.
var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local window_start = tonumber(ARGV[1])
	local now = tonumber(ARGV[2])
	local rate = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])
	local member = ARGV[5]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	if redis.call('ZCARD', key) >= rate then
		return 0
	end

	redis.call('ZADD', key, now, member)
	redis.call('PEXPIRE', key, window_ms)
	return 1
`)

// RedisLimiter is a sliding window limiter shared by every server instance.
type RedisLimiter struct {
	client    redis.Cmdable
	keyPrefix string
	rate      int
	period    time.Duration
}

// NewRedisLimiter allows rate requests per key in any period-long window.
func NewRedisLimiter(client redis.Cmdable, rate int, period time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		rate:      rate,
		period:    period,
	}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now()
	member := fmt.Sprintf("%d:%s", now.UnixMicro(), uuid.NewString())

	result, err := slidingWindowScript.Run(ctx, r.client, []string{r.keyPrefix + key},
		now.Add(-r.period).UnixMicro(),
		now.UnixMicro(),
		r.rate,
		r.period.Milliseconds(),
		member,
	).Int()
	if err != nil {
		return false, fmt.Errorf("redis rate limit script failed: %w", err)
	}

	return result == 1, nil
}

// Close is a no-op; the client is owned by the caller.
func (r *RedisLimiter) Close() error {
	return nil
}
