package ratelimit

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix is the key prefix used when none is configured.
const DefaultRedisPrefix = "uigen:rl"

// redisWindowScript trims expired members, counts the rest and admits when below the limit.
// ARGV: now, exclusive cutoff, limit, ttl in milliseconds, member.
var redisWindowScript = redis.NewScript(`
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", "(" .. ARGV[2])
local count = redis.call("ZCARD", KEYS[1])
if count >= tonumber(ARGV[3]) then
  return 0
end
redis.call("ZADD", KEYS[1], ARGV[1], ARGV[5])
redis.call("PEXPIRE", KEYS[1], ARGV[4])
return 1
`)

// RedisStore implements a trailing-window limiter backed by a Redis sorted set per key.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	policy Policy
}

// NewRedisStore constructs a RedisStore.
func NewRedisStore(client redis.UniversalClient, prefix string, policy Policy) *RedisStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		policy: policy,
	}
}

// Backend reports BackendRedis.
func (s *RedisStore) Backend() Backend { return BackendRedis }

// Allow runs the window script atomically on the server.
func (s *RedisStore) Allow(ctx context.Context, key string, now time.Time) (bool, error) {
	if s == nil || s.client == nil {
		return false, unavailable(BackendRedis, errors.New("nil client"))
	}
	ts := unixSeconds(now)
	res, errEval := redisWindowScript.Run(ctx, s.client, []string{s.buildKey(key)},
		formatScore(ts),
		formatScore(s.policy.cutoff(ts)),
		s.policy.Requests,
		s.policy.Window.Milliseconds(),
		formatScore(ts)+"-"+uuid.NewString(),
	).Int64()
	if errEval != nil {
		return false, unavailable(BackendRedis, errEval)
	}
	return res == 1, nil
}

// Ping checks that the Redis server answers.
func (s *RedisStore) Ping(ctx context.Context) error {
	if s == nil || s.client == nil {
		return errors.New("rate limit redis: nil client")
	}
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *RedisStore) buildKey(key string) string {
	return s.prefix + ":" + key
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
