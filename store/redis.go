// Package store provides storage backends for
// github.com/corvusdev/admitgate.
//
// RedisStore is the distributed backend: it pushes the sliding-window
// prune+count+insert+expire sequence into a single Lua script so that
// concurrent admissions across any number of replicas observe one
// consistent, serialized view of each WindowLog. MemoryStore is a
// single-process backend with the same contract, used for local
// development and tests.
package store

import (
	"context"
	"strconv"
	"time"

	admitgate "github.com/corvusdev/admitgate"
	"github.com/redis/go-redis/v9"
)

// evaluateWindowLua implements admitgate.Store.EvaluateWindow atomically:
//   - ZREMRANGEBYSCORE removes every member scored in [0, windowStart],
//     a closed-open window on the leading edge (spec §4.3 step 3).
//   - ZCARD after the prune is the pre-admission count.
//   - If count < points, ZADD the candidate at score=now and PEXPIRE the
//     key to the rule's (duration+1)s TTL.
//   - ZRANGE WITHSCORES 0 0 reports the oldest surviving member's score,
//     or "now" (ARGV[2]) when the set is empty.
const evaluateWindowLua = `
local key = KEYS[1]
local windowStart = tonumber(ARGV[1])
local now = tonumber(ARGV[2])
local points = tonumber(ARGV[3])
local member = ARGV[4]
local ttlMs = tonumber(ARGV[5])

redis.call("ZREMRANGEBYSCORE", key, 0, windowStart)
local count = redis.call("ZCARD", key)

if count < points then
	redis.call("ZADD", key, now, member)
	redis.call("PEXPIRE", key, ttlMs)
end

local oldest = redis.call("ZRANGE", key, 0, 0, "WITHSCORES")
local oldestScore = now
if #oldest > 0 then
	oldestScore = tonumber(oldest[2])
end

return {count, oldestScore}
`

// RedisStore implements admitgate.Store over Redis (or any
// wire-compatible server, including miniredis in tests).
type RedisStore struct {
	client *redis.Client
	script *redis.Script
}

// NewRedis wraps an existing *redis.Client. The client's lifecycle
// (connection pooling, retries) is owned by the caller; RedisStore only
// adds the admission-specific scripted primitive on top.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		script: redis.NewScript(evaluateWindowLua),
	}
}

// Get reads a single string value.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// EvaluateWindow runs the precompiled Lua script for one (ruleIndex,
// clientKey) pair.
func (s *RedisStore) EvaluateWindow(ctx context.Context, key string, windowStartMs, nowMs int64, points int64, member string, ttl time.Duration) (int64, int64, error) {
	res, err := s.script.Run(ctx, s.client, []string{key},
		windowStartMs, nowMs, points, member, ttl.Milliseconds(),
	).Result()
	if err != nil {
		return 0, 0, err
	}

	arr, ok := res.([]interface{})
	if !ok || len(arr) != 2 {
		return 0, 0, errUnexpectedScriptResult
	}

	count, err := toInt64(arr[0])
	if err != nil {
		return 0, 0, err
	}
	oldest, err := toInt64(arr[1])
	if err != nil {
		return 0, 0, err
	}
	return count, oldest, nil
}

// Ping is a liveness probe against the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying Redis connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var errUnexpectedScriptResult = redisScriptResultError{}

type redisScriptResultError struct{}

func (redisScriptResultError) Error() string { return "unexpected evaluateWindow script result shape" }

// toInt64 normalizes the numeric types go-redis may return for a script
// result (int64 directly, or a string when ZRANGE WITHSCORES reports a
// float-formatted score).
func toInt64(v interface{}) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, err
		}
		return int64(f), nil
	default:
		return 0, errUnexpectedScriptResult
	}
}

var _ admitgate.Store = (*RedisStore)(nil)
