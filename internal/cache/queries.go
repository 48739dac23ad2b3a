package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Queries is the read-through cache and invalidation surface used by services.
// Keys are grouped: invalidating "users:list" also drops every "users:list:*".
// Every invalidation bumps the group generation; Set only stores a value
// loaded under the generation that is still current.
type Queries interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Generation(ctx context.Context, key string) int64
	Set(ctx context.Context, key string, value []byte, gen int64)
	Invalidate(ctx context.Context, keys ...string)
}

// Broadcaster tells connected clients which query keys went stale
type Broadcaster interface {
	PublishInvalidation(ctx context.Context, keys []string) error
}

// Remember returns the cached value for key, or loads, stores and returns it
func Remember[T any](ctx context.Context, q Queries, key string, load func() (T, error)) (T, error) {
	gen := q.Generation(ctx, key)
	if raw, ok := q.Get(ctx, key); ok {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	if raw, err := json.Marshal(v); err == nil {
		q.Set(ctx, key, raw, gen)
	}
	return v, nil
}

// Key builds a member key of group from arbitrary query parameters
func Key(group string, params any) string {
	raw, _ := json.Marshal(params)
	sum := sha1.Sum(raw)
	return fmt.Sprintf("%s:%s", group, hex.EncodeToString(sum[:8]))
}

// groupOf strips the parameter hash Key appends, if any
func groupOf(key string) string {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) < 3 {
		return key
	}
	return parts[0] + ":" + parts[1]
}

// setIfCurrent writes KEYS[2] only while the generation in KEYS[1] equals ARGV[1]
var setIfCurrent = redis.NewScript(`
local gen = redis.call('GET', KEYS[1]) or '0'
if gen ~= ARGV[1] then
	return 0
end
if ARGV[3] == '0' then
	redis.call('SET', KEYS[2], ARGV[2])
else
	redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
end
return 1
`)

// RedisQueries stores query results in Redis and broadcasts invalidations
type RedisQueries struct {
	rdb         *redis.Client
	ttl         time.Duration
	prefix      string
	broadcaster Broadcaster
	logger      *logrus.Entry
}

// NewRedisQueries creates a Redis backed query cache. broadcaster may be nil.
func NewRedisQueries(rdb *redis.Client, ttl time.Duration, broadcaster Broadcaster, logger *logrus.Entry) *RedisQueries {
	return &RedisQueries{
		rdb:         rdb,
		ttl:         ttl,
		prefix:      "peo:q:",
		broadcaster: broadcaster,
		logger:      logger.WithField("component", "query-cache"),
	}
}

// Get returns the raw cached value
func (q *RedisQueries) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := q.rdb.Get(ctx, q.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		q.logger.WithError(err).Warnf("cache get %s failed", key)
		return nil, false
	}
	return raw, true
}

func (q *RedisQueries) genKey(key string) string {
	return q.prefix + "gen:" + groupOf(key)
}

// Generation returns the current invalidation count of key's group, or -1
// when it cannot be read
func (q *RedisQueries) Generation(ctx context.Context, key string) int64 {
	gen, err := q.rdb.Get(ctx, q.genKey(key)).Int64()
	if err == redis.Nil {
		return 0
	}
	if err != nil {
		q.logger.WithError(err).Warnf("cache generation %s failed", key)
		return -1
	}
	return gen
}

// Set stores value with the configured TTL unless the group was invalidated
// after gen was read
func (q *RedisQueries) Set(ctx context.Context, key string, value []byte, gen int64) {
	if gen < 0 {
		return
	}
	keys := []string{q.genKey(key), q.prefix + key}
	stored, err := setIfCurrent.Run(ctx, q.rdb, keys, gen, value, q.ttl.Milliseconds()).Int()
	if err != nil {
		q.logger.WithError(err).Warnf("cache set %s failed", key)
		return
	}
	if stored == 0 {
		q.logger.Debugf("cache set %s skipped, group invalidated during load", key)
	}
}

// Invalidate drops each key group independently, then broadcasts the keys once.
// Failures are logged; the mutation that triggered them has already committed.
func (q *RedisQueries) Invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := q.dropGroup(ctx, key); err != nil {
			q.logger.WithError(err).Warnf("cache invalidate %s failed", key)
		}
	}

	if q.broadcaster != nil && len(keys) > 0 {
		if err := q.broadcaster.PublishInvalidation(ctx, keys); err != nil {
			q.logger.WithError(err).Warn("failed to broadcast invalidation")
		}
	}
}

func (q *RedisQueries) dropGroup(ctx context.Context, group string) error {
	if err := q.rdb.Incr(ctx, q.genKey(group)).Err(); err != nil {
		return err
	}
	if err := q.rdb.Del(ctx, q.prefix+group).Err(); err != nil {
		return err
	}

	iter := q.rdb.Scan(ctx, 0, q.prefix+group+":*", 200).Iterator()
	batch := make([]string, 0, 200)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := q.rdb.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return q.rdb.Del(ctx, batch...).Err()
	}
	return nil
}

// Nop never caches; invalidations still reach the broadcaster
type Nop struct {
	Broadcaster Broadcaster
}

func (Nop) Get(context.Context, string) ([]byte, bool) { return nil, false }

func (Nop) Generation(context.Context, string) int64 { return 0 }

func (Nop) Set(context.Context, string, []byte, int64) {}

func (n Nop) Invalidate(ctx context.Context, keys ...string) {
	if n.Broadcaster != nil && len(keys) > 0 {
		_ = n.Broadcaster.PublishInvalidation(ctx, keys)
	}
}
