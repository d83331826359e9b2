// Package cache keeps per-owner note lists in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "notes:user:"
	genPrefix = "notes:gen:"
)

// setIfGeneration writes the list only while the owner's generation still
// matches the one read before the store was queried. A missing counter is 0.
var setIfGeneration = redis.NewScript(`
local gen = redis.call('GET', KEYS[2])
if not gen then gen = '0' end
if gen ~= ARGV[1] then return 0 end
if tonumber(ARGV[3]) > 0 then
  redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
  redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

// RedisNoteCache stores each owner's note list as one JSON value, next to a
// generation counter that every mutation bumps.
type RedisNoteCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisNoteCache(rdb *redis.Client, ttl time.Duration) *RedisNoteCache {
	return &RedisNoteCache{rdb: rdb, ttl: ttl}
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("error parsing redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func key(userID int64) string {
	return keyPrefix + strconv.FormatInt(userID, 10)
}

func genKey(userID int64) string {
	return genPrefix + strconv.FormatInt(userID, 10)
}

func (c *RedisNoteCache) Get(ctx context.Context, userID int64) ([]models.Note, bool, error) {
	b, err := c.rdb.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var notes []models.Note
	if err := json.Unmarshal(b, &notes); err != nil {
		return nil, false, err
	}
	if notes == nil {
		notes = []models.Note{}
	}
	return notes, true, nil
}

// Generation returns the owner's mutation counter, 0 if none was recorded.
func (c *RedisNoteCache) Generation(ctx context.Context, userID int64) (int64, error) {
	gen, err := c.rdb.Get(ctx, genKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Set stores notes unless the owner's generation moved past gen, and reports
// whether the value was written.
func (c *RedisNoteCache) Set(ctx context.Context, userID, gen int64, notes []models.Note) (bool, error) {
	if notes == nil {
		notes = []models.Note{}
	}
	b, err := json.Marshal(notes)
	if err != nil {
		return false, err
	}

	written, err := setIfGeneration.Run(ctx, c.rdb,
		[]string{key(userID), genKey(userID)},
		strconv.FormatInt(gen, 10), b, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return written == 1, nil
}

// Invalidate bumps the owner's generation and drops the cached list in one
// transaction, so fills that started earlier can no longer write.
func (c *RedisNoteCache) Invalidate(ctx context.Context, userID int64) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey(userID))
		pipe.Del(ctx, key(userID))
		return nil
	})
	return err
}
