package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a Redis-backed TTL cache in front of another Gateway. Cache
// failures degrade to the upstream provider and never fail a lookup on
// their own.
type Cache struct {
	next Gateway
	rdb  *redis.Client
	ttl  time.Duration
	log  *slog.Logger
}

func NewCache(next Gateway, rdb *redis.Client, ttl time.Duration, log *slog.Logger) *Cache {
	return &Cache{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
		log:  log,
	}
}

func (c *Cache) Lookup(ctx context.Context, symbol string) (*Quote, error) {
	key := "quote:" + strings.ToUpper(strings.TrimSpace(symbol))

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var quote Quote
		if err := json.Unmarshal(data, &quote); err == nil {
			return &quote, nil
		}
		c.log.Warn("discarding corrupt cached quote", "key", key)
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("quote cache read failed", "key", key, "error", err)
	}

	quote, err := c.next.Lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(quote); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.log.Warn("quote cache write failed", "key", key, "error", err)
		}
	}

	return quote, nil
}
