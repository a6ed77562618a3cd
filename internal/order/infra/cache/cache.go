package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dwikikusuma/nomino/internal/order/app"
	"github.com/dwikikusuma/nomino/internal/order/domain"
)

type OrderCache struct {
	client  redis.UniversalClient
	baseTTL time.Duration
}

func NewOrderCache(client redis.UniversalClient, ttl time.Duration) *OrderCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &OrderCache{client: client, baseTTL: ttl}
}

var _ app.OrderCache = (*OrderCache)(nil)

func (c *OrderCache) Get(ctx context.Context, orderID string) (domain.Order, error) {
	data, err := c.client.Get(ctx, cacheKey(orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Order{}, app.ErrCacheMiss
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("redis get failed: %w", err)
	}

	var o domain.Order
	if err := json.Unmarshal(data, &o); err != nil {
		return domain.Order{}, fmt.Errorf("unmarshal order failed: %w", err)
	}
	return o, nil
}

// versionTTL outlives any in-flight fill.
const versionTTL = 24 * time.Hour

var errStaleFill = errors.New("order changed since version was read")

func (c *OrderCache) Version(ctx context.Context, orderID string) (int64, error) {
	v, err := c.client.Get(ctx, versionKey(orderID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get version failed: %w", err)
	}
	return v, nil
}

// Set writes o under WATCH on the version key and skips the write when
// Delete bumped the version after it was read. Expiry is spread over an
// extra fifth of the base TTL.
func (c *OrderCache) Set(ctx context.Context, o domain.Order, version int64) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal order failed: %w", err)
	}
	ttl := c.baseTTL + time.Duration(rand.Int64N(int64(c.baseTTL/5)+1))

	vKey := versionKey(o.ID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, vKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStaleFill
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, cacheKey(o.ID), data, ttl)
			return nil
		})
		return err
	}, vKey)

	switch {
	case err == nil, errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		return nil
	default:
		return fmt.Errorf("redis set failed: %w", err)
	}
}

// Delete drops the cached copy and bumps the version so fills that read the
// old version are discarded.
func (c *OrderCache) Delete(ctx context.Context, orderID string) error {
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, cacheKey(orderID))
		p.Incr(ctx, versionKey(orderID))
		p.Expire(ctx, versionKey(orderID), versionTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(orderID string) string {
	return "order:" + orderID
}

func versionKey(orderID string) string {
	return "order:" + orderID + ":version"
}
