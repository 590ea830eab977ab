package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/crediplus/crediplus-api/pkg/logger"
)

const slipCacheKey = "registry:deposit-slips"

// CachedSlipSource wraps a SlipSource with a Redis cache. The registry only
// exposes a full-collection endpoint, so the whole collection is cached and
// looked up locally.
type CachedSlipSource struct {
	source SlipSource
	client *redis.Client
	ttl    time.Duration
}

// NewCachedSlipSource creates a cached slip source with the given TTL
func NewCachedSlipSource(source SlipSource, client *redis.Client, ttl time.Duration) *CachedSlipSource {
	return &CachedSlipSource{
		source: source,
		client: client,
		ttl:    ttl,
	}
}

// FindAll returns the cached collection, falling back to the registry on miss.
// Cache read or write failures degrade to a direct registry call.
func (c *CachedSlipSource) FindAll(ctx context.Context) ([]DepositSlip, error) {
	if c.client != nil {
		data, err := c.client.Get(ctx, slipCacheKey).Bytes()
		if err == nil {
			var slips []DepositSlip
			if err := json.Unmarshal(data, &slips); err == nil {
				return slips, nil
			}
		} else if err != redis.Nil {
			logger.Warn("Slip cache read failed", "error", err)
		}
	}

	slips, err := c.source.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	c.store(ctx, slips)
	return slips, nil
}

// Refresh re-fetches the collection from the registry and replaces the cache
func (c *CachedSlipSource) Refresh(ctx context.Context) error {
	slips, err := c.source.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("refresh slip cache: %w", err)
	}
	c.store(ctx, slips)
	return nil
}

func (c *CachedSlipSource) store(ctx context.Context, slips []DepositSlip) {
	if c.client == nil {
		return
	}
	data, err := json.Marshal(slips)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, slipCacheKey, data, c.ttl).Err(); err != nil {
		logger.Warn("Slip cache write failed", "error", err)
	}
}

// Invalidate drops the cached collection
func (c *CachedSlipSource) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, slipCacheKey).Err()
}
