package infra

import (
	"context"
	"encoding/json"
	"time"

	"agartpos/internal/dto"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const productKeyPrefix = "cache:product:"

// ProductCache is a read-through cache for product lookups. Cache failures are
// never surfaced: a broken Redis degrades to direct database reads.
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProductCache(rdb *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{rdb: rdb, ttl: ttl}
}

func (c *ProductCache) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, bool) {
	raw, err := c.rdb.Get(ctx, productKeyPrefix+id.String()).Bytes()
	if err != nil {
		return nil, false
	}
	var resp dto.ProductResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

func (c *ProductCache) Set(ctx context.Context, id uuid.UUID, resp *dto.ProductResponse) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, productKeyPrefix+id.String(), raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("product_id", id.String()).Msg("product cache set failed")
	}
}

func (c *ProductCache) Invalidate(ctx context.Context, id uuid.UUID) {
	if err := c.rdb.Del(ctx, productKeyPrefix+id.String()).Err(); err != nil {
		log.Warn().Err(err).Str("product_id", id.String()).Msg("product cache invalidation failed")
	}
}
