// Package redis 当日收支汇总的读缓存实现
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmendieta2311/odonto-app-sub000/internal/cashledger/domain"
	"github.com/redis/go-redis/v9"
)

// SummaryRedisCache 当日汇总缓存。写路径在每笔流水落库后失效当天键。
type SummaryRedisCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewSummaryRedisCache 创建汇总缓存
func NewSummaryRedisCache(client redis.UniversalClient) *SummaryRedisCache {
	return &SummaryRedisCache{
		client: client,
		prefix: "cashledger:summary:",
		ttl:    10 * time.Minute,
	}
}

func (c *SummaryRedisCache) key(tenantID, day string) string {
	return c.prefix + tenantID + ":" + day
}

func (c *SummaryRedisCache) Get(ctx context.Context, tenantID, day string) (*domain.DaySummary, error) {
	data, err := c.client.Get(ctx, c.key(tenantID, day)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get summary from redis: %w", err)
	}
	var s domain.DaySummary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	return &s, nil
}

func (c *SummaryRedisCache) Set(ctx context.Context, tenantID, day string, s domain.DaySummary) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	return c.client.Set(ctx, c.key(tenantID, day), data, c.ttl).Err()
}

func (c *SummaryRedisCache) Invalidate(ctx context.Context, tenantID, day string) error {
	return c.client.Del(ctx, c.key(tenantID, day)).Err()
}
