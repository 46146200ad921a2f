package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	rd "github.com/redis/go-redis/v9"
)

// ReportCache 分析报表缓存：
// - 值为 JSON，键里带代数，Invalidate 只需 INCR 代数；
// - 旧代数的键靠 TTL 过期，不做扫描删除。
type ReportCache struct {
	rdb *rd.Client
	ttl time.Duration
}

func NewReportCache(rdb *rd.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{rdb: rdb, ttl: ttl}
}

func (c *ReportCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, ReportGenerationKey()).Int64()
	if errors.Is(err, rd.Nil) {
		return 0, nil
	}
	return gen, err
}

// Load 命中时解码到 dest 并返回 true。
func (c *ReportCache) Load(ctx context.Context, report string, dest any) (bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return false, err
	}
	raw, err := c.rdb.Get(ctx, ReportKey(gen, report)).Bytes()
	if errors.Is(err, rd.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *ReportCache) Store(ctx context.Context, report string, v any) error {
	gen, err := c.generation(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, ReportKey(gen, report), raw, c.ttl).Err()
}

// Invalidate drops every cached report at once.
func (c *ReportCache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, ReportGenerationKey()).Err()
}
