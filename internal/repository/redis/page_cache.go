package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const PageCachePrefix = "cache:"

// PageCache 整页缓存，键由调用方按页面身份生成
type PageCache struct {
	RDB *redis.Client
	TTL time.Duration
}

func NewPageCache(rdb *redis.Client, ttl time.Duration) *PageCache {
	return &PageCache{RDB: rdb, TTL: ttl}
}

// Get 第二个返回值表示是否命中
func (c *PageCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.RDB.Get(ctx, PageCachePrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *PageCache) Set(ctx context.Context, key string, val []byte) error {
	return c.RDB.Set(ctx, PageCachePrefix+key, val, c.TTL).Err()
}

// Clear 删除本缓存写入的全部键
func (c *PageCache) Clear(ctx context.Context) error {
	iter := c.RDB.Scan(ctx, 0, PageCachePrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.RDB.Del(ctx, keys...).Err()
}
