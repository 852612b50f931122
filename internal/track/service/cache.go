package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 缓存实体名
const (
	CacheAccounts   = "accounts"
	CacheProducts   = "products"
	CachePlates     = "plates"
	CacheWorkOrders = "work_orders"
)

// ListCache 列表查询缓存
// 每类实体维护一个版本号，写入成功后递增版本使旧键自然失效，
// 读路径只命中当前版本的键，无需加锁
type ListCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewListCache(rdb *redis.Client, ttl time.Duration) *ListCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ListCache{rdb: rdb, ttl: ttl}
}

func (c *ListCache) versionKey(entityName string) string {
	return "cache:ver:" + entityName
}

func (c *ListCache) listKey(ctx context.Context, entityName, querySig string) string {
	ver, err := c.rdb.Get(ctx, c.versionKey(entityName)).Int64()
	if err != nil {
		ver = 0
	}
	return fmt.Sprintf("cache:list:%s:v%d:%s", entityName, ver, querySig)
}

// Get 读取缓存的列表响应，未命中返回nil
func (c *ListCache) Get(ctx context.Context, entityName, querySig string) []byte {
	if c == nil || c.rdb == nil {
		return nil
	}
	data, err := c.rdb.Get(ctx, c.listKey(ctx, entityName, querySig)).Bytes()
	if err != nil {
		return nil
	}
	return data
}

// Set 写入列表响应缓存
func (c *ListCache) Set(ctx context.Context, entityName, querySig string, payload []byte) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Set(ctx, c.listKey(ctx, entityName, querySig), payload, c.ttl)
}

// Invalidate 使某类实体的全部列表缓存失效
// 任何成功的创建/更新/完工/删除都必须调用，保证后续读取不串旧数据
func (c *ListCache) Invalidate(ctx context.Context, entityName string) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Incr(ctx, c.versionKey(entityName))
}
