package cache

import (
	"context"
	"time"
)

// Store 定义缓存仓库使用的键值存储操作面。
// 三类结构对应三种用途：
//   - Hash：实体主记录（字段名 → 字符串值的扁平记录）
//   - Set：成员集合（全量主键集合、读者未归还借阅集合）
//   - String：二级索引（二级属性 → 主键）
//
// 所有键都带 TTL；过期后读取应返回 ErrNotFound，视作普通未命中。
// 实现不需要提供任何多键事务保证。
type Store interface {
	// HGetAll 读取一条哈希记录。键不存在或已过期时返回 ErrNotFound。
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// HSetAll 整体覆盖写入一条哈希记录并设置 TTL。
	// 覆盖语义：旧记录的全部字段被替换，不做字段级合并。
	HSetAll(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error

	// SAdd 向集合追加成员并刷新集合键的 TTL。
	SAdd(ctx context.Context, key string, ttl time.Duration, members ...string) error

	// SRem 从集合移除成员。集合或成员不存在时静默成功。
	SRem(ctx context.Context, key string, members ...string) error

	// SMembers 返回集合全部成员。键不存在或已过期时返回 ErrNotFound。
	SMembers(ctx context.Context, key string) ([]string, error)

	// Get 读取一个字符串键。键不存在或已过期时返回 ErrNotFound。
	Get(ctx context.Context, key string) (string, error)

	// Set 写入一个字符串键并设置 TTL。
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Del 删除若干键。键不存在时静默成功。
	Del(ctx context.Context, keys ...string) error
}
