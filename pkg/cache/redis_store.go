package cache

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/willf/bloom"
)

const (
	// DefaultTTLJitterPercent 在基础 TTL 上增加 0% 到 10% 的随机时间，
	// 避免同一批写入的键同时过期（缓存雪崩）。
	DefaultTTLJitterPercent = 0.1
)

// redisStore 基于 go-redis 实现 Store 接口。
// 内置一个进程内 Bloom Filter 记录本实例写入过的键：
// 对确定未写入过的键直接返回 ErrNotFound，省掉一次网络往返（缓存穿透防护）。
// Bloom Filter 不跨实例复制，误判方向是"多查一次 Redis/回源"，不影响正确性。
type redisStore struct {
	client *redis.Client
	prefix string

	mu     sync.RWMutex
	filter *bloom.BloomFilter
}

// NewRedisStore 创建一个新的 Redis Store 实例。
// prefix 用于隔离不同应用/测试的键空间；
// estimatedKeys 和 fpRate 是 Bloom Filter 的容量与误判率参数。
func NewRedisStore(client *redis.Client, prefix string, estimatedKeys uint, fpRate float64) (Store, error) {
	if client == nil {
		return nil, errors.New("cache: redis client cannot be nil")
	}
	if estimatedKeys == 0 {
		estimatedKeys = 100000
	}
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = 0.01
	}
	return &redisStore{
		client: client,
		prefix: prefix,
		filter: bloom.NewWithEstimates(estimatedKeys, fpRate),
	}, nil
}

func (s *redisStore) key(k string) string {
	return s.prefix + k
}

// markWritten 把键记入 Bloom Filter。
func (s *redisStore) markWritten(key string) {
	s.mu.Lock()
	s.filter.AddString(key)
	s.mu.Unlock()
}

// definitelyMissing 判断键是否确定从未被本实例写入。
func (s *redisStore) definitelyMissing(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.filter.TestString(key)
}

func (s *redisStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	k := s.key(key)
	if s.definitelyMissing(k) {
		return nil, ErrNotFound
	}
	fields, err := s.client.HGetAll(ctx, k).Result()
	if err != nil {
		return nil, fmt.Errorf("cache: redis hgetall failed for key %s: %w", k, err)
	}
	// HGetAll 对不存在的键返回空 map 而不是 redis.Nil
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return fields, nil
}

func (s *redisStore) HSetAll(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error {
	k := s.key(key)
	args := make([]any, 0, len(fields)*2)
	for f, v := range fields {
		args = append(args, f, v)
	}
	// 先删后写，保证整体覆盖：残留的旧字段不允许"合并"进新记录
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, k)
	pipe.HSet(ctx, k, args...)
	pipe.Expire(ctx, k, addJitter(ttl))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache: redis hset failed for key %s: %w", k, err)
	}
	s.markWritten(k)
	return nil
}

func (s *redisStore) SAdd(ctx context.Context, key string, ttl time.Duration, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	k := s.key(key)
	vals := make([]any, len(members))
	for i, m := range members {
		vals[i] = m
	}
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, k, vals...)
	pipe.Expire(ctx, k, addJitter(ttl))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache: redis sadd failed for key %s: %w", k, err)
	}
	s.markWritten(k)
	return nil
}

func (s *redisStore) SRem(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	k := s.key(key)
	vals := make([]any, len(members))
	for i, m := range members {
		vals[i] = m
	}
	if err := s.client.SRem(ctx, k, vals...).Err(); err != nil {
		return fmt.Errorf("cache: redis srem failed for key %s: %w", k, err)
	}
	return nil
}

func (s *redisStore) SMembers(ctx context.Context, key string) ([]string, error) {
	k := s.key(key)
	if s.definitelyMissing(k) {
		return nil, ErrNotFound
	}
	members, err := s.client.SMembers(ctx, k).Result()
	if err != nil {
		return nil, fmt.Errorf("cache: redis smembers failed for key %s: %w", k, err)
	}
	if len(members) == 0 {
		return nil, ErrNotFound
	}
	return members, nil
}

func (s *redisStore) Get(ctx context.Context, key string) (string, error) {
	k := s.key(key)
	if s.definitelyMissing(k) {
		return "", ErrNotFound
	}
	val, err := s.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	} else if err != nil {
		return "", fmt.Errorf("cache: redis get failed for key %s: %w", k, err)
	}
	return val, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	k := s.key(key)
	if err := s.client.Set(ctx, k, value, addJitter(ttl)).Err(); err != nil {
		return fmt.Errorf("cache: redis set failed for key %s: %w", k, err)
	}
	s.markWritten(k)
	return nil
}

func (s *redisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ks := make([]string, len(keys))
	for i, key := range keys {
		ks[i] = s.key(key)
	}
	// 键不存在时 Del 也会成功返回，无需特判 redis.Nil
	if err := s.client.Del(ctx, ks...).Err(); err != nil {
		return fmt.Errorf("cache: redis del failed: %w", err)
	}
	return nil
}

// addJitter 为 TTL 增加随机偏移，防止缓存雪崩。
func addJitter(baseTTL time.Duration) time.Duration {
	if baseTTL <= 0 {
		return baseTTL
	}
	jitter := time.Duration(rand.Float64() * DefaultTTLJitterPercent * float64(baseTTL))
	return baseTTL + jitter
}

var _ Store = (*redisStore)(nil)
