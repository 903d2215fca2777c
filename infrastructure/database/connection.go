package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"go.uber.org/zap"

	"bookwall/pkg/config"
)

// InitPostgres 初始化 PostgreSQL 连接池并校验连通性。
// 返回创建好的 bun.DB 实例，如果初始化失败则返回错误。
func InitPostgres(cfg config.PostgresConfig, logger *zap.Logger) (*bun.DB, error) {
	sqldb, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("无法打开 PostgreSQL 连接: %w", err)
	}
	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("无法连接到 PostgreSQL: %w", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())
	logger.Info("成功连接到 PostgreSQL")
	return db, nil
}

// InitRedis 初始化 Redis 客户端连接。
func InitRedis(cfg config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("无法连接到 Redis (%s): %w", cfg.Addr, err)
	}

	logger.Info("成功连接到 Redis", zap.String("addr", cfg.Addr))
	return rdb, nil
}
