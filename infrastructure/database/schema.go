package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// schemaStatements 是全部建表和索引语句。
// 全部带 IF NOT EXISTS，重复执行是安全的。
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS authors (
		author_number BIGSERIAL PRIMARY KEY,
		name          VARCHAR(150)  NOT NULL,
		bio           VARCHAR(4096) NOT NULL,
		photo_uri     VARCHAR(1024)
	)`,
	`CREATE TABLE IF NOT EXISTS genres (
		name VARCHAR(100) PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		isbn           VARCHAR(13)   PRIMARY KEY,
		title          VARCHAR(128)  NOT NULL,
		description    VARCHAR(4096),
		genre          VARCHAR(100)  NOT NULL REFERENCES genres (name),
		author_numbers BIGINT[]      NOT NULL,
		photo_uri      VARCHAR(1024)
	)`,
	`CREATE TABLE IF NOT EXISTS readers (
		reader_number VARCHAR(32)  PRIMARY KEY,
		username      VARCHAR(254) NOT NULL UNIQUE,
		name          VARCHAR(150) NOT NULL,
		birthdate     TIMESTAMPTZ  NOT NULL,
		phone_number  VARCHAR(32)  NOT NULL,
		gdpr_consent  BOOLEAN      NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS lendings (
		lending_number VARCHAR(32) PRIMARY KEY,
		isbn           VARCHAR(13) NOT NULL REFERENCES books (isbn),
		reader_number  VARCHAR(32) NOT NULL REFERENCES readers (reader_number),
		start_date     TIMESTAMPTZ NOT NULL,
		limit_date     TIMESTAMPTZ NOT NULL,
		returned_date  TIMESTAMPTZ,
		fine_cents     BIGINT      NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS authors_name_idx ON authors (name)`,
	`CREATE INDEX IF NOT EXISTS books_title_idx ON books (title)`,
	`CREATE INDEX IF NOT EXISTS books_genre_idx ON books (genre)`,
	`CREATE INDEX IF NOT EXISTS readers_phone_idx ON readers (phone_number)`,
	`CREATE INDEX IF NOT EXISTS lendings_reader_idx ON lendings (reader_number)`,
	`CREATE INDEX IF NOT EXISTS lendings_outstanding_idx ON lendings (reader_number) WHERE returned_date IS NULL`,
}

// ApplySchemaIfNeeded 应用数据库 Schema（表和索引）。
// 启动时调用，失败时由调用方决定是否中止服务。
func ApplySchemaIfNeeded(ctx context.Context, db *bun.DB, logger *zap.Logger) error {
	logger.Info("开始应用 PostgreSQL schema...")
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			logger.Error("执行 schema 语句失败", zap.String("statement", stmt), zap.Error(err))
			return fmt.Errorf("执行 schema 语句失败: %w", err)
		}
	}
	logger.Info("PostgreSQL schema 应用完成", zap.Int("statement_count", len(schemaStatements)))
	return nil
}
