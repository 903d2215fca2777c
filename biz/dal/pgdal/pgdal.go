// Package pgdal 提供基于 PostgreSQL（bun）的权威存储仓库实现。
// 这里是唯一的事实来源：所有写操作先落到这里，缓存只是旁路加速。
package pgdal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"bookwall/biz/repo/librepo"
)

// mapNotFound 把驱动的"无结果"错误映射为仓库契约的 ErrNotFound，
// 其余错误原样包装返回。
func mapNotFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return librepo.ErrNotFound
	}
	return fmt.Errorf("DAL: %s失败: %w", what, err)
}

// nextYearlyNumber 在事务内生成 "YYYY/序号" 形式的业务编号。
// 序号按年份独立递增，从 1 开始。并发插入撞号时由主键约束兜底，
// 调用方会收到唯一约束错误。
func nextYearlyNumber(ctx context.Context, tx bun.Tx, table, column string, now time.Time) (string, error) {
	year := now.Year()
	var seq int
	query := fmt.Sprintf(
		`SELECT COALESCE(MAX(SPLIT_PART(%s, '/', 2)::int), 0) + 1 FROM %s WHERE %s LIKE ?`,
		column, table, column,
	)
	if err := tx.NewRaw(query, fmt.Sprintf("%d/%%", year)).Scan(ctx, &seq); err != nil {
		return "", fmt.Errorf("DAL: 生成业务编号失败: %w", err)
	}
	return fmt.Sprintf("%d/%d", year, seq), nil
}
