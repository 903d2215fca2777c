package pgdal

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"bookwall/biz/model/library"
	"bookwall/biz/repo/librepo"
)

// pgGenreRepo 是 GenreRepository 的权威存储实现。
type pgGenreRepo struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewGenreRepository 创建基于 PostgreSQL 的 GenreRepository。
func NewGenreRepository(db *bun.DB, logger *zap.Logger) librepo.GenreRepository {
	return &pgGenreRepo{
		db:     db,
		logger: logger.Named("pgdal.genre"),
	}
}

func (d *pgGenreRepo) FindByName(ctx context.Context, name string) (*library.Genre, error) {
	genre := new(library.Genre)
	err := d.db.NewSelect().
		Model(genre).
		Where("g.name = ?", name).
		Scan(ctx)
	if err != nil {
		return nil, mapNotFound(err, "按名称查询类别")
	}
	return genre, nil
}

// Save 保存类别。类别只有名称一个字段，已存在时为 no-op。
func (d *pgGenreRepo) Save(ctx context.Context, genre *library.Genre) (*library.Genre, error) {
	saved := *genre
	_, err := d.db.NewInsert().
		Model(&saved).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("DAL: 保存类别失败: %w", err)
	}
	return &saved, nil
}

func (d *pgGenreRepo) Delete(ctx context.Context, genre *library.Genre) error {
	if genre == nil || genre.Name == "" {
		return nil
	}
	_, err := d.db.NewDelete().
		Model(genre).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("DAL: 删除类别失败: %w", err)
	}
	return nil
}

func (d *pgGenreRepo) FindAll(ctx context.Context) ([]*library.Genre, error) {
	var genres []*library.Genre
	err := d.db.NewSelect().
		Model(&genres).
		Order("g.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("DAL: 查询全部类别失败: %w", err)
	}
	return genres, nil
}

// FindTopByBooks 按类别下的图书数量排序，返回类别名和数量。
func (d *pgGenreRepo) FindTopByBooks(ctx context.Context, limit int) ([]librepo.GenreCount, error) {
	var counts []librepo.GenreCount
	err := d.db.NewRaw(
		`SELECT b.genre AS genre, COUNT(*) AS count FROM books AS b
		 GROUP BY b.genre
		 ORDER BY COUNT(*) DESC, b.genre ASC
		 LIMIT ?`, limit,
	).Scan(ctx, &counts)
	if err != nil {
		return nil, fmt.Errorf("DAL: 查询热门类别失败: %w", err)
	}
	return counts, nil
}

var _ librepo.GenreRepository = (*pgGenreRepo)(nil)
