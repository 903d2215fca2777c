package pgdal

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"bookwall/biz/model/library"
	"bookwall/biz/repo/librepo"
)

// pgAuthorRepo 是 AuthorRepository 的权威存储实现。
type pgAuthorRepo struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewAuthorRepository 创建基于 PostgreSQL 的 AuthorRepository。
func NewAuthorRepository(db *bun.DB, logger *zap.Logger) librepo.AuthorRepository {
	return &pgAuthorRepo{
		db:     db,
		logger: logger.Named("pgdal.author"),
	}
}

func (d *pgAuthorRepo) FindByAuthorNumber(ctx context.Context, authorNumber int64) (*library.Author, error) {
	author := new(library.Author)
	err := d.db.NewSelect().
		Model(author).
		Where("a.author_number = ?", authorNumber).
		Scan(ctx)
	if err != nil {
		return nil, mapNotFound(err, "按编号查询作者")
	}
	return author, nil
}

// FindByName 按姓名精确匹配，按作者编号排序。
// 匹配语义必须和缓存的姓名索引完全一致：缓存命中和回源
// 对同一查询必须给出同一结果集，不允许这里放宽成模糊匹配。
func (d *pgAuthorRepo) FindByName(ctx context.Context, name string) ([]*library.Author, error) {
	var authors []*library.Author
	err := d.db.NewSelect().
		Model(&authors).
		Where("a.name = ?", name).
		Order("a.author_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("DAL: 按姓名查询作者失败: %w", err)
	}
	return authors, nil
}

// Save 保存作者。编号为 0 时插入并由数据库分配新编号，
// 否则按编号覆盖（upsert）。
func (d *pgAuthorRepo) Save(ctx context.Context, author *library.Author) (*library.Author, error) {
	saved := *author
	if saved.AuthorNumber == 0 {
		_, err := d.db.NewInsert().
			Model(&saved).
			ExcludeColumn("author_number").
			Returning("author_number").
			Exec(ctx)
		if err != nil {
			return nil, fmt.Errorf("DAL: 插入作者失败: %w", err)
		}
		d.logger.Debug("分配了新作者编号", zap.Int64("author_number", saved.AuthorNumber))
		return &saved, nil
	}
	_, err := d.db.NewInsert().
		Model(&saved).
		On("CONFLICT (author_number) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("bio = EXCLUDED.bio").
		Set("photo_uri = EXCLUDED.photo_uri").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("DAL: 保存作者失败: %w", err)
	}
	return &saved, nil
}

func (d *pgAuthorRepo) Delete(ctx context.Context, author *library.Author) error {
	if author == nil || author.AuthorNumber == 0 {
		return nil
	}
	_, err := d.db.NewDelete().
		Model(author).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("DAL: 删除作者失败: %w", err)
	}
	return nil
}

func (d *pgAuthorRepo) FindAll(ctx context.Context) ([]*library.Author, error) {
	var authors []*library.Author
	err := d.db.NewSelect().
		Model(&authors).
		Order("a.author_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("DAL: 查询全部作者失败: %w", err)
	}
	return authors, nil
}

// FindTopByLendings 按作者参与图书的累计借出次数排序。
// 作者和图书是数组引用关系，这里用 ANY 展开连接。
func (d *pgAuthorRepo) FindTopByLendings(ctx context.Context, limit int) ([]*library.Author, error) {
	var authors []*library.Author
	err := d.db.NewRaw(
		`SELECT a.* FROM authors AS a
		 JOIN books AS b ON a.author_number = ANY (b.author_numbers)
		 JOIN lendings AS l ON l.isbn = b.isbn
		 GROUP BY a.author_number
		 ORDER BY COUNT(l.lending_number) DESC, a.author_number ASC
		 LIMIT ?`, limit,
	).Scan(ctx, &authors)
	if err != nil {
		return nil, fmt.Errorf("DAL: 查询热门作者失败: %w", err)
	}
	return authors, nil
}

var _ librepo.AuthorRepository = (*pgAuthorRepo)(nil)
