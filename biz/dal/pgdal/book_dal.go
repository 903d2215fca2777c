package pgdal

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"bookwall/biz/model/library"
	"bookwall/biz/repo/librepo"
)

// pgBookRepo 是 BookRepository 的权威存储实现。
type pgBookRepo struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewBookRepository 创建基于 PostgreSQL 的 BookRepository。
func NewBookRepository(db *bun.DB, logger *zap.Logger) librepo.BookRepository {
	return &pgBookRepo{
		db:     db,
		logger: logger.Named("pgdal.book"),
	}
}

func (d *pgBookRepo) FindByIsbn(ctx context.Context, isbn string) (*library.Book, error) {
	book := new(library.Book)
	err := d.db.NewSelect().
		Model(book).
		Where("b.isbn = ?", isbn).
		Scan(ctx)
	if err != nil {
		return nil, mapNotFound(err, "按 ISBN 查询图书")
	}
	return book, nil
}

// FindByTitle 按书名精确匹配。书名不唯一，可能返回多本。
func (d *pgBookRepo) FindByTitle(ctx context.Context, title string) ([]*library.Book, error) {
	var books []*library.Book
	err := d.db.NewSelect().
		Model(&books).
		Where("b.title = ?", title).
		Order("b.isbn ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("DAL: 按书名查询图书失败: %w", err)
	}
	return books, nil
}

// Save 按 ISBN 覆盖保存图书。
func (d *pgBookRepo) Save(ctx context.Context, book *library.Book) (*library.Book, error) {
	saved := *book
	_, err := d.db.NewInsert().
		Model(&saved).
		On("CONFLICT (isbn) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("description = EXCLUDED.description").
		Set("genre = EXCLUDED.genre").
		Set("author_numbers = EXCLUDED.author_numbers").
		Set("photo_uri = EXCLUDED.photo_uri").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("DAL: 保存图书失败: %w", err)
	}
	return &saved, nil
}

func (d *pgBookRepo) Delete(ctx context.Context, book *library.Book) error {
	if book == nil || book.ISBN == "" {
		return nil
	}
	_, err := d.db.NewDelete().
		Model(book).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("DAL: 删除图书失败: %w", err)
	}
	return nil
}

func (d *pgBookRepo) FindAll(ctx context.Context) ([]*library.Book, error) {
	var books []*library.Book
	err := d.db.NewSelect().
		Model(&books).
		Order("b.isbn ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("DAL: 查询全部图书失败: %w", err)
	}
	return books, nil
}

func (d *pgBookRepo) FindByGenre(ctx context.Context, genre string) ([]*library.Book, error) {
	var books []*library.Book
	err := d.db.NewSelect().
		Model(&books).
		Where("b.genre = ?", genre).
		Order("b.isbn ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("DAL: 按类别查询图书失败: %w", err)
	}
	return books, nil
}

func (d *pgBookRepo) FindByAuthorNumber(ctx context.Context, authorNumber int64) ([]*library.Book, error) {
	var books []*library.Book
	err := d.db.NewSelect().
		Model(&books).
		Where("? = ANY (b.author_numbers)", authorNumber).
		Order("b.isbn ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("DAL: 按作者查询图书失败: %w", err)
	}
	return books, nil
}

// FindTopLent 按累计借出次数排序返回前 limit 本图书。
func (d *pgBookRepo) FindTopLent(ctx context.Context, limit int) ([]*library.Book, error) {
	var books []*library.Book
	err := d.db.NewRaw(
		`SELECT b.* FROM books AS b
		 JOIN lendings AS l ON l.isbn = b.isbn
		 GROUP BY b.isbn
		 ORDER BY COUNT(l.lending_number) DESC, b.isbn ASC
		 LIMIT ?`, limit,
	).Scan(ctx, &books)
	if err != nil {
		return nil, fmt.Errorf("DAL: 查询热门图书失败: %w", err)
	}
	return books, nil
}

var _ librepo.BookRepository = (*pgBookRepo)(nil)
