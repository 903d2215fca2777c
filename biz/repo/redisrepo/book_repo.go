package redisrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"bookwall/biz/model/library"
	"bookwall/biz/repo/librepo"
	"bookwall/pkg/cache"
)

const (
	bookKeyPrefix = "book:"
	// bookTitleKeyPrefix 前缀下的集合保存同名图书的全部 ISBN。
	// 书名不唯一，索引必须能容纳多个成员，单值索引会丢结果。
	bookTitleKeyPrefix = "book:title:"
)

// --- Book 记录映射 ---

// bookToRecord 把 Book 转换为扁平缓存记录。
// 作者列表只写编号（逗号分隔），类别只写类别名：
// 关联实体永远以标识键落缓存，由消费方自行解析。
func bookToRecord(b *library.Book) map[string]string {
	rec := map[string]string{
		"isbn":    b.ISBN,
		"title":   b.Title,
		"genre":   b.Genre,
		"authors": joinInt64s(b.AuthorNumbers),
	}
	putIfSet(rec, "description", b.Description)
	putIfSet(rec, "photo_uri", b.PhotoURI)
	return rec
}

// bookFromRecord 从缓存记录重建 Book。
// isbn、title、genre 或作者引用任一缺失/非法都返回 nil。
func bookFromRecord(rec map[string]string) *library.Book {
	if len(rec) == 0 {
		return nil
	}
	authors, ok := splitInt64s(rec["authors"])
	if !ok {
		return nil
	}
	b := &library.Book{
		ISBN:          rec["isbn"],
		Title:         rec["title"],
		Description:   rec["description"],
		Genre:         rec["genre"],
		AuthorNumbers: authors,
		PhotoURI:      rec["photo_uri"],
	}
	if err := b.Validate(); err != nil {
		return nil
	}
	return b
}

// --- 缓存仓库实现 ---

// redisBookRepo 只用键值存储实现 BookRepository。
type redisBookRepo struct {
	store  cache.Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewBookRepository 创建一个缓存侧的 BookRepository。
func NewBookRepository(store cache.Store, ttl time.Duration, logger *zap.Logger) librepo.BookRepository {
	return &redisBookRepo{
		store:  store,
		ttl:    ttl,
		logger: logger.Named("redisrepo.book"),
	}
}

func bookKey(isbn string) string {
	return bookKeyPrefix + isbn
}

func bookTitleKey(title string) string {
	return bookTitleKeyPrefix + title
}

func (r *redisBookRepo) FindByIsbn(ctx context.Context, isbn string) (*library.Book, error) {
	rec, err := r.store.HGetAll(ctx, bookKey(isbn))
	if errors.Is(err, cache.ErrNotFound) {
		return nil, librepo.ErrNotFound
	} else if err != nil {
		return nil, err
	}
	b := bookFromRecord(rec)
	if b == nil {
		r.logger.Debug("图书缓存记录无法重建", zap.String("isbn", isbn))
		return nil, librepo.ErrNotFound
	}
	return b, nil
}

// FindByTitle 通过书名集合索引回答。
// 任一成员的主记录缺失或改名后滞留（主记录的书名已不是查询的书名）
// 都整体按未命中处理，由协调器回源重建。
func (r *redisBookRepo) FindByTitle(ctx context.Context, title string) ([]*library.Book, error) {
	isbns, err := r.store.SMembers(ctx, bookTitleKey(title))
	if errors.Is(err, cache.ErrNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	books := make([]*library.Book, 0, len(isbns))
	for _, isbn := range isbns {
		b, err := r.FindByIsbn(ctx, isbn)
		if errors.Is(err, librepo.ErrNotFound) {
			return nil, nil
		} else if err != nil {
			return nil, err
		}
		if b.Title != title {
			r.logger.Debug("书名索引成员已过时", zap.String("isbn", isbn), zap.String("title", title))
			return nil, nil
		}
		books = append(books, b)
	}
	return books, nil
}

func (r *redisBookRepo) Save(ctx context.Context, book *library.Book) (*library.Book, error) {
	if book == nil || book.ISBN == "" {
		return nil, fmt.Errorf("redisrepo: book 缺少主键，无法写入缓存")
	}
	if err := r.store.HSetAll(ctx, bookKey(book.ISBN), bookToRecord(book), r.ttl); err != nil {
		return nil, err
	}
	if err := r.store.SAdd(ctx, bookTitleKey(book.Title), r.ttl, book.ISBN); err != nil {
		return nil, err
	}
	return book, nil
}

func (r *redisBookRepo) Delete(ctx context.Context, book *library.Book) error {
	if book == nil || book.ISBN == "" {
		return nil
	}
	if err := r.store.SRem(ctx, bookTitleKey(book.Title), book.ISBN); err != nil {
		return err
	}
	return r.store.Del(ctx, bookKey(book.ISBN))
}

// 以下查询仅权威存储能回答，缓存返回契约上的空值。

func (r *redisBookRepo) FindAll(ctx context.Context) ([]*library.Book, error) {
	return nil, nil
}

func (r *redisBookRepo) FindByGenre(ctx context.Context, genre string) ([]*library.Book, error) {
	return nil, nil
}

func (r *redisBookRepo) FindByAuthorNumber(ctx context.Context, authorNumber int64) ([]*library.Book, error) {
	return nil, nil
}

func (r *redisBookRepo) FindTopLent(ctx context.Context, limit int) ([]*library.Book, error) {
	return nil, nil
}

var _ librepo.BookRepository = (*redisBookRepo)(nil)
