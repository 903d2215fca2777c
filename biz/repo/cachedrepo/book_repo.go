package cachedrepo

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"bookwall/biz/model/library"
	"bookwall/biz/repo/librepo"
)

// cachedBookRepo 把缓存仓库和权威仓库组合成一个 BookRepository。
// 策略与 cachedAuthorRepo 相同：旁路缓存读、写穿写、静态路由仅权威查询。
type cachedBookRepo struct {
	cache  librepo.BookRepository
	source librepo.BookRepository
	logger *zap.Logger
}

// NewBookRepository 创建一个带缓存协调的 BookRepository。
func NewBookRepository(cache, source librepo.BookRepository, logger *zap.Logger) librepo.BookRepository {
	return &cachedBookRepo{
		cache:  cache,
		source: source,
		logger: logger.Named("cachedrepo.book"),
	}
}

func (r *cachedBookRepo) FindByIsbn(ctx context.Context, isbn string) (*library.Book, error) {
	cached, err := r.cache.FindByIsbn(ctx, isbn)
	if err == nil {
		r.logger.Debug("图书缓存命中", zap.String("isbn", isbn))
		return cached, nil
	}
	if !errors.Is(err, librepo.ErrNotFound) {
		r.logger.Warn("缓存读取图书失败", zap.String("isbn", isbn), zap.Error(err))
	}

	book, err := r.source.FindByIsbn(ctx, isbn)
	if err != nil {
		return nil, err
	}
	if _, cerr := r.cache.Save(ctx, book); cerr != nil {
		r.logger.Warn("图书缓存回填失败", zap.String("isbn", isbn), zap.Error(cerr))
	}
	return book, nil
}

func (r *cachedBookRepo) FindByTitle(ctx context.Context, title string) ([]*library.Book, error) {
	cached, err := r.cache.FindByTitle(ctx, title)
	if err != nil {
		r.logger.Warn("缓存按书名查图书失败", zap.String("title", title), zap.Error(err))
	} else if len(cached) > 0 {
		r.logger.Debug("图书书名索引缓存命中", zap.String("title", title))
		return cached, nil
	}

	books, err := r.source.FindByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	for _, b := range books {
		if _, cerr := r.cache.Save(ctx, b); cerr != nil {
			r.logger.Warn("图书缓存回填失败", zap.String("isbn", b.ISBN), zap.Error(cerr))
			break
		}
	}
	return books, nil
}

func (r *cachedBookRepo) Save(ctx context.Context, book *library.Book) (*library.Book, error) {
	saved, err := r.source.Save(ctx, book)
	if err != nil {
		return nil, err
	}
	if _, cerr := r.cache.Save(ctx, saved); cerr != nil {
		r.logger.Warn("图书写穿缓存失败", zap.String("isbn", saved.ISBN), zap.Error(cerr))
	}
	return saved, nil
}

func (r *cachedBookRepo) Delete(ctx context.Context, book *library.Book) error {
	if err := r.source.Delete(ctx, book); err != nil {
		return err
	}
	if cerr := r.cache.Delete(ctx, book); cerr != nil {
		r.logger.Warn("图书缓存删除失败", zap.Error(cerr))
	}
	return nil
}

// 以下查询仅权威存储能回答，静态路由，不做任何缓存尝试。

func (r *cachedBookRepo) FindAll(ctx context.Context) ([]*library.Book, error) {
	return r.source.FindAll(ctx)
}

func (r *cachedBookRepo) FindByGenre(ctx context.Context, genre string) ([]*library.Book, error) {
	return r.source.FindByGenre(ctx, genre)
}

func (r *cachedBookRepo) FindByAuthorNumber(ctx context.Context, authorNumber int64) ([]*library.Book, error) {
	return r.source.FindByAuthorNumber(ctx, authorNumber)
}

func (r *cachedBookRepo) FindTopLent(ctx context.Context, limit int) ([]*library.Book, error) {
	return r.source.FindTopLent(ctx, limit)
}

var _ librepo.BookRepository = (*cachedBookRepo)(nil)
