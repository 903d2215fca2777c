package cachedrepo

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"bookwall/biz/model/library"
	"bookwall/biz/repo/librepo"
)

// cachedAuthorRepo 把缓存仓库和权威仓库组合成一个 AuthorRepository。
//
// 读：旁路缓存（Cache-Aside）。先查缓存，命中直接返回；
// 未命中回源，回源成功后回填缓存，回填失败只记警告。
// 写：写穿（Write-Through）。先写权威存储（失败原样透传，缓存不动），
// 成功后同步缓存，缓存侧失败只记警告。顺序固定，不允许调换：
// 缓存里绝不能出现从未持久化到权威存储的值。
// 仅权威存储的查询按方法静态路由，完全不碰缓存。
type cachedAuthorRepo struct {
	cache  librepo.AuthorRepository
	source librepo.AuthorRepository
	logger *zap.Logger
}

// NewAuthorRepository 创建一个带缓存协调的 AuthorRepository。
func NewAuthorRepository(cache, source librepo.AuthorRepository, logger *zap.Logger) librepo.AuthorRepository {
	return &cachedAuthorRepo{
		cache:  cache,
		source: source,
		logger: logger.Named("cachedrepo.author"),
	}
}

func (r *cachedAuthorRepo) FindByAuthorNumber(ctx context.Context, authorNumber int64) (*library.Author, error) {
	cached, err := r.cache.FindByAuthorNumber(ctx, authorNumber)
	if err == nil {
		r.logger.Debug("作者缓存命中", zap.Int64("author_number", authorNumber))
		return cached, nil
	}
	if !errors.Is(err, librepo.ErrNotFound) {
		// 缓存故障等同未命中，绝不让它影响请求
		r.logger.Warn("缓存读取作者失败", zap.Int64("author_number", authorNumber), zap.Error(err))
	}

	author, err := r.source.FindByAuthorNumber(ctx, authorNumber)
	if err != nil {
		return nil, err // 权威存储的错误（含 ErrNotFound）原样透传
	}
	if _, cerr := r.cache.Save(ctx, author); cerr != nil {
		r.logger.Warn("作者缓存回填失败", zap.Int64("author_number", authorNumber), zap.Error(cerr))
	}
	return author, nil
}

func (r *cachedAuthorRepo) FindByName(ctx context.Context, name string) ([]*library.Author, error) {
	cached, err := r.cache.FindByName(ctx, name)
	if err != nil {
		r.logger.Warn("缓存按姓名查作者失败", zap.String("name", name), zap.Error(err))
	} else if len(cached) > 0 {
		r.logger.Debug("作者姓名索引缓存命中", zap.String("name", name))
		return cached, nil
	}

	// 空结果一律按未命中处理，回源复查
	authors, err := r.source.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	for _, a := range authors {
		if _, cerr := r.cache.Save(ctx, a); cerr != nil {
			r.logger.Warn("作者缓存回填失败", zap.Int64("author_number", a.AuthorNumber), zap.Error(cerr))
			break
		}
	}
	return authors, nil
}

func (r *cachedAuthorRepo) Save(ctx context.Context, author *library.Author) (*library.Author, error) {
	saved, err := r.source.Save(ctx, author)
	if err != nil {
		return nil, err // 权威写入失败：透传，缓存保持原样
	}
	if _, cerr := r.cache.Save(ctx, saved); cerr != nil {
		r.logger.Warn("作者写穿缓存失败", zap.Int64("author_number", saved.AuthorNumber), zap.Error(cerr))
	}
	return saved, nil
}

func (r *cachedAuthorRepo) Delete(ctx context.Context, author *library.Author) error {
	if err := r.source.Delete(ctx, author); err != nil {
		return err
	}
	if cerr := r.cache.Delete(ctx, author); cerr != nil {
		r.logger.Warn("作者缓存删除失败", zap.Error(cerr))
	}
	return nil
}

// FindAll 仅权威存储。
func (r *cachedAuthorRepo) FindAll(ctx context.Context) ([]*library.Author, error) {
	return r.source.FindAll(ctx)
}

// FindTopByLendings 仅权威存储。
func (r *cachedAuthorRepo) FindTopByLendings(ctx context.Context, limit int) ([]*library.Author, error) {
	return r.source.FindTopByLendings(ctx, limit)
}

var _ librepo.AuthorRepository = (*cachedAuthorRepo)(nil)
