package cachedrepo

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"bookwall/biz/model/library"
	"bookwall/biz/repo/librepo"
)

// cachedGenreRepo 把缓存仓库和权威仓库组合成一个 GenreRepository。
//
// 与其他实体的唯一差别：FindAll 也走缓存。类别集合小、变化慢，
// 整个集合值得保温；其他实体的全量查询永远直达权威存储。
type cachedGenreRepo struct {
	cache  librepo.GenreRepository
	source librepo.GenreRepository
	logger *zap.Logger
}

// NewGenreRepository 创建一个带缓存协调的 GenreRepository。
func NewGenreRepository(cache, source librepo.GenreRepository, logger *zap.Logger) librepo.GenreRepository {
	return &cachedGenreRepo{
		cache:  cache,
		source: source,
		logger: logger.Named("cachedrepo.genre"),
	}
}

func (r *cachedGenreRepo) FindByName(ctx context.Context, name string) (*library.Genre, error) {
	cached, err := r.cache.FindByName(ctx, name)
	if err == nil {
		r.logger.Debug("类别缓存命中", zap.String("name", name))
		return cached, nil
	}
	if !errors.Is(err, librepo.ErrNotFound) {
		r.logger.Warn("缓存读取类别失败", zap.String("name", name), zap.Error(err))
	}

	genre, err := r.source.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if _, cerr := r.cache.Save(ctx, genre); cerr != nil {
		r.logger.Warn("类别缓存回填失败", zap.String("name", name), zap.Error(cerr))
	}
	return genre, nil
}

func (r *cachedGenreRepo) Save(ctx context.Context, genre *library.Genre) (*library.Genre, error) {
	saved, err := r.source.Save(ctx, genre)
	if err != nil {
		return nil, err
	}
	if _, cerr := r.cache.Save(ctx, saved); cerr != nil {
		r.logger.Warn("类别写穿缓存失败", zap.String("name", saved.Name), zap.Error(cerr))
	}
	return saved, nil
}

func (r *cachedGenreRepo) Delete(ctx context.Context, genre *library.Genre) error {
	if err := r.source.Delete(ctx, genre); err != nil {
		return err
	}
	if cerr := r.cache.Delete(ctx, genre); cerr != nil {
		r.logger.Warn("类别缓存删除失败", zap.Error(cerr))
	}
	return nil
}

// FindAll 走缓存的成员集合；未命中回源并逐个回填，
// 回填同时重建成员集合（redisrepo.Save 会把类别名加入集合）。
func (r *cachedGenreRepo) FindAll(ctx context.Context) ([]*library.Genre, error) {
	cached, err := r.cache.FindAll(ctx)
	if err != nil {
		r.logger.Warn("缓存读取类别全量列表失败", zap.Error(err))
	} else if len(cached) > 0 {
		r.logger.Debug("类别全量列表缓存命中", zap.Int("count", len(cached)))
		return cached, nil
	}

	genres, err := r.source.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, g := range genres {
		if _, cerr := r.cache.Save(ctx, g); cerr != nil {
			r.logger.Warn("类别缓存回填失败", zap.String("name", g.Name), zap.Error(cerr))
			break
		}
	}
	return genres, nil
}

// FindTopByBooks 仅权威存储。
func (r *cachedGenreRepo) FindTopByBooks(ctx context.Context, limit int) ([]librepo.GenreCount, error) {
	return r.source.FindTopByBooks(ctx, limit)
}

var _ librepo.GenreRepository = (*cachedGenreRepo)(nil)
