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
	genreKeyPrefix = "genre:"
	// genreAllKey 是类别的成员集合：已知的全部类别名。
	// 类别集合小且极少变化，是唯一维护成员集合、允许缓存全量列表的实体。
	genreAllKey = "genre:all"
)

// --- Genre 记录映射 ---

func genreToRecord(g *library.Genre) map[string]string {
	return map[string]string{"name": g.Name}
}

func genreFromRecord(rec map[string]string) *library.Genre {
	if len(rec) == 0 {
		return nil
	}
	g := &library.Genre{Name: rec["name"]}
	if err := g.Validate(); err != nil {
		return nil
	}
	return g
}

// --- 缓存仓库实现 ---

// redisGenreRepo 只用键值存储实现 GenreRepository。
type redisGenreRepo struct {
	store  cache.Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewGenreRepository 创建一个缓存侧的 GenreRepository。
func NewGenreRepository(store cache.Store, ttl time.Duration, logger *zap.Logger) librepo.GenreRepository {
	return &redisGenreRepo{
		store:  store,
		ttl:    ttl,
		logger: logger.Named("redisrepo.genre"),
	}
}

func genreKey(name string) string {
	return genreKeyPrefix + name
}

func (r *redisGenreRepo) FindByName(ctx context.Context, name string) (*library.Genre, error) {
	rec, err := r.store.HGetAll(ctx, genreKey(name))
	if errors.Is(err, cache.ErrNotFound) {
		return nil, librepo.ErrNotFound
	} else if err != nil {
		return nil, err
	}
	g := genreFromRecord(rec)
	if g == nil {
		r.logger.Debug("类别缓存记录无法重建", zap.String("name", name))
		return nil, librepo.ErrNotFound
	}
	return g, nil
}

func (r *redisGenreRepo) Save(ctx context.Context, genre *library.Genre) (*library.Genre, error) {
	if genre == nil || genre.Name == "" {
		return nil, fmt.Errorf("redisrepo: genre 缺少主键，无法写入缓存")
	}
	if err := r.store.HSetAll(ctx, genreKey(genre.Name), genreToRecord(genre), r.ttl); err != nil {
		return nil, err
	}
	if err := r.store.SAdd(ctx, genreAllKey, r.ttl, genre.Name); err != nil {
		return nil, err
	}
	return genre, nil
}

func (r *redisGenreRepo) Delete(ctx context.Context, genre *library.Genre) error {
	if genre == nil || genre.Name == "" {
		return nil
	}
	if err := r.store.SRem(ctx, genreAllKey, genre.Name); err != nil {
		return err
	}
	return r.store.Del(ctx, genreKey(genre.Name))
}

// FindAll 通过成员集合回答全量列表。
// 集合缺失/过期时返回空结果，由协调器回源后整体回填。
func (r *redisGenreRepo) FindAll(ctx context.Context) ([]*library.Genre, error) {
	names, err := r.store.SMembers(ctx, genreAllKey)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	genres := make([]*library.Genre, 0, len(names))
	for _, name := range names {
		g := &library.Genre{Name: name}
		if err := g.Validate(); err != nil {
			// 集合中混入非法成员：整体按未命中处理，让协调器重建
			r.logger.Debug("类别成员集合包含非法成员", zap.String("member", name))
			return nil, nil
		}
		genres = append(genres, g)
	}
	return genres, nil
}

// FindTopByBooks 仅权威存储：跨实体聚合缓存无法回答。
func (r *redisGenreRepo) FindTopByBooks(ctx context.Context, limit int) ([]librepo.GenreCount, error) {
	return nil, nil
}

var _ librepo.GenreRepository = (*redisGenreRepo)(nil)
