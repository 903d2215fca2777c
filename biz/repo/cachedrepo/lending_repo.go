package cachedrepo

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"bookwall/biz/model/library"
	"bookwall/biz/repo/librepo"
)

// cachedLendingRepo 把缓存仓库和权威仓库组合成一个 LendingRepository。
type cachedLendingRepo struct {
	cache  librepo.LendingRepository
	source librepo.LendingRepository
	logger *zap.Logger
}

// NewLendingRepository 创建一个带缓存协调的 LendingRepository。
func NewLendingRepository(cache, source librepo.LendingRepository, logger *zap.Logger) librepo.LendingRepository {
	return &cachedLendingRepo{
		cache:  cache,
		source: source,
		logger: logger.Named("cachedrepo.lending"),
	}
}

func (r *cachedLendingRepo) FindByLendingNumber(ctx context.Context, lendingNumber string) (*library.Lending, error) {
	cached, err := r.cache.FindByLendingNumber(ctx, lendingNumber)
	if err == nil {
		r.logger.Debug("借阅缓存命中", zap.String("lending_number", lendingNumber))
		return cached, nil
	}
	if !errors.Is(err, librepo.ErrNotFound) {
		r.logger.Warn("缓存读取借阅失败", zap.String("lending_number", lendingNumber), zap.Error(err))
	}

	lending, err := r.source.FindByLendingNumber(ctx, lendingNumber)
	if err != nil {
		return nil, err
	}
	if _, cerr := r.cache.Save(ctx, lending); cerr != nil {
		r.logger.Warn("借阅缓存回填失败", zap.String("lending_number", lendingNumber), zap.Error(cerr))
	}
	return lending, nil
}

func (r *cachedLendingRepo) FindOutstandingByReader(ctx context.Context, readerNumber string) ([]*library.Lending, error) {
	cached, err := r.cache.FindOutstandingByReader(ctx, readerNumber)
	if err != nil {
		r.logger.Warn("缓存读取读者未归还借阅失败", zap.String("reader_number", readerNumber), zap.Error(err))
	} else if len(cached) > 0 {
		r.logger.Debug("读者未归还借阅缓存命中",
			zap.String("reader_number", readerNumber), zap.Int("count", len(cached)))
		return cached, nil
	}

	// 空结果按未命中处理：宁可多查一次权威存储，也不能漏报未归还借阅
	lendings, err := r.source.FindOutstandingByReader(ctx, readerNumber)
	if err != nil {
		return nil, err
	}
	for _, l := range lendings {
		if _, cerr := r.cache.Save(ctx, l); cerr != nil {
			r.logger.Warn("借阅缓存回填失败", zap.String("lending_number", l.LendingNumber), zap.Error(cerr))
			break
		}
	}
	return lendings, nil
}

func (r *cachedLendingRepo) Save(ctx context.Context, lending *library.Lending) (*library.Lending, error) {
	saved, err := r.source.Save(ctx, lending)
	if err != nil {
		return nil, err
	}
	if _, cerr := r.cache.Save(ctx, saved); cerr != nil {
		r.logger.Warn("借阅写穿缓存失败", zap.String("lending_number", saved.LendingNumber), zap.Error(cerr))
	}
	return saved, nil
}

func (r *cachedLendingRepo) Delete(ctx context.Context, lending *library.Lending) error {
	if err := r.source.Delete(ctx, lending); err != nil {
		return err
	}
	if cerr := r.cache.Delete(ctx, lending); cerr != nil {
		r.logger.Warn("借阅缓存删除失败", zap.Error(cerr))
	}
	return nil
}

// 以下查询仅权威存储能回答，静态路由，不做任何缓存尝试。

func (r *cachedLendingRepo) FindAll(ctx context.Context) ([]*library.Lending, error) {
	return r.source.FindAll(ctx)
}

func (r *cachedLendingRepo) FindOverdue(ctx context.Context) ([]*library.Lending, error) {
	return r.source.FindOverdue(ctx)
}

func (r *cachedLendingRepo) AverageLendingDuration(ctx context.Context) (float64, error) {
	return r.source.AverageLendingDuration(ctx)
}

var _ librepo.LendingRepository = (*cachedLendingRepo)(nil)
