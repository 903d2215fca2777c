package cachedrepo

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"bookwall/biz/model/library"
	"bookwall/biz/repo/librepo"
)

// cachedReaderRepo 把缓存仓库和权威仓库组合成一个 ReaderRepository。
type cachedReaderRepo struct {
	cache  librepo.ReaderRepository
	source librepo.ReaderRepository
	logger *zap.Logger
}

// NewReaderRepository 创建一个带缓存协调的 ReaderRepository。
func NewReaderRepository(cache, source librepo.ReaderRepository, logger *zap.Logger) librepo.ReaderRepository {
	return &cachedReaderRepo{
		cache:  cache,
		source: source,
		logger: logger.Named("cachedrepo.reader"),
	}
}

func (r *cachedReaderRepo) FindByReaderNumber(ctx context.Context, readerNumber string) (*library.Reader, error) {
	cached, err := r.cache.FindByReaderNumber(ctx, readerNumber)
	if err == nil {
		r.logger.Debug("读者缓存命中", zap.String("reader_number", readerNumber))
		return cached, nil
	}
	if !errors.Is(err, librepo.ErrNotFound) {
		r.logger.Warn("缓存读取读者失败", zap.String("reader_number", readerNumber), zap.Error(err))
	}

	reader, err := r.source.FindByReaderNumber(ctx, readerNumber)
	if err != nil {
		return nil, err
	}
	if _, cerr := r.cache.Save(ctx, reader); cerr != nil {
		r.logger.Warn("读者缓存回填失败", zap.String("reader_number", readerNumber), zap.Error(cerr))
	}
	return reader, nil
}

func (r *cachedReaderRepo) FindByUsername(ctx context.Context, username string) (*library.Reader, error) {
	cached, err := r.cache.FindByUsername(ctx, username)
	if err == nil {
		r.logger.Debug("读者用户名索引缓存命中", zap.String("username", username))
		return cached, nil
	}
	if !errors.Is(err, librepo.ErrNotFound) {
		r.logger.Warn("缓存按用户名查读者失败", zap.String("username", username), zap.Error(err))
	}

	reader, err := r.source.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if _, cerr := r.cache.Save(ctx, reader); cerr != nil {
		r.logger.Warn("读者缓存回填失败", zap.String("reader_number", reader.ReaderNumber), zap.Error(cerr))
	}
	return reader, nil
}

func (r *cachedReaderRepo) FindByPhoneNumber(ctx context.Context, phoneNumber string) ([]*library.Reader, error) {
	cached, err := r.cache.FindByPhoneNumber(ctx, phoneNumber)
	if err != nil {
		r.logger.Warn("缓存按电话查读者失败", zap.String("phone_number", phoneNumber), zap.Error(err))
	} else if len(cached) > 0 {
		r.logger.Debug("读者电话索引缓存命中", zap.String("phone_number", phoneNumber))
		return cached, nil
	}

	readers, err := r.source.FindByPhoneNumber(ctx, phoneNumber)
	if err != nil {
		return nil, err
	}
	for _, rd := range readers {
		if _, cerr := r.cache.Save(ctx, rd); cerr != nil {
			r.logger.Warn("读者缓存回填失败", zap.String("reader_number", rd.ReaderNumber), zap.Error(cerr))
			break
		}
	}
	return readers, nil
}

func (r *cachedReaderRepo) Save(ctx context.Context, reader *library.Reader) (*library.Reader, error) {
	saved, err := r.source.Save(ctx, reader)
	if err != nil {
		return nil, err
	}
	if _, cerr := r.cache.Save(ctx, saved); cerr != nil {
		r.logger.Warn("读者写穿缓存失败", zap.String("reader_number", saved.ReaderNumber), zap.Error(cerr))
	}
	return saved, nil
}

func (r *cachedReaderRepo) Delete(ctx context.Context, reader *library.Reader) error {
	if err := r.source.Delete(ctx, reader); err != nil {
		return err
	}
	if cerr := r.cache.Delete(ctx, reader); cerr != nil {
		r.logger.Warn("读者缓存删除失败", zap.Error(cerr))
	}
	return nil
}

// 以下查询仅权威存储能回答，静态路由，不做任何缓存尝试。

func (r *cachedReaderRepo) FindAll(ctx context.Context) ([]*library.Reader, error) {
	return r.source.FindAll(ctx)
}

func (r *cachedReaderRepo) SearchByName(ctx context.Context, name string) ([]*library.Reader, error) {
	return r.source.SearchByName(ctx, name)
}

func (r *cachedReaderRepo) FindTopByLendings(ctx context.Context, limit int) ([]*library.Reader, error) {
	return r.source.FindTopByLendings(ctx, limit)
}

var _ librepo.ReaderRepository = (*cachedReaderRepo)(nil)
