package redisrepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"bookwall/biz/model/library"
	"bookwall/biz/repo/librepo"
	"bookwall/pkg/cache"
)

const (
	lendingKeyPrefix = "lending:"
	// lendingReaderKeyPrefix 前缀下的集合保存某位读者全部未归还借阅的编号。
	// 这是一个尽力而为的二级索引：悬空或缺失时整体按未命中处理，由协调器重建。
	lendingReaderKeyPrefix = "lending:reader:"
)

// --- Lending 记录映射 ---

// lendingToRecord 把 Lending 转换为扁平缓存记录。
// 图书和读者只写标识键（ISBN、读者编号）；归还日期未设置时不写字段。
func lendingToRecord(l *library.Lending) map[string]string {
	rec := map[string]string{
		"lending_number": l.LendingNumber,
		"isbn":           l.ISBN,
		"reader_number":  l.ReaderNumber,
		"start_date":     l.StartDate.Format(recordTimeLayout),
		"limit_date":     l.LimitDate.Format(recordTimeLayout),
		"fine_cents":     strconv.FormatInt(l.FineCents, 10),
	}
	if l.ReturnedDate != nil {
		rec["returned_date"] = l.ReturnedDate.Format(recordTimeLayout)
	}
	return rec
}

// lendingFromRecord 从缓存记录重建 Lending。
func lendingFromRecord(rec map[string]string) *library.Lending {
	if len(rec) == 0 {
		return nil
	}
	start, ok := parseTimeField(rec, "start_date")
	if !ok {
		return nil
	}
	limit, ok := parseTimeField(rec, "limit_date")
	if !ok {
		return nil
	}
	fine, ok := parseInt64Field(rec, "fine_cents")
	if !ok {
		return nil
	}
	l := &library.Lending{
		LendingNumber: rec["lending_number"],
		ISBN:          rec["isbn"],
		ReaderNumber:  rec["reader_number"],
		StartDate:     start,
		LimitDate:     limit,
		FineCents:     fine,
	}
	if raw, present := rec["returned_date"]; present {
		t, err := time.Parse(recordTimeLayout, raw)
		if err != nil {
			return nil
		}
		l.ReturnedDate = &t
	}
	if l.LendingNumber == "" {
		return nil
	}
	if err := l.Validate(); err != nil {
		return nil
	}
	return l
}

// --- 缓存仓库实现 ---

// redisLendingRepo 只用键值存储实现 LendingRepository。
type redisLendingRepo struct {
	store  cache.Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewLendingRepository 创建一个缓存侧的 LendingRepository。
func NewLendingRepository(store cache.Store, ttl time.Duration, logger *zap.Logger) librepo.LendingRepository {
	return &redisLendingRepo{
		store:  store,
		ttl:    ttl,
		logger: logger.Named("redisrepo.lending"),
	}
}

func lendingKey(number string) string {
	return lendingKeyPrefix + number
}

func lendingReaderKey(readerNumber string) string {
	return lendingReaderKeyPrefix + readerNumber
}

func (r *redisLendingRepo) FindByLendingNumber(ctx context.Context, lendingNumber string) (*library.Lending, error) {
	rec, err := r.store.HGetAll(ctx, lendingKey(lendingNumber))
	if errors.Is(err, cache.ErrNotFound) {
		return nil, librepo.ErrNotFound
	} else if err != nil {
		return nil, err
	}
	l := lendingFromRecord(rec)
	if l == nil {
		r.logger.Debug("借阅缓存记录无法重建", zap.String("lending_number", lendingNumber))
		return nil, librepo.ErrNotFound
	}
	return l, nil
}

// FindOutstandingByReader 通过读者未归还集合回答。
// 任一成员的主记录缺失或已归还（集合滞后）都整体按未命中处理：
// 部分结果宁可不要，也不能少报未归还借阅。
func (r *redisLendingRepo) FindOutstandingByReader(ctx context.Context, readerNumber string) ([]*library.Lending, error) {
	numbers, err := r.store.SMembers(ctx, lendingReaderKey(readerNumber))
	if errors.Is(err, cache.ErrNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	lendings := make([]*library.Lending, 0, len(numbers))
	for _, number := range numbers {
		l, err := r.FindByLendingNumber(ctx, number)
		if errors.Is(err, librepo.ErrNotFound) {
			r.logger.Debug("未归还集合成员的主记录缺失",
				zap.String("reader_number", readerNumber), zap.String("lending_number", number))
			return nil, nil
		} else if err != nil {
			return nil, err
		}
		if !l.IsOutstanding() {
			return nil, nil
		}
		lendings = append(lendings, l)
	}
	return lendings, nil
}

func (r *redisLendingRepo) Save(ctx context.Context, lending *library.Lending) (*library.Lending, error) {
	if lending == nil || lending.LendingNumber == "" {
		return nil, fmt.Errorf("redisrepo: lending 缺少主键，无法写入缓存")
	}
	if err := r.store.HSetAll(ctx, lendingKey(lending.LendingNumber), lendingToRecord(lending), r.ttl); err != nil {
		return nil, err
	}
	// 未归还的借阅进入读者集合；已归还的从集合移除
	if lending.IsOutstanding() {
		if err := r.store.SAdd(ctx, lendingReaderKey(lending.ReaderNumber), r.ttl, lending.LendingNumber); err != nil {
			return nil, err
		}
	} else {
		if err := r.store.SRem(ctx, lendingReaderKey(lending.ReaderNumber), lending.LendingNumber); err != nil {
			return nil, err
		}
	}
	return lending, nil
}

func (r *redisLendingRepo) Delete(ctx context.Context, lending *library.Lending) error {
	if lending == nil || lending.LendingNumber == "" {
		return nil
	}
	if err := r.store.SRem(ctx, lendingReaderKey(lending.ReaderNumber), lending.LendingNumber); err != nil {
		return err
	}
	return r.store.Del(ctx, lendingKey(lending.LendingNumber))
}

// 以下查询仅权威存储能回答，缓存返回契约上的空值。

func (r *redisLendingRepo) FindAll(ctx context.Context) ([]*library.Lending, error) {
	return nil, nil
}

func (r *redisLendingRepo) FindOverdue(ctx context.Context) ([]*library.Lending, error) {
	return nil, nil
}

func (r *redisLendingRepo) AverageLendingDuration(ctx context.Context) (float64, error) {
	return 0, nil
}

var _ librepo.LendingRepository = (*redisLendingRepo)(nil)
