package pgdal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"bookwall/biz/model/library"
	"bookwall/biz/repo/librepo"
)

// pgLendingRepo 是 LendingRepository 的权威存储实现。
type pgLendingRepo struct {
	db     *bun.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewLendingRepository 创建基于 PostgreSQL 的 LendingRepository。
func NewLendingRepository(db *bun.DB, logger *zap.Logger) librepo.LendingRepository {
	return &pgLendingRepo{
		db:     db,
		logger: logger.Named("pgdal.lending"),
		now:    time.Now,
	}
}

func (d *pgLendingRepo) FindByLendingNumber(ctx context.Context, lendingNumber string) (*library.Lending, error) {
	lending := new(library.Lending)
	err := d.db.NewSelect().
		Model(lending).
		Where("l.lending_number = ?", lendingNumber).
		Scan(ctx)
	if err != nil {
		return nil, mapNotFound(err, "按编号查询借阅")
	}
	return lending, nil
}

func (d *pgLendingRepo) FindOutstandingByReader(ctx context.Context, readerNumber string) ([]*library.Lending, error) {
	var lendings []*library.Lending
	err := d.db.NewSelect().
		Model(&lendings).
		Where("l.reader_number = ?", readerNumber).
		Where("l.returned_date IS NULL").
		Order("l.start_date ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("DAL: 查询读者未归还借阅失败: %w", err)
	}
	return lendings, nil
}

// Save 保存借阅。编号为空时在事务内分配 "YYYY/序号" 编号后插入，
// 否则按编号覆盖（upsert，归还登记走这条路径）。
func (d *pgLendingRepo) Save(ctx context.Context, lending *library.Lending) (*library.Lending, error) {
	saved := *lending
	if saved.LendingNumber == "" {
		err := d.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
			number, err := nextYearlyNumber(ctx, tx, "lendings", "lending_number", d.now())
			if err != nil {
				return err
			}
			saved.LendingNumber = number
			if _, err := tx.NewInsert().Model(&saved).Exec(ctx); err != nil {
				return fmt.Errorf("DAL: 插入借阅失败: %w", err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		d.logger.Debug("分配了新借阅编号", zap.String("lending_number", saved.LendingNumber))
		return &saved, nil
	}
	_, err := d.db.NewInsert().
		Model(&saved).
		On("CONFLICT (lending_number) DO UPDATE").
		Set("isbn = EXCLUDED.isbn").
		Set("reader_number = EXCLUDED.reader_number").
		Set("start_date = EXCLUDED.start_date").
		Set("limit_date = EXCLUDED.limit_date").
		Set("returned_date = EXCLUDED.returned_date").
		Set("fine_cents = EXCLUDED.fine_cents").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("DAL: 保存借阅失败: %w", err)
	}
	return &saved, nil
}

func (d *pgLendingRepo) Delete(ctx context.Context, lending *library.Lending) error {
	if lending == nil || lending.LendingNumber == "" {
		return nil
	}
	_, err := d.db.NewDelete().
		Model(lending).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("DAL: 删除借阅失败: %w", err)
	}
	return nil
}

func (d *pgLendingRepo) FindAll(ctx context.Context) ([]*library.Lending, error) {
	var lendings []*library.Lending
	err := d.db.NewSelect().
		Model(&lendings).
		Order("l.start_date ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("DAL: 查询全部借阅失败: %w", err)
	}
	return lendings, nil
}

// FindOverdue 返回未归还且已超过归还期限的借阅，最早逾期的在前。
func (d *pgLendingRepo) FindOverdue(ctx context.Context) ([]*library.Lending, error) {
	var lendings []*library.Lending
	err := d.db.NewSelect().
		Model(&lendings).
		Where("l.returned_date IS NULL").
		Where("l.limit_date < ?", d.now()).
		Order("l.limit_date ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("DAL: 查询逾期借阅失败: %w", err)
	}
	return lendings, nil
}

// AverageLendingDuration 返回已归还借阅的平均时长（天）。
// 没有任何已归还借阅时返回 0。
func (d *pgLendingRepo) AverageLendingDuration(ctx context.Context) (float64, error) {
	var avg sql.NullFloat64
	err := d.db.NewRaw(
		`SELECT AVG(EXTRACT(EPOCH FROM (l.returned_date - l.start_date)) / 86400.0)
		 FROM lendings AS l
		 WHERE l.returned_date IS NOT NULL`,
	).Scan(ctx, &avg)
	if err != nil {
		return 0, fmt.Errorf("DAL: 计算平均借阅时长失败: %w", err)
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}

var _ librepo.LendingRepository = (*pgLendingRepo)(nil)
