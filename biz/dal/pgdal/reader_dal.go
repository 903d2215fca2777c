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

// pgReaderRepo 是 ReaderRepository 的权威存储实现。
type pgReaderRepo struct {
	db     *bun.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewReaderRepository 创建基于 PostgreSQL 的 ReaderRepository。
func NewReaderRepository(db *bun.DB, logger *zap.Logger) librepo.ReaderRepository {
	return &pgReaderRepo{
		db:     db,
		logger: logger.Named("pgdal.reader"),
		now:    time.Now,
	}
}

func (d *pgReaderRepo) FindByReaderNumber(ctx context.Context, readerNumber string) (*library.Reader, error) {
	reader := new(library.Reader)
	err := d.db.NewSelect().
		Model(reader).
		Where("r.reader_number = ?", readerNumber).
		Scan(ctx)
	if err != nil {
		return nil, mapNotFound(err, "按编号查询读者")
	}
	return reader, nil
}

// FindByUsername 按用户名查询读者。用户名是邮箱，匹配不区分大小写。
func (d *pgReaderRepo) FindByUsername(ctx context.Context, username string) (*library.Reader, error) {
	reader := new(library.Reader)
	err := d.db.NewSelect().
		Model(reader).
		Where("LOWER(r.username) = LOWER(?)", username).
		Scan(ctx)
	if err != nil {
		return nil, mapNotFound(err, "按用户名查询读者")
	}
	return reader, nil
}

func (d *pgReaderRepo) FindByPhoneNumber(ctx context.Context, phoneNumber string) ([]*library.Reader, error) {
	var readers []*library.Reader
	err := d.db.NewSelect().
		Model(&readers).
		Where("r.phone_number = ?", phoneNumber).
		Order("r.reader_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("DAL: 按电话查询读者失败: %w", err)
	}
	return readers, nil
}

// Save 保存读者。编号为空时在事务内分配 "YYYY/序号" 编号后插入，
// 否则按编号覆盖（upsert）。
func (d *pgReaderRepo) Save(ctx context.Context, reader *library.Reader) (*library.Reader, error) {
	saved := *reader
	if saved.ReaderNumber == "" {
		err := d.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
			number, err := nextYearlyNumber(ctx, tx, "readers", "reader_number", d.now())
			if err != nil {
				return err
			}
			saved.ReaderNumber = number
			if _, err := tx.NewInsert().Model(&saved).Exec(ctx); err != nil {
				return fmt.Errorf("DAL: 插入读者失败: %w", err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		d.logger.Debug("分配了新读者编号", zap.String("reader_number", saved.ReaderNumber))
		return &saved, nil
	}
	_, err := d.db.NewInsert().
		Model(&saved).
		On("CONFLICT (reader_number) DO UPDATE").
		Set("username = EXCLUDED.username").
		Set("name = EXCLUDED.name").
		Set("birthdate = EXCLUDED.birthdate").
		Set("phone_number = EXCLUDED.phone_number").
		Set("gdpr_consent = EXCLUDED.gdpr_consent").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("DAL: 保存读者失败: %w", err)
	}
	return &saved, nil
}

func (d *pgReaderRepo) Delete(ctx context.Context, reader *library.Reader) error {
	if reader == nil || reader.ReaderNumber == "" {
		return nil
	}
	_, err := d.db.NewDelete().
		Model(reader).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("DAL: 删除读者失败: %w", err)
	}
	return nil
}

func (d *pgReaderRepo) FindAll(ctx context.Context) ([]*library.Reader, error) {
	var readers []*library.Reader
	err := d.db.NewSelect().
		Model(&readers).
		Order("r.reader_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("DAL: 查询全部读者失败: %w", err)
	}
	return readers, nil
}

// SearchByName 按姓名子串模糊搜索（不区分大小写）。
func (d *pgReaderRepo) SearchByName(ctx context.Context, name string) ([]*library.Reader, error) {
	var readers []*library.Reader
	err := d.db.NewSelect().
		Model(&readers).
		Where("r.name ILIKE ?", "%"+name+"%").
		Order("r.reader_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("DAL: 按姓名搜索读者失败: %w", err)
	}
	return readers, nil
}

// FindTopByLendings 按累计借阅次数排序返回前 limit 位读者。
func (d *pgReaderRepo) FindTopByLendings(ctx context.Context, limit int) ([]*library.Reader, error) {
	var readers []*library.Reader
	err := d.db.NewRaw(
		`SELECT r.* FROM readers AS r
		 JOIN lendings AS l ON l.reader_number = r.reader_number
		 GROUP BY r.reader_number
		 ORDER BY COUNT(l.lending_number) DESC, r.reader_number ASC
		 LIMIT ?`, limit,
	).Scan(ctx, &readers)
	if err != nil {
		return nil, fmt.Errorf("DAL: 查询活跃读者失败: %w", err)
	}
	return readers, nil
}

var _ librepo.ReaderRepository = (*pgReaderRepo)(nil)
