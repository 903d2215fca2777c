package redisrepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"bookwall/biz/model/library"
	"bookwall/biz/repo/librepo"
	"bookwall/pkg/cache"
)

const (
	readerKeyPrefix = "reader:"
	// readerUsernameKeyPrefix 前缀下的字符串键保存用户名到读者编号的映射。
	// 用户名唯一，单值索引够用；改名后滞留的旧键靠读取时复核识别。
	readerUsernameKeyPrefix = "reader:username:"
	// readerPhoneKeyPrefix 前缀下的集合保存共用同一号码的全部读者编号。
	readerPhoneKeyPrefix = "reader:phone:"
)

// --- Reader 记录映射 ---

// readerToRecord 把 Reader 转换为扁平缓存记录。
func readerToRecord(rd *library.Reader) map[string]string {
	return map[string]string{
		"reader_number": rd.ReaderNumber,
		"username":      rd.Username,
		"name":          rd.Name,
		"birthdate":     rd.Birthdate.Format(recordTimeLayout),
		"phone_number":  rd.PhoneNumber,
		"gdpr_consent":  strconv.FormatBool(rd.GDPRConsent),
	}
}

// readerFromRecord 从缓存记录重建 Reader。
// 日期解析失败或领域校验不通过时返回 nil。
func readerFromRecord(rec map[string]string) *library.Reader {
	if len(rec) == 0 {
		return nil
	}
	birthdate, ok := parseTimeField(rec, "birthdate")
	if !ok {
		return nil
	}
	consent, err := strconv.ParseBool(rec["gdpr_consent"])
	if err != nil {
		return nil
	}
	rd := &library.Reader{
		ReaderNumber: rec["reader_number"],
		Username:     rec["username"],
		Name:         rec["name"],
		Birthdate:    birthdate,
		PhoneNumber:  rec["phone_number"],
		GDPRConsent:  consent,
	}
	if rd.ReaderNumber == "" {
		return nil
	}
	if err := rd.Validate(); err != nil {
		return nil
	}
	return rd
}

// --- 缓存仓库实现 ---

// redisReaderRepo 只用键值存储实现 ReaderRepository。
// 用户名索引是单值键（用户名唯一），电话索引是集合（号码可共用）。
type redisReaderRepo struct {
	store  cache.Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewReaderRepository 创建一个缓存侧的 ReaderRepository。
func NewReaderRepository(store cache.Store, ttl time.Duration, logger *zap.Logger) librepo.ReaderRepository {
	return &redisReaderRepo{
		store:  store,
		ttl:    ttl,
		logger: logger.Named("redisrepo.reader"),
	}
}

func readerKey(number string) string {
	return readerKeyPrefix + number
}

func readerUsernameKey(username string) string {
	return readerUsernameKeyPrefix + username
}

func readerPhoneKey(phone string) string {
	return readerPhoneKeyPrefix + phone
}

func (r *redisReaderRepo) FindByReaderNumber(ctx context.Context, readerNumber string) (*library.Reader, error) {
	rec, err := r.store.HGetAll(ctx, readerKey(readerNumber))
	if errors.Is(err, cache.ErrNotFound) {
		return nil, librepo.ErrNotFound
	} else if err != nil {
		return nil, err
	}
	rd := readerFromRecord(rec)
	if rd == nil {
		r.logger.Debug("读者缓存记录无法重建", zap.String("reader_number", readerNumber))
		return nil, librepo.ErrNotFound
	}
	return rd, nil
}

// FindByUsername 先通过用户名索引解析读者编号，再做主键查询，
// 最后复核主记录的用户名确实是查询的用户名：用户名变更后旧索引键
// 仍指向同一读者，不复核就会把权威存储里已不存在的键答成命中。
// 复核不区分大小写，与权威存储的用户名匹配语义一致。
func (r *redisReaderRepo) FindByUsername(ctx context.Context, username string) (*library.Reader, error) {
	number, err := r.store.Get(ctx, readerUsernameKey(username))
	if errors.Is(err, cache.ErrNotFound) {
		return nil, librepo.ErrNotFound
	} else if err != nil {
		return nil, err
	}
	rd, err := r.FindByReaderNumber(ctx, number)
	if err != nil {
		// 索引悬空时 FindByReaderNumber 返回 ErrNotFound，正好等同未命中
		return nil, err
	}
	if !strings.EqualFold(rd.Username, username) {
		r.logger.Debug("用户名索引已过时", zap.String("reader_number", number), zap.String("username", username))
		return nil, librepo.ErrNotFound
	}
	return rd, nil
}

// FindByPhoneNumber 通过电话集合索引回答。
// 任一成员的主记录缺失或换号后滞留（主记录的号码已不是查询的号码）
// 都整体按未命中处理，由协调器回源重建。
func (r *redisReaderRepo) FindByPhoneNumber(ctx context.Context, phoneNumber string) ([]*library.Reader, error) {
	numbers, err := r.store.SMembers(ctx, readerPhoneKey(phoneNumber))
	if errors.Is(err, cache.ErrNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	readers := make([]*library.Reader, 0, len(numbers))
	for _, number := range numbers {
		rd, err := r.FindByReaderNumber(ctx, number)
		if errors.Is(err, librepo.ErrNotFound) {
			return nil, nil
		} else if err != nil {
			return nil, err
		}
		if rd.PhoneNumber != phoneNumber {
			r.logger.Debug("电话索引成员已过时", zap.String("reader_number", number), zap.String("phone_number", phoneNumber))
			return nil, nil
		}
		readers = append(readers, rd)
	}
	return readers, nil
}

func (r *redisReaderRepo) Save(ctx context.Context, reader *library.Reader) (*library.Reader, error) {
	if reader == nil || reader.ReaderNumber == "" {
		return nil, fmt.Errorf("redisrepo: reader 缺少主键，无法写入缓存")
	}
	if err := r.store.HSetAll(ctx, readerKey(reader.ReaderNumber), readerToRecord(reader), r.ttl); err != nil {
		return nil, err
	}
	if err := r.store.Set(ctx, readerUsernameKey(reader.Username), reader.ReaderNumber, r.ttl); err != nil {
		return nil, err
	}
	if err := r.store.SAdd(ctx, readerPhoneKey(reader.PhoneNumber), r.ttl, reader.ReaderNumber); err != nil {
		return nil, err
	}
	return reader, nil
}

func (r *redisReaderRepo) Delete(ctx context.Context, reader *library.Reader) error {
	if reader == nil || reader.ReaderNumber == "" {
		return nil
	}
	if err := r.store.SRem(ctx, readerPhoneKey(reader.PhoneNumber), reader.ReaderNumber); err != nil {
		return err
	}
	return r.store.Del(ctx,
		readerUsernameKey(reader.Username),
		readerKey(reader.ReaderNumber),
	)
}

// 以下查询仅权威存储能回答，缓存返回契约上的空值。

func (r *redisReaderRepo) FindAll(ctx context.Context) ([]*library.Reader, error) {
	return nil, nil
}

func (r *redisReaderRepo) SearchByName(ctx context.Context, name string) ([]*library.Reader, error) {
	return nil, nil
}

func (r *redisReaderRepo) FindTopByLendings(ctx context.Context, limit int) ([]*library.Reader, error) {
	return nil, nil
}

var _ librepo.ReaderRepository = (*redisReaderRepo)(nil)
