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
	authorKeyPrefix = "author:"
	// authorNameKeyPrefix 前缀下的集合保存同名作者的全部编号。
	// 姓名不唯一，索引必须能容纳多个成员，单值索引会丢结果。
	authorNameKeyPrefix = "author:name:"
)

// --- Author 记录映射 ---

// authorToRecord 把 Author 转换为扁平缓存记录。
// 对同一实体重复调用产生完全相同的记录。
func authorToRecord(a *library.Author) map[string]string {
	rec := map[string]string{
		"author_number": strconv.FormatInt(a.AuthorNumber, 10),
		"name":          a.Name,
		"bio":           a.Bio,
	}
	putIfSet(rec, "photo_uri", a.PhotoURI)
	return rec
}

// authorFromRecord 从缓存记录重建 Author。
// 必填字段缺失、解析失败或领域校验不通过时返回 nil（按未命中处理）。
func authorFromRecord(rec map[string]string) *library.Author {
	if len(rec) == 0 {
		return nil
	}
	number, ok := parseInt64Field(rec, "author_number")
	if !ok {
		return nil
	}
	a := &library.Author{
		AuthorNumber: number,
		Name:         rec["name"],
		Bio:          rec["bio"],
		PhotoURI:     rec["photo_uri"],
	}
	if err := a.Validate(); err != nil {
		return nil
	}
	return a
}

// --- 缓存仓库实现 ---

// redisAuthorRepo 只用键值存储实现 AuthorRepository。
// 主记录存哈希，姓名二级索引存集合（姓名 → 作者编号集合）。
// 标注"仅权威存储"的查询返回契约上正确的空值。
type redisAuthorRepo struct {
	store  cache.Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewAuthorRepository 创建一个缓存侧的 AuthorRepository。
func NewAuthorRepository(store cache.Store, ttl time.Duration, logger *zap.Logger) librepo.AuthorRepository {
	return &redisAuthorRepo{
		store:  store,
		ttl:    ttl,
		logger: logger.Named("redisrepo.author"),
	}
}

func authorKey(number int64) string {
	return authorKeyPrefix + strconv.FormatInt(number, 10)
}

func authorNameKey(name string) string {
	return authorNameKeyPrefix + name
}

func (r *redisAuthorRepo) FindByAuthorNumber(ctx context.Context, authorNumber int64) (*library.Author, error) {
	rec, err := r.store.HGetAll(ctx, authorKey(authorNumber))
	if errors.Is(err, cache.ErrNotFound) {
		return nil, librepo.ErrNotFound
	} else if err != nil {
		return nil, err
	}
	a := authorFromRecord(rec)
	if a == nil {
		// 记录损坏或不完整，等同未命中
		r.logger.Debug("作者缓存记录无法重建", zap.Int64("author_number", authorNumber))
		return nil, librepo.ErrNotFound
	}
	return a, nil
}

// FindByName 通过姓名集合索引回答。
// 任一成员损坏、主记录缺失或重命名后滞留（主记录的姓名已不是查询的姓名）
// 都整体按未命中处理，由协调器回源重建。
func (r *redisAuthorRepo) FindByName(ctx context.Context, name string) ([]*library.Author, error) {
	members, err := r.store.SMembers(ctx, authorNameKey(name))
	if errors.Is(err, cache.ErrNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	authors := make([]*library.Author, 0, len(members))
	for _, member := range members {
		number, convErr := strconv.ParseInt(member, 10, 64)
		if convErr != nil {
			return nil, nil
		}
		a, err := r.FindByAuthorNumber(ctx, number)
		if errors.Is(err, librepo.ErrNotFound) {
			return nil, nil
		} else if err != nil {
			return nil, err
		}
		if a.Name != name {
			r.logger.Debug("姓名索引成员已过时", zap.Int64("author_number", number), zap.String("name", name))
			return nil, nil
		}
		authors = append(authors, a)
	}
	return authors, nil
}

func (r *redisAuthorRepo) Save(ctx context.Context, author *library.Author) (*library.Author, error) {
	if author == nil || author.AuthorNumber == 0 {
		// 缓存仓库从不分配主键
		return nil, fmt.Errorf("redisrepo: author 缺少主键，无法写入缓存")
	}
	if err := r.store.HSetAll(ctx, authorKey(author.AuthorNumber), authorToRecord(author), r.ttl); err != nil {
		return nil, err
	}
	if err := r.store.SAdd(ctx, authorNameKey(author.Name), r.ttl, strconv.FormatInt(author.AuthorNumber, 10)); err != nil {
		return nil, err
	}
	return author, nil
}

func (r *redisAuthorRepo) Delete(ctx context.Context, author *library.Author) error {
	if author == nil || author.AuthorNumber == 0 {
		return nil
	}
	if err := r.store.SRem(ctx, authorNameKey(author.Name), strconv.FormatInt(author.AuthorNumber, 10)); err != nil {
		return err
	}
	return r.store.Del(ctx, authorKey(author.AuthorNumber))
}

// FindAll 仅权威存储：作者集合大且变化频繁，不维护成员集合。
func (r *redisAuthorRepo) FindAll(ctx context.Context) ([]*library.Author, error) {
	return nil, nil
}

// FindTopByLendings 仅权威存储：聚合查询缓存无法回答。
func (r *redisAuthorRepo) FindTopByLendings(ctx context.Context, limit int) ([]*library.Author, error) {
	return nil, nil
}

var _ librepo.AuthorRepository = (*redisAuthorRepo)(nil)
