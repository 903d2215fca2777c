package librepo

import (
	"context"

	"bookwall/biz/model/library"
)

// 每个实体类型有一个共享仓库契约，被实现三次：
//   - redisrepo：只用键值存储的缓存仓库（刻意不完整，见各方法注释）
//   - pgdal：权威的关系型存储仓库（完整实现）
//   - cachedrepo：组合前两者的协调器，对调用方与普通仓库无差别
//
// 标注"仅权威存储"的方法是缓存无法高效回答的查询：
// 缓存实现返回契约上正确的空值（空列表 / ErrNotFound / 零值），
// 协调器按方法静态路由，根本不会去碰缓存。

// AuthorRepository 定义了作者数据访问的操作接口。
type AuthorRepository interface {
	// FindByAuthorNumber 根据作者编号获取作者。
	// 输入：作者编号。
	// 输出：找到的作者对象，或 ErrNotFound。
	FindByAuthorNumber(ctx context.Context, authorNumber int64) (*library.Author, error)

	// FindByName 根据姓名精确查找作者（姓名不唯一，可能多位同名）。
	// 两种实现语义必须一致：缓存通过姓名集合索引回答，权威存储按
	// 姓名相等匹配。空结果一律按未命中处理。
	FindByName(ctx context.Context, name string) ([]*library.Author, error)

	// Save 保存（新建或覆盖）一位作者。
	// 输出：保存后的作者对象（权威存储可能补全编号）。
	Save(ctx context.Context, author *library.Author) (*library.Author, error)

	// Delete 删除一位作者。实体或主键缺失时为 no-op。
	Delete(ctx context.Context, author *library.Author) error

	// FindAll 返回全部作者。仅权威存储。
	FindAll(ctx context.Context) ([]*library.Author, error)

	// FindTopByLendings 返回借出次数最多的前 limit 位作者。仅权威存储。
	FindTopByLendings(ctx context.Context, limit int) ([]*library.Author, error)
}

// BookRepository 定义了图书数据访问的操作接口。
type BookRepository interface {
	// FindByIsbn 根据 ISBN 获取图书。
	// 输出：找到的图书对象，或 ErrNotFound。
	FindByIsbn(ctx context.Context, isbn string) (*library.Book, error)

	// FindByTitle 根据书名精确查找图书（书名不唯一，可能多本同名）。
	// 缓存实现通过书名集合索引回答；空结果一律按未命中处理。
	FindByTitle(ctx context.Context, title string) ([]*library.Book, error)

	// Save 保存（新建或覆盖）一本图书。
	Save(ctx context.Context, book *library.Book) (*library.Book, error)

	// Delete 删除一本图书。实体或主键缺失时为 no-op。
	Delete(ctx context.Context, book *library.Book) error

	// FindAll 返回全部图书。仅权威存储。
	FindAll(ctx context.Context) ([]*library.Book, error)

	// FindByGenre 返回指定类别下的全部图书。仅权威存储。
	FindByGenre(ctx context.Context, genre string) ([]*library.Book, error)

	// FindByAuthorNumber 返回指定作者参与的全部图书。仅权威存储。
	FindByAuthorNumber(ctx context.Context, authorNumber int64) ([]*library.Book, error)

	// FindTopLent 返回被借出次数最多的前 limit 本图书。仅权威存储。
	FindTopLent(ctx context.Context, limit int) ([]*library.Book, error)
}

// GenreCount 是类别聚合查询的结果行。
type GenreCount struct {
	Genre string `bun:"genre" json:"genre"`
	Count int64  `bun:"count" json:"count"`
}

// GenreRepository 定义了图书类别数据访问的操作接口。
type GenreRepository interface {
	// FindByName 根据类别名获取类别。
	// 输出：找到的类别对象，或 ErrNotFound。
	FindByName(ctx context.Context, name string) (*library.Genre, error)

	// Save 保存一个类别。
	Save(ctx context.Context, genre *library.Genre) (*library.Genre, error)

	// Delete 删除一个类别。实体或主键缺失时为 no-op。
	Delete(ctx context.Context, genre *library.Genre) error

	// FindAll 返回全部类别。
	// 类别集合小且极少变化，这是唯一允许缓存全量列表的实体：
	// 缓存实现通过成员集合回答，协调器在未命中后整体回填。
	FindAll(ctx context.Context) ([]*library.Genre, error)

	// FindTopByBooks 返回图书数量最多的前 limit 个类别及数量。仅权威存储。
	FindTopByBooks(ctx context.Context, limit int) ([]GenreCount, error)
}

// ReaderRepository 定义了读者数据访问的操作接口。
type ReaderRepository interface {
	// FindByReaderNumber 根据读者编号（形如 "2024/7"）获取读者。
	// 输出：找到的读者对象，或 ErrNotFound。
	FindByReaderNumber(ctx context.Context, readerNumber string) (*library.Reader, error)

	// FindByUsername 根据用户名（邮箱，唯一）获取读者。
	// 缓存实现通过用户名二级索引解析到主键再做主键查询。
	FindByUsername(ctx context.Context, username string) (*library.Reader, error)

	// FindByPhoneNumber 根据电话号码查找读者（可能多位读者共用一个号码）。
	// 缓存实现通过电话集合索引回答；空结果一律按未命中处理。
	FindByPhoneNumber(ctx context.Context, phoneNumber string) ([]*library.Reader, error)

	// Save 保存（新建或覆盖）一位读者。
	// 输出：保存后的读者对象（权威存储可能补全读者编号）。
	Save(ctx context.Context, reader *library.Reader) (*library.Reader, error)

	// Delete 删除一位读者。实体或主键缺失时为 no-op。
	Delete(ctx context.Context, reader *library.Reader) error

	// FindAll 返回全部读者。仅权威存储。
	FindAll(ctx context.Context) ([]*library.Reader, error)

	// SearchByName 按姓名模糊搜索读者。仅权威存储。
	SearchByName(ctx context.Context, name string) ([]*library.Reader, error)

	// FindTopByLendings 返回借阅次数最多的前 limit 位读者。仅权威存储。
	FindTopByLendings(ctx context.Context, limit int) ([]*library.Reader, error)
}

// LendingRepository 定义了借阅数据访问的操作接口。
type LendingRepository interface {
	// FindByLendingNumber 根据借阅编号（形如 "2024/7"）获取借阅记录。
	// 输出：找到的借阅对象，或 ErrNotFound。
	FindByLendingNumber(ctx context.Context, lendingNumber string) (*library.Lending, error)

	// FindOutstandingByReader 返回指定读者全部未归还的借阅。
	// 缓存实现通过读者未归还集合索引回答；空结果一律按未命中处理。
	FindOutstandingByReader(ctx context.Context, readerNumber string) ([]*library.Lending, error)

	// Save 保存（新建或覆盖）一条借阅记录。
	// 输出：保存后的借阅对象（权威存储可能补全借阅编号）。
	Save(ctx context.Context, lending *library.Lending) (*library.Lending, error)

	// Delete 删除一条借阅记录。实体或主键缺失时为 no-op。
	Delete(ctx context.Context, lending *library.Lending) error

	// FindAll 返回全部借阅记录。仅权威存储。
	FindAll(ctx context.Context) ([]*library.Lending, error)

	// FindOverdue 返回当前全部逾期未归还的借阅。仅权威存储。
	FindOverdue(ctx context.Context) ([]*library.Lending, error)

	// AverageLendingDuration 返回已归还借阅的平均时长（天）。仅权威存储。
	AverageLendingDuration(ctx context.Context) (float64, error)
}
