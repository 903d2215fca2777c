package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"bookwall/biz/model/library"
	"bookwall/biz/repo/librepo"
	"bookwall/infrastructure/rabbitmq"
	"bookwall/pkg/config"
)

// LendingEventPublisher 是借阅事件发布端的最小接口。
// 生产实现是 rabbitmq.Publisher，测试用 mock，禁用消息时为 nil。
type LendingEventPublisher interface {
	PublishLendingEvent(ctx context.Context, routingKey string, event rabbitmq.LendingEvent) error
}

// LibraryService 定义了图书馆的业务逻辑接口。
// 所有数据访问都经过缓存协调仓库，service 层不感知缓存的存在。
type LibraryService interface {
	// 作者
	CreateAuthor(ctx context.Context, name, bio, photoURI string) (*library.Author, error)
	GetAuthor(ctx context.Context, authorNumber int64) (*library.Author, error)
	SearchAuthorsByName(ctx context.Context, name string) ([]*library.Author, error)
	TopAuthors(ctx context.Context, limit int) ([]*library.Author, error)

	// 类别
	CreateGenre(ctx context.Context, name string) (*library.Genre, error)
	ListGenres(ctx context.Context) ([]*library.Genre, error)
	TopGenres(ctx context.Context, limit int) ([]librepo.GenreCount, error)

	// 图书
	CreateBook(ctx context.Context, isbn, title, description, genre string, authorNumbers []int64, photoURI string) (*library.Book, error)
	GetBook(ctx context.Context, isbn string) (*library.Book, error)
	SearchBooksByTitle(ctx context.Context, title string) ([]*library.Book, error)
	BooksByGenre(ctx context.Context, genre string) ([]*library.Book, error)
	TopBooks(ctx context.Context, limit int) ([]*library.Book, error)

	// 读者
	RegisterReader(ctx context.Context, username, name string, birthdate time.Time, phoneNumber string, gdprConsent bool) (*library.Reader, error)
	GetReader(ctx context.Context, readerNumber string) (*library.Reader, error)
	GetReaderByUsername(ctx context.Context, username string) (*library.Reader, error)
	SearchReadersByName(ctx context.Context, name string) ([]*library.Reader, error)
	TopReaders(ctx context.Context, limit int) ([]*library.Reader, error)

	// 借阅
	LendBook(ctx context.Context, isbn, readerNumber string) (*library.Lending, error)
	ReturnBook(ctx context.Context, lendingNumber string) (*library.Lending, error)
	GetLending(ctx context.Context, lendingNumber string) (*library.Lending, error)
	OutstandingLendings(ctx context.Context, readerNumber string) ([]*library.Lending, error)
	OverdueLendings(ctx context.Context) ([]*library.Lending, error)
	AverageLendingDuration(ctx context.Context) (float64, error)
}

// libraryService 实现了 LibraryService 接口。
type libraryService struct {
	authors   librepo.AuthorRepository
	books     librepo.BookRepository
	genres    librepo.GenreRepository
	readers   librepo.ReaderRepository
	lendings  librepo.LendingRepository
	publisher LendingEventPublisher
	cfg       config.LendingConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewLibraryService 创建一个新的 LibraryService 实例。
// publisher 可以为 nil，表示不发布借阅事件。
func NewLibraryService(
	authors librepo.AuthorRepository,
	books librepo.BookRepository,
	genres librepo.GenreRepository,
	readers librepo.ReaderRepository,
	lendings librepo.LendingRepository,
	publisher LendingEventPublisher,
	cfg config.LendingConfig,
	logger *zap.Logger,
) LibraryService {
	return &libraryService{
		authors:   authors,
		books:     books,
		genres:    genres,
		readers:   readers,
		lendings:  lendings,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger.Named("service.library"),
		now:       time.Now,
	}
}

// --- 作者 ---

func (s *libraryService) CreateAuthor(ctx context.Context, name, bio, photoURI string) (*library.Author, error) {
	author, err := library.NewAuthor(name, bio, photoURI)
	if err != nil {
		return nil, fmt.Errorf("service: 作者校验失败: %w", err)
	}
	return s.authors.Save(ctx, author)
}

func (s *libraryService) GetAuthor(ctx context.Context, authorNumber int64) (*library.Author, error) {
	return s.authors.FindByAuthorNumber(ctx, authorNumber)
}

func (s *libraryService) SearchAuthorsByName(ctx context.Context, name string) ([]*library.Author, error) {
	return s.authors.FindByName(ctx, name)
}

func (s *libraryService) TopAuthors(ctx context.Context, limit int) ([]*library.Author, error) {
	return s.authors.FindTopByLendings(ctx, normalizeLimit(limit))
}

// --- 类别 ---

func (s *libraryService) CreateGenre(ctx context.Context, name string) (*library.Genre, error) {
	genre, err := library.NewGenre(name)
	if err != nil {
		return nil, fmt.Errorf("service: 类别校验失败: %w", err)
	}
	return s.genres.Save(ctx, genre)
}

func (s *libraryService) ListGenres(ctx context.Context) ([]*library.Genre, error) {
	return s.genres.FindAll(ctx)
}

func (s *libraryService) TopGenres(ctx context.Context, limit int) ([]librepo.GenreCount, error) {
	return s.genres.FindTopByBooks(ctx, normalizeLimit(limit))
}

// --- 图书 ---

// CreateBook 创建图书。类别和全部作者必须已存在。
func (s *libraryService) CreateBook(ctx context.Context, isbn, title, description, genre string, authorNumbers []int64, photoURI string) (*library.Book, error) {
	book, err := library.NewBook(isbn, title, description, genre, authorNumbers, photoURI)
	if err != nil {
		return nil, fmt.Errorf("service: 图书校验失败: %w", err)
	}

	if _, err := s.genres.FindByName(ctx, genre); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownGenre, genre)
		}
		return nil, err
	}
	for _, n := range authorNumbers {
		if _, err := s.authors.FindByAuthorNumber(ctx, n); err != nil {
			if isNotFound(err) {
				return nil, fmt.Errorf("%w: %d", ErrUnknownAuthor, n)
			}
			return nil, err
		}
	}

	return s.books.Save(ctx, book)
}

func (s *libraryService) GetBook(ctx context.Context, isbn string) (*library.Book, error) {
	return s.books.FindByIsbn(ctx, isbn)
}

func (s *libraryService) SearchBooksByTitle(ctx context.Context, title string) ([]*library.Book, error) {
	return s.books.FindByTitle(ctx, title)
}

func (s *libraryService) BooksByGenre(ctx context.Context, genre string) ([]*library.Book, error) {
	return s.books.FindByGenre(ctx, genre)
}

func (s *libraryService) TopBooks(ctx context.Context, limit int) ([]*library.Book, error) {
	return s.books.FindTopLent(ctx, normalizeLimit(limit))
}

// --- 读者 ---

func (s *libraryService) RegisterReader(ctx context.Context, username, name string, birthdate time.Time, phoneNumber string, gdprConsent bool) (*library.Reader, error) {
	reader, err := library.NewReader(username, name, birthdate, phoneNumber, gdprConsent)
	if err != nil {
		return nil, fmt.Errorf("service: 读者校验失败: %w", err)
	}
	saved, err := s.readers.Save(ctx, reader)
	if err != nil {
		return nil, err
	}
	s.logger.Info("读者注册成功", zap.String("reader_number", saved.ReaderNumber))
	return saved, nil
}

func (s *libraryService) GetReader(ctx context.Context, readerNumber string) (*library.Reader, error) {
	return s.readers.FindByReaderNumber(ctx, readerNumber)
}

func (s *libraryService) GetReaderByUsername(ctx context.Context, username string) (*library.Reader, error) {
	return s.readers.FindByUsername(ctx, username)
}

func (s *libraryService) SearchReadersByName(ctx context.Context, name string) ([]*library.Reader, error) {
	return s.readers.SearchByName(ctx, name)
}

func (s *libraryService) TopReaders(ctx context.Context, limit int) ([]*library.Reader, error) {
	return s.readers.FindTopByLendings(ctx, normalizeLimit(limit))
}

// --- 借阅 ---

// LendBook 借出一本图书。
// 资格规则：未归还借阅数量低于上限，且没有任何逾期未归还的借阅。
func (s *libraryService) LendBook(ctx context.Context, isbn, readerNumber string) (*library.Lending, error) {
	// 1. 图书和读者必须存在（ErrNotFound 原样向上传）
	if _, err := s.books.FindByIsbn(ctx, isbn); err != nil {
		return nil, err
	}
	if _, err := s.readers.FindByReaderNumber(ctx, readerNumber); err != nil {
		return nil, err
	}

	// 2. 资格检查
	outstanding, err := s.lendings.FindOutstandingByReader(ctx, readerNumber)
	if err != nil {
		return nil, err
	}
	if len(outstanding) >= s.cfg.MaxOutstandingCount {
		return nil, ErrTooManyOutstanding
	}
	now := s.now()
	for _, l := range outstanding {
		if l.IsOverdue(now) {
			return nil, fmt.Errorf("%w: %s", ErrHasOverdue, l.LendingNumber)
		}
	}

	// 3. 创建并保存借阅
	lending, err := library.NewLending(isbn, readerNumber, now, s.cfg.DurationDays)
	if err != nil {
		return nil, fmt.Errorf("service: 借阅校验失败: %w", err)
	}
	saved, err := s.lendings.Save(ctx, lending)
	if err != nil {
		return nil, err
	}
	s.logger.Info("借阅创建成功",
		zap.String("lending_number", saved.LendingNumber),
		zap.String("isbn", isbn),
		zap.String("reader_number", readerNumber),
	)

	// 4. 发布事件。发布失败不影响借阅结果，只记录日志
	s.publishEvent(ctx, rabbitmq.RoutingKeyLendingCreated, saved)
	return saved, nil
}

// ReturnBook 登记归还并计算罚款。重复归还返回 ErrAlreadyReturned。
func (s *libraryService) ReturnBook(ctx context.Context, lendingNumber string) (*library.Lending, error) {
	lending, err := s.lendings.FindByLendingNumber(ctx, lendingNumber)
	if err != nil {
		return nil, err
	}
	if !lending.IsOutstanding() {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyReturned, lendingNumber)
	}

	lending.MarkReturned(s.now(), s.cfg.FinePerDayCents)
	saved, err := s.lendings.Save(ctx, lending)
	if err != nil {
		return nil, err
	}
	s.logger.Info("借阅归还成功",
		zap.String("lending_number", saved.LendingNumber),
		zap.Int64("fine_cents", saved.FineCents),
	)

	s.publishEvent(ctx, rabbitmq.RoutingKeyLendingReturned, saved)
	return saved, nil
}

func (s *libraryService) GetLending(ctx context.Context, lendingNumber string) (*library.Lending, error) {
	return s.lendings.FindByLendingNumber(ctx, lendingNumber)
}

func (s *libraryService) OutstandingLendings(ctx context.Context, readerNumber string) ([]*library.Lending, error) {
	return s.lendings.FindOutstandingByReader(ctx, readerNumber)
}

func (s *libraryService) OverdueLendings(ctx context.Context) ([]*library.Lending, error) {
	return s.lendings.FindOverdue(ctx)
}

func (s *libraryService) AverageLendingDuration(ctx context.Context) (float64, error) {
	return s.lendings.AverageLendingDuration(ctx)
}

// publishEvent 发布借阅事件，失败只记录日志。
func (s *libraryService) publishEvent(ctx context.Context, routingKey string, lending *library.Lending) {
	if s.publisher == nil {
		return
	}
	event := rabbitmq.NewLendingEvent(routingKey, lending.LendingNumber, lending.ISBN, lending.ReaderNumber)
	event.FineCents = lending.FineCents
	if err := s.publisher.PublishLendingEvent(ctx, routingKey, event); err != nil {
		s.logger.Warn("借阅事件发布失败",
			zap.String("routing_key", routingKey),
			zap.String("lending_number", lending.LendingNumber),
			zap.Error(err),
		)
	}
}

// normalizeLimit 把非法的 limit 归一到默认值。
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 5
	}
	return limit
}

func isNotFound(err error) bool {
	return errors.Is(err, librepo.ErrNotFound)
}
