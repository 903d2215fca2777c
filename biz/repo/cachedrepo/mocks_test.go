package cachedrepo_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"bookwall/biz/model/library"
	"bookwall/biz/repo/librepo"
)

// Hand-written testify mocks for the repository contracts. The same mock
// type doubles as the cache side and the source side of a coordinator.

// --- AuthorRepository mock ---

type MockAuthorRepo struct {
	mock.Mock
}

func (m *MockAuthorRepo) FindByAuthorNumber(ctx context.Context, authorNumber int64) (*library.Author, error) {
	args := m.Called(ctx, authorNumber)
	author, _ := args.Get(0).(*library.Author)
	return author, args.Error(1)
}

func (m *MockAuthorRepo) FindByName(ctx context.Context, name string) ([]*library.Author, error) {
	args := m.Called(ctx, name)
	authors, _ := args.Get(0).([]*library.Author)
	return authors, args.Error(1)
}

func (m *MockAuthorRepo) Save(ctx context.Context, author *library.Author) (*library.Author, error) {
	args := m.Called(ctx, author)
	saved, _ := args.Get(0).(*library.Author)
	return saved, args.Error(1)
}

func (m *MockAuthorRepo) Delete(ctx context.Context, author *library.Author) error {
	args := m.Called(ctx, author)
	return args.Error(0)
}

func (m *MockAuthorRepo) FindAll(ctx context.Context) ([]*library.Author, error) {
	args := m.Called(ctx)
	authors, _ := args.Get(0).([]*library.Author)
	return authors, args.Error(1)
}

func (m *MockAuthorRepo) FindTopByLendings(ctx context.Context, limit int) ([]*library.Author, error) {
	args := m.Called(ctx, limit)
	authors, _ := args.Get(0).([]*library.Author)
	return authors, args.Error(1)
}

var _ librepo.AuthorRepository = (*MockAuthorRepo)(nil)

// --- BookRepository mock ---

type MockBookRepo struct {
	mock.Mock
}

func (m *MockBookRepo) FindByIsbn(ctx context.Context, isbn string) (*library.Book, error) {
	args := m.Called(ctx, isbn)
	book, _ := args.Get(0).(*library.Book)
	return book, args.Error(1)
}

func (m *MockBookRepo) FindByTitle(ctx context.Context, title string) ([]*library.Book, error) {
	args := m.Called(ctx, title)
	books, _ := args.Get(0).([]*library.Book)
	return books, args.Error(1)
}

func (m *MockBookRepo) Save(ctx context.Context, book *library.Book) (*library.Book, error) {
	args := m.Called(ctx, book)
	saved, _ := args.Get(0).(*library.Book)
	return saved, args.Error(1)
}

func (m *MockBookRepo) Delete(ctx context.Context, book *library.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *MockBookRepo) FindAll(ctx context.Context) ([]*library.Book, error) {
	args := m.Called(ctx)
	books, _ := args.Get(0).([]*library.Book)
	return books, args.Error(1)
}

func (m *MockBookRepo) FindByGenre(ctx context.Context, genre string) ([]*library.Book, error) {
	args := m.Called(ctx, genre)
	books, _ := args.Get(0).([]*library.Book)
	return books, args.Error(1)
}

func (m *MockBookRepo) FindByAuthorNumber(ctx context.Context, authorNumber int64) ([]*library.Book, error) {
	args := m.Called(ctx, authorNumber)
	books, _ := args.Get(0).([]*library.Book)
	return books, args.Error(1)
}

func (m *MockBookRepo) FindTopLent(ctx context.Context, limit int) ([]*library.Book, error) {
	args := m.Called(ctx, limit)
	books, _ := args.Get(0).([]*library.Book)
	return books, args.Error(1)
}

var _ librepo.BookRepository = (*MockBookRepo)(nil)

// --- GenreRepository mock ---

type MockGenreRepo struct {
	mock.Mock
}

func (m *MockGenreRepo) FindByName(ctx context.Context, name string) (*library.Genre, error) {
	args := m.Called(ctx, name)
	genre, _ := args.Get(0).(*library.Genre)
	return genre, args.Error(1)
}

func (m *MockGenreRepo) Save(ctx context.Context, genre *library.Genre) (*library.Genre, error) {
	args := m.Called(ctx, genre)
	saved, _ := args.Get(0).(*library.Genre)
	return saved, args.Error(1)
}

func (m *MockGenreRepo) Delete(ctx context.Context, genre *library.Genre) error {
	args := m.Called(ctx, genre)
	return args.Error(0)
}

func (m *MockGenreRepo) FindAll(ctx context.Context) ([]*library.Genre, error) {
	args := m.Called(ctx)
	genres, _ := args.Get(0).([]*library.Genre)
	return genres, args.Error(1)
}

func (m *MockGenreRepo) FindTopByBooks(ctx context.Context, limit int) ([]librepo.GenreCount, error) {
	args := m.Called(ctx, limit)
	counts, _ := args.Get(0).([]librepo.GenreCount)
	return counts, args.Error(1)
}

var _ librepo.GenreRepository = (*MockGenreRepo)(nil)

// --- ReaderRepository mock ---

type MockReaderRepo struct {
	mock.Mock
}

func (m *MockReaderRepo) FindByReaderNumber(ctx context.Context, readerNumber string) (*library.Reader, error) {
	args := m.Called(ctx, readerNumber)
	reader, _ := args.Get(0).(*library.Reader)
	return reader, args.Error(1)
}

func (m *MockReaderRepo) FindByUsername(ctx context.Context, username string) (*library.Reader, error) {
	args := m.Called(ctx, username)
	reader, _ := args.Get(0).(*library.Reader)
	return reader, args.Error(1)
}

func (m *MockReaderRepo) FindByPhoneNumber(ctx context.Context, phoneNumber string) ([]*library.Reader, error) {
	args := m.Called(ctx, phoneNumber)
	readers, _ := args.Get(0).([]*library.Reader)
	return readers, args.Error(1)
}

func (m *MockReaderRepo) Save(ctx context.Context, reader *library.Reader) (*library.Reader, error) {
	args := m.Called(ctx, reader)
	saved, _ := args.Get(0).(*library.Reader)
	return saved, args.Error(1)
}

func (m *MockReaderRepo) Delete(ctx context.Context, reader *library.Reader) error {
	args := m.Called(ctx, reader)
	return args.Error(0)
}

func (m *MockReaderRepo) FindAll(ctx context.Context) ([]*library.Reader, error) {
	args := m.Called(ctx)
	readers, _ := args.Get(0).([]*library.Reader)
	return readers, args.Error(1)
}

func (m *MockReaderRepo) SearchByName(ctx context.Context, name string) ([]*library.Reader, error) {
	args := m.Called(ctx, name)
	readers, _ := args.Get(0).([]*library.Reader)
	return readers, args.Error(1)
}

func (m *MockReaderRepo) FindTopByLendings(ctx context.Context, limit int) ([]*library.Reader, error) {
	args := m.Called(ctx, limit)
	readers, _ := args.Get(0).([]*library.Reader)
	return readers, args.Error(1)
}

var _ librepo.ReaderRepository = (*MockReaderRepo)(nil)

// --- LendingRepository mock ---

type MockLendingRepo struct {
	mock.Mock
}

func (m *MockLendingRepo) FindByLendingNumber(ctx context.Context, lendingNumber string) (*library.Lending, error) {
	args := m.Called(ctx, lendingNumber)
	lending, _ := args.Get(0).(*library.Lending)
	return lending, args.Error(1)
}

func (m *MockLendingRepo) FindOutstandingByReader(ctx context.Context, readerNumber string) ([]*library.Lending, error) {
	args := m.Called(ctx, readerNumber)
	lendings, _ := args.Get(0).([]*library.Lending)
	return lendings, args.Error(1)
}

func (m *MockLendingRepo) Save(ctx context.Context, lending *library.Lending) (*library.Lending, error) {
	args := m.Called(ctx, lending)
	saved, _ := args.Get(0).(*library.Lending)
	return saved, args.Error(1)
}

func (m *MockLendingRepo) Delete(ctx context.Context, lending *library.Lending) error {
	args := m.Called(ctx, lending)
	return args.Error(0)
}

func (m *MockLendingRepo) FindAll(ctx context.Context) ([]*library.Lending, error) {
	args := m.Called(ctx)
	lendings, _ := args.Get(0).([]*library.Lending)
	return lendings, args.Error(1)
}

func (m *MockLendingRepo) FindOverdue(ctx context.Context) ([]*library.Lending, error) {
	args := m.Called(ctx)
	lendings, _ := args.Get(0).([]*library.Lending)
	return lendings, args.Error(1)
}

func (m *MockLendingRepo) AverageLendingDuration(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

var _ librepo.LendingRepository = (*MockLendingRepo)(nil)
