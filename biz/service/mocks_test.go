package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"bookwall/biz/model/library"
	"bookwall/biz/repo/librepo"
	"bookwall/infrastructure/rabbitmq"
)

// Hand-written testify mocks for the repository contracts and the event
// publisher. Tests live in the service package so they can pin the clock.

type mockAuthorRepo struct {
	mock.Mock
}

func (m *mockAuthorRepo) FindByAuthorNumber(ctx context.Context, authorNumber int64) (*library.Author, error) {
	args := m.Called(ctx, authorNumber)
	author, _ := args.Get(0).(*library.Author)
	return author, args.Error(1)
}

func (m *mockAuthorRepo) FindByName(ctx context.Context, name string) ([]*library.Author, error) {
	args := m.Called(ctx, name)
	authors, _ := args.Get(0).([]*library.Author)
	return authors, args.Error(1)
}

func (m *mockAuthorRepo) Save(ctx context.Context, author *library.Author) (*library.Author, error) {
	args := m.Called(ctx, author)
	saved, _ := args.Get(0).(*library.Author)
	return saved, args.Error(1)
}

func (m *mockAuthorRepo) Delete(ctx context.Context, author *library.Author) error {
	args := m.Called(ctx, author)
	return args.Error(0)
}

func (m *mockAuthorRepo) FindAll(ctx context.Context) ([]*library.Author, error) {
	args := m.Called(ctx)
	authors, _ := args.Get(0).([]*library.Author)
	return authors, args.Error(1)
}

func (m *mockAuthorRepo) FindTopByLendings(ctx context.Context, limit int) ([]*library.Author, error) {
	args := m.Called(ctx, limit)
	authors, _ := args.Get(0).([]*library.Author)
	return authors, args.Error(1)
}

var _ librepo.AuthorRepository = (*mockAuthorRepo)(nil)

type mockBookRepo struct {
	mock.Mock
}

func (m *mockBookRepo) FindByIsbn(ctx context.Context, isbn string) (*library.Book, error) {
	args := m.Called(ctx, isbn)
	book, _ := args.Get(0).(*library.Book)
	return book, args.Error(1)
}

func (m *mockBookRepo) FindByTitle(ctx context.Context, title string) ([]*library.Book, error) {
	args := m.Called(ctx, title)
	books, _ := args.Get(0).([]*library.Book)
	return books, args.Error(1)
}

func (m *mockBookRepo) Save(ctx context.Context, book *library.Book) (*library.Book, error) {
	args := m.Called(ctx, book)
	saved, _ := args.Get(0).(*library.Book)
	return saved, args.Error(1)
}

func (m *mockBookRepo) Delete(ctx context.Context, book *library.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *mockBookRepo) FindAll(ctx context.Context) ([]*library.Book, error) {
	args := m.Called(ctx)
	books, _ := args.Get(0).([]*library.Book)
	return books, args.Error(1)
}

func (m *mockBookRepo) FindByGenre(ctx context.Context, genre string) ([]*library.Book, error) {
	args := m.Called(ctx, genre)
	books, _ := args.Get(0).([]*library.Book)
	return books, args.Error(1)
}

func (m *mockBookRepo) FindByAuthorNumber(ctx context.Context, authorNumber int64) ([]*library.Book, error) {
	args := m.Called(ctx, authorNumber)
	books, _ := args.Get(0).([]*library.Book)
	return books, args.Error(1)
}

func (m *mockBookRepo) FindTopLent(ctx context.Context, limit int) ([]*library.Book, error) {
	args := m.Called(ctx, limit)
	books, _ := args.Get(0).([]*library.Book)
	return books, args.Error(1)
}

var _ librepo.BookRepository = (*mockBookRepo)(nil)

type mockGenreRepo struct {
	mock.Mock
}

func (m *mockGenreRepo) FindByName(ctx context.Context, name string) (*library.Genre, error) {
	args := m.Called(ctx, name)
	genre, _ := args.Get(0).(*library.Genre)
	return genre, args.Error(1)
}

func (m *mockGenreRepo) Save(ctx context.Context, genre *library.Genre) (*library.Genre, error) {
	args := m.Called(ctx, genre)
	saved, _ := args.Get(0).(*library.Genre)
	return saved, args.Error(1)
}

func (m *mockGenreRepo) Delete(ctx context.Context, genre *library.Genre) error {
	args := m.Called(ctx, genre)
	return args.Error(0)
}

func (m *mockGenreRepo) FindAll(ctx context.Context) ([]*library.Genre, error) {
	args := m.Called(ctx)
	genres, _ := args.Get(0).([]*library.Genre)
	return genres, args.Error(1)
}

func (m *mockGenreRepo) FindTopByBooks(ctx context.Context, limit int) ([]librepo.GenreCount, error) {
	args := m.Called(ctx, limit)
	counts, _ := args.Get(0).([]librepo.GenreCount)
	return counts, args.Error(1)
}

var _ librepo.GenreRepository = (*mockGenreRepo)(nil)

type mockReaderRepo struct {
	mock.Mock
}

func (m *mockReaderRepo) FindByReaderNumber(ctx context.Context, readerNumber string) (*library.Reader, error) {
	args := m.Called(ctx, readerNumber)
	reader, _ := args.Get(0).(*library.Reader)
	return reader, args.Error(1)
}

func (m *mockReaderRepo) FindByUsername(ctx context.Context, username string) (*library.Reader, error) {
	args := m.Called(ctx, username)
	reader, _ := args.Get(0).(*library.Reader)
	return reader, args.Error(1)
}

func (m *mockReaderRepo) FindByPhoneNumber(ctx context.Context, phoneNumber string) ([]*library.Reader, error) {
	args := m.Called(ctx, phoneNumber)
	readers, _ := args.Get(0).([]*library.Reader)
	return readers, args.Error(1)
}

func (m *mockReaderRepo) Save(ctx context.Context, reader *library.Reader) (*library.Reader, error) {
	args := m.Called(ctx, reader)
	saved, _ := args.Get(0).(*library.Reader)
	return saved, args.Error(1)
}

func (m *mockReaderRepo) Delete(ctx context.Context, reader *library.Reader) error {
	args := m.Called(ctx, reader)
	return args.Error(0)
}

func (m *mockReaderRepo) FindAll(ctx context.Context) ([]*library.Reader, error) {
	args := m.Called(ctx)
	readers, _ := args.Get(0).([]*library.Reader)
	return readers, args.Error(1)
}

func (m *mockReaderRepo) SearchByName(ctx context.Context, name string) ([]*library.Reader, error) {
	args := m.Called(ctx, name)
	readers, _ := args.Get(0).([]*library.Reader)
	return readers, args.Error(1)
}

func (m *mockReaderRepo) FindTopByLendings(ctx context.Context, limit int) ([]*library.Reader, error) {
	args := m.Called(ctx, limit)
	readers, _ := args.Get(0).([]*library.Reader)
	return readers, args.Error(1)
}

var _ librepo.ReaderRepository = (*mockReaderRepo)(nil)

type mockLendingRepo struct {
	mock.Mock
}

func (m *mockLendingRepo) FindByLendingNumber(ctx context.Context, lendingNumber string) (*library.Lending, error) {
	args := m.Called(ctx, lendingNumber)
	lending, _ := args.Get(0).(*library.Lending)
	return lending, args.Error(1)
}

func (m *mockLendingRepo) FindOutstandingByReader(ctx context.Context, readerNumber string) ([]*library.Lending, error) {
	args := m.Called(ctx, readerNumber)
	lendings, _ := args.Get(0).([]*library.Lending)
	return lendings, args.Error(1)
}

func (m *mockLendingRepo) Save(ctx context.Context, lending *library.Lending) (*library.Lending, error) {
	args := m.Called(ctx, lending)
	saved, _ := args.Get(0).(*library.Lending)
	return saved, args.Error(1)
}

func (m *mockLendingRepo) Delete(ctx context.Context, lending *library.Lending) error {
	args := m.Called(ctx, lending)
	return args.Error(0)
}

func (m *mockLendingRepo) FindAll(ctx context.Context) ([]*library.Lending, error) {
	args := m.Called(ctx)
	lendings, _ := args.Get(0).([]*library.Lending)
	return lendings, args.Error(1)
}

func (m *mockLendingRepo) FindOverdue(ctx context.Context) ([]*library.Lending, error) {
	args := m.Called(ctx)
	lendings, _ := args.Get(0).([]*library.Lending)
	return lendings, args.Error(1)
}

func (m *mockLendingRepo) AverageLendingDuration(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

var _ librepo.LendingRepository = (*mockLendingRepo)(nil)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishLendingEvent(ctx context.Context, routingKey string, event rabbitmq.LendingEvent) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

var _ LendingEventPublisher = (*mockPublisher)(nil)
