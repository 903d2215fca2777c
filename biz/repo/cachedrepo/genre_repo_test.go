package cachedrepo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bookwall/biz/model/library"
	"bookwall/biz/repo/cachedrepo"
	"bookwall/biz/repo/librepo"
)

func TestGenreCoordinator_FindAllMissPopulatesEveryGenre(t *testing.T) {
	cache := new(MockGenreRepo)
	source := new(MockGenreRepo)
	repo := cachedrepo.NewGenreRepository(cache, source, zap.NewNop())

	genres := []*library.Genre{
		{Name: "Fantasia"},
		{Name: "Infantil"},
		{Name: "Romance"},
	}
	// Membership set does not exist yet, the cache reports a miss.
	cache.On("FindAll", mock.Anything).Return(nil, librepo.ErrNotFound).Once()
	source.On("FindAll", mock.Anything).Return(genres, nil).Once()
	for _, g := range genres {
		cache.On("Save", mock.Anything, g).Return(g, nil).Once()
	}

	got, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, genres, got)

	cache.AssertExpectations(t)
	source.AssertExpectations(t)
}

func TestGenreCoordinator_FindAllHitSkipsSource(t *testing.T) {
	cache := new(MockGenreRepo)
	source := new(MockGenreRepo)
	repo := cachedrepo.NewGenreRepository(cache, source, zap.NewNop())

	genres := []*library.Genre{{Name: "Fantasia"}, {Name: "Romance"}}
	cache.On("FindAll", mock.Anything).Return(genres, nil).Once()

	got, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, genres, got)
	source.AssertNotCalled(t, "FindAll", mock.Anything)
}

func TestGenreCoordinator_FindAllPopulateStopsAfterFirstFailure(t *testing.T) {
	cache := new(MockGenreRepo)
	source := new(MockGenreRepo)
	repo := cachedrepo.NewGenreRepository(cache, source, zap.NewNop())

	genres := []*library.Genre{{Name: "Fantasia"}, {Name: "Infantil"}, {Name: "Romance"}}
	cache.On("FindAll", mock.Anything).Return(nil, librepo.ErrNotFound).Once()
	source.On("FindAll", mock.Anything).Return(genres, nil).Once()
	// The first populate fails, the remaining writes are not attempted.
	cache.On("Save", mock.Anything, genres[0]).Return(nil, errRedisDown).Once()

	got, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, genres, got)

	cache.AssertNumberOfCalls(t, "Save", 1)
}

func TestGenreCoordinator_FindByNameMissThenPopulate(t *testing.T) {
	cache := new(MockGenreRepo)
	source := new(MockGenreRepo)
	repo := cachedrepo.NewGenreRepository(cache, source, zap.NewNop())

	genre := &library.Genre{Name: "Fantasia"}
	cache.On("FindByName", mock.Anything, "Fantasia").Return(nil, librepo.ErrNotFound).Once()
	source.On("FindByName", mock.Anything, "Fantasia").Return(genre, nil).Once()
	cache.On("Save", mock.Anything, genre).Return(genre, nil).Once()

	got, err := repo.FindByName(context.Background(), "Fantasia")
	require.NoError(t, err)
	assert.Equal(t, genre, got)
	cache.AssertExpectations(t)
}

func TestGenreCoordinator_DeleteFailureInSourceSkipsCache(t *testing.T) {
	cache := new(MockGenreRepo)
	source := new(MockGenreRepo)
	repo := cachedrepo.NewGenreRepository(cache, source, zap.NewNop())

	genre := &library.Genre{Name: "Fantasia"}
	errDB := errors.New("pq: foreign key violation")
	source.On("Delete", mock.Anything, genre).Return(errDB).Once()

	err := repo.Delete(context.Background(), genre)
	assert.ErrorIs(t, err, errDB)
	cache.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestGenreCoordinator_TopByBooksGoesStraightToSource(t *testing.T) {
	cache := new(MockGenreRepo)
	source := new(MockGenreRepo)
	repo := cachedrepo.NewGenreRepository(cache, source, zap.NewNop())

	counts := []librepo.GenreCount{{Genre: "Fantasia", Count: 12}, {Genre: "Romance", Count: 7}}
	source.On("FindTopByBooks", mock.Anything, 2).Return(counts, nil).Once()

	got, err := repo.FindTopByBooks(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, counts, got)
	cache.AssertNotCalled(t, "FindTopByBooks", mock.Anything, mock.Anything)
}
