package cachedrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bookwall/biz/model/library"
	"bookwall/biz/repo/cachedrepo"
	"bookwall/biz/repo/librepo"
)

func sampleLending(n string) *library.Lending {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return &library.Lending{
		LendingNumber: n,
		ISBN:          "9780306406157",
		ReaderNumber:  "2024/7",
		StartDate:     start,
		LimitDate:     start.AddDate(0, 0, 14),
	}
}

func TestLendingCoordinator_FindByNumberMissThenPopulate(t *testing.T) {
	cache := new(MockLendingRepo)
	source := new(MockLendingRepo)
	repo := cachedrepo.NewLendingRepository(cache, source, zap.NewNop())

	lending := sampleLending("2024/3")
	cache.On("FindByLendingNumber", mock.Anything, "2024/3").Return(nil, librepo.ErrNotFound).Once()
	source.On("FindByLendingNumber", mock.Anything, "2024/3").Return(lending, nil).Once()
	cache.On("Save", mock.Anything, lending).Return(lending, nil).Once()

	got, err := repo.FindByLendingNumber(context.Background(), "2024/3")
	require.NoError(t, err)
	assert.Equal(t, lending, got)
	cache.AssertExpectations(t)
}

// An empty outstanding list from the cache must not be trusted: a stale or
// evicted set would silently hide open lendings from the eligibility check.
func TestLendingCoordinator_EmptyOutstandingListRechecksSource(t *testing.T) {
	cache := new(MockLendingRepo)
	source := new(MockLendingRepo)
	repo := cachedrepo.NewLendingRepository(cache, source, zap.NewNop())

	lendings := []*library.Lending{sampleLending("2024/3"), sampleLending("2024/4")}
	cache.On("FindOutstandingByReader", mock.Anything, "2024/7").Return([]*library.Lending{}, nil).Once()
	source.On("FindOutstandingByReader", mock.Anything, "2024/7").Return(lendings, nil).Once()
	for _, l := range lendings {
		cache.On("Save", mock.Anything, l).Return(l, nil).Once()
	}

	got, err := repo.FindOutstandingByReader(context.Background(), "2024/7")
	require.NoError(t, err)
	assert.Equal(t, lendings, got)
	cache.AssertExpectations(t)
	source.AssertExpectations(t)
}

func TestLendingCoordinator_NonEmptyOutstandingListIsAHit(t *testing.T) {
	cache := new(MockLendingRepo)
	source := new(MockLendingRepo)
	repo := cachedrepo.NewLendingRepository(cache, source, zap.NewNop())

	lendings := []*library.Lending{sampleLending("2024/3")}
	cache.On("FindOutstandingByReader", mock.Anything, "2024/7").Return(lendings, nil).Once()

	got, err := repo.FindOutstandingByReader(context.Background(), "2024/7")
	require.NoError(t, err)
	assert.Equal(t, lendings, got)
	source.AssertNotCalled(t, "FindOutstandingByReader", mock.Anything, mock.Anything)
}

func TestLendingCoordinator_ReturnWritesSourceThenCache(t *testing.T) {
	cache := new(MockLendingRepo)
	source := new(MockLendingRepo)
	repo := cachedrepo.NewLendingRepository(cache, source, zap.NewNop())

	returned := sampleLending("2024/3")
	at := returned.StartDate.AddDate(0, 0, 10)
	returned.ReturnedDate = &at

	source.On("Save", mock.Anything, returned).Return(returned, nil).Once()
	cache.On("Save", mock.Anything, returned).Return(returned, nil).Once()

	got, err := repo.Save(context.Background(), returned)
	require.NoError(t, err)
	assert.NotNil(t, got.ReturnedDate)
	source.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestLendingCoordinator_StatsQueriesAreSourceOnly(t *testing.T) {
	cache := new(MockLendingRepo)
	source := new(MockLendingRepo)
	repo := cachedrepo.NewLendingRepository(cache, source, zap.NewNop())

	overdue := []*library.Lending{sampleLending("2024/2")}
	source.On("FindOverdue", mock.Anything).Return(overdue, nil).Once()
	source.On("AverageLendingDuration", mock.Anything).Return(9.5, nil).Once()

	got, err := repo.FindOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, overdue, got)

	avg, err := repo.AverageLendingDuration(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 9.5, avg, 1e-9)

	cache.AssertNotCalled(t, "FindOverdue", mock.Anything)
	cache.AssertNotCalled(t, "AverageLendingDuration", mock.Anything)
}
