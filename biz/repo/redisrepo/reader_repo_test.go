package redisrepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bookwall/biz/model/library"
	"bookwall/biz/repo/librepo"
)

func testReader() *library.Reader {
	return &library.Reader{
		ReaderNumber: "2024/7",
		Username:     "maria@example.com",
		Name:         "Maria Silva",
		Birthdate:    time.Date(1990, 5, 20, 0, 0, 0, 0, time.UTC),
		PhoneNumber:  "912345678",
		GDPRConsent:  true,
	}
}

func TestReaderRecord_RoundTrip(t *testing.T) {
	rd := testReader()

	rec := readerToRecord(rd)
	assert.Equal(t, rec, readerToRecord(rd))

	got := readerFromRecord(rec)
	require.NotNil(t, got)
	assert.Equal(t, rd, got)
}

func TestReaderFromRecord_Rejects(t *testing.T) {
	valid := readerToRecord(testReader())

	corrupt := func(mutate func(map[string]string)) map[string]string {
		rec := make(map[string]string, len(valid))
		for k, v := range valid {
			rec[k] = v
		}
		mutate(rec)
		return rec
	}

	tests := []struct {
		name string
		rec  map[string]string
	}{
		{"empty record", map[string]string{}},
		{"missing birthdate", corrupt(func(r map[string]string) { delete(r, "birthdate") })},
		{"malformed birthdate", corrupt(func(r map[string]string) { r["birthdate"] = "yesterday" })},
		{"malformed consent", corrupt(func(r map[string]string) { r["gdpr_consent"] = "maybe" })},
		{"missing number", corrupt(func(r map[string]string) { delete(r, "reader_number") })},
		{"invalid phone", corrupt(func(r map[string]string) { r["phone_number"] = "123" })},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, readerFromRecord(tt.rec))
		})
	}
}

func TestReaderRepo_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewReaderRepository(newMemStore(), time.Hour, zap.NewNop())
	rd := testReader()

	_, err := repo.Save(ctx, rd)
	require.NoError(t, err)

	got, err := repo.FindByReaderNumber(ctx, "2024/7")
	require.NoError(t, err)
	assert.Equal(t, rd, got)

	byUsername, err := repo.FindByUsername(ctx, rd.Username)
	require.NoError(t, err)
	assert.Equal(t, rd, byUsername)

	byPhone, err := repo.FindByPhoneNumber(ctx, rd.PhoneNumber)
	require.NoError(t, err)
	require.Len(t, byPhone, 1)
	assert.Equal(t, rd, byPhone[0])
}

// 主记录过期后两个二级索引都必须表现为未命中，而不是错误。
func TestReaderRepo_ExpiredPrimaryRecord(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	repo := NewReaderRepository(store, time.Hour, zap.NewNop())
	rd := testReader()

	_, err := repo.Save(ctx, rd)
	require.NoError(t, err)
	require.NoError(t, store.Del(ctx, readerKey(rd.ReaderNumber)))

	_, err = repo.FindByUsername(ctx, rd.Username)
	assert.ErrorIs(t, err, librepo.ErrNotFound)

	byPhone, err := repo.FindByPhoneNumber(ctx, rd.PhoneNumber)
	require.NoError(t, err)
	assert.Empty(t, byPhone)
}

// 换用户名后旧的用户名键还指向同一位读者，必须按未命中处理。
func TestReaderRepo_FindByUsernameAfterChange(t *testing.T) {
	ctx := context.Background()
	repo := NewReaderRepository(newMemStore(), time.Hour, zap.NewNop())
	rd := testReader()

	_, err := repo.Save(ctx, rd)
	require.NoError(t, err)

	updated := testReader()
	updated.Username = "maria.santos@example.com"
	_, err = repo.Save(ctx, updated)
	require.NoError(t, err)

	_, err = repo.FindByUsername(ctx, rd.Username)
	assert.ErrorIs(t, err, librepo.ErrNotFound)

	byNew, err := repo.FindByUsername(ctx, updated.Username)
	require.NoError(t, err)
	assert.Equal(t, updated, byNew)
}

// 用户名只改了大小写时旧键仍然有效：权威存储按不区分大小写匹配，
// 缓存的复核也必须按不区分大小写比较，否则会把合法命中降级成未命中。
func TestReaderRepo_FindByUsernameCaseOnlyChangeStillHits(t *testing.T) {
	ctx := context.Background()
	repo := NewReaderRepository(newMemStore(), time.Hour, zap.NewNop())
	rd := testReader()

	_, err := repo.Save(ctx, rd)
	require.NoError(t, err)

	updated := testReader()
	updated.Username = "Maria@Example.com"
	_, err = repo.Save(ctx, updated)
	require.NoError(t, err)

	got, err := repo.FindByUsername(ctx, "maria@example.com")
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestReaderRepo_FindByPhoneNumberReturnsAllHolders(t *testing.T) {
	ctx := context.Background()
	repo := NewReaderRepository(newMemStore(), time.Hour, zap.NewNop())

	first := testReader()
	second := testReader()
	second.ReaderNumber = "2024/8"
	second.Username = "joao@example.com"
	second.Name = "João Silva"

	_, err := repo.Save(ctx, first)
	require.NoError(t, err)
	_, err = repo.Save(ctx, second)
	require.NoError(t, err)

	byPhone, err := repo.FindByPhoneNumber(ctx, first.PhoneNumber)
	require.NoError(t, err)
	assert.ElementsMatch(t, []*library.Reader{first, second}, byPhone)
}

// 换号码后旧的号码集合里还留着该读者的编号，必须按未命中处理。
func TestReaderRepo_FindByPhoneNumberAfterChange(t *testing.T) {
	ctx := context.Background()
	repo := NewReaderRepository(newMemStore(), time.Hour, zap.NewNop())
	rd := testReader()

	_, err := repo.Save(ctx, rd)
	require.NoError(t, err)

	updated := testReader()
	updated.PhoneNumber = "926541203"
	_, err = repo.Save(ctx, updated)
	require.NoError(t, err)

	byOld, err := repo.FindByPhoneNumber(ctx, rd.PhoneNumber)
	require.NoError(t, err)
	assert.Empty(t, byOld, "stale index member must behave like a miss")

	byNew, err := repo.FindByPhoneNumber(ctx, updated.PhoneNumber)
	require.NoError(t, err)
	require.Len(t, byNew, 1)
	assert.Equal(t, updated, byNew[0])
}

func TestReaderRepo_SaveWithoutNumber(t *testing.T) {
	repo := NewReaderRepository(newMemStore(), time.Hour, zap.NewNop())
	rd := testReader()
	rd.ReaderNumber = ""

	_, err := repo.Save(context.Background(), rd)
	assert.Error(t, err)
}

func TestReaderRepo_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewReaderRepository(newMemStore(), time.Hour, zap.NewNop())
	rd := testReader()

	_, err := repo.Save(ctx, rd)
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, rd))

	_, err = repo.FindByReaderNumber(ctx, rd.ReaderNumber)
	assert.ErrorIs(t, err, librepo.ErrNotFound)
	_, err = repo.FindByUsername(ctx, rd.Username)
	assert.ErrorIs(t, err, librepo.ErrNotFound)
}

func TestReaderRepo_SourceOnlyQueriesReturnEmpty(t *testing.T) {
	ctx := context.Background()
	repo := NewReaderRepository(newMemStore(), time.Hour, zap.NewNop())

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	byName, err := repo.SearchByName(ctx, "Maria")
	require.NoError(t, err)
	assert.Empty(t, byName)

	top, err := repo.FindTopByLendings(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, top)
}
