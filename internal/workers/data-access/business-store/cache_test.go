// internal/workers/data-access/business-store/cache_test.go
package businessstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wenwen-recommender/internal/models"
)

// ==========================
// Fake Finder
// ==========================

type fakeFinder struct {
	mu      sync.Mutex
	records []models.BusinessRecord
	err     error
	calls   map[string]int
}

func newFakeFinder(records ...models.BusinessRecord) *fakeFinder {
	return &fakeFinder{records: records, calls: map[string]int{}}
}

func (f *fakeFinder) hit(name string) ([]models.BusinessRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeFinder) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeFinder) FindBusinessesByCategory(context.Context, string, int) ([]models.BusinessRecord, error) {
	return f.hit("category")
}

func (f *fakeFinder) FindBusinessByName(context.Context, string) ([]models.BusinessRecord, error) {
	return f.hit("name")
}

func (f *fakeFinder) FindPartnerBusinesses(context.Context, int) ([]models.BusinessRecord, error) {
	return f.hit("partners")
}

func (f *fakeFinder) FindTopBusinesses(context.Context, int) ([]models.BusinessRecord, error) {
	return f.hit("top")
}

func testCacheConfig() *Config {
	return &Config{CacheTTL: time.Minute, CachePrefix: "biz"}
}

func newMiniredisCache(t *testing.T, source BusinessFinder) (*CachedFinder, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCachedFinder(source, client, testCacheConfig(), NewTestLogger(t)), mr
}

// ==========================
// Cache-aside with miniredis
// ==========================

func TestCachedFinder_MissThenHit(t *testing.T) {
	source := newFakeFinder(models.BusinessRecord{ID: "b1", Name: "肯塔基美語", Category: "教育學習", IsPartner: true})
	cache, mr := newMiniredisCache(t, source)
	ctx := context.Background()

	first, err := cache.FindBusinessesByCategory(ctx, "教育學習", 20)
	require.NoError(t, err)
	second, err := cache.FindBusinessesByCategory(ctx, "教育學習", 20)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, source.count("category"))

	key := cache.CacheKey(models.OpFindBusinessesByCategory, "教育學習", 20)
	assert.Equal(t, "biz:find_businesses_by_category:教育學習:20", key)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))
}

func TestCachedFinder_EmptyResultIsCached(t *testing.T) {
	source := newFakeFinder()
	cache, _ := newMiniredisCache(t, source)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := cache.FindTopBusinesses(ctx, 5)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
	assert.Equal(t, 1, source.count("top"))
}

func TestCachedFinder_ExpiredEntryReloads(t *testing.T) {
	source := newFakeFinder(models.BusinessRecord{ID: "p1", Name: "好停車", Category: "停車場", IsPartner: true})
	cache, mr := newMiniredisCache(t, source)
	ctx := context.Background()

	_, err := cache.FindPartnerBusinesses(ctx, 10)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, err = cache.FindPartnerBusinesses(ctx, 10)
	require.NoError(t, err)

	assert.Equal(t, 2, source.count("partners"))
}

func TestCachedFinder_CorruptEntryIsReplaced(t *testing.T) {
	source := newFakeFinder(models.BusinessRecord{ID: "b1", Name: "肯塔基美語", Category: "教育學習"})
	cache, mr := newMiniredisCache(t, source)

	key := cache.CacheKey(models.OpFindBusinessByName, "肯塔基美語", 1)
	require.NoError(t, mr.Set(key, "{{{"))

	got, err := cache.FindBusinessByName(context.Background(), "肯塔基美語")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, source.count("name"))

	stored, err := mr.Get(key)
	require.NoError(t, err)
	var decoded []models.BusinessRecord
	assert.NoError(t, json.Unmarshal([]byte(stored), &decoded))
}

func TestCachedFinder_SourceErrorIsNotCached(t *testing.T) {
	source := newFakeFinder()
	source.err = errors.New("connection refused")
	cache, mr := newMiniredisCache(t, source)

	_, err := cache.FindTopBusinesses(context.Background(), 5)
	require.Error(t, err)
	assert.False(t, mr.Exists(cache.CacheKey(models.OpFindTopBusinesses, "", 5)))
}

func TestCachedFinder_RedisDownFallsThrough(t *testing.T) {
	source := newFakeFinder(models.BusinessRecord{ID: "b1", Name: "x", Category: "y"})
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	cache := NewCachedFinder(source, client, testCacheConfig(), NewTestLogger(t))

	got, err := cache.FindTopBusinesses(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

// ==========================
// Command-level behaviour with redismock
// ==========================

func TestCachedFinder_RedismockMissWritesThrough(t *testing.T) {
	client, mock := redismock.NewClientMock()
	records := []models.BusinessRecord{{ID: "b1", Name: "肯塔基美語", Category: "教育學習"}}
	source := newFakeFinder(records...)
	cache := NewCachedFinder(source, client, testCacheConfig(), NewTestLogger(t))

	key := cache.CacheKey(models.OpFindBusinessesByCategory, "教育學習", 20)
	payload, err := json.Marshal(records)
	require.NoError(t, err)

	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, payload, time.Minute).SetVal("OK")

	got, err := cache.FindBusinessesByCategory(context.Background(), "教育學習", 20)
	require.NoError(t, err)
	assert.Equal(t, records, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedFinder_RedismockGetErrorFallsThrough(t *testing.T) {
	client, mock := redismock.NewClientMock()
	source := newFakeFinder(models.BusinessRecord{ID: "b1", Name: "x", Category: "y"})
	cache := NewCachedFinder(source, client, testCacheConfig(), NewTestLogger(t))

	key := cache.CacheKey(models.OpFindTopBusinesses, "", 5)
	mock.ExpectGet(key).SetErr(errors.New("LOADING Redis is loading the dataset in memory"))

	got, err := cache.FindTopBusinesses(context.Background(), 5)
	require.NoError(t, err, "cache failures never fail the read")
	assert.Len(t, got, 1)
	assert.Equal(t, 1, source.count("top"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedFinder_RedismockHit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	source := newFakeFinder()
	cache := NewCachedFinder(source, client, testCacheConfig(), NewTestLogger(t))

	key := cache.CacheKey(models.OpFindPartnerBusinesses, "", 10)
	mock.ExpectGet(key).SetVal(`[{"id":"p1","name":"好停車","category":"停車場","isPartner":true}]`)

	got, err := cache.FindPartnerBusinesses(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsPartner)
	assert.Equal(t, 0, source.count("partners"))
}
