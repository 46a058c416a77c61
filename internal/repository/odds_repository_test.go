package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cypherlabdev/odds-cache-service/internal/cache"
	"github.com/cypherlabdev/odds-cache-service/internal/metrics"
	"github.com/cypherlabdev/odds-cache-service/internal/mocks"
	"github.com/cypherlabdev/odds-cache-service/internal/models"
	"github.com/cypherlabdev/odds-cache-service/internal/storage"
)

// testRepositorySetup is a helper struct to hold test dependencies
type testRepositorySetup struct {
	repo    *OddsRepository
	cache   *mocks.MockCacheManager
	source  *mocks.MockUpstreamSource
	metrics *metrics.Metrics
	ctx     context.Context
}

// setupTestRepository creates a repository over mocked cache and upstream
func setupTestRepository(t *testing.T) *testRepositorySetup {
	ctrl := gomock.NewController(t)
	cacheManager := mocks.NewMockCacheManager(ctrl)
	source := mocks.NewMockUpstreamSource(ctrl)
	m := metrics.New(nil)

	return &testRepositorySetup{
		repo:    NewOddsRepository(cacheManager, source, zerolog.Nop(), WithMetrics(m)),
		cache:   cacheManager,
		source:  source,
		metrics: m,
		ctx:     context.Background(),
	}
}

func sampleOdds(prefix string, count int) []models.OddsEvent {
	events := make([]models.OddsEvent, count)
	for i := range events {
		events[i] = models.OddsEvent{
			ID:           fmt.Sprintf("%s_%d", prefix, i),
			Sport:        "soccer",
			HomeTeam:     "Arsenal",
			AwayTeam:     "Chelsea",
			CommenceTime: time.Date(2026, 5, 2, 15, 0, 0, 0, time.UTC),
			Bookmakers: []models.Bookmaker{
				{
					Name: "DraftKings",
					Outcomes: []models.Outcome{
						{Name: "Arsenal", Price: decimal.RequireFromString("2.10")},
						{Name: "Draw", Price: decimal.RequireFromString("3.40")},
						{Name: "Chelsea", Price: decimal.RequireFromString("3.25")},
					},
				},
			},
		}
	}
	return events
}

// TestFetch_CacheHit tests that a fresh snapshot is served without calling upstream
func TestFetch_CacheHit(t *testing.T) {
	setup := setupTestRepository(t)
	cached := sampleOdds("cached", 2)

	setup.cache.EXPECT().GetFresh(gomock.Any()).Return(cached, true)
	setup.source.EXPECT().Fetch(gomock.Any()).Times(0)

	events, err := setup.repo.Fetch(setup.ctx)
	require.NoError(t, err)
	assert.Equal(t, cached, events)
}

// TestFetch_MissFetchesAndStores tests the cache-through path
func TestFetch_MissFetchesAndStores(t *testing.T) {
	setup := setupTestRepository(t)
	fetched := sampleOdds("fresh", 3)

	gomock.InOrder(
		setup.cache.EXPECT().GetFresh(gomock.Any()).Return(nil, false),
		setup.source.EXPECT().Fetch(gomock.Any()).Return(fetched, nil),
		setup.cache.EXPECT().Store(gomock.Any(), fetched).Return(nil),
	)

	events, err := setup.repo.Fetch(setup.ctx)
	require.NoError(t, err)
	assert.Equal(t, fetched, events)
	assert.Equal(t, 1.0, testutil.ToFloat64(setup.metrics.UpstreamFetches.WithLabelValues(metrics.ResultSuccess)))
}

// TestFetch_StaleFallback tests that upstream failures are answered from stale data
func TestFetch_StaleFallback(t *testing.T) {
	setup := setupTestRepository(t)
	stale := sampleOdds("stale", 2)

	setup.cache.EXPECT().GetFresh(gomock.Any()).Return(nil, false)
	setup.source.EXPECT().Fetch(gomock.Any()).Return(nil, errors.New("network down"))
	setup.cache.EXPECT().GetStale(gomock.Any()).Return(stale, true)
	setup.cache.EXPECT().Store(gomock.Any(), gomock.Any()).Times(0)

	events, err := setup.repo.Fetch(setup.ctx)
	require.NoError(t, err)
	assert.Equal(t, stale, events)
	assert.Equal(t, 1.0, testutil.ToFloat64(setup.metrics.StaleFallbacks))
	assert.Equal(t, 1.0, testutil.ToFloat64(setup.metrics.UpstreamFetches.WithLabelValues(metrics.ResultFailure)))
}

// TestFetch_ColdStartFailure tests that an empty cache and failing upstream is an error
func TestFetch_ColdStartFailure(t *testing.T) {
	setup := setupTestRepository(t)
	upstreamErr := errors.New("connection refused")

	setup.cache.EXPECT().GetFresh(gomock.Any()).Return(nil, false)
	setup.source.EXPECT().Fetch(gomock.Any()).Return(nil, upstreamErr)
	setup.cache.EXPECT().GetStale(gomock.Any()).Return(nil, false)

	events, err := setup.repo.Fetch(setup.ctx)
	require.Error(t, err)
	assert.Nil(t, events)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, upstreamErr)
}

// TestFetch_StoreFailurePropagates tests that a failed cache write fails the fetch
func TestFetch_StoreFailurePropagates(t *testing.T) {
	setup := setupTestRepository(t)
	fetched := sampleOdds("fresh", 1)
	persistErr := fmt.Errorf("%w: disk full", cache.ErrPersist)

	setup.cache.EXPECT().GetFresh(gomock.Any()).Return(nil, false)
	setup.source.EXPECT().Fetch(gomock.Any()).Return(fetched, nil)
	setup.cache.EXPECT().Store(gomock.Any(), fetched).Return(persistErr)

	events, err := setup.repo.Fetch(setup.ctx)
	require.Error(t, err)
	assert.Nil(t, events)
	assert.ErrorIs(t, err, cache.ErrPersist)
}

// TestFetch_EmptyResultIsCached tests that zero events is a valid snapshot
func TestFetch_EmptyResultIsCached(t *testing.T) {
	setup := setupTestRepository(t)
	empty := []models.OddsEvent{}

	setup.cache.EXPECT().GetFresh(gomock.Any()).Return(nil, false)
	setup.source.EXPECT().Fetch(gomock.Any()).Return(empty, nil)
	setup.cache.EXPECT().Store(gomock.Any(), empty).Return(nil)

	events, err := setup.repo.Fetch(setup.ctx)
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

// TestFetch_CoalescesConcurrentMisses tests that concurrent cold fetches share one upstream call
func TestFetch_CoalescesConcurrentMisses(t *testing.T) {
	setup := setupTestRepository(t)
	fetched := sampleOdds("shared", 4)
	const callers = 8

	var misses sync.WaitGroup
	misses.Add(callers)
	release := make(chan struct{})

	setup.cache.EXPECT().GetFresh(gomock.Any()).DoAndReturn(func(context.Context) ([]models.OddsEvent, bool) {
		misses.Done()
		return nil, false
	}).Times(callers)
	setup.source.EXPECT().Fetch(gomock.Any()).DoAndReturn(func(context.Context) ([]models.OddsEvent, error) {
		<-release
		return fetched, nil
	}).Times(1)
	setup.cache.EXPECT().Store(gomock.Any(), fetched).Return(nil).Times(1)

	var wg sync.WaitGroup
	results := make([][]models.OddsEvent, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			events, err := setup.repo.Fetch(setup.ctx)
			assert.NoError(t, err)
			results[n] = events
		}(i)
	}

	misses.Wait()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, events := range results {
		assert.Len(t, events, 4)
	}
}

// TestFetch_CallerCancellation tests that an abandoned fetch still completes the cache write
func TestFetch_CallerCancellation(t *testing.T) {
	setup := setupTestRepository(t)
	fetched := sampleOdds("late", 1)
	release := make(chan struct{})
	stored := make(chan struct{})

	setup.cache.EXPECT().GetFresh(gomock.Any()).Return(nil, false)
	setup.source.EXPECT().Fetch(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]models.OddsEvent, error) {
		<-release
		return fetched, ctx.Err()
	})
	setup.cache.EXPECT().Store(gomock.Any(), fetched).DoAndReturn(func(context.Context, []models.OddsEvent) error {
		close(stored)
		return nil
	})

	ctx, cancel := context.WithCancel(setup.ctx)
	cancel()

	events, err := setup.repo.Fetch(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, events)

	close(release)
	select {
	case <-stored:
	case <-time.After(2 * time.Second):
		t.Fatal("detached fetch did not store the snapshot")
	}
}

// TestRefresh tests that refresh bypasses the cache and stores the result
func TestRefresh(t *testing.T) {
	setup := setupTestRepository(t)
	fetched := sampleOdds("refresh", 2)

	setup.cache.EXPECT().GetFresh(gomock.Any()).Times(0)
	setup.source.EXPECT().Fetch(gomock.Any()).Return(fetched, nil)
	setup.cache.EXPECT().Store(gomock.Any(), fetched).Return(nil)

	events, err := setup.repo.Refresh(setup.ctx)
	require.NoError(t, err)
	assert.Equal(t, fetched, events)
}

// TestRefresh_Errors tests that refresh never falls back to stale data
func TestRefresh_Errors(t *testing.T) {
	t.Run("upstream failure", func(t *testing.T) {
		setup := setupTestRepository(t)
		upstreamErr := errors.New("timeout")

		setup.source.EXPECT().Fetch(gomock.Any()).Return(nil, upstreamErr)
		setup.cache.EXPECT().GetStale(gomock.Any()).Times(0)

		_, err := setup.repo.Refresh(setup.ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, upstreamErr)
		assert.NotErrorIs(t, err, ErrUnavailable)
	})

	t.Run("store failure", func(t *testing.T) {
		setup := setupTestRepository(t)

		setup.source.EXPECT().Fetch(gomock.Any()).Return(sampleOdds("x", 1), nil)
		setup.cache.EXPECT().Store(gomock.Any(), gomock.Any()).Return(cache.ErrPersist)

		_, err := setup.repo.Refresh(setup.ctx)
		assert.ErrorIs(t, err, cache.ErrPersist)
	})
}

// TestPeekCache tests that peeking never calls upstream
func TestPeekCache(t *testing.T) {
	setup := setupTestRepository(t)
	cached := sampleOdds("peek", 1)

	setup.source.EXPECT().Fetch(gomock.Any()).Times(0)
	gomock.InOrder(
		setup.cache.EXPECT().GetFresh(gomock.Any()).Return(cached, true),
		setup.cache.EXPECT().GetFresh(gomock.Any()).Return(nil, false),
	)

	events, ok := setup.repo.PeekCache(setup.ctx)
	assert.True(t, ok)
	assert.Equal(t, cached, events)

	events, ok = setup.repo.PeekCache(setup.ctx)
	assert.False(t, ok)
	assert.Nil(t, events)
}

// TestCacheInfoAndClear tests delegation of the cache administration calls
func TestCacheInfoAndClear(t *testing.T) {
	setup := setupTestRepository(t)
	info := cache.SnapshotInfo{EventCount: 3, Fresh: true}

	setup.cache.EXPECT().Info(gomock.Any()).Return(info, true)
	setup.cache.EXPECT().Clear(gomock.Any())

	got, ok := setup.repo.CacheInfo(setup.ctx)
	require.True(t, ok)
	assert.Equal(t, info, got)

	setup.repo.ClearCache(setup.ctx)
}

// TestOddsRepository_WithManager runs the repository against a real cache manager
func TestOddsRepository_WithManager(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockUpstreamSource(ctrl)
	clock := clockwork.NewFakeClockAt(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	manager := cache.NewManager(cache.NewPolicy(5*time.Second), storage.NewMemoryStore(), zerolog.Nop(), cache.WithClock(clock))
	repo := NewOddsRepository(manager, source, zerolog.Nop())
	ctx := context.Background()

	first := sampleOdds("first", 1)
	second := sampleOdds("second", 2)

	t.Run("refresh twice keeps the second payload", func(t *testing.T) {
		gomock.InOrder(
			source.EXPECT().Fetch(gomock.Any()).Return(first, nil),
			source.EXPECT().Fetch(gomock.Any()).Return(second, nil),
		)

		events1, err := repo.Refresh(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, events1)

		events2, err := repo.Refresh(ctx)
		require.NoError(t, err)
		assert.Equal(t, second, events2)

		cached, ok := repo.PeekCache(ctx)
		require.True(t, ok)
		assert.Equal(t, second, cached)
	})

	t.Run("fetch after refresh is a cache hit", func(t *testing.T) {
		events, err := repo.Fetch(ctx)
		require.NoError(t, err)
		assert.Len(t, events, 2)
	})

	t.Run("expired snapshot with failing upstream serves stale", func(t *testing.T) {
		clock.Advance(6 * time.Second)
		source.EXPECT().Fetch(gomock.Any()).Return(nil, errors.New("upstream down"))

		_, ok := repo.PeekCache(ctx)
		assert.False(t, ok)

		events, err := repo.Fetch(ctx)
		require.NoError(t, err)
		assert.Len(t, events, 2)
	})

	t.Run("cleared cache with failing upstream is unavailable", func(t *testing.T) {
		repo.ClearCache(ctx)
		source.EXPECT().Fetch(gomock.Any()).Return(nil, errors.New("upstream down"))

		_, err := repo.Fetch(ctx)
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}
