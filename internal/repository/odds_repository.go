package repository

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/cypherlabdev/odds-cache-service/internal/cache"
	"github.com/cypherlabdev/odds-cache-service/internal/metrics"
	"github.com/cypherlabdev/odds-cache-service/internal/models"
)

const fetchKey = "odds"

// OddsRepository serves odds cache-first, falling back to stale data when
// the upstream is unavailable
type OddsRepository struct {
	cache   CacheManager
	source  UpstreamSource
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// Option configures an OddsRepository
type Option func(*OddsRepository)

// WithMetrics sets the metrics the repository reports to
func WithMetrics(mt *metrics.Metrics) Option {
	return func(r *OddsRepository) {
		r.metrics = mt
	}
}

// NewOddsRepository creates a new odds repository
func NewOddsRepository(
	cacheManager CacheManager,
	source UpstreamSource,
	logger zerolog.Logger,
	opts ...Option,
) *OddsRepository {
	r := &OddsRepository{
		cache:  cacheManager,
		source: source,
		logger: logger.With().Str("component", "odds_repository").Logger(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.metrics == nil {
		r.metrics = metrics.New(nil)
	}

	return r
}

// Fetch returns fresh cached odds when available. Otherwise it fetches from
// the upstream and caches the result, falling back to the last known
// snapshot if the upstream fails.
//
// Concurrent misses share one upstream call. A caller whose context ends
// stops waiting, but the shared call runs to completion.
func (r *OddsRepository) Fetch(ctx context.Context) ([]models.OddsEvent, error) {
	if events, ok := r.cache.GetFresh(ctx); ok {
		r.logger.Debug().
			Int("event_count", len(events)).
			Msg("cache hit for odds")
		return events, nil
	}

	ch := r.group.DoChan(fetchKey, func() (interface{}, error) {
		return r.fetchThrough(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to fetch odds: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		events := res.Val.([]models.OddsEvent)
		if res.Shared {
			events = slices.Clone(events)
		}
		return events, nil
	}
}

func (r *OddsRepository) fetchThrough(ctx context.Context) ([]models.OddsEvent, error) {
	events, err := r.source.Fetch(ctx)
	if err != nil {
		r.metrics.UpstreamFetches.WithLabelValues(metrics.ResultFailure).Inc()

		if stale, ok := r.cache.GetStale(ctx); ok {
			r.metrics.StaleFallbacks.Inc()
			r.logger.Warn().
				Err(err).
				Int("event_count", len(stale)).
				Msg("upstream fetch failed, serving stale odds")
			return stale, nil
		}

		r.logger.Error().
			Err(err).
			Msg("upstream fetch failed and no cached odds available")
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	r.metrics.UpstreamFetches.WithLabelValues(metrics.ResultSuccess).Inc()

	if err := r.cache.Store(ctx, events); err != nil {
		return nil, fmt.Errorf("failed to cache odds: %w", err)
	}

	r.logger.Info().
		Int("event_count", len(events)).
		Msg("fetched and cached odds")

	return events, nil
}

// Refresh fetches from the upstream regardless of cache state and caches
// the result. Errors are returned without stale fallback.
func (r *OddsRepository) Refresh(ctx context.Context) ([]models.OddsEvent, error) {
	events, err := r.source.Fetch(ctx)
	if err != nil {
		r.metrics.UpstreamFetches.WithLabelValues(metrics.ResultFailure).Inc()
		return nil, fmt.Errorf("failed to refresh odds: %w", err)
	}
	r.metrics.UpstreamFetches.WithLabelValues(metrics.ResultSuccess).Inc()

	if err := r.cache.Store(ctx, events); err != nil {
		return nil, fmt.Errorf("failed to cache refreshed odds: %w", err)
	}

	r.logger.Info().
		Int("event_count", len(events)).
		Msg("refreshed odds")

	return events, nil
}

// PeekCache returns fresh cached odds without touching the upstream
func (r *OddsRepository) PeekCache(ctx context.Context) ([]models.OddsEvent, bool) {
	return r.cache.GetFresh(ctx)
}

// CacheInfo describes the current snapshot
func (r *OddsRepository) CacheInfo(ctx context.Context) (cache.SnapshotInfo, bool) {
	return r.cache.Info(ctx)
}

// ClearCache drops the cached snapshot
func (r *OddsRepository) ClearCache(ctx context.Context) {
	r.cache.Clear(ctx)
}
