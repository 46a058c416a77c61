package repository

import (
	"context"

	"github.com/cypherlabdev/odds-cache-service/internal/cache"
	"github.com/cypherlabdev/odds-cache-service/internal/models"
)

//go:generate mockgen -destination=../mocks/mock_cache_manager.go -package=mocks github.com/cypherlabdev/odds-cache-service/internal/repository CacheManager
//go:generate mockgen -destination=../mocks/mock_upstream_source.go -package=mocks github.com/cypherlabdev/odds-cache-service/internal/repository UpstreamSource

// CacheManager abstracts the snapshot cache.
// This allows for easier testing and mocking
type CacheManager interface {
	Store(ctx context.Context, events []models.OddsEvent) error
	GetFresh(ctx context.Context) ([]models.OddsEvent, bool)
	GetStale(ctx context.Context) ([]models.OddsEvent, bool)
	Clear(ctx context.Context)
	Info(ctx context.Context) (cache.SnapshotInfo, bool)
}

// UpstreamSource produces the full current set of odds events
type UpstreamSource interface {
	Fetch(ctx context.Context) ([]models.OddsEvent, error)
}
