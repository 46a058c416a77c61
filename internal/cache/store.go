package cache

import "context"

//go:generate mockgen -destination=../mocks/mock_snapshot_store.go -package=mocks github.com/cypherlabdev/odds-cache-service/internal/cache SnapshotStore

// SnapshotStore is the durable key-value backend behind the Manager.
// Read returns storage.ErrNotFound when nothing is stored under key, and
// Delete of a missing key succeeds.
type SnapshotStore interface {
	Write(ctx context.Context, key string, data []byte) error
	Read(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
