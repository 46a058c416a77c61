package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/odds-cache-service/internal/metrics"
	"github.com/cypherlabdev/odds-cache-service/internal/models"
	"github.com/cypherlabdev/odds-cache-service/internal/storage"
)

// DefaultKey is the durable storage key of the odds snapshot
const DefaultKey = "cached_odds"

// Snapshot is the cached odds payload and the instant it was stored
type Snapshot struct {
	Events   []models.OddsEvent `json:"odds"`
	StoredAt time.Time          `json:"timestamp"`
}

// SnapshotInfo describes the current snapshot without its payload
type SnapshotInfo struct {
	StoredAt     time.Time     `json:"stored_at"`
	ExpiresAt    time.Time     `json:"expires_at"` // Zero when the snapshot never expires
	Remaining    time.Duration `json:"remaining"`
	Fresh        bool          `json:"fresh"`
	NeverExpires bool          `json:"never_expires"`
	EventCount   int           `json:"event_count"`
}

// Manager owns the single odds snapshot. It keeps the latest snapshot in
// memory and mirrors it to a SnapshotStore so it survives restarts.
//
// All operations, including store I/O, run under one mutex. This keeps
// Store, GetFresh, GetStale and Clear strictly ordered even when the
// backing store is not safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	snapshot *Snapshot

	policy  Policy
	store   SnapshotStore
	key     string
	clock   clockwork.Clock
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// Option configures a Manager
type Option func(*Manager)

// WithClock sets the clock used to timestamp and validate snapshots
func WithClock(clock clockwork.Clock) Option {
	return func(m *Manager) {
		m.clock = clock
	}
}

// WithKey sets the durable storage key
func WithKey(key string) Option {
	return func(m *Manager) {
		m.key = key
	}
}

// WithMetrics sets the metrics the manager reports to
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mt
	}
}

// NewManager creates a cache manager backed by store
func NewManager(policy Policy, store SnapshotStore, logger zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		policy: policy,
		store:  store,
		key:    DefaultKey,
		clock:  clockwork.NewRealClock(),
		logger: logger.With().Str("component", "cache_manager").Logger(),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.metrics == nil {
		m.metrics = metrics.New(nil)
	}

	return m
}

// Policy returns the validity policy of the manager
func (m *Manager) Policy() Policy {
	return m.policy
}

// Store replaces the snapshot with events and persists it.
// The in-memory snapshot is updated even if persisting fails; in that case
// the returned error wraps ErrPersist.
func (m *Manager) Store(ctx context.Context, events []models.OddsEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := &Snapshot{
		Events:   cloneEvents(events),
		StoredAt: m.clock.Now().UTC(),
	}
	m.snapshot = snapshot

	data, err := json.Marshal(snapshot)
	if err != nil {
		m.metrics.PersistFailures.Inc()
		return fmt.Errorf("%w: failed to marshal snapshot: %w", ErrPersist, err)
	}

	if err := m.store.Write(ctx, m.key, data); err != nil {
		m.metrics.PersistFailures.Inc()
		m.logger.Error().
			Err(err).
			Str("key", m.key).
			Int("event_count", len(snapshot.Events)).
			Msg("failed to persist odds snapshot")
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	m.logger.Debug().
		Str("key", m.key).
		Int("event_count", len(snapshot.Events)).
		Time("stored_at", snapshot.StoredAt).
		Msg("cached odds snapshot")

	return nil
}

// GetFresh returns the snapshot payload if it is valid under the policy.
// Memory is checked first, then durable storage; a valid durable snapshot is
// promoted to memory. A missing or expired snapshot is not an error.
func (m *Manager) GetFresh(ctx context.Context) ([]models.OddsEvent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()

	if m.snapshot != nil && m.policy.IsValid(m.snapshot.StoredAt, now) {
		m.metrics.CacheHits.WithLabelValues(metrics.TierMemory).Inc()
		return cloneEvents(m.snapshot.Events), true
	}

	if snapshot := m.load(ctx); snapshot != nil && m.policy.IsValid(snapshot.StoredAt, now) {
		m.snapshot = snapshot
		m.metrics.CacheHits.WithLabelValues(metrics.TierDurable).Inc()
		m.logger.Debug().
			Time("stored_at", snapshot.StoredAt).
			Msg("promoted durable snapshot to memory")
		return cloneEvents(snapshot.Events), true
	}

	m.metrics.CacheMisses.Inc()
	return nil, false
}

// GetStale returns the last known snapshot payload regardless of age.
// Memory is checked first, then durable storage.
func (m *Manager) GetStale(ctx context.Context) ([]models.OddsEvent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.snapshot
	if snapshot == nil {
		snapshot = m.load(ctx)
		if snapshot == nil {
			return nil, false
		}
		m.snapshot = snapshot
	}

	m.metrics.StaleReads.Inc()
	return cloneEvents(snapshot.Events), true
}

// Clear drops the snapshot from memory and durable storage.
// Clearing an empty cache is a no-op; store failures are logged.
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshot = nil
	if err := m.store.Delete(ctx, m.key); err != nil {
		m.logger.Warn().
			Err(err).
			Str("key", m.key).
			Msg("failed to delete durable snapshot")
		return
	}

	m.logger.Info().Str("key", m.key).Msg("cleared odds cache")
}

// Info describes the current snapshot, looking in memory then durable storage
func (m *Manager) Info(ctx context.Context) (SnapshotInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.snapshot
	if snapshot == nil {
		snapshot = m.load(ctx)
		if snapshot == nil {
			return SnapshotInfo{}, false
		}
		m.snapshot = snapshot
	}

	now := m.clock.Now()
	info := SnapshotInfo{
		StoredAt:     snapshot.StoredAt,
		ExpiresAt:    m.policy.ExpiresAt(snapshot.StoredAt),
		Fresh:        m.policy.IsValid(snapshot.StoredAt, now),
		NeverExpires: m.policy.NeverExpires(),
		EventCount:   len(snapshot.Events),
	}
	if !info.NeverExpires {
		info.Remaining = m.policy.Remaining(snapshot.StoredAt, now)
	}

	return info, true
}

// load reads the durable snapshot. Missing, unreadable and corrupted records
// all yield nil; corrupted records are deleted. Callers must hold m.mu.
func (m *Manager) load(ctx context.Context) *Snapshot {
	data, err := m.store.Read(ctx, m.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	} else if err != nil {
		m.logger.Warn().
			Err(err).
			Str("key", m.key).
			Msg("failed to read durable snapshot")
		return nil
	}

	snapshot, err := decodeSnapshot(data)
	if err != nil {
		m.metrics.CorruptRecords.Inc()
		m.logger.Warn().
			Err(err).
			Str("key", m.key).
			Msg("discarding corrupted durable snapshot")

		if err := m.store.Delete(ctx, m.key); err != nil {
			m.logger.Warn().
				Err(err).
				Str("key", m.key).
				Msg("failed to delete corrupted durable snapshot")
		}
		return nil
	}

	return snapshot
}

func decodeSnapshot(data []byte) (*Snapshot, error) {
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	if snapshot.StoredAt.IsZero() {
		return nil, fmt.Errorf("%w: missing timestamp", ErrCorruptedData)
	}
	if snapshot.Events == nil {
		snapshot.Events = []models.OddsEvent{}
	}
	return &snapshot, nil
}

// cloneEvents copies the event slice so callers cannot reorder or replace
// entries of the cached snapshot. A nil input yields an empty snapshot.
func cloneEvents(events []models.OddsEvent) []models.OddsEvent {
	if events == nil {
		return []models.OddsEvent{}
	}
	return slices.Clone(events)
}
