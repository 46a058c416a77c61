package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	platformerrors "github.com/jmgilman/go/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cypherlabdev/odds-cache-service/internal/cache"
	"github.com/cypherlabdev/odds-cache-service/internal/metrics"
	"github.com/cypherlabdev/odds-cache-service/internal/mocks"
	"github.com/cypherlabdev/odds-cache-service/internal/models"
)

// testKafkaConsumerSetup is a helper struct to hold test dependencies
type testKafkaConsumerSetup struct {
	mockWriter *mocks.MockSnapshotWriter
	metrics    *metrics.Metrics
	logger     zerolog.Logger
	ctrl       *gomock.Controller
}

// setupTestKafkaConsumer creates a test consumer with mocked dependencies
func setupTestKafkaConsumer(t *testing.T) *testKafkaConsumerSetup {
	ctrl := gomock.NewController(t)

	return &testKafkaConsumerSetup{
		mockWriter: mocks.NewMockSnapshotWriter(ctrl),
		metrics:    metrics.New(nil),
		logger:     zerolog.Nop(),
		ctrl:       ctrl,
	}
}

// cleanup cleans up test resources
func (s *testKafkaConsumerSetup) cleanup() {
	s.ctrl.Finish()
}

func (s *testKafkaConsumerSetup) newConsumer() *KafkaConsumer {
	return NewKafkaConsumer(KafkaConsumerConfig{
		Brokers: []string{"localhost:9092"},
		Topic:   "odds_snapshots",
		GroupID: "test-group",
	}, s.mockWriter, s.metrics, s.logger)
}

func snapshotMessage(t *testing.T, events []models.OddsEvent) kafka.Message {
	t.Helper()

	value, err := json.Marshal(models.KafkaOddsSnapshotMessage{
		Events:    events,
		Timestamp: time.Now(),
		BatchID:   uuid.NewString(),
	})
	require.NoError(t, err)

	return kafka.Message{Key: []byte("odds"), Value: value, Offset: 42}
}

func feedEvents() []models.OddsEvent {
	return []models.OddsEvent{
		{
			ID:           "hockey_NHL_Toronto_Maple_Leafs_Montreal_Canadiens_1",
			Sport:        "hockey",
			HomeTeam:     "Toronto Maple Leafs",
			AwayTeam:     "Montreal Canadiens",
			CommenceTime: time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC),
			Bookmakers: []models.Bookmaker{
				{
					Name: "Caesars",
					Outcomes: []models.Outcome{
						{Name: "Toronto Maple Leafs", Price: decimal.RequireFromString("1.72")},
						{Name: "Montreal Canadiens", Price: decimal.RequireFromString("2.15")},
					},
				},
			},
		},
	}
}

// TestNewKafkaConsumer tests consumer creation
func TestNewKafkaConsumer(t *testing.T) {
	setup := setupTestKafkaConsumer(t)
	defer setup.cleanup()

	consumer := setup.newConsumer()

	assert.NotNil(t, consumer)
	assert.NotNil(t, consumer.reader)
	assert.NotNil(t, consumer.writer)
	assert.Equal(t, "odds_snapshots", consumer.reader.Config().Topic)
	assert.Equal(t, "test-group", consumer.reader.Config().GroupID)

	consumer.Close()
}

// TestProcessMessage_StoresSnapshot tests that a snapshot message replaces the cache
func TestProcessMessage_StoresSnapshot(t *testing.T) {
	setup := setupTestKafkaConsumer(t)
	defer setup.cleanup()

	consumer := setup.newConsumer()
	defer consumer.Close()

	events := feedEvents()
	setup.mockWriter.EXPECT().Store(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, stored []models.OddsEvent) error {
			require.Len(t, stored, 1)
			assert.Equal(t, events[0].ID, stored[0].ID)
			assert.True(t, stored[0].Bookmakers[0].Outcomes[1].Price.Equal(decimal.RequireFromString("2.15")))
			return nil
		})

	err := consumer.processMessage(context.Background(), snapshotMessage(t, events))
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(setup.metrics.SnapshotsIngested))
}

// TestProcessMessage_EmptySnapshot tests that an empty feed snapshot is stored as empty
func TestProcessMessage_EmptySnapshot(t *testing.T) {
	setup := setupTestKafkaConsumer(t)
	defer setup.cleanup()

	consumer := setup.newConsumer()
	defer consumer.Close()

	setup.mockWriter.EXPECT().Store(gomock.Any(), []models.OddsEvent{}).Return(nil)

	err := consumer.processMessage(context.Background(), kafka.Message{Value: []byte(`{"batch_id": "batch-empty"}`)})
	require.NoError(t, err)
}

// TestProcessMessage_InvalidJSON tests that malformed messages are permanent failures
func TestProcessMessage_InvalidJSON(t *testing.T) {
	setup := setupTestKafkaConsumer(t)
	defer setup.cleanup()

	consumer := setup.newConsumer()
	defer consumer.Close()

	setup.mockWriter.EXPECT().Store(gomock.Any(), gomock.Any()).Times(0)

	err := consumer.processMessage(context.Background(), kafka.Message{Value: []byte("not json")})
	require.Error(t, err)
	assert.Equal(t, platformerrors.CodeSchemaFailed, platformerrors.GetCode(err))
	assert.False(t, platformerrors.IsRetryable(err))
	assert.Equal(t, 0.0, testutil.ToFloat64(setup.metrics.SnapshotsIngested))
}

// TestProcessMessage_CacheFailure tests that a persist failure is retryable
func TestProcessMessage_CacheFailure(t *testing.T) {
	setup := setupTestKafkaConsumer(t)
	defer setup.cleanup()

	consumer := setup.newConsumer()
	defer consumer.Close()

	setup.mockWriter.EXPECT().Store(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("%w: %w", cache.ErrPersist, errors.New("redis down")))

	err := consumer.processMessage(context.Background(), snapshotMessage(t, feedEvents()))
	require.Error(t, err)
	assert.ErrorIs(t, err, cache.ErrPersist)
	assert.True(t, platformerrors.IsRetryable(err))
	assert.Equal(t, 0.0, testutil.ToFloat64(setup.metrics.SnapshotsIngested))
}

// TestKafkaConsumerConfig tests different configurations
func TestKafkaConsumerConfig(t *testing.T) {
	setup := setupTestKafkaConsumer(t)
	defer setup.cleanup()

	tests := []struct {
		name   string
		config KafkaConsumerConfig
	}{
		{
			name: "Single broker",
			config: KafkaConsumerConfig{
				Brokers: []string{"localhost:9092"},
				Topic:   "odds_snapshots",
				GroupID: "test-group",
			},
		},
		{
			name: "Multiple brokers",
			config: KafkaConsumerConfig{
				Brokers: []string{"broker1:9092", "broker2:9092", "broker3:9092"},
				Topic:   "odds_snapshots",
				GroupID: "test-group",
			},
		},
		{
			name: "Different topic",
			config: KafkaConsumerConfig{
				Brokers: []string{"localhost:9092"},
				Topic:   "odds_snapshots_v2",
				GroupID: "test-group",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			consumer := NewKafkaConsumer(tt.config, setup.mockWriter, nil, setup.logger)

			assert.NotNil(t, consumer)
			assert.NotNil(t, consumer.metrics)
			assert.Equal(t, tt.config.Topic, consumer.reader.Config().Topic)
			assert.Equal(t, tt.config.GroupID, consumer.reader.Config().GroupID)
			assert.Equal(t, tt.config.Brokers, consumer.reader.Config().Brokers)

			consumer.Close()
		})
	}
}

// TestKafkaConsumer_Close tests consumer closing
func TestKafkaConsumer_Close(t *testing.T) {
	setup := setupTestKafkaConsumer(t)
	defer setup.cleanup()

	consumer := setup.newConsumer()

	err := consumer.Close()

	assert.NoError(t, err)
}

// TestKafkaConsumer_ContextCancellation tests context cancellation handling
func TestKafkaConsumer_ContextCancellation(t *testing.T) {
	setup := setupTestKafkaConsumer(t)
	defer setup.cleanup()

	consumer := setup.newConsumer()
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error)
	go func() {
		done <- consumer.Start(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Consumer did not stop within timeout")
	}
}

// TestKafkaConsumer_Configuration tests reader configuration
func TestKafkaConsumer_Configuration(t *testing.T) {
	setup := setupTestKafkaConsumer(t)
	defer setup.cleanup()

	consumer := setup.newConsumer()
	defer consumer.Close()

	readerConfig := consumer.reader.Config()

	assert.Equal(t, []string{"localhost:9092"}, readerConfig.Brokers)
	assert.Equal(t, 1000, readerConfig.MinBytes)     // 1KB
	assert.Equal(t, 10000000, readerConfig.MaxBytes) // 10MB
	assert.Equal(t, time.Second, readerConfig.CommitInterval)
}
