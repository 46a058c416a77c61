package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/cypherlabdev/odds-cache-service/internal/metrics"
	"github.com/cypherlabdev/odds-cache-service/internal/models"
)

//go:generate mockgen -destination=../mocks/mock_snapshot_writer.go -package=mocks github.com/cypherlabdev/odds-cache-service/internal/messaging SnapshotWriter

// SnapshotWriter replaces the cached odds snapshot
type SnapshotWriter interface {
	Store(ctx context.Context, events []models.OddsEvent) error
}

// KafkaConsumer consumes full odds snapshots from Kafka and caches them.
// Each message replaces the cached snapshot; the last write wins.
type KafkaConsumer struct {
	reader  *kafka.Reader
	writer  SnapshotWriter
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// KafkaConsumerConfig holds Kafka consumer configuration
type KafkaConsumerConfig struct {
	Brokers []string // e.g., ["localhost:9092"]
	Topic   string   // e.g., "odds_snapshots"
	GroupID string   // e.g., "odds-cache"
}

// NewKafkaConsumer creates a new Kafka consumer
func NewKafkaConsumer(
	config KafkaConsumerConfig,
	writer SnapshotWriter,
	mt *metrics.Metrics,
	logger zerolog.Logger,
) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        config.Brokers,
		Topic:          config.Topic,
		GroupID:        config.GroupID,
		MinBytes:       1e3,  // 1KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	if mt == nil {
		mt = metrics.New(nil)
	}

	return &KafkaConsumer{
		reader:  reader,
		writer:  writer,
		metrics: mt,
		logger:  logger.With().Str("component", "kafka_consumer").Logger(),
	}
}

// Start begins consuming messages from Kafka. It returns when ctx is done.
func (c *KafkaConsumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("topic", c.reader.Config().Topic).
		Str("group_id", c.reader.Config().GroupID).
		Msg("started consuming from Kafka")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("stopping Kafka consumer")
			return c.reader.Close()

		default:
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || ctx.Err() != nil {
					return nil
				}
				c.logger.Error().Err(err).Msg("failed to fetch message")
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				c.logger.Error().
					Err(err).
					Int64("offset", msg.Offset).
					Str("key", string(msg.Key)).
					Msg("failed to process message")

				// Retryable failures are logged and skipped without a commit; a later
				// snapshot supersedes them. Malformed messages are committed.
				if platformerrors.IsRetryable(err) {
					continue
				}
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.logger.Error().Err(err).Msg("failed to commit message")
			}
		}
	}
}

// processMessage stores the snapshot carried by a single Kafka message
func (c *KafkaConsumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var snapshotMsg models.KafkaOddsSnapshotMessage
	if err := json.Unmarshal(msg.Value, &snapshotMsg); err != nil {
		return platformerrors.Wrap(err, platformerrors.CodeSchemaFailed, "failed to unmarshal message")
	}

	events := snapshotMsg.Events
	if events == nil {
		events = []models.OddsEvent{}
	}

	c.logger.Debug().
		Int("event_count", len(events)).
		Str("batch_id", snapshotMsg.BatchID).
		Msg("processing odds snapshot")

	if err := c.writer.Store(ctx, events); err != nil {
		return fmt.Errorf("failed to cache odds snapshot: %w", err)
	}
	c.metrics.SnapshotsIngested.Inc()

	c.logger.Info().
		Int("event_count", len(events)).
		Str("batch_id", snapshotMsg.BatchID).
		Time("published_at", snapshotMsg.Timestamp).
		Msg("cached odds snapshot from feed")

	return nil
}

// Close closes the Kafka reader
func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
