package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"greenbasket/internal/app/market/entity"
	"greenbasket/pkg/logger"
	"greenbasket/pkg/metrics"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const serviceName = "greenbasket"

// ProductRecomputer пересчитывает рейтинг одного товара
type ProductRecomputer interface {
	RecomputeProduct(ctx context.Context, productID uuid.UUID, trigger string) error
}

// ReviewConsumer читает события отзывов из Kafka и пересчитывает
// рейтинг затронутого товара
type ReviewConsumer struct {
	reader    *kafka.Reader
	ratingSvc ProductRecomputer
	topic     string
	group     string
	stopChan  chan struct{}
	doneChan  chan struct{}
}

// NewReviewConsumer создает новый consumer событий отзывов
func NewReviewConsumer(brokers []string, topic, groupID string, ratingSvc ProductRecomputer) *ReviewConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		StartOffset:    kafka.LastOffset,
		CommitInterval: time.Second,
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: 1 * time.Second,
	})

	return &ReviewConsumer{
		reader:    reader,
		ratingSvc: ratingSvc,
		topic:     topic,
		group:     groupID,
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}
}

// Start запускает consumer в отдельной горутине
func (c *ReviewConsumer) Start(ctx context.Context) {
	logger.Info().Str("topic", c.topic).Str("group", c.group).Msg("starting review consumer")
	go c.consume(ctx)
}

// Stop останавливает consumer
func (c *ReviewConsumer) Stop() {
	logger.Info().Msg("stopping review consumer")
	close(c.stopChan)
	<-c.doneChan
	if err := c.reader.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close kafka reader")
	}
	logger.Info().Msg("review consumer stopped")
}

func (c *ReviewConsumer) consume(ctx context.Context) {
	defer close(c.doneChan)

	for {
		select {
		case <-c.stopChan:
			return
		default:
			readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			message, err := c.reader.FetchMessage(readCtx)
			cancel()

			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if errors.Is(err, context.DeadlineExceeded) {
					// Таймаут чтения при пустом топике, это не ошибка
					continue
				}
				logger.Error().Err(err).Msg("failed to fetch review event")
				metrics.RecordKafkaError(serviceName, c.topic, "fetch")
				time.Sleep(time.Second)
				continue
			}

			start := time.Now()
			if err := c.processMessage(ctx, message); err != nil {
				// Offset не коммитим, сообщение будет обработано повторно
				logger.Error().
					Err(err).
					Int64("offset", message.Offset).
					Int("partition", message.Partition).
					Msg("failed to process review event")
				metrics.RecordKafkaError(serviceName, c.topic, "process")
				continue
			}

			metrics.RecordKafkaMessageConsumed(serviceName, c.topic, c.group, time.Since(start))

			if err := c.reader.CommitMessages(ctx, message); err != nil {
				logger.Error().Err(err).Msg("failed to commit review event offset")
			}
		}
	}
}

func (c *ReviewConsumer) processMessage(ctx context.Context, message kafka.Message) error {
	var event entity.ReviewEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal review event: %w", err)
	}

	productID, err := uuid.Parse(event.ProductID)
	if err != nil {
		return fmt.Errorf("review event has invalid product id %q: %w", event.ProductID, err)
	}

	logger.Debug().
		Str("event_type", event.EventType).
		Str("product_id", event.ProductID).
		Int64("offset", message.Offset).
		Msg("review event received")

	return c.ratingSvc.RecomputeProduct(ctx, productID, "event")
}

// Stats возвращает статистику consumer
func (c *ReviewConsumer) Stats() kafka.ReaderStats {
	return c.reader.Stats()
}
