package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gradhire-backend/internal/domain"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	consumerMaxRetries      = 3
	consumerInitialInterval = 500 * time.Millisecond
	fetchMaxInterval        = 30 * time.Second
)

type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer feeds envelopes from the topic to a domain.EventHandler.
type KafkaConsumer struct {
	reader          KafkaReader
	handler         domain.EventHandler
	logger          *zap.Logger
	initialInterval time.Duration
	// fetchBackOff paces FetchMessage after broker errors.
	fetchBackOff backoff.BackOff
}

func NewKafkaConsumer(brokers []string, groupID, topic string, handler domain.EventHandler, logger *zap.Logger) *KafkaConsumer {
	return newKafkaConsumer(kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   topic,
		Dialer:  kafka.DefaultDialer,
	}), handler, logger)
}

func newKafkaConsumer(reader KafkaReader, handler domain.EventHandler, logger *zap.Logger) *KafkaConsumer {
	return &KafkaConsumer{
		reader:          reader,
		handler:         handler,
		logger:          logger.Named("kafka_consumer"),
		initialInterval: consumerInitialInterval,
		fetchBackOff:    newFetchBackOff(),
	}
}

func newFetchBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = consumerInitialInterval
	b.MaxInterval = fetchMaxInterval
	b.MaxElapsedTime = 0
	return b
}

// Run blocks until ctx is cancelled. A message is committed once handled, or
// once its retries are exhausted so one bad event cannot stall the partition.
func (c *KafkaConsumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			wait := c.fetchBackOff.NextBackOff()
			c.logger.Error("Failed to fetch message", zap.Error(err), zap.Duration("retry_in", wait))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(wait):
			}
			continue
		}
		c.fetchBackOff.Reset()

		c.handle(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Failed to commit message",
				zap.Error(err),
				zap.Int64("offset", msg.Offset),
			)
		}
	}
}

func (c *KafkaConsumer) handle(ctx context.Context, msg kafka.Message) {
	var env Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		c.logger.Error("Failed to parse event",
			zap.Error(err),
			zap.ByteString("value", msg.Value),
		)
		return
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, consumerMaxRetries), ctx)

	err := backoff.Retry(func() error {
		err := Dispatch(ctx, c.handler, env.Type, env.Payload)
		if errors.Is(err, ErrMalformedPayload) || errors.Is(err, ErrUnknownEvent) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
	if err != nil {
		c.logger.Error("Failed to handle event",
			zap.Error(err),
			zap.String("event_type", env.Type),
			zap.String("event_id", env.EventID),
		)
	}
}

func (c *KafkaConsumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Error("Failed to close Kafka reader", zap.Error(err))
	}
}
