package events

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"gradhire-backend/internal/domain"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	producerBuffer = 1000
	writeTimeout   = 10 * time.Second
)

// ErrProducerQueueFull is returned when the in-memory buffer cannot take another event.
var ErrProducerQueueFull = errors.New("kafka producer queue full")

// Envelope is the kafka message value. Type uses the same names as the asynq tasks.
type Envelope struct {
	Type    string          `json:"type"`
	EventID string          `json:"event_id"`
	Payload json.RawMessage `json:"payload"`
}

type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type outbound struct {
	key      string
	envelope Envelope
}

// KafkaPublisher buffers events and writes them from a single goroutine.
type KafkaPublisher struct {
	writer    KafkaWriter
	events    chan outbound
	logger    *zap.Logger
	closeChan chan struct{}
	done      chan struct{}
}

// NewKafkaPublisher writes to topic on brokers. Call EnsureTopic first when
// the cluster does not auto-create topics.
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	return newKafkaPublisher(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		Topic:        topic,
		RequiredAcks: kafka.RequireOne,
	}, logger, producerBuffer)
}

func newKafkaPublisher(writer KafkaWriter, logger *zap.Logger, buffer int) *KafkaPublisher {
	p := &KafkaPublisher{
		writer:    writer,
		events:    make(chan outbound, buffer),
		logger:    logger.Named("kafka_producer"),
		closeChan: make(chan struct{}),
		done:      make(chan struct{}),
	}
	go p.eventLoop()
	return p
}

// EnsureTopic creates topic if it does not exist yet.
func EnsureTopic(brokers []string, topic string, partitions int, logger *zap.Logger) error {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return err
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
	})
	if err != nil {
		logger.Warn("failed to create topic (may already exist)", zap.String("topic", topic), zap.Error(err))
	}
	return nil
}

// PublishJobPublished keys by job id. Reviews are keyed by application id, so
// events for one subject keep their order within a partition.
func (p *KafkaPublisher) PublishJobPublished(_ context.Context, e domain.JobPublished) error {
	return p.produce(TypeJobPublished, e.EventID, strconv.FormatInt(e.JobID, 10), e)
}

func (p *KafkaPublisher) PublishApplicationStatusChanged(_ context.Context, e domain.ApplicationStatusChanged) error {
	return p.produce(TypeApplicationStatusChanged, e.EventID, strconv.FormatInt(e.ApplicationID, 10), e)
}

func (p *KafkaPublisher) produce(eventType, eventID, key string, event any) error {
	payload, err := jsonMarshal(event)
	if err != nil {
		return err
	}
	out := outbound{
		key:      key,
		envelope: Envelope{Type: eventType, EventID: eventID, Payload: payload},
	}
	select {
	case p.events <- out:
		return nil
	default:
		p.logger.Warn("Kafka producer queue full, dropping event",
			zap.String("event_type", eventType),
			zap.String("event_id", eventID),
		)
		return ErrProducerQueueFull
	}
}

func (p *KafkaPublisher) eventLoop() {
	defer close(p.done)
	for {
		select {
		case out := <-p.events:
			p.sendEvent(context.Background(), out)
		case <-p.closeChan:
			// flush what is already buffered
			for {
				select {
				case out := <-p.events:
					p.sendEvent(context.Background(), out)
				default:
					return
				}
			}
		}
	}
}

func (p *KafkaPublisher) sendEvent(ctx context.Context, out outbound) {
	value, err := jsonMarshal(out.envelope)
	if err != nil {
		p.logger.Error("Failed to serialize event",
			zap.Error(err),
			zap.String("event_id", out.envelope.EventID),
		)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(out.key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(out.envelope.Type)},
		},
	})
	if err != nil {
		p.logger.Error("Failed to produce event",
			zap.Error(err),
			zap.String("event_type", out.envelope.Type),
			zap.String("event_id", out.envelope.EventID),
		)
	}
}

// Close flushes buffered events and closes the writer.
func (p *KafkaPublisher) Close() {
	close(p.closeChan)
	<-p.done
	if err := p.writer.Close(); err != nil {
		p.logger.Error("Failed to close Kafka writer", zap.Error(err))
	}
}
