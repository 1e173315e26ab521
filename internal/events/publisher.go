package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

const partitionKeyHeader = "partition_key"

// EventPublisher defines the interface for publishing quiz events
type EventPublisher interface {
	PublishEvent(ctx context.Context, event *QuizEvent) error
	Close() error
}

// WatermillEventPublisher publishes events through any watermill publisher
type WatermillEventPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
	topicName string
}

// PublisherConfig holds configuration for the event publisher
type PublisherConfig struct {
	KafkaBrokers []string
	TopicName    string
	Logger       *slog.Logger
}

// NewKafkaEventPublisher creates a Kafka-backed publisher. Messages are partitioned by the
// event's partition key so that one user's events stay in order.
func NewKafkaEventPublisher(config PublisherConfig) (*WatermillEventPublisher, error) {
	logger := watermill.NewSlogLogger(config.Logger)

	publisherConfig := kafka.PublisherConfig{
		Brokers: config.KafkaBrokers,
		Marshaler: kafka.NewWithPartitioningMarshaler(func(topic string, msg *message.Message) (string, error) {
			return msg.Metadata.Get(partitionKeyHeader), nil
		}),
	}

	publisher, err := kafka.NewPublisher(publisherConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}

	return NewWatermillEventPublisher(publisher, config.TopicName, config.Logger), nil
}

func NewWatermillEventPublisher(publisher message.Publisher, topic string, logger *slog.Logger) *WatermillEventPublisher {
	return &WatermillEventPublisher{
		publisher: publisher,
		logger:    logger,
		topicName: topic,
	}
}

// PublishEvent publishes a quiz event to the configured topic
func (p *WatermillEventPublisher) PublishEvent(ctx context.Context, event *QuizEvent) error {
	msg, err := NewMessage(event)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topicName, msg); err != nil {
		p.logger.Error("Failed to publish quiz event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
		return fmt.Errorf("failed to publish quiz event: %w", err)
	}

	p.logger.Info("Published quiz event",
		"event_id", event.ID,
		"event_type", event.Type,
		"topic", p.topicName)

	return nil
}

func (p *WatermillEventPublisher) Close() error {
	return p.publisher.Close()
}

// NewMessage encodes an event as a watermill message with routing headers.
func NewMessage(event *QuizEvent) (*message.Message, error) {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal quiz event: %w", err)
	}

	msg := message.NewMessage(event.ID, eventBytes)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("source", event.Source)
	msg.Metadata.Set("version", event.Version)
	msg.Metadata.Set("timestamp", event.Timestamp.Format(time.RFC3339))
	msg.Metadata.Set(partitionKeyHeader, event.PartitionKey)
	return msg, nil
}

// MockEventPublisher records events in memory. It is safe for concurrent use.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []QuizEvent
	Logger *slog.Logger
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &MockEventPublisher{Logger: logger}
}

func (m *MockEventPublisher) PublishEvent(ctx context.Context, event *QuizEvent) error {
	m.mu.Lock()
	m.events = append(m.events, *event)
	m.mu.Unlock()

	m.Logger.Debug("Mock: Published quiz event",
		"event_id", event.ID,
		"event_type", event.Type)
	return nil
}

func (m *MockEventPublisher) Close() error {
	return nil
}

// GetPublishedEvents returns a copy of the events published so far
func (m *MockEventPublisher) GetPublishedEvents() []QuizEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]QuizEvent(nil), m.events...)
}

// EventsOfType filters published events by type
func (m *MockEventPublisher) EventsOfType(t EventType) []QuizEvent {
	var out []QuizEvent
	for _, e := range m.GetPublishedEvents() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	m.events = nil
	m.mu.Unlock()
}
