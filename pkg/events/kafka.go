package events

import (
	"context"
	"fmt"
	"time"

	"bookmyworkspace/pkg/kafka"
	kafka_config "bookmyworkspace/pkg/kafka/config"
	kafka_middleware "bookmyworkspace/pkg/kafka/middleware"
	"bookmyworkspace/pkg/logger"
	"bookmyworkspace/pkg/middleware"
)

type messageWriter interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	bookings   messageWriter
	workspaces messageWriter
	source     string
	now        func() time.Time
}

func NewKafkaPublisher(cfg *kafka_config.Config, log *logger.Logger, metrics *kafka_middleware.Metrics, source string) (*KafkaPublisher, error) {
	bookings, err := kafka.NewProducer(cfg, log, cfg.Topics.Bookings, cfg.Topics.BookingsDLQ)
	if err != nil {
		return nil, fmt.Errorf("failed to create bookings producer: %w", err)
	}

	workspaces, err := kafka.NewProducer(cfg, log, cfg.Topics.Workspaces, cfg.Topics.WorkspacesDLQ)
	if err != nil {
		_ = bookings.Close()
		return nil, fmt.Errorf("failed to create workspaces producer: %w", err)
	}

	if cfg.EnableMiddleware {
		for _, p := range []*kafka.Producer{bookings, workspaces} {
			p.Use(kafka_middleware.LoggingProducerMiddleware(log))
			if metrics != nil {
				p.Use(kafka_middleware.MetricsProducerMiddleware(metrics))
			}
		}
	}

	return &KafkaPublisher{
		bookings:   bookings,
		workspaces: workspaces,
		source:     source,
		now:        time.Now,
	}, nil
}

// Booking events are keyed by workspace so per-workspace ordering holds.
func (p *KafkaPublisher) PublishBooking(ctx context.Context, eventType string, event BookingEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now().UTC()
	}
	msg, err := p.build(ctx, event.WorkspaceID, eventType, event)
	if err != nil {
		return err
	}
	return p.bookings.Publish(ctx, msg)
}

func (p *KafkaPublisher) PublishWorkspace(ctx context.Context, eventType string, event WorkspaceEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now().UTC()
	}
	msg, err := p.build(ctx, event.WorkspaceID, eventType, event)
	if err != nil {
		return err
	}
	return p.workspaces.Publish(ctx, msg)
}

func (p *KafkaPublisher) build(ctx context.Context, key, eventType string, payload any) (kafka.Message, error) {
	return kafka.NewMessage().
		WithKey(key).
		WithValue(payload).
		WithEventType(eventType).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		WithCorrelationID(middleware.RequestID(ctx)).
		WithTimestamp(p.now()).
		Build()
}

func (p *KafkaPublisher) Close() error {
	err := p.bookings.Close()
	if wErr := p.workspaces.Close(); err == nil {
		err = wErr
	}
	return err
}

// LogPublisher stands in when Kafka is disabled.
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) PublishBooking(ctx context.Context, eventType string, event BookingEvent) error {
	p.log.Info("event not published, kafka disabled",
		"event_type", eventType,
		"booking_reference", event.Reference,
		"workspace_id", event.WorkspaceID,
		"request_id", middleware.RequestID(ctx),
	)
	return nil
}

func (p *LogPublisher) PublishWorkspace(ctx context.Context, eventType string, event WorkspaceEvent) error {
	p.log.Info("event not published, kafka disabled",
		"event_type", eventType,
		"workspace_id", event.WorkspaceID,
		"request_id", middleware.RequestID(ctx),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// NewPublisher returns a Kafka publisher when enabled, otherwise a LogPublisher.
func NewPublisher(enabled bool, log *logger.Logger, source string) (Publisher, error) {
	if !enabled {
		return NewLogPublisher(log), nil
	}
	cfg, err := kafka_config.Load()
	if err != nil {
		return nil, err
	}
	cfg.LogConfiguration(log)
	return NewKafkaPublisher(cfg, log, kafka_middleware.NewMetrics(), source)
}
