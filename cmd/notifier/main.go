package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookmyworkspace/internal/notifier"
	"bookmyworkspace/pkg/config"
	"bookmyworkspace/pkg/kafka"
	kafka_config "bookmyworkspace/pkg/kafka/config"
	kafka_middleware "bookmyworkspace/pkg/kafka/middleware"
)

const (
	ServiceName     = "notifier"
	metricsInterval = time.Minute
)

func main() {
	cfg := config.Load(ServiceName)
	log := cfg.Log

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(log)

	handler := notifier.New(notifier.NewLogSender(log), log)
	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		log,
		kafkaCfg.Topics.Bookings,
		kafkaCfg.Topics.NotifierGroup,
		kafkaCfg.Topics.BookingsDLQ,
		handler.Handle,
	)
	if err != nil {
		log.Fatal("Failed to create consumer", "error", err)
	}

	metrics := kafka_middleware.NewMetrics()
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(log))
		consumer.Use(kafka_middleware.MetricsConsumerMiddleware(metrics))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		ticker := time.NewTicker(metricsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.Log(log)
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Notifier consuming", "topic", kafkaCfg.Topics.Bookings, "group", kafkaCfg.Topics.NotifierGroup)
		errCh <- consumer.Start(ctx)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)
		cancel()
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Consumer stopped with error", "error", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Consumer stopped with error", "error", err)
		}
	}

	metrics.Log(log)
	if err := consumer.Close(); err != nil {
		log.Error("Failed to close consumer", "error", err)
	}
	log.Info("Notifier stopped")
}
