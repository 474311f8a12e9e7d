package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"employee-api/internal/bootstrap"
	"employee-api/internal/config"
	"employee-api/internal/events"
	"employee-api/internal/messaging/kafka/consumer"
	"employee-api/internal/shared/connection"

	"go.uber.org/zap"
)

// RunConsumer turns employee lifecycle events into audit entries.
func RunConsumer(cfg *config.Config) error {
	logger := zap.L().Named("app.consumer")

	if cfg.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	reader := connection.NewKafkaReader(
		cfg.KafkaBroker,
		events.EmployeeLifecycleTopic,
		cfg.KafkaConsumerGroup,
	)
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeEmployeeLifecycle(
		ctx,
		reader,
		bootstrap.NewStdoutAuditLogger(),
		logger,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
