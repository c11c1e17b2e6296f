// cmd/notifier/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/config"
	"github.com/your-org/storefront-api/internal/domain/notification"
	"github.com/your-org/storefront-api/internal/infrastructure/messaging/kafka"
	"github.com/your-org/storefront-api/internal/pkg/email"
	"github.com/your-org/storefront-api/internal/pkg/logger"
)

// The notifier consumes order events and sends the customer e-mails.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := logger.New(cfg.Logging)

	if !cfg.KafkaEnabled() {
		log.Fatal("KAFKA_BROKERS is not set; nothing to consume")
	}

	notifier := notification.NewService(email.NewEmailService(cfg, log), cfg.App.FrontendURL, log)
	consumer := kafka.NewOrderEventConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.OrderTopic, notifier.Handle, log)
	defer func() {
		if err := consumer.Close(); err != nil {
			log.WithError(err).Warn("failed to close consumer")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(logrus.Fields{
		"topic": cfg.Kafka.OrderTopic,
		"group": cfg.Kafka.GroupID,
	}).Info("notifier started")

	if err := consumer.Run(ctx); err != nil {
		log.WithError(err).Error("consumer stopped")
	}
	log.Info("notifier stopped")
}
