// cmd/mailcheck/main.go
package main

import (
	"context"
	"flag"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/config"
	"github.com/your-org/storefront-api/internal/pkg/email"
	"github.com/your-org/storefront-api/internal/pkg/logger"
)

// mailcheck sends one message through the configured SMTP relay
func main() {
	to := flag.String("to", "", "recipient address")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := logger.New(cfg.Logging)

	if *to == "" {
		log.Fatal("-to is required")
	}
	if cfg.SMTP.Host == "" {
		log.Fatal("SMTP_HOST is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	msg := &email.Email{
		To:          []string{*to},
		Subject:     "Kiểm tra cấu hình e-mail " + cfg.App.Name,
		HTMLContent: "<p>SMTP đang hoạt động.</p>",
		TextContent: "SMTP đang hoạt động.",
		Type:        "test",
	}
	if err := email.NewSMTPSender(cfg.SMTP).Send(ctx, msg); err != nil {
		log.WithError(err).Fatal("send failed")
	}
	log.WithField("to", *to).Info("test email sent")
}
