// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/config"
	"github.com/your-org/storefront-api/internal/domain/analytics"
	"github.com/your-org/storefront-api/internal/domain/cart"
	"github.com/your-org/storefront-api/internal/domain/checkout"
	"github.com/your-org/storefront-api/internal/domain/content"
	"github.com/your-org/storefront-api/internal/domain/order"
	"github.com/your-org/storefront-api/internal/domain/payment"
	"github.com/your-org/storefront-api/internal/domain/product"
	"github.com/your-org/storefront-api/internal/domain/store"
	"github.com/your-org/storefront-api/internal/domain/upload"
	"github.com/your-org/storefront-api/internal/domain/user"
	"github.com/your-org/storefront-api/internal/infrastructure/database/postgres"
	"github.com/your-org/storefront-api/internal/infrastructure/database/redis"
	"github.com/your-org/storefront-api/internal/infrastructure/messaging/kafka"
	"github.com/your-org/storefront-api/internal/interfaces/http"
	"github.com/your-org/storefront-api/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-api/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-api/internal/interfaces/http/routes"
	"github.com/your-org/storefront-api/internal/pkg/auth"
	"github.com/your-org/storefront-api/internal/pkg/email"
	"github.com/your-org/storefront-api/internal/pkg/logger"
	"github.com/your-org/storefront-api/internal/pkg/pdf"
)

// visitRetention covers the widest dashboard window plus the period it is compared with
const visitRetention = 185 * 24 * time.Hour

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.Logging)
	log.WithFields(logrus.Fields{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Info("starting")

	// Connect to database
	db, err := postgres.NewConnection(cfg, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Connect to Redis
	redisClient, err := redis.NewConnection(cfg, log)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Run database migrations
	migration := postgres.NewMigration(db.GetDB(), log)
	if err := migration.RunAutoMigrations(); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}
	if err := migration.CreateIndexes(); err != nil {
		log.WithError(err).Warn("index creation failed")
	}
	if err := migration.SeedInitialData(cfg.Security); err != nil {
		log.WithError(err).Warn("data seeding failed")
	}

	events, closeEvents := orderPublisher(cfg, log)
	defer closeEvents()

	deps := http.Dependencies{
		RateLimiter: redisClient.GetClient(),
		Checks: map[string]http.HealthCheck{
			"database": db.Health,
			"redis":    redisClient.Health,
		},
	}
	deps.Handlers, deps.Auth = wire(cfg, db, redisClient, events, log)

	server := http.NewServer(cfg, deps, log)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.WithError(err).Error("failed to shutdown HTTP server gracefully")
	}
	log.Info("server shutdown completed")
}

// wire builds repositories, services and handlers
func wire(cfg *config.Config, db *postgres.Database, rc *redis.Client, events order.Publisher, log *logrus.Logger) (routes.Handlers, *middleware.Authenticator) {
	gdb := db.GetDB()

	jwt := auth.NewJWTManager(cfg)
	mailer := email.NewEmailService(cfg, log)
	uploads := upload.NewService(cfg.Upload, log)
	invoices := pdf.NewService(cfg)

	userRepo := user.NewRepository(gdb)
	users := user.NewService(userRepo, redis.NewSessionStore(rc), jwt, auth.NewPasswordManager(cfg), mailer, log)
	admins := user.NewAdminService(userRepo, log)

	productRepo := product.NewRepository(gdb)
	categoryRepo := product.NewCategoryRepository(gdb)
	brandRepo := product.NewBrandRepository(gdb)
	attributeRepo := product.NewAttributeRepository(gdb)
	products := product.NewService(productRepo, categoryRepo, brandRepo, attributeRepo, uploads, log)
	taxonomy := product.NewCategoryService(categoryRepo, brandRepo, attributeRepo, productRepo, uploads, log)

	carts := cart.NewService(cart.NewRepository(gdb), products, log)

	orderRepo := order.NewRepository(gdb)
	orders := order.NewService(orderRepo, carts, events, invoices, cfg.VNPay.MinAmount, log)
	reviews := product.NewReviewService(product.NewReviewRepository(gdb), productRepo, orderRepo, log)

	payments := payment.NewService(
		payment.NewRepository(gdb), orderRepo, payment.NewVNPay(cfg.VNPay),
		redis.NewLocker(rc, "payment", log), events, cfg.VNPay, log,
	)

	news := content.NewService(
		content.NewNewsCategoryRepository(gdb), content.NewNewsRepository(gdb), content.NewSlideRepository(gdb),
		uploads, log,
	)
	storeInfo := store.NewService(store.NewRepository(gdb), rc, uploads, log)
	stats := analytics.NewService(analytics.NewRepository(gdb), redis.NewVisitCounter(rc, visitRetention), vietnam(), log)

	authn := middleware.NewAuthenticator(jwt, users, log)

	return routes.Handlers{
		Auth:      handlers.NewAuthHandler(users, log),
		Users:     handlers.NewUserAdminHandler(admins, log),
		Products:  handlers.NewProductHandler(products, log),
		Taxonomy:  handlers.NewCategoryHandler(taxonomy, log),
		Reviews:   handlers.NewReviewHandler(reviews, log),
		Cart:      handlers.NewCartHandler(carts, log),
		Checkout:  handlers.NewCheckoutHandler(checkout.NewService(carts, cfg.VNPay.MinAmount), log),
		Orders:    handlers.NewOrderHandler(orders, log),
		Payments:  handlers.NewPaymentHandler(payments, log),
		Content:   handlers.NewContentHandler(news, log),
		Store:     handlers.NewStoreHandler(storeInfo, log),
		Analytics: handlers.NewAnalyticsHandler(stats, log),
		Uploads:   handlers.NewUploadHandler(uploads, log),
	}, authn
}

// orderPublisher sends order events to Kafka when brokers are configured and
// only logs them otherwise
func orderPublisher(cfg *config.Config, log *logrus.Logger) (order.Publisher, func()) {
	if !cfg.KafkaEnabled() {
		log.Info("kafka disabled, order events are logged only")
		return order.NewLogPublisher(log), func() {}
	}

	producer := kafka.NewOrderEventProducer(cfg.Kafka.Brokers, cfg.Kafka.OrderTopic)
	log.WithField("topic", cfg.Kafka.OrderTopic).Info("publishing order events to kafka")
	return producer, func() {
		if err := producer.Close(); err != nil {
			log.WithError(err).Warn("failed to close kafka producer")
		}
	}
}

func vietnam() *time.Location {
	if loc, err := time.LoadLocation("Asia/Ho_Chi_Minh"); err == nil {
		return loc
	}
	return time.FixedZone("ICT", 7*60*60)
}
