// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/config"
	"github.com/your-org/storefront-api/internal/domain/cart"
	"github.com/your-org/storefront-api/internal/domain/content"
	"github.com/your-org/storefront-api/internal/domain/order"
	"github.com/your-org/storefront-api/internal/domain/payment"
	"github.com/your-org/storefront-api/internal/domain/product"
	"github.com/your-org/storefront-api/internal/domain/store"
	"github.com/your-org/storefront-api/internal/domain/user"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, log logrus.FieldLogger) *Migration {
	return &Migration{db: db, log: log}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.log.Info("running database auto-migrations")

	// dependency order
	models := []any{
		// User domain
		&user.Role{},
		&user.User{},

		// Catalog
		&product.Category{},
		&product.Brand{},
		&product.Attribute{},
		&product.Product{},
		&product.ProductImage{},
		&product.ProductAttribute{},
		&product.Review{},

		// Cart and orders
		&cart.CartItem{},
		&order.Order{},
		&order.OrderItem{},
		&order.OrderStatusHistory{},
		&payment.Attempt{},

		// Content
		&content.NewsCategory{},
		&content.News{},
		&content.Slide{},
		&store.StoreInfo{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.log.WithField("models", len(models)).Info("database auto-migrations completed")
	return nil
}

// CreateIndexes creates the composite indexes gorm tags cannot express
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

		// Category indexes
		"CREATE INDEX IF NOT EXISTS idx_categories_parent_active ON categories(parent_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_categories_sort_order ON categories(sort_order)",

		// Product image indexes
		"CREATE INDEX IF NOT EXISTS idx_product_images_sort_order ON product_images(product_id, sort_order)",

		// Review indexes
		"CREATE INDEX IF NOT EXISTS idx_reviews_product_status ON reviews(product_id, status)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_payment_created ON orders(payment_status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at)",

		// Payment indexes
		"CREATE INDEX IF NOT EXISTS idx_payment_attempts_order_created ON payment_attempts(order_id, created_at DESC)",

		// Content indexes
		"CREATE INDEX IF NOT EXISTS idx_news_published_created ON news(is_published, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_slides_active_position ON slides(is_active, position)",
	}

	for _, index := range indexes {
		if err := m.db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	m.log.WithField("count", len(indexes)).Info("database indexes ensured")
	return nil
}

// SeedInitialData creates the roles, the bootstrap admin and the store info row
func (m *Migration) SeedInitialData(cfg config.SecurityConfig) error {
	if err := m.seedRoles(); err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}
	if err := m.seedAdminUser(cfg); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	if err := m.db.FirstOrCreate(&store.StoreInfo{}, store.StoreInfo{ID: 1}).Error; err != nil {
		return fmt.Errorf("failed to seed store info: %w", err)
	}
	return nil
}

func (m *Migration) seedRoles() error {
	roles := []user.Role{
		{Name: user.RoleAdmin, Description: "Back office access"},
		{Name: user.RoleUser, Description: "Storefront customer"},
	}
	for _, role := range roles {
		if err := m.db.Where(user.Role{Name: role.Name}).FirstOrCreate(&role).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedAdminUser creates the configured admin once. Without a password hash it is skipped.
func (m *Migration) seedAdminUser(cfg config.SecurityConfig) error {
	if cfg.AdminPasswordHash == "" || cfg.AdminEmail == "" {
		m.log.Warn("ADMIN_EMAIL or ADMIN_PASSWORD_HASH not set, skipping admin seed")
		return nil
	}

	var existing user.User
	err := m.db.Where("username = ? OR email = ?", cfg.AdminUsername, cfg.AdminEmail).First(&existing).Error
	if err == nil {
		m.log.WithField("user_id", existing.ID).Debug("admin user already exists")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var roles []user.Role
	if err := m.db.Where("name IN ?", []string{user.RoleAdmin, user.RoleUser}).Find(&roles).Error; err != nil {
		return err
	}
	admin := user.User{
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminEmail,
		PasswordHash: cfg.AdminPasswordHash,
		FullName:     "Quản trị viên",
		Roles:        roles,
	}
	if err := m.db.Create(&admin).Error; err != nil {
		return err
	}
	m.log.WithFields(logrus.Fields{"user_id": admin.ID, "username": admin.Username}).Info("admin user created")
	return nil
}

// DropAllTables drops every table; used by the reset flag in development
func (m *Migration) DropAllTables() error {
	tables := []string{
		"store_info", "slides", "news", "news_categories",
		"payment_attempts", "order_status_history", "order_items", "orders",
		"cart_items", "reviews", "product_attributes", "product_images", "products",
		"attributes", "brands", "categories", "user_roles", "users", "roles",
	}
	for _, table := range tables {
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	m.log.Warn("all tables dropped")
	return nil
}
