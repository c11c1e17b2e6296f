// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the storefront API and its companion binaries
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Security SecurityConfig
	Upload   UploadConfig
	Logging  LoggingConfig
	VNPay    VNPayConfig
	Kafka    KafkaConfig
	SMTP     SMTPConfig
	Invoice  InvoiceConfig
	Client   ClientConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Debug       bool
	// FrontendURL is used to build links in e-mails
	FrontendURL string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// JWTConfig contains JWT token configuration
type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	BcryptCost         int
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	TrustedProxies     []string
	// Bootstrap admin created by the seed step when no ADMIN user exists.
	// The hash comes from scripts/generate_password.go.
	AdminUsername     string
	AdminEmail        string
	AdminPasswordHash string
}

// UploadConfig contains local file storage configuration for catalog and content images
type UploadConfig struct {
	LocalPath         string
	PublicBaseURL     string
	MaxSize           int64
	AllowedExtensions []string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// VNPayConfig contains VNPAY gateway configuration
type VNPayConfig struct {
	TmnCode     string
	HashSecret  string
	PayURL      string
	ReturnURL   string
	Version     string
	Locale      string
	ExpireAfter time.Duration
	MinAmount   int64
	LockTTL     time.Duration
}

// KafkaConfig contains order event streaming configuration.
// An empty broker list disables publishing.
type KafkaConfig struct {
	Brokers    []string
	OrderTopic string
	GroupID    string
}

// SMTPConfig contains outgoing mail configuration
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	SSL      bool
}

// InvoiceConfig contains VAT invoice rendering configuration
type InvoiceConfig struct {
	Enabled bool
	// WkhtmltopdfPath overrides the binary lookup when set
	WkhtmltopdfPath string
	SellerName      string
	SellerTaxCode   string
	SellerAddress   string
}

// ClientConfig is read by the storefront CLI
type ClientConfig struct {
	BaseURL        string
	TokenFile      string
	RequestTimeout time.Duration
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Storefront API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			Debug:       getEnvAsBool("APP_DEBUG", true),
			FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		},
		Server: ServerConfig{
			Port:           getEnv("APP_PORT", "8080"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RequestTimeout: getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 30*time.Second),
			MaxBodyBytes:   getEnvAsInt64("SERVER_MAX_BODY_BYTES", 20<<20),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Name:         getEnv("DB_NAME", "storefront_db"),
			User:         getEnv("DB_USER", "storefront_user"),
			Password:     getEnv("DB_PASSWORD", "storefront_password"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 300*time.Second),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "change-me-to-a-long-random-secret-value"),
			AccessTokenExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRE", time.Hour),
			RefreshTokenExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRE", 7*24*time.Hour),
		},
		Security: SecurityConfig{
			BcryptCost:         getEnvAsInt("BCRYPT_COST", 12),
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 300),
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			CORSAllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			CORSAllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}),
			TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", []string{}),
			AdminUsername:      getEnv("ADMIN_USERNAME", "admin"),
			AdminEmail:         getEnv("ADMIN_EMAIL", ""),
			AdminPasswordHash:  getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		Upload: UploadConfig{
			LocalPath:         getEnv("UPLOAD_LOCAL_PATH", "./uploads"),
			PublicBaseURL:     getEnv("UPLOAD_PUBLIC_BASE_URL", "/uploads"),
			MaxSize:           getEnvAsInt64("UPLOAD_MAX_SIZE", 5<<20),
			AllowedExtensions: getEnvAsSlice("UPLOAD_ALLOWED_EXTENSIONS", []string{"jpg", "jpeg", "png", "gif", "webp"}),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		VNPay: VNPayConfig{
			TmnCode:     getEnv("VNPAY_TMN_CODE", ""),
			HashSecret:  getEnv("VNPAY_HASH_SECRET", ""),
			PayURL:      getEnv("VNPAY_PAY_URL", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"),
			ReturnURL:   getEnv("VNPAY_RETURN_URL", "http://localhost:3000/ket-qua-thanh-toan"),
			Version:     getEnv("VNPAY_VERSION", "2.1.0"),
			Locale:      getEnv("VNPAY_LOCALE", "vn"),
			ExpireAfter: getEnvAsDuration("VNPAY_EXPIRE_AFTER", 15*time.Minute),
			MinAmount:   getEnvAsInt64("VNPAY_MIN_AMOUNT", 10000),
			LockTTL:     getEnvAsDuration("VNPAY_LOCK_TTL", 10*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    getEnvAsSlice("KAFKA_BROKERS", []string{}),
			OrderTopic: getEnv("KAFKA_ORDER_TOPIC", "order-events"),
			GroupID:    getEnv("KAFKA_GROUP_ID", "storefront-notifier"),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvAsInt("SMTP_PORT", 465),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
			From:     getEnv("SMTP_FROM", "noreply@example.com"),
			SSL:      getEnvAsBool("SMTP_SSL", true),
		},
		Invoice: InvoiceConfig{
			Enabled:         getEnvAsBool("INVOICE_ENABLED", true),
			WkhtmltopdfPath: getEnv("WKHTMLTOPDF_PATH", ""),
			SellerName:      getEnv("INVOICE_SELLER_NAME", "Storefront"),
			SellerTaxCode:   getEnv("INVOICE_SELLER_TAX_CODE", ""),
			SellerAddress:   getEnv("INVOICE_SELLER_ADDRESS", ""),
		},
		Client: ClientConfig{
			BaseURL:        getEnv("STOREFRONT_API_URL", "http://localhost:8080/api/v1"),
			TokenFile:      getEnv("STOREFRONT_TOKEN_FILE", defaultTokenFile()),
			RequestTimeout: getEnvAsDuration("STOREFRONT_REQUEST_TIMEOUT", 15*time.Second),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadClient reads only the sections the storefront CLI uses. Server
// settings are neither read nor validated.
func LoadClient() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "Storefront API"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "warn"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		VNPay: VNPayConfig{
			MinAmount: getEnvAsInt64("VNPAY_MIN_AMOUNT", 10000),
		},
		Client: ClientConfig{
			BaseURL:        getEnv("STOREFRONT_API_URL", "http://localhost:8080/api/v1"),
			TokenFile:      getEnv("STOREFRONT_TOKEN_FILE", defaultTokenFile()),
			RequestTimeout: getEnvAsDuration("STOREFRONT_REQUEST_TIMEOUT", 15*time.Second),
		},
	}
	if config.Client.TokenFile == "" {
		return nil, fmt.Errorf("STOREFRONT_TOKEN_FILE is required")
	}
	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}

	if c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("APP_PORT is required")
	}

	// VNPAY is optional, but half a configuration is a mistake
	if c.VNPay.TmnCode != "" {
		if c.VNPay.HashSecret == "" {
			return fmt.Errorf("VNPAY_HASH_SECRET is required when VNPAY_TMN_CODE is set")
		}
		if c.VNPay.PayURL == "" {
			return fmt.Errorf("VNPAY_PAY_URL is required when VNPAY_TMN_CODE is set")
		}
	}
	if c.VNPay.MinAmount < 1 {
		return fmt.Errorf("VNPAY_MIN_AMOUNT must be positive")
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// KafkaEnabled reports whether order events should go to a broker
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0 && c.Kafka.Brokers[0] != ""
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=Asia/Ho_Chi_Minh",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".storefront-session.json"
	}
	return home + string(os.PathSeparator) + ".storefront-session.json"
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}
