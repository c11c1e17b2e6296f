package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: "8080"},
		Database: DatabaseConfig{Host: "localhost", Name: "db", User: "u"},
		Redis:    RedisConfig{Host: "localhost"},
		JWT:      JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
		VNPay:    VNPayConfig{MinAmount: 10000},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "short secret", mutate: func(c *Config) { c.JWT.Secret = "short" }, wantErr: "JWT_SECRET"},
		{name: "missing db host", mutate: func(c *Config) { c.Database.Host = "" }, wantErr: "DB_HOST"},
		{name: "missing redis", mutate: func(c *Config) { c.Redis.Host = "" }, wantErr: "REDIS_HOST"},
		{name: "vnpay without secret", mutate: func(c *Config) {
			c.VNPay.TmnCode = "TMN"
			c.VNPay.PayURL = "https://pay"
		}, wantErr: "VNPAY_HASH_SECRET"},
		{name: "zero min amount", mutate: func(c *Config) { c.VNPay.MinAmount = 0 }, wantErr: "VNPAY_MIN_AMOUNT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("TEST_SLICE", "a, b,,c")
	t.Setenv("TEST_DURATION", "90s")
	t.Setenv("TEST_INT", "nope")

	assert.Equal(t, []string{"a", "b", "c"}, getEnvAsSlice("TEST_SLICE", nil))
	assert.Equal(t, 90*time.Second, getEnvAsDuration("TEST_DURATION", time.Second))
	assert.Equal(t, 7, getEnvAsInt("TEST_INT", 7))
}

func TestKafkaEnabled(t *testing.T) {
	c := validConfig()
	assert.False(t, c.KafkaEnabled())
	c.Kafka.Brokers = []string{"localhost:9092"}
	assert.True(t, c.KafkaEnabled())
}

func TestLoadClient_IgnoresServerSettings(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("STOREFRONT_API_URL", "https://shop.example.vn/api/v1")
	t.Setenv("STOREFRONT_TOKEN_FILE", "/tmp/session.json")

	cfg, err := LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.vn/api/v1", cfg.Client.BaseURL)
	assert.Equal(t, "/tmp/session.json", cfg.Client.TokenFile)
	assert.Equal(t, int64(10000), cfg.VNPay.MinAmount)
}
