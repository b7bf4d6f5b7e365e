package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("CHECKOUT_SHIPPING_FLAT", "")
	t.Setenv("CHECKOUT_STRICT_STOCK", "")
	t.Setenv("AUTH_EXPOSE_RESET_TOKEN", "")
	t.Setenv("AUTH_PASSWORD_RESET_TTL_MINUTES", "")
	t.Setenv("KAFKA_BATCH_TIMEOUT_MS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "grocery-storefront", cfg.App.Name)
	assert.True(t, cfg.Checkout.ShippingFlat.Equal(decimal.RequireFromString("3.50")))
	assert.False(t, cfg.Checkout.StrictStock)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, 30*time.Second, cfg.Checkout.InFlightTTL())
	assert.Equal(t, time.Hour, cfg.Auth.PasswordResetTTL())
	assert.Equal(t, 10*time.Millisecond, cfg.Kafka.BatchTimeout())
	assert.False(t, cfg.Auth.ExposeResetToken)
}

func TestProductionEnv(t *testing.T) {
	assert.True(t, AppConfig{Env: "production"}.Production())
	assert.True(t, AppConfig{Env: "PROD"}.Production())
	assert.False(t, AppConfig{Env: "development"}.Production())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("CHECKOUT_SHIPPING_FLAT", "5")
	t.Setenv("CHECKOUT_FREE_SHIPPING_THRESHOLD", "50.00")
	t.Setenv("CHECKOUT_STRICT_STOCK", "true")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "15")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.True(t, cfg.Checkout.FreeShippingThreshold.Equal(decimal.NewFromInt(50)))
	assert.True(t, cfg.Checkout.StrictStock)
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL())
}

func TestLoadRejectsBadAmounts(t *testing.T) {
	t.Setenv("CHECKOUT_SHIPPING_FLAT", "abc")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("CHECKOUT_SHIPPING_FLAT", "-1")
	_, err = Load()
	require.Error(t, err)
}
