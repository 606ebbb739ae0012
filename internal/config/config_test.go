package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setGatewayEnv(t *testing.T) {
	t.Setenv("DB_DSN", "user:pass@tcp(localhost:3306)/learnora?parseTime=true")
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("RAZORPAY_KEY_SECRET", "key-secret")
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "webhook-secret")
}

func TestFromEnv_Defaults(t *testing.T) {
	setGatewayEnv(t)

	cfg := FromEnv()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "INR", cfg.Gateway.Currency)
	assert.Equal(t, 10*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, "https://api.razorpay.com", cfg.Gateway.BaseURL)
	assert.False(t, cfg.GrantOnWebhook)
	assert.Equal(t, "local", cfg.Storage.Driver)
}

func TestFromEnv_Overrides(t *testing.T) {
	setGatewayEnv(t)
	t.Setenv("GATEWAY_TIMEOUT", "3s")
	t.Setenv("WEBHOOK_GRANTS_ENTITLEMENT", "true")
	t.Setenv("PAYMENT_CURRENCY", "USD")

	cfg := FromEnv()
	assert.Equal(t, 3*time.Second, cfg.Gateway.Timeout)
	assert.True(t, cfg.GrantOnWebhook)
	assert.Equal(t, "USD", cfg.Gateway.Currency)
}

func TestFromEnv_AdminToken(t *testing.T) {
	setGatewayEnv(t)
	t.Setenv("ADMIN_TOKEN", "s3cret-admin")

	assert.Equal(t, "s3cret-admin", FromEnv().AdminToken)
}

func TestValidate_RejectsSecretReuse(t *testing.T) {
	setGatewayEnv(t)
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "key-secret")

	err := FromEnv().Validate()
	assert.ErrorIs(t, err, ErrSecretReuse)
}

func TestValidate_MissingSecrets(t *testing.T) {
	setGatewayEnv(t)
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "")

	err := FromEnv().Validate()
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestValidate_MissingDSN(t *testing.T) {
	setGatewayEnv(t)
	t.Setenv("DB_DSN", "")

	assert.Error(t, FromEnv().Validate())
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, Config{LogLevel: "debug"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, Config{LogLevel: "WARN"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, Config{LogLevel: "loud"}.SlogLevel())
}
