package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("PAYMENT_CURRENCY", "AUD")
	t.Setenv("UPLOAD_MAX_BYTES", "not-a-number")

	cfg := Load()

	// explicitly set but empty stays empty
	assert.Equal(t, "", cfg.App.Port)
	assert.Equal(t, "aud", cfg.Payment.Currency)
	assert.Equal(t, int64(10*1024*1024), cfg.Storage.UploadMaxBytes)
	assert.Equal(t, 60, cfg.Ai.TimeoutSeconds)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STRATEGY_PACK_PRICE_CENTS", "19900")
	t.Setenv("MIDTRANS_IS_PRODUCTION", "true")
	t.Setenv("STORAGE_DRIVER", "s3")

	cfg := Load()

	assert.Equal(t, int64(19900), cfg.Payment.StrategyPackPriceCents)
	assert.True(t, cfg.Payment.MidtransIsProduction)
	assert.Equal(t, "s3", cfg.Storage.Driver)
}
