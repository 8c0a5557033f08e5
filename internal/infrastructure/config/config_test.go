package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 60*time.Second, cfg.Server.RequestTimeout)
	assert.Greater(t, cfg.Server.WriteTimeout, cfg.Server.RequestTimeout)
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, time.Hour, cfg.Store.TTL)
	assert.Equal(t, DeliveryFile, cfg.Export.DefaultDelivery)
	assert.Equal(t, DeliveryBlob, cfg.Export.FunctionDelivery)
	assert.Equal(t, "meal_plans", cfg.Blob.PathPrefix)
	assert.Equal(t, time.Duration(0), cfg.DedupWindow)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BLOB_READ_WRITE_TOKEN", "vercel_blob_rw_secret")
	t.Setenv("STORE_DRIVER", "redis")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("DEFAULT_DELIVERY", "stream")
	t.Setenv("DEDUP_WINDOW", "2s")
	t.Setenv("FUNCTION_DELIVERY", "base64")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "vercel_blob_rw_secret", cfg.Blob.Token)
	assert.Equal(t, StoreDriverRedis, cfg.Store.Driver)
	assert.Equal(t, "cache:6379", cfg.Store.RedisAddr)
	assert.Equal(t, DeliveryStream, cfg.Export.DefaultDelivery)
	assert.Equal(t, 2*time.Second, cfg.DedupWindow)
	assert.Equal(t, DeliveryBase64, cfg.Export.FunctionDelivery)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "unknown delivery", key: "DEFAULT_DELIVERY", val: "fax"},
		{name: "unknown function delivery", key: "FUNCTION_DELIVERY", val: "fax"},
		{name: "unknown store driver", key: "STORE_DRIVER", val: "s3"},
		{name: "zero port", key: "PORT", val: "0"},
		{name: "write timeout below request timeout", key: "APP_SERVER_WRITE_TIMEOUT", val: "30s"},
		{name: "write timeout equal to request timeout", key: "APP_SERVER_WRITE_TIMEOUT", val: "60s"},
		{name: "zero request timeout", key: "APP_SERVER_REQUEST_TIMEOUT", val: "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "", MaskToken(""))
	assert.Equal(t, "****", MaskToken("short"))
	assert.Equal(t, "verc...cret", MaskToken("vercel_blob_rw_secret"))
}
