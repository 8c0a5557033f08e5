package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 交付模式
const (
	DeliveryFile   = "file"
	DeliveryStream = "stream"
	DeliveryBase64 = "base64"
	DeliveryBlob   = "blob"
	DeliveryStore  = "store"
)

// 檔案儲存驅動
const (
	StoreDriverMemory = "memory"
	StoreDriverRedis  = "redis"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	Log         LogConfig       `mapstructure:"log"`
	Blob        BlobConfig      `mapstructure:"blob"`
	Store       StoreConfig     `mapstructure:"store"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Export      ExportConfig    `mapstructure:"export"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"` // 需短於 WriteTimeout
	PublicBaseURL  string        `mapstructure:"public_base_url"`
}

// LogConfig 日誌設定
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Mode       string `mapstructure:"mode"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// BlobConfig 遠端 Blob 上傳設定
type BlobConfig struct {
	APIURL     string        `mapstructure:"api_url"`
	Token      string        `mapstructure:"token"`
	PathPrefix string        `mapstructure:"path_prefix"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// StoreConfig 產出檔案暫存設定
type StoreConfig struct {
	Driver          string        `mapstructure:"driver"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	TTL             time.Duration `mapstructure:"ttl"`
	MaxEntries      int           `mapstructure:"max_entries"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// ExportConfig 試算表輸出設定
type ExportConfig struct {
	DefaultDelivery  string `mapstructure:"default_delivery"`
	FunctionDelivery string `mapstructure:"function_delivery"`
	TempDir          string `mapstructure:"temp_dir"`
	MaxBodyBytes     int64  `mapstructure:"max_body_bytes"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 為選用
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	// 設定預設值
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	v.BindEnv("blob.token", "BLOB_READ_WRITE_TOKEN")
	v.BindEnv("blob.api_url", "BLOB_API_URL")
	v.BindEnv("store.driver", "STORE_DRIVER")
	v.BindEnv("store.redis_addr", "REDIS_ADDR")
	v.BindEnv("store.redis_password", "REDIS_PASSWORD")
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.public_base_url", "PUBLIC_BASE_URL")
	v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	v.BindEnv("dedup_window", "DEDUP_WINDOW")
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.mode", "LOG_MODE")
	v.BindEnv("export.default_delivery", "DEFAULT_DELIVERY")
	v.BindEnv("export.function_delivery", "FUNCTION_DELIVERY")

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// MaskToken 遮罩憑證，只顯示前後各 4 個字符
func MaskToken(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "meal-plan-spreadsheet")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "60s")
	v.SetDefault("server.public_base_url", "")

	// 日誌設定
	v.SetDefault("log.level", "info")
	v.SetDefault("log.mode", "")
	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("log.max_size_mb", 15)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	// Blob 設定
	v.SetDefault("blob.api_url", "https://api.vercel.com")
	v.SetDefault("blob.token", "")
	v.SetDefault("blob.path_prefix", "meal_plans")
	v.SetDefault("blob.timeout", "30s")

	// 檔案暫存設定
	v.SetDefault("store.driver", StoreDriverMemory)
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_password", "")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("store.ttl", "1h")
	v.SetDefault("store.max_entries", 500)
	v.SetDefault("store.cleanup_interval", "10m")

	// 限流設定
	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	// 輸出設定
	v.SetDefault("export.default_delivery", DeliveryFile)
	v.SetDefault("export.function_delivery", DeliveryBlob)
	v.SetDefault("export.temp_dir", "")
	v.SetDefault("export.max_body_bytes", 10<<20) // 10MB

	// 0 表示關閉去重
	v.SetDefault("dedup_window", "0s")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port <= 0 {
		return fmt.Errorf("server port is required")
	}
	if config.Server.RequestTimeout <= 0 {
		return fmt.Errorf("invalid request timeout")
	}
	// 連線寫入時限不得早於請求時限，否則逾時回應無法送出
	if config.Server.WriteTimeout > 0 && config.Server.WriteTimeout <= config.Server.RequestTimeout {
		return fmt.Errorf("server write timeout %s must exceed request timeout %s",
			config.Server.WriteTimeout, config.Server.RequestTimeout)
	}

	// 驗證暫存設定
	switch config.Store.Driver {
	case StoreDriverMemory:
		if config.Store.MaxEntries <= 0 {
			return fmt.Errorf("invalid store max entries")
		}
		if config.Store.CleanupInterval <= 0 {
			return fmt.Errorf("invalid store cleanup interval")
		}
	case StoreDriverRedis:
		if config.Store.RedisAddr == "" {
			return fmt.Errorf("redis address is required")
		}
	default:
		return fmt.Errorf("unknown store driver %q", config.Store.Driver)
	}
	if config.Store.TTL <= 0 {
		return fmt.Errorf("invalid store ttl")
	}

	if !IsDeliveryMode(config.Export.DefaultDelivery) {
		return fmt.Errorf("unknown delivery mode %q", config.Export.DefaultDelivery)
	}
	if config.Export.FunctionDelivery != "" && !IsDeliveryMode(config.Export.FunctionDelivery) {
		return fmt.Errorf("unknown function delivery mode %q", config.Export.FunctionDelivery)
	}
	if config.Export.MaxBodyBytes <= 0 {
		return fmt.Errorf("invalid max body bytes")
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit settings")
	}

	return nil
}

// IsDeliveryMode 檢查是否為支援的交付模式
func IsDeliveryMode(mode string) bool {
	switch mode {
	case DeliveryFile, DeliveryStream, DeliveryBase64, DeliveryBlob, DeliveryStore:
		return true
	}
	return false
}
