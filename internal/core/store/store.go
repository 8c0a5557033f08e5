package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"meal-plan-spreadsheet/internal/infrastructure/config"
)

// ErrNotFound 檔案不存在或已過期
var ErrNotFound = errors.New("artifact not found or expired")

// ArtifactStore 暫存已產生的試算表，供下載端點取回
type ArtifactStore interface {
	Put(ctx context.Context, id string, data []byte, ttl time.Duration) error
	Get(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}

// New 依設定建立暫存實作
func New(cfg *config.Config) (ArtifactStore, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		return NewMemoryStore(cfg.Store.MaxEntries, cfg.Store.CleanupInterval), nil
	case config.StoreDriverRedis:
		return NewRedisStore(cfg.Store)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
