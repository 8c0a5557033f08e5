package store

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"meal-plan-spreadsheet/internal/infrastructure/config"
	"meal-plan-spreadsheet/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const keyPrefix = "meal_plan:file:"

// RedisStore 以 Redis 暫存檔案，值為 base64 字串並設定 TTL
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 創建 Redis 暫存並測試連線
func NewRedisStore(cfg config.StoreConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("檔案暫存已初始化",
		zap.String("driver", "redis"),
		zap.String("addr", cfg.RedisAddr),
	)

	return NewRedisStoreWithClient(client), nil
}

// NewRedisStoreWithClient 使用既有客戶端
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Put 儲存檔案
func (s *RedisStore) Put(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	if err := s.client.Set(ctx, s.key(id), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store artifact: %w", err)
	}
	return nil
}

// Get 取得檔案
func (s *RedisStore) Get(ctx context.Context, id string) ([]byte, error) {
	encoded, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode artifact: %w", err)
	}
	return data, nil
}

// Delete 刪除檔案
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}
	return nil
}

// Ping 檢查連線
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// key 生成暫存鍵
func (s *RedisStore) key(id string) string {
	return keyPrefix + id
}
