package store

import (
	"context"
	"sync"
	"time"

	"meal-plan-spreadsheet/internal/pkg/common"

	"go.uber.org/zap"
)

// MemoryStore 行程內暫存
type MemoryStore struct {
	mu         sync.Mutex
	maxEntries int
	store      map[string]memoryEntry
	stats      memoryStats
	done       chan struct{}
	closeOnce  sync.Once
	now        func() time.Time
}

// memoryEntry 暫存條目
type memoryEntry struct {
	data        []byte
	expiresAt   time.Time
	createdAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// memoryStats 暫存統計
type memoryStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewMemoryStore 創建行程內暫存；cleanupInterval <= 0 時不啟動背景清理
func NewMemoryStore(maxEntries int, cleanupInterval time.Duration) *MemoryStore {
	m := &MemoryStore{
		maxEntries: maxEntries,
		store:      make(map[string]memoryEntry),
		done:       make(chan struct{}),
		now:        time.Now,
	}

	if cleanupInterval > 0 {
		go m.startCleanup(cleanupInterval)
	}

	common.LogInfo("檔案暫存已初始化",
		zap.String("driver", "memory"),
		zap.Int("最大容量", maxEntries),
		zap.Duration("清理間隔", cleanupInterval),
	)

	return m
}

// Put 儲存檔案
func (m *MemoryStore) Put(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.store[id]; !exists && m.maxEntries > 0 && len(m.store) >= m.maxEntries {
		// 先清理過期項目，仍然已滿時淘汰最少使用的項目
		if evicted := m.cleanup(); evicted > 0 {
			common.LogDebug("暫存清理執行", zap.Int("清理數量", evicted))
		}
		if len(m.store) >= m.maxEntries {
			m.evictLeastUsed()
		}
	}

	now := m.now()
	copied := make([]byte, len(data))
	copy(copied, data)
	m.store[id] = memoryEntry{
		data:       copied,
		expiresAt:  now.Add(ttl),
		createdAt:  now,
		lastAccess: now,
	}
	return nil
}

// Get 取得檔案
func (m *MemoryStore) Get(ctx context.Context, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.store[id]
	if !exists {
		m.stats.misses++
		return nil, ErrNotFound
	}
	if m.now().After(entry.expiresAt) {
		delete(m.store, id)
		m.stats.evictions++
		m.stats.misses++
		return nil, ErrNotFound
	}

	entry.lastAccess = m.now()
	entry.accessCount++
	m.store[id] = entry
	m.stats.hits++

	return entry.data, nil
}

// Delete 刪除檔案
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, id)
	return nil
}

// Ping 行程內暫存永遠可用
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Len 目前條目數
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store)
}

// startCleanup 定期清理過期條目
func (m *MemoryStore) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.cleanup()
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}

// cleanup 清理過期條目，呼叫端需持有鎖
func (m *MemoryStore) cleanup() int {
	now := m.now()
	count := 0
	for key, entry := range m.store {
		if now.After(entry.expiresAt) {
			delete(m.store, key)
			count++
			m.stats.evictions++
		}
	}

	if count > 0 {
		common.LogInfo("Cleaned up expired artifacts",
			zap.Int("count", count),
			zap.Int64("total_evictions", m.stats.evictions),
			zap.Int("remaining_size", len(m.store)),
		)
	}
	return count
}

// evictLeastUsed 淘汰存取次數最少、其次最久未存取的條目，呼叫端需持有鎖
func (m *MemoryStore) evictLeastUsed() {
	var oldestKey string
	var oldestAccess time.Time
	var lowestAccessCount int

	for key, entry := range m.store {
		if oldestKey == "" ||
			entry.accessCount < lowestAccessCount ||
			(entry.accessCount == lowestAccessCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestAccessCount = entry.accessCount
		}
	}

	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.evictions++
		common.LogInfo("暫存已淘汰(LRU)", zap.String("鍵", oldestKey))
	}
}

// Stats 取得暫存統計
func (m *MemoryStore) Stats() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	return map[string]interface{}{
		"size":      len(m.store),
		"max_size":  m.maxEntries,
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"evictions": m.stats.evictions,
	}
}

// Close 停止背景清理並清空暫存
func (m *MemoryStore) Close() error {
	m.closeOnce.Do(func() {
		close(m.done)
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = make(map[string]memoryEntry)
	common.LogInfo("檔案暫存已關閉",
		zap.Int64("命中次數", m.stats.hits),
		zap.Int64("未命中次數", m.stats.misses),
		zap.Int64("淘汰次數", m.stats.evictions),
	)
	return nil
}
