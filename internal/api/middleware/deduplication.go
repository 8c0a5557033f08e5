package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"meal-plan-spreadsheet/internal/core/service"
	"meal-plan-spreadsheet/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// deduplicator 記錄近期 POST 請求的指紋
type deduplicator struct {
	mu       sync.Mutex
	window   time.Duration
	requests map[string]time.Time
	now      func() time.Time
}

func newDeduplicator(window time.Duration) *deduplicator {
	return &deduplicator{
		window:   window,
		requests: make(map[string]time.Time),
		now:      time.Now,
	}
}

// seen 回報指紋是否在時間窗內出現過，並順便清理過期指紋
func (d *deduplicator) seen(fingerprint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for k, t := range d.requests {
		if now.Sub(t) > d.window {
			delete(d.requests, k)
		}
	}

	if _, exists := d.requests[fingerprint]; exists {
		return true
	}
	d.requests[fingerprint] = now
	return false
}

// Deduplication 在 window 內拒絕內容相同的重複 POST 請求
func Deduplication(window time.Duration) gin.HandlerFunc {
	return deduplicationWith(newDeduplicator(window))
}

func deduplicationWith(d *deduplicator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost || c.Request.Body == nil {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			// 讀取失敗（例如超過大小限制）時直接回應，不交給處理器
			common.LogWarn("Failed to read request body",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
			)
			status, resp := service.ErrorStatus(err)
			c.AbortWithStatusJSON(status, resp)
			return
		}
		// 恢復請求體
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		hash := sha256.Sum256(body)
		fingerprint := c.Request.URL.Path + "?" + c.Request.URL.RawQuery + ":" + hex.EncodeToString(hash[:])

		if d.seen(fingerprint) {
			common.LogWarn("Duplicate request rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Error: common.ErrTooManyRequests.Message,
				Code:  common.ErrCodeTooManyRequests,
			})
			return
		}

		c.Next()
	}
}
