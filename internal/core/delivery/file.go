package delivery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"meal-plan-spreadsheet/internal/core/mealplan"
	"meal-plan-spreadsheet/internal/pkg/common"

	"go.uber.org/zap"
)

// FileDeliverer 先將檔案寫入暫存路徑再讀回作為下載回應，讀取後立即刪除
type FileDeliverer struct {
	dir string
}

// NewFileDeliverer 創建 FileDeliverer；dir 為空時使用系統暫存目錄
func NewFileDeliverer(dir string) *FileDeliverer {
	if dir == "" {
		dir = os.TempDir()
	}
	return &FileDeliverer{dir: dir}
}

// Deliver 實現 Deliverer 介面
func (d *FileDeliverer) Deliver(ctx context.Context, artifact *mealplan.Artifact) (*Response, error) {
	data, err := WithTempFile(d.dir, artifact.Data, os.ReadFile)
	if err != nil {
		return nil, err
	}
	return attachment(artifact, data), nil
}

// WithTempFile 以隨機檔名寫入暫存檔並交給 fn 使用；無論成功與否都會刪除檔案，
// 刪除失敗只記錄日誌，不覆蓋原本的錯誤
func WithTempFile[T any](dir string, data []byte, fn func(path string) (T, error)) (T, error) {
	var zero T

	path := filepath.Join(dir, fmt.Sprintf("meal_plan_%s.xlsx", common.GenerateUUID()))
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			common.LogWarn("Failed to remove temp file",
				zap.String("path", path),
				zap.Error(err),
			)
		}
	}()

	if err := os.WriteFile(path, data, 0600); err != nil {
		return zero, fmt.Errorf("failed to write temp file: %w", err)
	}

	result, err := fn(path)
	if err != nil {
		return zero, fmt.Errorf("failed to use temp file: %w", err)
	}
	return result, nil
}
