package delivery

import (
	"context"
	"strings"
	"time"

	"meal-plan-spreadsheet/internal/core/mealplan"
	"meal-plan-spreadsheet/internal/core/store"
	"meal-plan-spreadsheet/internal/pkg/common"
)

// DownloadPath 下載端點路徑前綴
const DownloadPath = "/api/v1/download/"

// StoredFile 暫存後的回應
type StoredFile struct {
	FileID      string `json:"fileId"`
	DownloadURL string `json:"downloadUrl"`
}

// StoreDeliverer 將檔案放入暫存並回傳下載連結
type StoreDeliverer struct {
	artifacts store.ArtifactStore
	ttl       time.Duration
	baseURL   string
}

// NewStoreDeliverer 創建 StoreDeliverer
func NewStoreDeliverer(artifacts store.ArtifactStore, ttl time.Duration, baseURL string) *StoreDeliverer {
	return &StoreDeliverer{
		artifacts: artifacts,
		ttl:       ttl,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// Deliver 實現 Deliverer 介面
func (d *StoreDeliverer) Deliver(ctx context.Context, artifact *mealplan.Artifact) (*Response, error) {
	if d.artifacts == nil {
		return nil, common.ErrStoreUnavailable
	}

	id := common.GenerateUUID()
	if err := d.artifacts.Put(ctx, id, artifact.Data, d.ttl); err != nil {
		return nil, common.ErrStoreUnavailable.Wrap(err)
	}

	return jsonResponse(StoredFile{
		FileID:      id,
		DownloadURL: d.baseURL + DownloadPath + id,
	})
}
