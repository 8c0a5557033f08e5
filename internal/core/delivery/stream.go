package delivery

import (
	"context"

	"meal-plan-spreadsheet/internal/core/mealplan"
)

// StreamDeliverer 直接以附件回傳檔案內容
type StreamDeliverer struct{}

// NewStreamDeliverer 創建 StreamDeliverer
func NewStreamDeliverer() *StreamDeliverer {
	return &StreamDeliverer{}
}

// Deliver 實現 Deliverer 介面
func (d *StreamDeliverer) Deliver(ctx context.Context, artifact *mealplan.Artifact) (*Response, error) {
	return attachment(artifact, artifact.Data), nil
}
