package delivery

import (
	"context"
	"encoding/base64"

	"meal-plan-spreadsheet/internal/core/mealplan"
)

// Base64Payload base64 JSON 回應內容
type Base64Payload struct {
	Filename    string   `json:"filename"`
	ContentType string   `json:"contentType"`
	Sheets      []string `json:"sheets"`
	Data        string   `json:"data"`
}

// Base64Deliverer 將檔案以 base64 包在 JSON 中回傳
type Base64Deliverer struct{}

// NewBase64Deliverer 創建 Base64Deliverer
func NewBase64Deliverer() *Base64Deliverer {
	return &Base64Deliverer{}
}

// Deliver 實現 Deliverer 介面
func (d *Base64Deliverer) Deliver(ctx context.Context, artifact *mealplan.Artifact) (*Response, error) {
	return jsonResponse(Base64Payload{
		Filename:    artifact.Filename,
		ContentType: artifact.ContentType,
		Sheets:      artifact.Sheets,
		Data:        base64.StdEncoding.EncodeToString(artifact.Data),
	})
}
