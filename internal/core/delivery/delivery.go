package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"meal-plan-spreadsheet/internal/core/mealplan"
	"meal-plan-spreadsheet/internal/core/store"
	"meal-plan-spreadsheet/internal/infrastructure/config"
)

// Response 與傳輸層無關的交付結果
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ContentType 回應的 Content-Type
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// IsBinary 回應內容是否為二進位檔案
func (r *Response) IsBinary() bool {
	return r.ContentType() == mealplan.ContentType
}

// Deliverer 將產出的試算表交付給呼叫端
type Deliverer interface {
	Deliver(ctx context.Context, artifact *mealplan.Artifact) (*Response, error)
}

// attachment 以附件形式回傳檔案
func attachment(artifact *mealplan.Artifact, data []byte) *Response {
	h := make(http.Header)
	h.Set("Content-Type", mealplan.ContentType)
	h.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, artifact.Filename))
	h.Set("Content-Length", strconv.Itoa(len(data)))
	return &Response{StatusCode: http.StatusOK, Header: h, Body: data}
}

// jsonResponse 以 JSON 回傳
func jsonResponse(v interface{}) (*Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	return &Response{StatusCode: http.StatusOK, Header: h, Body: body}, nil
}

// Registry 依模式名稱挑選交付方式
type Registry struct {
	deliverers map[string]Deliverer
	fallback   string
}

// NewRegistry 依設定建立所有交付方式
func NewRegistry(cfg *config.Config, artifacts store.ArtifactStore) *Registry {
	return &Registry{
		deliverers: map[string]Deliverer{
			config.DeliveryFile:   NewFileDeliverer(cfg.Export.TempDir),
			config.DeliveryStream: NewStreamDeliverer(),
			config.DeliveryBase64: NewBase64Deliverer(),
			config.DeliveryBlob:   NewBlobDeliverer(cfg.Blob),
			config.DeliveryStore:  NewStoreDeliverer(artifacts, cfg.Store.TTL, cfg.Server.PublicBaseURL),
		},
		fallback: cfg.Export.DefaultDelivery,
	}
}

// Get 取得交付方式，mode 為空時使用預設值
func (r *Registry) Get(mode string) (Deliverer, error) {
	if mode == "" {
		mode = r.fallback
	}
	d, ok := r.deliverers[mode]
	if !ok {
		return nil, fmt.Errorf("unknown delivery mode %q", mode)
	}
	return d, nil
}
