package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"meal-plan-spreadsheet/internal/core/mealplan"
	"meal-plan-spreadsheet/internal/infrastructure/config"
	"meal-plan-spreadsheet/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const uploadURLPath = "/v2/blob/upload-url"

// BlobUploadResult 上傳後的回應
type BlobUploadResult struct {
	DownloadURL string `json:"downloadUrl"`
}

// uploadURLResponse 取得上傳網址的回應
type uploadURLResponse struct {
	URL string `json:"url"`
}

// BlobDeliverer 上傳至遠端 Blob 儲存並回傳下載網址。
// 兩次 HTTP 呼叫視為單一流程，任一失敗即中止且不重試
type BlobDeliverer struct {
	cfg     config.BlobConfig
	client  *resty.Client
	tempDir string
}

// NewBlobDeliverer 創建 BlobDeliverer
func NewBlobDeliverer(cfg config.BlobConfig) *BlobDeliverer {
	client := resty.New().
		SetBaseURL(cfg.APIURL).
		SetTimeout(cfg.Timeout)

	return &BlobDeliverer{
		cfg:     cfg,
		client:  client,
		tempDir: os.TempDir(),
	}
}

// Deliver 實現 Deliverer 介面
func (d *BlobDeliverer) Deliver(ctx context.Context, artifact *mealplan.Artifact) (*Response, error) {
	// 憑證缺少時在任何網路呼叫前失敗
	if d.cfg.Token == "" {
		return nil, common.ErrMissingBlobToken
	}

	blobName := fmt.Sprintf("%s/%s.xlsx", strings.Trim(d.cfg.PathPrefix, "/"), common.GenerateUUID())

	downloadURL, err := WithTempFile(d.tempDir, artifact.Data, func(path string) (string, error) {
		return d.upload(ctx, path, blobName)
	})
	if err != nil {
		return nil, err
	}

	common.LogInfo("Artifact uploaded",
		zap.String("blob", blobName),
		zap.Int("bytes", artifact.Size()),
	)

	return jsonResponse(BlobUploadResult{DownloadURL: downloadURL})
}

// upload 先取得上傳網址，再以 PUT 上傳檔案，回傳去掉查詢字串的公開網址
func (d *BlobDeliverer) upload(ctx context.Context, path, blobName string) (string, error) {
	resp, err := d.client.R().
		SetContext(ctx).
		SetAuthToken(d.cfg.Token).
		SetBody(map[string]string{"filename": blobName}).
		Post(uploadURLPath)
	if err != nil {
		return "", common.ErrUploadFailed.Wrap(fmt.Errorf("failed to request upload url: %w", err))
	}
	if resp.IsError() {
		return "", common.ErrUploadFailed.Wrap(fmt.Errorf("upload url request returned %d: %s", resp.StatusCode(), resp.String()))
	}

	var info uploadURLResponse
	if err := json.Unmarshal(resp.Body(), &info); err != nil {
		return "", common.ErrUploadFailed.Wrap(fmt.Errorf("failed to parse upload url response: %w", err))
	}
	if info.URL == "" {
		return "", common.ErrUploadFailed.Wrap(fmt.Errorf("upload url response has no url"))
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open temp file: %w", err)
	}
	defer file.Close()

	putResp, err := d.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", mealplan.ContentType).
		SetBody(file).
		Put(info.URL)
	if err != nil {
		return "", common.ErrUploadFailed.Wrap(fmt.Errorf("failed to upload artifact: %w", err))
	}
	if putResp.IsError() {
		return "", common.ErrUploadFailed.Wrap(fmt.Errorf("upload returned %d: %s", putResp.StatusCode(), putResp.String()))
	}

	publicURL, _, _ := strings.Cut(info.URL, "?")
	return publicURL, nil
}
