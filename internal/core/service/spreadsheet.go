package service

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"meal-plan-spreadsheet/internal/core/delivery"
	"meal-plan-spreadsheet/internal/core/mealplan"
	"meal-plan-spreadsheet/internal/pkg/common"

	"go.uber.org/zap"
)

// SpreadsheetService 解析飲食計畫、建立試算表並交付
type SpreadsheetService struct {
	builder  *mealplan.Builder
	registry *delivery.Registry
}

// NewSpreadsheetService 創建 SpreadsheetService
func NewSpreadsheetService(registry *delivery.Registry) *SpreadsheetService {
	return &SpreadsheetService{
		builder:  mealplan.NewBuilder(),
		registry: registry,
	}
}

// Generate 依交付模式產生回應，mode 為空時使用預設模式
func (s *SpreadsheetService) Generate(ctx context.Context, body []byte, mode string) (*delivery.Response, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, common.ErrInvalidRequest
	}

	// 先確認交付模式，避免無效請求浪費建檔成本
	deliverer, err := s.registry.Get(mode)
	if err != nil {
		return nil, common.ErrUnknownDelivery.Wrap(err)
	}

	start := time.Now()
	artifact, err := s.builder.BuildJSON(body)
	if err != nil {
		return nil, err
	}

	resp, err := deliverer.Deliver(ctx, artifact)
	if err != nil {
		return nil, err
	}

	common.LogInfo("Spreadsheet generated",
		zap.String("delivery", mode),
		zap.Strings("sheets", artifact.Sheets),
		zap.Int("bytes", artifact.Size()),
		zap.Duration("duration", time.Since(start)),
	)
	return resp, nil
}

// ErrorStatus 將錯誤轉換為 HTTP 狀態碼與回應內容
func ErrorStatus(err error) (int, common.ErrorResponse) {
	var malformed *mealplan.MalformedInputError
	var sheetName *mealplan.InvalidSheetNameError
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &malformed):
		return http.StatusBadRequest, common.ErrorResponse{Error: err.Error(), Code: common.ErrCodeMalformedInput}
	case errors.As(err, &sheetName):
		return http.StatusBadRequest, common.ErrorResponse{Error: err.Error(), Code: common.ErrCodeInvalidSheetName}
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, common.ErrorResponse{
			Error: common.ErrRequestTooLarge.Message,
			Code:  common.ErrCodeTooLarge,
		}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, common.ErrorResponse{
			Error: common.ErrRequestTimeout.Message,
			Code:  common.ErrCodeGatewayTimeout,
		}
	}

	if ce, ok := common.AsCustomError(err); ok {
		resp := common.ErrorResponse{Error: ce.Message, Code: ce.Code}
		if ce.Err != nil {
			resp.Details = ce.Err.Error()
		}
		return ce.Status, resp
	}

	return http.StatusInternalServerError, common.ErrorResponse{Error: err.Error(), Code: common.ErrCodeInternalError}
}
