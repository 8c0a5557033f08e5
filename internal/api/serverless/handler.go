package serverless

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"meal-plan-spreadsheet/internal/api/middleware"
	"meal-plan-spreadsheet/internal/core/service"
	"meal-plan-spreadsheet/internal/pkg/common"

	"go.uber.org/zap"
)

// Request 函式平台傳入的事件
type Request struct {
	HTTPMethod            string            `json:"httpMethod"`
	Headers               map[string]string `json:"headers,omitempty"`
	QueryStringParameters map[string]string `json:"queryStringParameters,omitempty"`
	Body                  string            `json:"body"`
	IsBase64Encoded       bool              `json:"isBase64Encoded"`
}

// Response 回傳給函式平台的結果
type Response struct {
	StatusCode      int               `json:"statusCode"`
	Headers         map[string]string `json:"headers"`
	Body            string            `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`
}

// Handler 函式平台處理器
type Handler struct {
	svc  *service.SpreadsheetService
	mode string
}

// NewHandler 創建處理器，mode 為預設交付模式
func NewHandler(svc *service.SpreadsheetService, mode string) *Handler {
	return &Handler{svc: svc, mode: mode}
}

// Handle 處理單一事件
func (h *Handler) Handle(ctx context.Context, req Request) Response {
	method := strings.ToUpper(req.HTTPMethod)

	if method == http.MethodOptions {
		headers := make(http.Header)
		middleware.SetCORSHeaders(headers)
		return Response{StatusCode: http.StatusOK, Headers: flatten(headers)}
	}
	if method != http.MethodPost {
		return errorResponse(http.StatusMethodNotAllowed, common.ErrorResponse{Error: common.ErrMethodNotAllowed.Message})
	}

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return errorResponse(http.StatusBadRequest, common.ErrorResponse{
				Error:   "Invalid base64 body",
				Code:    common.ErrCodeInvalidRequest,
				Details: err.Error(),
			})
		}
		body = decoded
	}

	mode := h.mode
	if q := req.QueryStringParameters["delivery"]; q != "" {
		mode = q
	}

	resp, err := h.svc.Generate(ctx, body, mode)
	if err != nil {
		status, errResp := service.ErrorStatus(err)
		if status >= 500 {
			common.LogError("Function invocation failed", zap.Error(err))
		} else {
			common.LogWarn("Function invocation rejected", zap.Error(err))
		}
		return errorResponse(status, errResp)
	}

	headers := flatten(resp.Header)
	headers["Access-Control-Allow-Origin"] = middleware.AllowOrigin

	if resp.IsBinary() {
		return Response{
			StatusCode:      resp.StatusCode,
			Headers:         headers,
			Body:            base64.StdEncoding.EncodeToString(resp.Body),
			IsBase64Encoded: true,
		}
	}
	return Response{StatusCode: resp.StatusCode, Headers: headers, Body: string(resp.Body)}
}

// ServeHTTP 將 HTTP 請求轉為事件，供本機或 gin 掛載使用
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := Request{
		HTTPMethod:            r.Method,
		Headers:               flatten(r.Header),
		QueryStringParameters: map[string]string{},
	}
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			req.QueryStringParameters[key] = values[0]
		}
	}
	if r.Method == http.MethodPost && r.Body != nil {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			status, errResp := service.ErrorStatus(err)
			Write(w, errorResponse(status, errResp))
			return
		}
		req.Body = string(data)
	}

	Write(w, h.Handle(r.Context(), req))
}

// Write 將事件回應寫回 HTTP
func Write(w http.ResponseWriter, resp Response) {
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}

	body := []byte(resp.Body)
	if resp.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(resp.Body)
		if err != nil {
			common.WriteErrorResponse(w, http.StatusInternalServerError, err.Error())
			return
		}
		body = decoded
	}

	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(body); err != nil {
		common.LogWarn("Failed to write response",
			zap.Error(err),
			zap.Int("status", resp.StatusCode),
		)
	}
}

func errorResponse(status int, body common.ErrorResponse) Response {
	data, err := json.Marshal(body)
	if err != nil {
		data = []byte(`{"error":"Internal server error"}`)
	}
	return Response{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": middleware.AllowOrigin,
		},
		Body: string(data),
	}
}

func flatten(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for key := range h {
		out[key] = h.Get(key)
	}
	return out
}
