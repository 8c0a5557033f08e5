package rawhttp

import (
	"io"
	"net/http"

	"meal-plan-spreadsheet/internal/api/middleware"
	"meal-plan-spreadsheet/internal/core/service"
	"meal-plan-spreadsheet/internal/pkg/common"

	"go.uber.org/zap"
)

// Handler 不依賴框架的 net/http 處理器，固定以串流方式回傳檔案
type Handler struct {
	svc     *service.SpreadsheetService
	mode    string
	maxBody int64
}

// NewHandler 創建處理器
func NewHandler(svc *service.SpreadsheetService, mode string, maxBody int64) http.Handler {
	return recoverer(&Handler{svc: svc, mode: mode, maxBody: maxBody})
}

// ServeHTTP 實現 http.Handler 介面
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	middleware.SetCORSHeaders(w.Header())

	// 預檢請求不讀取請求體
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		common.WriteErrorResponse(w, http.StatusMethodNotAllowed, common.ErrMethodNotAllowed.Message)
		return
	}

	body := r.Body
	if h.maxBody > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp, err := h.svc.Generate(r.Context(), data, h.mode)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	for key, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(resp.Body); err != nil {
		common.LogWarn("Failed to write response", zap.Error(err), zap.String("path", r.URL.Path))
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := service.ErrorStatus(err)
	if status >= 500 {
		common.LogError("Raw spreadsheet request failed", zap.Error(err), zap.String("path", r.URL.Path))
	} else {
		common.LogWarn("Raw spreadsheet request rejected", zap.Error(err), zap.String("path", r.URL.Path))
	}
	common.WriteJSON(w, status, resp)
}

// statusRecorder 記錄已寫出的狀態碼
type statusRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

// WriteHeader 實現 http.ResponseWriter 介面
func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// recoverer 攔截 panic 並在尚未寫出回應時回傳 500
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		defer func() {
			if err := recover(); err != nil {
				common.LogError("Server panic recovered",
					zap.Any("error", err),
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method),
				)
				if !rw.wroteHeader {
					common.WriteJSON(rw, http.StatusInternalServerError, common.ErrorResponse{
						Error: common.ErrInternalError.Message,
						Code:  common.ErrCodeInternalError,
					})
				}
			}
		}()

		next.ServeHTTP(rw, r)
	})
}
