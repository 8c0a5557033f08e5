package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Error   string `json:"error"`             // 錯誤信息
	Code    string `json:"code,omitempty"`    // 錯誤代碼
	Details string `json:"details,omitempty"` // 詳細信息
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// Wrap 以預定義錯誤為範本包裝底層錯誤
func (e *CustomError) Wrap(err error) *CustomError {
	return NewError(e.Code, e.Message, e.Status, err)
}

// AsCustomError 取出錯誤鏈中的 CustomError
func AsCustomError(err error) (*CustomError, bool) {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest   = "INVALID_REQUEST"    // 400
	ErrCodeMalformedInput   = "MALFORMED_INPUT"    // 400
	ErrCodeInvalidSheetName = "INVALID_SHEET_NAME" // 400
	ErrCodeNotFound         = "NOT_FOUND"          // 404
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED" // 405
	ErrCodeTooLarge         = "REQUEST_TOO_LARGE"  // 413
	ErrCodeTooManyRequests  = "TOO_MANY_REQUESTS"  // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError    = "INTERNAL_ERROR"    // 500
	ErrCodeUploadFailed     = "UPLOAD_FAILED"     // 500
	ErrCodeStoreUnavailable = "STORE_UNAVAILABLE" // 503
	ErrCodeGatewayTimeout   = "GATEWAY_TIMEOUT"   // 504
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest   = NewError(ErrCodeInvalidRequest, "No data provided", http.StatusBadRequest, nil)
	ErrFileIDRequired   = NewError(ErrCodeInvalidRequest, "File ID required", http.StatusBadRequest, nil)
	ErrNotFound         = NewError(ErrCodeNotFound, "File not found or expired", http.StatusNotFound, nil)
	ErrUnknownDelivery  = NewError(ErrCodeInvalidRequest, "Unknown delivery mode", http.StatusBadRequest, nil)
	ErrMethodNotAllowed = NewError(ErrCodeMethodNotAllowed, "Method not allowed", http.StatusMethodNotAllowed, nil)
	ErrRequestTooLarge  = NewError(ErrCodeTooLarge, "Request body too large", http.StatusRequestEntityTooLarge, nil)
	ErrTooManyRequests  = NewError(ErrCodeTooManyRequests, "Request too frequent", http.StatusTooManyRequests, nil)

	// 服務器錯誤
	ErrInternalError    = NewError(ErrCodeInternalError, "Internal server error", http.StatusInternalServerError, nil)
	ErrUploadFailed     = NewError(ErrCodeUploadFailed, "Blob upload failed", http.StatusInternalServerError, nil)
	ErrMissingBlobToken = NewError(ErrCodeUploadFailed, "Missing BLOB_READ_WRITE_TOKEN", http.StatusInternalServerError, nil)
	ErrStoreUnavailable = NewError(ErrCodeStoreUnavailable, "Artifact store unavailable", http.StatusServiceUnavailable, nil)
	ErrRequestTimeout   = NewError(ErrCodeGatewayTimeout, "Request timeout", http.StatusGatewayTimeout, nil)
)
