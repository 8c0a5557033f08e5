package middleware

import (
	"net/http"
	"time"

	"meal-plan-spreadsheet/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// 預檢回應的 CORS 標頭
const (
	AllowOrigin  = "*"
	AllowMethods = "POST, OPTIONS"
	AllowHeaders = "Content-Type"
)

// CORS 允許任意來源，預檢請求回應 200
func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins:           true,
		AllowMethods:              []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:              []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:             []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: http.StatusOK,
	})
}

// SetCORSHeaders 寫入寬鬆的 CORS 標頭
func SetCORSHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", AllowOrigin)
	h.Set("Access-Control-Allow-Methods", AllowMethods)
	h.Set("Access-Control-Allow-Headers", AllowHeaders)
}

// Preflight 回應沒有 Origin 標頭的 OPTIONS 請求，不讀取請求體
func Preflight(c *gin.Context) {
	SetCORSHeaders(c.Writer.Header())
	c.Status(http.StatusOK)
}

// MethodNotAllowed 拒絕不支援的方法
func MethodNotAllowed(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", AllowOrigin)
	c.AbortWithStatusJSON(http.StatusMethodNotAllowed, common.ErrorResponse{
		Error: common.ErrMethodNotAllowed.Message,
	})
}
