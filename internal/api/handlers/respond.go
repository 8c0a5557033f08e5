package handlers

import (
	"meal-plan-spreadsheet/internal/core/delivery"
	"meal-plan-spreadsheet/internal/core/service"
	"meal-plan-spreadsheet/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Write 將交付結果寫入 gin 回應
func Write(c *gin.Context, resp *delivery.Response) {
	for key, values := range resp.Header {
		for _, v := range values {
			c.Writer.Header().Add(key, v)
		}
	}
	c.Data(resp.StatusCode, resp.ContentType(), resp.Body)
}

// Error 依錯誤類型回應 JSON 錯誤
func Error(c *gin.Context, err error) {
	status, resp := service.ErrorStatus(err)

	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status", status),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", requestid.Get(c)),
	}
	if status >= 500 {
		common.LogError("Request failed", fields...)
	} else {
		common.LogWarn("Request rejected", fields...)
	}

	c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}
