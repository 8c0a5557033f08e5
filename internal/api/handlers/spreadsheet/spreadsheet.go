package spreadsheet

import (
	"io"

	"meal-plan-spreadsheet/internal/api/handlers"
	"meal-plan-spreadsheet/internal/core/service"

	"github.com/gin-gonic/gin"
)

// Handler 試算表產生處理器
type Handler struct {
	svc *service.SpreadsheetService
}

// NewHandler 創建處理器
func NewHandler(svc *service.SpreadsheetService) *Handler {
	return &Handler{svc: svc}
}

// Generate 處理 POST 請求，交付模式取自 delivery 查詢參數
func (h *Handler) Generate(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		handlers.Error(c, err)
		return
	}

	resp, err := h.svc.Generate(c.Request.Context(), body, c.Query("delivery"))
	if err != nil {
		handlers.Error(c, err)
		return
	}

	handlers.Write(c, resp)
}
