package download

import (
	"errors"
	"strings"

	"meal-plan-spreadsheet/internal/api/handlers"
	"meal-plan-spreadsheet/internal/core/delivery"
	"meal-plan-spreadsheet/internal/core/mealplan"
	"meal-plan-spreadsheet/internal/core/store"
	"meal-plan-spreadsheet/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 暫存檔案下載處理器
type Handler struct {
	artifacts store.ArtifactStore
}

// NewHandler 創建處理器
func NewHandler(artifacts store.ArtifactStore) *Handler {
	return &Handler{artifacts: artifacts}
}

// Download 以附件回傳暫存的試算表
func (h *Handler) Download(c *gin.Context) {
	fileID := strings.TrimSpace(c.Param("fileId"))
	if fileID == "" {
		handlers.Error(c, common.ErrFileIDRequired)
		return
	}

	data, err := h.artifacts.Get(c.Request.Context(), fileID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			handlers.Error(c, common.ErrNotFound)
			return
		}
		handlers.Error(c, common.ErrStoreUnavailable.Wrap(err))
		return
	}

	common.LogInfo("Artifact downloaded",
		zap.String("file_id", fileID),
		zap.Int("bytes", len(data)),
	)

	resp, err := delivery.NewStreamDeliverer().Deliver(c.Request.Context(), &mealplan.Artifact{
		Filename:    mealplan.Filename,
		ContentType: mealplan.ContentType,
		Data:        data,
	})
	if err != nil {
		handlers.Error(c, err)
		return
	}

	handlers.Write(c, resp)
}
