package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"meal-plan-spreadsheet/internal/api/serverless"
	"meal-plan-spreadsheet/internal/core/delivery"
	"meal-plan-spreadsheet/internal/core/service"
	"meal-plan-spreadsheet/internal/core/store"
	"meal-plan-spreadsheet/internal/infrastructure/config"
	"meal-plan-spreadsheet/internal/pkg/common"

	"go.uber.org/zap"
)

// 從標準輸入讀取一個事件，處理後將回應寫到標準輸出
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 標準輸出保留給回應，日誌只寫檔案
	if err := common.InitLogger(common.LogOptions{
		Level:      cfg.Log.Level,
		Mode:       cfg.Log.Mode,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Service:    "meal-plan-function",
		Quiet:      true,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	var req serverless.Request
	if err := common.DecodeJSON(os.Stdin, &req); err != nil {
		common.LogError("Failed to decode event", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to decode event: %v\n", err)
		common.Sync()
		os.Exit(1)
	}

	artifacts, err := store.New(cfg)
	if err != nil {
		common.LogError("Failed to initialize artifact store", zap.Error(err))
		common.Sync()
		os.Exit(1)
	}
	defer artifacts.Close()

	svc := service.NewSpreadsheetService(delivery.NewRegistry(cfg, artifacts))
	resp := serverless.NewHandler(svc, cfg.Export.FunctionDelivery).Handle(context.Background(), req)

	if err := json.NewEncoder(os.Stdout).Encode(resp); err != nil {
		common.LogError("Failed to encode response", zap.Error(err))
	}
}
