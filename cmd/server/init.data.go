package main

import (
	"context"

	"meta_response/internal/api/initsvc"
	"meta_response/internal/global"
	"meta_response/internal/logger"
)

// InitDefaultData seed dữ liệu mặc định khi server chạy với INITMODE
func InitDefaultData() {
	log := logger.GetAppLogger()

	if !global.ServerConfig.InitMode {
		log.Info("INITMODE tắt, bỏ qua seed dữ liệu mặc định")
		return
	}

	log.Info("🔄 [INIT] Starting InitDefaultData...")
	initService, err := initsvc.NewInitService()
	if err != nil {
		log.Fatalf("Failed to initialize init service: %v", err)
	}

	if err := initService.InitDefaults(context.Background()); err != nil {
		log.Fatalf("Failed to seed default data: %v", err)
	}
	log.Info("✅ [INIT] InitDefaultData completed successfully")
}
