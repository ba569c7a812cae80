package middleware

import (
	"context"
	"sync"

	authsvc "meta_response/internal/api/auth/service"
	"meta_response/internal/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

var (
	accessTokenServiceInstance *authsvc.AccessTokenService
	accessTokenServiceOnce     sync.Once
)

func getAccessTokenService() *authsvc.AccessTokenService {
	accessTokenServiceOnce.Do(func() {
		var err error
		accessTokenServiceInstance, err = authsvc.NewAccessTokenService()
		if err != nil {
			panic(err)
		}
	})
	return accessTokenServiceInstance
}

// IngestTokenMiddleware xác thực access token tĩnh cho endpoint ingest.
// Hệ thống nguồn gửi token qua Authorization: Bearer mrt_xxx.
// Project context được lấy từ chính token, không cần header X-Active-Project-ID.
func IngestTokenMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, err := bearerToken(c)
		if err != nil {
			HandleErrorResponse(c, err)
			return nil
		}

		record, err := getAccessTokenService().Validate(context.Background(), token)
		if err != nil {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path": c.Path(),
			}).Warn("❌ [INGEST] Access token không hợp lệ")
			HandleErrorResponse(c, err)
			return nil
		}

		c.Locals("project_id", record.ProjectID.Hex())
		c.Locals("access_token_id", record.ID.Hex())
		c.Locals("access_token_name", record.Name)
		return c.Next()
	}
}
