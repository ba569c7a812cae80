package middleware

import (
	"context"
	"strings"
	"sync"

	authsvc "meta_response/internal/api/auth/service"
	"meta_response/internal/common"
	"meta_response/internal/global"
	"meta_response/internal/logger"
	"meta_response/internal/utility"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

var (
	userServiceInstance *authsvc.UserService
	userServiceOnce     sync.Once
)

// getUserService trả về instance duy nhất của UserService cho middleware
func getUserService() *authsvc.UserService {
	userServiceOnce.Do(func() {
		var err error
		userServiceInstance, err = authsvc.NewUserService()
		if err != nil {
			panic(err)
		}
	})
	return userServiceInstance
}

// bearerToken tách token từ header Authorization
func bearerToken(c fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", common.ErrTokenMissing
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", common.ErrTokenInvalid
	}
	return parts[1], nil
}

// AuthMiddleware middleware xác thực JWT cho Fiber.
// Verify chữ ký token trước, sau đó tra user trong DB để hỗ trợ thu hồi token.
// Set Locals "user_id" và "user" khi thành công.
func AuthMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, err := bearerToken(c)
		if err != nil {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":   c.Path(),
				"method": c.Method(),
			}).Warn("❌ [AUTH] Missing or malformed Authorization header")
			HandleErrorResponse(c, err)
			return nil
		}

		if _, err := utility.ParseToken(global.ServerConfig.JwtSecret, token); err != nil {
			HandleErrorResponse(c, common.ErrTokenInvalid)
			return nil
		}

		// Token đã bị logout/thu hồi sẽ không còn trong DB
		user, err := getUserService().FindByToken(context.Background(), token)
		if err != nil {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path": c.Path(),
			}).Warn("❌ [AUTH] Token not found in database")
			HandleErrorResponse(c, common.ErrTokenInvalid)
			return nil
		}

		if user.IsBlock {
			HandleErrorResponse(c, common.NewError(
				common.ErrCodeAuthCredentials,
				"Tài khoản đã bị khóa: "+user.BlockNote,
				common.StatusForbidden,
				nil,
			))
			return nil
		}

		c.Locals("user_id", user.ID.Hex())
		c.Locals("user", *user)
		return c.Next()
	}
}
