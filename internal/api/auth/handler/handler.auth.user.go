// Package authhdl - handler xác thực và quản lý người dùng.
package authhdl

import (
	"fmt"

	authdto "meta_response/internal/api/auth/dto"
	models "meta_response/internal/api/auth/models"
	authsvc "meta_response/internal/api/auth/service"
	basehdl "meta_response/internal/api/base/handler"
	basesvc "meta_response/internal/api/base/service"
	"meta_response/internal/common"
	"meta_response/internal/logger"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserHandler xử lý các request xác thực và quản lý người dùng
type UserHandler struct {
	*basehdl.BaseHandler[models.User, authdto.UserRegisterInput, authdto.UserChangeInfoInput]
	userService *authsvc.UserService
}

// NewUserHandler tạo instance mới của UserHandler
func NewUserHandler() (*UserHandler, error) {
	userService, err := authsvc.NewUserService()
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %v", err)
	}
	baseHandler := basehdl.NewBaseHandler[models.User, authdto.UserRegisterInput, authdto.UserChangeInfoInput](userService)
	return &UserHandler{
		BaseHandler: baseHandler,
		userService: userService,
	}, nil
}

// currentUserID lấy user ID từ context (AuthMiddleware đã set)
func (h *UserHandler) currentUserID(c fiber.Ctx) (primitive.ObjectID, error) {
	userIDStr, ok := c.Locals("user_id").(string)
	if !ok || userIDStr == "" {
		return primitive.NilObjectID, common.NewError(common.ErrCodeAuth, "Chưa xác thực", common.StatusUnauthorized, nil)
	}
	objID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		return primitive.NilObjectID, common.NewError(common.ErrCodeValidationFormat, "User ID không hợp lệ", common.StatusBadRequest, err)
	}
	return objID, nil
}

// sanitize xóa các field nhạy cảm trước khi trả về client
func sanitize(user *models.User) {
	user.Password = ""
	user.Tokens = nil
}

// HandleRegister xử lý đăng ký người dùng mới
func (h *UserHandler) HandleRegister(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input authdto.UserRegisterInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		user, err := h.userService.Register(c.Context(), &input)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		sanitize(user)
		logger.LogAuth("register", c, map[string]interface{}{"user_id": user.ID.Hex()})
		h.HandleResponse(c, user, nil)
		return nil
	})
}

// HandleLogin xử lý đăng nhập, trả về user kèm JWT token
func (h *UserHandler) HandleLogin(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input authdto.UserLoginInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		user, err := h.userService.Login(c.Context(), &input)
		if err != nil {
			logger.LogAuth("login", c, map[string]interface{}{"email": input.Email, "success": false})
			h.HandleResponse(c, nil, err)
			return nil
		}
		sanitize(user)
		logger.LogAuth("login", c, map[string]interface{}{"user_id": user.ID.Hex(), "success": true})
		h.HandleResponse(c, user, nil)
		return nil
	})
}

// HandleLogout xử lý đăng xuất người dùng
func (h *UserHandler) HandleLogout(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userID, err := h.currentUserID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		var input authdto.UserLogoutInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		err = h.userService.Logout(c.Context(), userID, &input)
		logger.LogAuth("logout", c, map[string]interface{}{"success": err == nil})
		h.HandleResponse(c, nil, err)
		return nil
	})
}

// HandleGetProfile lấy thông tin profile của người dùng hiện tại
func (h *UserHandler) HandleGetProfile(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userID, err := h.currentUserID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		user, err := h.userService.BaseServiceMongoImpl.FindOneById(c.Context(), userID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		sanitize(&user)
		h.HandleResponse(c, user, nil)
		return nil
	})
}

// HandleUpdateProfile cập nhật thông tin profile
func (h *UserHandler) HandleUpdateProfile(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userID, err := h.currentUserID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		var input authdto.UserChangeInfoInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if input.Name == "" {
			h.HandleResponse(c, nil, common.ErrRequiredField)
			return nil
		}

		update := &basesvc.UpdateData{Set: map[string]interface{}{"name": input.Name}}
		updated, err := h.userService.BaseServiceMongoImpl.UpdateById(c.Context(), userID, update)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		sanitize(&updated)
		h.HandleResponse(c, updated, nil)
		return nil
	})
}

// HandleChangePassword đổi mật khẩu người dùng hiện tại
func (h *UserHandler) HandleChangePassword(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userID, err := h.currentUserID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		var input authdto.UserChangePasswordInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		err = h.userService.ChangePassword(c.Context(), userID, &input)
		logger.LogAuth("change_password", c, map[string]interface{}{"success": err == nil})
		h.HandleResponse(c, nil, err)
		return nil
	})
}

// HandleBlockUser khóa tài khoản theo email
func (h *UserHandler) HandleBlockUser(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input authdto.BlockUserInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		user, err := h.userService.SetBlock(c.Context(), input.Email, true, input.Note)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		sanitize(user)
		h.HandleResponse(c, user, nil)
		return nil
	})
}

// HandleUnBlockUser mở khóa tài khoản theo email
func (h *UserHandler) HandleUnBlockUser(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input authdto.UnBlockUserInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		user, err := h.userService.SetBlock(c.Context(), input.Email, false, "")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		sanitize(user)
		h.HandleResponse(c, user, nil)
		return nil
	})
}
