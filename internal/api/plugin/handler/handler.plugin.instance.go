// Package pluginhdl - handler quản lý plugin instance.
package pluginhdl

import (
	"fmt"

	basehdl "meta_response/internal/api/base/handler"
	plugindto "meta_response/internal/api/plugin/dto"
	models "meta_response/internal/api/plugin/models"
	pluginsvc "meta_response/internal/api/plugin/service"
	"meta_response/internal/common"
	"meta_response/internal/utility"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PluginInstanceHandler xử lý các request quản lý plugin instance.
// Create/Update đi qua service riêng để mã hóa config; các thao tác đọc
// dùng base handler (field config đã bị loại khỏi JSON output).
type PluginInstanceHandler struct {
	*basehdl.BaseHandler[models.PluginInstance, plugindto.PluginInstanceCreateInput, plugindto.PluginInstanceUpdateInput]
	pluginService *pluginsvc.PluginInstanceService
}

// NewPluginInstanceHandler tạo instance mới của PluginInstanceHandler
func NewPluginInstanceHandler() (*PluginInstanceHandler, error) {
	pluginService, err := pluginsvc.NewPluginInstanceService()
	if err != nil {
		return nil, fmt.Errorf("failed to create plugin instance service: %v", err)
	}
	baseHandler := basehdl.NewBaseHandler[models.PluginInstance, plugindto.PluginInstanceCreateInput, plugindto.PluginInstanceUpdateInput](pluginService)
	return &PluginInstanceHandler{
		BaseHandler:   baseHandler,
		pluginService: pluginService,
	}, nil
}

// scopedID đọc :id từ URL, kiểm tra quyền project rồi trả về ObjectID
func (h *PluginInstanceHandler) scopedID(c fiber.Ctx) (primitive.ObjectID, error) {
	idStr := h.GetIDFromContext(c)
	id, err := utility.String2ObjectID(idStr)
	if err != nil {
		return primitive.NilObjectID, common.NewError(common.ErrCodeValidationFormat, "ID không hợp lệ", common.StatusBadRequest, err)
	}
	if err := h.ValidateProjectAccess(c, idStr); err != nil {
		return primitive.NilObjectID, err
	}
	return id, nil
}

// HandleCreate tạo plugin instance mới trong project đang active
func (h *PluginInstanceHandler) HandleCreate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		projectID := h.GetActiveProjectID(c)
		if projectID == nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationInput, "Chưa chọn project", common.StatusBadRequest, nil))
			return nil
		}
		var input plugindto.PluginInstanceCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		created, err := h.pluginService.Create(c.Context(), *projectID, &input)
		h.HandleResponse(c, created, err)
		return nil
	})
}

// HandleUpdate cập nhật tên/config của một instance
func (h *PluginInstanceHandler) HandleUpdate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.scopedID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		var input plugindto.PluginInstanceUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.pluginService.Update(c.Context(), id, &input)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleEnable bật một instance, tắt các instance cùng capability
func (h *PluginInstanceHandler) HandleEnable(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.scopedID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		updated, err := h.pluginService.Enable(c.Context(), id)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleDisable tắt một instance
func (h *PluginInstanceHandler) HandleDisable(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.scopedID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		updated, err := h.pluginService.Disable(c.Context(), id)
		h.HandleResponse(c, updated, err)
		return nil
	})
}
