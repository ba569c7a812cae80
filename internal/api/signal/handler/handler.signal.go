// Package signalhdl - handler của domain signal: catalogue, filter, ingest.
package signalhdl

import (
	"fmt"

	basehdl "meta_response/internal/api/base/handler"
	signaldto "meta_response/internal/api/signal/dto"
	models "meta_response/internal/api/signal/models"
	signalsvc "meta_response/internal/api/signal/service"
	"meta_response/internal/common"
	"meta_response/internal/utility"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SignalHandler xử lý CRUD catalogue signal
type SignalHandler struct {
	*basehdl.BaseHandler[models.Signal, signaldto.SignalCreateInput, signaldto.SignalUpdateInput]
}

// NewSignalHandler tạo instance mới của SignalHandler
func NewSignalHandler() (*SignalHandler, error) {
	service, err := signalsvc.NewSignalService()
	if err != nil {
		return nil, fmt.Errorf("failed to create signal service: %v", err)
	}
	return &SignalHandler{
		BaseHandler: basehdl.NewBaseHandler[models.Signal, signaldto.SignalCreateInput, signaldto.SignalUpdateInput](service),
	}, nil
}

// EntityTypeHandler xử lý CRUD quy tắc trích xuất entity
type EntityTypeHandler struct {
	*basehdl.BaseHandler[models.EntityType, signaldto.EntityTypeCreateInput, signaldto.EntityTypeUpdateInput]
}

// NewEntityTypeHandler tạo instance mới của EntityTypeHandler
func NewEntityTypeHandler() (*EntityTypeHandler, error) {
	service, err := signalsvc.NewEntityTypeService()
	if err != nil {
		return nil, fmt.Errorf("failed to create entity type service: %v", err)
	}
	return &EntityTypeHandler{
		BaseHandler: basehdl.NewBaseHandler[models.EntityType, signaldto.EntityTypeCreateInput, signaldto.EntityTypeUpdateInput](service),
	}, nil
}

// EntityHandler cho phép tra cứu các entity đã trích xuất (chỉ đọc)
type EntityHandler struct {
	*basehdl.BaseHandler[models.Entity, signaldto.EntityTypeCreateInput, signaldto.EntityTypeUpdateInput]
}

// NewEntityHandler tạo instance mới của EntityHandler
func NewEntityHandler() (*EntityHandler, error) {
	service, err := signalsvc.NewEntityService()
	if err != nil {
		return nil, fmt.Errorf("failed to create entity service: %v", err)
	}
	return &EntityHandler{
		BaseHandler: basehdl.NewBaseHandler[models.Entity, signaldto.EntityTypeCreateInput, signaldto.EntityTypeUpdateInput](service),
	}, nil
}

// SignalFilterHandler xử lý filter snooze/dedupe; create/update đi qua service
// riêng để validate expression đồng bộ lúc lưu
type SignalFilterHandler struct {
	*basehdl.BaseHandler[models.SignalFilter, signaldto.SignalFilterCreateInput, signaldto.SignalFilterUpdateInput]
	filterService *signalsvc.SignalFilterService
}

// NewSignalFilterHandler tạo instance mới của SignalFilterHandler
func NewSignalFilterHandler() (*SignalFilterHandler, error) {
	service, err := signalsvc.NewSignalFilterService()
	if err != nil {
		return nil, fmt.Errorf("failed to create signal filter service: %v", err)
	}
	return &SignalFilterHandler{
		BaseHandler:   basehdl.NewBaseHandler[models.SignalFilter, signaldto.SignalFilterCreateInput, signaldto.SignalFilterUpdateInput](service),
		filterService: service,
	}, nil
}

// HandleCreate tạo filter mới, expression được validate trước khi lưu
func (h *SignalFilterHandler) HandleCreate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		projectID := h.GetActiveProjectID(c)
		if projectID == nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationInput, "Chưa chọn project", common.StatusBadRequest, nil))
			return nil
		}
		var input signaldto.SignalFilterCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		creatorID := primitive.NilObjectID
		if userIDStr, ok := c.Locals("user_id").(string); ok {
			if id, err := utility.String2ObjectID(userIDStr); err == nil {
				creatorID = id
			}
		}

		created, err := h.filterService.Create(c.Context(), *projectID, creatorID, &input)
		h.HandleResponse(c, created, err)
		return nil
	})
}

// HandleUpdate cập nhật filter, expression mới được validate lại
func (h *SignalFilterHandler) HandleUpdate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		idStr := h.GetIDFromContext(c)
		id, err := utility.String2ObjectID(idStr)
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, "ID không hợp lệ", common.StatusBadRequest, err))
			return nil
		}
		if err := h.ValidateProjectAccess(c, idStr); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		var input signaldto.SignalFilterUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.filterService.Update(c.Context(), id, &input)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// SignalInstanceHandler cho phép tra cứu instance đã ingest (chỉ đọc)
type SignalInstanceHandler struct {
	*basehdl.BaseHandler[models.SignalInstance, signaldto.IngestInput, signaldto.IngestInput]
}

// NewSignalInstanceHandler tạo instance mới của SignalInstanceHandler
func NewSignalInstanceHandler() (*SignalInstanceHandler, error) {
	service, err := signalsvc.NewSignalInstanceService()
	if err != nil {
		return nil, fmt.Errorf("failed to create signal instance service: %v", err)
	}
	return &SignalInstanceHandler{
		BaseHandler: basehdl.NewBaseHandler[models.SignalInstance, signaldto.IngestInput, signaldto.IngestInput](service),
	}, nil
}
