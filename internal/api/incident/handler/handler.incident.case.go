package incidenthdl

import (
	"fmt"

	basehdl "meta_response/internal/api/base/handler"
	incidentdto "meta_response/internal/api/incident/dto"
	models "meta_response/internal/api/incident/models"
	incidentsvc "meta_response/internal/api/incident/service"
	"meta_response/internal/common"
	"meta_response/internal/utility"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// actorFromContext lấy ObjectID của user đang thao tác từ context
func actorFromContext(c fiber.Ctx) primitive.ObjectID {
	if userIDStr, ok := c.Locals("user_id").(string); ok {
		if id, err := utility.String2ObjectID(userIDStr); err == nil {
			return id
		}
	}
	return primitive.NilObjectID
}

// toObjectIDs chuyển danh sách hex string thành ObjectID, bỏ qua giá trị hỏng
func toObjectIDs(hexes []string) []primitive.ObjectID {
	var ids []primitive.ObjectID
	for _, hex := range hexes {
		if id, err := utility.String2ObjectID(hex); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func objectIDOrNil(hex string) primitive.ObjectID {
	if id, err := utility.String2ObjectID(hex); err == nil {
		return id
	}
	return primitive.NilObjectID
}

// CaseHandler xử lý vòng đời case: tạo, chuyển trạng thái, gán role, timeline
type CaseHandler struct {
	*basehdl.BaseHandler[models.Case, incidentdto.CaseCreateInput, incidentdto.CaseUpdateInput]
	caseService *incidentsvc.CaseService
	events      *incidentsvc.EventService
}

// NewCaseHandler tạo instance mới của CaseHandler
func NewCaseHandler() (*CaseHandler, error) {
	service, err := incidentsvc.NewCaseService()
	if err != nil {
		return nil, fmt.Errorf("failed to create case service: %v", err)
	}
	events, err := incidentsvc.NewEventService()
	if err != nil {
		return nil, fmt.Errorf("failed to create event service: %v", err)
	}
	return &CaseHandler{
		BaseHandler: basehdl.NewBaseHandler[models.Case, incidentdto.CaseCreateInput, incidentdto.CaseUpdateInput](service),
		caseService: service,
		events:      events,
	}, nil
}

// HandleCreate khai báo case thủ công, người gọi là reporter
func (h *CaseHandler) HandleCreate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		projectID := h.GetActiveProjectID(c)
		if projectID == nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationInput, "Chưa chọn project", common.StatusBadRequest, nil))
			return nil
		}
		var input incidentdto.CaseCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		newCase := models.Case{
			ProjectID:        *projectID,
			Title:            input.Title,
			Description:      input.Description,
			Visibility:       input.Visibility,
			TypeID:           objectIDOrNil(input.TypeID),
			PriorityID:       objectIDOrNil(input.PriorityID),
			SeverityID:       objectIDOrNil(input.SeverityID),
			DedicatedChannel: input.DedicatedChannel,
			TagIDs:           toObjectIDs(input.TagIDs),
		}
		created, err := h.caseService.CreateManual(c.Context(), newCase, actorFromContext(c))
		h.HandleResponse(c, created, err)
		return nil
	})
}

// HandleTransition chuyển trạng thái case theo state machine
func (h *CaseHandler) HandleTransition(c fiber.Ctx) error {
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
		var input incidentdto.TransitionInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.caseService.Transition(c.Context(), id, input.Status, input.Resolution, input.ResolutionReason, actorFromContext(c))
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleAssignRole gán role cho một user trong case
func (h *CaseHandler) HandleAssignRole(c fiber.Ctx) error {
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
		var input incidentdto.RoleAssignInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		userID, err := utility.String2ObjectID(input.UserID)
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, "User ID không hợp lệ", common.StatusBadRequest, err))
			return nil
		}

		updated, err := h.caseService.AssignRole(c.Context(), id, userID, input.Role, actorFromContext(c))
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleTimeline trả về timeline event của case theo thứ tự thời gian
func (h *CaseHandler) HandleTimeline(c fiber.Ctx) error {
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
		timeline, err := h.events.TimelineForCase(c.Context(), id)
		h.HandleResponse(c, timeline, err)
		return nil
	})
}
