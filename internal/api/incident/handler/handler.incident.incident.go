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
)

// IncidentHandler xử lý vòng đời incident: khai báo, escalate từ case,
// chuyển trạng thái (kể cả reopen), gán role, timeline, feedback
type IncidentHandler struct {
	*basehdl.BaseHandler[models.Incident, incidentdto.IncidentDeclareInput, incidentdto.IncidentUpdateInput]
	incidentService *incidentsvc.IncidentService
	feedbackService *incidentsvc.IncidentFeedbackService
	events          *incidentsvc.EventService
}

// NewIncidentHandler tạo instance mới của IncidentHandler
func NewIncidentHandler() (*IncidentHandler, error) {
	service, err := incidentsvc.NewIncidentService()
	if err != nil {
		return nil, fmt.Errorf("failed to create incident service: %v", err)
	}
	feedback, err := incidentsvc.NewIncidentFeedbackService()
	if err != nil {
		return nil, fmt.Errorf("failed to create incident feedback service: %v", err)
	}
	events, err := incidentsvc.NewEventService()
	if err != nil {
		return nil, fmt.Errorf("failed to create event service: %v", err)
	}
	return &IncidentHandler{
		BaseHandler:     basehdl.NewBaseHandler[models.Incident, incidentdto.IncidentDeclareInput, incidentdto.IncidentUpdateInput](service),
		incidentService: service,
		feedbackService: feedback,
		events:          events,
	}, nil
}

// HandleDeclare khai báo incident trực tiếp, người gọi là reporter
func (h *IncidentHandler) HandleDeclare(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		projectID := h.GetActiveProjectID(c)
		if projectID == nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationInput, "Chưa chọn project", common.StatusBadRequest, nil))
			return nil
		}
		var input incidentdto.IncidentDeclareInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		inc := models.Incident{
			ProjectID:   *projectID,
			Title:       input.Title,
			Description: input.Description,
			Visibility:  input.Visibility,
			TypeID:      objectIDOrNil(input.TypeID),
			PriorityID:  objectIDOrNil(input.PriorityID),
			SeverityID:  objectIDOrNil(input.SeverityID),
			TagIDs:      toObjectIDs(input.TagIDs),
		}
		created, err := h.incidentService.Declare(c.Context(), inc, actorFromContext(c))
		h.HandleResponse(c, created, err)
		return nil
	})
}

// HandleEscalate escalate một case thành incident; :id là id của case
func (h *IncidentHandler) HandleEscalate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		idStr := h.GetIDFromContext(c)
		caseID, err := utility.String2ObjectID(idStr)
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, "ID không hợp lệ", common.StatusBadRequest, err))
			return nil
		}
		var input incidentdto.EscalateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		inc := models.Incident{
			Title:       input.Title,
			Description: input.Description,
			TypeID:      objectIDOrNil(input.TypeID),
			PriorityID:  objectIDOrNil(input.PriorityID),
			SeverityID:  objectIDOrNil(input.SeverityID),
		}
		created, err := h.incidentService.EscalateCase(c.Context(), caseID, inc, actorFromContext(c))
		h.HandleResponse(c, created, err)
		return nil
	})
}

// HandleTransition chuyển trạng thái incident theo state machine
func (h *IncidentHandler) HandleTransition(c fiber.Ctx) error {
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

		updated, err := h.incidentService.Transition(c.Context(), id, input.Status, input.Resolution, input.ResolutionReason, actorFromContext(c))
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleAssignRole gán role cho một user trong incident
func (h *IncidentHandler) HandleAssignRole(c fiber.Ctx) error {
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

		updated, err := h.incidentService.AssignRole(c.Context(), id, userID, input.Role, actorFromContext(c))
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleTimeline trả về timeline event của incident
func (h *IncidentHandler) HandleTimeline(c fiber.Ctx) error {
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
		timeline, err := h.events.TimelineForIncident(c.Context(), id)
		h.HandleResponse(c, timeline, err)
		return nil
	})
}

// HandleSubmitFeedback nhận phản hồi sau incident từ người gọi
func (h *IncidentHandler) HandleSubmitFeedback(c fiber.Ctx) error {
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
		var input incidentdto.FeedbackSubmitInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		inc, err := h.incidentService.FindOneById(c.Context(), id)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		submitted, err := h.feedbackService.Submit(c.Context(), models.IncidentFeedback{
			ProjectID:  inc.ProjectID,
			IncidentID: id,
			UserID:     actorFromContext(c),
			Rating:     input.Rating,
			Comment:    input.Comment,
		})
		h.HandleResponse(c, submitted, err)
		return nil
	})
}

// HandleListFeedback trả về mọi phản hồi của incident
func (h *IncidentHandler) HandleListFeedback(c fiber.Ctx) error {
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
		feedbacks, err := h.feedbackService.FindForIncident(c.Context(), id)
		h.HandleResponse(c, feedbacks, err)
		return nil
	})
}

// IncidentRoleHandler xử lý CRUD policy phân giải role; create/update đi qua
// chuyển đổi thủ công vì policy chứa danh sách ObjectID
type IncidentRoleHandler struct {
	*basehdl.BaseHandler[models.IncidentRole, incidentdto.IncidentRoleCreateInput, incidentdto.IncidentRoleUpdateInput]
	roleService *incidentsvc.IncidentRoleService
}

// NewIncidentRoleHandler tạo instance mới của IncidentRoleHandler
func NewIncidentRoleHandler() (*IncidentRoleHandler, error) {
	service, err := incidentsvc.NewIncidentRoleService()
	if err != nil {
		return nil, fmt.Errorf("failed to create incident role service: %v", err)
	}
	return &IncidentRoleHandler{
		BaseHandler: basehdl.NewBaseHandler[models.IncidentRole, incidentdto.IncidentRoleCreateInput, incidentdto.IncidentRoleUpdateInput](service),
		roleService: service,
	}, nil
}

// HandleCreate tạo policy phân giải role mới
func (h *IncidentRoleHandler) HandleCreate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		projectID := h.GetActiveProjectID(c)
		if projectID == nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationInput, "Chưa chọn project", common.StatusBadRequest, nil))
			return nil
		}
		var input incidentdto.IncidentRoleCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		policy := models.IncidentRole{
			ProjectID:           *projectID,
			Role:                input.Role,
			Enabled:             input.Enabled,
			Order:               input.Order,
			IncidentTypeIDs:     toObjectIDs(input.IncidentTypeIDs),
			IncidentPriorityIDs: toObjectIDs(input.IncidentPriorityIDs),
			TagIDs:              toObjectIDs(input.TagIDs),
			ServiceRef:          input.ServiceRef,
			IndividualID:        objectIDOrNil(input.IndividualID),
			EngageNextOncall:    input.EngageNextOncall,
		}
		created, err := h.roleService.InsertOne(c.Context(), policy)
		h.HandleResponse(c, created, err)
		return nil
	})
}

// HandleUpdate cập nhật policy phân giải role
func (h *IncidentRoleHandler) HandleUpdate(c fiber.Ctx) error {
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
		var input incidentdto.IncidentRoleUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		update := map[string]interface{}{
			"enabled":             input.Enabled,
			"order":               input.Order,
			"incidentTypeIds":     toObjectIDs(input.IncidentTypeIDs),
			"incidentPriorityIds": toObjectIDs(input.IncidentPriorityIDs),
			"tagIds":              toObjectIDs(input.TagIDs),
			"serviceRef":          input.ServiceRef,
			"individualId":        objectIDOrNil(input.IndividualID),
			"engageNextOncall":    input.EngageNextOncall,
		}
		updated, err := h.roleService.UpdateById(c.Context(), id, update)
		h.HandleResponse(c, updated, err)
		return nil
	})
}
