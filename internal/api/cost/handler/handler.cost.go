// Package costhdl - handler của domain cost.
package costhdl

import (
	"fmt"

	basehdl "meta_response/internal/api/base/handler"
	costdto "meta_response/internal/api/cost/dto"
	models "meta_response/internal/api/cost/models"
	costsvc "meta_response/internal/api/cost/service"
	incidentsvc "meta_response/internal/api/incident/service"
	"meta_response/internal/common"
	"meta_response/internal/utility"

	"github.com/gofiber/fiber/v3"
)

// PluginEventHandler xử lý CRUD catalogue plugin event
type PluginEventHandler struct {
	*basehdl.BaseHandler[models.PluginEvent, costdto.PluginEventCreateInput, costdto.PluginEventUpdateInput]
}

// NewPluginEventHandler tạo instance mới của PluginEventHandler
func NewPluginEventHandler() (*PluginEventHandler, error) {
	service, err := costsvc.NewPluginEventService()
	if err != nil {
		return nil, fmt.Errorf("failed to create plugin event service: %v", err)
	}
	return &PluginEventHandler{
		BaseHandler: basehdl.NewBaseHandler[models.PluginEvent, costdto.PluginEventCreateInput, costdto.PluginEventUpdateInput](service),
	}, nil
}

// CostModelHandler xử lý CRUD cost model
type CostModelHandler struct {
	*basehdl.BaseHandler[models.CostModel, costdto.CostModelCreateInput, costdto.CostModelUpdateInput]
}

// NewCostModelHandler tạo instance mới của CostModelHandler
func NewCostModelHandler() (*CostModelHandler, error) {
	service, err := costsvc.NewCostModelService()
	if err != nil {
		return nil, fmt.Errorf("failed to create cost model service: %v", err)
	}
	return &CostModelHandler{
		BaseHandler: basehdl.NewBaseHandler[models.CostModel, costdto.CostModelCreateInput, costdto.CostModelUpdateInput](service),
	}, nil
}

// ActivityHandler ghi nhận và tra cứu activity span
type ActivityHandler struct {
	*basehdl.BaseHandler[models.ParticipantActivity, costdto.ActivityRecordInput, costdto.ActivityRecordInput]
	recorder *costsvc.ActivityRecorderService
	events   *costsvc.PluginEventService
}

// NewActivityHandler tạo instance mới của ActivityHandler
func NewActivityHandler() (*ActivityHandler, error) {
	recorder, err := costsvc.NewActivityRecorderService()
	if err != nil {
		return nil, fmt.Errorf("failed to create activity recorder service: %v", err)
	}
	events, err := costsvc.NewPluginEventService()
	if err != nil {
		return nil, fmt.Errorf("failed to create plugin event service: %v", err)
	}
	return &ActivityHandler{
		BaseHandler: basehdl.NewBaseHandler[models.ParticipantActivity, costdto.ActivityRecordInput, costdto.ActivityRecordInput](recorder),
		recorder:    recorder,
		events:      events,
	}, nil
}

// HandleRecord ghi nhận một span hoạt động với merge idempotent
func (h *ActivityHandler) HandleRecord(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		projectID := h.GetActiveProjectID(c)
		if projectID == nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationInput, "Chưa chọn project", common.StatusBadRequest, nil))
			return nil
		}
		var input costdto.ActivityRecordInput
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

		var subject incidentsvc.Subject
		switch {
		case input.CaseID != "":
			caseID, err := utility.String2ObjectID(input.CaseID)
			if err != nil {
				h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, "Case ID không hợp lệ", common.StatusBadRequest, err))
				return nil
			}
			subject = incidentsvc.CaseSubject(caseID)
		case input.IncidentID != "":
			incidentID, err := utility.String2ObjectID(input.IncidentID)
			if err != nil {
				h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, "Incident ID không hợp lệ", common.StatusBadRequest, err))
				return nil
			}
			subject = incidentsvc.IncidentSubject(incidentID)
		default:
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationInput, "Phải chỉ định caseId hoặc incidentId", common.StatusBadRequest, nil))
			return nil
		}

		// PluginEvent nhận slug hoặc hex ObjectID
		pluginEventID, err := utility.String2ObjectID(input.PluginEvent)
		if err != nil {
			event, err := h.events.FindBySlug(c.Context(), *projectID, input.PluginEvent)
			if err != nil {
				h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationInput, "Plugin event không tồn tại", common.StatusBadRequest, err))
				return nil
			}
			pluginEventID = event.ID
		}

		delta, err := h.recorder.Record(c.Context(), *projectID, userID, subject, pluginEventID, input.StartedAt, input.EndedAt)
		h.HandleResponse(c, map[string]interface{}{"deltaMillis": delta}, err)
		return nil
	})
}

// ResponseCostHandler tra cứu và kích recompute chi phí
type ResponseCostHandler struct {
	*basehdl.BaseHandler[models.ResponseCost, costdto.PluginEventCreateInput, costdto.PluginEventUpdateInput]
	engine *costsvc.CostEngineService
}

// NewResponseCostHandler tạo instance mới của ResponseCostHandler
func NewResponseCostHandler() (*ResponseCostHandler, error) {
	engine, err := costsvc.GetCostEngine()
	if err != nil {
		return nil, fmt.Errorf("failed to create cost engine: %v", err)
	}
	service, err := costsvc.NewResponseCostService()
	if err != nil {
		return nil, fmt.Errorf("failed to create response cost service: %v", err)
	}
	return &ResponseCostHandler{
		BaseHandler: basehdl.NewBaseHandler[models.ResponseCost, costdto.PluginEventCreateInput, costdto.PluginEventUpdateInput](service),
		engine:      engine,
	}, nil
}

// HandleCaseCost trả về hai dòng chi phí của một case, recompute trước khi trả
func (h *ResponseCostHandler) HandleCaseCost(c fiber.Ctx) error {
	return h.subjectCost(c, true)
}

// HandleIncidentCost trả về hai dòng chi phí của một incident
func (h *ResponseCostHandler) HandleIncidentCost(c fiber.Ctx) error {
	return h.subjectCost(c, false)
}

func (h *ResponseCostHandler) subjectCost(c fiber.Ctx, isCase bool) error {
	return h.SafeHandler(c, func() error {
		idStr := c.Params("id")
		id, err := utility.String2ObjectID(idStr)
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, "ID không hợp lệ", common.StatusBadRequest, err))
			return nil
		}

		subject := incidentsvc.IncidentSubject(id)
		if isCase {
			subject = incidentsvc.CaseSubject(id)
		}

		if err := h.engine.Recompute(c.Context(), subject); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		costs, err := h.engine.FindForSubject(c.Context(), subject)
		h.HandleResponse(c, costs, err)
		return nil
	})
}
