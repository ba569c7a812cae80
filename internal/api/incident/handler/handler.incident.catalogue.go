// Package incidenthdl - handler của domain case/incident.
package incidenthdl

import (
	"fmt"

	basehdl "meta_response/internal/api/base/handler"
	incidentdto "meta_response/internal/api/incident/dto"
	models "meta_response/internal/api/incident/models"
	incidentsvc "meta_response/internal/api/incident/service"
)

// CaseTypeHandler xử lý CRUD catalogue case type
type CaseTypeHandler struct {
	*basehdl.BaseHandler[models.CaseType, incidentdto.CatalogueCreateInput, incidentdto.CatalogueUpdateInput]
}

// NewCaseTypeHandler tạo instance mới của CaseTypeHandler
func NewCaseTypeHandler() (*CaseTypeHandler, error) {
	service, err := incidentsvc.NewCaseTypeService()
	if err != nil {
		return nil, fmt.Errorf("failed to create case type service: %v", err)
	}
	return &CaseTypeHandler{
		BaseHandler: basehdl.NewBaseHandler[models.CaseType, incidentdto.CatalogueCreateInput, incidentdto.CatalogueUpdateInput](service),
	}, nil
}

// CasePriorityHandler xử lý CRUD catalogue case priority
type CasePriorityHandler struct {
	*basehdl.BaseHandler[models.CasePriority, incidentdto.CatalogueCreateInput, incidentdto.CatalogueUpdateInput]
}

// NewCasePriorityHandler tạo instance mới của CasePriorityHandler
func NewCasePriorityHandler() (*CasePriorityHandler, error) {
	service, err := incidentsvc.NewCasePriorityService()
	if err != nil {
		return nil, fmt.Errorf("failed to create case priority service: %v", err)
	}
	return &CasePriorityHandler{
		BaseHandler: basehdl.NewBaseHandler[models.CasePriority, incidentdto.CatalogueCreateInput, incidentdto.CatalogueUpdateInput](service),
	}, nil
}

// CaseSeverityHandler xử lý CRUD catalogue case severity
type CaseSeverityHandler struct {
	*basehdl.BaseHandler[models.CaseSeverity, incidentdto.CatalogueCreateInput, incidentdto.CatalogueUpdateInput]
}

// NewCaseSeverityHandler tạo instance mới của CaseSeverityHandler
func NewCaseSeverityHandler() (*CaseSeverityHandler, error) {
	service, err := incidentsvc.NewCaseSeverityService()
	if err != nil {
		return nil, fmt.Errorf("failed to create case severity service: %v", err)
	}
	return &CaseSeverityHandler{
		BaseHandler: basehdl.NewBaseHandler[models.CaseSeverity, incidentdto.CatalogueCreateInput, incidentdto.CatalogueUpdateInput](service),
	}, nil
}

// IncidentTypeHandler xử lý CRUD catalogue incident type
type IncidentTypeHandler struct {
	*basehdl.BaseHandler[models.IncidentType, incidentdto.CatalogueCreateInput, incidentdto.CatalogueUpdateInput]
}

// NewIncidentTypeHandler tạo instance mới của IncidentTypeHandler
func NewIncidentTypeHandler() (*IncidentTypeHandler, error) {
	service, err := incidentsvc.NewIncidentTypeService()
	if err != nil {
		return nil, fmt.Errorf("failed to create incident type service: %v", err)
	}
	return &IncidentTypeHandler{
		BaseHandler: basehdl.NewBaseHandler[models.IncidentType, incidentdto.CatalogueCreateInput, incidentdto.CatalogueUpdateInput](service),
	}, nil
}

// IncidentPriorityHandler xử lý CRUD catalogue incident priority
type IncidentPriorityHandler struct {
	*basehdl.BaseHandler[models.IncidentPriority, incidentdto.CatalogueCreateInput, incidentdto.CatalogueUpdateInput]
}

// NewIncidentPriorityHandler tạo instance mới của IncidentPriorityHandler
func NewIncidentPriorityHandler() (*IncidentPriorityHandler, error) {
	service, err := incidentsvc.NewIncidentPriorityService()
	if err != nil {
		return nil, fmt.Errorf("failed to create incident priority service: %v", err)
	}
	return &IncidentPriorityHandler{
		BaseHandler: basehdl.NewBaseHandler[models.IncidentPriority, incidentdto.CatalogueCreateInput, incidentdto.CatalogueUpdateInput](service),
	}, nil
}

// IncidentSeverityHandler xử lý CRUD catalogue incident severity
type IncidentSeverityHandler struct {
	*basehdl.BaseHandler[models.IncidentSeverity, incidentdto.CatalogueCreateInput, incidentdto.CatalogueUpdateInput]
}

// NewIncidentSeverityHandler tạo instance mới của IncidentSeverityHandler
func NewIncidentSeverityHandler() (*IncidentSeverityHandler, error) {
	service, err := incidentsvc.NewIncidentSeverityService()
	if err != nil {
		return nil, fmt.Errorf("failed to create incident severity service: %v", err)
	}
	return &IncidentSeverityHandler{
		BaseHandler: basehdl.NewBaseHandler[models.IncidentSeverity, incidentdto.CatalogueCreateInput, incidentdto.CatalogueUpdateInput](service),
	}, nil
}

// TagHandler xử lý CRUD tag
type TagHandler struct {
	*basehdl.BaseHandler[models.Tag, incidentdto.TagCreateInput, incidentdto.TagUpdateInput]
}

// NewTagHandler tạo instance mới của TagHandler
func NewTagHandler() (*TagHandler, error) {
	service, err := incidentsvc.NewTagService()
	if err != nil {
		return nil, fmt.Errorf("failed to create tag service: %v", err)
	}
	return &TagHandler{
		BaseHandler: basehdl.NewBaseHandler[models.Tag, incidentdto.TagCreateInput, incidentdto.TagUpdateInput](service),
	}, nil
}

// EventHandler cho phép tra cứu timeline event (chỉ đọc)
type EventHandler struct {
	*basehdl.BaseHandler[models.Event, incidentdto.CatalogueCreateInput, incidentdto.CatalogueUpdateInput]
}

// NewEventHandler tạo instance mới của EventHandler
func NewEventHandler() (*EventHandler, error) {
	service, err := incidentsvc.NewEventService()
	if err != nil {
		return nil, fmt.Errorf("failed to create event service: %v", err)
	}
	return &EventHandler{
		BaseHandler: basehdl.NewBaseHandler[models.Event, incidentdto.CatalogueCreateInput, incidentdto.CatalogueUpdateInput](service),
	}, nil
}

// ParticipantHandler cho phép tra cứu participant (chỉ đọc)
type ParticipantHandler struct {
	*basehdl.BaseHandler[models.Participant, incidentdto.RoleAssignInput, incidentdto.RoleAssignInput]
}

// NewParticipantHandler tạo instance mới của ParticipantHandler
func NewParticipantHandler() (*ParticipantHandler, error) {
	service, err := incidentsvc.NewParticipantService()
	if err != nil {
		return nil, fmt.Errorf("failed to create participant service: %v", err)
	}
	return &ParticipantHandler{
		BaseHandler: basehdl.NewBaseHandler[models.Participant, incidentdto.RoleAssignInput, incidentdto.RoleAssignInput](service),
	}, nil
}
